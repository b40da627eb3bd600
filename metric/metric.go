// Package metric publishes per-node-kind processing counters through
// expvar. Counter updates are atomic adds, cheap enough for the block
// processing path.
package metric

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pipelined/audiograph/signal"
)

const nodesLabel = "audiograph.nodes"

const (
	// BlockCounter measures number of processed blocks.
	BlockCounter = "Blocks"
	// SampleCounter measures number of processed samples.
	SampleCounter = "Samples"
	// LatencyCounter measures latency between processing calls.
	LatencyCounter = "Latency"
	// DurationCounter counts the duration of processed signal.
	DurationCounter = "Duration"
	// NodeCounter counts number of nodes of this kind.
	NodeCounter = "Nodes"
)

var (
	nodes = metrics{
		m: make(map[string]metric),
	}

	counters = []string{
		BlockCounter,
		SampleCounter,
		LatencyCounter,
		DurationCounter,
		NodeCounter,
	}
)

// Get returns metric values for provided node kind.
func Get(kind string) map[string]string {
	return getCounters(kind)
}

// GetAll returns counters for all measured node kinds.
func GetAll() map[string]map[string]string {
	m := make(map[string]map[string]string)
	nodes.Lock()
	defer nodes.Unlock()
	for kind := range nodes.m {
		m[kind] = getCounters(kind)
	}
	return m
}

func getCounters(kind string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		v := expvar.Get(key(kind, counter))
		if v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

// ResetFunc returns new Measure closure. This closure is needed to
// postpone metrics capture until the graph is actually playing.
type ResetFunc func() MeasureFunc

// MeasureFunc captures metrics when a block is processed.
type MeasureFunc func(numSamples int64)

// Meter creates new meter closure to capture node counters.
func Meter(kind string, sampleRate int) ResetFunc {
	metric := nodes.get(kind)
	metric.nodes.Add(1)
	return func() MeasureFunc {
		calledAt := time.Now()
		var (
			numSamples    int64
			blockDuration time.Duration
		)
		return func(s int64) {
			metric.latency.set(time.Since(calledAt))
			metric.blocks.Add(1)
			metric.samples.Add(s)
			// recalculate block duration only when block size has changed
			if numSamples != s {
				numSamples = s
				blockDuration = signal.DurationOf(sampleRate, s)
			}
			metric.duration.add(blockDuration)
			calledAt = time.Now()
		}
	}
}

type metrics struct {
	sync.Mutex
	m map[string]metric
}

func (m *metrics) get(kind string) metric {
	m.Lock()
	defer m.Unlock()
	if metric, ok := m.m[kind]; ok {
		// return existing metric if available
		return metric
	}
	// create new metric
	metric := newMetric(kind)
	m.m[kind] = metric
	return metric
}

type metric struct {
	key      string
	nodes    *expvar.Int
	blocks   *expvar.Int
	samples  *expvar.Int
	latency  *duration
	duration *duration
}

func newMetric(kind string) metric {
	m := metric{
		key:      kind,
		nodes:    expvar.NewInt(key(kind, NodeCounter)),
		blocks:   expvar.NewInt(key(kind, BlockCounter)),
		samples:  expvar.NewInt(key(kind, SampleCounter)),
		latency:  &duration{},
		duration: &duration{},
	}
	expvar.Publish(key(kind, LatencyCounter), m.latency)
	expvar.Publish(key(kind, DurationCounter), m.duration)
	return m
}

func key(kind, counter string) string {
	return fmt.Sprintf("%s.%s.%s", nodesLabel, kind, counter)
}

// duration allows to format time.Duration metric values.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%v", time.Duration(atomic.LoadInt64(&v.d)))
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
