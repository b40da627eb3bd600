// Package meter provides a shared level measurer. A measurer is a
// reference-counted accumulator of audio level statistics which may be fed
// by multiple producers in the graph and looked up externally by identity.
package meter

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"

	"github.com/pipelined/audiograph/signal"
)

// metering is always stereo-reduced.
const numMeterChannels = 2

type (
	// Level holds level statistics of a single channel.
	Level struct {
		Peak float64
		RMS  float64
	}

	// Measurer accumulates level statistics from fed samples. Producers
	// run on a single realtime thread; the mutex only guards against
	// concurrent readers and its critical sections are bounded.
	Measurer struct {
		id   string
		refs int32

		mu          sync.Mutex
		numChannels int
		blockSize   int
		blockTime   float64
		peaks       []float64
		sumSquares  []float64
		numSamples  int64
		numSources  int
	}
)

var registry = struct {
	sync.Mutex
	measurers map[string]*Measurer
}{
	measurers: make(map[string]*Measurer),
}

// New returns a new measurer with a single reference held by the caller.
func New() *Measurer {
	m := &Measurer{
		id:   xid.New().String(),
		refs: 1,
	}
	registry.Lock()
	registry.measurers[m.id] = m
	registry.Unlock()
	return m
}

// Lookup returns the measurer with defined identity, or nil if it was
// released. The caller must Retain the result to keep it registered.
func Lookup(id string) *Measurer {
	registry.Lock()
	defer registry.Unlock()
	return registry.measurers[id]
}

// ID returns the identity of this measurer.
func (m *Measurer) ID() string {
	return m.id
}

// Retain adds a reference and returns the measurer.
func (m *Measurer) Retain() *Measurer {
	atomic.AddInt32(&m.refs, 1)
	return m
}

// Release drops a reference. The last release removes the measurer from
// the registry.
func (m *Measurer) Release() {
	if atomic.AddInt32(&m.refs, -1) == 0 {
		registry.Lock()
		delete(registry.measurers, m.id)
		registry.Unlock()
	}
}

// SetSize allocates working buffers for the defined block size. The
// channel count is clamped to the fixed stereo metering layout. Called
// during preparation, never on the processing path.
func (m *Measurer) SetSize(numChannels, blockSize int) {
	if numChannels > numMeterChannels {
		numChannels = numMeterChannels
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.numChannels = numChannels
	m.blockSize = blockSize
	m.peaks = make([]float64, numChannels)
	m.sumSquares = make([]float64, numChannels)
	m.numSamples = 0
	m.numSources = 0
}

// StartNextBlock informs the measurer of the playback time of the first
// sample of the next block. The first call for a given time resets the
// per-block source count, so several producers of the same block
// accumulate together.
func (m *Measurer) StartNextBlock(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seconds != m.blockTime {
		m.blockTime = seconds
		m.numSources = 0
	}
}

// AddBuffer feeds the first numSamples samples of buf into the measurer.
// Channels beyond the stereo layout are folded into the last meter
// channel.
func (m *Measurer) AddBuffer(buf signal.Float64, numSamples int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range buf {
		ch := i
		if ch >= m.numChannels {
			ch = m.numChannels - 1
		}
		if ch < 0 {
			return
		}
		for j := 0; j < numSamples; j++ {
			s := buf[i][j]
			if abs := math.Abs(s); abs > m.peaks[ch] {
				m.peaks[ch] = abs
			}
			m.sumSquares[ch] += s * s
		}
	}
	m.numSamples += int64(numSamples)
	m.numSources++
}

// BlockTime returns the playback time of the current block in seconds.
func (m *Measurer) BlockTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blockTime
}

// NumSources returns number of producers which contributed to the current
// block.
func (m *Measurer) NumSources() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.numSources
}

// Levels returns a snapshot of accumulated levels per meter channel.
func (m *Measurer) Levels() []Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	levels := make([]Level, m.numChannels)
	for i := range levels {
		levels[i].Peak = m.peaks[i]
		if m.numSamples > 0 {
			levels[i].RMS = math.Sqrt(m.sumSquares[i] / float64(m.numSamples))
		}
	}
	return levels
}

// Reset clears accumulated statistics keeping the allocated buffers.
func (m *Measurer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.peaks {
		m.peaks[i] = 0
		m.sumSquares[i] = 0
	}
	m.numSamples = 0
	m.numSources = 0
}
