package audiograph

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/xid"

	"github.com/pipelined/audiograph/log"
	"github.com/pipelined/audiograph/metric"
)

// Player walks the graph once per block: all nodes are prepared bottom-up
// exactly once before playback, then each block is pulled from the leaves
// through intermediate nodes to the root on a single realtime thread.
type Player struct {
	uid      string
	root     Node
	info     PlaybackInfo
	prepared bool
	position int64

	order       []Node
	prefetchers []BlockPrefetcher
	measures    []metric.MeasureFunc

	logger log.Logger
}

// NewPlayer returns a player over the graph rooted at root.
func NewPlayer(root Node) *Player {
	return &Player{
		uid:    xid.New().String(),
		root:   root,
		logger: log.GetLogger(),
	}
}

// UID returns the player's unique id.
func (p *Player) UID() string {
	return p.uid
}

// Properties returns the root node's properties.
func (p *Player) Properties() Properties {
	return p.root.Properties()
}

// Info returns the playback info the graph was prepared with.
func (p *Player) Info() PlaybackInfo {
	return p.info
}

// Position returns the playback position in samples.
func (p *Player) Position() int64 {
	return p.position
}

// Prepare validates the graph and prepares every node exactly once,
// dependencies first. Nodes inserted by a preparation-time transform, such
// as the summing node's latency alignment, are prepared by their inserter
// and picked up when the processing order is rebuilt afterwards.
func (p *Player) Prepare(info PlaybackInfo) error {
	if p.prepared {
		return ErrAlreadyPrepared
	}
	if info.SampleRate <= 0 || info.BlockSize <= 0 {
		return fmt.Errorf("%w: sample rate %d block size %d", ErrInvalidInfo, info.SampleRate, info.BlockSize)
	}

	visiting := make(map[Node]struct{})
	done := make(map[Node]struct{})
	if err := prepare(p.root, info, visiting, done); err != nil {
		return err
	}

	// the topology is final now, compute the processing order
	order, err := topologicalOrder(p.root)
	if err != nil {
		return err
	}
	p.order = order

	p.prefetchers = p.prefetchers[:0]
	p.measures = make([]metric.MeasureFunc, len(order))
	for i, n := range order {
		if prefetcher, ok := n.(BlockPrefetcher); ok {
			p.prefetchers = append(p.prefetchers, prefetcher)
		}
		p.measures[i] = metric.Meter(nodeKind(n), info.SampleRate)()
	}

	p.info = info
	p.prepared = true
	props := p.root.Properties()
	p.logger.Debug("graph prepared:", len(order), "nodes, latency", props.Latency, "samples")
	return nil
}

// ProcessBlock produces one block of numSamples samples at the graph's
// root. numSamples equals the prepared block size for every call except a
// final partial block, which the host signals by passing fewer samples.
// Given a prepared graph, processing is total: it always produces output.
//
// Violations of the processing contract are defects of the engine or its
// host, not runtime conditions, and panic.
func (p *Player) ProcessBlock(numSamples int) Buffers {
	if !p.prepared {
		panic("audiograph: process of unprepared graph")
	}
	if numSamples <= 0 || numSamples > p.info.BlockSize {
		panic(fmt.Sprintf("audiograph: block of %d samples with block size %d", numSamples, p.info.BlockSize))
	}

	for _, n := range p.order {
		n.Reset()
	}
	for _, prefetcher := range p.prefetchers {
		prefetcher.PrefetchBlock(p.position)
	}
	for i, n := range p.order {
		if !n.Ready() {
			panic("audiograph: node processed before its inputs")
		}
		n.Process(numSamples)
		p.measures[i](int64(numSamples))
	}

	p.position += int64(numSamples)
	return p.root.Output()
}

// Close tears down nodes which hold resources beyond the graph's lifetime:
// monitoring bridges and measurer references. Playback must be stopped.
func (p *Player) Close() error {
	for _, n := range p.order {
		if closer, ok := n.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

// prepare runs a depth-first post-order walk: inputs are prepared before
// their consumers, every node exactly once. A back edge means the graph is
// not acyclic.
func prepare(n Node, info PlaybackInfo, visiting, done map[Node]struct{}) error {
	if _, ok := done[n]; ok {
		return nil
	}
	if _, ok := visiting[n]; ok {
		return ErrGraphCycle
	}
	visiting[n] = struct{}{}
	for _, in := range n.DirectInputs() {
		if err := prepare(in.Node(), info, visiting, done); err != nil {
			return err
		}
	}
	if err := n.Prepare(info); err != nil {
		return err
	}
	delete(visiting, n)
	done[n] = struct{}{}
	return nil
}

// topologicalOrder returns the nodes reachable from root in dependency
// order: every node appears after all of its direct inputs and exactly
// once, shared nodes included.
func topologicalOrder(root Node) ([]Node, error) {
	var order []Node
	visiting := make(map[Node]struct{})
	done := make(map[Node]struct{})
	var walk func(Node) error
	walk = func(n Node) error {
		if _, ok := done[n]; ok {
			return nil
		}
		if _, ok := visiting[n]; ok {
			return ErrGraphCycle
		}
		visiting[n] = struct{}{}
		for _, in := range n.DirectInputs() {
			if err := walk(in.Node()); err != nil {
				return err
			}
		}
		delete(visiting, n)
		done[n] = struct{}{}
		order = append(order, n)
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return order, nil
}

// nodeKind returns the metric key of a node's concrete type.
func nodeKind(n Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*")
}
