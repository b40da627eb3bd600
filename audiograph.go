// Package audiograph implements a realtime audio/MIDI processing graph: a
// directed acyclic graph of nodes which produce time-aligned multichannel
// audio and MIDI output once per fixed-size block.
//
// Nodes are constructed and connected while the graph is built, prepared
// exactly once before playback and then processed block by block on a
// single realtime thread. After preparation the topology is immutable and
// the processing path performs no allocation, no unbounded blocking and no
// I/O.
package audiograph

import (
	"errors"

	"github.com/pipelined/audiograph/midi"
	"github.com/pipelined/audiograph/signal"
)

type (
	// Properties describe the static contract of a node: presence of audio
	// and MIDI, channel layout and accumulated latency. Properties are a
	// pure function of the node's configuration and its inputs' properties
	// and must be stable once playback starts.
	Properties struct {
		HasAudio    bool
		HasMidi     bool
		NumChannels int
		Latency     int // number of samples the output is delayed relative to the logical input
		NodeID      int
	}

	// PlaybackInfo is supplied once before playback. BlockSize is the
	// buffer length contract for every subsequent Process call.
	PlaybackInfo struct {
		SampleRate int
		BlockSize  int
	}

	// Buffers is a node's output for the current block: a multichannel
	// sample block and an ordered sequence of events with block-relative
	// sample offsets.
	Buffers struct {
		Audio signal.Float64
		Midi  *midi.Buffer
	}

	// Node is a unit in the processing graph.
	Node interface {
		// Properties returns the static contract of this node. It is
		// side-effect-free and safe to call before and after preparation.
		Properties() Properties
		// DirectInputs returns this node's dependency set. The set is
		// fixed after preparation completes.
		DirectInputs() []Input
		// Prepare allocates all buffers and state needed for realtime
		// execution. It runs exactly once, single-threaded, before the
		// first Process call.
		Prepare(PlaybackInfo) error
		// Ready reports whether every direct input has finished its
		// output for the current block. It is cheap and side-effect-free.
		Ready() bool
		// Reset discards the previous block's output.
		Reset()
		// Process computes this node's output for the current block of
		// numSamples samples. It is invoked at most once per block, only
		// when the node is ready.
		Process(numSamples int)
		// Output returns the processed output of the current block.
		Output() Buffers
		// Processed reports whether this node has finished the current
		// block.
		Processed() bool
	}

	// BlockPrefetcher is implemented by nodes which need to know the
	// playback-time position of the block before it is processed.
	BlockPrefetcher interface {
		PrefetchBlock(startSample int64)
	}

	// Input is a tagged relation to a dependency node: either exclusively
	// owned by its consumer or a reference to a node owned elsewhere.
	Input struct {
		node  Node
		owned bool
	}
)

// Preparation errors. A violation is fatal to starting playback and is
// reported synchronously by Prepare.
var (
	// ErrGraphCycle is returned if the graph is not acyclic.
	ErrGraphCycle = errors.New("graph contains a cycle")
	// ErrNegativeDelay is returned if a delay node holds a negative size.
	ErrNegativeDelay = errors.New("negative delay size")
	// ErrInvalidInfo is returned if playback info holds a non-positive
	// sample rate or block size.
	ErrInvalidInfo = errors.New("invalid playback info")
	// ErrAlreadyPrepared is returned if the graph is prepared twice.
	ErrAlreadyPrepared = errors.New("graph already prepared")
)

// Own returns an input exclusively owned by its consumer.
func Own(n Node) Input {
	return Input{node: n, owned: true}
}

// Refer returns a non-owning input: the node is owned elsewhere, e.g.
// shared across multiple consumers.
func Refer(n Node) Input {
	return Input{node: n, owned: false}
}

// Node returns the dependency node.
func (in Input) Node() Node {
	return in.node
}

// Owned reports whether the consumer is solely responsible for the
// dependency's lifetime.
func (in Input) Owned() bool {
	return in.owned
}

// defaultMidiCapacity is the initial capacity of per-node MIDI buffers.
// Blocks with more events grow the buffer on first occurrence.
const defaultMidiCapacity = 64

// output holds the per-block output state shared by all node kinds.
type output struct {
	buffers   Buffers
	processed bool
}

// Output returns the processed output of the current block.
func (o *output) Output() Buffers {
	return o.buffers
}

// Processed reports whether the current block output is complete.
func (o *output) Processed() bool {
	return o.processed
}

// Reset discards the previous block's output. Audio is not zeroed here:
// every node kind fully overwrites or accumulates into its audio buffer
// during Process.
func (o *output) Reset() {
	o.processed = false
	if o.buffers.Midi != nil {
		o.buffers.Midi.Clear()
	}
}
