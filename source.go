package audiograph

import (
	"github.com/pipelined/audiograph/midi"
	"github.com/pipelined/audiograph/signal"
)

type (
	// SourceFunc fills the block's buffers with up to numSamples samples.
	// The audio buffer is zeroed before the call; events carry offsets
	// relative to the block start.
	SourceFunc func(audio signal.Float64, events *midi.Buffer, numSamples int)

	// SourceNode is a generator leaf: it produces audio and MIDI without
	// inputs. Hosts use it to feed recorded material, test tones or
	// plugin output into the graph.
	SourceNode struct {
		output
		props Properties
		fn    SourceFunc
	}
)

// NewSource returns a source node with declared properties. The declared
// latency allows a host to announce a branch's inherent delay.
func NewSource(props Properties, fn SourceFunc) *SourceNode {
	return &SourceNode{props: props, fn: fn}
}

// Properties returns the declared properties.
func (n *SourceNode) Properties() Properties {
	return n.props
}

// DirectInputs returns nil: a source has no dependencies.
func (n *SourceNode) DirectInputs() []Input {
	return nil
}

// Prepare allocates the output buffers.
func (n *SourceNode) Prepare(info PlaybackInfo) error {
	if n.props.HasAudio {
		n.buffers.Audio = signal.EmptyFloat64(n.props.NumChannels, info.BlockSize)
	}
	n.buffers.Midi = midi.NewBuffer(defaultMidiCapacity)
	return nil
}

// Ready always reports true: a source has no inputs to wait for.
func (n *SourceNode) Ready() bool {
	return true
}

// Process fills the block by calling the source function.
func (n *SourceNode) Process(numSamples int) {
	if n.buffers.Audio != nil {
		n.buffers.Audio.Clear(numSamples)
	}
	if n.fn != nil {
		n.fn(n.buffers.Audio, n.buffers.Midi, numSamples)
	}
	n.processed = true
}
