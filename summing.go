package audiograph

import (
	"github.com/pipelined/audiograph/midi"
	"github.com/pipelined/audiograph/signal"
)

// SummingNode mixes an ordered collection of inputs into a single output,
// inserting latency compensation so that every branch is aligned to the
// slowest one before mixing.
type SummingNode struct {
	output
	inputs []Input
}

// NewSumming returns a summing node over the passed inputs.
func NewSumming(inputs ...Input) *SummingNode {
	return &SummingNode{inputs: inputs}
}

// Properties aggregates across inputs: audio and MIDI presence are OR-ed,
// channel count and latency are the maximum of all branches.
func (n *SummingNode) Properties() Properties {
	var props Properties
	for _, in := range n.inputs {
		inProps := in.Node().Properties()
		props.HasAudio = props.HasAudio || inProps.HasAudio
		props.HasMidi = props.HasMidi || inProps.HasMidi
		if inProps.NumChannels > props.NumChannels {
			props.NumChannels = inProps.NumChannels
		}
		if inProps.Latency > props.Latency {
			props.Latency = inProps.Latency
		}
	}
	return props
}

// DirectInputs returns the current inputs, including delay nodes inserted
// during preparation.
func (n *SummingNode) DirectInputs() []Input {
	inputs := make([]Input, len(n.inputs))
	copy(inputs, n.inputs)
	return inputs
}

// Prepare aligns branch latencies and allocates the mix buffers. After it
// returns, every direct input reports the same latency.
func (n *SummingNode) Prepare(info PlaybackInfo) error {
	if err := n.alignLatencies(info); err != nil {
		return err
	}
	props := n.Properties()
	n.buffers.Audio = signal.EmptyFloat64(props.NumChannels, info.BlockSize)
	n.buffers.Midi = midi.NewBuffer(defaultMidiCapacity)
	return nil
}

// alignLatencies splices a delay node behind every input which is faster
// than the slowest branch. An owned input moves into the new delay node,
// a referenced one is referenced by it; either way the delay node itself
// becomes owned by this node. Inputs already at the maximum latency are
// left untouched.
func (n *SummingNode) alignLatencies(info PlaybackInfo) error {
	// query phase: the maximum is taken over the unmodified topology
	maxLatency := n.Properties().Latency

	// reconstruction phase: build the new input list
	aligned := make([]Input, 0, len(n.inputs))
	for _, in := range n.inputs {
		delay := maxLatency - in.Node().Properties().Latency
		if delay == 0 {
			aligned = append(aligned, in)
			continue
		}
		latencyNode := NewLatency(in, delay)
		if err := latencyNode.Prepare(info); err != nil {
			return err
		}
		aligned = append(aligned, Own(latencyNode))
	}
	n.inputs = aligned
	return nil
}

// Ready reports whether every direct input, including inserted delay
// nodes, has processed the current block.
func (n *SummingNode) Ready() bool {
	for _, in := range n.inputs {
		if !in.Node().Processed() {
			return false
		}
	}
	return true
}

// Process adds each input's audio into the mix over the overlapping
// channel range and concatenates MIDI events in input order. Temporal
// order of events is carried by their offsets, not by merge order.
func (n *SummingNode) Process(numSamples int) {
	n.buffers.Audio.Clear(numSamples)
	for _, in := range n.inputs {
		src := in.Node().Output()
		n.buffers.Audio.Add(src.Audio, numSamples)
		if src.Midi != nil {
			n.buffers.Midi.AddAll(src.Midi, 0)
		}
	}
	n.processed = true
}
