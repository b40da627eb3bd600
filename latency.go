package audiograph

import (
	"github.com/pipelined/audiograph/internal/fifo"
	"github.com/pipelined/audiograph/midi"
	"github.com/pipelined/audiograph/signal"
)

type (
	// LatencyNode delays its single input by a fixed number of samples.
	// It is a pure delay line: audio goes through a primed FIFO, MIDI
	// events are held back until their shifted offset falls into the
	// current block.
	LatencyNode struct {
		output
		input Input
		delay int
		fifo  *fifo.FIFO
		held  []heldEvent
	}

	// heldEvent is a delayed MIDI event. due counts samples from the
	// start of the current block until the event is emitted.
	heldEvent struct {
		due   int
		event midi.Event
	}
)

// NewLatency wraps input with a delay of defined number of samples.
// Ownership of the input carries over: an owned input is now owned by the
// delay node, a referenced one stays owned elsewhere.
func NewLatency(input Input, delaySamples int) *LatencyNode {
	return &LatencyNode{input: input, delay: delaySamples}
}

// Delay returns the fixed delay size in samples.
func (n *LatencyNode) Delay() int {
	return n.delay
}

// Properties returns the input's properties with latency increased by the
// delay size.
func (n *LatencyNode) Properties() Properties {
	props := n.input.Node().Properties()
	props.Latency += n.delay
	return props
}

// DirectInputs returns the wrapped input.
func (n *LatencyNode) DirectInputs() []Input {
	return []Input{n.input}
}

// Prepare allocates the FIFO and primes it with a backlog of silence equal
// to the delay, so the first processed block already reads delayed output.
func (n *LatencyNode) Prepare(info PlaybackInfo) error {
	if n.delay < 0 {
		return ErrNegativeDelay
	}
	props := n.Properties()
	n.fifo = fifo.New(props.NumChannels, n.delay+info.BlockSize+1)
	n.fifo.WriteSilence(n.delay)
	n.buffers.Audio = signal.EmptyFloat64(props.NumChannels, info.BlockSize)
	n.buffers.Midi = midi.NewBuffer(defaultMidiCapacity)
	n.held = make([]heldEvent, 0, defaultMidiCapacity)
	return nil
}

// Ready reports whether the input has processed the current block.
func (n *LatencyNode) Ready() bool {
	return n.input.Node().Processed()
}

// Process pushes the input's fresh block into the FIFO and pops exactly
// one block of delayed output. Held MIDI events whose due time falls into
// this block are emitted once at the rebased offset and dropped.
func (n *LatencyNode) Process(numSamples int) {
	in := n.input.Node().Output()

	// write to delay buffers
	n.fifo.Write(in.Audio, numSamples)
	if in.Midi != nil {
		for _, e := range in.Midi.Events() {
			n.held = append(n.held, heldEvent{due: e.Offset + n.delay, event: e})
		}
	}

	// then read from them
	n.fifo.Read(n.buffers.Audio, numSamples)
	kept := n.held[:0]
	for _, h := range n.held {
		if h.due < numSamples {
			e := h.event
			e.Offset = h.due
			n.buffers.Midi.Add(e)
		} else {
			h.due -= numSamples
			kept = append(kept, h)
		}
	}
	n.held = kept

	n.processed = true
}
