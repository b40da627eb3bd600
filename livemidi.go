package audiograph

import (
	"sync"

	"github.com/pipelined/audiograph/midi"
	"github.com/pipelined/audiograph/notify"
	"github.com/pipelined/audiograph/signal"
)

type (
	// MidiListener receives MIDI events captured on the realtime thread.
	// Listeners run on the updater goroutine and must tolerate a late
	// delivery after playback has stopped.
	MidiListener func(midi.Event)

	// LiveMidiNode passes audio and MIDI through unchanged and mirrors
	// every MIDI event of the block to registered listeners outside the
	// realtime thread.
	//
	// The realtime thread only appends to the pending queue under the
	// lock; the updater swaps pending and dispatching queues under the
	// same lock and delivers without holding it. The critical section is
	// bounded by one slice swap, never by listener dispatch.
	LiveMidiNode struct {
		output
		input     Input
		listeners []MidiListener
		updater   *notify.Updater

		mu          sync.Mutex
		pending     []midi.Event
		dispatching []midi.Event
	}
)

// NewLiveMidi returns a monitoring bridge over input.
func NewLiveMidi(input Input) *LiveMidiNode {
	n := &LiveMidiNode{
		input:       input,
		pending:     make([]midi.Event, 0, defaultMidiCapacity),
		dispatching: make([]midi.Event, 0, defaultMidiCapacity),
	}
	n.updater = notify.New(n.dispatch)
	return n
}

// AddListener registers a listener. Listeners are registered while the
// graph is built, before playback starts.
func (n *LiveMidiNode) AddListener(l MidiListener) {
	n.listeners = append(n.listeners, l)
}

// Properties returns the input's properties unchanged.
func (n *LiveMidiNode) Properties() Properties {
	return n.input.Node().Properties()
}

// DirectInputs returns the wrapped input.
func (n *LiveMidiNode) DirectInputs() []Input {
	return []Input{n.input}
}

// Prepare allocates the output buffers.
func (n *LiveMidiNode) Prepare(info PlaybackInfo) error {
	props := n.Properties()
	n.buffers.Audio = signal.EmptyFloat64(props.NumChannels, info.BlockSize)
	n.buffers.Midi = midi.NewBuffer(defaultMidiCapacity)
	return nil
}

// Ready reports whether the input has processed the current block.
func (n *LiveMidiNode) Ready() bool {
	return n.input.Node().Processed()
}

// Process copies the input's audio and MIDI unchanged into the output and
// appends the block's events to the pending queue. If the queue gained
// elements, an asynchronous dispatch is requested; requests coalesce until
// the updater runs.
func (n *LiveMidiNode) Process(numSamples int) {
	src := n.input.Node().Output()

	n.buffers.Audio.Copy(src.Audio, numSamples)
	if src.Midi == nil {
		n.processed = true
		return
	}
	n.buffers.Midi.AddAll(src.Midi, 0)

	if events := src.Midi.Events(); len(events) > 0 {
		n.mu.Lock()
		n.pending = append(n.pending, events...)
		n.mu.Unlock()
		n.updater.Trigger()
	}

	n.processed = true
}

// dispatch runs on the updater goroutine. It holds the lock only for the
// queue swap and delivers events without it.
func (n *LiveMidiNode) dispatch() {
	n.mu.Lock()
	n.pending, n.dispatching = n.dispatching[:0], n.pending
	n.mu.Unlock()

	for _, e := range n.dispatching {
		for _, l := range n.listeners {
			l(e)
		}
	}
}

// Close stops the updater. A dispatch already in flight is still
// delivered.
func (n *LiveMidiNode) Close() error {
	n.updater.Close()
	return nil
}
