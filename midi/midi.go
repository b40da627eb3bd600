// Package midi provides timestamped MIDI events and a fixed-capacity event
// buffer suitable for the realtime processing path.
package midi

import "fmt"

// Channel voice status bytes. The low nibble carries the channel.
const (
	NoteOff          = byte(0x80)
	NoteOn           = byte(0x90)
	PolyPressure     = byte(0xA0)
	ControlChange    = byte(0xB0)
	ProgramChange    = byte(0xC0)
	ChannelPressure  = byte(0xD0)
	PitchWheelChange = byte(0xE0)
)

type (
	// Event is a single MIDI event with a sample offset relative to the
	// start of the current block.
	Event struct {
		Offset int  // sample offset within the block
		Status byte // status byte, e.g. NoteOn | channel
		Data1  byte // first data byte, e.g. note number
		Data2  byte // second data byte, e.g. velocity
	}

	// Buffer is an ordered sequence of events for one block. Its capacity
	// is fixed at construction so that Add never reallocates on the
	// processing path.
	Buffer struct {
		events []Event
	}
)

// String returns a human-readable event representation.
func (e Event) String() string {
	return fmt.Sprintf("midi event 0x%X [%d %d] at %d", e.Status, e.Data1, e.Data2, e.Offset)
}

// NewBuffer returns an empty buffer with defined capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{events: make([]Event, 0, capacity)}
}

// Add appends an event to the buffer.
func (b *Buffer) Add(e Event) {
	b.events = append(b.events, e)
}

// AddAll appends all events from source, each with its offset increased by
// delta. Events are appended in source order.
func (b *Buffer) AddAll(source *Buffer, delta int) {
	for _, e := range source.events {
		e.Offset += delta
		b.events = append(b.events, e)
	}
}

// Events returns the ordered events of this buffer. The returned slice is
// valid until the next Clear.
func (b *Buffer) Events() []Event {
	return b.events
}

// Len returns number of events in the buffer.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Clear removes all events keeping the underlying capacity.
func (b *Buffer) Clear() {
	b.events = b.events[:0]
}
