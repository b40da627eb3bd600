package audiograph

import (
	"github.com/pipelined/audiograph/meter"
	"github.com/pipelined/audiograph/midi"
)

// LevelMeasuringNode is a metering tap: it passes its input through
// unchanged and feeds the same samples into a shared level measurer. The
// audio output aliases the input's buffer, no copy is made.
type LevelMeasuringNode struct {
	output
	input      Input
	measurer   *meter.Measurer
	sampleRate int
}

// NewLevelMeasuring returns a metering tap feeding the shared measurer.
// The node retains a reference and releases it on Close.
func NewLevelMeasuring(m *meter.Measurer, input Input) *LevelMeasuringNode {
	return &LevelMeasuringNode{measurer: m.Retain(), input: input}
}

// Measurer returns the shared measurer fed by this node.
func (n *LevelMeasuringNode) Measurer() *meter.Measurer {
	return n.measurer
}

// Properties returns the input's properties unchanged.
func (n *LevelMeasuringNode) Properties() Properties {
	return n.input.Node().Properties()
}

// DirectInputs returns the wrapped input.
func (n *LevelMeasuringNode) DirectInputs() []Input {
	return []Input{n.input}
}

// Prepare records the sample rate and sizes the shared measurer's working
// buffers to the fixed stereo metering layout at the current block size.
func (n *LevelMeasuringNode) Prepare(info PlaybackInfo) error {
	n.sampleRate = info.SampleRate
	n.measurer.SetSize(2, info.BlockSize)
	n.buffers.Midi = midi.NewBuffer(defaultMidiCapacity)
	return nil
}

// Ready reports whether the input has processed the current block.
func (n *LevelMeasuringNode) Ready() bool {
	return n.input.Node().Processed()
}

// PrefetchBlock informs the measurer of the playback time of the block's
// first sample, so readings can later be correlated to timeline position.
func (n *LevelMeasuringNode) PrefetchBlock(startSample int64) {
	n.measurer.StartNextBlock(float64(startSample) / float64(n.sampleRate))
}

// Process forwards the input's buffers as this node's output and feeds the
// same samples to the measurer. The audio buffer is shared, not copied.
func (n *LevelMeasuringNode) Process(numSamples int) {
	src := n.input.Node().Output()

	n.buffers.Audio = src.Audio
	if src.Midi != nil {
		n.buffers.Midi.AddAll(src.Midi, 0)
	}

	n.measurer.AddBuffer(src.Audio, numSamples)
	n.processed = true
}

// Close releases the node's reference to the shared measurer.
func (n *LevelMeasuringNode) Close() error {
	n.measurer.Release()
	return nil
}
