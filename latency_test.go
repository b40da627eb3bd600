package audiograph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	audiograph "github.com/pipelined/audiograph"
	"github.com/pipelined/audiograph/midi"
	"github.com/pipelined/audiograph/signal"
)

func TestLatencyProperties(t *testing.T) {
	source := unitySource(2, 1, 5)
	node := audiograph.NewLatency(audiograph.Own(source), 10)

	props := node.Properties()
	assert.Equal(t, 15, props.Latency)
	assert.Equal(t, 2, props.NumChannels)
	assert.True(t, props.HasAudio)
	assert.Equal(t, 10, node.Delay())

	inputs := node.DirectInputs()
	assert.Equal(t, 1, len(inputs))
	assert.Equal(t, audiograph.Node(source), inputs[0].Node())
	assert.True(t, inputs[0].Owned())
}

func TestNegativeDelay(t *testing.T) {
	node := audiograph.NewLatency(audiograph.Own(unitySource(1, 1, 0)), -1)
	p := audiograph.NewPlayer(node)
	err := p.Prepare(audiograph.PlaybackInfo{SampleRate: 44100, BlockSize: 64})
	assert.ErrorIs(t, err, audiograph.ErrNegativeDelay)
}

func TestDelayExactness(t *testing.T) {
	// an impulse at global sample 0 must reproduce at global sample d,
	// bit-exact, independent of block size
	tests := []struct {
		description string
		delay       int
		blockSize   int
	}{
		{description: "single sample blocks", delay: 10, blockSize: 1},
		{description: "odd block size", delay: 10, blockSize: 7},
		{description: "large blocks", delay: 10, blockSize: 512},
		{description: "delay spans blocks", delay: 23, blockSize: 7},
		{description: "zero delay", delay: 0, blockSize: 7},
	}

	for _, test := range tests {
		node := audiograph.NewLatency(audiograph.Own(impulseSource(1, nil, 0)), test.delay)
		p := prepared(t, node, test.blockSize)

		numBlocks := test.delay/test.blockSize + 2
		result, _ := runBlocks(p, numBlocks, test.blockSize)

		for i := 0; i < result.Size(); i++ {
			expected := 0.0
			if i == test.delay {
				expected = 1.0
			}
			assert.Equal(t, expected, result[0][i], "%s: sample %d", test.description, i)
		}
	}
}

func TestMidiOffsetExactness(t *testing.T) {
	// an event at local offset k entering a delay of d appears exactly
	// once at global sample k+d
	tests := []struct {
		description string
		delay       int
		blockSize   int
		eventAt     int64
	}{
		{description: "same block", delay: 2, blockSize: 8, eventAt: 1},
		{description: "next block", delay: 10, blockSize: 4, eventAt: 0},
		{description: "several blocks later", delay: 100, blockSize: 7, eventAt: 3},
		{description: "single sample blocks", delay: 5, blockSize: 1, eventAt: 2},
		{description: "large blocks", delay: 10, blockSize: 512, eventAt: 100},
	}

	for _, test := range tests {
		event := midi.Event{Status: midi.NoteOn, Data1: 60, Data2: 100}
		node := audiograph.NewLatency(audiograph.Own(impulseSource(1, &event, test.eventAt)), test.delay)
		p := prepared(t, node, test.blockSize)

		numBlocks := (int(test.eventAt)+test.delay)/test.blockSize + 2
		_, events := runBlocks(p, numBlocks, test.blockSize)

		if assert.Equal(t, 1, len(events), test.description) {
			assert.Equal(t, test.eventAt+int64(test.delay), events[0].sample, test.description)
			assert.Equal(t, midi.NoteOn, events[0].event.Status, test.description)
			assert.Equal(t, byte(60), events[0].event.Data1, test.description)
		}
	}
}

func TestDelayedStream(t *testing.T) {
	// a continuous stream shifted by the delay: output is silence for the
	// first d samples, then the input stream bit-exact
	var pos float64
	source := audiograph.NewSource(
		audiograph.Properties{HasAudio: true, NumChannels: 1},
		func(audio signal.Float64, events *midi.Buffer, numSamples int) {
			for j := 0; j < numSamples; j++ {
				audio[0][j] = pos
				pos++
			}
		},
	)
	node := audiograph.NewLatency(audiograph.Own(source), 3)
	p := prepared(t, node, 4)

	result, _ := runBlocks(p, 3, 4)
	assert.Equal(t, []float64{0, 0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8}, result[0])
}
