package audiograph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	audiograph "github.com/pipelined/audiograph"
	"github.com/pipelined/audiograph/midi"
	"github.com/pipelined/audiograph/signal"
)

// timedEvent is an observed MIDI event with its global sample position.
type timedEvent struct {
	sample int64
	event  midi.Event
}

// runBlocks processes numBlocks full blocks and collects the root's audio
// and MIDI output on a global timeline.
func runBlocks(p *audiograph.Player, numBlocks, blockSize int) (signal.Float64, []timedEvent) {
	var result signal.Float64
	var events []timedEvent
	for i := 0; i < numBlocks; i++ {
		pos := p.Position()
		out := p.ProcessBlock(blockSize)
		result = result.Append(out.Audio)
		if out.Midi != nil {
			for _, e := range out.Midi.Events() {
				events = append(events, timedEvent{sample: pos + int64(e.Offset), event: e})
			}
		}
	}
	return result, events
}

// unitySource returns a source emitting a constant value on every channel,
// with declared latency.
func unitySource(numChannels int, value float64, latency int) *audiograph.SourceNode {
	return audiograph.NewSource(
		audiograph.Properties{HasAudio: true, NumChannels: numChannels, Latency: latency},
		func(audio signal.Float64, events *midi.Buffer, numSamples int) {
			for i := range audio {
				for j := 0; j < numSamples; j++ {
					audio[i][j] = value
				}
			}
		},
	)
}

// impulseSource returns a source emitting a single full-scale sample at
// global sample zero and an optional MIDI event at a global sample.
func impulseSource(numChannels int, event *midi.Event, eventAt int64) *audiograph.SourceNode {
	var pos int64
	return audiograph.NewSource(
		audiograph.Properties{HasAudio: true, HasMidi: event != nil, NumChannels: numChannels},
		func(audio signal.Float64, events *midi.Buffer, numSamples int) {
			if pos == 0 {
				for i := range audio {
					audio[i][0] = 1
				}
			}
			if event != nil && pos <= eventAt && eventAt < pos+int64(numSamples) {
				e := *event
				e.Offset = int(eventAt - pos)
				events.Add(e)
			}
			pos += int64(numSamples)
		},
	)
}

// prepared returns a player over root prepared with defined block size.
func prepared(t *testing.T, root audiograph.Node, blockSize int) *audiograph.Player {
	t.Helper()
	p := audiograph.NewPlayer(root)
	require.Nil(t, p.Prepare(audiograph.PlaybackInfo{SampleRate: 44100, BlockSize: blockSize}))
	return p
}
