// Command graphdemo builds a small processing graph — two tone sources
// with mismatched latencies mixed through a summing node, a shared level
// meter tap and a live MIDI monitor — renders it to a wav file and prints
// the measured levels.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	audiograph "github.com/pipelined/audiograph"
	"github.com/pipelined/audiograph/log"
	"github.com/pipelined/audiograph/meter"
	"github.com/pipelined/audiograph/midi"
	"github.com/pipelined/audiograph/signal"
	"github.com/pipelined/audiograph/wav"
)

var (
	out        = flag.String("out", "graphdemo.wav", "output wav file")
	blocks     = flag.Int("blocks", 200, "number of blocks to render")
	blockSize  = flag.Int("blocksize", 512, "samples per block")
	sampleRate = flag.Int("samplerate", 44100, "sample rate")
)

func main() {
	flag.Parse()
	logger := log.GetLogger()

	if err := run(logger); err != nil {
		logger.Info("render failed: ", err)
		os.Exit(1)
	}
}

func run(logger log.Logger) error {
	a := toneSource(440, 0.4, *sampleRate, 0)
	b := toneSource(660, 0.3, *sampleRate, 100)

	measurer := meter.New()
	defer measurer.Release()

	mix := audiograph.NewSumming(audiograph.Own(a), audiograph.Own(b))
	tap := audiograph.NewLevelMeasuring(measurer, audiograph.Own(mix))
	monitor := audiograph.NewLiveMidi(audiograph.Own(tap))
	monitor.AddListener(func(e midi.Event) {
		logger.Debug("recorded midi: ", e)
	})

	player := audiograph.NewPlayer(monitor)
	if err := player.Prepare(audiograph.PlaybackInfo{
		SampleRate: *sampleRate,
		BlockSize:  *blockSize,
	}); err != nil {
		return err
	}
	defer player.Close()

	props := player.Properties()
	logger.Info("graph ready: ", props.NumChannels, " channels, ", props.Latency, " samples latency")

	sink, err := wav.NewSink(*out, signal.BitDepth16)
	if err != nil {
		return err
	}
	if err := wav.Render(player, sink, *blocks); err != nil {
		return err
	}

	for i, level := range measurer.Levels() {
		logger.Info(fmt.Sprintf("channel %d: peak %.3f rms %.3f", i, level.Peak, level.RMS))
	}
	logger.Info("rendered ", *blocks, " blocks to ", *out)
	return nil
}

// toneSource returns a stereo sine source with declared latency.
func toneSource(freq, gain float64, sampleRate int, latency int) *audiograph.SourceNode {
	var pos int64
	step := 2 * math.Pi * freq / float64(sampleRate)
	return audiograph.NewSource(
		audiograph.Properties{HasAudio: true, NumChannels: 2, Latency: latency},
		func(audio signal.Float64, events *midi.Buffer, numSamples int) {
			for j := 0; j < numSamples; j++ {
				s := gain * math.Sin(step*float64(pos+int64(j)))
				for i := range audio {
					audio[i][j] = s
				}
			}
			pos += int64(numSamples)
		},
	)
}
