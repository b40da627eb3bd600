// Package wav renders a processed graph to a wav file. Rendering happens
// off the realtime path: a host drains blocks from a prepared player and
// commits them here.
package wav

import (
	"errors"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	audiograph "github.com/pipelined/audiograph"
	"github.com/pipelined/audiograph/signal"
)

// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
var ErrUnsupportedBitDepth = errors.New("only 16 and 32 bit depth is supported")

const wavFormat = 1

// Sink saves audio to wav file.
type Sink struct {
	path     string
	bitDepth signal.BitDepth
	file     *os.File
	encoder  *wav.Encoder
	buffer   *audio.IntBuffer
}

// NewSink creates new wav sink.
func NewSink(path string, bitDepth signal.BitDepth) (*Sink, error) {
	if bitDepth != signal.BitDepth16 && bitDepth != signal.BitDepth32 {
		return nil, ErrUnsupportedBitDepth
	}
	return &Sink{
		path:     path,
		bitDepth: bitDepth,
	}, nil
}

// Open creates the file and the encoder for defined format.
func (s *Sink) Open(sampleRate, numChannels int) error {
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	s.file = f
	s.encoder = wav.NewEncoder(f, sampleRate, int(s.bitDepth), numChannels, wavFormat)
	s.buffer = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: int(s.bitDepth),
	}
	return nil
}

// Write encodes the first numSamples samples of the block.
func (s *Sink) Write(b signal.Float64, numSamples int) error {
	if numSamples < b.Size() {
		b = b.Slice(0, numSamples)
	}
	s.buffer.Data = b.AsInterInt(s.bitDepth)
	return s.encoder.Write(s.buffer)
}

// Flush finalizes the encoder and closes the file.
func (s *Sink) Flush() error {
	err := s.encoder.Close()
	if err != nil {
		return err
	}
	return s.file.Close()
}

// Render drains numBlocks full blocks from a prepared player into the
// sink.
func Render(p *audiograph.Player, s *Sink, numBlocks int) error {
	props := p.Properties()
	info := p.Info()
	if err := s.Open(info.SampleRate, props.NumChannels); err != nil {
		return err
	}
	for i := 0; i < numBlocks; i++ {
		out := p.ProcessBlock(info.BlockSize)
		if err := s.Write(out.Audio, info.BlockSize); err != nil {
			return err
		}
	}
	return s.Flush()
}
