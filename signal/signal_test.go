package signal_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pipelined/audiograph/signal"
)

func TestInterIntsAsFloat64(t *testing.T) {
	tests := []struct {
		ints        []int
		numChannels int
		bitDepth    signal.BitDepth
		expected    [][]float64
	}{
		{
			ints:        []int{1, 2, 1, 2, 1, 2, 1, 2},
			numChannels: 2,
			expected: [][]float64{
				{1, 1, 1, 1},
				{2, 2, 2, 2},
			},
		},
		{
			ints:        []int{1, 2, 1, 2, 1},
			numChannels: 2,
			expected: [][]float64{
				{1, 1, 1},
				{2, 2, 0},
			},
		},
		{
			ints:        []int{math.MaxInt16, math.MaxInt16 * 2},
			numChannels: 2,
			expected: [][]float64{
				{1},
				{2},
			},
			bitDepth: signal.BitDepth16,
		},
		{
			ints:     nil,
			expected: nil,
		},
		{
			ints:     []int{1, 2, 3},
			expected: nil,
		},
	}

	for _, test := range tests {
		ints := signal.InterInt{
			Data:        test.ints,
			NumChannels: test.numChannels,
			BitDepth:    test.bitDepth,
		}
		result := ints.AsFloat64()
		assert.Equal(t, len(test.expected), len(result))
		for i := range test.expected {
			for j, val := range test.expected[i] {
				assert.Equal(t, val, result[i][j])
			}
		}
	}
}

func TestFloat64AsInterInt(t *testing.T) {
	tests := []struct {
		floats   signal.Float64
		bitDepth signal.BitDepth
		expected []int
	}{
		{
			floats: signal.Float64{
				{1, 1},
				{2, 2},
			},
			expected: []int{1, 2, 1, 2},
		},
		{
			floats: signal.Float64{
				{1},
				{2},
			},
			bitDepth: signal.BitDepth16,
			expected: []int{math.MaxInt16 - 1, (math.MaxInt16 - 1) * 2},
		},
		{
			floats:   nil,
			expected: nil,
		},
	}

	for _, test := range tests {
		result := test.floats.AsInterInt(test.bitDepth)
		assert.Equal(t, len(test.expected), len(result))
		for i, val := range test.expected {
			assert.Equal(t, val, result[i])
		}
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		description string
		dest        signal.Float64
		source      signal.Float64
		numSamples  int
		expected    signal.Float64
	}{
		{
			description: "same channels",
			dest:        signal.Float64{{1, 1, 1}, {2, 2, 2}},
			source:      signal.Float64{{1, 1, 1}, {1, 1, 1}},
			numSamples:  3,
			expected:    signal.Float64{{2, 2, 2}, {3, 3, 3}},
		},
		{
			description: "source has fewer channels",
			dest:        signal.Float64{{1, 1}, {2, 2}},
			source:      signal.Float64{{1, 1}},
			numSamples:  2,
			expected:    signal.Float64{{2, 2}, {2, 2}},
		},
		{
			description: "source has more channels",
			dest:        signal.Float64{{1, 1}},
			source:      signal.Float64{{1, 1}, {1, 1}},
			numSamples:  2,
			expected:    signal.Float64{{2, 2}},
		},
		{
			description: "partial block",
			dest:        signal.Float64{{1, 1, 1}},
			source:      signal.Float64{{1, 1, 1}},
			numSamples:  2,
			expected:    signal.Float64{{2, 2, 1}},
		},
	}

	for _, test := range tests {
		test.dest.Add(test.source, test.numSamples)
		assert.Equal(t, test.expected, test.dest, test.description)
	}
}

func TestClear(t *testing.T) {
	buf := signal.Float64{{1, 2, 3}, {4, 5, 6}}
	buf.Clear(2)
	assert.Equal(t, signal.Float64{{0, 0, 3}, {0, 0, 6}}, buf)
}

func TestCopy(t *testing.T) {
	dest := signal.EmptyFloat64(2, 3)
	source := signal.Float64{{1, 2, 3}}
	dest.Copy(source, 3)
	assert.Equal(t, signal.Float64{{1, 2, 3}, {0, 0, 0}}, dest)
}

func TestAsBuffer(t *testing.T) {
	buf := signal.Float64{{1, 1}, {2, 2}}.AsBuffer(44100)
	assert.Equal(t, 2, buf.Format.NumChannels)
	assert.Equal(t, 44100, buf.Format.SampleRate)
	assert.Equal(t, []float64{1, 2, 1, 2}, buf.Data)

	assert.Nil(t, signal.Float64(nil).AsBuffer(44100))
}

func TestDurationOf(t *testing.T) {
	assert.Equal(t, "500ms", signal.DurationOf(44100, 22050).String())
}
