package audiograph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audiograph "github.com/pipelined/audiograph"
	"github.com/pipelined/audiograph/meter"
)

func TestLevelMeasuringPassThrough(t *testing.T) {
	m := meter.New()
	source := unitySource(2, 0.5, 0)
	node := audiograph.NewLevelMeasuring(m, audiograph.Own(source))
	p := prepared(t, node, 4)
	defer p.Close()

	assert.Equal(t, source.Properties(), node.Properties())

	out := p.ProcessBlock(4)
	assert.Equal(t, 0.5, out.Audio[0][0])
	// zero-copy: the output aliases the input's buffer
	assert.Same(t, &source.Output().Audio[0][0], &out.Audio[0][0])
}

func TestSharedMeasurerAccumulation(t *testing.T) {
	// two taps bound to the same measurer both register a contribution
	// for the block
	m := meter.New()
	tapA := audiograph.NewLevelMeasuring(m, audiograph.Own(unitySource(1, 0.5, 0)))
	tapB := audiograph.NewLevelMeasuring(m, audiograph.Own(unitySource(1, 0.5, 0)))
	root := audiograph.NewSumming(audiograph.Own(tapA), audiograph.Own(tapB))
	p := prepared(t, root, 4)

	assert.Same(t, m, tapA.Measurer())
	assert.Same(t, m, tapB.Measurer())

	p.ProcessBlock(4)
	assert.Equal(t, 2, m.NumSources())
	assert.Equal(t, 0.5, m.Levels()[0].Peak)

	// the measurer outlives the taps: released by Close, it stays
	// registered until the external reference is gone
	require.Nil(t, p.Close())
	assert.Equal(t, m, meter.Lookup(m.ID()))
	m.Release()
	assert.Nil(t, meter.Lookup(m.ID()))
}

func TestPrefetchBlockTime(t *testing.T) {
	m := meter.New()
	node := audiograph.NewLevelMeasuring(m, audiograph.Own(unitySource(1, 1, 0)))
	p := audiograph.NewPlayer(node)
	require.Nil(t, p.Prepare(audiograph.PlaybackInfo{SampleRate: 8, BlockSize: 4}))
	defer p.Close()

	p.ProcessBlock(4)
	assert.Equal(t, 0.0, m.BlockTime())

	// second block starts at sample 4 of an 8Hz timeline
	p.ProcessBlock(4)
	assert.Equal(t, 0.5, m.BlockTime())

	m.Release()
}
