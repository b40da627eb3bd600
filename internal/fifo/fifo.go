// Package fifo provides a fixed-capacity multichannel circular buffer used
// as a sample delay line.
package fifo

import "fmt"

// FIFO is a multichannel circular sample buffer. All storage is allocated
// at construction, read and write never allocate.
type FIFO struct {
	buffers  [][]float64
	capacity int
	readPos  int
	writePos int
	ready    int
}

// New returns a FIFO with defined number of channels and capacity.
func New(numChannels, capacity int) *FIFO {
	buffers := make([][]float64, numChannels)
	for i := range buffers {
		buffers[i] = make([]float64, capacity)
	}
	return &FIFO{
		buffers:  buffers,
		capacity: capacity,
	}
}

// NumChannels returns number of channels.
func (f *FIFO) NumChannels() int {
	return len(f.buffers)
}

// Ready returns number of samples available for reading.
func (f *FIFO) Ready() int {
	return f.ready
}

// WriteSilence pushes numSamples zero samples into every channel.
func (f *FIFO) WriteSilence(numSamples int) {
	f.checkSpace(numSamples)
	for i := range f.buffers {
		pos := f.writePos
		for j := 0; j < numSamples; j++ {
			f.buffers[i][pos] = 0
			pos++
			if pos == f.capacity {
				pos = 0
			}
		}
	}
	f.advanceWrite(numSamples)
}

// Write pushes the first numSamples samples of every channel of source.
// source must have the same number of channels as the FIFO.
func (f *FIFO) Write(source [][]float64, numSamples int) {
	if len(source) != len(f.buffers) {
		panic(fmt.Sprintf("fifo: write of %d channels into %d-channel fifo", len(source), len(f.buffers)))
	}
	f.checkSpace(numSamples)
	for i := range f.buffers {
		pos := f.writePos
		for j := 0; j < numSamples; j++ {
			f.buffers[i][pos] = source[i][j]
			pos++
			if pos == f.capacity {
				pos = 0
			}
		}
	}
	f.advanceWrite(numSamples)
}

// Read pops numSamples samples into dest. Asking for more samples than are
// ready is a preparation bug, not a runtime condition: it panics.
func (f *FIFO) Read(dest [][]float64, numSamples int) {
	if numSamples > f.ready {
		panic(fmt.Sprintf("fifo: underflow, read of %d samples with %d ready", numSamples, f.ready))
	}
	for i := range f.buffers {
		pos := f.readPos
		for j := 0; j < numSamples; j++ {
			dest[i][j] = f.buffers[i][pos]
			pos++
			if pos == f.capacity {
				pos = 0
			}
		}
	}
	f.readPos = (f.readPos + numSamples) % f.capacity
	f.ready -= numSamples
}

func (f *FIFO) checkSpace(numSamples int) {
	if f.ready+numSamples > f.capacity {
		panic(fmt.Sprintf("fifo: overflow, write of %d samples with %d free", numSamples, f.capacity-f.ready))
	}
}

func (f *FIFO) advanceWrite(numSamples int) {
	f.writePos = (f.writePos + numSamples) % f.capacity
	f.ready += numSamples
}
