package demod

import (
	"github.com/norasector/fdxb/pkg/fdxb"
	"github.com/norasector/fdxb/pkg/util"
)

// The transponder answers at 4194 bit/s, a modulation width of 0.23845ms.
// Anything longer than 200us is a whole "1"; a "0" is two short pulses
// whose sum crosses the same cut off.
const (
	ModulationWidth = 200.0 // microseconds
	BitRate         = 4194
)

// Demodulator turns edge sample positions into FDX-B bits by pulse width.
type Demodulator struct {
	sampleRate int

	edges      int
	last       int64
	secondLast int64
	lastWidth  float64
	width      float64
	foundOne   bool
}

func NewDemodulator(sampleRate int) *Demodulator {
	return &Demodulator{sampleRate: sampleRate}
}

// Edge consumes the next edge. It returns a bit when the edge completes one.
func (d *Demodulator) Edge(sample int64) (fdxb.Bit, bool) {
	d.edges++
	d.width = util.SamplesToMicroseconds(sample-d.last, d.sampleRate)

	bit, ok := d.classify(sample)

	d.secondLast = d.last
	d.last = sample
	return bit, ok
}

func (d *Demodulator) classify(sample int64) (fdxb.Bit, bool) {
	// the first edge may close a partial pulse of unknown phase
	if d.edges == 1 {
		return fdxb.Bit{}, false
	}

	switch {
	case d.width > ModulationWidth:
		d.foundOne = true
		d.lastWidth = 0
		return fdxb.Bit{Value: 1, Start: d.last, End: sample}, true
	case d.width+d.lastWidth > ModulationWidth && d.foundOne:
		d.lastWidth = 0
		return fdxb.Bit{Value: 0, Start: d.secondLast, End: sample}, true
	default:
		d.lastWidth = d.width
		return fdxb.Bit{}, false
	}
}

// Width returns the width in microseconds of the pulse closed by the last edge.
// It reports false until two edges have been seen.
func (d *Demodulator) Width() (float64, bool) {
	return d.width, d.edges > 1
}

func (d *Demodulator) WorkBuffer(input []int64, output []fdxb.Bit) int {
	n := 0
	for i := 0; i < len(input); i++ {
		if bit, ok := d.Edge(input[i]); ok {
			output[n] = bit
			n++
		}
	}
	return n
}

func (d *Demodulator) Work(edges []int64) []fdxb.Bit {
	ret := make([]fdxb.Bit, d.PredictOutputSize(len(edges)))
	n := d.WorkBuffer(edges, ret)
	return ret[:n]
}

// PredictOutputSize bounds the bit count for n edges: at most one bit per edge.
func (d *Demodulator) PredictOutputSize(inputSize int) int {
	return inputSize
}

func (d *Demodulator) Reset() {
	d.edges = 0
	d.last = 0
	d.secondLast = 0
	d.lastWidth = 0
	d.width = 0
	d.foundOne = false
}
