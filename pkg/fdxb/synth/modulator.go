package synth

import (
	"math"

	"github.com/norasector/fdxb/pkg/fdxb/demod"
)

// Modulator places the edges of a biphase FDX-B signal on a sample grid.
// A one is a single full bit period, a zero is two half periods.
type Modulator struct {
	sampleRate int
	bitPeriod  float64
	position   float64
}

func NewModulator(sampleRate int, start int64) *Modulator {
	return &Modulator{
		sampleRate: sampleRate,
		bitPeriod:  float64(sampleRate) / demod.BitRate,
		position:   float64(start),
	}
}

func (m *Modulator) edge() int64 {
	return int64(math.Round(m.position))
}

// Start returns the edge that opens the first pulse.
func (m *Modulator) Start() int64 {
	return m.edge()
}

func (m *Modulator) WorkBuffer(input []byte, output []int64) int {
	n := 0
	for _, bit := range input {
		if bit&1 == 1 {
			m.position += m.bitPeriod
		} else {
			m.position += m.bitPeriod / 2
			output[n] = m.edge()
			n++
			m.position += m.bitPeriod / 2
		}
		output[n] = m.edge()
		n++
	}
	return n
}

// Work returns the edges for bits, preceded by the opening edge.
func (m *Modulator) Work(bits []byte) []int64 {
	ret := make([]int64, m.PredictOutputSize(len(bits))+1)
	ret[0] = m.Start()
	n := m.WorkBuffer(bits, ret[1:])
	return ret[:n+1]
}

func (m *Modulator) PredictOutputSize(inputSize int) int {
	return 2 * inputSize
}

// Edges renders bits at sampleRate with the opening edge at start.
func Edges(bits []byte, sampleRate int, start int64) []int64 {
	return NewModulator(sampleRate, start).Work(bits)
}

// LogicSamples renders edges as one byte per sample, toggling bit channel at
// every edge. tail samples of steady level follow the last edge.
func LogicSamples(edges []int64, channel uint, tail int) []byte {
	if len(edges) == 0 {
		return make([]byte, tail)
	}
	ret := make([]byte, edges[len(edges)-1]+int64(tail)+1)
	var level byte
	next := 0
	for i := range ret {
		for next < len(edges) && edges[next] == int64(i) {
			level ^= 1
			next++
		}
		ret[i] = level << channel
	}
	return ret
}
