package demod

import (
	"testing"

	"github.com/norasector/fdxb/pkg/fdxb"
	"github.com/stretchr/testify/require"
)

// At 1MHz one sample is one microsecond.
const testRate = 1e6

func TestFirstEdgeIsDiscarded(t *testing.T) {
	d := NewDemodulator(testRate)
	_, ok := d.Edge(5000)
	require.False(t, ok)
	require.False(t, d.foundOne)

	_, valid := d.Width()
	require.False(t, valid)
}

func TestWork(t *testing.T) {
	tests := []struct {
		name  string
		edges []int64
		want  []fdxb.Bit
	}{
		{
			name:  "long pulse is a one",
			edges: []int64{100, 400},
			want:  []fdxb.Bit{{Value: 1, Start: 100, End: 400}},
		},
		{
			name:  "short pair after sync is a zero spanning both",
			edges: []int64{100, 338, 457, 576},
			want: []fdxb.Bit{
				{Value: 1, Start: 100, End: 338},
				{Value: 0, Start: 338, End: 576},
			},
		},
		{
			name:  "shorts before the first one are absorbed",
			edges: []int64{100, 219, 338, 457, 576, 814},
			want:  []fdxb.Bit{{Value: 1, Start: 576, End: 814}},
		},
		{
			name:  "threshold is strict",
			edges: []int64{100, 300},
			want:  []fdxb.Bit{},
		},
		{
			name:  "long after a carried short resets the carry",
			edges: []int64{100, 338, 457, 695, 814, 933},
			want: []fdxb.Bit{
				{Value: 1, Start: 100, End: 338},
				{Value: 1, Start: 457, End: 695},
				{Value: 0, Start: 695, End: 933},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDemodulator(testRate)
			got := d.Work(tt.edges)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestOneResetsCarriedWidth(t *testing.T) {
	d := NewDemodulator(testRate)
	d.Edge(100)
	d.Edge(219) // short, carried
	bit, ok := d.Edge(519)
	require.True(t, ok)
	require.Equal(t, byte(1), bit.Value)
	require.Zero(t, d.lastWidth)

	w, valid := d.Width()
	require.True(t, valid)
	require.InDelta(t, 300.0, w, 1e-9)
}

func TestSampleRateScaling(t *testing.T) {
	// 24 samples at 100kHz is 240us
	d := NewDemodulator(100e3)
	got := d.Work([]int64{10, 34, 46, 58})
	require.Equal(t, []fdxb.Bit{
		{Value: 1, Start: 10, End: 34},
		{Value: 0, Start: 34, End: 58},
	}, got)
}

func TestReset(t *testing.T) {
	d := NewDemodulator(testRate)
	d.Work([]int64{100, 400})
	require.True(t, d.foundOne)

	d.Reset()
	require.False(t, d.foundOne)
	_, ok := d.Edge(1000)
	require.False(t, ok)
}
