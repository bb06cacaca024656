package synth

import (
	"strings"
	"testing"

	"github.com/norasector/fdxb/pkg/fdxb"
	"github.com/norasector/fdxb/pkg/fdxb/demod"
	"github.com/stretchr/testify/require"
)

func bitString(bits []byte) string {
	var sb strings.Builder
	for _, b := range bits {
		sb.WriteByte('0' + b)
	}
	return sb.String()
}

func TestBitsLayout(t *testing.T) {
	bits := Telegram{CountryCode: 999, NationalCode: 1234567}.Bits()
	require.Len(t, bits, fdxb.TelegramLength)
	require.Equal(t, fdxb.Header, bitString(bits[:fdxb.HeaderLength]))
	for _, pos := range fdxb.LogicSeparatorPositions {
		require.Equal(t, byte(1), bits[pos], "separator %d", pos)
	}
	require.Equal(t, byte(0), bits[fdxb.DataBlockFlagPosition])
	require.Equal(t, byte(0), bits[fdxb.AnimalAppFlagPosition])
}

func TestFlags(t *testing.T) {
	bits := Telegram{DataBlock: true, AnimalApplication: true}.Bits()
	require.Equal(t, byte(1), bits[fdxb.DataBlockFlagPosition])
	require.Equal(t, byte(1), bits[fdxb.AnimalAppFlagPosition])
}

func TestPayload(t *testing.T) {
	// national code in the low 38 bits, country code above it
	payload := Telegram{CountryCode: 1, NationalCode: 1}.Payload()
	require.Equal(t, []byte{0x01, 0, 0, 0, 0x40, 0, 0, 0}, payload)

	payload = Telegram{DataBlock: true, AnimalApplication: true}.Payload()
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0x01, 0x80}, payload)
}

func TestRepeat(t *testing.T) {
	tg := Telegram{CountryCode: 999, NationalCode: 1234567}
	bits := tg.Repeat(3)
	require.Len(t, bits, 3*fdxb.TelegramLength+1)
	require.Equal(t, tg.Bits(), bits[fdxb.TelegramLength:2*fdxb.TelegramLength])
	require.Equal(t, byte(1), bits[len(bits)-1])
}

func TestEdges(t *testing.T) {
	require.Equal(t, []int64{100, 338, 458, 577}, Edges([]byte{1, 0}, 1e6, 100))
}

func TestEdgesDemodulate(t *testing.T) {
	bits := Telegram{CountryCode: 528, NationalCode: 140000123456}.Bits()
	for _, rate := range []int{100e3, 1e6, 4e6} {
		d := demod.NewDemodulator(rate)
		got := d.Work(Edges(bits, rate, 50))
		values := make([]byte, len(got))
		for i, b := range got {
			values[i] = b.Value
		}
		require.Equal(t, bits, values, "rate %d", rate)
	}
}

func TestLogicSamples(t *testing.T) {
	require.Equal(t, []byte{0, 0, 2, 2, 2, 0, 0, 0}, LogicSamples([]int64{2, 5}, 1, 2))
	require.Equal(t, []byte{0, 0}, LogicSamples(nil, 0, 2))
}
