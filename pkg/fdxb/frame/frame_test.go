package frame

import (
	"math/big"
	"testing"

	"github.com/norasector/fdxb/pkg/fdxb"
	"github.com/norasector/fdxb/pkg/fdxb/synth"
	"github.com/stretchr/testify/require"
)

// every test bit is ten samples long
func toBits(values []byte) []fdxb.Bit {
	ret := make([]fdxb.Bit, len(values))
	for i, v := range values {
		ret[i] = fdxb.Bit{Value: v, Start: int64(i * 10), End: int64(i*10 + 10)}
	}
	return ret
}

func framedBuffer(values []byte) *TelegramBuffer {
	b := NewTelegramBuffer()
	for _, bit := range toBits(values) {
		b.Push(bit, true)
	}
	return b
}

func TestTelegramBufferSlidingWindow(t *testing.T) {
	b := NewTelegramBuffer()
	bits := toBits(make([]byte, 15))
	for _, bit := range bits {
		b.Push(bit, false)
	}
	require.Equal(t, fdxb.HeaderLength, b.Len())
	require.Equal(t, bits[4], b.At(0))
	require.Equal(t, bits[14], b.At(b.Newest()))

	b.Push(fdxb.Bit{Value: 1}, true)
	require.Equal(t, fdxb.HeaderLength+1, b.Len())

	b.Reset()
	require.Zero(t, b.Len())
	require.Equal(t, -1, b.Newest())
}

func TestMatchHeader(t *testing.T) {
	header := []byte{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	require.True(t, MatchHeader(framedBuffer(header)))
	require.False(t, MatchHeader(framedBuffer(header[:10])))

	for i := range header {
		flipped := append([]byte(nil), header...)
		flipped[i] ^= 1
		require.False(t, MatchHeader(framedBuffer(flipped)), "flipped position %d", i)
	}
}

func TestFieldValues(t *testing.T) {
	tg := synth.Telegram{CountryCode: 999, NationalCode: 1234567, Reserved: 0x2a5}
	b := framedBuffer(tg.Bits())

	require.Equal(t, uint64(1234567), fieldValue(b, fdxb.NationalCodeStart, fdxb.NationalCodeEnd))
	require.Equal(t, uint64(999), fieldValue(b, fdxb.CountryCodeStart, fdxb.CountryCodeEnd))
	require.Equal(t, uint64(0x2a5), fieldValue(b, fdxb.ReservedStart, fdxb.ReservedEnd))
	require.Equal(t, uint64(tg.Checksum()), fieldValue(b, fdxb.CRCStart, fdxb.CRCEnd))
	require.Len(t, fieldBits(b, fdxb.NationalCodeStart, fdxb.NationalCodeEnd), 38)
	require.Len(t, fieldBits(b, fdxb.CountryCodeStart, fdxb.CountryCodeEnd), 10)
}

func TestLSBFirst(t *testing.T) {
	require.Equal(t, uint64(1), lsbFirst([]byte{1, 0, 0}))
	require.Equal(t, uint64(4), lsbFirst([]byte{0, 0, 1}))
	require.Equal(t, uint64(0), lsbFirst(nil))
}

func TestFieldSpans(t *testing.T) {
	b := framedBuffer(make([]byte, fdxb.TelegramLength))
	require.Equal(t, []span{
		{120, 200}, {210, 290}, {300, 380}, {390, 470}, {480, 540},
	}, fieldSpans(b, fdxb.NationalCodeStart, fdxb.NationalCodeEnd))
	require.Equal(t, []span{{840, 920}, {930, 1010}}, fieldSpans(b, fdxb.CRCStart, fdxb.CRCEnd))
}

// literalPayload removes separators by position from the sliced region,
// reverses the bit string and then the order of its bytes.
func literalPayload(b *TelegramBuffer) []byte {
	var segment []fdxb.Bit
	for i := fdxb.NationalCodeStart; i <= fdxb.AnimalAppFlagPosition; i++ {
		segment = append(segment, b.At(i))
	}
	for _, rel := range []int{62, 53, 44, 35, 26, 17, 8} {
		segment = append(segment[:rel], segment[rel+1:]...)
	}
	bits := make([]byte, len(segment))
	for i, bit := range segment {
		bits[len(segment)-1-i] = bit.Char()
	}
	s := string(bits)
	ordered := s[56:] + s[48:56] + s[40:48] + s[32:40] + s[24:32] + s[16:24] + s[8:16] + s[:8]

	v, _ := new(big.Int).SetString(ordered, 2)
	ret := make([]byte, 8)
	return v.FillBytes(ret)
}

func TestPayloadBytesMatchesReorder(t *testing.T) {
	for _, tg := range []synth.Telegram{
		{CountryCode: 999, NationalCode: 1234567},
		{CountryCode: 528, NationalCode: 140000123456, DataBlock: true, AnimalApplication: true},
		{CountryCode: 1023, NationalCode: 1<<38 - 1, Reserved: 0x3fff},
	} {
		b := framedBuffer(tg.Bits())
		require.Equal(t, literalPayload(b), payloadBytes(b))
		require.Equal(t, tg.Payload(), payloadBytes(b))
	}
}

func TestValidateChecksum(t *testing.T) {
	bits := synth.Telegram{CountryCode: 999, NationalCode: 1234567}.Bits()
	res := validateChecksum(framedBuffer(bits))
	require.True(t, res.valid())

	// one flipped national code bit
	bits[13] ^= 1
	res = validateChecksum(framedBuffer(bits))
	require.False(t, res.valid())
	require.NotEqual(t, res.given, res.computed)
}
