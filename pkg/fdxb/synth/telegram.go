// Package synth builds FDX-B telegrams from field values and renders them as
// the edge timings or logic samples a transponder would produce.
package synth

import (
	"encoding/binary"

	"github.com/norasector/fdxb/pkg/fdxb"
	"github.com/norasector/fdxb/pkg/fdxb/crc"
)

const (
	nationalCodeBits = 38
	countryCodeBits  = 10
	reservedBits     = 14
)

// Telegram holds the field values of one transmitted telegram.
type Telegram struct {
	CountryCode       uint16
	NationalCode      uint64
	DataBlock         bool
	Reserved          uint16
	AnimalApplication bool
	ApplicationData   uint32
}

// Payload returns the eight identification bytes covered by the checksum.
func (t Telegram) Payload() []byte {
	v := t.NationalCode & (1<<nationalCodeBits - 1)
	v |= uint64(t.CountryCode&(1<<countryCodeBits-1)) << 38
	if t.DataBlock {
		v |= 1 << 48
	}
	v |= uint64(t.Reserved&(1<<reservedBits-1)) << 49
	if t.AnimalApplication {
		v |= 1 << 63
	}

	ret := make([]byte, 8)
	binary.LittleEndian.PutUint64(ret, v)
	return ret
}

func (t Telegram) Checksum() uint16 {
	return crc.Kermit(t.Payload())
}

// Bits returns the telegram as fdxb.TelegramLength bit values, offset 0 being
// the separator one that precedes the header zeros.
func (t Telegram) Bits() []byte {
	var data []byte
	for _, b := range t.Payload() {
		data = appendLSBFirst(data, uint64(b), 8)
	}
	data = appendLSBFirst(data, uint64(t.Checksum()), 16)
	data = appendLSBFirst(data, uint64(t.ApplicationData), 24)

	ret := make([]byte, fdxb.TelegramLength)
	ret[0] = 1
	next := 0
	for i := fdxb.HeaderLength; i < fdxb.TelegramLength; i++ {
		if fdxb.IsLogicSeparator(i) {
			ret[i] = 1
			continue
		}
		ret[i] = data[next]
		next++
	}
	return ret
}

func appendLSBFirst(dst []byte, v uint64, n int) []byte {
	for i := 0; i < n; i++ {
		dst = append(dst, byte(v>>i)&1)
	}
	return dst
}

// Repeat concatenates the bits of t n times, as a transponder sends them
// while it stays in the field.
func (t Telegram) Repeat(n int) []byte {
	bits := t.Bits()
	ret := make([]byte, 0, len(bits)*n+1)
	for i := 0; i < n; i++ {
		ret = append(ret, bits...)
	}
	// closing separator so the last telegram is followed by a one
	return append(ret, 1)
}
