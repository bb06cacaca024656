package frame

import (
	"github.com/norasector/fdxb/pkg/fdxb"
	"github.com/norasector/fdxb/pkg/fdxb/crc"
)

// payloadBytes packs the 64 data bits from the national code through the animal
// application flag into the eight bytes they were sent as, each LSB first.
func payloadBytes(b *TelegramBuffer) []byte {
	bits := fieldBits(b, fdxb.NationalCodeStart, fdxb.AnimalAppFlagPosition)
	ret := make([]byte, len(bits)/8)
	for i := range ret {
		ret[i] = byte(lsbFirst(bits[i*8 : i*8+8]))
	}
	return ret
}

type checksumResult struct {
	given    uint16
	computed uint16
}

func (c checksumResult) valid() bool {
	return c.given == c.computed
}

func validateChecksum(b *TelegramBuffer) checksumResult {
	return checksumResult{
		given:    uint16(fieldValue(b, fdxb.CRCStart, fdxb.CRCEnd)),
		computed: crc.Kermit(payloadBytes(b)),
	}
}
