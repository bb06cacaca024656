package frame

import "github.com/norasector/fdxb/pkg/fdxb"

// TelegramBuffer holds the bits of the telegram being assembled. Until the
// header is found it is a sliding window of header length.
type TelegramBuffer struct {
	bits []fdxb.Bit
}

func NewTelegramBuffer() *TelegramBuffer {
	return &TelegramBuffer{bits: make([]fdxb.Bit, 0, fdxb.TelegramLength)}
}

// Push appends bit. While unframed a full window drops its oldest entry first.
func (b *TelegramBuffer) Push(bit fdxb.Bit, framed bool) {
	if !framed && len(b.bits) >= fdxb.HeaderLength {
		copy(b.bits, b.bits[1:])
		b.bits = b.bits[:len(b.bits)-1]
	}
	b.bits = append(b.bits, bit)
}

func (b *TelegramBuffer) Len() int {
	return len(b.bits)
}

func (b *TelegramBuffer) At(i int) fdxb.Bit {
	return b.bits[i]
}

// Newest returns the index of the most recent bit, -1 when empty.
func (b *TelegramBuffer) Newest() int {
	return len(b.bits) - 1
}

func (b *TelegramBuffer) Reset() {
	b.bits = b.bits[:0]
}

// MatchHeader reports whether the buffer holds exactly the header pattern.
func MatchHeader(b *TelegramBuffer) bool {
	if b.Len() != fdxb.HeaderLength {
		return false
	}
	for i := 0; i < fdxb.HeaderLength; i++ {
		if b.At(i).Char() != fdxb.Header[i] {
			return false
		}
	}
	return true
}
