package frame

import "github.com/norasector/fdxb/pkg/fdxb"

// span is a run of data bits between separators.
type span struct {
	start, end int64
}

// fieldBits returns the bit values at offsets [from, to], skipping separators.
func fieldBits(b *TelegramBuffer, from, to int) []byte {
	ret := make([]byte, 0, to-from+1)
	for i := from; i <= to; i++ {
		if fdxb.IsLogicSeparator(i) {
			continue
		}
		ret = append(ret, b.At(i).Value)
	}
	return ret
}

// lsbFirst interprets bits as an unsigned integer sent least significant bit first.
func lsbFirst(bits []byte) uint64 {
	var v uint64
	for i := len(bits) - 1; i >= 0; i-- {
		v = (v << 1) | uint64(bits[i]&1)
	}
	return v
}

// fieldValue decodes the LSB-first field stored at offsets [from, to].
func fieldValue(b *TelegramBuffer, from, to int) uint64 {
	return lsbFirst(fieldBits(b, from, to))
}

// fieldSpans splits [from, to] into the sample ranges of its separator-free runs.
func fieldSpans(b *TelegramBuffer, from, to int) []span {
	var ret []span
	open := false
	for i := from; i <= to; i++ {
		if fdxb.IsLogicSeparator(i) {
			open = false
			continue
		}
		bit := b.At(i)
		if !open {
			ret = append(ret, span{start: bit.Start, end: bit.End})
			open = true
			continue
		}
		ret[len(ret)-1].end = bit.End
	}
	return ret
}
