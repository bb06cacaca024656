package frame

import (
	"fmt"

	"github.com/norasector/fdxb/pkg/fdxb"
	"github.com/rs/zerolog"
)

// Assembler takes demodulated bits, finds the header and decodes the telegram
// fields as their last bit arrives.
type Assembler struct {
	buf          *TelegramBuffer
	framed       bool
	hasExtraData bool
	telegram     fdxb.Telegram
	out          fdxb.Output
	logger       zerolog.Logger
}

func NewAssembler(out fdxb.Output, logger zerolog.Logger) *Assembler {
	return &Assembler{
		buf:    NewTelegramBuffer(),
		out:    out,
		logger: logger,
	}
}

// Framed reports whether a header has been matched and a telegram is being read.
func (a *Assembler) Framed() bool {
	return a.framed
}

// Len returns the number of buffered bits.
func (a *Assembler) Len() int {
	return a.buf.Len()
}

// Receive appends one bit. It returns true when the bit completed a telegram.
func (a *Assembler) Receive(bit fdxb.Bit) bool {
	a.buf.Push(bit, a.framed)

	if !a.framed {
		a.findHeader()
		return false
	}

	if !a.checkTelegram() {
		return false
	}

	a.telegram.End = bit.End
	a.out.Complete(a.telegram)
	a.logger.Debug().
		Str("tag_id", a.telegram.TagID).
		Bool("checksum_valid", a.telegram.ChecksumValid).
		Bool("extra_data", a.hasExtraData).
		Msg("telegram complete")
	a.Reset()
	return true
}

// Reset drops the current telegram and returns to header search.
func (a *Assembler) Reset() {
	a.buf.Reset()
	a.framed = false
	a.hasExtraData = false
	a.telegram = fdxb.Telegram{}
}

func (a *Assembler) annotate(start, end int64, class fdxb.AnnotationClass, texts ...string) {
	a.out.Annotate(fdxb.Annotation{Start: start, End: end, Class: class, Texts: texts})
}

func (a *Assembler) annotateField(from, to int, class fdxb.AnnotationClass, texts ...string) {
	for _, s := range fieldSpans(a.buf, from, to) {
		a.annotate(s.start, s.end, class, texts...)
	}
}

func (a *Assembler) findHeader() {
	if !MatchHeader(a.buf) {
		return
	}

	a.framed = true
	first, last := a.buf.At(0), a.buf.At(fdxb.HeaderLength-1)
	a.telegram.Start = first.Start
	a.annotate(first.Start, last.End, fdxb.ClassHeader, "Header", "Hdr", "H")
	a.logger.Debug().Int64("sample", first.Start).Msg("header found")
}

// checkTelegram handles the newest bit of a framed telegram and reports
// whether the telegram is complete.
func (a *Assembler) checkTelegram() bool {
	idx := a.buf.Newest()
	bit := a.buf.At(idx)

	if fdxb.IsLogicSeparator(idx) {
		a.annotate(bit.Start, bit.End, fdxb.ClassLogicSeparator, "Logic Separator", "Logic", "L")
		return false
	}

	switch idx {
	case fdxb.NationalCodeEnd:
		a.nationalCode()
	case fdxb.CountryCodeEnd:
		a.countryCode()
	case fdxb.DataBlockFlagPosition:
		a.dataBlockFlag(bit)
	case fdxb.ReservedEnd:
		a.telegram.Reserved = uint16(fieldValue(a.buf, fdxb.ReservedStart, fdxb.ReservedEnd))
	case fdxb.AnimalAppFlagPosition:
		a.telegram.AnimalApplication = bit.Value == 1
		a.annotate(bit.Start, bit.End, fdxb.ClassAnimalAppFlag, "Animal Application Flag", "Animal Flag", "A")
	case fdxb.CRCEnd:
		a.checksum()
		// without a data block there is nothing left to read
		return !a.hasExtraData
	case fdxb.ExtraDataEnd:
		if a.hasExtraData {
			a.applicationData()
			return true
		}
	}
	return false
}

func (a *Assembler) nationalCode() {
	code := fieldValue(a.buf, fdxb.NationalCodeStart, fdxb.NationalCodeEnd)
	a.telegram.NationalCode = code
	a.annotateField(fdxb.NationalCodeStart, fdxb.NationalCodeEnd, fdxb.ClassNationalCode,
		fmt.Sprintf("National Code: %d", code), "Code", "N")
}

func (a *Assembler) countryCode() {
	code := uint16(fieldValue(a.buf, fdxb.CountryCodeStart, fdxb.CountryCodeEnd))
	a.telegram.CountryCode = code
	a.annotateField(fdxb.CountryCodeStart, fdxb.CountryCodeEnd, fdxb.ClassCountryCode,
		fmt.Sprintf("Country Code: %d", code), "Country", "C")

	a.telegram.TagID = fdxb.FormatTagID(code, a.telegram.NationalCode)
	a.annotate(a.buf.At(fdxb.NationalCodeStart).Start, a.buf.At(fdxb.CountryCodeEnd).End, fdxb.ClassID,
		"Tag ID: "+a.telegram.TagID, "ID: "+a.telegram.TagID, a.telegram.TagID)
}

func (a *Assembler) dataBlockFlag(bit fdxb.Bit) {
	a.hasExtraData = bit.Value == 1
	a.telegram.DataBlock = a.hasExtraData
	a.annotate(bit.Start, bit.End, fdxb.ClassDataBlockFlag, "Data Block Flag", "Data Flag", "D")
	if a.hasExtraData {
		a.annotate(bit.Start, bit.End, fdxb.ClassExtraData, "Contains Extra Data", "Extra True", "E")
	} else {
		a.annotate(bit.Start, bit.End, fdxb.ClassNoExtraData, "No Extra Data", "Extra False", "X")
	}
}

func (a *Assembler) checksum() {
	a.annotateField(fdxb.CRCStart, fdxb.CRCEnd, fdxb.ClassCRC, "CRC16 Checksum", "CRC", "C")

	res := validateChecksum(a.buf)
	a.telegram.Checksum = res.given
	a.telegram.ComputedChecksum = res.computed
	a.telegram.ChecksumValid = res.valid()

	start, end := a.buf.At(fdxb.CRCStart).Start, a.buf.At(fdxb.CRCEnd).End
	if res.valid() {
		a.annotate(start, end, fdxb.ClassValidChecksum,
			"Valid Checksum: "+fdxb.HexString(res.given), "Valid CRC", "V")
		return
	}

	a.logger.Debug().
		Uint16("given", res.given).
		Uint16("computed", res.computed).
		Msg("checksum mismatch")
	a.annotate(start, end, fdxb.ClassInvalidChecksum,
		fmt.Sprintf("Invalid Checksum: Got %s, wanted %s", fdxb.HexString(res.computed), fdxb.HexString(res.given)),
		"Invalid CRC", "E")
}

func (a *Assembler) applicationData() {
	data := uint32(fieldValue(a.buf, fdxb.ExtraDataStart, fdxb.ExtraDataEnd))
	a.telegram.ApplicationData = data
	a.annotateField(fdxb.ExtraDataStart, fdxb.ExtraDataEnd, fdxb.ClassApplicationData,
		fmt.Sprintf("Application Data: 0x%06x", data), "App Data", "X")
}
