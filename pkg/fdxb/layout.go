package fdxb

// Telegram layout, as bit offsets from the start of the header.
// Offset 0 is the trailing separator of the previous telegram, so the
// header reads as a one followed by ten zeros.
const (
	Header       = "10000000000"
	HeaderLength = len(Header)

	NationalCodeStart = 12
	NationalCodeEnd   = NationalCodeStart + 41
	CountryCodeStart  = 54
	CountryCodeEnd    = CountryCodeStart + 10

	DataBlockFlagPosition = 66
	ReservedStart         = 67
	ReservedEnd           = 81
	AnimalAppFlagPosition = 82

	CRCStart = 84
	CRCEnd   = CRCStart + 16

	ExtraDataStart = 102
	ExtraDataEnd   = ExtraDataStart + 25

	TelegramLength = ExtraDataEnd + 1
)

// LogicSeparatorPositions are the offsets of the filler ones that carry no data.
var LogicSeparatorPositions = []int{11, 20, 29, 38, 47, 56, 65, 74, 83, 92, 101, 110, 119}

var separatorSet = func() map[int]struct{} {
	m := make(map[int]struct{}, len(LogicSeparatorPositions))
	for _, pos := range LogicSeparatorPositions {
		m[pos] = struct{}{}
	}
	return m
}()

// IsLogicSeparator reports whether offset holds a separator bit.
func IsLogicSeparator(offset int) bool {
	_, ok := separatorSet[offset]
	return ok
}
