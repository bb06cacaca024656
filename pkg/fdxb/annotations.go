package fdxb

type AnnotationClass int

const (
	ClassBit AnnotationClass = iota
	ClassHeader
	ClassLogicSeparator
	ClassDataBlockFlag
	ClassAnimalAppFlag
	ClassCRC
	ClassApplicationData
	ClassNationalCode
	ClassCountryCode
	ClassID
	ClassExtraData
	ClassNoExtraData
	ClassValidChecksum
	ClassInvalidChecksum
)

// AnnotationInfo describes one annotation class to the host framework.
type AnnotationInfo struct {
	ID   string
	Desc string
}

// AnnotationRow groups annotation classes onto one display row.
type AnnotationRow struct {
	ID      string
	Desc    string
	Classes []AnnotationClass
}

// Annotations is indexed by AnnotationClass.
var Annotations = []AnnotationInfo{
	{"bit", "Bit"},
	{"header", "Header"},
	{"logic-separator", "Logic Separator"},
	{"data-block-flag", "Data Block Flag"},
	{"animal-app-flag", "Animal Application Flag"},
	{"crc-checksum", "CRC16 Checksum"},
	{"application-data", "Application Data"},
	{"national-code", "National Code"},
	{"country-code", "Country Code"},
	{"id", "ID"},
	{"extra-data-true", "Extra Data present"},
	{"extra-data-false", "No Extra Data"},
	{"valid-checksum", "Valid Checksum"},
	{"invalid-checksum", "Invalid Checksum"},
}

var AnnotationRows = []AnnotationRow{
	{"bits", "Bits", []AnnotationClass{ClassBit}},
	{"fields", "Fields", []AnnotationClass{
		ClassHeader, ClassLogicSeparator, ClassDataBlockFlag, ClassAnimalAppFlag,
		ClassCRC, ClassApplicationData, ClassNationalCode, ClassCountryCode,
	}},
	{"values", "Values", []AnnotationClass{
		ClassID, ClassExtraData, ClassNoExtraData, ClassValidChecksum, ClassInvalidChecksum,
	}},
}

// Channel is a logic input consumed by the decoder.
type Channel struct {
	ID   string
	Name string
	Desc string
}

// Metadata is the registration record handed to a capture host.
var Metadata = struct {
	ID       string
	Name     string
	LongName string
	Desc     string
	Channels []Channel
}{
	ID:       "fdx-b",
	Name:     "FDX-B",
	LongName: "FDX-B ISO 11784/11785",
	Desc:     "FDX-B 134.2kHz RFID protocol.",
	Channels: []Channel{{ID: "data", Name: "Data", Desc: "Data line"}},
}

func (c AnnotationClass) valid() bool {
	return c >= 0 && int(c) < len(Annotations)
}

// ID returns the short machine name of the class, e.g. "crc-checksum".
func (c AnnotationClass) ID() string {
	if !c.valid() {
		return "unknown"
	}
	return Annotations[c].ID
}

func (c AnnotationClass) String() string {
	if !c.valid() {
		return "Unknown"
	}
	return Annotations[c].Desc
}

// Row returns the id of the row the class is drawn on.
func (c AnnotationClass) Row() string {
	for _, row := range AnnotationRows {
		for _, member := range row.Classes {
			if member == c {
				return row.ID
			}
		}
	}
	return ""
}
