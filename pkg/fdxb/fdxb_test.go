package fdxb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnnotationClasses(t *testing.T) {
	require.Len(t, Annotations, int(ClassInvalidChecksum)+1)

	tests := []struct {
		class AnnotationClass
		id    string
		desc  string
		row   string
	}{
		{ClassBit, "bit", "Bit", "bits"},
		{ClassHeader, "header", "Header", "fields"},
		{ClassNationalCode, "national-code", "National Code", "fields"},
		{ClassCountryCode, "country-code", "Country Code", "fields"},
		{ClassID, "id", "ID", "values"},
		{ClassInvalidChecksum, "invalid-checksum", "Invalid Checksum", "values"},
		{AnnotationClass(42), "unknown", "Unknown", ""},
	}
	for _, tc := range tests {
		require.Equal(t, tc.id, tc.class.ID())
		require.Equal(t, tc.desc, tc.class.String())
		require.Equal(t, tc.row, tc.class.Row())
	}
}

func TestEveryClassHasOneRow(t *testing.T) {
	seen := make(map[AnnotationClass]int)
	for _, row := range AnnotationRows {
		for _, c := range row.Classes {
			seen[c]++
		}
	}
	for c := range Annotations {
		require.Equal(t, 1, seen[AnnotationClass(c)], "class %d", c)
	}
}

func TestMetadata(t *testing.T) {
	require.Equal(t, "fdx-b", Metadata.ID)
	require.Len(t, Metadata.Channels, 1)
	require.Equal(t, "data", Metadata.Channels[0].ID)
}

func TestLayout(t *testing.T) {
	require.Equal(t, 11, HeaderLength)
	require.Equal(t, 128, TelegramLength)
	require.Len(t, LogicSeparatorPositions, 13)

	for i := 0; i < TelegramLength; i++ {
		want := i >= HeaderLength && (i-HeaderLength)%9 == 0
		require.Equal(t, want, IsLogicSeparator(i), "offset %d", i)
	}
}

func TestFormatting(t *testing.T) {
	require.Equal(t, "999000001234567", FormatTagID(999, 1234567))
	require.Equal(t, "040274877906943", FormatTagID(40, 274877906943))
	require.Equal(t, "0x2189", HexString(0x2189))
	require.Equal(t, "0x000f", HexString(0xf))
}

func TestBitAndCollector(t *testing.T) {
	require.Equal(t, byte('1'), Bit{Value: 1}.Char())
	require.Equal(t, byte('0'), Bit{Value: 0}.Char())

	var c Collector
	c.Annotate(Annotation{Class: ClassBit, Texts: []string{"1"}})
	c.Annotate(Annotation{Class: ClassHeader, Texts: []string{"Header", "Hdr", "H"}})
	c.Annotate(Annotation{Class: ClassBit, Texts: []string{"0"}})
	c.Complete(Telegram{TagID: "999000001234567"})

	require.Len(t, c.OfClass(ClassBit), 2)
	require.Equal(t, "Header", c.OfClass(ClassHeader)[0].Text())
	require.Empty(t, Annotation{}.Text())
	require.Len(t, c.Telegrams, 1)
}
