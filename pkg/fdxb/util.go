package fdxb

import "fmt"

// FormatTagID joins country and national code in their fixed decimal widths.
func FormatTagID(country uint16, national uint64) string {
	return fmt.Sprintf("%03d%012d", country, national)
}

// HexString formats a checksum the way annotations show it.
func HexString(v uint16) string {
	return fmt.Sprintf("0x%04x", v)
}
