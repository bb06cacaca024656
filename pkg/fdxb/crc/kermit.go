// Package crc computes the CRC16/CCITT-Kermit checksum FDX-B telegrams carry.
package crc

import "github.com/sigurn/crc16"

// Kermit parameters: poly 0x1021 reflected (0x8408), init 0, no final xor.
var kermitTable = crc16.MakeTable(crc16.CRC16_KERMIT)

// Kermit returns the checksum of data.
func Kermit(data []byte) uint16 {
	return crc16.Checksum(data, kermitTable)
}
