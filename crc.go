package apng

import "hash/crc32"

// crcTable is the reflected CRC-32 table (polynomial 0xEDB88320) used by PNG.
// It is built once and never written again, so concurrent builds share it.
var crcTable = crc32.MakeTable(crc32.IEEE)

// Checksum returns the PNG chunk CRC of b: register starts at all ones and the
// result is inverted.
func Checksum(b []byte) uint32 {
	return crc32.Update(0, crcTable, b)
}

// chunkChecksum is the CRC of a chunk, which covers the type and the data but
// not the length.
func chunkChecksum(typ string, data []byte) uint32 {
	crc := crc32.Update(0, crcTable, []byte(typ))
	return crc32.Update(crc, crcTable, data)
}
