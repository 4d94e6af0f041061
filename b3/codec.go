package b3

import "encoding/binary"

// DecodeBlock interprets 64 little-endian bytes as sixteen message words.
// src must be at least BlockLen bytes.
func DecodeBlock(dst *[16]uint32, src []byte) {
	_ = src[BlockLen-1]
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint32(src[4*i:])
	}
}

// EncodeCV writes the eight words of cv to dst as 32 little-endian bytes.
// dst must be at least OutLen bytes.
func EncodeCV(dst []byte, cv *[8]uint32) {
	_ = dst[OutLen-1]
	for i, w := range cv {
		binary.LittleEndian.PutUint32(dst[4*i:], w)
	}
}
