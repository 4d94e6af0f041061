package b3

// ParentBlock concatenates two chaining values into one message block.
func ParentBlock(left, right [8]uint32) [16]uint32 {
	var block [16]uint32
	copy(block[:8], left[:])
	copy(block[8:], right[:])
	return block
}

// ParentCV merges two child chaining values into their parent's
// chaining value. Parent compressions always run with the IV as input
// chaining value and a zero counter.
func ParentCV(left, right [8]uint32, flags uint32) [8]uint32 {
	block := ParentBlock(left, right)
	cv := IV
	return Compress(&cv, &block, 0, BlockLen, flags|FlagParent)
}

// RootCV is the final merge of the tree reduction.
// Its output, little-endian encoded, is the digest.
func RootCV(left, right [8]uint32) [8]uint32 {
	return ParentCV(left, right, FlagRoot)
}
