package b3

// Sizes in bytes.
const (
	// OutLen is the digest and chaining value size.
	OutLen = 32

	// BlockLen is the message block size consumed by one compression.
	BlockLen = 64

	// ChunkLen is the chunk size, the leaf granularity of the hash tree.
	ChunkLen = 1024
)

// ChunkBlocks is the number of message blocks in one chunk.
const ChunkBlocks = ChunkLen / BlockLen

// Compression flags marking a block's position within the hash tree.
const (
	// FlagChunkStart is set on the first block of a chunk.
	FlagChunkStart uint32 = 1 << 0

	// FlagChunkEnd is set on the last block of a chunk.
	FlagChunkEnd uint32 = 1 << 1

	// FlagParent is set when the block is the concatenation
	// of two child chaining values.
	FlagParent uint32 = 1 << 2

	// FlagRoot is set on the single compression
	// whose output becomes the digest.
	FlagRoot uint32 = 1 << 3
)

// IV is the BLAKE3 initialization vector.
// It seeds the chaining value of every chunk and parent compression.
//
// IV is exported for the coordinator packages; it must not be modified.
var IV = [8]uint32{
	0x6A09E667, 0xBB67AE85, 0x3C6EF372, 0xA54FF53A,
	0x510E527F, 0x9B05688C, 0x1F83D9AB, 0x5BE0CD19,
}

// msgPermutation reorders the sixteen message words between rounds:
// new[i] = old[msgPermutation[i]].
var msgPermutation = [16]uint8{2, 6, 3, 10, 7, 0, 4, 13, 1, 11, 12, 5, 9, 14, 15, 8}
