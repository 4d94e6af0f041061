package b3

import "fmt"

// BlockFlags returns the chunk-position flags for block j of a chunk:
// FlagChunkStart on the first block, FlagChunkEnd on the last,
// zero for the fourteen blocks in between.
func BlockFlags(j int) uint32 {
	var f uint32
	if j == 0 {
		f |= FlagChunkStart
	}
	if j == ChunkBlocks-1 {
		f |= FlagChunkEnd
	}
	return f
}

// ChunkCV sequentially compresses the sixteen message blocks of one
// 1024-byte chunk, carrying the chaining value from block to block,
// and returns the chunk's leaf chaining value.
//
// chunkIndex is the zero-based chunk position within the input;
// it is the compression counter for every block of the chunk.
//
// lastFlags is ORed into the final block's flags.
// It is FlagRoot when the chunk is the entire input, zero otherwise.
func ChunkCV(chunkIndex uint64, chunk []byte, lastFlags uint32) [8]uint32 {
	if len(chunk) < ChunkLen {
		panic(fmt.Errorf(
			"BUG: chunk must be at least %d bytes (got %d)", ChunkLen, len(chunk),
		))
	}

	cv := IV
	var block [16]uint32
	for j := 0; j < ChunkBlocks; j++ {
		DecodeBlock(&block, chunk[j*BlockLen:])

		flags := BlockFlags(j)
		if j == ChunkBlocks-1 {
			flags |= lastFlags
		}

		cv = Compress(&cv, &block, chunkIndex, BlockLen, flags)
	}
	return cv
}
