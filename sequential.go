package treehash

import (
	"github.com/gordian-engine/treehash/b3"
	"github.com/gordian-engine/treehash/internal/cvmem"
)

// hashSequential is the reference pipeline:
// one leaf pass over the chunks, then the merge levels in order,
// then the root merge, all on the calling goroutine.
func hashSequential(input []byte, buf *cvmem.Buffer) {
	n := buf.ChunkCount()

	if n == 1 {
		// The single chunk is the whole tree:
		// its final block carries the root flag
		// and its leaf slot is the digest slot.
		buf.SetLeaf(0, b3.ChunkCV(0, input, b3.FlagRoot))
		return
	}

	for i := range n {
		buf.SetLeaf(i, b3.ChunkCV(uint64(i), input[i*b3.ChunkLen:], 0))
	}

	for r := range buf.MergeLevels() {
		for i := range buf.LevelWidth(r) {
			left, right := buf.LevelChildren(r, i)
			buf.SetLevelNode(r, i, b3.ParentCV(left, right, 0))
		}
	}

	left, right := buf.RootChildren()
	buf.SetDigest(b3.RootCV(left, right))
}
