// Package cvmem provides the flat chaining-value buffer
// that backs the tree reduction.
//
// The tree is never materialized as a pointer graph.
// The buffer holds 2*chunkCount chaining-value slots, addressed the same
// way at every level:
//
//	slot chunkCount+i          leaf chaining value of chunk i
//	merge level r              reads at slot offset chunkCount>>r,
//	                           writes at slot offset chunkCount>>(r+1)
//	slot 1                     digest chaining value
//
// The root merge is the degenerate last level, reading slots 2 and 3
// and writing slot 1. For a single chunk the leaf slot and the digest
// slot coincide, so the reduction degenerates to nothing.
package cvmem

import (
	"fmt"
	"math/bits"
)

// Buffer is the intermediate chaining-value storage for one hash call.
//
// Leaf writes and the writes of any one merge level target disjoint
// slot ranges, so a Buffer is safe for concurrent use within a phase
// as long as levels are separated by a barrier.
type Buffer struct {
	slots [][8]uint32

	chunkCount int
}

// New returns a buffer sized for chunkCount leaves.
// chunkCount must be a power of two, at least 1.
func New(chunkCount int) *Buffer {
	if chunkCount < 1 || chunkCount&(chunkCount-1) != 0 {
		panic(fmt.Errorf(
			"BUG: chunk count must be a power of two, at least 1 (got %d)", chunkCount,
		))
	}

	return &Buffer{
		slots: make([][8]uint32, 2*chunkCount),

		chunkCount: chunkCount,
	}
}

// ChunkCount returns the number of leaves the buffer was sized for.
func (b *Buffer) ChunkCount() int {
	return b.chunkCount
}

// MergeLevels returns the number of parent-merge levels
// that run before the root merge.
// For chunkCount = 2^k this is k-1, and 0 for a single chunk.
func (b *Buffer) MergeLevels() int {
	k := bits.Len(uint(b.chunkCount)) - 1
	if k == 0 {
		return 0
	}
	return k - 1
}

// SetLeaf stores the leaf chaining value of chunk i.
func (b *Buffer) SetLeaf(i int, cv [8]uint32) {
	b.slots[b.chunkCount+i] = cv
}

// Leaf returns the leaf chaining value of chunk i.
func (b *Buffer) Leaf(i int) [8]uint32 {
	return b.slots[b.chunkCount+i]
}

// LevelWidth returns the number of pairwise merges at level r.
func (b *Buffer) LevelWidth(r int) int {
	return b.chunkCount >> (r + 1)
}

// LevelChildren returns the two child chaining values
// of merge i at level r.
func (b *Buffer) LevelChildren(r, i int) (left, right [8]uint32) {
	read := b.chunkCount >> r
	return b.slots[read+2*i], b.slots[read+2*i+1]
}

// SetLevelNode stores the output of merge i at level r.
func (b *Buffer) SetLevelNode(r, i int, cv [8]uint32) {
	b.slots[(b.chunkCount>>(r+1))+i] = cv
}

// RootChildren returns the final two chaining values to be merged.
// It must not be called for a single-chunk buffer,
// which has no root merge.
func (b *Buffer) RootChildren() (left, right [8]uint32) {
	if b.chunkCount < 2 {
		panic(fmt.Errorf(
			"BUG: no root merge exists for chunk count %d", b.chunkCount,
		))
	}
	return b.slots[2], b.slots[3]
}

// SetDigest stores the root chaining value.
func (b *Buffer) SetDigest(cv [8]uint32) {
	b.slots[1] = cv
}

// Digest returns the root chaining value.
func (b *Buffer) Digest() [8]uint32 {
	return b.slots[1]
}
