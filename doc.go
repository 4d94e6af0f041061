// Package treehash computes BLAKE3 digests of chunk-aligned byte buffers.
//
// The input is decomposed into fixed 1024-byte chunks.
// Each chunk's sixteen message blocks are compressed sequentially into a
// leaf chaining value, and the leaves are reduced pairwise, level by
// level, through a complete binary Merkle tree to a single root digest.
// The chunk count must be a power of two, so every level of the tree is
// full and the reduction never has an odd remainder.
//
// An [Engine] runs the computation in one of three modes:
// a sequential reference mode, a worker-pool mode that fans chunks and
// merge pairs out across goroutines with a barrier between consecutive
// tree levels, and a pipelined mode that time-multiplexes a single
// compression engine over an ordered request/response link
// (see [CompressLink]).
//
// The output is bit-identical to the BLAKE3 specification for the
// 32-byte, non-keyed profile.
package treehash
