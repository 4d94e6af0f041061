package b3_test

import (
	"math/rand"
	"testing"

	"github.com/gordian-engine/treehash/b3"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

// The zeebo/blake3 library serves as the reference oracle:
// for inputs whose chunk count is a power of two,
// the flat tree reduction here matches the canonical BLAKE3 tree,
// so digests must agree bit for bit.

func randomChunks(t *testing.T, n int) []byte {
	t.Helper()

	rng := rand.New(rand.NewSource(int64(n)))
	input := make([]byte, n*b3.ChunkLen)
	_, err := rng.Read(input)
	require.NoError(t, err)
	return input
}

func TestChunkCV_singleChunkIsDigest(t *testing.T) {
	t.Parallel()

	input := randomChunks(t, 1)

	cv := b3.ChunkCV(0, input, b3.FlagRoot)

	var digest [b3.OutLen]byte
	b3.EncodeCV(digest[:], &cv)

	require.Equal(t, blake3.Sum256(input), digest)
}

func TestRootCV_twoChunks(t *testing.T) {
	t.Parallel()

	input := randomChunks(t, 2)

	left := b3.ChunkCV(0, input[:b3.ChunkLen], 0)
	right := b3.ChunkCV(1, input[b3.ChunkLen:], 0)
	root := b3.RootCV(left, right)

	var digest [b3.OutLen]byte
	b3.EncodeCV(digest[:], &root)

	require.Equal(t, blake3.Sum256(input), digest)
}

func TestParentCV_fourChunks(t *testing.T) {
	t.Parallel()

	input := randomChunks(t, 4)

	var leaves [4][8]uint32
	for i := range leaves {
		leaves[i] = b3.ChunkCV(uint64(i), input[i*b3.ChunkLen:], 0)
	}

	root := b3.RootCV(
		b3.ParentCV(leaves[0], leaves[1], 0),
		b3.ParentCV(leaves[2], leaves[3], 0),
	)

	var digest [b3.OutLen]byte
	b3.EncodeCV(digest[:], &root)

	require.Equal(t, blake3.Sum256(input), digest)
}

func TestChunkCV_counterMatters(t *testing.T) {
	t.Parallel()

	input := randomChunks(t, 1)

	// The chunk index feeds the compression counter,
	// so the same bytes at different chunk positions
	// must produce different leaf chaining values.
	require.NotEqual(t,
		b3.ChunkCV(0, input, 0),
		b3.ChunkCV(1, input, 0),
	)
}

func TestChunkCV_rejectsShortChunk(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		b3.ChunkCV(0, make([]byte, b3.ChunkLen-1), 0)
	})
}
