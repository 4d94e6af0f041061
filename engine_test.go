package treehash_test

import (
	"context"
	"encoding/hex"
	"math/rand"
	"testing"

	"github.com/gordian-engine/treehash"
	"github.com/gordian-engine/treehash/b3"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

// Digest of 2^20 bytes of 0xff, hashed as 2^10 chunks.
const ffMiBDigestHex = "036ba936bcdc69c638139eb67dcb044ddcc584d72cbb7d82a15cea70df2dd4cd"

func allModes() []treehash.Mode {
	return []treehash.Mode{
		treehash.ModeSequential,
		treehash.ModeParallel,
		treehash.ModePipelined,
	}
}

func randomInput(t *testing.T, chunkCount int) []byte {
	t.Helper()

	rng := rand.New(rand.NewSource(int64(chunkCount)))
	input := make([]byte, chunkCount*b3.ChunkLen)
	_, err := rng.Read(input)
	require.NoError(t, err)
	return input
}

func TestHash_referenceVector(t *testing.T) {
	t.Parallel()

	exp, err := hex.DecodeString(ffMiBDigestHex)
	require.NoError(t, err)

	const chunkCount = 1 << 10
	input := make([]byte, chunkCount*b3.ChunkLen)
	for i := range input {
		input[i] = 0xff
	}

	for _, mode := range allModes() {
		t.Run(mode.String(), func(t *testing.T) {
			t.Parallel()

			e := treehash.NewEngine(treehash.Config{
				Mode: mode,
				Log:  slogt.New(t),
			})

			res, err := e.Hash(t.Context(), input, chunkCount)
			require.NoError(t, err)
			require.Equal(t, exp, res.Digest[:])
		})
	}
}

func TestHash_matchesBLAKE3(t *testing.T) {
	t.Parallel()

	for _, chunkCount := range []int{1, 2, 4, 8, 32} {
		input := randomInput(t, chunkCount)
		exp := blake3.Sum256(input)

		for _, mode := range allModes() {
			e := treehash.NewEngine(treehash.Config{Mode: mode})

			res, err := e.Hash(t.Context(), input, chunkCount)
			require.NoError(t, err)
			require.Equal(t, exp, res.Digest,
				"mode %v, %d chunks", mode, chunkCount)
		}
	}
}

func TestHash_deterministicAcrossWorkerCounts(t *testing.T) {
	t.Parallel()

	const chunkCount = 16
	input := randomInput(t, chunkCount)

	ref, err := treehash.Sum(input, chunkCount)
	require.NoError(t, err)

	for _, workers := range []int{1, 3, 8, 64} {
		e := treehash.NewEngine(treehash.Config{
			Mode:    treehash.ModeParallel,
			Workers: workers,
		})

		// Repeated calls must be bit-identical
		// regardless of scheduling.
		for range 3 {
			res, err := e.Hash(t.Context(), input, chunkCount)
			require.NoError(t, err)
			require.Equal(t, ref, res.Digest, "workers=%d", workers)
		}
	}
}

func TestHash_singleChunk(t *testing.T) {
	t.Parallel()

	input := randomInput(t, 1)

	// A single chunk bypasses the tree combiner:
	// the digest is the chunk's own chaining value,
	// with the root flag carried on its final block.
	cv := b3.ChunkCV(0, input, b3.FlagRoot)
	var exp [32]byte
	b3.EncodeCV(exp[:], &cv)

	for _, mode := range allModes() {
		e := treehash.NewEngine(treehash.Config{Mode: mode})

		res, err := e.Hash(t.Context(), input, 1)
		require.NoError(t, err)
		require.Equal(t, exp, res.Digest, "mode %v", mode)
	}
}

func TestHash_preconditions(t *testing.T) {
	t.Parallel()

	e := treehash.NewEngine(treehash.Config{})
	ctx := context.Background()

	_, err := e.Hash(ctx, make([]byte, 3*b3.ChunkLen), 3)
	require.ErrorIs(t, err, treehash.ErrChunkCount)

	_, err = e.Hash(ctx, nil, 0)
	require.ErrorIs(t, err, treehash.ErrChunkCount)

	_, err = e.Hash(ctx, make([]byte, 2*b3.ChunkLen), -2)
	require.ErrorIs(t, err, treehash.ErrChunkCount)

	_, err = e.Hash(ctx, make([]byte, 2*b3.ChunkLen-1), 2)
	require.ErrorIs(t, err, treehash.ErrInputSize)

	_, err = e.Hash(ctx, make([]byte, 4*b3.ChunkLen), 2)
	require.ErrorIs(t, err, treehash.ErrInputSize)
}

func TestHash_elapsedPopulated(t *testing.T) {
	t.Parallel()

	input := randomInput(t, 4)

	e := treehash.NewEngine(treehash.Config{Log: slogt.New(t)})
	res, err := e.Hash(t.Context(), input, 4)
	require.NoError(t, err)
	require.Positive(t, res.Elapsed)
}

func TestSum(t *testing.T) {
	t.Parallel()

	input := randomInput(t, 2)

	got, err := treehash.Sum(input, 2)
	require.NoError(t, err)
	require.Equal(t, blake3.Sum256(input), got)

	_, err = treehash.Sum(input, 5)
	require.ErrorIs(t, err, treehash.ErrChunkCount)
}
