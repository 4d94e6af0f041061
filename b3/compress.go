// Package b3 implements the BLAKE3 compression primitive and the
// chunk and parent chaining-value computations built on it.
//
// The package only covers the fixed-profile operations the tree engine
// needs: 64-byte blocks, 1024-byte chunks, no keying and no extendable
// output. Everything here is a pure function over fixed-width words.
package b3

import "math/bits"

// g is the quarter-round mixing function,
// applied to the state positions a, b, c, d
// with the two message words mx and my.
func g(state *[16]uint32, a, b, c, d int, mx, my uint32) {
	state[a] = state[a] + state[b] + mx
	state[d] = bits.RotateLeft32(state[d]^state[a], -16)
	state[c] = state[c] + state[d]
	state[b] = bits.RotateLeft32(state[b]^state[c], -12)
	state[a] = state[a] + state[b] + my
	state[d] = bits.RotateLeft32(state[d]^state[a], -8)
	state[c] = state[c] + state[d]
	state[b] = bits.RotateLeft32(state[b]^state[c], -7)
}

// round mixes all sixteen message words into the state,
// first down the columns of the 4x4 state matrix, then down the diagonals.
func round(state, m *[16]uint32) {
	g(state, 0, 4, 8, 12, m[0], m[1])
	g(state, 1, 5, 9, 13, m[2], m[3])
	g(state, 2, 6, 10, 14, m[4], m[5])
	g(state, 3, 7, 11, 15, m[6], m[7])

	g(state, 0, 5, 10, 15, m[8], m[9])
	g(state, 1, 6, 11, 12, m[10], m[11])
	g(state, 2, 7, 8, 13, m[12], m[13])
	g(state, 3, 4, 9, 14, m[14], m[15])
}

// permute reorders the message words for the next round.
func permute(m *[16]uint32) {
	var permuted [16]uint32
	for i := range permuted {
		permuted[i] = m[msgPermutation[i]]
	}
	*m = permuted
}

// Compress is the BLAKE3 compression function.
// It seeds a sixteen-word state from the input chaining value,
// the IV, the block counter, the block length, and the flags,
// then applies seven mixing rounds with a message permutation
// between consecutive rounds.
//
// Only the first half of the final state, XORed with the second half,
// is returned: the second half of the reference output never feeds a
// chaining value or the 32-byte digest, so its trailing XOR with the
// input chaining value is skipped.
func Compress(cv *[8]uint32, block *[16]uint32, counter uint64, blockLen uint32, flags uint32) [8]uint32 {
	var state [16]uint32
	copy(state[:8], cv[:])
	state[8] = IV[0]
	state[9] = IV[1]
	state[10] = IV[2]
	state[11] = IV[3]
	state[12] = uint32(counter)
	state[13] = uint32(counter >> 32)
	state[14] = blockLen
	state[15] = flags

	m := *block
	for r := 0; r < 6; r++ {
		round(&state, &m)
		permute(&m)
	}
	round(&state, &m)

	var out [8]uint32
	for i := range out {
		out[i] = state[i] ^ state[i+8]
	}
	return out
}
