// Package hashrand implements the ceremony's digest and randomness
// derivation: BLAKE2b-512 transcript hashing, ChaCha20-seeded deterministic
// RNGs for the user-entropy and beacon paths, and Fiat-Shamir scalar
// expansion for the pairing-ratio random-linear-combination checks.
package hashrand

import (
	"crypto/sha256"

	"golang.org/x/crypto/blake2b"
)

// DigestSize is the length in bytes of every transcript digest in this
// module: BLAKE2b-512.
const DigestSize = 64

// BlankHash is the digest stored in a freshly created transcript's header,
// where there is no previous round to hash.
func BlankHash() [DigestSize]byte {
	return [DigestSize]byte{}
}

// CalculateHash returns the BLAKE2b-512 digest of data.
func CalculateHash(data []byte) [DigestSize]byte {
	return blake2b.Sum512(data)
}

// IteratedSHA256 repeatedly hashes seed with SHA-256, 2^n times, calling
// onCheckpoint every 2^(n-10) iterations (when n >= 10) so a third party can
// verify the beacon derivation in parallel by resuming from any checkpoint.
// It returns the final 32-byte digest.
func IteratedSHA256(seed []byte, n uint, onCheckpoint func(iteration uint64, state [32]byte)) [32]byte {
	var state [32]byte
	copy(state[:], seed)
	if len(seed) < 32 {
		// short seeds are hashed once, not zero-padded, to fill the
		// 32-byte state before iterating.
		h := sha256.Sum256(seed)
		state = h
	}

	total := uint64(1) << n
	var checkpointEvery uint64
	if n >= 10 {
		checkpointEvery = uint64(1) << (n - 10)
	}

	for i := uint64(0); i < total; i++ {
		state = sha256.Sum256(state[:])
		if checkpointEvery != 0 && onCheckpoint != nil && (i+1)%checkpointEvery == 0 {
			onCheckpoint(i+1, state)
		}
	}
	return state
}
