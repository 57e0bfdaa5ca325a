package hashrand

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

// seedEntropyBytes is the amount of OS randomness mixed into the
// user-entropy RNG derivation, per the ceremony's user path.
const seedEntropyBytes = 1024

// chachaRNG adapts a ChaCha20 keystream into an io.Reader of pseudorandom
// bytes, by XOR-ing the stream against an all-zero buffer.
type chachaRNG struct {
	cipher *chacha20.Cipher
}

func (r *chachaRNG) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	r.cipher.XORKeyStream(p, p)
	return len(p), nil
}

func newChaChaRNG(seed [32]byte) (io.Reader, error) {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return nil, err
	}
	return &chachaRNG{cipher: c}, nil
}

// seedFromDigest reinterprets the first 32 bytes of digest as 8 big-endian
// u32 words, matching the source ceremony's seed layout, and returns them
// back out as a 32-byte ChaCha20 key.
func seedFromDigest(digest [64]byte) [32]byte {
	var words [8]uint32
	for i := 0; i < 8; i++ {
		words[i] = binary.BigEndian.Uint32(digest[i*4 : i*4+4])
	}
	var seed [32]byte
	for i, w := range words {
		binary.BigEndian.PutUint32(seed[i*4:i*4+4], w)
	}
	return seed
}

// UserEntropyRNG derives a deterministic ChaCha20 stream from 1024 bytes of
// OS randomness XORed in spirit with caller-supplied entropy (both folded
// through a single BLAKE2b-512 hash, matching CalculateHash). The same
// userEntropy with different OS randomness yields different, unpredictable
// output; this is the normal interactive-contribution path.
func UserEntropyRNG(userEntropy []byte) (io.Reader, error) {
	osEntropy := make([]byte, seedEntropyBytes)
	if _, err := rand.Read(osEntropy); err != nil {
		return nil, err
	}
	mixed := make([]byte, 0, len(osEntropy)+len(userEntropy))
	mixed = append(mixed, osEntropy...)
	mixed = append(mixed, userEntropy...)
	digest := blake2b.Sum512(mixed)
	return newChaChaRNG(seedFromDigest(digest))
}

// BeaconRNG derives a deterministic ChaCha20 stream from a public beacon
// hash iterated 2^n times with SHA-256, so any third party can recompute the
// same seed and confirm no participant biased the output. onCheckpoint, if
// non-nil, is called at every 2^(n-10) boundary (see IteratedSHA256).
func BeaconRNG(beaconHash []byte, n uint, onCheckpoint func(iteration uint64, state [32]byte)) (io.Reader, [32]byte, error) {
	final := IteratedSHA256(beaconHash, n, onCheckpoint)
	var digest [64]byte
	copy(digest[:32], final[:])
	copy(digest[32:], final[:])
	r, err := newChaChaRNG(seedFromDigest(digest))
	return r, final, err
}

// FiatShamirStream expands a transcript digest into an unbounded sequence of
// 64-byte blocks via BLAKE2b counter mode: block i = BLAKE2b(digest || i).
// Callers reduce each block mod Fr (curve.Engine.ScalarFromDigest) to obtain
// the r_i coefficients used by random-linear-combination pairing checks.
type FiatShamirStream struct {
	digest  []byte
	counter uint64
}

// NewFiatShamirStream starts a Fiat-Shamir expansion rooted at digest.
func NewFiatShamirStream(digest []byte) *FiatShamirStream {
	d := make([]byte, len(digest))
	copy(d, digest)
	return &FiatShamirStream{digest: d}
}

// Next returns the next 64-byte block in the expansion.
func (s *FiatShamirStream) Next() [64]byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], s.counter)
	s.counter++
	h, _ := blake2b.New512(nil)
	h.Write(s.digest)
	h.Write(buf[:])
	var out [64]byte
	copy(out[:], h.Sum(nil))
	return out
}
