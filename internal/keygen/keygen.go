// Package keygen implements the per-contributor keypair (§4.3): a private
// scalar triple (τ, α, β) and a Schnorr-style public key binding each scalar
// to the transcript digest it was contributed against.
package keygen

import (
	"io"
	"math/big"

	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/errs"
	"github.com/trustless-setup/ceremony/internal/hashrand"
)

// Personalization bytes distinguishing the three scalars a Phase 1
// contribution binds into one public key. Phase 2 contributions only ever
// use PersonalizationDelta.
const (
	PersonalizationTau byte = iota
	PersonalizationAlpha
	PersonalizationBeta
	PersonalizationDelta
)

// ScalarKey is one (g1_s, g1_s_x, g2_s_x) triple, published for a single
// secret scalar.
type ScalarKey struct {
	G1S   curve.PointG1
	G1SX  curve.PointG1
	G2SX  curve.PointG2
}

// PublicKey is the triple of ScalarKeys a Phase 1 contribution publishes, or
// the single ScalarKey (stored in Tau) a Phase 2 contribution publishes for
// δ.
type PublicKey struct {
	Tau   ScalarKey
	Alpha ScalarKey
	Beta  ScalarKey
	// HasAlphaBeta is false for a Phase 2 (single-scalar δ) key.
	HasAlphaBeta bool
}

// PrivateKey holds (τ, α, β) by value. Zeroize must be called before the
// stack frame that owns it returns; callers never get a way to copy the raw
// scalars out through the exported API.
type PrivateKey struct {
	tau, alpha, beta *big.Int
}

// Tau, Alpha, Beta expose the scalars to the ACC/MPC2 contribution routines
// that must own them for the duration of a single contribution. They are
// not general accessors: nothing else in this module calls them.
func (k *PrivateKey) Tau() *big.Int   { return k.tau }
func (k *PrivateKey) Alpha() *big.Int { return k.alpha }
func (k *PrivateKey) Beta() *big.Int  { return k.beta }

// Zeroize overwrites the private scalars' backing words with zero. Callers
// must defer this immediately after obtaining a PrivateKey.
func (k *PrivateKey) Zeroize() {
	zero := func(x *big.Int) {
		if x == nil {
			return
		}
		words := x.Bits()
		for i := range words {
			words[i] = 0
		}
		x.SetInt64(0)
	}
	zero(k.tau)
	zero(k.alpha)
	zero(k.beta)
}

// scalarKeyFor derives one ScalarKey for secret x, personalized with p,
// binding it to digest.
func scalarKeyFor(eng curve.Engine, rng io.Reader, digest []byte, x *big.Int, p byte) (ScalarKey, error) {
	s, err := randomG1(eng, rng)
	if err != nil {
		return ScalarKey{}, err
	}
	sx := eng.ScalarMulG1(s, x)

	h := hashrand.CalculateHash(ConcatForHash(digest, s.Bytes(), sx.Bytes(), p))
	g2s := eng.HashToG2(h[:])
	g2sx := eng.ScalarMulG2(g2s, x)

	return ScalarKey{G1S: s, G1SX: sx, G2SX: g2sx}, nil
}

func ConcatForHash(digest, g1s, g1sx []byte, p byte) []byte {
	out := make([]byte, 0, len(digest)+len(g1s)+len(g1sx)+1)
	out = append(out, digest...)
	out = append(out, g1s...)
	out = append(out, g1sx...)
	out = append(out, p)
	return out
}

// randomG1 draws a G1 point by scaling the generator by a scalar made from
// 64 bytes of rng reduced modulo the curve's order.
func randomG1(eng curve.Engine, rng io.Reader) (curve.PointG1, error) {
	buf := make([]byte, 64)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, err
	}
	s := eng.ScalarFromDigest(buf)
	return eng.ScalarMulG1(eng.G1Generator(), s), nil
}

// KeyGeneration draws (τ, α, β) uniformly from rng and produces the Phase 1
// public/private keypair bound to digest, which must be exactly 64 bytes
// (the BLAKE2b-512 digest of the previous transcript).
func KeyGeneration(eng curve.Engine, rng io.Reader, digest []byte) (*PublicKey, *PrivateKey, error) {
	if len(digest) != hashrand.DigestSize {
		return nil, nil, &errs.InvalidLengthError{Expected: hashrand.DigestSize, Got: len(digest)}
	}

	tau, err := randomScalar(eng, rng)
	if err != nil {
		return nil, nil, err
	}
	alpha, err := randomScalar(eng, rng)
	if err != nil {
		return nil, nil, err
	}
	beta, err := randomScalar(eng, rng)
	if err != nil {
		return nil, nil, err
	}

	tauKey, err := scalarKeyFor(eng, rng, digest, tau, PersonalizationTau)
	if err != nil {
		return nil, nil, err
	}
	alphaKey, err := scalarKeyFor(eng, rng, digest, alpha, PersonalizationAlpha)
	if err != nil {
		return nil, nil, err
	}
	betaKey, err := scalarKeyFor(eng, rng, digest, beta, PersonalizationBeta)
	if err != nil {
		return nil, nil, err
	}

	pub := &PublicKey{Tau: tauKey, Alpha: alphaKey, Beta: betaKey, HasAlphaBeta: true}
	priv := &PrivateKey{tau: tau, alpha: alpha, beta: beta}
	return pub, priv, nil
}

// DeltaKeyGeneration draws δ uniformly from rng and produces the Phase 2
// public/private keypair bound to digest, which must be exactly 64 bytes
// (the BLAKE2b-512 digest of cs_hash || serialize(contributions)).
func DeltaKeyGeneration(eng curve.Engine, rng io.Reader, digest []byte) (*PublicKey, *big.Int, error) {
	if len(digest) != hashrand.DigestSize {
		return nil, nil, &errs.InvalidLengthError{Expected: hashrand.DigestSize, Got: len(digest)}
	}
	delta, err := randomScalar(eng, rng)
	if err != nil {
		return nil, nil, err
	}
	key, err := scalarKeyFor(eng, rng, digest, delta, PersonalizationDelta)
	if err != nil {
		return nil, nil, err
	}
	return &PublicKey{Tau: key}, delta, nil
}

func randomScalar(eng curve.Engine, rng io.Reader) (*big.Int, error) {
	order := eng.Order()
	for {
		buf := make([]byte, (order.BitLen()+7)/8+8)
		if _, err := io.ReadFull(rng, buf); err != nil {
			return nil, err
		}
		s := new(big.Int).SetBytes(buf)
		s.Mod(s, order)
		if s.Sign() != 0 {
			return s, nil
		}
	}
}

// RecomputeG2S recomputes g2_s for key, bound to digest and personalization
// p, without trusting anything the contributor published beyond g1_s/g1_s_x.
func RecomputeG2S(eng curve.Engine, digest []byte, p byte, key ScalarKey) curve.PointG2 {
	h := hashrand.CalculateHash(ConcatForHash(digest, key.G1S.Bytes(), key.G1SX.Bytes(), p))
	return eng.HashToG2(h[:])
}

// VerifyScalarKey checks e(g1_s, g2_s_x) == e(g1_s_x, g2_s) where g2_s is
// recomputed from digest, the public-key-consistency check shared by ACC and
// MPC2 (§4.4.4 step 2, §4.6.3).
func VerifyScalarKey(eng curve.Engine, digest []byte, p byte, key ScalarKey) (bool, error) {
	g2s := RecomputeG2S(eng, digest, p, key)
	return eng.PairingCheck([]curve.PointG1{key.G1S, key.G1SX}, []curve.PointG2{key.G2SX, eng.NegG2(g2s)})
}
