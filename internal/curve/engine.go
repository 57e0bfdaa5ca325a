// Package curve is the capability-set indirection between curve-agnostic
// ceremony logic and gnark-crypto's concrete per-curve types.
//
// gnark-crypto does not expose a single interface spanning bn254, bls12-377
// and bw6-761: each package's G1Affine/G2Affine types return differently
// sized fixed byte arrays from Bytes()/RawBytes(), and each has its own fr.Element
// type. Engine and the PointG1/PointG2 interfaces below are the hand-written
// adapter layer that makes the three curves interchangeable at the protocol
// level, while still doing all arithmetic through gnark-crypto.
package curve

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
)

// PointG1 is a curve-agnostic G1 element.
type PointG1 interface {
	Bytes() []byte    // compressed encoding
	RawBytes() []byte // uncompressed encoding
	IsInfinity() bool
}

// PointG2 is a curve-agnostic G2 element.
type PointG2 interface {
	Bytes() []byte
	RawBytes() []byte
	IsInfinity() bool
}

// Engine gathers the field and group operations the ceremony protocol needs
// from one concrete pairing-friendly curve.
type Engine interface {
	ID() ecc.ID

	// Order is the scalar field modulus r, so that Fr = Z/rZ.
	Order() *big.Int

	// RandomScalar draws a uniform element of Fr \ {0} using crypto/rand.
	RandomScalar() (*big.Int, error)

	// ScalarFromDigest reduces an arbitrary-length byte digest mod r.
	ScalarFromDigest(digest []byte) *big.Int

	G1Generator() PointG1
	G2Generator() PointG2

	ScalarMulG1(p PointG1, s *big.Int) PointG1
	ScalarMulG2(p PointG2, s *big.Int) PointG2

	AddG1(a, b PointG1) PointG1
	AddG2(a, b PointG2) PointG2

	// MultiScalarMulG1/G2 compute sum_i scalars[i]*points[i] with a single
	// multi-exponentiation, used for the random-linear-combination pairing
	// checks in ACC.aggregate_verification and MPC2.verify_contribution.
	MultiScalarMulG1(points []PointG1, scalars []*big.Int) (PointG1, error)
	MultiScalarMulG2(points []PointG2, scalars []*big.Int) (PointG2, error)

	// BatchScalarMulG1 multiplies each point by its corresponding scalar.
	// mode selects between a naive per-point multiplication and a Montgomery
	// batch-inversion based Jacobian/affine conversion; both MUST return
	// identical results, batch-inversion only trades work for a different
	// instruction mix.
	BatchScalarMulG1(points []PointG1, scalars []*big.Int, mode BatchExpMode) []PointG1
	BatchScalarMulG2(points []PointG2, scalars []*big.Int, mode BatchExpMode) []PointG2

	// PairingCheck returns true iff prod_i e(g1[i], g2[i]) == 1 in GT.
	PairingCheck(g1 []PointG1, g2 []PointG2) (bool, error)

	// NegG2 returns the additive inverse of p, used to turn an equality of
	// pairing products e(A,B) == e(C,D) into a single PairingCheck call on
	// {A, C} / {B, -D}.
	NegG2(p PointG2) PointG2

	// HashToG2 maps an arbitrary digest to a G2 element deterministically:
	// the digest is reduced mod r and used to scale the G2 generator. This is
	// not a "nothing-up-my-sleeve" hash-to-curve map, but the Schnorr-style
	// binding scheme here only needs the map to be unpredictable and
	// reproducible by both prover and verifier, not generator-independent.
	HashToG2(digest []byte) PointG2

	// Encoding sizes, fixed per curve and compression mode.
	SizeG1(compressed bool) int
	SizeG2(compressed bool) int

	MarshalG1(p PointG1, compressed bool) []byte
	MarshalG2(p PointG2, compressed bool) []byte
	UnmarshalG1(data []byte, compressed bool) (PointG1, error)
	UnmarshalG2(data []byte, compressed bool) (PointG2, error)

	// InSubGroupG1/G2 run an explicit subgroup-membership check; Unmarshal
	// does not run it implicitly so callers can choose Direct vs Batched
	// checking per the codec's SubgroupCheckMode.
	InSubGroupG1(p PointG1) bool
	InSubGroupG2(p PointG2) bool

	// FFTDomain returns the primitive size-th root of unity (and its
	// inverse) of Fr, plus the inverse of size itself mod r, as used by
	// groth16setup's inverse FFT over group elements. size must be a power
	// of two dividing r-1.
	FFTDomain(size uint64) (generator, generatorInv, sizeInv *big.Int, err error)
}

// BatchExpMode selects the multi-exponentiation strategy for a batch of
// scalar multiplications. The two modes must be semantically equivalent.
type BatchExpMode int

const (
	BatchExpAuto BatchExpMode = iota
	BatchExpDirect
	BatchExpBatchInversion
)

// SubgroupCheckMode selects how a batch of deserialized points is checked
// for subgroup membership.
type SubgroupCheckMode int

const (
	SubgroupCheckAuto SubgroupCheckMode = iota
	SubgroupCheckDirect
	SubgroupCheckBatched
)

// directBatchThreshold is the point count under which a plain per-point
// ScalarMultiplication beats the fixed overhead of a batched Jacobian
// conversion, used only when BatchExpAuto is selected.
const directBatchThreshold = 32

// ByID returns the Engine for a gnark-crypto curve identifier.
func ByID(id ecc.ID) (Engine, error) {
	switch id {
	case ecc.BN254:
		return newBN254Engine(), nil
	case ecc.BLS12_377:
		return newBLS12377Engine(), nil
	case ecc.BW6_761:
		return newBW6761Engine(), nil
	default:
		return nil, ErrUnsupportedCurve{ID: id}
	}
}

// ErrUnsupportedCurve is returned by ByID for any curve outside the three
// this module wires into the ceremony.
type ErrUnsupportedCurve struct {
	ID ecc.ID
}

func (e ErrUnsupportedCurve) Error() string {
	return "curve: unsupported curve " + e.ID.String()
}
