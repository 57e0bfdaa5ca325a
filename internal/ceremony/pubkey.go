package ceremony

import (
	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/errs"
	"github.com/trustless-setup/ceremony/internal/keygen"
)

// scalarKeySize returns the encoded width of one keygen.ScalarKey: g1_s,
// g1_s_x (both G1), g2_s_x (G2).
func scalarKeySize(eng curve.Engine, compressed bool) int {
	return 2*eng.SizeG1(compressed) + eng.SizeG2(compressed)
}

func marshalScalarKey(eng curve.Engine, k keygen.ScalarKey, compressed bool) []byte {
	out := make([]byte, 0, scalarKeySize(eng, compressed))
	out = append(out, eng.MarshalG1(k.G1S, compressed)...)
	out = append(out, eng.MarshalG1(k.G1SX, compressed)...)
	out = append(out, eng.MarshalG2(k.G2SX, compressed)...)
	return out
}

func unmarshalScalarKey(eng curve.Engine, data []byte, compressed bool) (keygen.ScalarKey, int, error) {
	g1w := eng.SizeG1(compressed)
	g2w := eng.SizeG2(compressed)
	need := 2*g1w + g2w
	if len(data) < need {
		return keygen.ScalarKey{}, 0, &errs.InvalidLengthError{Expected: need, Got: len(data)}
	}
	s, err := eng.UnmarshalG1(data[0:g1w], compressed)
	if err != nil {
		return keygen.ScalarKey{}, 0, err
	}
	sx, err := eng.UnmarshalG1(data[g1w:2*g1w], compressed)
	if err != nil {
		return keygen.ScalarKey{}, 0, err
	}
	sxG2, err := eng.UnmarshalG2(data[2*g1w:need], compressed)
	if err != nil {
		return keygen.ScalarKey{}, 0, err
	}
	return keygen.ScalarKey{G1S: s, G1SX: sx, G2SX: sxG2}, need, nil
}

// phase1PublicKeySize is the encoded width of a Phase 1 (tau, alpha, beta)
// public key.
func phase1PublicKeySize(eng curve.Engine, compressed bool) int {
	return 3 * scalarKeySize(eng, compressed)
}

// marshalPhase1PublicKey serializes pub's three ScalarKeys back to back, the
// trailing region of a Phase 1 response file (§6's file format).
func marshalPhase1PublicKey(eng curve.Engine, pub *keygen.PublicKey, compressed bool) []byte {
	out := make([]byte, 0, phase1PublicKeySize(eng, compressed))
	out = append(out, marshalScalarKey(eng, pub.Tau, compressed)...)
	out = append(out, marshalScalarKey(eng, pub.Alpha, compressed)...)
	out = append(out, marshalScalarKey(eng, pub.Beta, compressed)...)
	return out
}

func unmarshalPhase1PublicKey(eng curve.Engine, data []byte, compressed bool) (*keygen.PublicKey, error) {
	tau, n1, err := unmarshalScalarKey(eng, data, compressed)
	if err != nil {
		return nil, err
	}
	alpha, n2, err := unmarshalScalarKey(eng, data[n1:], compressed)
	if err != nil {
		return nil, err
	}
	beta, _, err := unmarshalScalarKey(eng, data[n1+n2:], compressed)
	if err != nil {
		return nil, err
	}
	return &keygen.PublicKey{Tau: tau, Alpha: alpha, Beta: beta, HasAlphaBeta: true}, nil
}
