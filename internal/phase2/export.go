package phase2

import (
	"encoding/json"
	"io"

	"github.com/trustless-setup/ceremony/internal/curve"
)

func marshalG1Slice(eng curve.Engine, points []curve.PointG1) [][]byte {
	out := make([][]byte, len(points))
	for i, p := range points {
		out[i] = eng.MarshalG1(p, true)
	}
	return out
}

func marshalG2Slice(eng curve.Engine, points []curve.PointG2) [][]byte {
	out := make([][]byte, len(points))
	for i, p := range points {
		out[i] = eng.MarshalG2(p, true)
	}
	return out
}

// VerifyingKey is the Groth16 verifying key in the shape a verifier needs:
// e(proof.A, proof.B) == e(AlphaG1, BetaG2) * e(IC(publicInputs), GammaG2) *
// e(proof.C, DeltaG2), with gamma fixed to 1 so GammaG2 == G2.
type VerifyingKey struct {
	AlphaG1 []byte   `json:"alpha_g1"`
	BetaG2  []byte   `json:"beta_g2"`
	GammaG2 []byte   `json:"gamma_g2"`
	DeltaG2 []byte   `json:"delta_g2"`
	IC      [][]byte `json:"ic"`
}

// ProvingKey is the Groth16 proving key: everything a prover needs besides
// the witness.
type ProvingKey struct {
	AlphaG1 []byte   `json:"alpha_g1"`
	BetaG1  []byte   `json:"beta_g1"`
	BetaG2  []byte   `json:"beta_g2"`
	DeltaG1 []byte   `json:"delta_g1"`
	DeltaG2 []byte   `json:"delta_g2"`
	A       [][]byte `json:"a"`
	B1      [][]byte `json:"b1"`
	B2      [][]byte `json:"b2"`
	H       [][]byte `json:"h"`
	L       [][]byte `json:"l"`
}

// ToGroth16Keys adapts a fully-verified Parameters into a (ProvingKey,
// VerifyingKey) pair a prover/verifier can consume directly: compressed
// point encodings, ready for ExportKeys or for an in-process bridge into a
// pairing library of the caller's choice.
func ToGroth16Keys(p *Parameters) (*ProvingKey, *VerifyingKey, error) {
	eng := p.Engine
	vk := &VerifyingKey{
		AlphaG1: eng.MarshalG1(p.AlphaG1, true),
		BetaG2:  eng.MarshalG2(p.BetaG2, true),
		GammaG2: eng.MarshalG2(eng.G2Generator(), true),
		DeltaG2: eng.MarshalG2(p.DeltaG2, true),
		IC:      marshalG1Slice(eng, p.IC),
	}
	pk := &ProvingKey{
		AlphaG1: eng.MarshalG1(p.AlphaG1, true),
		BetaG1:  eng.MarshalG1(p.BetaG1, true),
		BetaG2:  eng.MarshalG2(p.BetaG2, true),
		DeltaG1: eng.MarshalG1(p.DeltaG1, true),
		DeltaG2: eng.MarshalG2(p.DeltaG2, true),
		A:       marshalG1Slice(eng, p.A),
		B1:      marshalG1Slice(eng, p.B1),
		B2:      marshalG2Slice(eng, p.B2),
		H:       marshalG1Slice(eng, p.H),
		L:       marshalG1Slice(eng, p.L),
	}
	return pk, vk, nil
}

// ExportKeys writes pk and vk as vk.json/pk.json-shaped documents to the
// given writers, for consumption by non-Go tooling (auditors, JS/Solidity
// verifier generators) rather than this module's own gob-based cache path.
func ExportKeys(pk *ProvingKey, vk *VerifyingKey, pkWriter, vkWriter io.Writer) error {
	if err := json.NewEncoder(pkWriter).Encode(pk); err != nil {
		return err
	}
	return json.NewEncoder(vkWriter).Encode(vk)
}
