package verifier

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	gnarkecc "github.com/consensys/gnark-crypto/ecc"

	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/groth16setup"
	"github.com/trustless-setup/ceremony/internal/hashrand"
	"github.com/trustless-setup/ceremony/internal/phase1"
	"github.com/trustless-setup/ceremony/internal/phase2"
)

func bn254VerifyingKey(t *testing.T) (curve.Engine, *phase2.VerifyingKey) {
	t.Helper()
	eng, err := curve.ByID(gnarkecc.BN254)
	if err != nil {
		t.Fatal(err)
	}
	acc := phase1.New(eng, 1)
	acc.PreviousDigest = hashrand.BlankHash()

	matrices := &phase2.R1CSMatrices{
		NumPublic:  2,
		NumPrivate: 1,
		Rows: []phase2.R1CRow{
			{
				A: map[int]*big.Int{2: big.NewInt(1)},
				B: map[int]*big.Int{2: big.NewInt(1)},
				C: map[int]*big.Int{1: big.NewInt(1)},
			},
		},
	}
	radix, err := groth16setup.Compute(acc, 1)
	if err != nil {
		t.Fatal(err)
	}
	params, err := phase2.New(acc, radix, matrices)
	if err != nil {
		t.Fatal(err)
	}
	_, vk, err := phase2.ToGroth16Keys(params)
	if err != nil {
		t.Fatal(err)
	}
	return eng, vk
}

func TestWriteSolidityProducesContractWithExpectedConstants(t *testing.T) {
	eng, vk := bn254VerifyingKey(t)
	var buf bytes.Buffer
	if err := WriteSolidity(eng, vk, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "contract Verifier") {
		t.Fatal("expected generated contract declaration")
	}
	if !strings.Contains(out, "ALPHA_X") || !strings.Contains(out, "DELTA_Y1") {
		t.Fatal("expected vk constants in generated Solidity")
	}
	if !strings.Contains(out, "IC_LENGTH = 2") {
		t.Fatalf("expected IC_LENGTH to match ic vector length, got:\n%s", out)
	}
}

func TestWriteSolidityRejectsNonBN254Curve(t *testing.T) {
	eng, err := curve.ByID(gnarkecc.BW6_761)
	if err != nil {
		t.Fatal(err)
	}
	vk := &phase2.VerifyingKey{
		AlphaG1: eng.MarshalG1(eng.G1Generator(), true),
		BetaG2:  eng.MarshalG2(eng.G2Generator(), true),
		GammaG2: eng.MarshalG2(eng.G2Generator(), true),
		DeltaG2: eng.MarshalG2(eng.G2Generator(), true),
		IC:      [][]byte{eng.MarshalG1(eng.G1Generator(), true)},
	}
	if err := WriteSolidity(eng, vk, &bytes.Buffer{}); err == nil {
		t.Fatal("expected an error for a non-BN254 curve")
	}
}
