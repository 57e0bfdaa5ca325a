package phase2

import (
	"math/big"
	"testing"

	gnarkecc "github.com/consensys/gnark-crypto/ecc"

	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/groth16setup"
	"github.com/trustless-setup/ceremony/internal/hashrand"
	"github.com/trustless-setup/ceremony/internal/phase1"
)

// xSquaredMatrices encodes the single constraint x*x = y: variable 0 is the
// constant-one wire, variable 1 is the public output y, variable 2 is the
// private input x.
func xSquaredMatrices() *R1CSMatrices {
	return &R1CSMatrices{
		NumPublic:  2,
		NumPrivate: 1,
		Rows: []R1CRow{
			{
				A: map[int]*big.Int{2: big.NewInt(1)},
				B: map[int]*big.Int{2: big.NewInt(1)},
				C: map[int]*big.Int{1: big.NewInt(1)},
			},
		},
	}
}

func setupParams(t *testing.T) *Parameters {
	t.Helper()
	eng, err := curve.ByID(gnarkecc.BW6_761)
	if err != nil {
		t.Fatal(err)
	}
	acc := phase1.New(eng, 1)
	acc.PreviousDigest = hashrand.BlankHash()

	matrices := xSquaredMatrices()
	radix, err := groth16setup.Compute(acc, 1)
	if err != nil {
		t.Fatal(err)
	}
	params, err := New(acc, radix, matrices)
	if err != nil {
		t.Fatal(err)
	}
	return params
}

func TestContributionPassesVerification(t *testing.T) {
	params := setupParams(t)
	rng, err := hashrand.UserEntropyRNG([]byte("phase 2 contributor entropy"))
	if err != nil {
		t.Fatal(err)
	}
	next, _, err := Contribute(params, rng, curve.BatchExpAuto)
	if err != nil {
		t.Fatal(err)
	}
	if err := VerifyContribution(params, next); err != nil {
		t.Fatalf("honest phase 2 contribution must verify: %v", err)
	}
}

func TestTranscriptVerifiesAcrossMultipleContributions(t *testing.T) {
	params := setupParams(t)
	transcript := []*Parameters{params}
	for i := 0; i < 3; i++ {
		rng, err := hashrand.UserEntropyRNG([]byte("another phase 2 contributor"))
		if err != nil {
			t.Fatal(err)
		}
		next, _, err := Contribute(transcript[len(transcript)-1], rng, curve.BatchExpAuto)
		if err != nil {
			t.Fatal(err)
		}
		transcript = append(transcript, next)
	}
	if err := Verify(transcript); err != nil {
		t.Fatalf("full transcript must verify: %v", err)
	}
}

func TestTamperedDeltaFailsVerification(t *testing.T) {
	params := setupParams(t)
	rng, err := hashrand.UserEntropyRNG([]byte("phase 2 contributor entropy, tampered"))
	if err != nil {
		t.Fatal(err)
	}
	next, _, err := Contribute(params, rng, curve.BatchExpAuto)
	if err != nil {
		t.Fatal(err)
	}
	eng := params.Engine
	next.DeltaG1 = eng.ScalarMulG1(next.DeltaG1, big.NewInt(2))
	if err := VerifyContribution(params, next); err == nil {
		t.Fatal("tampered delta_g1 must fail verification")
	}
}

func TestTamperedCSHashOrVKFailsVerification(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *Parameters)
	}{
		{"cs_hash", func(p *Parameters) { p.CSHash[0] ^= 1 }},
		{"alpha_g1", func(p *Parameters) { p.AlphaG1 = p.Engine.ScalarMulG1(p.AlphaG1, big.NewInt(2)) }},
		{"beta_g1", func(p *Parameters) { p.BetaG1 = p.Engine.ScalarMulG1(p.BetaG1, big.NewInt(2)) }},
		{"beta_g2", func(p *Parameters) { p.BetaG2 = p.Engine.ScalarMulG2(p.BetaG2, big.NewInt(2)) }},
		{"ic", func(p *Parameters) { p.IC[0] = p.Engine.ScalarMulG1(p.IC[0], big.NewInt(2)) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := setupParams(t)
			rng, err := hashrand.UserEntropyRNG([]byte("phase 2 contributor entropy, tampered vk"))
			if err != nil {
				t.Fatal(err)
			}
			next, _, err := Contribute(params, rng, curve.BatchExpAuto)
			if err != nil {
				t.Fatal(err)
			}
			tc.mutate(next)
			if err := VerifyContribution(params, next); err == nil {
				t.Fatalf("mutated %s must fail verification", tc.name)
			}
		})
	}
}

func TestToGroth16KeysHasExpectedVectorLengths(t *testing.T) {
	params := setupParams(t)
	pk, vk, err := ToGroth16Keys(params)
	if err != nil {
		t.Fatal(err)
	}
	if len(vk.IC) != params.Matrices.NumPublic {
		t.Fatalf("expected %d IC entries, got %d", params.Matrices.NumPublic, len(vk.IC))
	}
	if len(pk.L) != params.Matrices.NumPrivate {
		t.Fatalf("expected %d L entries, got %d", params.Matrices.NumPrivate, len(pk.L))
	}
}
