package phase2

import (
	"fmt"
	"math/big"
	"testing"

	gnarkecc "github.com/consensys/gnark-crypto/ecc"

	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/groth16setup"
	"github.com/trustless-setup/ceremony/internal/hashrand"
	"github.com/trustless-setup/ceremony/internal/keygen"
	"github.com/trustless-setup/ceremony/internal/phase1"
)

// groth16Prove builds a Groth16 proof for witness (one assignment per
// variable, public wires first starting with the constant-one wire at
// index 0) from fully-verified parameters, with the prover's usual r/s
// blinding terms fixed to zero. This is sound for checking the CRS's
// completeness/soundness end to end, but is not zero-knowledge — exactly
// the scope this module's own ToGroth16Keys already commits to (it hands
// the caller compressed keys, not a hiding proof system).
func groth16Prove(p *Parameters, witness []*big.Int) (curve.PointG1, curve.PointG2, curve.PointG1) {
	eng := p.Engine
	a := p.AlphaG1
	b := p.BetaG2
	for v, w := range witness {
		a = eng.AddG1(a, eng.ScalarMulG1(p.A[v], w))
		b = eng.AddG2(b, eng.ScalarMulG2(p.B2[v], w))
	}
	var c curve.PointG1
	haveC := false
	for i, w := range witness[p.Matrices.NumPublic:] {
		term := eng.ScalarMulG1(p.L[i], w)
		if !haveC {
			c, haveC = term, true
			continue
		}
		c = eng.AddG1(c, term)
	}
	if !haveC {
		c = eng.ScalarMulG1(eng.G1Generator(), big.NewInt(0))
	}
	return a, b, c
}

// groth16Verify checks e(A,B) == e(alpha,beta) * e(IC(pub),gamma) * e(C,delta)
// with gamma fixed to the G2 generator, per this module's gamma=1
// simplification (§4.6.1).
func groth16Verify(p *Parameters, publicInputs []*big.Int, a curve.PointG1, b curve.PointG2, c curve.PointG1) (bool, error) {
	eng := p.Engine
	if len(publicInputs) != p.Matrices.NumPublic-1 {
		return false, fmt.Errorf("phase2: expected %d public inputs, got %d", p.Matrices.NumPublic-1, len(publicInputs))
	}
	icEval := p.IC[0]
	for i, w := range publicInputs {
		icEval = eng.AddG1(icEval, eng.ScalarMulG1(p.IC[i+1], w))
	}
	return eng.PairingCheck(
		[]curve.PointG1{a, p.AlphaG1, icEval, c},
		[]curve.PointG2{b, eng.NegG2(p.BetaG2), eng.NegG2(eng.G2Generator()), eng.NegG2(p.DeltaG2)},
	)
}

// TestGroth16EndToEnd covers TestCircuit(x) = { x*x = y } with x=5, y=25
// over BLS12-377: a Phase 1 accumulator with one contribution, reduced into
// Phase 2 parameters with one further contribution, a proof built from the
// resulting CRS, and verification against both the true and a false public
// input.
func TestGroth16EndToEnd(t *testing.T) {
	eng, err := curve.ByID(gnarkecc.BLS12_377)
	if err != nil {
		t.Fatal(err)
	}

	blank := phase1.New(eng, 2)
	blank.PreviousDigest = hashrand.BlankHash()

	blankData, err := blank.Serialize(false, 4)
	if err != nil {
		t.Fatal(err)
	}
	challengeDigest := hashrand.CalculateHash(blankData)

	rng1, err := hashrand.UserEntropyRNG([]byte("phase 1 contributor"))
	if err != nil {
		t.Fatal(err)
	}
	pub1, priv1, err := keygen.KeyGeneration(eng, rng1, challengeDigest[:])
	if err != nil {
		t.Fatal(err)
	}
	defer priv1.Zeroize()
	acc := phase1.Contribute(blank, priv1, curve.BatchExpAuto)
	acc.PreviousDigest = challengeDigest
	if err := phase1.AggregateVerification(blank, acc, pub1); err != nil {
		t.Fatalf("phase 1 contribution failed to verify: %v", err)
	}

	matrices := xSquaredMatrices()
	radix, err := groth16setup.Compute(acc, 1)
	if err != nil {
		t.Fatal(err)
	}
	initial, err := New(acc, radix, matrices)
	if err != nil {
		t.Fatal(err)
	}

	rng2, err := hashrand.UserEntropyRNG([]byte("phase 2 contributor"))
	if err != nil {
		t.Fatal(err)
	}
	final, _, err := Contribute(initial, rng2, curve.BatchExpAuto)
	if err != nil {
		t.Fatal(err)
	}
	if err := VerifyContribution(initial, final); err != nil {
		t.Fatalf("phase 2 contribution failed to verify: %v", err)
	}

	witness := []*big.Int{big.NewInt(1), big.NewInt(25), big.NewInt(5)}
	a, b, c := groth16Prove(final, witness)

	ok, err := groth16Verify(final, []*big.Int{big.NewInt(25)}, a, b, c)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected proof to verify against the true public input y=25")
	}

	ok, err = groth16Verify(final, []*big.Int{big.NewInt(26)}, a, b, c)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected proof to fail against the false public input y=26")
	}
}
