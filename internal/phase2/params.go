// Package phase2 implements the Groth16 circuit-specific MPC (MPC2, §4.6):
// construction of the per-variable query vectors from a Phase 1 radix file
// and a circuit's R1CS matrices, and the iterated delta-only re-randomization
// every subsequent contributor performs.
package phase2

import (
	"math/big"

	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/errs"
	"github.com/trustless-setup/ceremony/internal/groth16setup"
	"github.com/trustless-setup/ceremony/internal/hashrand"
	"github.com/trustless-setup/ceremony/internal/keygen"
	"github.com/trustless-setup/ceremony/internal/phase1"
)

// Parameters is the in-memory Groth16 circuit-specific CRS, at whatever
// point in its MPC contribution history it was loaded or just produced
// (§3, §4.6.1).
type Parameters struct {
	Engine   curve.Engine
	Matrices *R1CSMatrices
	M        int
	CSHash   [hashrand.DigestSize]byte

	AlphaG1 curve.PointG1
	BetaG1  curve.PointG1
	BetaG2  curve.PointG2
	DeltaG1 curve.PointG1
	DeltaG2 curve.PointG2

	// IC is the public-input commitment basis (gamma fixed to 1, per the
	// standard simplification every delta-only MPC2 ceremony relies on:
	// public-wire queries never need re-randomization once Phase 1 is
	// fixed).
	IC []curve.PointG1

	A  []curve.PointG1 // per-variable, all variables
	B1 []curve.PointG1
	B2 []curve.PointG2

	H []curve.PointG1 // length M-1, delta-scaled
	L []curve.PointG1 // per-private-variable, delta-scaled

	Contributions []keygen.PublicKey
}

// New synthesizes the initial Phase 2 parameters (δ = 1) for matrices from
// acc (for the raw monomial tau_g1 powers the H query needs) and radix (for
// the Lagrange-basis evaluations the per-variable queries need). radix.M
// must equal NextPowerOfTwo(matrices.NumConstraints()).
func New(acc *phase1.Accumulator, radix *groth16setup.Radix, matrices *R1CSMatrices) (*Parameters, error) {
	eng := acc.Engine
	m := groth16setup.NextPowerOfTwo(matrices.NumConstraints())
	if radix.M != m {
		return nil, &errs.Phase2Error{Invariant: "radix domain size does not match circuit size"}
	}
	if 2*m-1 > len(acc.TauG1) {
		return nil, &errs.Phase2Error{Invariant: "accumulator too small for this circuit's H query"}
	}

	numVars := matrices.NumVariables()
	aG1 := make([]curve.PointG1, numVars)
	bG1 := make([]curve.PointG1, numVars)
	bG2 := make([]curve.PointG2, numVars)
	cG1 := make([]curve.PointG1, numVars)
	haveA := make([]bool, numVars)
	haveB1 := make([]bool, numVars)
	haveB2 := make([]bool, numVars)
	haveC := make([]bool, numVars)

	for j, row := range matrices.Rows {
		for v, coeff := range row.A {
			term := eng.ScalarMulG1(radix.LagrangeTauG1[j], coeff)
			aG1[v], haveA[v] = accumulateG1(eng, aG1[v], haveA[v], term)
		}
		for v, coeff := range row.B {
			term1 := eng.ScalarMulG1(radix.LagrangeTauG1[j], coeff)
			bG1[v], haveB1[v] = accumulateG1(eng, bG1[v], haveB1[v], term1)
			term2 := eng.ScalarMulG2(radix.LagrangeTauG2[j], coeff)
			bG2[v], haveB2[v] = accumulateG2(eng, bG2[v], haveB2[v], term2)
		}
		for v, coeff := range row.C {
			term := eng.ScalarMulG1(radix.LagrangeTauG1[j], coeff)
			cG1[v], haveC[v] = accumulateG1(eng, cG1[v], haveC[v], term)
		}
	}
	zeroG1 := eng.ScalarMulG1(eng.G1Generator(), big.NewInt(0))
	zeroG2 := eng.ScalarMulG2(eng.G2Generator(), big.NewInt(0))
	for v := 0; v < numVars; v++ {
		if !haveA[v] {
			aG1[v] = zeroG1
		}
		if !haveB1[v] {
			bG1[v] = zeroG1
		}
		if !haveB2[v] {
			bG2[v] = zeroG2
		}
		if !haveC[v] {
			cG1[v] = zeroG1
		}
	}

	// beta_g1 is not a Phase 1 region on its own (only beta_tau_g1 and
	// beta_g2 are); it is recoverable as beta_tau_g1[0] since tau^0 = 1.
	betaG1 := acc.BetaTauG1[0]
	alphaG1 := acc.AlphaTauG1[0]

	// k[v] = beta*A_g1[v] + alpha*B_g1[v] + C_g1[v]: beta and alpha only
	// exist pre-multiplied into the group (as beta_tau_g1/alpha_tau_g1), so
	// this is rebuilt directly from those Lagrange vectors rather than
	// scaling the already-computed A_g1/B_g1 by a scalar nobody retains.
	kG1 := computeKVector(eng, matrices, radix, cG1)

	ic := make([]curve.PointG1, matrices.NumPublic)
	copy(ic, kG1[:matrices.NumPublic])
	l := make([]curve.PointG1, matrices.NumPrivate)
	copy(l, kG1[matrices.NumPublic:])

	hQuery := make([]curve.PointG1, m-1)
	for i := 0; i < m-1; i++ {
		hi := eng.AddG1(acc.TauG1[i+m], eng.ScalarMulG1(acc.TauG1[i], negOne(eng.Order())))
		hQuery[i] = hi
	}

	p := &Parameters{
		Engine:   eng,
		Matrices: matrices,
		M:        m,
		AlphaG1:  alphaG1,
		BetaG1:   betaG1,
		BetaG2:   acc.BetaG2,
		DeltaG1:  eng.G1Generator(),
		DeltaG2:  eng.G2Generator(),
		IC:       ic,
		A:        aG1,
		B1:       bG1,
		B2:       bG2,
		H:        hQuery,
		L:        l,
	}
	p.CSHash = hashrand.CalculateHash(matrices.CanonicalBytes())
	return p, nil
}

func negOne(order *big.Int) *big.Int { return new(big.Int).Sub(order, big.NewInt(1)) }

func accumulateG1(eng curve.Engine, acc curve.PointG1, have bool, term curve.PointG1) (curve.PointG1, bool) {
	if !have {
		return term, true
	}
	return eng.AddG1(acc, term), true
}

func accumulateG2(eng curve.Engine, acc curve.PointG2, have bool, term curve.PointG2) (curve.PointG2, bool) {
	if !have {
		return term, true
	}
	return eng.AddG2(acc, term), true
}

// computeKVector evaluates k[v] = beta*A_g1[v] + alpha*B_g1[v] + C_g1[v] for
// every variable v.
func computeKVector(eng curve.Engine, matrices *R1CSMatrices, radix *groth16setup.Radix, cG1 []curve.PointG1) []curve.PointG1 {
	numVars := matrices.NumVariables()
	betaA := make([]curve.PointG1, numVars)
	haveBetaA := make([]bool, numVars)
	alphaB := make([]curve.PointG1, numVars)
	haveAlphaB := make([]bool, numVars)

	for j, row := range matrices.Rows {
		for v, coeff := range row.A {
			term := eng.ScalarMulG1(radix.LagrangeBetaTauG1[j], coeff)
			betaA[v], haveBetaA[v] = accumulateG1(eng, betaA[v], haveBetaA[v], term)
		}
		for v, coeff := range row.B {
			term := eng.ScalarMulG1(radix.LagrangeAlphaTauG1[j], coeff)
			alphaB[v], haveAlphaB[v] = accumulateG1(eng, alphaB[v], haveAlphaB[v], term)
		}
	}
	zeroG1 := eng.ScalarMulG1(eng.G1Generator(), big.NewInt(0))
	out := make([]curve.PointG1, numVars)
	for v := 0; v < numVars; v++ {
		ba := betaA[v]
		if !haveBetaA[v] {
			ba = zeroG1
		}
		ab := alphaB[v]
		if !haveAlphaB[v] {
			ab = zeroG1
		}
		out[v] = eng.AddG1(eng.AddG1(ba, ab), cG1[v])
	}
	return out
}
