package phase1

import (
	"math/big"

	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/errs"
	"github.com/trustless-setup/ceremony/internal/hashrand"
	"github.com/trustless-setup/ceremony/internal/keygen"
)

// pairingRatio checks e(A,B) == e(C,D) by testing e(A,B)*e(C,-D) == 1.
func pairingRatio(eng curve.Engine, a curve.PointG1, b curve.PointG2, c curve.PointG1, d curve.PointG2) (bool, error) {
	return eng.PairingCheck([]curve.PointG1{a, c}, []curve.PointG2{b, eng.NegG2(d)})
}

// AggregateVerification enforces the four checks of §4.4.4 that a
// contribution from prev to next, attested by pub, was well-formed.
func AggregateVerification(prev, next *Accumulator, pub *keygen.PublicKey) error {
	eng := next.Engine

	// 1. generator anchors
	if string(next.TauG1[0].Bytes()) != string(eng.G1Generator().Bytes()) {
		return &errs.VerificationError{Kind: errs.InvalidGenerator, Context: "tau_g1[0] != G1"}
	}
	if string(next.TauG2[0].Bytes()) != string(eng.G2Generator().Bytes()) {
		return &errs.VerificationError{Kind: errs.InvalidGenerator, Context: "tau_g2[0] != G2"}
	}

	// next.PreviousDigest is the BLAKE2b-512 digest of prev's serialized
	// bytes, set by the driver before a contribution is accepted for
	// verification; it is what KEYGEN bound the published public key to.
	digest := next.PreviousDigest[:]

	// 2. public-key consistency
	okTau, err := keygen.VerifyScalarKey(eng, digest, keygen.PersonalizationTau, pub.Tau)
	if err != nil {
		return err
	}
	if !okTau {
		return &errs.VerificationError{Kind: errs.InvalidRatio, Context: "tau public key self-consistency"}
	}
	okAlpha, err := keygen.VerifyScalarKey(eng, digest, keygen.PersonalizationAlpha, pub.Alpha)
	if err != nil {
		return err
	}
	if !okAlpha {
		return &errs.VerificationError{Kind: errs.InvalidRatio, Context: "alpha public key self-consistency"}
	}
	okBeta, err := keygen.VerifyScalarKey(eng, digest, keygen.PersonalizationBeta, pub.Beta)
	if err != nil {
		return err
	}
	if !okBeta {
		return &errs.VerificationError{Kind: errs.InvalidRatio, Context: "beta public key self-consistency"}
	}

	// 3. per-scalar transition
	if ok, err := tauTransitionOK(eng, prev, next, pub); err != nil {
		return err
	} else if !ok {
		return &errs.VerificationError{Kind: errs.InvalidRatio, Context: "tau transition"}
	}
	if ok, err := alphaTransitionOK(eng, prev, next, pub); err != nil {
		return err
	} else if !ok {
		return &errs.VerificationError{Kind: errs.InvalidRatio, Context: "alpha transition"}
	}
	if ok, err := betaTransitionOK(eng, prev, next, pub); err != nil {
		return err
	} else if !ok {
		return &errs.VerificationError{Kind: errs.InvalidRatio, Context: "beta transition"}
	}

	// 4. power-sequence consistency (random-linear-combination)
	fs := hashrand.NewFiatShamirStream(digest)
	if ok, err := powerSequenceG1(eng, next.TauG1, next.TauG2[1], fs); err != nil {
		return err
	} else if !ok {
		return &errs.VerificationError{Kind: errs.InvalidRatio, Context: "tau_g1 power sequence"}
	}
	if ok, err := powerSequenceTauG2(eng, next, fs); err != nil {
		return err
	} else if !ok {
		return &errs.VerificationError{Kind: errs.InvalidRatio, Context: "tau_g2 power sequence"}
	}
	if ok, err := alphaOrBetaSequence(eng, next.AlphaTauG1, next.TauG1, next.TauG2[1], fs); err != nil {
		return err
	} else if !ok {
		return &errs.VerificationError{Kind: errs.InvalidRatio, Context: "alpha_tau_g1 power sequence"}
	}
	if ok, err := alphaOrBetaSequence(eng, next.BetaTauG1, next.TauG1, next.TauG2[1], fs); err != nil {
		return err
	} else if !ok {
		return &errs.VerificationError{Kind: errs.InvalidRatio, Context: "beta_tau_g1 power sequence"}
	}

	return nil
}

func tauTransitionOK(eng curve.Engine, prev, next *Accumulator, pub *keygen.PublicKey) (bool, error) {
	g2s := keygen.RecomputeG2S(eng, next.PreviousDigest[:], keygen.PersonalizationTau, pub.Tau)
	return pairingRatio(eng, next.TauG1[1], g2s, prev.TauG1[1], pub.Tau.G2SX)
}

func alphaTransitionOK(eng curve.Engine, prev, next *Accumulator, pub *keygen.PublicKey) (bool, error) {
	g2s := keygen.RecomputeG2S(eng, next.PreviousDigest[:], keygen.PersonalizationAlpha, pub.Alpha)
	return pairingRatio(eng, next.AlphaTauG1[0], g2s, prev.AlphaTauG1[0], pub.Alpha.G2SX)
}

func betaTransitionOK(eng curve.Engine, prev, next *Accumulator, pub *keygen.PublicKey) (bool, error) {
	g2s := keygen.RecomputeG2S(eng, next.PreviousDigest[:], keygen.PersonalizationBeta, pub.Beta)
	okTau, err := pairingRatio(eng, next.BetaTauG1[0], g2s, prev.BetaTauG1[0], pub.Beta.G2SX)
	if err != nil || !okTau {
		return false, err
	}
	// cross-check that beta_g2 was scaled by the same β as beta_tau_g1[0]:
	// e(beta_tau_g1[0], G2) == e(G1, beta_g2).
	return pairingRatio(eng, next.BetaTauG1[0], eng.G2Generator(), eng.G1Generator(), next.BetaG2)
}

// powerSequenceG1 checks the random-linear-combination power-sequence
// consistency of a tau_g1-shaped vector: A = sum r_i*v[i], B = sum r_i*v[i+1],
// require e(A, tauG2_1) == e(B, G2).
func powerSequenceG1(eng curve.Engine, v []curve.PointG1, tauG2_1 curve.PointG2, fs *hashrand.FiatShamirStream) (bool, error) {
	n := len(v) - 1
	coeffs := fiatShamirScalars(eng, fs, n)
	a, err := eng.MultiScalarMulG1(v[:n], coeffs)
	if err != nil {
		return false, err
	}
	b, err := eng.MultiScalarMulG1(v[1:], coeffs)
	if err != nil {
		return false, err
	}
	return pairingRatio(eng, a, tauG2_1, b, eng.G2Generator())
}

func powerSequenceTauG2(eng curve.Engine, next *Accumulator, fs *hashrand.FiatShamirStream) (bool, error) {
	n := len(next.TauG2) - 1
	coeffs := fiatShamirScalars(eng, fs, n)
	a, err := eng.MultiScalarMulG2(next.TauG2[:n], coeffs)
	if err != nil {
		return false, err
	}
	b, err := eng.MultiScalarMulG2(next.TauG2[1:], coeffs)
	if err != nil {
		return false, err
	}
	return pairingRatio(eng, next.TauG1[1], a, eng.G1Generator(), b)
}

func alphaOrBetaSequence(eng curve.Engine, v []curve.PointG1, tauG1 []curve.PointG1, tauG2_1 curve.PointG2, fs *hashrand.FiatShamirStream) (bool, error) {
	n := len(v) - 1
	coeffs := fiatShamirScalars(eng, fs, n)
	a, err := eng.MultiScalarMulG1(v[:n], coeffs)
	if err != nil {
		return false, err
	}
	b, err := eng.MultiScalarMulG1(v[1:], coeffs)
	if err != nil {
		return false, err
	}
	return pairingRatio(eng, a, tauG2_1, b, eng.G2Generator())
}

func fiatShamirScalars(eng curve.Engine, fs *hashrand.FiatShamirStream, n int) []*big.Int {
	out := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		block := fs.Next()
		out[i] = eng.ScalarFromDigest(block[:])
	}
	return out
}
