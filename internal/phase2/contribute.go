package phase2

import (
	"bytes"
	"io"
	"math/big"

	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/errs"
	"github.com/trustless-setup/ceremony/internal/hashrand"
	"github.com/trustless-setup/ceremony/internal/keygen"
)

// digest returns cs_hash || serialize(contributions), the value each
// delta public key is bound to (§4.6.1, §4.6.2).
func (p *Parameters) digest() []byte {
	out := append([]byte{}, p.CSHash[:]...)
	for _, pk := range p.Contributions {
		out = append(out, pk.Tau.G1S.Bytes()...)
		out = append(out, pk.Tau.G1SX.Bytes()...)
		out = append(out, pk.Tau.G2SX.Bytes()...)
	}
	return out
}

// Contribute draws a fresh δ from rng, folds it into delta_g1/delta_g2 and
// the δ⁻¹-scaled h and l vectors, appends the resulting public key to the
// transcript, and returns the new transcript's BLAKE2b-512 digest (§4.6.2).
func Contribute(prev *Parameters, rng io.Reader, mode curve.BatchExpMode) (*Parameters, [hashrand.DigestSize]byte, error) {
	eng := prev.Engine
	digestIn := prev.digest()
	h := hashrand.CalculateHash(digestIn)
	if len(h) != hashrand.DigestSize {
		return nil, [hashrand.DigestSize]byte{}, &errs.InvalidLengthError{Expected: hashrand.DigestSize, Got: len(h)}
	}

	pub, delta, err := keygen.DeltaKeyGeneration(eng, rng, h[:])
	if err != nil {
		return nil, [hashrand.DigestSize]byte{}, err
	}
	deltaInv := new(big.Int).ModInverse(delta, eng.Order())

	next := &Parameters{
		Engine:   eng,
		Matrices: prev.Matrices,
		M:        prev.M,
		CSHash:   prev.CSHash,
		AlphaG1:  prev.AlphaG1,
		BetaG1:   prev.BetaG1,
		BetaG2:   prev.BetaG2,
		IC:       prev.IC,
		A:        prev.A,
		B1:       prev.B1,
		B2:       prev.B2,
	}
	next.DeltaG1 = eng.ScalarMulG1(prev.DeltaG1, delta)
	next.DeltaG2 = eng.ScalarMulG2(prev.DeltaG2, delta)

	deltaInvScalars := make([]*big.Int, len(prev.H))
	for i := range deltaInvScalars {
		deltaInvScalars[i] = deltaInv
	}
	next.H = eng.BatchScalarMulG1(prev.H, deltaInvScalars, mode)

	deltaInvScalarsL := make([]*big.Int, len(prev.L))
	for i := range deltaInvScalarsL {
		deltaInvScalarsL[i] = deltaInv
	}
	next.L = eng.BatchScalarMulG1(prev.L, deltaInvScalarsL, mode)

	next.Contributions = append(append([]keygen.PublicKey{}, prev.Contributions...), *pub)

	final := hashrand.CalculateHash(next.digest())
	return next, final, nil
}

// VerifyContribution enforces §4.6.3 for one contribution step from old to
// new: cs_hash and the non-δ verifying-key fields (alpha_g1, beta_g1,
// beta_g2, IC) are unchanged (the A, B1 and B2 query vectors are not
// compared), Schnorr-style knowledge of δ, delta_g1/delta_g2
// self-consistency, and that h and l were scaled by the same δ⁻¹ the public
// key attests to.
func VerifyContribution(old, new *Parameters) error {
	eng := old.Engine
	if len(new.Contributions) != len(old.Contributions)+1 {
		return &errs.Phase2Error{Invariant: "contribution count must increase by exactly one"}
	}

	if old.CSHash != new.CSHash {
		return &errs.Phase2Error{Invariant: "cs_hash unchanged"}
	}
	if !bytes.Equal(old.AlphaG1.RawBytes(), new.AlphaG1.RawBytes()) {
		return &errs.Phase2Error{Invariant: "vk.alpha_g1 unchanged"}
	}
	if !bytes.Equal(old.BetaG1.RawBytes(), new.BetaG1.RawBytes()) {
		return &errs.Phase2Error{Invariant: "vk.beta_g1 unchanged"}
	}
	if !bytes.Equal(old.BetaG2.RawBytes(), new.BetaG2.RawBytes()) {
		return &errs.Phase2Error{Invariant: "vk.beta_g2 unchanged"}
	}
	if len(old.IC) != len(new.IC) {
		return &errs.Phase2Error{Invariant: "vk.ic unchanged"}
	}
	for i := range old.IC {
		if !bytes.Equal(old.IC[i].RawBytes(), new.IC[i].RawBytes()) {
			return &errs.Phase2Error{Invariant: "vk.ic unchanged"}
		}
	}

	pub := new.Contributions[len(new.Contributions)-1].Tau

	digestIn := old.digest()
	h := hashrand.CalculateHash(digestIn)

	ok, err := keygen.VerifyScalarKey(eng, h[:], keygen.PersonalizationDelta, pub)
	if err != nil {
		return err
	}
	if !ok {
		return &errs.Phase2Error{Invariant: "delta public key self-consistency"}
	}

	g2s := keygen.RecomputeG2S(eng, h[:], keygen.PersonalizationDelta, pub)
	okDelta, err := pairingRatio(eng, new.DeltaG1, g2s, old.DeltaG1, pub.G2SX)
	if err != nil {
		return err
	}
	if !okDelta {
		return &errs.Phase2Error{Invariant: "delta_g1 transition"}
	}

	okCross, err := pairingRatio(eng, new.DeltaG1, eng.G2Generator(), eng.G1Generator(), new.DeltaG2)
	if err != nil {
		return err
	}
	if !okCross {
		return &errs.Phase2Error{Invariant: "delta_g1/delta_g2 cross-consistency"}
	}

	fs := hashrand.NewFiatShamirStream(new.digest())
	if ok, err := scalingCheck(eng, old.H, new.H, old.DeltaG2, new.DeltaG2, fs); err != nil {
		return err
	} else if !ok {
		return &errs.Phase2Error{Invariant: "h vector scaling"}
	}
	if ok, err := scalingCheck(eng, old.L, new.L, old.DeltaG2, new.DeltaG2, fs); err != nil {
		return err
	} else if !ok {
		return &errs.Phase2Error{Invariant: "l vector scaling"}
	}

	return nil
}

func pairingRatio(eng curve.Engine, a curve.PointG1, b curve.PointG2, c curve.PointG1, d curve.PointG2) (bool, error) {
	return eng.PairingCheck([]curve.PointG1{a, c}, []curve.PointG2{b, eng.NegG2(d)})
}

// scalingCheck draws random r_i from fs and checks e(Σr_i·newV[i], newDelta2)
// == e(Σr_i·oldV[i], oldDelta2): since new[i] = old[i]*δ⁻¹ and
// new.delta_g2 = old.delta_g2*δ, both sides equal e(Σr_i·oldV[i], oldDelta2).
func scalingCheck(eng curve.Engine, oldV, newV []curve.PointG1, oldDelta2, newDelta2 curve.PointG2, fs *hashrand.FiatShamirStream) (bool, error) {
	if len(oldV) != len(newV) {
		return false, &errs.Phase2Error{Invariant: "h/l vector length changed across a contribution"}
	}
	if len(oldV) == 0 {
		return true, nil
	}
	coeffs := make([]*big.Int, len(oldV))
	for i := range coeffs {
		block := fs.Next()
		coeffs[i] = eng.ScalarFromDigest(block[:])
	}
	a, err := eng.MultiScalarMulG1(newV, coeffs)
	if err != nil {
		return false, err
	}
	b, err := eng.MultiScalarMulG1(oldV, coeffs)
	if err != nil {
		return false, err
	}
	return pairingRatio(eng, a, newDelta2, b, oldDelta2)
}

// Verify folds VerifyContribution across an entire transcript: transcript[0]
// is the initial (δ=1) parameters, transcript[i] is the state after
// contribution i (§4.6.4).
func Verify(transcript []*Parameters) error {
	if len(transcript) < 2 {
		return errs.ErrNoContributions
	}
	for i := 1; i < len(transcript); i++ {
		if err := VerifyContribution(transcript[i-1], transcript[i]); err != nil {
			return errs.ErrInvalidTranscript
		}
	}
	return nil
}
