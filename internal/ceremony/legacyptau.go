package ceremony

import (
	"fmt"
	"io"

	gnarkecc "github.com/consensys/gnark-crypto/ecc"
	gnarkptau "github.com/mdehoog/gnark-ptau"

	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/hashrand"
	"github.com/trustless-setup/ceremony/internal/phase1"
)

// ImportHermezPtau bootstraps a Phase 1 accumulator from a legacy Hermez
// (.ptau, BN254-only) Powers-of-Tau file, the way the teacher's
// setup/PerpetualPowersOfTauBN254/audit.go reads one via
// github.com/mdehoog/gnark-ptau's ToSRS.
//
// A Hermez transcript only ever published the plain tau_g1 monomial powers
// (plus tau_g2[0], tau_g2[1] in its verifying key); it carries no alpha or
// beta contribution at all, because it was produced for a KZG-style
// universal setup, not this module's Groth16-oriented accumulator. The
// resulting Accumulator therefore has a populated TauG1 prefix and
// TauG2[0:2], but AlphaTauG1, BetaTauG1 and BetaG2 are left at their blank
// (generator) value. Importing one is a migration convenience for reusing
// an existing large, well-audited tau transcript as a new chain's starting
// point — it is NOT equivalent to importing a verified ACC transcript, and
// callers must treat the import as round zero of a brand new contribution
// chain, never as a pre-verified accumulator.
func ImportHermezPtau(r io.Reader, eng curve.Engine, power uint) (*phase1.Accumulator, error) {
	if eng.ID() != gnarkecc.BN254 {
		return nil, fmt.Errorf("ceremony: Hermez ptau import only supports BN254, got %s", eng.ID())
	}
	srs, err := gnarkptau.ToSRS(r)
	if err != nil {
		return nil, fmt.Errorf("ceremony: parsing ptau file: %w", err)
	}

	n := 1 << power
	if len(srs.Pk.G1) < 2*n-1 {
		return nil, fmt.Errorf("ceremony: ptau file has %d tau_g1 powers, need %d for power=%d", len(srs.Pk.G1), 2*n-1, power)
	}

	acc := phase1.New(eng, power)
	for i := 0; i < 2*n-1; i++ {
		b := srs.Pk.G1[i].Bytes()
		acc.TauG1[i], err = eng.UnmarshalG1(b[:], true)
		if err != nil {
			return nil, fmt.Errorf("ceremony: re-encoding imported tau_g1[%d]: %w", i, err)
		}
	}
	b0 := srs.Vk.G2[0].Bytes()
	acc.TauG2[0], err = eng.UnmarshalG2(b0[:], true)
	if err != nil {
		return nil, fmt.Errorf("ceremony: re-encoding imported tau_g2[0]: %w", err)
	}
	if n > 1 {
		b1 := srs.Vk.G2[1].Bytes()
		acc.TauG2[1], err = eng.UnmarshalG2(b1[:], true)
		if err != nil {
			return nil, fmt.Errorf("ceremony: re-encoding imported tau_g2[1]: %w", err)
		}
	}
	acc.PreviousDigest = hashrand.BlankHash()
	return acc, nil
}
