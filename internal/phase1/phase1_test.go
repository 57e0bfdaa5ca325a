package phase1

import (
	"testing"

	gnarkecc "github.com/consensys/gnark-crypto/ecc"

	"github.com/trustless-setup/ceremony/internal/codec"
	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/hashrand"
	"github.com/trustless-setup/ceremony/internal/keygen"
)

func testEngine(t *testing.T) curve.Engine {
	t.Helper()
	eng, err := curve.ByID(gnarkecc.BLS12_377)
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func contribute(t *testing.T, eng curve.Engine, prev *Accumulator, digest []byte, mode curve.BatchExpMode) (*Accumulator, *keygen.PublicKey) {
	t.Helper()
	rng, err := hashrand.UserEntropyRNG([]byte("test entropy for a deterministic-enough contribution"))
	if err != nil {
		t.Fatal(err)
	}
	pub, priv, err := keygen.KeyGeneration(eng, rng, digest)
	if err != nil {
		t.Fatal(err)
	}
	defer priv.Zeroize()
	next := Contribute(prev, priv, mode)
	next.PreviousDigest = [hashrand.DigestSize]byte{}
	copy(next.PreviousDigest[:], digest)
	return next, pub
}

func TestBlankAccumulatorIsConsistent(t *testing.T) {
	eng := testEngine(t)
	a := New(eng, 2)
	if len(a.TauG1) != 2*a.N()-1 {
		t.Fatalf("expected %d tau_g1 entries, got %d", 2*a.N()-1, len(a.TauG1))
	}
	for _, p := range a.TauG1 {
		if string(p.Bytes()) != string(eng.G1Generator().Bytes()) {
			t.Fatal("blank accumulator's tau_g1 entries must all equal G1")
		}
	}
	if string(a.BetaG2.Bytes()) != string(eng.G2Generator().Bytes()) {
		t.Fatal("blank accumulator's beta_g2 must equal G2")
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	eng := testEngine(t)
	a := New(eng, 2)
	blank := hashrand.BlankHash()
	a.PreviousDigest = blank

	for _, compressed := range []bool{true, false} {
		buf, err := a.Serialize(compressed, 2)
		if err != nil {
			t.Fatal(err)
		}
		back, err := Deserialize(eng, 2, buf, compressed, codec.CorrectnessFull, curve.SubgroupCheckDirect, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(back.TauG1) != len(a.TauG1) {
			t.Fatalf("compressed=%v: tau_g1 length mismatch", compressed)
		}
		for i := range a.TauG1 {
			if string(back.TauG1[i].Bytes()) != string(a.TauG1[i].Bytes()) {
				t.Fatalf("compressed=%v: tau_g1[%d] mismatch after round trip", compressed, i)
			}
		}
	}
}

func TestContributionPassesAggregateVerification(t *testing.T) {
	eng := testEngine(t)
	prev := New(eng, 2)
	prev.PreviousDigest = hashrand.BlankHash()

	next, pub := contribute(t, eng, prev, prev.PreviousDigest[:], curve.BatchExpAuto)

	if err := AggregateVerification(prev, next, pub); err != nil {
		t.Fatalf("honest contribution must pass aggregate verification: %v", err)
	}
}

func TestTamperedContributionFailsVerification(t *testing.T) {
	eng := testEngine(t)
	prev := New(eng, 2)
	prev.PreviousDigest = hashrand.BlankHash()

	next, pub := contribute(t, eng, prev, prev.PreviousDigest[:], curve.BatchExpAuto)

	// swap two tau_g1 entries: same multiset of points, wrong positions.
	next.TauG1[1], next.TauG1[2] = next.TauG1[2], next.TauG1[1]

	if err := AggregateVerification(prev, next, pub); err == nil {
		t.Fatal("tampered contribution must fail aggregate verification")
	}
}

func TestChainOfContributionsVerifies(t *testing.T) {
	eng := testEngine(t)
	acc := New(eng, 2)
	acc.PreviousDigest = hashrand.BlankHash()

	type step struct {
		acc *Accumulator
		pub *keygen.PublicKey
	}
	var chain []step
	chain = append(chain, step{acc: acc})

	for i := 0; i < 3; i++ {
		prev := chain[len(chain)-1].acc
		next, pub := contribute(t, eng, prev, prev.PreviousDigest[:], curve.BatchExpAuto)
		if err := AggregateVerification(prev, next, pub); err != nil {
			t.Fatalf("contribution %d must verify against its immediate predecessor: %v", i, err)
		}
		chain = append(chain, step{acc: next, pub: pub})
	}

	// a later accumulator must not verify against an earlier, non-immediate
	// predecessor: the per-scalar transition pairing check binds consecutive
	// steps, not the whole chain to the genesis accumulator.
	if err := AggregateVerification(chain[0].acc, chain[2].acc, chain[2].pub); err == nil {
		t.Fatal("verification must fail when predecessor and current are not adjacent in the chain")
	}
}

func TestRogueKeyCannotForgeTransition(t *testing.T) {
	eng := testEngine(t)
	prev := New(eng, 2)
	prev.PreviousDigest = hashrand.BlankHash()

	next, pub := contribute(t, eng, prev, prev.PreviousDigest[:], curve.BatchExpAuto)

	// an attacker who only controls the published public key, not a matching
	// secret, cannot make a second contribution verify against pub: swap in
	// an unrelated public key generated for a different digest.
	otherPrev := New(eng, 2)
	otherPrev.PreviousDigest = hashrand.CalculateHash([]byte("a different transcript"))
	_, otherPub := contribute(t, eng, otherPrev, otherPrev.PreviousDigest[:], curve.BatchExpAuto)

	if err := AggregateVerification(prev, next, otherPub); err == nil {
		t.Fatal("verification must fail against a public key bound to a different digest")
	}
}

func TestBatchExpModesAgree(t *testing.T) {
	eng := testEngine(t)
	prev := New(eng, 2)
	prev.PreviousDigest = hashrand.BlankHash()

	rng, err := hashrand.UserEntropyRNG([]byte("shared entropy for comparing batch-exp modes"))
	if err != nil {
		t.Fatal(err)
	}
	_, priv, err := keygen.KeyGeneration(eng, rng, prev.PreviousDigest[:])
	if err != nil {
		t.Fatal(err)
	}
	defer priv.Zeroize()

	direct := Contribute(prev, priv, curve.BatchExpDirect)
	batched := Contribute(prev, priv, curve.BatchExpBatchInversion)

	for i := range direct.TauG1 {
		if string(direct.TauG1[i].Bytes()) != string(batched.TauG1[i].Bytes()) {
			t.Fatalf("tau_g1[%d]: direct and batch-inversion modes must produce identical output", i)
		}
	}
	for i := range direct.AlphaTauG1 {
		if string(direct.AlphaTauG1[i].Bytes()) != string(batched.AlphaTauG1[i].Bytes()) {
			t.Fatalf("alpha_tau_g1[%d]: direct and batch-inversion modes must produce identical output", i)
		}
	}
}

func TestChunkedContributionMatchesFullContribution(t *testing.T) {
	eng := testEngine(t)
	prev := New(eng, 2)
	prev.PreviousDigest = hashrand.BlankHash()

	rng, err := hashrand.UserEntropyRNG([]byte("entropy shared between the full and chunked runs"))
	if err != nil {
		t.Fatal(err)
	}
	_, priv, err := keygen.KeyGeneration(eng, rng, prev.PreviousDigest[:])
	if err != nil {
		t.Fatal(err)
	}
	defer priv.Zeroize()

	full := Contribute(prev, priv, curve.BatchExpAuto)

	ranges := Chunks(prev.Power, 3)
	chunks := make([]*Accumulator, len(ranges))
	for i, r := range ranges {
		c, err := ContributeChunk(prev, priv, r, curve.BatchExpAuto)
		if err != nil {
			t.Fatal(err)
		}
		chunks[i] = c
	}
	aggregated, err := AggregateChunks(prev.Power, chunks)
	if err != nil {
		t.Fatal(err)
	}

	for i := range full.TauG1 {
		if string(full.TauG1[i].Bytes()) != string(aggregated.TauG1[i].Bytes()) {
			t.Fatalf("tau_g1[%d]: chunked aggregation must match the single-shot contribution", i)
		}
	}
	if string(full.BetaG2.Bytes()) != string(aggregated.BetaG2.Bytes()) {
		t.Fatal("beta_g2 must match the single-shot contribution")
	}
}
