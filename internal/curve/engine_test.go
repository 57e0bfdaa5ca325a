package curve

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
)

func TestByIDSupportsAllThreeCurves(t *testing.T) {
	for _, id := range []ecc.ID{ecc.BN254, ecc.BLS12_377, ecc.BW6_761} {
		e, err := ByID(id)
		if err != nil {
			t.Fatalf("ByID(%v): %v", id, err)
		}
		if e.ID() != id {
			t.Fatalf("ID mismatch: got %v want %v", e.ID(), id)
		}
	}
}

func TestByIDRejectsUnsupportedCurve(t *testing.T) {
	if _, err := ByID(ecc.BLS24_315); err == nil {
		t.Fatal("expected error for unsupported curve")
	}
}

func TestScalarMulByOneIsIdentity(t *testing.T) {
	for _, id := range []ecc.ID{ecc.BN254, ecc.BLS12_377, ecc.BW6_761} {
		e, err := ByID(id)
		if err != nil {
			t.Fatal(err)
		}
		g1 := e.G1Generator()
		out := e.ScalarMulG1(g1, big.NewInt(1))
		if out.IsInfinity() != g1.IsInfinity() {
			t.Fatalf("%v: scalar-mul by 1 should leave infinity flag unchanged", id)
		}
		if string(out.Bytes()) != string(g1.Bytes()) {
			t.Fatalf("%v: scalar-mul by 1 should be the identity map", id)
		}
	}
}

func TestBatchScalarMulModesAgree(t *testing.T) {
	e, err := ByID(ecc.BLS12_377)
	if err != nil {
		t.Fatal(err)
	}
	const n = 8
	points := make([]PointG1, n)
	scalars := make([]*big.Int, n)
	g1 := e.G1Generator()
	for i := 0; i < n; i++ {
		points[i] = g1
		s, err := e.RandomScalar()
		if err != nil {
			t.Fatal(err)
		}
		scalars[i] = s
	}
	direct := e.BatchScalarMulG1(points, scalars, BatchExpDirect)
	batched := e.BatchScalarMulG1(points, scalars, BatchExpBatchInversion)
	for i := range direct {
		if string(direct[i].Bytes()) != string(batched[i].Bytes()) {
			t.Fatalf("index %d: direct and batch-inversion modes disagree", i)
		}
	}
}

func TestPairingCheckOnGeneratorsSucceeds(t *testing.T) {
	e, err := ByID(ecc.BN254)
	if err != nil {
		t.Fatal(err)
	}
	g1 := e.G1Generator()
	g2 := e.G2Generator()
	// e(G1, G2) == e(G1, G2) trivially, expressed as e(G1,G2)*e(G1,-G2) == 1.
	ok, err := e.PairingCheck([]PointG1{g1, g1}, []PointG2{g2, e.NegG2(g2)})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected trivial pairing ratio check to succeed")
	}
}

func TestRoundTripMarshalUnmarshalG1(t *testing.T) {
	for _, id := range []ecc.ID{ecc.BN254, ecc.BLS12_377, ecc.BW6_761} {
		e, err := ByID(id)
		if err != nil {
			t.Fatal(err)
		}
		s, err := e.RandomScalar()
		if err != nil {
			t.Fatal(err)
		}
		p := e.ScalarMulG1(e.G1Generator(), s)
		for _, compressed := range []bool{true, false} {
			data := e.MarshalG1(p, compressed)
			if len(data) != e.SizeG1(compressed) {
				t.Fatalf("%v compressed=%v: unexpected length %d", id, compressed, len(data))
			}
			back, err := e.UnmarshalG1(data, compressed)
			if err != nil {
				t.Fatal(err)
			}
			if string(back.Bytes()) != string(p.Bytes()) {
				t.Fatalf("%v compressed=%v: round-trip mismatch", id, compressed)
			}
		}
	}
}
