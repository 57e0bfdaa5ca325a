package codec

import (
	"testing"

	gnarkecc "github.com/consensys/gnark-crypto/ecc"

	"github.com/trustless-setup/ceremony/internal/curve"
)

func TestRoundTripG1BothCompressions(t *testing.T) {
	eng, err := curve.ByID(gnarkecc.BLS12_377)
	if err != nil {
		t.Fatal(err)
	}
	points := make([]curve.PointG1, 5)
	for i := range points {
		s, err := eng.RandomScalar()
		if err != nil {
			t.Fatal(err)
		}
		points[i] = eng.ScalarMulG1(eng.G1Generator(), s)
	}
	for _, compressed := range []bool{true, false} {
		width := BufferSizeG1(eng, compressed)
		buf := make([]byte, width*len(points))
		if _, err := WriteBatchG1(eng, buf, 0, points, compressed); err != nil {
			t.Fatal(err)
		}
		back, next, err := ReadBatchG1(eng, buf, 0, len(points), compressed, CorrectnessFull, curve.SubgroupCheckDirect)
		if err != nil {
			t.Fatal(err)
		}
		if next != len(buf) {
			t.Fatalf("expected offset %d, got %d", len(buf), next)
		}
		for i := range points {
			if string(back[i].Bytes()) != string(points[i].Bytes()) {
				t.Fatalf("compressed=%v index %d: round-trip mismatch", compressed, i)
			}
		}
	}
}

func TestReadBatchRejectsShortBuffer(t *testing.T) {
	eng, err := curve.ByID(gnarkecc.BN254)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 10)
	if _, _, err := ReadBatchG1(eng, buf, 0, 5, true, CorrectnessNo, curve.SubgroupCheckDirect); err == nil {
		t.Fatal("expected InvalidLengthError for short buffer")
	}
}

func TestBatchedSubgroupCheckAgreesWithDirect(t *testing.T) {
	eng, err := curve.ByID(gnarkecc.BLS12_377)
	if err != nil {
		t.Fatal(err)
	}
	points := make([]curve.PointG1, 6)
	for i := range points {
		s, err := eng.RandomScalar()
		if err != nil {
			t.Fatal(err)
		}
		points[i] = eng.ScalarMulG1(eng.G1Generator(), s)
	}
	if err := checkSubgroupG1(eng, points, curve.SubgroupCheckDirect); err != nil {
		t.Fatalf("direct check on valid points failed: %v", err)
	}
	if err := checkSubgroupG1(eng, points, curve.SubgroupCheckBatched); err != nil {
		t.Fatalf("batched check on valid points failed: %v", err)
	}
}
