package groth16setup

import (
	"math/big"
	"testing"

	gnarkecc "github.com/consensys/gnark-crypto/ecc"

	"github.com/trustless-setup/ceremony/internal/curve"
)

func TestInverseFFTG1MatchesDirectLagrangeEvaluation(t *testing.T) {
	eng, err := curve.ByID(gnarkecc.BLS12_377)
	if err != nil {
		t.Fatal(err)
	}
	const n = 8

	tau, err := eng.RandomScalar()
	if err != nil {
		t.Fatal(err)
	}

	order := eng.Order()
	powers := make([]*big.Int, n)
	cur := big.NewInt(1)
	for i := 0; i < n; i++ {
		powers[i] = new(big.Int).Set(cur)
		cur = new(big.Int).Mod(new(big.Int).Mul(cur, tau), order)
	}
	coeffsG1 := make([]curve.PointG1, n)
	for i := range coeffsG1 {
		coeffsG1[i] = eng.ScalarMulG1(eng.G1Generator(), powers[i])
	}

	got, err := InverseFFTG1(eng, coeffsG1)
	if err != nil {
		t.Fatal(err)
	}

	_, genInv, sizeInv, err := eng.FFTDomain(n)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		// L_i(tau) = (1/n) * sum_j (w^-1)^(i*j) * tau^j
		sum := big.NewInt(0)
		wPow := new(big.Int).Exp(genInv, big.NewInt(int64(i)), order)
		term := big.NewInt(1)
		for j := 0; j < n; j++ {
			contribution := new(big.Int).Mul(term, powers[j])
			sum.Add(sum, contribution)
			sum.Mod(sum, order)
			term = new(big.Int).Mod(new(big.Int).Mul(term, wPow), order)
		}
		sum.Mul(sum, sizeInv)
		sum.Mod(sum, order)
		want := eng.ScalarMulG1(eng.G1Generator(), sum)
		if string(want.Bytes()) != string(got[i].Bytes()) {
			t.Fatalf("lagrange basis %d: inverse FFT disagrees with direct evaluation", i)
		}
	}
}

func TestInverseFFTG1RejectsNonPowerOfTwo(t *testing.T) {
	eng, err := curve.ByID(gnarkecc.BLS12_377)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := InverseFFTG1(eng, make([]curve.PointG1, 3)); err != ErrNotPowerOfTwo {
		t.Fatalf("expected ErrNotPowerOfTwo, got %v", err)
	}
}
