// Package groth16setup reduces a Phase 1 powers-of-tau accumulator into the
// Lagrange-basis evaluations a Groth16 circuit-specific setup needs (§4.5):
// an inverse FFT carried out directly on group elements rather than field
// elements, since both operations (scalar multiplication, addition) that an
// FFT butterfly needs are available on the group and the map from scalar
// exponent to group element is a homomorphism.
package groth16setup

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/trustless-setup/ceremony/internal/curve"
)

// ErrNotPowerOfTwo is returned when an inverse FFT is asked to run over a
// vector whose length is not a power of two.
var ErrNotPowerOfTwo = errors.New("groth16setup: domain size must be a power of two")

// InverseFFTG1 evaluates the Lagrange basis of values' implicit polynomial
// (values[i] is understood as the coefficient of tau^i, already present in
// the group) using a radix-2 Cooley-Tukey (decimation-in-time) inverse FFT
// over G1: bit-reversal permutation of the input, then butterfly stages.
func InverseFFTG1(eng curve.Engine, values []curve.PointG1) ([]curve.PointG1, error) {
	n := len(values)
	if n == 0 || n&(n-1) != 0 {
		return nil, ErrNotPowerOfTwo
	}
	_, genInv, sizeInv, err := eng.FFTDomain(uint64(n))
	if err != nil {
		return nil, err
	}
	out := make([]curve.PointG1, n)
	copy(out, values)
	bitReverseG1(out)

	order := eng.Order()
	for step := 1; step < n; step *= 2 {
		m := step * 2
		wBase := new(big.Int).Exp(genInv, big.NewInt(int64(n/m)), order)
		g, _ := errgroup.WithContext(context.Background())
		for start := 0; start < n; start += m {
			start := start
			g.Go(func() error {
				w := big.NewInt(1)
				for j := 0; j < step; j++ {
					u := out[start+j]
					t := eng.ScalarMulG1(out[start+j+step], w)
					negT := eng.ScalarMulG1(t, negOne(order))
					out[start+j] = eng.AddG1(u, t)
					out[start+j+step] = eng.AddG1(u, negT)
					w = new(big.Int).Mod(new(big.Int).Mul(w, wBase), order)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	for i := range out {
		out[i] = eng.ScalarMulG1(out[i], sizeInv)
	}
	return out, nil
}

// InverseFFTG2 is InverseFFTG1's G2 counterpart.
func InverseFFTG2(eng curve.Engine, values []curve.PointG2) ([]curve.PointG2, error) {
	n := len(values)
	if n == 0 || n&(n-1) != 0 {
		return nil, ErrNotPowerOfTwo
	}
	_, genInv, sizeInv, err := eng.FFTDomain(uint64(n))
	if err != nil {
		return nil, err
	}
	out := make([]curve.PointG2, n)
	copy(out, values)
	bitReverseG2(out)

	order := eng.Order()
	for step := 1; step < n; step *= 2 {
		m := step * 2
		wBase := new(big.Int).Exp(genInv, big.NewInt(int64(n/m)), order)
		g, _ := errgroup.WithContext(context.Background())
		for start := 0; start < n; start += m {
			start := start
			g.Go(func() error {
				w := big.NewInt(1)
				for j := 0; j < step; j++ {
					u := out[start+j]
					t := eng.ScalarMulG2(out[start+j+step], w)
					negT := eng.ScalarMulG2(t, negOne(order))
					out[start+j] = eng.AddG2(u, t)
					out[start+j+step] = eng.AddG2(u, negT)
					w = new(big.Int).Mod(new(big.Int).Mul(w, wBase), order)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	for i := range out {
		out[i] = eng.ScalarMulG2(out[i], sizeInv)
	}
	return out, nil
}

func negOne(order *big.Int) *big.Int {
	return new(big.Int).Sub(order, big.NewInt(1))
}

func bitReverseG1(a []curve.PointG1) {
	n := len(a)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}
}

func bitReverseG2(a []curve.PointG2) {
	n := len(a)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

func errUnexpectedLength(name string, want, got int) error {
	return fmt.Errorf("groth16setup: %s: expected length %d, got %d", name, want, got)
}
