package curve

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
)

type bn254G1 struct{ p bn254.G1Affine }
type bn254G2 struct{ p bn254.G2Affine }

func (g bn254G1) Bytes() []byte    { b := g.p.Bytes(); return b[:] }
func (g bn254G1) RawBytes() []byte { b := g.p.RawBytes(); return b[:] }
func (g bn254G1) IsInfinity() bool { return g.p.IsInfinity() }

func (g bn254G2) Bytes() []byte    { b := g.p.Bytes(); return b[:] }
func (g bn254G2) RawBytes() []byte { b := g.p.RawBytes(); return b[:] }
func (g bn254G2) IsInfinity() bool { return g.p.IsInfinity() }

type bn254Engine struct {
	order  *big.Int
	g1Gen  bn254.G1Affine
	g2Gen  bn254.G2Affine
}

func newBN254Engine() Engine {
	_, _, g1, g2 := bn254.Generators()
	return &bn254Engine{order: fr.Modulus(), g1Gen: g1, g2Gen: g2}
}

func (e *bn254Engine) ID() ecc.ID     { return ecc.BN254 }
func (e *bn254Engine) Order() *big.Int { return new(big.Int).Set(e.order) }

func (e *bn254Engine) RandomScalar() (*big.Int, error) {
	for {
		var el fr.Element
		if _, err := el.SetRandom(); err != nil {
			return nil, err
		}
		s := new(big.Int)
		el.BigInt(s)
		if s.Sign() != 0 {
			return s, nil
		}
	}
}

func (e *bn254Engine) ScalarFromDigest(digest []byte) *big.Int {
	s := new(big.Int).SetBytes(digest)
	return s.Mod(s, e.order)
}

func (e *bn254Engine) G1Generator() PointG1 { return bn254G1{e.g1Gen} }
func (e *bn254Engine) G2Generator() PointG2 { return bn254G2{e.g2Gen} }

func (e *bn254Engine) ScalarMulG1(p PointG1, s *big.Int) PointG1 {
	a := p.(bn254G1).p
	var res bn254.G1Affine
	res.ScalarMultiplication(&a, s)
	return bn254G1{res}
}

func (e *bn254Engine) ScalarMulG2(p PointG2, s *big.Int) PointG2 {
	a := p.(bn254G2).p
	var res bn254.G2Affine
	res.ScalarMultiplication(&a, s)
	return bn254G2{res}
}

func (e *bn254Engine) AddG1(a, b PointG1) PointG1 {
	aAff, bAff := a.(bn254G1).p, b.(bn254G1).p
	var aJac, bJac bn254.G1Jac
	aJac.FromAffine(&aAff)
	bJac.FromAffine(&bAff)
	aJac.AddAssign(&bJac)
	var res bn254.G1Affine
	res.FromJacobian(&aJac)
	return bn254G1{res}
}

func (e *bn254Engine) AddG2(a, b PointG2) PointG2 {
	aAff, bAff := a.(bn254G2).p, b.(bn254G2).p
	var aJac, bJac bn254.G2Jac
	aJac.FromAffine(&aAff)
	bJac.FromAffine(&bAff)
	aJac.AddAssign(&bJac)
	var res bn254.G2Affine
	res.FromJacobian(&aJac)
	return bn254G2{res}
}

func (e *bn254Engine) MultiScalarMulG1(points []PointG1, scalars []*big.Int) (PointG1, error) {
	aff := make([]bn254.G1Affine, len(points))
	frs := make([]fr.Element, len(scalars))
	for i := range points {
		aff[i] = points[i].(bn254G1).p
		frs[i].SetBigInt(scalars[i])
	}
	var res bn254.G1Affine
	if _, err := res.MultiExp(aff, frs, ecc.MultiExpConfig{}); err != nil {
		return nil, err
	}
	return bn254G1{res}, nil
}

func (e *bn254Engine) MultiScalarMulG2(points []PointG2, scalars []*big.Int) (PointG2, error) {
	aff := make([]bn254.G2Affine, len(points))
	frs := make([]fr.Element, len(scalars))
	for i := range points {
		aff[i] = points[i].(bn254G2).p
		frs[i].SetBigInt(scalars[i])
	}
	var res bn254.G2Affine
	if _, err := res.MultiExp(aff, frs, ecc.MultiExpConfig{}); err != nil {
		return nil, err
	}
	return bn254G2{res}, nil
}

func (e *bn254Engine) BatchScalarMulG1(points []PointG1, scalars []*big.Int, mode BatchExpMode) []PointG1 {
	if mode == BatchExpDirect || mode == BatchExpAuto && len(points) < directBatchThreshold {
		out := make([]PointG1, len(points))
		for i := range points {
			out[i] = e.ScalarMulG1(points[i], scalars[i])
		}
		return out
	}
	jac := make([]bn254.G1Jac, len(points))
	for i := range points {
		aff := points[i].(bn254G1).p
		var j bn254.G1Jac
		j.FromAffine(&aff)
		j.ScalarMultiplication(&j, scalars[i])
		jac[i] = j
	}
	aff := make([]bn254.G1Affine, len(points))
	bn254.BatchJacobianToAffineG1(jac, aff)
	out := make([]PointG1, len(points))
	for i := range aff {
		out[i] = bn254G1{aff[i]}
	}
	return out
}

func (e *bn254Engine) BatchScalarMulG2(points []PointG2, scalars []*big.Int, mode BatchExpMode) []PointG2 {
	if mode == BatchExpDirect || mode == BatchExpAuto && len(points) < directBatchThreshold {
		out := make([]PointG2, len(points))
		for i := range points {
			out[i] = e.ScalarMulG2(points[i], scalars[i])
		}
		return out
	}
	jac := make([]bn254.G2Jac, len(points))
	for i := range points {
		aff := points[i].(bn254G2).p
		var j bn254.G2Jac
		j.FromAffine(&aff)
		j.ScalarMultiplication(&j, scalars[i])
		jac[i] = j
	}
	aff := make([]bn254.G2Affine, len(points))
	bn254.BatchJacobianToAffineG2(jac, aff)
	out := make([]PointG2, len(points))
	for i := range aff {
		out[i] = bn254G2{aff[i]}
	}
	return out
}

func (e *bn254Engine) PairingCheck(g1 []PointG1, g2 []PointG2) (bool, error) {
	a := make([]bn254.G1Affine, len(g1))
	b := make([]bn254.G2Affine, len(g2))
	for i := range g1 {
		a[i] = g1[i].(bn254G1).p
	}
	for i := range g2 {
		b[i] = g2[i].(bn254G2).p
	}
	return bn254.PairingCheck(a, b)
}

func (e *bn254Engine) NegG2(p PointG2) PointG2 {
	a := p.(bn254G2).p
	var res bn254.G2Affine
	res.Neg(&a)
	return bn254G2{res}
}

func (e *bn254Engine) HashToG2(digest []byte) PointG2 {
	s := e.ScalarFromDigest(digest)
	return e.ScalarMulG2(e.G2Generator(), s)
}

func (e *bn254Engine) SizeG1(compressed bool) int {
	if compressed {
		return bn254.SizeOfG1AffineCompressed
	}
	return bn254.SizeOfG1AffineUncompressed
}

func (e *bn254Engine) SizeG2(compressed bool) int {
	if compressed {
		return bn254.SizeOfG2AffineCompressed
	}
	return bn254.SizeOfG2AffineUncompressed
}

func (e *bn254Engine) MarshalG1(p PointG1, compressed bool) []byte {
	if compressed {
		return p.Bytes()
	}
	return p.RawBytes()
}

func (e *bn254Engine) MarshalG2(p PointG2, compressed bool) []byte {
	if compressed {
		return p.Bytes()
	}
	return p.RawBytes()
}

func (e *bn254Engine) UnmarshalG1(data []byte, compressed bool) (PointG1, error) {
	var p bn254.G1Affine
	if _, err := p.SetBytes(data); err != nil {
		return nil, err
	}
	return bn254G1{p}, nil
}

func (e *bn254Engine) UnmarshalG2(data []byte, compressed bool) (PointG2, error) {
	var p bn254.G2Affine
	if _, err := p.SetBytes(data); err != nil {
		return nil, err
	}
	return bn254G2{p}, nil
}

func (e *bn254Engine) InSubGroupG1(p PointG1) bool {
	a := p.(bn254G1).p
	return a.IsInSubGroup()
}

func (e *bn254Engine) InSubGroupG2(p PointG2) bool {
	a := p.(bn254G2).p
	return a.IsInSubGroup()
}

func (e *bn254Engine) FFTDomain(size uint64) (generator, generatorInv, sizeInv *big.Int, err error) {
	d := fft.NewDomain(size)
	gen, genInv, szInv := new(big.Int), new(big.Int), new(big.Int)
	d.Generator.BigInt(gen)
	d.GeneratorInv.BigInt(genInv)
	d.CardinalityInv.BigInt(szInv)
	return gen, genInv, szInv, nil
}

