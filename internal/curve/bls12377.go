package curve

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr/fft"
)

type bls12377G1 struct{ p bls12377.G1Affine }
type bls12377G2 struct{ p bls12377.G2Affine }

func (g bls12377G1) Bytes() []byte    { b := g.p.Bytes(); return b[:] }
func (g bls12377G1) RawBytes() []byte { b := g.p.RawBytes(); return b[:] }
func (g bls12377G1) IsInfinity() bool { return g.p.IsInfinity() }

func (g bls12377G2) Bytes() []byte    { b := g.p.Bytes(); return b[:] }
func (g bls12377G2) RawBytes() []byte { b := g.p.RawBytes(); return b[:] }
func (g bls12377G2) IsInfinity() bool { return g.p.IsInfinity() }

type bls12377Engine struct {
	order *big.Int
	g1Gen bls12377.G1Affine
	g2Gen bls12377.G2Affine
}

func newBLS12377Engine() Engine {
	_, _, g1, g2 := bls12377.Generators()
	return &bls12377Engine{order: fr.Modulus(), g1Gen: g1, g2Gen: g2}
}

func (e *bls12377Engine) ID() ecc.ID      { return ecc.BLS12_377 }
func (e *bls12377Engine) Order() *big.Int { return new(big.Int).Set(e.order) }

func (e *bls12377Engine) RandomScalar() (*big.Int, error) {
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

func (e *bls12377Engine) ScalarFromDigest(digest []byte) *big.Int {
	s := new(big.Int).SetBytes(digest)
	return s.Mod(s, e.order)
}

func (e *bls12377Engine) G1Generator() PointG1 { return bls12377G1{e.g1Gen} }
func (e *bls12377Engine) G2Generator() PointG2 { return bls12377G2{e.g2Gen} }

func (e *bls12377Engine) ScalarMulG1(p PointG1, s *big.Int) PointG1 {
	a := p.(bls12377G1).p
	var res bls12377.G1Affine
	res.ScalarMultiplication(&a, s)
	return bls12377G1{res}
}

func (e *bls12377Engine) ScalarMulG2(p PointG2, s *big.Int) PointG2 {
	a := p.(bls12377G2).p
	var res bls12377.G2Affine
	res.ScalarMultiplication(&a, s)
	return bls12377G2{res}
}

func (e *bls12377Engine) AddG1(a, b PointG1) PointG1 {
	aAff, bAff := a.(bls12377G1).p, b.(bls12377G1).p
	var aJac, bJac bls12377.G1Jac
	aJac.FromAffine(&aAff)
	bJac.FromAffine(&bAff)
	aJac.AddAssign(&bJac)
	var res bls12377.G1Affine
	res.FromJacobian(&aJac)
	return bls12377G1{res}
}

func (e *bls12377Engine) AddG2(a, b PointG2) PointG2 {
	aAff, bAff := a.(bls12377G2).p, b.(bls12377G2).p
	var aJac, bJac bls12377.G2Jac
	aJac.FromAffine(&aAff)
	bJac.FromAffine(&bAff)
	aJac.AddAssign(&bJac)
	var res bls12377.G2Affine
	res.FromJacobian(&aJac)
	return bls12377G2{res}
}

func (e *bls12377Engine) MultiScalarMulG1(points []PointG1, scalars []*big.Int) (PointG1, error) {
	aff := make([]bls12377.G1Affine, len(points))
	frs := make([]fr.Element, len(scalars))
	for i := range points {
		aff[i] = points[i].(bls12377G1).p
		frs[i].SetBigInt(scalars[i])
	}
	var res bls12377.G1Affine
	if _, err := res.MultiExp(aff, frs, ecc.MultiExpConfig{}); err != nil {
		return nil, err
	}
	return bls12377G1{res}, nil
}

func (e *bls12377Engine) MultiScalarMulG2(points []PointG2, scalars []*big.Int) (PointG2, error) {
	aff := make([]bls12377.G2Affine, len(points))
	frs := make([]fr.Element, len(scalars))
	for i := range points {
		aff[i] = points[i].(bls12377G2).p
		frs[i].SetBigInt(scalars[i])
	}
	var res bls12377.G2Affine
	if _, err := res.MultiExp(aff, frs, ecc.MultiExpConfig{}); err != nil {
		return nil, err
	}
	return bls12377G2{res}, nil
}

func (e *bls12377Engine) BatchScalarMulG1(points []PointG1, scalars []*big.Int, mode BatchExpMode) []PointG1 {
	if mode == BatchExpDirect || mode == BatchExpAuto && len(points) < directBatchThreshold {
		out := make([]PointG1, len(points))
		for i := range points {
			out[i] = e.ScalarMulG1(points[i], scalars[i])
		}
		return out
	}
	jac := make([]bls12377.G1Jac, len(points))
	for i := range points {
		aff := points[i].(bls12377G1).p
		var j bls12377.G1Jac
		j.FromAffine(&aff)
		j.ScalarMultiplication(&j, scalars[i])
		jac[i] = j
	}
	aff := make([]bls12377.G1Affine, len(points))
	bls12377.BatchJacobianToAffineG1(jac, aff)
	out := make([]PointG1, len(points))
	for i := range aff {
		out[i] = bls12377G1{aff[i]}
	}
	return out
}

func (e *bls12377Engine) BatchScalarMulG2(points []PointG2, scalars []*big.Int, mode BatchExpMode) []PointG2 {
	if mode == BatchExpDirect || mode == BatchExpAuto && len(points) < directBatchThreshold {
		out := make([]PointG2, len(points))
		for i := range points {
			out[i] = e.ScalarMulG2(points[i], scalars[i])
		}
		return out
	}
	jac := make([]bls12377.G2Jac, len(points))
	for i := range points {
		aff := points[i].(bls12377G2).p
		var j bls12377.G2Jac
		j.FromAffine(&aff)
		j.ScalarMultiplication(&j, scalars[i])
		jac[i] = j
	}
	aff := make([]bls12377.G2Affine, len(points))
	bls12377.BatchJacobianToAffineG2(jac, aff)
	out := make([]PointG2, len(points))
	for i := range aff {
		out[i] = bls12377G2{aff[i]}
	}
	return out
}

func (e *bls12377Engine) PairingCheck(g1 []PointG1, g2 []PointG2) (bool, error) {
	a := make([]bls12377.G1Affine, len(g1))
	b := make([]bls12377.G2Affine, len(g2))
	for i := range g1 {
		a[i] = g1[i].(bls12377G1).p
	}
	for i := range g2 {
		b[i] = g2[i].(bls12377G2).p
	}
	return bls12377.PairingCheck(a, b)
}

func (e *bls12377Engine) NegG2(p PointG2) PointG2 {
	a := p.(bls12377G2).p
	var res bls12377.G2Affine
	res.Neg(&a)
	return bls12377G2{res}
}

func (e *bls12377Engine) HashToG2(digest []byte) PointG2 {
	s := e.ScalarFromDigest(digest)
	return e.ScalarMulG2(e.G2Generator(), s)
}

func (e *bls12377Engine) SizeG1(compressed bool) int {
	if compressed {
		return bls12377.SizeOfG1AffineCompressed
	}
	return bls12377.SizeOfG1AffineUncompressed
}

func (e *bls12377Engine) SizeG2(compressed bool) int {
	if compressed {
		return bls12377.SizeOfG2AffineCompressed
	}
	return bls12377.SizeOfG2AffineUncompressed
}

func (e *bls12377Engine) MarshalG1(p PointG1, compressed bool) []byte {
	if compressed {
		return p.Bytes()
	}
	return p.RawBytes()
}

func (e *bls12377Engine) MarshalG2(p PointG2, compressed bool) []byte {
	if compressed {
		return p.Bytes()
	}
	return p.RawBytes()
}

func (e *bls12377Engine) UnmarshalG1(data []byte, compressed bool) (PointG1, error) {
	var p bls12377.G1Affine
	if _, err := p.SetBytes(data); err != nil {
		return nil, err
	}
	return bls12377G1{p}, nil
}

func (e *bls12377Engine) UnmarshalG2(data []byte, compressed bool) (PointG2, error) {
	var p bls12377.G2Affine
	if _, err := p.SetBytes(data); err != nil {
		return nil, err
	}
	return bls12377G2{p}, nil
}

func (e *bls12377Engine) InSubGroupG1(p PointG1) bool {
	a := p.(bls12377G1).p
	return a.IsInSubGroup()
}

func (e *bls12377Engine) InSubGroupG2(p PointG2) bool {
	a := p.(bls12377G2).p
	return a.IsInSubGroup()
}

func (e *bls12377Engine) FFTDomain(size uint64) (generator, generatorInv, sizeInv *big.Int, err error) {
	d := fft.NewDomain(size)
	gen, genInv, szInv := new(big.Int), new(big.Int), new(big.Int)
	d.Generator.BigInt(gen)
	d.GeneratorInv.BigInt(genInv)
	d.CardinalityInv.BigInt(szInv)
	return gen, genInv, szInv, nil
}
