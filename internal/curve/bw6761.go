package curve

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	bw6761 "github.com/consensys/gnark-crypto/ecc/bw6-761"
	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr/fft"
)

type bw6761G1 struct{ p bw6761.G1Affine }
type bw6761G2 struct{ p bw6761.G2Affine }

func (g bw6761G1) Bytes() []byte    { b := g.p.Bytes(); return b[:] }
func (g bw6761G1) RawBytes() []byte { b := g.p.RawBytes(); return b[:] }
func (g bw6761G1) IsInfinity() bool { return g.p.IsInfinity() }

func (g bw6761G2) Bytes() []byte    { b := g.p.Bytes(); return b[:] }
func (g bw6761G2) RawBytes() []byte { b := g.p.RawBytes(); return b[:] }
func (g bw6761G2) IsInfinity() bool { return g.p.IsInfinity() }

type bw6761Engine struct {
	order *big.Int
	g1Gen bw6761.G1Affine
	g2Gen bw6761.G2Affine
}

func newBW6761Engine() Engine {
	_, _, g1, g2 := bw6761.Generators()
	return &bw6761Engine{order: fr.Modulus(), g1Gen: g1, g2Gen: g2}
}

func (e *bw6761Engine) ID() ecc.ID      { return ecc.BW6_761 }
func (e *bw6761Engine) Order() *big.Int { return new(big.Int).Set(e.order) }

func (e *bw6761Engine) RandomScalar() (*big.Int, error) {
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

func (e *bw6761Engine) ScalarFromDigest(digest []byte) *big.Int {
	s := new(big.Int).SetBytes(digest)
	return s.Mod(s, e.order)
}

func (e *bw6761Engine) G1Generator() PointG1 { return bw6761G1{e.g1Gen} }
func (e *bw6761Engine) G2Generator() PointG2 { return bw6761G2{e.g2Gen} }

func (e *bw6761Engine) ScalarMulG1(p PointG1, s *big.Int) PointG1 {
	a := p.(bw6761G1).p
	var res bw6761.G1Affine
	res.ScalarMultiplication(&a, s)
	return bw6761G1{res}
}

func (e *bw6761Engine) ScalarMulG2(p PointG2, s *big.Int) PointG2 {
	a := p.(bw6761G2).p
	var res bw6761.G2Affine
	res.ScalarMultiplication(&a, s)
	return bw6761G2{res}
}

func (e *bw6761Engine) AddG1(a, b PointG1) PointG1 {
	aAff, bAff := a.(bw6761G1).p, b.(bw6761G1).p
	var aJac, bJac bw6761.G1Jac
	aJac.FromAffine(&aAff)
	bJac.FromAffine(&bAff)
	aJac.AddAssign(&bJac)
	var res bw6761.G1Affine
	res.FromJacobian(&aJac)
	return bw6761G1{res}
}

func (e *bw6761Engine) AddG2(a, b PointG2) PointG2 {
	aAff, bAff := a.(bw6761G2).p, b.(bw6761G2).p
	var aJac, bJac bw6761.G2Jac
	aJac.FromAffine(&aAff)
	bJac.FromAffine(&bAff)
	aJac.AddAssign(&bJac)
	var res bw6761.G2Affine
	res.FromJacobian(&aJac)
	return bw6761G2{res}
}

func (e *bw6761Engine) MultiScalarMulG1(points []PointG1, scalars []*big.Int) (PointG1, error) {
	aff := make([]bw6761.G1Affine, len(points))
	frs := make([]fr.Element, len(scalars))
	for i := range points {
		aff[i] = points[i].(bw6761G1).p
		frs[i].SetBigInt(scalars[i])
	}
	var res bw6761.G1Affine
	if _, err := res.MultiExp(aff, frs, ecc.MultiExpConfig{}); err != nil {
		return nil, err
	}
	return bw6761G1{res}, nil
}

func (e *bw6761Engine) MultiScalarMulG2(points []PointG2, scalars []*big.Int) (PointG2, error) {
	aff := make([]bw6761.G2Affine, len(points))
	frs := make([]fr.Element, len(scalars))
	for i := range points {
		aff[i] = points[i].(bw6761G2).p
		frs[i].SetBigInt(scalars[i])
	}
	var res bw6761.G2Affine
	if _, err := res.MultiExp(aff, frs, ecc.MultiExpConfig{}); err != nil {
		return nil, err
	}
	return bw6761G2{res}, nil
}

func (e *bw6761Engine) BatchScalarMulG1(points []PointG1, scalars []*big.Int, mode BatchExpMode) []PointG1 {
	if mode == BatchExpDirect || mode == BatchExpAuto && len(points) < directBatchThreshold {
		out := make([]PointG1, len(points))
		for i := range points {
			out[i] = e.ScalarMulG1(points[i], scalars[i])
		}
		return out
	}
	jac := make([]bw6761.G1Jac, len(points))
	for i := range points {
		aff := points[i].(bw6761G1).p
		var j bw6761.G1Jac
		j.FromAffine(&aff)
		j.ScalarMultiplication(&j, scalars[i])
		jac[i] = j
	}
	aff := make([]bw6761.G1Affine, len(points))
	bw6761.BatchJacobianToAffineG1(jac, aff)
	out := make([]PointG1, len(points))
	for i := range aff {
		out[i] = bw6761G1{aff[i]}
	}
	return out
}

func (e *bw6761Engine) BatchScalarMulG2(points []PointG2, scalars []*big.Int, mode BatchExpMode) []PointG2 {
	if mode == BatchExpDirect || mode == BatchExpAuto && len(points) < directBatchThreshold {
		out := make([]PointG2, len(points))
		for i := range points {
			out[i] = e.ScalarMulG2(points[i], scalars[i])
		}
		return out
	}
	jac := make([]bw6761.G2Jac, len(points))
	for i := range points {
		aff := points[i].(bw6761G2).p
		var j bw6761.G2Jac
		j.FromAffine(&aff)
		j.ScalarMultiplication(&j, scalars[i])
		jac[i] = j
	}
	aff := make([]bw6761.G2Affine, len(points))
	bw6761.BatchJacobianToAffineG2(jac, aff)
	out := make([]PointG2, len(points))
	for i := range aff {
		out[i] = bw6761G2{aff[i]}
	}
	return out
}

func (e *bw6761Engine) PairingCheck(g1 []PointG1, g2 []PointG2) (bool, error) {
	a := make([]bw6761.G1Affine, len(g1))
	b := make([]bw6761.G2Affine, len(g2))
	for i := range g1 {
		a[i] = g1[i].(bw6761G1).p
	}
	for i := range g2 {
		b[i] = g2[i].(bw6761G2).p
	}
	return bw6761.PairingCheck(a, b)
}

func (e *bw6761Engine) NegG2(p PointG2) PointG2 {
	a := p.(bw6761G2).p
	var res bw6761.G2Affine
	res.Neg(&a)
	return bw6761G2{res}
}

func (e *bw6761Engine) HashToG2(digest []byte) PointG2 {
	s := e.ScalarFromDigest(digest)
	return e.ScalarMulG2(e.G2Generator(), s)
}

func (e *bw6761Engine) SizeG1(compressed bool) int {
	if compressed {
		return bw6761.SizeOfG1AffineCompressed
	}
	return bw6761.SizeOfG1AffineUncompressed
}

func (e *bw6761Engine) SizeG2(compressed bool) int {
	if compressed {
		return bw6761.SizeOfG2AffineCompressed
	}
	return bw6761.SizeOfG2AffineUncompressed
}

func (e *bw6761Engine) MarshalG1(p PointG1, compressed bool) []byte {
	if compressed {
		return p.Bytes()
	}
	return p.RawBytes()
}

func (e *bw6761Engine) MarshalG2(p PointG2, compressed bool) []byte {
	if compressed {
		return p.Bytes()
	}
	return p.RawBytes()
}

func (e *bw6761Engine) UnmarshalG1(data []byte, compressed bool) (PointG1, error) {
	var p bw6761.G1Affine
	if _, err := p.SetBytes(data); err != nil {
		return nil, err
	}
	return bw6761G1{p}, nil
}

func (e *bw6761Engine) UnmarshalG2(data []byte, compressed bool) (PointG2, error) {
	var p bw6761.G2Affine
	if _, err := p.SetBytes(data); err != nil {
		return nil, err
	}
	return bw6761G2{p}, nil
}

func (e *bw6761Engine) InSubGroupG1(p PointG1) bool {
	a := p.(bw6761G1).p
	return a.IsInSubGroup()
}

func (e *bw6761Engine) InSubGroupG2(p PointG2) bool {
	a := p.(bw6761G2).p
	return a.IsInSubGroup()
}

func (e *bw6761Engine) FFTDomain(size uint64) (generator, generatorInv, sizeInv *big.Int, err error) {
	d := fft.NewDomain(size)
	gen, genInv, szInv := new(big.Int), new(big.Int), new(big.Int)
	d.Generator.BigInt(gen)
	d.GeneratorInv.BigInt(genInv)
	d.CardinalityInv.BigInt(szInv)
	return gen, genInv, szInv, nil
}
