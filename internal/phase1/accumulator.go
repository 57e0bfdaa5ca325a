// Package phase1 implements the Powers-of-τ accumulator (§3, §4.4): the
// universal, circuit-independent structure contributed to by every
// participant in round one of the ceremony.
package phase1

import (
	"github.com/trustless-setup/ceremony/internal/codec"
	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/errs"
	"github.com/trustless-setup/ceremony/internal/hashrand"
)

// Accumulator is the in-memory form of a Phase 1 transcript: the five
// element regions of §3 plus the digest of whatever transcript it was
// derived from.
type Accumulator struct {
	Engine curve.Engine
	Power  uint

	PreviousDigest [hashrand.DigestSize]byte

	TauG1      []curve.PointG1 // length 2N-1
	TauG2      []curve.PointG2 // length N
	AlphaTauG1 []curve.PointG1 // length N
	BetaTauG1  []curve.PointG1 // length N
	BetaG2     curve.PointG2
}

// domainSize returns N = 2^power.
func domainSize(power uint) int { return 1 << power }

// New builds a blank accumulator: every region filled with the group
// generator, since τ⁰ = α·τ⁰ = β·τ⁰ = 1 (§4.4.1).
func New(eng curve.Engine, power uint) *Accumulator {
	n := domainSize(power)
	a := &Accumulator{
		Engine:     eng,
		Power:      power,
		TauG1:      make([]curve.PointG1, 2*n-1),
		TauG2:      make([]curve.PointG2, n),
		AlphaTauG1: make([]curve.PointG1, n),
		BetaTauG1:  make([]curve.PointG1, n),
		BetaG2:     eng.G2Generator(),
	}
	g1 := eng.G1Generator()
	g2 := eng.G2Generator()
	for i := range a.TauG1 {
		a.TauG1[i] = g1
	}
	for i := range a.TauG2 {
		a.TauG2[i] = g2
	}
	for i := range a.AlphaTauG1 {
		a.AlphaTauG1[i] = g1
	}
	for i := range a.BetaTauG1 {
		a.BetaTauG1[i] = g1
	}
	return a
}

// N returns the domain size 2^Power.
func (a *Accumulator) N() int { return domainSize(a.Power) }

// Serialize encodes the accumulator in the layout of §4.1/§6: the 64-byte
// previous-transcript digest followed by the five regions, in batches of
// batchSize elements each so peak memory during encoding stays bounded.
func (a *Accumulator) Serialize(compressed bool, batchSize int) ([]byte, error) {
	eng := a.Engine
	total := hashrand.DigestSize +
		len(a.TauG1)*eng.SizeG1(compressed) +
		len(a.TauG2)*eng.SizeG2(compressed) +
		len(a.AlphaTauG1)*eng.SizeG1(compressed) +
		len(a.BetaTauG1)*eng.SizeG1(compressed) +
		eng.SizeG2(compressed)

	buf := make([]byte, total)
	copy(buf[:hashrand.DigestSize], a.PreviousDigest[:])
	offset := hashrand.DigestSize

	var err error
	offset, err = writeBatchedG1(eng, buf, offset, a.TauG1, compressed, batchSize)
	if err != nil {
		return nil, err
	}
	offset, err = writeBatchedG2(eng, buf, offset, a.TauG2, compressed, batchSize)
	if err != nil {
		return nil, err
	}
	offset, err = writeBatchedG1(eng, buf, offset, a.AlphaTauG1, compressed, batchSize)
	if err != nil {
		return nil, err
	}
	offset, err = writeBatchedG1(eng, buf, offset, a.BetaTauG1, compressed, batchSize)
	if err != nil {
		return nil, err
	}
	if _, err := codec.WriteBatchG2(eng, buf, offset, []curve.PointG2{a.BetaG2}, compressed); err != nil {
		return nil, err
	}
	return buf, nil
}

// Deserialize parses the layout produced by Serialize for a given power and
// curve.
func Deserialize(eng curve.Engine, power uint, data []byte, compressed bool,
	correctness codec.CorrectnessMode, subgroupMode curve.SubgroupCheckMode, batchSize int) (*Accumulator, error) {

	n := domainSize(power)
	if len(data) < hashrand.DigestSize {
		return nil, &errs.InvalidLengthError{Expected: hashrand.DigestSize, Got: len(data)}
	}
	a := &Accumulator{Engine: eng, Power: power}
	copy(a.PreviousDigest[:], data[:hashrand.DigestSize])
	offset := hashrand.DigestSize

	var err error
	a.TauG1, offset, err = readBatchedG1(eng, data, offset, 2*n-1, compressed, correctness, subgroupMode, batchSize)
	if err != nil {
		return nil, err
	}
	a.TauG2, offset, err = readBatchedG2(eng, data, offset, n, compressed, correctness, subgroupMode, batchSize)
	if err != nil {
		return nil, err
	}
	a.AlphaTauG1, offset, err = readBatchedG1(eng, data, offset, n, compressed, correctness, subgroupMode, batchSize)
	if err != nil {
		return nil, err
	}
	a.BetaTauG1, offset, err = readBatchedG1(eng, data, offset, n, compressed, correctness, subgroupMode, batchSize)
	if err != nil {
		return nil, err
	}
	betaG2, _, err := codec.ReadBatchG2(eng, data, offset, 1, compressed, codec.CorrectnessMode(correctness), subgroupMode)
	if err != nil {
		return nil, err
	}
	a.BetaG2 = betaG2[0]
	return a, nil
}

func writeBatchedG1(eng curve.Engine, buf []byte, offset int, points []curve.PointG1, compressed bool, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = codec.DefaultBatchSize
	}
	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}
		var err error
		offset, err = codec.WriteBatchG1(eng, buf, offset, points[start:end], compressed)
		if err != nil {
			return 0, err
		}
	}
	return offset, nil
}

func writeBatchedG2(eng curve.Engine, buf []byte, offset int, points []curve.PointG2, compressed bool, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = codec.DefaultBatchSize
	}
	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}
		var err error
		offset, err = codec.WriteBatchG2(eng, buf, offset, points[start:end], compressed)
		if err != nil {
			return 0, err
		}
	}
	return offset, nil
}

func readBatchedG1(eng curve.Engine, buf []byte, offset, count int, compressed bool,
	correctness codec.CorrectnessMode, subgroupMode curve.SubgroupCheckMode, batchSize int) ([]curve.PointG1, int, error) {

	if batchSize <= 0 {
		batchSize = codec.DefaultBatchSize
	}
	out := make([]curve.PointG1, 0, count)
	for start := 0; start < count; start += batchSize {
		n := batchSize
		if start+n > count {
			n = count - start
		}
		batch, next, err := codec.ReadBatchG1(eng, buf, offset, n, compressed, correctness, subgroupMode)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, batch...)
		offset = next
	}
	return out, offset, nil
}

func readBatchedG2(eng curve.Engine, buf []byte, offset, count int, compressed bool,
	correctness codec.CorrectnessMode, subgroupMode curve.SubgroupCheckMode, batchSize int) ([]curve.PointG2, int, error) {

	if batchSize <= 0 {
		batchSize = codec.DefaultBatchSize
	}
	out := make([]curve.PointG2, 0, count)
	for start := 0; start < count; start += batchSize {
		n := batchSize
		if start+n > count {
			n = count - start
		}
		batch, next, err := codec.ReadBatchG2(eng, buf, offset, n, compressed, correctness, subgroupMode)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, batch...)
		offset = next
	}
	return out, offset, nil
}
