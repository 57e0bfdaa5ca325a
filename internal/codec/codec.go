// Package codec implements the batched point codec (§4.1): fixed-offset
// serialization of G1/G2 vectors over a flat byte region, with configurable
// compression and correctness checking, processed in fixed-size batches so
// peak memory stays bounded regardless of accumulator size.
package codec

import (
	"math/big"

	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/errs"
)

// CorrectnessMode controls which checks ReadBatch runs on each decoded
// point.
type CorrectnessMode int

const (
	CorrectnessNo CorrectnessMode = iota
	CorrectnessOnlyNonZero
	CorrectnessOnlyInGroup
	CorrectnessFull
)

func (m CorrectnessMode) checkNonZero() bool {
	return m == CorrectnessOnlyNonZero || m == CorrectnessFull
}

func (m CorrectnessMode) checkSubgroup() bool {
	return m == CorrectnessOnlyInGroup || m == CorrectnessFull
}

// DefaultBatchSize is used when the caller has not configured one
// explicitly; it matches the lower end of the CLI-recommended 256-4096
// range.
const DefaultBatchSize = 256

// BufferSizeG1 returns the fixed encoded width of one G1 element.
func BufferSizeG1(eng curve.Engine, compressed bool) int { return eng.SizeG1(compressed) }

// BufferSizeG2 returns the fixed encoded width of one G2 element.
func BufferSizeG2(eng curve.Engine, compressed bool) int { return eng.SizeG2(compressed) }

// WriteBatchG1 serializes points into buf starting at offset, compressed or
// not, and returns the offset immediately following the written region.
func WriteBatchG1(eng curve.Engine, buf []byte, offset int, points []curve.PointG1, compressed bool) (int, error) {
	width := eng.SizeG1(compressed)
	need := offset + width*len(points)
	if need > len(buf) {
		return 0, &errs.PositionError{Kind: "WriteBatchG1", Max: len(buf), Got: need}
	}
	for i, p := range points {
		copy(buf[offset+i*width:offset+(i+1)*width], eng.MarshalG1(p, compressed))
	}
	return offset + width*len(points), nil
}

// WriteBatchG2 is WriteBatchG1's G2 counterpart.
func WriteBatchG2(eng curve.Engine, buf []byte, offset int, points []curve.PointG2, compressed bool) (int, error) {
	width := eng.SizeG2(compressed)
	need := offset + width*len(points)
	if need > len(buf) {
		return 0, &errs.PositionError{Kind: "WriteBatchG2", Max: len(buf), Got: need}
	}
	for i, p := range points {
		copy(buf[offset+i*width:offset+(i+1)*width], eng.MarshalG2(p, compressed))
	}
	return offset + width*len(points), nil
}

// ReadBatchG1 deserializes count G1 elements from buf starting at offset,
// applying correctness and subgroup-check-mode checks, and returns the
// decoded points plus the offset immediately following the consumed region.
func ReadBatchG1(eng curve.Engine, buf []byte, offset, count int, compressed bool,
	correctness CorrectnessMode, subgroupMode curve.SubgroupCheckMode) ([]curve.PointG1, int, error) {

	width := eng.SizeG1(compressed)
	need := offset + width*count
	if need > len(buf) {
		return nil, 0, &errs.InvalidLengthError{Expected: need, Got: len(buf)}
	}
	out := make([]curve.PointG1, count)
	for i := 0; i < count; i++ {
		chunk := buf[offset+i*width : offset+(i+1)*width]
		p, err := eng.UnmarshalG1(chunk, compressed)
		if err != nil {
			return nil, 0, err
		}
		if correctness.checkNonZero() && p.IsInfinity() {
			return nil, 0, errs.ErrPointAtInfinity
		}
		out[i] = p
	}
	if correctness.checkSubgroup() {
		if err := checkSubgroupG1(eng, out, subgroupMode); err != nil {
			return nil, 0, err
		}
	}
	return out, offset + width*count, nil
}

// ReadBatchG2 is ReadBatchG1's G2 counterpart.
func ReadBatchG2(eng curve.Engine, buf []byte, offset, count int, compressed bool,
	correctness CorrectnessMode, subgroupMode curve.SubgroupCheckMode) ([]curve.PointG2, int, error) {

	width := eng.SizeG2(compressed)
	need := offset + width*count
	if need > len(buf) {
		return nil, 0, &errs.InvalidLengthError{Expected: need, Got: len(buf)}
	}
	out := make([]curve.PointG2, count)
	for i := 0; i < count; i++ {
		chunk := buf[offset+i*width : offset+(i+1)*width]
		p, err := eng.UnmarshalG2(chunk, compressed)
		if err != nil {
			return nil, 0, err
		}
		if correctness.checkNonZero() && p.IsInfinity() {
			return nil, 0, errs.ErrPointAtInfinity
		}
		out[i] = p
	}
	if correctness.checkSubgroup() {
		if err := checkSubgroupG2(eng, out, subgroupMode); err != nil {
			return nil, 0, err
		}
	}
	return out, offset + width*count, nil
}

// checkSubgroupG1 runs either one InSubGroupG1 call per point (Direct) or a
// single random-linear-combination membership check over the whole batch
// (Batched): since the prime-order subgroup is closed under addition and
// scalar multiplication, a random combination of in-subgroup points stays
// in-subgroup, while a random combination involving even one off-subgroup
// point lands outside it except with probability <2^-128.
func checkSubgroupG1(eng curve.Engine, points []curve.PointG1, mode curve.SubgroupCheckMode) error {
	if mode == curve.SubgroupCheckDirect || mode == curve.SubgroupCheckAuto {
		for _, p := range points {
			if !eng.InSubGroupG1(p) {
				return &errs.VerificationError{Kind: errs.InvalidGenerator, Context: "G1 subgroup check failed"}
			}
		}
		return nil
	}
	scalars, err := randomCoefficients(eng, len(points))
	if err != nil {
		return err
	}
	combined, err := eng.MultiScalarMulG1(points, scalars)
	if err != nil {
		return err
	}
	if !eng.InSubGroupG1(combined) {
		return &errs.VerificationError{Kind: errs.InvalidGenerator, Context: "batched G1 subgroup check failed"}
	}
	return nil
}

func checkSubgroupG2(eng curve.Engine, points []curve.PointG2, mode curve.SubgroupCheckMode) error {
	if mode == curve.SubgroupCheckDirect || mode == curve.SubgroupCheckAuto {
		for _, p := range points {
			if !eng.InSubGroupG2(p) {
				return &errs.VerificationError{Kind: errs.InvalidGenerator, Context: "G2 subgroup check failed"}
			}
		}
		return nil
	}
	scalars, err := randomCoefficients(eng, len(points))
	if err != nil {
		return err
	}
	combined, err := eng.MultiScalarMulG2(points, scalars)
	if err != nil {
		return err
	}
	if !eng.InSubGroupG2(combined) {
		return &errs.VerificationError{Kind: errs.InvalidGenerator, Context: "batched G2 subgroup check failed"}
	}
	return nil
}

func randomCoefficients(eng curve.Engine, n int) ([]*big.Int, error) {
	out := make([]*big.Int, n)
	for i := range out {
		s, err := eng.RandomScalar()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
