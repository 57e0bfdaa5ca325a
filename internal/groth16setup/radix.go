package groth16setup

import (
	"fmt"

	"github.com/trustless-setup/ceremony/internal/codec"
	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/phase1"
)

// Radix is the Phase 1 radix file (§4.5): the Lagrange-basis evaluation, at
// domain size M, of the four power vectors a finished powers-of-tau
// accumulator carries, plus beta_g2 passed through unchanged (it is a single
// group element, not a vector indexed by the evaluation domain).
type Radix struct {
	Engine curve.Engine
	M      int

	LagrangeTauG1      []curve.PointG1
	LagrangeTauG2      []curve.PointG2
	LagrangeAlphaTauG1 []curve.PointG1
	LagrangeBetaTauG1  []curve.PointG1
	BetaG2             curve.PointG2
}

// Compute reduces acc to a length-m radix file. m must be a power of two not
// exceeding the accumulator's domain size N (acc.TauG1 must carry at least m
// of the low-degree tau powers; AggregateVerification should already have
// run on acc before this is called, since Compute trusts every element it is
// given).
func Compute(acc *phase1.Accumulator, m int) (*Radix, error) {
	eng := acc.Engine
	if m <= 0 || m&(m-1) != 0 {
		return nil, ErrNotPowerOfTwo
	}
	if m > len(acc.TauG2) {
		return nil, errUnexpectedLength("accumulator domain", m, len(acc.TauG2))
	}

	lagTauG1, err := InverseFFTG1(eng, acc.TauG1[:m])
	if err != nil {
		return nil, err
	}
	lagTauG2, err := InverseFFTG2(eng, acc.TauG2[:m])
	if err != nil {
		return nil, err
	}
	lagAlphaTauG1, err := InverseFFTG1(eng, acc.AlphaTauG1[:m])
	if err != nil {
		return nil, err
	}
	lagBetaTauG1, err := InverseFFTG1(eng, acc.BetaTauG1[:m])
	if err != nil {
		return nil, err
	}

	return &Radix{
		Engine:             eng,
		M:                  m,
		LagrangeTauG1:      lagTauG1,
		LagrangeTauG2:      lagTauG2,
		LagrangeAlphaTauG1: lagAlphaTauG1,
		LagrangeBetaTauG1:  lagBetaTauG1,
		BetaG2:             acc.BetaG2,
	}, nil
}

// FileName returns the conventional radix-directory file name for domain
// size m (one radix file per distinct circuit size a Phase 2 ceremony in the
// same directory has been run for).
func FileName(m int) string {
	return fmt.Sprintf("radix_%d.bin", m)
}

// Serialize encodes r using the same batched point codec as Phase 1
// transcripts, compressed, in batches of batchSize.
func (r *Radix) Serialize(batchSize int) ([]byte, error) {
	if batchSize <= 0 {
		batchSize = codec.DefaultBatchSize
	}
	eng := r.Engine
	total := eng.SizeG1(true)*(len(r.LagrangeTauG1)+len(r.LagrangeAlphaTauG1)+len(r.LagrangeBetaTauG1)) +
		eng.SizeG2(true)*(len(r.LagrangeTauG2)+1)
	buf := make([]byte, total)
	offset := 0
	var err error
	offset, err = writeBatchedG1(eng, buf, offset, r.LagrangeTauG1, batchSize)
	if err != nil {
		return nil, err
	}
	offset, err = writeBatchedG2(eng, buf, offset, r.LagrangeTauG2, batchSize)
	if err != nil {
		return nil, err
	}
	offset, err = writeBatchedG1(eng, buf, offset, r.LagrangeAlphaTauG1, batchSize)
	if err != nil {
		return nil, err
	}
	offset, err = writeBatchedG1(eng, buf, offset, r.LagrangeBetaTauG1, batchSize)
	if err != nil {
		return nil, err
	}
	if _, err := codec.WriteBatchG2(eng, buf, offset, []curve.PointG2{r.BetaG2}, true); err != nil {
		return nil, err
	}
	return buf, nil
}

// DeserializeRadix parses the layout Serialize produces for domain size m.
func DeserializeRadix(eng curve.Engine, m int, data []byte) (*Radix, error) {
	correctness := codec.CorrectnessOnlyInGroup
	offset := 0
	var err error
	r := &Radix{Engine: eng, M: m}
	r.LagrangeTauG1, offset, err = readBatchedG1(eng, data, offset, m, correctness, codec.DefaultBatchSize)
	if err != nil {
		return nil, err
	}
	r.LagrangeTauG2, offset, err = readBatchedG2(eng, data, offset, m, correctness, codec.DefaultBatchSize)
	if err != nil {
		return nil, err
	}
	r.LagrangeAlphaTauG1, offset, err = readBatchedG1(eng, data, offset, m, correctness, codec.DefaultBatchSize)
	if err != nil {
		return nil, err
	}
	r.LagrangeBetaTauG1, offset, err = readBatchedG1(eng, data, offset, m, correctness, codec.DefaultBatchSize)
	if err != nil {
		return nil, err
	}
	betaG2, _, err := codec.ReadBatchG2(eng, data, offset, 1, true, correctness, curve.SubgroupCheckAuto)
	if err != nil {
		return nil, err
	}
	r.BetaG2 = betaG2[0]
	return r, nil
}

func writeBatchedG1(eng curve.Engine, buf []byte, offset int, points []curve.PointG1, batchSize int) (int, error) {
	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}
		var err error
		offset, err = codec.WriteBatchG1(eng, buf, offset, points[start:end], true)
		if err != nil {
			return 0, err
		}
	}
	return offset, nil
}

func writeBatchedG2(eng curve.Engine, buf []byte, offset int, points []curve.PointG2, batchSize int) (int, error) {
	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}
		var err error
		offset, err = codec.WriteBatchG2(eng, buf, offset, points[start:end], true)
		if err != nil {
			return 0, err
		}
	}
	return offset, nil
}

func readBatchedG1(eng curve.Engine, buf []byte, offset, count int, correctness codec.CorrectnessMode, batchSize int) ([]curve.PointG1, int, error) {
	out := make([]curve.PointG1, 0, count)
	for start := 0; start < count; start += batchSize {
		n := batchSize
		if start+n > count {
			n = count - start
		}
		batch, next, err := codec.ReadBatchG1(eng, buf, offset, n, true, correctness, curve.SubgroupCheckAuto)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, batch...)
		offset = next
	}
	return out, offset, nil
}

func readBatchedG2(eng curve.Engine, buf []byte, offset, count int, correctness codec.CorrectnessMode, batchSize int) ([]curve.PointG2, int, error) {
	out := make([]curve.PointG2, 0, count)
	for start := 0; start < count; start += batchSize {
		n := batchSize
		if start+n > count {
			n = count - start
		}
		batch, next, err := codec.ReadBatchG2(eng, buf, offset, n, true, correctness, curve.SubgroupCheckAuto)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, batch...)
		offset = next
	}
	return out, offset, nil
}
