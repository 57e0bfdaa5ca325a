package phase1

import (
	"math/big"

	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/errs"
	"github.com/trustless-setup/ceremony/internal/keygen"
)

// ChunkRange is a half-open index range [Start, End) into tau_g1, used to
// shard a single contribution across machines (§4.4.3). Chunk 0 also carries
// tau_g2, alpha_tau_g1, beta_tau_g1 and beta_g2; every other chunk touches
// tau_g1 alone.
type ChunkRange struct {
	Index      int
	Count      int
	Start, End int
}

// Chunks splits the 2N-1 entries of tau_g1 into count contiguous, roughly
// equal ranges.
func Chunks(power uint, count int) []ChunkRange {
	total := 2*domainSize(power) - 1
	out := make([]ChunkRange, count)
	base := total / count
	rem := total % count
	start := 0
	for i := 0; i < count; i++ {
		size := base
		if i < rem {
			size++
		}
		out[i] = ChunkRange{Index: i, Count: count, Start: start, End: start + size}
		start += size
	}
	return out
}

// ContributeChunk applies priv's (τ, α, β) to prev restricted to r: it
// returns an accumulator whose TauG1 is only valid over [r.Start, r.End),
// and, for r.Index == 0 alone, whose other regions carry the full
// contribution. Callers must not read outside this accumulator's populated
// ranges before AggregateChunks has run.
func ContributeChunk(prev *Accumulator, priv *keygen.PrivateKey, r ChunkRange, mode curve.BatchExpMode) (*Accumulator, error) {
	eng := prev.Engine
	if r.Start < 0 || r.End > len(prev.TauG1) || r.Start > r.End {
		return nil, &errs.InvalidChunkError{ChunkIndex: r.Index, ChunkCount: r.Count}
	}
	tau := priv.Tau()

	next := &Accumulator{
		Engine:         eng,
		Power:          prev.Power,
		PreviousDigest: prev.PreviousDigest,
		TauG1:          make([]curve.PointG1, len(prev.TauG1)),
	}
	copy(next.TauG1, prev.TauG1)

	tauPowers := powersOfFrom(eng, tau, r.Start, r.End-r.Start)
	scaled := eng.BatchScalarMulG1(prev.TauG1[r.Start:r.End], tauPowers, mode)
	copy(next.TauG1[r.Start:r.End], scaled)

	if r.Index != 0 {
		return next, nil
	}

	alpha, beta := priv.Alpha(), priv.Beta()
	tauPowersG2 := powersOf(eng, tau, len(prev.TauG2))
	alphaTauPowers := scaledPowers(eng, tau, alpha, len(prev.AlphaTauG1))
	betaTauPowers := scaledPowers(eng, tau, beta, len(prev.BetaTauG1))

	next.TauG2 = eng.BatchScalarMulG2(prev.TauG2, tauPowersG2, mode)
	next.AlphaTauG1 = eng.BatchScalarMulG1(prev.AlphaTauG1, alphaTauPowers, mode)
	next.BetaTauG1 = eng.BatchScalarMulG1(prev.BetaTauG1, betaTauPowers, mode)
	next.BetaG2 = eng.ScalarMulG2(prev.BetaG2, beta)
	return next, nil
}

// AggregateChunks concatenates the per-chunk accumulators produced by
// ContributeChunk, in chunk-index order, back into one full accumulator.
// Offset arithmetic must line up exactly with the ranges Chunks produced;
// AggregateChunks re-derives them itself rather than trusting the caller.
func AggregateChunks(power uint, chunks []*Accumulator) (*Accumulator, error) {
	if len(chunks) == 0 {
		return nil, errs.ErrNoContributions
	}
	ranges := Chunks(power, len(chunks))
	eng := chunks[0].Engine
	out := &Accumulator{
		Engine:         eng,
		Power:          power,
		PreviousDigest: chunks[0].PreviousDigest,
		TauG1:          make([]curve.PointG1, 2*domainSize(power)-1),
	}
	for i, c := range chunks {
		r := ranges[i]
		if c.Power != power || len(c.TauG1) != len(out.TauG1) {
			return nil, &errs.InvalidChunkError{ChunkIndex: i, ChunkCount: len(chunks)}
		}
		copy(out.TauG1[r.Start:r.End], c.TauG1[r.Start:r.End])
	}
	zero := chunks[0]
	if zero.TauG2 == nil {
		return nil, &errs.InvalidChunkError{ChunkIndex: 0, ChunkCount: len(chunks)}
	}
	out.TauG2 = zero.TauG2
	out.AlphaTauG1 = zero.AlphaTauG1
	out.BetaTauG1 = zero.BetaTauG1
	out.BetaG2 = zero.BetaG2
	return out, nil
}

// powersOfFrom returns [x^start, x^(start+1), ..., x^(start+n-1)] mod the
// curve order, for chunked contribution where the exponent base is offset.
func powersOfFrom(eng curve.Engine, x *big.Int, start, n int) []*big.Int {
	order := eng.Order()
	base := new(big.Int).Exp(x, big.NewInt(int64(start)), order)
	out := make([]*big.Int, n)
	cur := base
	for i := 0; i < n; i++ {
		out[i] = new(big.Int).Set(cur)
		cur = new(big.Int).Mul(cur, x)
		cur.Mod(cur, order)
	}
	return out
}
