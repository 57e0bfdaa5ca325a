package phase2

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"sort"

	"github.com/consensys/gnark/constraint"
)

// R1CSMatrices is the sparse A, B, C matrix triple a Groth16 circuit-specific
// setup reduces (§4.6.1): constraints are rows, variables are columns.
// Variable indices below NumPublic are public (index 0 is conventionally the
// constant-one wire); the remainder are private/witness variables.
type R1CSMatrices struct {
	NumPublic  int
	NumPrivate int
	Rows       []R1CRow
}

// R1CRow is one constraint's three sparse linear combinations.
type R1CRow struct {
	A, B, C map[int]*big.Int
}

// NumVariables is NumPublic + NumPrivate.
func (m *R1CSMatrices) NumVariables() int { return m.NumPublic + m.NumPrivate }

// NumConstraints is len(Rows).
func (m *R1CSMatrices) NumConstraints() int { return len(m.Rows) }

// CanonicalBytes serializes the matrices in a fixed, sorted-key order so
// cs_hash (§4.6.1) is independent of map iteration order.
func (m *R1CSMatrices) CanonicalBytes() []byte {
	var buf []byte
	putU64 := func(v uint64) {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], v)
		buf = append(buf, b[:]...)
	}
	putU64(uint64(m.NumPublic))
	putU64(uint64(m.NumPrivate))
	putU64(uint64(len(m.Rows)))
	for _, row := range m.Rows {
		for _, lc := range []map[int]*big.Int{row.A, row.B, row.C} {
			keys := make([]int, 0, len(lc))
			for k := range lc {
				keys = append(keys, k)
			}
			sort.Ints(keys)
			putU64(uint64(len(keys)))
			for _, k := range keys {
				putU64(uint64(k))
				coeff := lc[k].Bytes()
				putU64(uint64(len(coeff)))
				buf = append(buf, coeff...)
			}
		}
	}
	return buf
}

// FromConstraintSystem extracts R1CSMatrices from a compiled gnark R1CS
// constraint system (§4.6.1, grounded on the teacher's own
// frontend.Compile-then-inspect usage in algoplonk.go, generalized from
// PLONK's sparse-constraint-system view to groth16's R1CS view via
// constraint.R1CS).
//
// Coefficient values are recovered through the constraint system's own
// coefficient table (GetCoefficient); callers that already hold an
// R1CSMatrices (e.g. from a stored circuit definition) can skip this and
// call New directly.
func FromConstraintSystem(ccs constraint.ConstraintSystem) (*R1CSMatrices, error) {
	r1cs, ok := ccs.(constraint.R1CS)
	if !ok {
		return nil, fmt.Errorf("phase2: constraint system is not an R1CS (got %T)", ccs)
	}

	numPublic := r1cs.GetNbPublicVariables()
	numPrivate := r1cs.GetNbSecretVariables() + r1cs.GetNbInternalVariables()

	out := &R1CSMatrices{NumPublic: numPublic, NumPrivate: numPrivate}
	it := r1cs.GetR1Cs()
	for _, c := range it {
		row := R1CRow{A: map[int]*big.Int{}, B: map[int]*big.Int{}, C: map[int]*big.Int{}}
		fill := func(dst map[int]*big.Int, le constraint.LinearExpression) {
			for _, term := range le {
				coeffID := term.CoeffID()
				coeff := new(big.Int).SetBytes(r1cs.GetCoefficient(coeffID).Bytes())
				dst[term.WireID()] = coeff
			}
		}
		fill(row.A, c.L)
		fill(row.B, c.R)
		fill(row.C, c.O)
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
