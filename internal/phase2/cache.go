package phase2

import (
	"bytes"
	"encoding/gob"
	"os"

	gnarkecc "github.com/consensys/gnark-crypto/ecc"

	"github.com/trustless-setup/ceremony/internal/curve"
)

// cachedState is the gob wire shape for a fast-path cache file: the circuit
// matrices plus one set of Groth16 parameters, compressed, so a repeated
// `new` invocation against the same circuit skips the radix computation and
// phase2.New. It does not skip JSON parsing (the circuit is parsed to derive
// the cache key) or the point codec (LoadCache decodes ParamsBin with it).
type cachedState struct {
	Curve     gnarkecc.ID
	M         int
	Matrices  *R1CSMatrices
	ParamsBin []byte
}

// SaveCache writes matrices and params to path as a single gob-encoded
// file, the Go-to-Go fast path between successive invocations of the
// phase2 CLI against the same circuit (distinct from the Parameters wire
// format of Serialize, which is the ceremony's normative, cross-language
// transcript format).
func SaveCache(path string, matrices *R1CSMatrices, params *Parameters, batchSize int) error {
	paramsBin, err := params.Serialize(true, batchSize)
	if err != nil {
		return err
	}
	state := cachedState{
		Curve:     params.Engine.ID(),
		M:         params.M,
		Matrices:  matrices,
		ParamsBin: paramsBin,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// LoadCache reads a file written by SaveCache, re-resolving the curve
// engine and reconstructing the Parameters directly from the cached
// compressed bytes.
func LoadCache(path string) (*R1CSMatrices, *Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var state cachedState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return nil, nil, err
	}
	eng, err := curve.ByID(state.Curve)
	if err != nil {
		return nil, nil, err
	}
	params, err := DeserializeParameters(eng, state.Matrices, state.M, state.ParamsBin, true)
	if err != nil {
		return nil, nil, err
	}
	return state.Matrices, params, nil
}
