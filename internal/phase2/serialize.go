package phase2

import (
	"encoding/binary"
	"encoding/json"
	"os"

	"github.com/trustless-setup/ceremony/internal/codec"
	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/errs"
	"github.com/trustless-setup/ceremony/internal/hashrand"
	"github.com/trustless-setup/ceremony/internal/keygen"
)

// Serialize encodes p as: alpha_g1, beta_g1, beta_g2, delta_g1, delta_g2;
// the vectors ic, a_g1, b_g1, b_g2, h and l in that order (h and l come
// after the a/b vectors), each preceded by its length as a big-endian u64;
// the 64-byte cs_hash; then the contribution count as a big-endian u64 (not
// a u32) followed by that many (g1_s, g1_s_x, g2_s_x) public keys.
func (p *Parameters) Serialize(compressed bool, batchSize int) ([]byte, error) {
	eng := p.Engine
	if batchSize <= 0 {
		batchSize = codec.DefaultBatchSize
	}
	var buf []byte
	buf = append(buf, eng.MarshalG1(p.AlphaG1, compressed)...)
	buf = append(buf, eng.MarshalG1(p.BetaG1, compressed)...)
	buf = append(buf, eng.MarshalG2(p.BetaG2, compressed)...)
	buf = append(buf, eng.MarshalG1(p.DeltaG1, compressed)...)
	buf = append(buf, eng.MarshalG2(p.DeltaG2, compressed)...)

	buf = appendU64(buf, uint64(len(p.IC)))
	buf = appendG1Batched(eng, buf, p.IC, compressed, batchSize)
	buf = appendU64(buf, uint64(len(p.A)))
	buf = appendG1Batched(eng, buf, p.A, compressed, batchSize)
	buf = appendU64(buf, uint64(len(p.B1)))
	buf = appendG1Batched(eng, buf, p.B1, compressed, batchSize)
	buf = appendU64(buf, uint64(len(p.B2)))
	buf = appendG2Batched(eng, buf, p.B2, compressed, batchSize)
	buf = appendU64(buf, uint64(len(p.H)))
	buf = appendG1Batched(eng, buf, p.H, compressed, batchSize)
	buf = appendU64(buf, uint64(len(p.L)))
	buf = appendG1Batched(eng, buf, p.L, compressed, batchSize)

	buf = append(buf, p.CSHash[:]...)

	buf = appendU64(buf, uint64(len(p.Contributions)))
	for _, pk := range p.Contributions {
		buf = append(buf, eng.MarshalG1(pk.Tau.G1S, compressed)...)
		buf = append(buf, eng.MarshalG1(pk.Tau.G1SX, compressed)...)
		buf = append(buf, eng.MarshalG2(pk.Tau.G2SX, compressed)...)
	}
	return buf, nil
}

func appendU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func appendG1Batched(eng curve.Engine, buf []byte, points []curve.PointG1, compressed bool, batchSize int) []byte {
	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}
		for _, p := range points[start:end] {
			buf = append(buf, eng.MarshalG1(p, compressed)...)
		}
	}
	return buf
}

func appendG2Batched(eng curve.Engine, buf []byte, points []curve.PointG2, compressed bool, batchSize int) []byte {
	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}
		for _, p := range points[start:end] {
			buf = append(buf, eng.MarshalG2(p, compressed)...)
		}
	}
	return buf
}

type paramsReader struct {
	eng    curve.Engine
	data   []byte
	offset int
}

func (r *paramsReader) readU64() (uint64, error) {
	if r.offset+8 > len(r.data) {
		return 0, &errs.InvalidLengthError{Expected: r.offset + 8, Got: len(r.data)}
	}
	v := binary.BigEndian.Uint64(r.data[r.offset : r.offset+8])
	r.offset += 8
	return v, nil
}

func (r *paramsReader) readG1(compressed bool) (curve.PointG1, error) {
	w := r.eng.SizeG1(compressed)
	if r.offset+w > len(r.data) {
		return nil, &errs.InvalidLengthError{Expected: r.offset + w, Got: len(r.data)}
	}
	p, err := r.eng.UnmarshalG1(r.data[r.offset:r.offset+w], compressed)
	r.offset += w
	return p, err
}

func (r *paramsReader) readG2(compressed bool) (curve.PointG2, error) {
	w := r.eng.SizeG2(compressed)
	if r.offset+w > len(r.data) {
		return nil, &errs.InvalidLengthError{Expected: r.offset + w, Got: len(r.data)}
	}
	p, err := r.eng.UnmarshalG2(r.data[r.offset:r.offset+w], compressed)
	r.offset += w
	return p, err
}

func (r *paramsReader) readG1Slice(n int, compressed bool) ([]curve.PointG1, error) {
	out := make([]curve.PointG1, n)
	for i := range out {
		p, err := r.readG1(compressed)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func (r *paramsReader) readG2Slice(n int, compressed bool) ([]curve.PointG2, error) {
	out := make([]curve.PointG2, n)
	for i := range out {
		p, err := r.readG2(compressed)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// DeserializeParameters parses the layout produced by Parameters.Serialize.
// matrices and m must be supplied by the caller (they are not part of the
// wire format: the circuit definition is distributed out of band, per §6).
func DeserializeParameters(eng curve.Engine, matrices *R1CSMatrices, m int, data []byte, compressed bool) (*Parameters, error) {
	r := &paramsReader{eng: eng, data: data}
	p := &Parameters{Engine: eng, Matrices: matrices, M: m}

	var err error
	if p.AlphaG1, err = r.readG1(compressed); err != nil {
		return nil, err
	}
	if p.BetaG1, err = r.readG1(compressed); err != nil {
		return nil, err
	}
	if p.BetaG2, err = r.readG2(compressed); err != nil {
		return nil, err
	}
	if p.DeltaG1, err = r.readG1(compressed); err != nil {
		return nil, err
	}
	if p.DeltaG2, err = r.readG2(compressed); err != nil {
		return nil, err
	}

	readVecG1 := func() ([]curve.PointG1, error) {
		n, err := r.readU64()
		if err != nil {
			return nil, err
		}
		return r.readG1Slice(int(n), compressed)
	}
	readVecG2 := func() ([]curve.PointG2, error) {
		n, err := r.readU64()
		if err != nil {
			return nil, err
		}
		return r.readG2Slice(int(n), compressed)
	}

	if p.IC, err = readVecG1(); err != nil {
		return nil, err
	}
	if p.A, err = readVecG1(); err != nil {
		return nil, err
	}
	if p.B1, err = readVecG1(); err != nil {
		return nil, err
	}
	if p.B2, err = readVecG2(); err != nil {
		return nil, err
	}
	if p.H, err = readVecG1(); err != nil {
		return nil, err
	}
	if p.L, err = readVecG1(); err != nil {
		return nil, err
	}

	if r.offset+hashrand.DigestSize > len(data) {
		return nil, &errs.InvalidLengthError{Expected: r.offset + hashrand.DigestSize, Got: len(data)}
	}
	copy(p.CSHash[:], data[r.offset:r.offset+hashrand.DigestSize])
	r.offset += hashrand.DigestSize

	count, err := r.readU64()
	if err != nil {
		return nil, err
	}
	p.Contributions = make([]keygen.PublicKey, 0, count)
	for i := uint64(0); i < count; i++ {
		s, err := r.readG1(compressed)
		if err != nil {
			return nil, err
		}
		sx, err := r.readG1(compressed)
		if err != nil {
			return nil, err
		}
		sxG2, err := r.readG2(compressed)
		if err != nil {
			return nil, err
		}
		p.Contributions = append(p.Contributions, keygen.PublicKey{Tau: keygen.ScalarKey{G1S: s, G1SX: sx, G2SX: sxG2}})
	}
	return p, nil
}

// LoadR1CSMatrices reads a JSON-encoded R1CSMatrices from path, the
// `<circuit.r1cs>` argument of the phase2 CLI's `new` subcommand.
func LoadR1CSMatrices(path string) (*R1CSMatrices, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m R1CSMatrices
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveR1CSMatrices writes m as JSON to path.
func SaveR1CSMatrices(m *R1CSMatrices, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
