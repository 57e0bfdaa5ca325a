// Package config resolves the ceremony CLI's shared defaults (curve, power,
// batch size, worker count, I/O strategy) from, in ascending priority:
// built-in defaults, CEREMONY_* environment variables, and finally explicit
// command-line flags — the layered cobra/pflag/viper idiom (§6, AMBIENT
// STACK "Configuration"). Nothing in this package reads a config file; a
// file layer exists only if the caller has set up the viper instance to
// read one, and the cmd binaries pass a fresh viper.New() that does not.
package config

import (
	"fmt"
	"strings"

	gnarkecc "github.com/consensys/gnark-crypto/ecc"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/trustless-setup/ceremony/internal/curve"
)

// Defaults mirror the CLI flag defaults of §6: a 2^10 accumulator on
// BLS12-377, a conservative batch size. The --workers default is 0
// ("unset").
const (
	DefaultCurve     = "bls12_377"
	DefaultPower     = 10
	DefaultBatchSize = 256
)

// Settings is the resolved, validated configuration for one driver
// operation.
type Settings struct {
	CurveName         string
	Power             uint
	BatchSize         int
	Workers           int
	BatchExpMode      string
	SubgroupCheckMode string
	ContributionMode  string
	ChunkIndex        int
	NoMmap            bool
}

// BindFlags registers the shared flags of §6 onto fs, matching the
// cobra/pflag idiom of binding flags once per root command and reading them
// back through viper so CEREMONY_* env vars can override the compiled-in
// defaults without touching flag-parsing code. --workers, --contribution-mode
// and --chunk-index are parsed into Settings, but no driver operation or cmd
// binary reads them.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("curve", DefaultCurve, "pairing curve: bls12_377, bn254, or bw6")
	fs.Uint("power", DefaultPower, "log2 of the Phase 1 domain size")
	fs.Int("batch-size", DefaultBatchSize, "element count per serialization/verification batch")
	fs.Int("workers", 0, "worker pool width (parsed, not used by any operation)")
	fs.String("batch-exp-mode", "auto", "batch scalar multiplication strategy: auto, direct, or batch-inversion")
	fs.String("subgroup-check-mode", "auto", "subgroup check strategy: auto, direct, or batched")
	fs.String("contribution-mode", "full", "full or chunked")
	fs.Int("chunk-index", 0, "chunk index when --contribution-mode=chunked")
	fs.Bool("no-mmap", false, "force os.File-backed I/O instead of memory-mapping inputs")
}

// Load resolves Settings from v, enabling CEREMONY_*-prefixed environment
// variables on it, with fs's bound flags layered on top as the
// highest-priority source. Load does not read a config file itself.
func Load(v *viper.Viper, fs *pflag.FlagSet) (*Settings, error) {
	v.SetEnvPrefix("CEREMONY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config: binding flags: %w", err)
	}

	return &Settings{
		CurveName:         v.GetString("curve"),
		Power:             v.GetUint("power"),
		BatchSize:         v.GetInt("batch-size"),
		Workers:           v.GetInt("workers"),
		BatchExpMode:      v.GetString("batch-exp-mode"),
		SubgroupCheckMode: v.GetString("subgroup-check-mode"),
		ContributionMode:  v.GetString("contribution-mode"),
		ChunkIndex:        v.GetInt("chunk-index"),
		NoMmap:            v.GetBool("no-mmap"),
	}, nil
}

// ResolveCurve maps a --curve flag value to a gnark-crypto curve ID.
func ResolveCurve(name string) (gnarkecc.ID, error) {
	switch strings.ToLower(name) {
	case "bls12_377", "bls12-377":
		return gnarkecc.BLS12_377, nil
	case "bn254":
		return gnarkecc.BN254, nil
	case "bw6", "bw6_761", "bw6-761":
		return gnarkecc.BW6_761, nil
	default:
		return 0, fmt.Errorf("config: unknown curve %q", name)
	}
}

// ResolveBatchExpMode maps a --batch-exp-mode flag value to a
// curve.BatchExpMode.
func ResolveBatchExpMode(name string) (curve.BatchExpMode, error) {
	switch strings.ToLower(name) {
	case "auto", "":
		return curve.BatchExpAuto, nil
	case "direct":
		return curve.BatchExpDirect, nil
	case "batch-inversion", "batchinversion":
		return curve.BatchExpBatchInversion, nil
	default:
		return 0, fmt.Errorf("config: unknown batch-exp-mode %q", name)
	}
}

// ResolveSubgroupCheckMode maps a --subgroup-check-mode flag value to a
// curve.SubgroupCheckMode.
func ResolveSubgroupCheckMode(name string) (curve.SubgroupCheckMode, error) {
	switch strings.ToLower(name) {
	case "auto", "":
		return curve.SubgroupCheckAuto, nil
	case "direct":
		return curve.SubgroupCheckDirect, nil
	case "batched":
		return curve.SubgroupCheckBatched, nil
	default:
		return 0, fmt.Errorf("config: unknown subgroup-check-mode %q", name)
	}
}
