// Command phase2 drives the Groth16 circuit-specific MPC (MPC2): new,
// contribute, beacon, verify_contribution, export_keys, and
// generate_verifier, as cobra subcommands sharing internal/config's
// --curve/--batch-size/... flags with the Phase 1 tool.
package main

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trustless-setup/ceremony/internal/codec"
	"github.com/trustless-setup/ceremony/internal/config"
	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/groth16setup"
	"github.com/trustless-setup/ceremony/internal/hashrand"
	"github.com/trustless-setup/ceremony/internal/phase1"
	"github.com/trustless-setup/ceremony/internal/phase2"
	"github.com/trustless-setup/ceremony/verifier"
)

// circuitCacheKey identifies a cache entry by the circuit's own matrices,
// independent of file path, so two invocations against equal circuits (byte
// for byte identical R1CS) share a cache entry.
func circuitCacheKey(matrices *phase2.R1CSMatrices) string {
	digest := hashrand.CalculateHash(matrices.CanonicalBytes())
	return hex.EncodeToString(digest[:])
}

const (
	exitOK           = 0
	exitVerifyFailed = 1
)

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

type resolved struct {
	eng               curve.Engine
	power             uint
	batchSize         int
	batchExpMode      curve.BatchExpMode
	subgroupCheckMode curve.SubgroupCheckMode
}

func resolveSettings(cmd *cobra.Command) (resolved, error) {
	settings, err := config.Load(viper.New(), cmd.Flags())
	if err != nil {
		return resolved{}, err
	}
	curveID, err := config.ResolveCurve(settings.CurveName)
	if err != nil {
		return resolved{}, err
	}
	eng, err := curve.ByID(curveID)
	if err != nil {
		return resolved{}, err
	}
	batchExpMode, err := config.ResolveBatchExpMode(settings.BatchExpMode)
	if err != nil {
		return resolved{}, err
	}
	subgroupMode, err := config.ResolveSubgroupCheckMode(settings.SubgroupCheckMode)
	if err != nil {
		return resolved{}, err
	}
	return resolved{eng: eng, power: settings.Power, batchSize: settings.BatchSize, batchExpMode: batchExpMode, subgroupCheckMode: subgroupMode}, nil
}

// loadPhase1Accumulator reads a Phase 1 challenge file (uncompressed, per
// §6) at the given power.
func loadPhase1Accumulator(path string, r resolved, power uint) (*phase1.Accumulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return phase1.Deserialize(r.eng, power, data, false, codec.CorrectnessFull, r.subgroupCheckMode, r.batchSize)
}

// loadOrComputeRadix loads radixDir/radix_<m>.bin if present, else computes
// it from acc and caches it for subsequent phase2 invocations against the
// same circuit size.
func loadOrComputeRadix(acc *phase1.Accumulator, m int, radixDir string, r resolved) (*groth16setup.Radix, error) {
	path := filepath.Join(radixDir, groth16setup.FileName(m))
	if data, err := os.ReadFile(path); err == nil {
		return groth16setup.DeserializeRadix(r.eng, m, data)
	}
	radix, err := groth16setup.Compute(acc, m)
	if err != nil {
		return nil, err
	}
	data, err := radix.Serialize(r.batchSize)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(radixDir, 0o755); err != nil {
		return nil, err
	}
	return radix, os.WriteFile(path, data, 0o644)
}

func writeParameters(path string, p *phase2.Parameters, r resolved) error {
	data, err := p.Serialize(true, r.batchSize)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readParameters(path string, matrices *phase2.R1CSMatrices, m int, r resolved) (*phase2.Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return phase2.DeserializeParameters(r.eng, matrices, m, data, true)
}

func newRootCmd(log zerolog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "phase2",
		Short: "Groth16 circuit-specific MPC (Phase 2) ceremony",
	}
	config.BindFlags(root.PersistentFlags())
	root.AddCommand(
		newCircuitCmd(log),
		contributeCmd(log),
		beaconCmd(log),
		verifyContributionCmd(log),
		exportKeysCmd(log),
		generateVerifierCmd(log),
	)
	return root
}

func newCircuitCmd(log zerolog.Logger) *cobra.Command {
	var cacheDir string
	cmd := &cobra.Command{
		Use:   "new <circuit.r1cs> <phase1_challenge> <radix_dir> <params_out>",
		Short: "reduce a verified Phase 1 accumulator into the initial (delta=1) Phase 2 parameters for a circuit",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolveSettings(cmd)
			if err != nil {
				return err
			}
			matrices, err := phase2.LoadR1CSMatrices(args[0])
			if err != nil {
				return err
			}
			m := groth16setup.NextPowerOfTwo(matrices.NumConstraints())

			cachePath := filepath.Join(cacheDir, circuitCacheKey(matrices)+".cache")
			if _, params, err := phase2.LoadCache(cachePath); err == nil {
				log.Info().Str("cache", cachePath).Msg("reusing cached phase2 parameters")
				return writeParameters(args[3], params, r)
			}

			acc, err := loadPhase1Accumulator(args[1], r, r.power)
			if err != nil {
				return err
			}
			radix, err := loadOrComputeRadix(acc, m, args[2], r)
			if err != nil {
				return err
			}
			params, err := phase2.New(acc, radix, matrices)
			if err != nil {
				return err
			}
			log.Info().Int("m", m).Int("constraints", matrices.NumConstraints()).Msg("phase2 parameters constructed")
			if err := os.MkdirAll(cacheDir, 0o755); err != nil {
				return err
			}
			if err := phase2.SaveCache(cachePath, matrices, params, r.batchSize); err != nil {
				log.Warn().Err(err).Msg("failed to write phase2 parameter cache")
			}
			return writeParameters(args[3], params, r)
		},
	}
	cmd.Flags().StringVar(&cacheDir, "cache-dir", ".phase2-cache", "directory for the gob fast-path cache between repeated invocations against the same circuit")
	return cmd
}

func contributeCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "contribute <circuit.r1cs> <in_params> <out_params>",
		Short: "apply one delta-only contribution, drawing randomness from the OS plus stdin entropy",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolveSettings(cmd)
			if err != nil {
				return err
			}
			matrices, err := phase2.LoadR1CSMatrices(args[0])
			if err != nil {
				return err
			}
			m := groth16setup.NextPowerOfTwo(matrices.NumConstraints())
			prev, err := readParameters(args[1], matrices, m, r)
			if err != nil {
				return err
			}
			entropy, err := readEntropy(cmd)
			if err != nil {
				return err
			}
			rng, err := hashrand.UserEntropyRNG(entropy)
			if err != nil {
				return err
			}
			next, digest, err := phase2.Contribute(prev, rng, r.batchExpMode)
			if err != nil {
				return err
			}
			log.Info().Hex("digest", digest[:]).Msg("phase2 contribution complete")
			return writeParameters(args[2], next, r)
		},
	}
}

func beaconCmd(log zerolog.Logger) *cobra.Command {
	var exponent uint
	var beaconHex string
	cmd := &cobra.Command{
		Use:   "beacon <circuit.r1cs> <in_params> <out_params>",
		Short: "apply the final delta-only contribution, drawing randomness from a public beacon value",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolveSettings(cmd)
			if err != nil {
				return err
			}
			matrices, err := phase2.LoadR1CSMatrices(args[0])
			if err != nil {
				return err
			}
			m := groth16setup.NextPowerOfTwo(matrices.NumConstraints())
			prev, err := readParameters(args[1], matrices, m, r)
			if err != nil {
				return err
			}
			beaconHash, err := decodeHex(beaconHex)
			if err != nil {
				return err
			}
			rng, _, err := hashrand.BeaconRNG(beaconHash, exponent, func(iteration uint64, state [32]byte) {
				log.Debug().Uint64("iteration", iteration).Msg("beacon iteration checkpoint")
			})
			if err != nil {
				return err
			}
			next, digest, err := phase2.Contribute(prev, rng, r.batchExpMode)
			if err != nil {
				return err
			}
			log.Info().Hex("digest", digest[:]).Msg("phase2 beacon contribution complete")
			return writeParameters(args[2], next, r)
		},
	}
	cmd.Flags().UintVar(&exponent, "exponent", 30, "number of SHA-256 iterations, as a power of two")
	cmd.Flags().StringVar(&beaconHex, "beacon", "", "hex-encoded public beacon value")
	return cmd
}

func verifyContributionCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "verify_contribution <circuit.r1cs> <old_params> <new_params>",
		Short: "verify a single Phase 2 contribution step",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolveSettings(cmd)
			if err != nil {
				return err
			}
			matrices, err := phase2.LoadR1CSMatrices(args[0])
			if err != nil {
				return err
			}
			m := groth16setup.NextPowerOfTwo(matrices.NumConstraints())
			old, err := readParameters(args[1], matrices, m, r)
			if err != nil {
				return err
			}
			next, err := readParameters(args[2], matrices, m, r)
			if err != nil {
				return err
			}
			if err := phase2.VerifyContribution(old, next); err != nil {
				return err
			}
			log.Info().Msg("phase2 contribution verified")
			return nil
		},
	}
}

func exportKeysCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "export_keys <circuit.r1cs> <params> <pk.json> <vk.json>",
		Short: "export the fully-verified parameters as a Groth16 proving/verifying key pair",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolveSettings(cmd)
			if err != nil {
				return err
			}
			matrices, err := phase2.LoadR1CSMatrices(args[0])
			if err != nil {
				return err
			}
			m := groth16setup.NextPowerOfTwo(matrices.NumConstraints())
			params, err := readParameters(args[1], matrices, m, r)
			if err != nil {
				return err
			}
			pk, vk, err := phase2.ToGroth16Keys(params)
			if err != nil {
				return err
			}
			pkFile, err := os.Create(args[2])
			if err != nil {
				return err
			}
			defer pkFile.Close()
			vkFile, err := os.Create(args[3])
			if err != nil {
				return err
			}
			defer vkFile.Close()
			if err := phase2.ExportKeys(pk, vk, pkFile, vkFile); err != nil {
				return err
			}
			log.Info().Str("pk", args[2]).Str("vk", args[3]).Msg("exported Groth16 keys")
			return nil
		},
	}
}

func generateVerifierCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "generate_verifier <circuit.r1cs> <params> <Verifier.sol>",
		Short: "generate a Solidity Groth16 verifier contract from fully-verified parameters",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolveSettings(cmd)
			if err != nil {
				return err
			}
			matrices, err := phase2.LoadR1CSMatrices(args[0])
			if err != nil {
				return err
			}
			m := groth16setup.NextPowerOfTwo(matrices.NumConstraints())
			params, err := readParameters(args[1], matrices, m, r)
			if err != nil {
				return err
			}
			_, vk, err := phase2.ToGroth16Keys(params)
			if err != nil {
				return err
			}
			out, err := os.Create(args[2])
			if err != nil {
				return err
			}
			defer out.Close()
			if err := verifier.WriteSolidity(r.eng, vk, out); err != nil {
				return err
			}
			log.Info().Str("out", args[2]).Msg("generated Solidity verifier")
			return nil
		},
	}
}

func main() {
	log := newLogger()
	root := newRootCmd(log)
	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("phase2 failed")
		os.Exit(exitVerifyFailed)
	}
	os.Exit(exitOK)
}
