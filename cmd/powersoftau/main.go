// Command powersoftau drives the Phase 1 Powers-of-τ ceremony: new,
// contribute, beacon, transform, and verify, as cobra subcommands bound to
// the shared --curve/--power/--batch-size/... flags of internal/config.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trustless-setup/ceremony/internal/ceremony"
	"github.com/trustless-setup/ceremony/internal/codec"
	"github.com/trustless-setup/ceremony/internal/config"
	"github.com/trustless-setup/ceremony/internal/curve"
)

const (
	exitOK             = 0
	exitVerifyFailed   = 1
	exitUsage          = 64 // cobra's own usage-error convention
)

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func buildOptions(cmd *cobra.Command, log zerolog.Logger) (ceremony.Options, error) {
	settings, err := config.Load(viper.New(), cmd.Flags())
	if err != nil {
		return ceremony.Options{}, err
	}
	curveID, err := config.ResolveCurve(settings.CurveName)
	if err != nil {
		return ceremony.Options{}, err
	}
	eng, err := curve.ByID(curveID)
	if err != nil {
		return ceremony.Options{}, err
	}
	batchExpMode, err := config.ResolveBatchExpMode(settings.BatchExpMode)
	if err != nil {
		return ceremony.Options{}, err
	}
	subgroupMode, err := config.ResolveSubgroupCheckMode(settings.SubgroupCheckMode)
	if err != nil {
		return ceremony.Options{}, err
	}
	return ceremony.Options{
		Curve:             eng,
		Power:             settings.Power,
		BatchSize:         settings.BatchSize,
		BatchExpMode:      batchExpMode,
		SubgroupCheckMode: subgroupMode,
		Correctness:       codec.CorrectnessFull,
		UseMmap:           !settings.NoMmap,
		Log:               log,
	}, nil
}

func rootContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newRootCmd() *cobra.Command {
	log := newLogger()
	root := &cobra.Command{
		Use:   "powersoftau",
		Short: "Phase 1 Powers-of-Tau trusted setup ceremony",
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newCmd(log),
		contributeCmd(log),
		beaconCmd(log),
		transformCmd(log),
		verifyCmd(log),
	)
	return root
}

func newCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "new <challenge>",
		Short: "write a blank Phase 1 accumulator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd, log)
			if err != nil {
				return err
			}
			ctx, cancel := rootContext()
			defer cancel()
			return ceremony.New(ctx, opts, args[0])
		},
	}
}

func contributeCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "contribute <challenge> <response>",
		Short: "apply one contribution, drawing randomness from the OS plus stdin entropy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd, log)
			if err != nil {
				return err
			}
			entropy, err := readEntropy(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := rootContext()
			defer cancel()
			_, err = ceremony.Contribute(ctx, opts, args[0], args[1], entropy)
			return err
		},
	}
}

func beaconCmd(log zerolog.Logger) *cobra.Command {
	var exponent uint
	var beaconHex string
	cmd := &cobra.Command{
		Use:   "beacon <challenge> <response>",
		Short: "apply one contribution using a public beacon hash iterated via SHA-256",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd, log)
			if err != nil {
				return err
			}
			beaconHash, err := decodeHex(beaconHex)
			if err != nil {
				return err
			}
			ctx, cancel := rootContext()
			defer cancel()
			_, err = ceremony.Beacon(ctx, opts, args[0], args[1], beaconHash, exponent)
			return err
		},
	}
	cmd.Flags().UintVar(&exponent, "exponent", 30, "number of SHA-256 iterations, as a power of two")
	cmd.Flags().StringVar(&beaconHex, "beacon", "", "hex-encoded public beacon value")
	return cmd
}

func transformCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "transform <challenge> <response> <new_challenge>",
		Short: "verify a response against its challenge and prepare the next challenge",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd, log)
			if err != nil {
				return err
			}
			ctx, cancel := rootContext()
			defer cancel()
			_, err = ceremony.Transform(ctx, opts, args[0], args[1], args[2])
			return err
		},
	}
}

func verifyCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <challenge_0> <response_0> [<challenge_1> <response_1> ...]",
		Short: "verify a full chain of Phase 1 contributions",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args)%2 != 0 {
				return cmd.Usage()
			}
			opts, err := buildOptions(cmd, log)
			if err != nil {
				return err
			}
			var rounds []ceremony.Round
			for i := 0; i < len(args); i += 2 {
				rounds = append(rounds, ceremony.Round{ChallengePath: args[i], ResponsePath: args[i+1]})
			}
			ctx, cancel := rootContext()
			defer cancel()
			return ceremony.Verify(ctx, opts, rounds)
		},
	}
}

func main() {
	log := newLogger()
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("powersoftau failed")
		os.Exit(exitVerifyFailed)
	}
	os.Exit(exitOK)
}
