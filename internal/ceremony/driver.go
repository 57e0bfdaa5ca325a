// Package ceremony is the DRIVER (§4.7): the five single-round Phase 1
// operations (new, contribute, transform, verify, beacon), each mmapping
// its inputs, running the protocol, flushing, and logging/returning the
// resulting transcript digest. cmd/powersoftau's cobra commands are thin
// wrappers over this package; internal/phase2 has its own equivalent
// operations, driven by cmd/phase2.
package ceremony

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/trustless-setup/ceremony/internal/codec"
	"github.com/trustless-setup/ceremony/internal/curve"
	"github.com/trustless-setup/ceremony/internal/errs"
	"github.com/trustless-setup/ceremony/internal/hashrand"
	"github.com/trustless-setup/ceremony/internal/keygen"
	"github.com/trustless-setup/ceremony/internal/phase1"
)

// Options configures one driver operation. It is typically built once per
// CLI invocation from internal/config and shared across every call made
// during that process's lifetime.
type Options struct {
	Curve             curve.Engine
	Power             uint
	BatchSize         int
	BatchExpMode      curve.BatchExpMode
	SubgroupCheckMode curve.SubgroupCheckMode
	Correctness       codec.CorrectnessMode
	UseMmap           bool
	Log               zerolog.Logger
}

func accumulatorByteSize(eng curve.Engine, power uint, compressed bool) int {
	n := 1 << power
	return hashrand.DigestSize +
		(2*n-1)*eng.SizeG1(compressed) +
		n*eng.SizeG2(compressed) +
		n*eng.SizeG1(compressed) +
		n*eng.SizeG1(compressed) +
		eng.SizeG2(compressed)
}

func logDigest(log zerolog.Logger, op string, digest [hashrand.DigestSize]byte) {
	log.Info().Str("op", op).Str("digest", hex.EncodeToString(digest[:])).Msg("ceremony round complete")
}

// New writes a blank Phase 1 accumulator (§4.4.1) to challengePath.
func New(ctx context.Context, opts Options, challengePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	acc := phase1.New(opts.Curve, opts.Power)
	acc.PreviousDigest = hashrand.BlankHash()
	data, err := acc.Serialize(false, opts.BatchSize)
	if err != nil {
		return fmt.Errorf("ceremony: serializing blank accumulator: %w", err)
	}
	if err := writeFile(challengePath, data); err != nil {
		return err
	}
	digest := hashrand.CalculateHash(data)
	logDigest(opts.Log, "new", digest)
	return nil
}

// Contribute reads challengePath (creating a blank one via New if absent,
// logged at warn level per §7's "soft" condition), applies one participant's
// randomly-drawn (τ, α, β) derived from OS entropy mixed with userEntropy,
// and writes the compressed response plus the contributor's public key to
// responsePath.
func Contribute(ctx context.Context, opts Options, challengePath, responsePath string, userEntropy []byte) ([hashrand.DigestSize]byte, error) {
	return contributeWithRNG(ctx, opts, challengePath, responsePath, func(digest []byte) (io.Reader, error) {
		return hashrand.UserEntropyRNG(userEntropy)
	})
}

// Beacon is Contribute using a public, third-party-reproducible beacon hash
// iterated 2^exponent times via SHA-256 in place of OS/user entropy (§4.2,
// §6's `beacon` subcommand).
func Beacon(ctx context.Context, opts Options, challengePath, responsePath string, beaconHash []byte, exponent uint) ([hashrand.DigestSize]byte, error) {
	return contributeWithRNG(ctx, opts, challengePath, responsePath, func(digest []byte) (io.Reader, error) {
		r, final, err := hashrand.BeaconRNG(beaconHash, exponent, func(iteration uint64, state [32]byte) {
			opts.Log.Info().Uint64("iteration", iteration).Str("state", hex.EncodeToString(state[:])).Msg("beacon checkpoint")
		})
		if err != nil {
			return nil, err
		}
		opts.Log.Info().Str("final", hex.EncodeToString(final[:])).Msg("beacon iteration complete")
		return r, nil
	})
}

func contributeWithRNG(ctx context.Context, opts Options, challengePath, responsePath string, rngFor func(digest []byte) (io.Reader, error)) ([hashrand.DigestSize]byte, error) {
	var zero [hashrand.DigestSize]byte
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	eng := opts.Curve

	if !fileExists(challengePath) {
		opts.Log.Warn().Str("path", challengePath).Msg("no existing challenge file, creating a blank one")
		if err := New(ctx, opts, challengePath); err != nil {
			return zero, err
		}
	}

	challengeData, err := readFile(challengePath, opts.UseMmap)
	if err != nil {
		return zero, err
	}
	prev, err := phase1.Deserialize(eng, opts.Power, challengeData, false, opts.Correctness, opts.SubgroupCheckMode, opts.BatchSize)
	if err != nil {
		return zero, fmt.Errorf("ceremony: parsing challenge %s: %w", challengePath, err)
	}
	digest := hashrand.CalculateHash(challengeData)

	rng, err := rngFor(digest[:])
	if err != nil {
		return zero, err
	}
	pub, priv, err := keygen.KeyGeneration(eng, rng, digest[:])
	if err != nil {
		return zero, err
	}
	defer priv.Zeroize()

	if err := ctx.Err(); err != nil {
		return zero, err
	}
	next := phase1.Contribute(prev, priv, opts.BatchExpMode)
	next.PreviousDigest = digest

	accBytes, err := next.Serialize(true, opts.BatchSize)
	if err != nil {
		return zero, fmt.Errorf("ceremony: serializing response: %w", err)
	}
	response := append(accBytes, marshalPhase1PublicKey(eng, pub, true)...)
	if err := writeFile(responsePath, response); err != nil {
		return zero, err
	}

	final := hashrand.CalculateHash(response)
	logDigest(opts.Log, "contribute", final)
	return final, nil
}

// Transform verifies that responsePath is a well-formed contribution over
// challengePath, and if so writes the next round's (uncompressed,
// public-key-stripped) challenge file (§4.7's "verify+prepare-next-
// challenge").
func Transform(ctx context.Context, opts Options, challengePath, responsePath, newChallengePath string) ([hashrand.DigestSize]byte, error) {
	var zero [hashrand.DigestSize]byte
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	eng := opts.Curve

	challengeData, err := readFile(challengePath, opts.UseMmap)
	if err != nil {
		return zero, err
	}
	prev, err := phase1.Deserialize(eng, opts.Power, challengeData, false, opts.Correctness, opts.SubgroupCheckMode, opts.BatchSize)
	if err != nil {
		return zero, fmt.Errorf("ceremony: parsing challenge %s: %w", challengePath, err)
	}

	responseData, err := readFile(responsePath, opts.UseMmap)
	if err != nil {
		return zero, err
	}
	accSize := accumulatorByteSize(eng, opts.Power, true)
	if len(responseData) < accSize {
		return zero, &errs.InvalidLengthError{Expected: accSize, Got: len(responseData)}
	}
	next, err := phase1.Deserialize(eng, opts.Power, responseData[:accSize], true, opts.Correctness, opts.SubgroupCheckMode, opts.BatchSize)
	if err != nil {
		return zero, fmt.Errorf("ceremony: parsing response %s: %w", responsePath, err)
	}
	pub, err := unmarshalPhase1PublicKey(eng, responseData[accSize:], true)
	if err != nil {
		return zero, fmt.Errorf("ceremony: parsing response public key: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if err := phase1.AggregateVerification(prev, next, pub); err != nil {
		opts.Log.Error().Err(err).Msg("contribution failed verification")
		return zero, err
	}

	newChallenge, err := next.Serialize(false, opts.BatchSize)
	if err != nil {
		return zero, fmt.Errorf("ceremony: serializing next challenge: %w", err)
	}
	if err := writeFile(newChallengePath, newChallenge); err != nil {
		return zero, err
	}
	digest := hashrand.CalculateHash(newChallenge)
	logDigest(opts.Log, "transform", digest)
	return digest, nil
}

// Round is one (challenge, response) file pair in a transcript, as consumed
// by Verify.
type Round struct {
	ChallengePath string
	ResponsePath  string
}

// Verify folds Transform's verification step across an entire transcript of
// rounds without writing any new-challenge files, failing fast on the first
// invalid round (§4.4.5, §7: fatal, no partial acceptance).
func Verify(ctx context.Context, opts Options, rounds []Round) error {
	if len(rounds) == 0 {
		return errs.ErrNoContributions
	}
	eng := opts.Curve
	for i, round := range rounds {
		if err := ctx.Err(); err != nil {
			return err
		}
		challengeData, err := readFile(round.ChallengePath, opts.UseMmap)
		if err != nil {
			return err
		}
		prev, err := phase1.Deserialize(eng, opts.Power, challengeData, false, opts.Correctness, opts.SubgroupCheckMode, opts.BatchSize)
		if err != nil {
			return fmt.Errorf("ceremony: parsing challenge %s: %w", round.ChallengePath, err)
		}
		responseData, err := readFile(round.ResponsePath, opts.UseMmap)
		if err != nil {
			return err
		}
		accSize := accumulatorByteSize(eng, opts.Power, true)
		if len(responseData) < accSize {
			return &errs.InvalidLengthError{Expected: accSize, Got: len(responseData)}
		}
		next, err := phase1.Deserialize(eng, opts.Power, responseData[:accSize], true, opts.Correctness, opts.SubgroupCheckMode, opts.BatchSize)
		if err != nil {
			return fmt.Errorf("ceremony: parsing response %s: %w", round.ResponsePath, err)
		}
		pub, err := unmarshalPhase1PublicKey(eng, responseData[accSize:], true)
		if err != nil {
			return err
		}
		if err := phase1.AggregateVerification(prev, next, pub); err != nil {
			opts.Log.Error().Int("round", i).Err(err).Msg("transcript verification failed")
			return errs.ErrInvalidTranscript
		}
		opts.Log.Info().Int("round", i).Msg("round verified")
	}
	opts.Log.Info().Int("rounds", len(rounds)).Msg("full transcript verified")
	return nil
}
