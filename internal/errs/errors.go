// Package errs collects the typed error values the ceremony's cryptographic
// and structural checks fail with, so that internal/ceremony and the cmd/
// binaries can errors.As into a specific exit code instead of pattern
// matching error strings.
package errs

import (
	"errors"
	"fmt"
)

// ErrPointAtInfinity is returned by the codec when a point that must be
// non-zero (CorrectnessOnlyNonZero or CorrectnessFull) decodes to infinity.
var ErrPointAtInfinity = errors.New("errs: point at infinity")

// ErrNoContributions is returned by phase2.Verify when a transcript carries
// no contributions at all.
var ErrNoContributions = errors.New("errs: transcript has no contributions")

// ErrInvalidTranscript is returned by phase2.Verify when folding
// VerifyContribution across the transcript fails for any step.
var ErrInvalidTranscript = errors.New("errs: invalid transcript")

// InvalidLengthError reports a byte slice of unexpected size during
// deserialization.
type InvalidLengthError struct {
	Expected int
	Got      int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("errs: invalid length: expected %d bytes, got %d", e.Expected, e.Got)
}

// PositionError reports an index falling outside the bounds of a region.
type PositionError struct {
	Kind string
	Max  int
	Got  int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("errs: position error in %s: max %d, got %d", e.Kind, e.Max, e.Got)
}

// InvalidChunkError reports a malformed or out-of-range chunk descriptor in
// chunked contribution mode.
type InvalidChunkError struct {
	ChunkIndex int
	ChunkCount int
}

func (e *InvalidChunkError) Error() string {
	return fmt.Sprintf("errs: invalid chunk %d of %d", e.ChunkIndex, e.ChunkCount)
}

// VerificationErrorKind distinguishes the two ways a pairing-based check can
// fail.
type VerificationErrorKind int

const (
	InvalidRatio VerificationErrorKind = iota
	InvalidGenerator
)

func (k VerificationErrorKind) String() string {
	switch k {
	case InvalidRatio:
		return "invalid-ratio"
	case InvalidGenerator:
		return "invalid-generator"
	default:
		return "unknown"
	}
}

// VerificationError reports a failed pairing-ratio or generator check in the
// Phase 1 accumulator.
type VerificationError struct {
	Kind    VerificationErrorKind
	Context string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("errs: verification failed (%s): %s", e.Kind, e.Context)
}

// Phase2Error reports a broken Phase 2 invariant, naming the field or
// element that failed to satisfy it.
type Phase2Error struct {
	Invariant string
}

func (e *Phase2Error) Error() string {
	return fmt.Sprintf("errs: broken phase 2 invariant: %s", e.Invariant)
}
