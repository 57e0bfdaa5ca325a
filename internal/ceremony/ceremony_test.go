package ceremony

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	gnarkecc "github.com/consensys/gnark-crypto/ecc"
	"github.com/rs/zerolog"

	"github.com/trustless-setup/ceremony/internal/curve"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	eng, err := curve.ByID(gnarkecc.BLS12_377)
	if err != nil {
		t.Fatal(err)
	}
	return Options{
		Curve:             eng,
		Power:             2,
		BatchSize:         4,
		BatchExpMode:      curve.BatchExpAuto,
		SubgroupCheckMode: curve.SubgroupCheckAuto,
		UseMmap:           false,
		Log:               zerolog.Nop(),
	}
}

func TestSingleRoundTripNewContributeTransformVerify(t *testing.T) {
	opts := testOptions(t)
	dir := t.TempDir()
	ctx := context.Background()

	challenge := filepath.Join(dir, "challenge_0")
	response := filepath.Join(dir, "response_0")
	next := filepath.Join(dir, "challenge_1")

	if err := New(ctx, opts, challenge); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := Contribute(ctx, opts, challenge, response, []byte("test entropy")); err != nil {
		t.Fatalf("Contribute: %v", err)
	}
	if _, err := Transform(ctx, opts, challenge, response, next); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if err := Verify(ctx, opts, []Round{{ChallengePath: challenge, ResponsePath: response}}); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestContributeAutoCreatesMissingChallenge(t *testing.T) {
	opts := testOptions(t)
	dir := t.TempDir()
	ctx := context.Background()

	challenge := filepath.Join(dir, "does_not_exist_yet")
	response := filepath.Join(dir, "response")
	if _, err := Contribute(ctx, opts, challenge, response, []byte("entropy")); err != nil {
		t.Fatalf("Contribute with missing challenge: %v", err)
	}
	if !fileExists(challenge) {
		t.Fatal("expected Contribute to auto-create the blank challenge file")
	}
}

func TestMultiRoundChainVerifies(t *testing.T) {
	opts := testOptions(t)
	dir := t.TempDir()
	ctx := context.Background()

	challenge := filepath.Join(dir, "challenge_0")
	if err := New(ctx, opts, challenge); err != nil {
		t.Fatal(err)
	}

	var rounds []Round
	for i := 0; i < 3; i++ {
		response := filepath.Join(dir, fmt.Sprintf("response_%d", i))
		next := filepath.Join(dir, "challenge_next")
		if _, err := Contribute(ctx, opts, challenge, response, []byte("entropy")); err != nil {
			t.Fatalf("round %d Contribute: %v", i, err)
		}
		rounds = append(rounds, Round{ChallengePath: challenge, ResponsePath: response})
		if _, err := Transform(ctx, opts, challenge, response, next); err != nil {
			t.Fatalf("round %d Transform: %v", i, err)
		}
		challenge = filepath.Join(dir, fmt.Sprintf("challenge_%d", i+1))
		if err := copyFile(next, challenge); err != nil {
			t.Fatal(err)
		}
	}
	if err := Verify(ctx, opts, rounds); err != nil {
		t.Fatalf("Verify chain: %v", err)
	}
}

func copyFile(src, dst string) error {
	data, err := readFile(src, false)
	if err != nil {
		return err
	}
	return writeFile(dst, data)
}

func TestTamperedResponseFailsTransform(t *testing.T) {
	opts := testOptions(t)
	dir := t.TempDir()
	ctx := context.Background()

	challenge := filepath.Join(dir, "challenge_0")
	response := filepath.Join(dir, "response_0")
	next := filepath.Join(dir, "challenge_1")

	if err := New(ctx, opts, challenge); err != nil {
		t.Fatal(err)
	}
	if _, err := Contribute(ctx, opts, challenge, response, []byte("entropy")); err != nil {
		t.Fatal(err)
	}

	data, err := readFile(response, false)
	if err != nil {
		t.Fatal(err)
	}
	data[100] ^= 0xFF
	if err := writeFile(response, data); err != nil {
		t.Fatal(err)
	}

	if _, err := Transform(ctx, opts, challenge, response, next); err == nil {
		t.Fatal("tampered response must fail Transform's verification")
	}
}
