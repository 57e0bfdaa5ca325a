package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// readEntropy reads one line of caller-supplied entropy from stdin, mixed
// into the OS-randomness-seeded RNG by hashrand.UserEntropyRNG. An empty
// line is valid: OS randomness alone already makes the draw unpredictable.
func readEntropy(cmd *cobra.Command) ([]byte, error) {
	fmt.Fprintln(cmd.ErrOrStderr(), "Enter some entropy (press Enter to skip):")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return nil, scanner.Err()
	}
	return scanner.Bytes(), nil
}

func decodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("powersoftau: --beacon is required")
	}
	return hex.DecodeString(s)
}
