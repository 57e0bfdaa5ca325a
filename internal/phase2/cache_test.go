package phase2

import (
	"testing"
)

func TestSaveLoadCacheRoundTrip(t *testing.T) {
	params := setupParams(t)
	dir := t.TempDir()
	path := dir + "/circuit.cache"

	if err := SaveCache(path, params.Matrices, params, 4); err != nil {
		t.Fatal(err)
	}
	matrices, back, err := LoadCache(path)
	if err != nil {
		t.Fatal(err)
	}
	if matrices.NumConstraints() != params.Matrices.NumConstraints() {
		t.Fatal("matrices did not survive the cache round trip")
	}
	if back.CSHash != params.CSHash {
		t.Fatal("cs_hash did not survive the cache round trip")
	}
	if len(back.IC) != len(params.IC) {
		t.Fatal("ic vector did not survive the cache round trip")
	}
}
