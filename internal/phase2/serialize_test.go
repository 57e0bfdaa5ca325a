package phase2

import (
	"bytes"
	"testing"
)

func TestParametersSerializeDeserializeRoundTrip(t *testing.T) {
	params := setupParams(t)
	data, err := params.Serialize(true, 4)
	if err != nil {
		t.Fatal(err)
	}
	back, err := DeserializeParameters(params.Engine, params.Matrices, params.M, data, true)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(params.Engine.MarshalG1(back.AlphaG1, true), params.Engine.MarshalG1(params.AlphaG1, true)) {
		t.Fatal("alpha_g1 mismatch after round trip")
	}
	if len(back.IC) != len(params.IC) || len(back.L) != len(params.L) || len(back.H) != len(params.H) {
		t.Fatal("vector lengths mismatch after round trip")
	}
	if back.CSHash != params.CSHash {
		t.Fatal("cs_hash mismatch after round trip")
	}
}

func TestR1CSMatricesJSONRoundTrip(t *testing.T) {
	matrices := xSquaredMatrices()
	dir := t.TempDir()
	path := dir + "/circuit.r1cs"
	if err := SaveR1CSMatrices(matrices, path); err != nil {
		t.Fatal(err)
	}
	back, err := LoadR1CSMatrices(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.NumPublic != matrices.NumPublic || back.NumPrivate != matrices.NumPrivate {
		t.Fatal("public/private counts mismatch after JSON round trip")
	}
	if len(back.Rows) != len(matrices.Rows) {
		t.Fatal("row count mismatch after JSON round trip")
	}
}
