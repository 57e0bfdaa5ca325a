package config

import (
	"testing"

	gnarkecc "github.com/consensys/gnark-crypto/ecc"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse(nil))

	settings, err := Load(viper.New(), fs)
	require.NoError(t, err)
	require.Equal(t, DefaultCurve, settings.CurveName)
	require.EqualValues(t, DefaultPower, settings.Power)
	require.Equal(t, DefaultBatchSize, settings.BatchSize)
	require.False(t, settings.NoMmap)
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	t.Setenv("CEREMONY_CURVE", "bn254")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse(nil))

	settings, err := Load(viper.New(), fs)
	require.NoError(t, err)
	require.Equal(t, "bn254", settings.CurveName)
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	t.Setenv("CEREMONY_CURVE", "bn254")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--curve", "bw6"}))

	settings, err := Load(viper.New(), fs)
	require.NoError(t, err)
	require.Equal(t, "bw6", settings.CurveName)
}

func TestResolveCurve(t *testing.T) {
	id, err := ResolveCurve("bls12_377")
	require.NoError(t, err)
	require.Equal(t, gnarkecc.BLS12_377, id)

	_, err = ResolveCurve("not-a-curve")
	require.Error(t, err)
}

func TestResolveBatchExpMode(t *testing.T) {
	_, err := ResolveBatchExpMode("bogus")
	require.Error(t, err)
}
