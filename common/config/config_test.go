package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSeriesKeepsOrderAndSkipsGaps(t *testing.T) {
	t.Setenv("NEYNAR_API_KEY", "primary")
	t.Setenv("NEYNAR_API_KEY2", "second")
	t.Setenv("NEYNAR_API_KEY3", "")
	t.Setenv("NEYNAR_API_KEY4", "fourth")
	t.Setenv("NEYNAR_API_KEY5", "primary")

	keys := NewEnvLoader("").GetSeries("NEYNAR_API_KEY", "NEYNAR_API_KEY%d", 5)

	assert.Equal(t, []string{"primary", "second", "fourth"}, keys)
}

func TestPinataCredentialsSkipsHalfPairs(t *testing.T) {
	t.Setenv("PINATA_API_KEY", "k1")
	t.Setenv("PINATA_SECRET_API_KEY", "s1")
	t.Setenv("PINATA_API_KEY_2", "k2")
	t.Setenv("PINATA_SECRET_API_KEY_3", "s3")
	t.Setenv("PINATA_API_KEY_4", "k4")
	t.Setenv("PINATA_SECRET_API_KEY_4", "s4")

	creds := pinataCredentials(NewEnvLoader(""))

	require.Len(t, creds, 2)
	assert.Equal(t, PinataCredential{APIKey: "k1", SecretKey: "s1"}, creds[0])
	assert.Equal(t, PinataCredential{APIKey: "k4", SecretKey: "s4"}, creds[1])
}

func TestLoadAppliesDefaultsAndSecrets(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SIGNER_PRIVATE_KEY", "0xabc")
	t.Setenv("APP_URL", "https://counter.example/")
	t.Setenv("BASECOUNTER_SERVER_HTTPPORT", "9999")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0xabc", cfg.Signer.PrivateKey)
	assert.Equal(t, "https://counter.example", cfg.App.URL)
	assert.Equal(t, 9999, cfg.Server.HTTPPort)
	assert.Equal(t, "gateway.pinata.cloud", cfg.Pinata.Gateway)
	assert.Equal(t, "https://api.neynar.com/v2/farcaster", cfg.Neynar.BaseURL)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.True(t, cfg.IsDevelopment())
}

func TestEnvLoaderPrefix(t *testing.T) {
	t.Setenv("BASECOUNTER_TIMEOUT", "3s")
	t.Setenv("BASECOUNTER_ENABLED", "yes")

	env := NewEnvLoader(EnvPrefix)

	assert.Equal(t, 3*time.Second, env.GetDuration("TIMEOUT", time.Second))
	assert.True(t, env.GetBool("ENABLED", false))
	assert.Equal(t, 7, env.GetInt("MISSING", 7))

	_, err := env.GetStringRequired("MISSING")
	assert.Error(t, err)
}

// chdir switches the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
