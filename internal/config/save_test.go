package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.Scorer.Script = "scripts/job_recommender.py"
	cfg.Scorer.TimeoutSeconds = 120
	return cfg
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(validConfig()))

	bad := validConfig()
	bad.App.Port = 0
	bad.Scorer.Script = ""
	err := Validate(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.port")
	assert.Contains(t, err.Error(), "scorer.script")
}

func TestValidateEmailRequiresConnection(t *testing.T) {
	cfg := validConfig()
	cfg.Email.Enabled = true
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email.imap_host")
	assert.Contains(t, err.Error(), "email.username")
}

func TestSaveAtomicRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	cfg := validConfig()
	require.NoError(t, SaveAtomic(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.App.Port, got.App.Port)
	assert.Equal(t, cfg.Scorer.Script, got.Scorer.Script)
	assert.Equal(t, cfg.Scorer.TimeoutSeconds, got.Scorer.TimeoutSeconds)

	// a second save keeps the previous version as .bak
	cfg.App.Port = 38472
	require.NoError(t, SaveAtomic(path, cfg))

	_, err = os.Stat(path + ".bak")
	require.NoError(t, err)

	prev, err := Load(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, 38471, prev.App.Port)
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	bad := validConfig()
	bad.Scorer.TimeoutSeconds = 0

	require.Error(t, SaveAtomic(path, bad))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "default.yml")
	require.NoError(t, os.WriteFile(def, []byte("app:\n  port: 38471\n"), 0o644))

	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	userPath, err := EnsureUserConfig(dataDir, def)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), userPath)

	// the user copy is never overwritten once it exists
	require.NoError(t, os.WriteFile(userPath, []byte("app:\n  port: 9999\n"), 0o644))
	again, err := EnsureUserConfig(dataDir, def)
	require.NoError(t, err)
	assert.Equal(t, userPath, again)

	cfg, err := Load(userPath)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.App.Port)
}
