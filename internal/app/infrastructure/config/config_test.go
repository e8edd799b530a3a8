package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmibot/internal/app/infrastructure/config"
)

func validConfig() *config.Config {
	cfg := (&config.Manager{}).GetDefault()
	cfg.App.Username = "botty"
	cfg.App.OAuth = "oauth:secret"
	cfg.App.Channels = []string{"alpha"}
	return cfg
}

func writeConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()

	data, err := json.MarshalIndent(cfg, "", "  ")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestNewWritesDefaultTemplate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	m, err := config.New(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err, "template should be written for the operator to fill in")

	cfg := m.Get()
	assert.Equal(t, 20, cfg.Limits.Normal.Capacity)
	assert.Equal(t, 100, cfg.Limits.Elevated.Capacity)
	assert.Equal(t, "wss://irc-ws.chat.twitch.tv:443", cfg.Connection.ServerURL)
}

func TestNewRejectsInvalidFile(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Limits.Normal.Capacity = 0

	_, err := config.New(writeConfig(t, cfg))
	assert.Error(t, err)
}

func TestNewRejectsBadServerScheme(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Connection.ServerURL = "https://irc-ws.chat.twitch.tv"

	_, err := config.New(writeConfig(t, cfg))
	assert.Error(t, err)
}

func TestUpdatePersistsAcrossReload(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, validConfig())

	m, err := config.New(path)
	require.NoError(t, err)

	require.NoError(t, m.Update(func(cfg *config.Config) {
		cfg.App.Channels = append(cfg.App.Channels, "beta")
	}))

	reloaded, err := config.New(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, reloaded.Get().App.Channels)
}

func TestUpdateRejectsInvalidModification(t *testing.T) {
	t.Parallel()

	m, err := config.New(writeConfig(t, validConfig()))
	require.NoError(t, err)

	err = m.Update(func(cfg *config.Config) {
		cfg.App.Username = ""
	})
	assert.Error(t, err)
}
