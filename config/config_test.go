package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, "paqs", cfg.Storage.Bucket)
	assert.Equal(t, "paqs-selected-user", cfg.Storage.UserKey)
	assert.Equal(t, "paqs-theme", cfg.Storage.ThemeKey)
	assert.Equal(t, "theme", cfg.Theme.Attribute)
	assert.Equal(t, "theme-dark", cfg.Theme.DarkClass)
	assert.Equal(t, PreferenceNone, cfg.Preference.Source)
	assert.False(t, cfg.Activity.Enabled)
	assert.Equal(t, "paqs", cfg.Activity.Channel)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "paqs.toml", `
[storage]
driver = "bolt"
path = "/tmp/paqs.db"
timeout = "2s"

[preference]
source = "manual"
dark = true

[policy]
engine = "cel"

[policy.rules]
manage-users = "isAdmin"

[log]
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StorageBolt, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/paqs.db", cfg.Storage.Path)
	assert.Equal(t, 2*time.Second, cfg.Storage.Timeout)
	assert.Equal(t, "paqs", cfg.Storage.Bucket, "unset fields keep defaults")
	assert.True(t, cfg.Preference.Dark)
	assert.Equal(t, "cel", cfg.Policy.Engine)
	assert.Equal(t, map[string]string{"manage-users": "isAdmin"}, cfg.Policy.Rules)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "paqs.yaml", `
theme:
  attribute: data-theme
  dark_class: is-dark
activity:
  enabled: true
  channel: audit
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data-theme", cfg.Theme.Attribute)
	assert.Equal(t, "is-dark", cfg.Theme.DarkClass)
	assert.True(t, cfg.Activity.Enabled)
	assert.Equal(t, "audit", cfg.Activity.Channel)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "paqs.yml", `
storage:
  driver: memory
log:
  level: warn
`)
	t.Setenv("PAQS_STORAGE_DRIVER", "none")
	t.Setenv("PAQS_LOG_LEVEL", "debug")
	t.Setenv("PAQS_ACTIVITY_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StorageNone, cfg.Storage.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Activity.Enabled)
}

func TestLoadRejectsUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "paqs.json", `{}`)
	_, err := Load(path)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadReportsDecodeErrors(t *testing.T) {
	path := writeFile(t, "paqs.toml", `storage = [`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Storage.Driver = StorageBolt
	cfg.Preference.Source = "sensor"
	cfg.Policy.Engine = "lua"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "storage.path")
	assert.Contains(t, err.Error(), "preference.source")
	assert.Contains(t, err.Error(), "policy.engine")
	assert.Contains(t, err.Error(), "log.format")
}

func TestValidateRejectsSharedKeys(t *testing.T) {
	cfg := Defaults()
	cfg.Storage.ThemeKey = cfg.Storage.UserKey
	require.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = NewLogger(&buf, LogConfig{Level: "loud"})
	require.Error(t, err)
}

func TestValidateAcceptsFormatInAnyCase(t *testing.T) {
	cfg := Defaults()
	cfg.Log.Format = "JSON"
	cfg.Log.Level = "WARN"
	require.NoError(t, cfg.Validate())

	_, err := NewLogger(&bytes.Buffer{}, cfg.Log)
	require.NoError(t, err)
}
