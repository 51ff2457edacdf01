package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultThreads, cfg.Engine.Threads)
	assert.Equal(t, DefaultFormat, cfg.Report.Format)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	doc := `
logger:
  level: debug
  json_format: true
engine:
  catalog_path: /etc/cryptoscan/catalog.yaml
  threads: 8
report:
  format: sarif
  fail_on: high
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "/etc/cryptoscan/catalog.yaml", cfg.Engine.CatalogPath)
	assert.Equal(t, 8, cfg.Engine.Threads)
	assert.Equal(t, "sarif", cfg.Report.Format)
	assert.True(t, GetBoolValue(cfg, "Logger.JSONFormat", false))
	assert.True(t, GetBoolValue(cfg, "Logger.DisableTime", true))
	assert.False(t, GetBoolValue(cfg, "Logger.IncludeLocation", false))
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  workers: 4\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvCatalog, "/tmp/custom.yaml")
	t.Setenv(EnvThreads, "4")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.yaml", cfg.Engine.CatalogPath)
	assert.Equal(t, 4, cfg.Engine.Threads)

	t.Setenv(EnvThreads, "many")
	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"nil", nil, true},
		{"valid", &Config{Engine: Engine{Threads: 2}, Report: Report{Format: "json"}}, false},
		{"too many threads", &Config{Engine: Engine{Threads: 65}, Report: Report{Format: "json"}}, true},
		{"zero threads", &Config{Engine: Engine{Threads: 0}, Report: Report{Format: "json"}}, true},
		{"bad format", &Config{Engine: Engine{Threads: 1}, Report: Report{Format: "html"}}, true},
		{"bad fail_on", &Config{Engine: Engine{Threads: 1}, Report: Report{Format: "sarif", FailOn: "severe"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetThen(t *testing.T) {
	assert.Equal(t, 3, SetThen(0, 3))
	assert.Equal(t, 5, SetThen(5, 3))
	assert.Equal(t, "json", SetThen("", "json"))
}
