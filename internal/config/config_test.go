package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"DEBTLENS_SERVER_PORT", "DEBTLENS_SERVER_READ_TIMEOUT",
		"DEBTLENS_DATA_PATH", "DEBTLENS_DATA_PREVIEW_ROWS", "DEBTLENS_DATA_WATCH",
		"DEBTLENS_SECURITY_ALLOWED_ORIGINS", "DEBTLENS_SECURITY_ENABLE_CORS",
		"DEBTLENS_LOGGING_LEVEL", "DEBTLENS_LOGGING_FORMAT",
		"DEBTLENS_TELEMETRY_SAMPLE_RATIO",
	}
	for _, envVar := range envVars {
		if _, ok := os.LookupEnv(envVar); ok {
			t.Setenv(envVar, "")
			os.Unsetenv(envVar)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err, "explicit config file that does not exist must fail")

	cfg, err = Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

	assert.Contains(t, cfg.Data.Path, DefaultDataFile)
	assert.True(t, filepath.IsAbs(cfg.Data.Path), "data path must be resolved to an absolute path")
	assert.Equal(t, []string{"year", "Year", "refPeriod", "ref period", "ref Period"}, cfg.Data.YearCandidates)
	assert.Equal(t, []string{"External_Debt", "external_debt", "Value", "External Debt"}, cfg.Data.DebtCandidates)
	assert.Equal(t, 5, cfg.Data.PreviewRows)
	assert.True(t, cfg.Data.Watch)
	assert.Equal(t, 500*time.Millisecond, cfg.Data.WatchDebounce)

	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, 100.0, cfg.Security.RateLimit.RPS)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, filepath.IsAbs(cfg.Logging.FilePath))

	assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRatio)
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
data:
  path: /srv/debt/series.csv
  preview_rows: 10
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/debt/series.csv", cfg.Data.Path, "absolute paths pass through untouched")
	assert.Equal(t, 10, cfg.Data.PreviewRows)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Data.Watch)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("server:\n  port: 9090\n"), 0644))

	t.Setenv("DEBTLENS_SERVER_PORT", "7070")
	t.Setenv("DEBTLENS_DATA_PATH", "/srv/override.csv")

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/srv/override.csv", cfg.Data.Path)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "invalid port",
			yaml:    "server:\n  port: -1\n",
			wantErr: "invalid server port",
		},
		{
			name:    "zero preview rows",
			yaml:    "data:\n  preview_rows: -2\n",
			wantErr: "preview rows",
		},
		{
			name:    "bad log format",
			yaml:    "logging:\n  format: xml\n",
			wantErr: "unsupported log format",
		},
		{
			name:    "sample ratio out of range",
			yaml:    "telemetry:\n  sample_ratio: 3\n",
			wantErr: "sample ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			configFile := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(configFile, []byte(tt.yaml), 0644))

			_, err := Load(configFile)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())
}
