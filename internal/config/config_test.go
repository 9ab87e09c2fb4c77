package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, "datalab", cfg.Paths.TrendDir)
	assert.Equal(t, "blog", cfg.Paths.BlogDir)
	assert.Equal(t, "news", cfg.Paths.NewsDir)
	assert.Equal(t, "2024-01-01", cfg.Dashboard.DefaultStart)
	assert.Equal(t, "2025-12-31", cfg.Dashboard.DefaultEnd)
	assert.Equal(t, 2, cfg.Dashboard.DefaultKeywordCount)
	assert.NoError(t, cfg.validate())
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file and no env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "file overrides defaults, keeps unspecified keys",
			file: `
server:
  port: 9090
paths:
  data_dir: /srv/ott/data
dashboard:
  default_start: "2024-06-01"
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "/srv/ott/data", cfg.Paths.DataDir)
				assert.Equal(t, "datalab", cfg.Paths.TrendDir)
				assert.Equal(t, "2024-06-01", cfg.Dashboard.DefaultStart)
				assert.Equal(t, "2025-12-31", cfg.Dashboard.DefaultEnd)
			},
		},
		{
			name: "env overrides file",
			file: "server:\n  port: 9090\n",
			env: map[string]string{
				"TRENDPULSE_SERVER_PORT":              "7070",
				"TRENDPULSE_LOGGING_LEVEL":            "debug",
				"TRENDPULSE_SECURITY_ALLOWED_ORIGINS": "http://a.example,http://b.example",
				"TRENDPULSE_DASHBOARD_TOP_SPIKES":     "3",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, 3, cfg.Dashboard.TopSpikes)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"TRENDPULSE_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "end before start",
			file:    "dashboard:\n  default_start: \"2025-01-01\"\n  default_end: \"2024-01-01\"\n",
			wantErr: true,
		},
		{
			name:    "malformed default date",
			env:     map[string]string{"TRENDPULSE_DASHBOARD_DEFAULT_START": "01/01/2024"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFromMissingExplicitFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadUsesConfigEnv(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 8181\n")
	t.Setenv("TRENDPULSE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "logs/trendpulse.log", cfg.Logging.FilePath)
}

func TestDashboardDateRange(t *testing.T) {
	start, end, err := Default().Dashboard.DateRange()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestServerAddress(t *testing.T) {
	assert.Equal(t, ":8080", Default().Server.Address())
	assert.Equal(t, "127.0.0.1:9000", ServerConfig{Host: "127.0.0.1", Port: 9000}.Address())
}
