package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "")
	t.Setenv("GEODATA_TIMEOUT", "")
	t.Setenv("RECOMMENDATION_CACHE_TTL", "")
	t.Setenv("TIMEZONE", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0 3 * * *", cfg.Scheduler.RefreshCronSchedule)
	assert.Equal(t, 15*time.Second, cfg.GeoData.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Agronomy.RecommendationCacheTTL)
	assert.False(t, cfg.Sheets.Enabled())
}

// unsetenv removes keys for the duration of the test. godotenv never
// overrides a variable that is already set, even to an empty value.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_FromEnvFile(t *testing.T) {
	unsetenv(t, "APP_PORT", "CROP_CATALOG_PATH", "RECOMMENDATION_CACHE_TTL")

	path := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=9090\nCROP_CATALOG_PATH=/etc/farm/crops.yaml\nRECOMMENDATION_CACHE_TTL=1m\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/etc/farm/crops.yaml", cfg.Agronomy.CropCatalogPath)
	assert.Equal(t, time.Minute, cfg.Agronomy.RecommendationCacheTTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad duration", map[string]string{"GEODATA_TIMEOUT": "soon"}},
		{"half sheets config", map[string]string{"GOOGLE_SHEETS_CREDENTIALS_PATH": "/tmp/creds.json", "GOOGLE_SHEET_DATABASE_ID": ""}},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{"negative ttl", map[string]string{"RECOMMENDATION_CACHE_TTL": "-1m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
