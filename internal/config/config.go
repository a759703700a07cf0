package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
	Scheduler SchedulerConfig
	GeoData   GeoDataConfig
	Agronomy  AgronomyConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig contains configuration required to export reports to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the spreadsheet export is configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// SchedulerConfig holds cron expressions of the background jobs.
type SchedulerConfig struct {
	RefreshCronSchedule string
	ReportCronSchedule  string
	Timezone            string
}

// GeoDataConfig points at the external climate, elevation and soil sources.
type GeoDataConfig struct {
	OpenMeteoBaseURL    string
	OpenMeteoArchiveURL string
	SoilGridsBaseURL    string
	Timeout             time.Duration
}

// AgronomyConfig tunes the recommendation layer.
type AgronomyConfig struct {
	CropCatalogPath        string
	RecommendationCacheTTL time.Duration
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	geoTimeout, err := durationWithDefault("GEODATA_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := durationWithDefault("RECOMMENDATION_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "farm"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Scheduler: SchedulerConfig{
			RefreshCronSchedule: getenvWithDefault("REFRESH_CRON_SCHEDULE", "0 3 * * *"),
			ReportCronSchedule:  getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * 5"),
			Timezone:            getenvWithDefault("TIMEZONE", "Europe/Bucharest"),
		},
		GeoData: GeoDataConfig{
			OpenMeteoBaseURL:    getenvWithDefault("OPEN_METEO_BASE_URL", "https://api.open-meteo.com"),
			OpenMeteoArchiveURL: getenvWithDefault("OPEN_METEO_ARCHIVE_URL", "https://archive-api.open-meteo.com"),
			SoilGridsBaseURL:    getenvWithDefault("SOILGRIDS_BASE_URL", "https://rest.isric.org"),
			Timeout:             geoTimeout,
		},
		Agronomy: AgronomyConfig{
			CropCatalogPath:        os.Getenv("CROP_CATALOG_PATH"),
			RecommendationCacheTTL: cacheTTL,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Scheduler.RefreshCronSchedule == "" {
		return errors.New("REFRESH_CRON_SCHEDULE must be provided")
	}

	if c.Scheduler.ReportCronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	if c.GeoData.OpenMeteoBaseURL == "" || c.GeoData.OpenMeteoArchiveURL == "" || c.GeoData.SoilGridsBaseURL == "" {
		return errors.New("geodata base URLs must not be empty")
	}

	if c.GeoData.Timeout <= 0 {
		return errors.New("GEODATA_TIMEOUT must be positive")
	}

	if c.Agronomy.RecommendationCacheTTL <= 0 {
		return errors.New("RECOMMENDATION_CACHE_TTL must be positive")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid duration: %w", key, err)
	}
	return d, nil
}
