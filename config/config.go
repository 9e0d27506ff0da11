package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	AppName     = "market-dashboard"
	EnvFileName = "config.env"
)

const (
	EnvClientID          = "EBAY_CLIENT_ID"
	EnvClientSecret      = "EBAY_CLIENT_SECRET"
	EnvMarketplaceID     = "EBAY_MARKETPLACE_ID"
	EnvBaseURL           = "EBAY_BASE_URL"
	EnvTokenURL          = "EBAY_TOKEN_URL"
	EnvRequestsPerSecond = "EBAY_REQUESTS_PER_SECOND"
	EnvAddr              = "DASHBOARD_ADDR"
	EnvDBPath            = "DASHBOARD_DB_PATH"
	EnvChartWidth        = "CHART_WIDTH"
	EnvChartHeight       = "CHART_HEIGHT"
)

// RequiredEnvVars lists the environment variables that must be set for the
// dashboard to run.
var RequiredEnvVars = []string{EnvClientID, EnvClientSecret}

// Config is the runtime configuration read from the environment.
type Config struct {
	ClientID          string
	ClientSecret      string
	MarketplaceID     string
	BaseURL           string
	TokenURL          string
	RequestsPerSecond float64
	Addr              string
	DBPath            string
	ChartWidth        int
	ChartHeight       int
}

// ConfigDir returns the application's config directory path, creating it if
// needed.
func ConfigDir() (string, error) {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	configDir := filepath.Join(configBase, AppName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// ConfigFilePath returns the full path to the env file.
func ConfigFilePath() (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, EnvFileName), nil
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist. Variables
// already set in the environment win.
func LoadEnvFile() {
	configPath, err := ConfigFilePath()
	if err != nil {
		return
	}
	_ = godotenv.Load(configPath)
}

// CheckRequired returns the names of any missing required variables.
func CheckRequired() []string {
	var missing []string
	for _, v := range RequiredEnvVars {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	return missing
}

// Load reads the configuration from the environment. Unset optional values
// get their defaults; malformed numbers are an error.
func Load() (Config, error) {
	cfg := Config{
		ClientID:      os.Getenv(EnvClientID),
		ClientSecret:  os.Getenv(EnvClientSecret),
		MarketplaceID: getenv(EnvMarketplaceID, "EBAY_US"),
		BaseURL:       os.Getenv(EnvBaseURL),
		TokenURL:      os.Getenv(EnvTokenURL),
		Addr:          getenv(EnvAddr, ":8000"),
		DBPath:        getenv(EnvDBPath, "dashboard.db"),
	}

	var err error
	if cfg.RequestsPerSecond, err = parseFloat(EnvRequestsPerSecond, 5); err != nil {
		return Config{}, err
	}
	if cfg.ChartWidth, err = parseInt(EnvChartWidth, 800); err != nil {
		return Config{}, err
	}
	if cfg.ChartHeight, err = parseInt(EnvChartHeight, 400); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// WriteEnvFile writes values to the config file, in key order, and returns its
// path. The file is created with 0600 permissions since it holds secrets.
func WriteEnvFile(values map[string]string) (string, error) {
	configPath, err := ConfigFilePath()
	if err != nil {
		return "", err
	}

	existing, err := godotenv.Read(configPath)
	if err != nil {
		existing = map[string]string{}
	}
	for k, v := range values {
		existing[k] = v
	}

	content, err := godotenv.Marshal(existing)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(content+"\n"), 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", key, v)
	}
	return f, nil
}

func parseInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
