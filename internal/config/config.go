package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database   DatabaseConfig
	MOEX       MOEXConfig
	Schedule   ScheduleConfig
	Search     SearchConfig
	Calculator CalculatorConfig
	Log        LogConfig
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// MOEXConfig holds settings for the exchange ISS API client
type MOEXConfig struct {
	BaseURL       string
	Timeout       time.Duration
	ExcludedBoard string // board id whose rows are never ingested
}

// ScheduleConfig holds cron specs for the periodic refreshes
type ScheduleConfig struct {
	Securities string
	MarketData string
}

// SearchConfig holds search defaults
type SearchConfig struct {
	Limit int
}

// CalculatorConfig holds the pre-filled commission and tax, in percent
type CalculatorConfig struct {
	Commission float64
	Tax        float64
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	timeout, err := getDuration("MOEX_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	limit, err := getInt("SEARCH_LIMIT", 100)
	if err != nil {
		return nil, err
	}
	commission, err := getFloat("CALC_COMMISSION", 0.05)
	if err != nil {
		return nil, err
	}
	tax, err := getFloat("CALC_TAX", 13)
	if err != nil {
		return nil, err
	}
	pretty, err := getBool("LOG_PRETTY", false)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/bonds.db"),
		},
		MOEX: MOEXConfig{
			BaseURL:       getEnv("MOEX_BASE_URL", "https://iss.moex.com"),
			Timeout:       timeout,
			ExcludedBoard: getEnv("MOEX_EXCLUDED_BOARD", "SPOB"),
		},
		Schedule: ScheduleConfig{
			Securities: getEnv("SECURITIES_SCHEDULE", "@hourly"),
			MarketData: getEnv("MARKETDATA_SCHEDULE", "@every 1m"),
		},
		Search: SearchConfig{
			Limit: limit,
		},
		Calculator: CalculatorConfig{
			Commission: commission,
			Tax:        tax,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: pretty,
		},
	}

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to float: %w", key, value, err)
	}
	return parsed, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("convert %s value %q to bool: %w", key, value, err)
	}
	return parsed, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to duration: %w", key, value, err)
	}
	return parsed, nil
}
