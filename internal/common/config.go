package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Store    StoreConfig    `toml:"store"`
	Oracle   OracleConfig   `toml:"oracle"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Watch    WatchConfig    `toml:"watch"`
}

// StoreConfig holds relational-store configuration.
type StoreConfig struct {
	Dialect          string        `toml:"dialect"` // "sqlite" or "postgres"
	DSN              string        `toml:"dsn"`
	MaxConns         int32         `toml:"max_conns"`
	MinConns         int32         `toml:"min_conns"`
	DialTimeout      time.Duration `toml:"dial_timeout"`
	StatementTimeout time.Duration `toml:"statement_timeout"`
}

// OracleConfig holds model-backend configuration.
type OracleConfig struct {
	URL             string        `toml:"url"`
	ExtractionModel string        `toml:"extraction_model"`
	OrganizerModel  string        `toml:"organizer_model"`
	Temperature     float64       `toml:"temperature"`
	MaxTokens       int           `toml:"max_tokens"`
	Timeout         time.Duration `toml:"timeout"`
}

// PipelineConfig holds stage tuning knobs.
type PipelineConfig struct {
	WorkDir        string `toml:"work_dir"` // session temp artifacts
	SampleRows     int    `toml:"sample_rows"`
	MaxPromptChars int    `toml:"max_prompt_chars"`
}

// WatchConfig holds directory-watch configuration.
type WatchConfig struct {
	Dir        string        `toml:"dir"`
	LedgerPath string        `toml:"ledger_path"` // processed-file hash ledger
	Debounce   time.Duration `toml:"debounce"`
}

// LoadConfig loads configuration from an optional TOML file (DOCLEDGER_CONFIG,
// falling back to ./docledger.toml), then applies environment overrides.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	path := getEnv("DOCLEDGER_CONFIG", "docledger.toml")
	if b, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Store: StoreConfig{
			Dialect:     "sqlite",
			DSN:         "data/finance.db",
			MaxConns:    10,
			MinConns:    2,
			DialTimeout: 3 * time.Second,
		},
		Oracle: OracleConfig{
			URL:             "http://localhost:11434",
			ExtractionModel: "phi3.5:3.8b-mini-instruct-q4_K_M",
			OrganizerModel:  "gemma2:2b-instruct-q4_K_M",
			Temperature:     0.1,
			MaxTokens:       1024,
			Timeout:         45 * time.Second,
		},
		Pipeline: PipelineConfig{
			WorkDir:        "./tmp",
			SampleRows:     5,
			MaxPromptChars: 3000,
		},
		Watch: WatchConfig{
			LedgerPath: "data/processed_files.json",
			Debounce:   500 * time.Millisecond,
		},
	}
}

func applyEnv(c *Config) {
	c.Store.Dialect = getEnv("DB_DIALECT", c.Store.Dialect)
	c.Store.DSN = getEnv("DB_URL", c.Store.DSN)
	c.Store.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Store.MaxConns)
	c.Store.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Store.MinConns)
	c.Store.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Store.DialTimeout)
	c.Store.StatementTimeout = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Store.StatementTimeout)

	c.Oracle.URL = getEnv("OLLAMA_URL", c.Oracle.URL)
	c.Oracle.ExtractionModel = getEnv("LLM_EXTRACTION_MODEL", c.Oracle.ExtractionModel)
	c.Oracle.OrganizerModel = getEnv("LLM_ORGANIZER_MODEL", c.Oracle.OrganizerModel)
	c.Oracle.Temperature = getEnvAsFloat64("LLM_TEMPERATURE", c.Oracle.Temperature)
	c.Oracle.MaxTokens = getEnvAsInt("LLM_MAX_TOKENS", c.Oracle.MaxTokens)
	c.Oracle.Timeout = getEnvAsDuration("LLM_TIMEOUT", c.Oracle.Timeout)

	c.Pipeline.WorkDir = getEnv("WORK_DIR", c.Pipeline.WorkDir)
	c.Watch.Dir = getEnv("WATCH_DIR", c.Watch.Dir)
	c.Watch.LedgerPath = getEnv("WATCH_LEDGER", c.Watch.LedgerPath)
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Store.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Store.Dialect != "sqlite" && c.Store.Dialect != "postgres" {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown store dialect %q", c.Store.Dialect), ErrInvalidInput)
	}
	if c.Oracle.URL == "" {
		return NewAppError("CONFIG_ERROR", "OLLAMA_URL is required", ErrInvalidInput)
	}
	if c.Pipeline.WorkDir == "" {
		return NewAppError("CONFIG_ERROR", "WORK_DIR is required", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
