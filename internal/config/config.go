// Package config provides configuration management for tabular codec operations
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config represents the global configuration for tabular operations
type Config struct {
	// Parallel CSV Configuration
	Workers   int    `json:"workers" yaml:"workers"`     // Number of chunk workers (0 = runtime.NumCPU())
	Delimiter string `json:"delimiter" yaml:"delimiter"` // Single-character field delimiter
	Header    bool   `json:"header" yaml:"header"`       // First CSV line holds column names

	// Binary Table Configuration
	InferTypes          bool    `json:"infer_types" yaml:"infer_types"`                     // Infer types of text columns on write
	InferenceSampleSize int     `json:"inference_sample_size" yaml:"inference_sample_size"` // Leading values sampled per column
	InferenceThreshold  float64 `json:"inference_threshold" yaml:"inference_threshold"`     // Fraction of samples a type must match (0.0-1.0]
	RowGroupSize        int     `json:"row_group_size" yaml:"row_group_size"`               // Rows per row group (0 = single row group)

	// Observability Configuration
	LogLevel          string `json:"log_level" yaml:"log_level"`
	MetricsCollection bool   `json:"metrics_collection" yaml:"metrics_collection"`
}

// Global configuration instance
var (
	globalConfig = NewConfig()
	configMutex  sync.RWMutex
)

// Default configuration values
const (
	DefaultDelimiter           = ","
	DefaultInferenceSampleSize = 100
	DefaultInferenceThreshold  = 0.8
	DefaultLogLevel            = "info"
)

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		Workers:             0, // Auto-detect
		Delimiter:           DefaultDelimiter,
		Header:              true,
		InferTypes:          true,
		InferenceSampleSize: DefaultInferenceSampleSize,
		InferenceThreshold:  DefaultInferenceThreshold,
		RowGroupSize:        0,
		LogLevel:            DefaultLogLevel,
		MetricsCollection:   false,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("Workers must be non-negative, got %d", c.Workers)
	}

	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("Delimiter must be a single character, got %q", c.Delimiter)
	}
	if d := c.DelimiterRune(); d == '\n' || d == '\r' {
		return fmt.Errorf("Delimiter must not be a line terminator, got %q", c.Delimiter)
	}

	if c.InferenceSampleSize <= 0 {
		return fmt.Errorf("InferenceSampleSize must be positive, got %d", c.InferenceSampleSize)
	}

	if c.InferenceThreshold <= 0.0 || c.InferenceThreshold > 1.0 {
		return fmt.Errorf("InferenceThreshold must be in (0, 1], got %f", c.InferenceThreshold)
	}

	if c.RowGroupSize < 0 {
		return fmt.Errorf("RowGroupSize must be non-negative, got %d", c.RowGroupSize)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LogLevel %q is invalid: %w", c.LogLevel, err)
	}

	return nil
}

// DelimiterRune returns the delimiter as a rune
func (c Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.Delimiter == "" {
		c.Delimiter = defaults.Delimiter
	}
	if c.InferenceSampleSize == 0 {
		c.InferenceSampleSize = defaults.InferenceSampleSize
	}
	if c.InferenceThreshold == 0.0 {
		c.InferenceThreshold = defaults.InferenceThreshold
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}

	// Boolean fields are left alone so an explicit false survives
	return c
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadFromJSON loads configuration from JSON data; absent keys keep their defaults
func LoadFromJSON(data []byte) (Config, error) {
	config := NewConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromYAML loads configuration from YAML data; absent keys keep their defaults
func LoadFromYAML(data []byte) (Config, error) {
	config := NewConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing YAML configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a file (supports JSON and YAML)
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		config, err = LoadFromJSON(data)
	case ".yaml", ".yml":
		config, err = LoadFromYAML(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", filename, err)
	}

	return config, nil
}

// LoadFromEnv loads configuration from TABULAR_* environment variables over the defaults
func LoadFromEnv() Config {
	return ApplyEnv(NewConfig())
}

// ApplyEnv overrides fields of config from TABULAR_* environment variables.
// Unparsable values are ignored.
func ApplyEnv(config Config) Config {
	if val := os.Getenv("TABULAR_WORKERS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.Workers = parsed
		}
	}

	if val := os.Getenv("TABULAR_DELIMITER"); val != "" {
		config.Delimiter = val
	}

	if val := os.Getenv("TABULAR_HEADER"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.Header = parsed
		}
	}

	if val := os.Getenv("TABULAR_INFER_TYPES"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.InferTypes = parsed
		}
	}

	if val := os.Getenv("TABULAR_INFERENCE_SAMPLE_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.InferenceSampleSize = parsed
		}
	}

	if val := os.Getenv("TABULAR_INFERENCE_THRESHOLD"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			config.InferenceThreshold = parsed
		}
	}

	if val := os.Getenv("TABULAR_ROW_GROUP_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.RowGroupSize = parsed
		}
	}

	if val := os.Getenv("TABULAR_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	if val := os.Getenv("TABULAR_METRICS_COLLECTION"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.MetricsCollection = parsed
		}
	}

	return config
}
