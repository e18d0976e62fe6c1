package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paveg/tabular/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultValues(t *testing.T) {
	cfg := config.NewConfig()

	assert.Equal(t, 0, cfg.Workers) // 0 means auto-detect
	assert.Equal(t, ",", cfg.Delimiter)
	assert.Equal(t, ',', cfg.DelimiterRune())
	assert.True(t, cfg.Header)
	assert.True(t, cfg.InferTypes)
	assert.Equal(t, 100, cfg.InferenceSampleSize)
	assert.InDelta(t, 0.8, cfg.InferenceThreshold, 0.001)
	assert.Equal(t, 0, cfg.RowGroupSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.MetricsCollection)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validation(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*config.Config)
		expectedError string
	}{
		{
			name:   "valid config",
			mutate: func(c *config.Config) { c.Workers = 4; c.Delimiter = ";" },
		},
		{
			name:          "negative workers",
			mutate:        func(c *config.Config) { c.Workers = -1 },
			expectedError: "Workers must be non-negative, got -1",
		},
		{
			name:          "multi-character delimiter",
			mutate:        func(c *config.Config) { c.Delimiter = "::" },
			expectedError: `Delimiter must be a single character, got "::"`,
		},
		{
			name:          "newline delimiter",
			mutate:        func(c *config.Config) { c.Delimiter = "\n" },
			expectedError: "Delimiter must not be a line terminator",
		},
		{
			name:          "zero sample size",
			mutate:        func(c *config.Config) { c.InferenceSampleSize = 0 },
			expectedError: "InferenceSampleSize must be positive, got 0",
		},
		{
			name:          "threshold above one",
			mutate:        func(c *config.Config) { c.InferenceThreshold = 1.5 },
			expectedError: "InferenceThreshold must be in (0, 1]",
		},
		{
			name:          "negative row group size",
			mutate:        func(c *config.Config) { c.RowGroupSize = -10 },
			expectedError: "RowGroupSize must be non-negative, got -10",
		},
		{
			name:          "bad log level",
			mutate:        func(c *config.Config) { c.LogLevel = "chatty" },
			expectedError: `LogLevel "chatty" is invalid`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectedError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := config.Config{Workers: 3}.WithDefaults()
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, ",", cfg.Delimiter)
	assert.Equal(t, 100, cfg.InferenceSampleSize)
	assert.InDelta(t, 0.8, cfg.InferenceThreshold, 0.001)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Header, "booleans are not defaulted")
}

func TestConfig_GlobalConfig(t *testing.T) {
	original := config.GetGlobalConfig()
	t.Cleanup(func() { config.SetGlobalConfig(original) })

	custom := config.NewConfig()
	custom.Workers = 8
	config.SetGlobalConfig(custom)
	assert.Equal(t, 8, config.GetGlobalConfig().Workers)
}

func TestConfig_LoadFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "tabular.yaml")
		require.NoError(t, os.WriteFile(path, []byte("workers: 2\ndelimiter: \"|\"\nheader: false\nrow_group_size: 500\n"), 0o600))

		cfg, err := config.LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Workers)
		assert.Equal(t, '|', cfg.DelimiterRune())
		assert.False(t, cfg.Header)
		assert.Equal(t, 500, cfg.RowGroupSize)
		assert.True(t, cfg.InferTypes, "absent keys keep defaults")
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "tabular.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"inference_threshold": 0.9, "metrics_collection": true}`), 0o600))

		cfg, err := config.LoadFromFile(path)
		require.NoError(t, err)
		assert.InDelta(t, 0.9, cfg.InferenceThreshold, 0.001)
		assert.True(t, cfg.MetricsCollection)
		assert.True(t, cfg.Header)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "tabular.toml")
		require.NoError(t, os.WriteFile(path, []byte("workers = 2"), 0o600))
		_, err := config.LoadFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported config file format")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadFromFile(filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := config.LoadFromJSON([]byte(`{"workers":`))
		require.Error(t, err)
	})
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("TABULAR_WORKERS", "6")
	t.Setenv("TABULAR_DELIMITER", "\t")
	t.Setenv("TABULAR_HEADER", "false")
	t.Setenv("TABULAR_INFER_TYPES", "false")
	t.Setenv("TABULAR_INFERENCE_SAMPLE_SIZE", "50")
	t.Setenv("TABULAR_INFERENCE_THRESHOLD", "0.75")
	t.Setenv("TABULAR_ROW_GROUP_SIZE", "1000")
	t.Setenv("TABULAR_LOG_LEVEL", "debug")
	t.Setenv("TABULAR_METRICS_COLLECTION", "true")

	cfg := config.LoadFromEnv()
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, '\t', cfg.DelimiterRune())
	assert.False(t, cfg.Header)
	assert.False(t, cfg.InferTypes)
	assert.Equal(t, 50, cfg.InferenceSampleSize)
	assert.InDelta(t, 0.75, cfg.InferenceThreshold, 0.001)
	assert.Equal(t, 1000, cfg.RowGroupSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.MetricsCollection)
	require.NoError(t, cfg.Validate())
}

func TestConfig_ApplyEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("TABULAR_WORKERS", "many")
	t.Setenv("TABULAR_HEADER", "perhaps")

	base := config.NewConfig()
	base.Workers = 3
	cfg := config.ApplyEnv(base)
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.Header)
}
