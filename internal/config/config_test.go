package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Database.MaxOpenConns)
	assert.Equal(t, 0.1, cfg.Pipeline.RelevanceThreshold)
	assert.Equal(t, 0.6, cfg.Pipeline.ClassificationThreshold)
	assert.Equal(t, 10, cfg.Pipeline.EmailsPerBatch)
	assert.Equal(t, 3, cfg.Pipeline.MaxRetries)
	assert.Equal(t, 2, cfg.Pipeline.MaxSlotsPerUser)
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
database:
  max_open_conns: 5
pipeline:
  relevance_threshold: 0.25
  emails_per_batch: 20
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Database.MaxOpenConns)
	assert.Equal(t, 0.25, cfg.Pipeline.RelevanceThreshold)
	assert.Equal(t, 20, cfg.Pipeline.EmailsPerBatch)
	// Untouched fields still fall back to defaults.
	assert.Equal(t, 3, cfg.Pipeline.MaxRetries)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-override")
	t.Setenv("RELEVANCE_THRESHOLD", "0.42")
	t.Setenv("MAX_RETRIES", "7")

	cfg, err := LoadFromEnv("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://env-override", cfg.Database.URL)
	assert.Equal(t, 0.42, cfg.Pipeline.RelevanceThreshold)
	assert.Equal(t, 7, cfg.Pipeline.MaxRetries)
}
