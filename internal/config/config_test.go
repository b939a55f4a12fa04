package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	cfg := Load()

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.APIBaseURL)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NotEmpty(t, cfg.MediaPath)
	assert.True(t, cfg.SeedDemo)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("MARINSPECT_API_URL", "http://inspect.example.com:9000")
	t.Setenv("MARINSPECT_DB_PATH", "/custom/profiles.sqlite")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("MARINSPECT_NO_SEED", "1")

	cfg := Load()

	assert.Equal(t, "http://inspect.example.com:9000", cfg.APIBaseURL)
	assert.Equal(t, "/custom/profiles.sqlite", cfg.DBPath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.SeedDemo)
}
