package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Platewise", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "pinecone", cfg.Vector.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.ChatModel)
	assert.Equal(t, "text-embedding-3-small", cfg.AI.EmbeddingModel)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMin)
	assert.False(t, cfg.Redis.Enabled)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PLATEWISE_SERVER_PORT", "9999")
	t.Setenv("PLATEWISE_VECTOR_PROVIDER", "memory")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Vector.Provider)
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := &Config{}
	cfg.App.Name = "Platewise"
	cfg.Server.Port = 0
	cfg.Vector.Provider = "memory"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownVectorProvider(t *testing.T) {
	cfg := &Config{}
	cfg.App.Name = "Platewise"
	cfg.Server.Port = 8080
	cfg.Vector.Provider = "chroma"
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresAPIKeyInProduction(t *testing.T) {
	cfg := &Config{}
	cfg.App.Name = "Platewise"
	cfg.App.Environment = "production"
	cfg.Server.Port = 8080
	cfg.Vector.Provider = "pinecone"
	assert.Error(t, cfg.Validate())

	cfg.AI.APIKey = "sk-test"
	assert.NoError(t, cfg.Validate())
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := &Config{}
	cfg.App.Environment = "production"
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}
