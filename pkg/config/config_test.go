package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("PORT", "3001")
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("LAVALINK_PORT", "2444")
	resetForTesting()

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-token", config.BotToken)
	assert.Equal(t, 3001, config.Port)
	assert.Equal(t, "test", config.Environment)
	assert.Equal(t, 5*time.Second, config.AITimeout)
	assert.Equal(t, 2444, config.LavalinkPort)
	assert.NoError(t, config.Validate())
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("LAVALINK_PORT", "not-a-number")
	resetForTesting()

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateMissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	resetForTesting()

	config, err := Load()
	require.NoError(t, err)
	assert.ErrorIs(t, config.Validate(), ErrMissingToken)
}

func TestIsProd(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	resetForTesting()
	config, _ := Load()
	assert.True(t, config.IsProd())

	t.Setenv("ENVIRONMENT", "dev")
	resetForTesting()
	config, _ = Load()
	assert.False(t, config.IsProd())
}

func TestGet(t *testing.T) {
	resetForTesting()

	config := Get()
	require.NotNil(t, config)
	assert.Same(t, config, Get())
}

func TestDefaultValues(t *testing.T) {
	for _, key := range []string{
		"COMMAND_PREFIX", "HF_MODEL", "OPENAI_MODEL", "OLLAMA_URL", "OLLAMA_MODEL",
		"AI_TIMEOUT", "LAVALINK_HOST", "LAVALINK_PORT", "LAVALINK_SEARCH_PREFIX",
		"MQTT_HOST", "MQTT_PORT", "PORT", "ENVIRONMENT",
	} {
		t.Setenv(key, "")
	}
	resetForTesting()

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "!", config.Prefix)
	assert.Equal(t, "pierreguillou/gpt2-small-portuguese", config.HFModel)
	assert.Equal(t, "gpt-3.5-turbo", config.OpenAIModel)
	assert.Equal(t, "http://localhost:11434", config.OllamaURL)
	assert.Equal(t, "llama2", config.OllamaModel)
	assert.Equal(t, 30*time.Second, config.AITimeout)
	assert.Equal(t, "localhost", config.LavalinkHost)
	assert.Equal(t, 2333, config.LavalinkPort)
	assert.Equal(t, "ytsearch", config.LavalinkSearchPrefix)
	assert.Equal(t, 1883, config.MQTTPort)
	assert.False(t, config.MQTTEnabled())
	assert.Equal(t, 3000, config.Port)
	assert.Equal(t, "dev", config.Environment)
}
