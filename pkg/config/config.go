// Package config provides configuration management for the bot.
// It loads environment variables (and an optional .env file) and makes them
// available throughout the application.
package config

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrMissingToken is returned by Validate when no Discord token is configured.
var ErrMissingToken = errors.New("DISCORD_TOKEN no está configurado")

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken string `env:"DISCORD_TOKEN"`
	Prefix   string `env:"COMMAND_PREFIX" envDefault:"!"`

	// AI providers
	HFToken     string        `env:"HF_TOKEN"`
	HFModel     string        `env:"HF_MODEL" envDefault:"pierreguillou/gpt2-small-portuguese"`
	OpenAIKey   string        `env:"OPENAI_KEY"`
	OpenAIModel string        `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	OllamaURL   string        `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaModel string        `env:"OLLAMA_MODEL" envDefault:"llama2"`
	AITimeout   time.Duration `env:"AI_TIMEOUT" envDefault:"30s"`

	// Lavalink
	LavalinkHost         string `env:"LAVALINK_HOST" envDefault:"localhost"`
	LavalinkPort         int    `env:"LAVALINK_PORT" envDefault:"2333"`
	LavalinkPassword     string `env:"LAVALINK_PASSWORD"`
	LavalinkSecure       bool   `env:"LAVALINK_SECURE" envDefault:"false"`
	LavalinkSearchPrefix string `env:"LAVALINK_SEARCH_PREFIX" envDefault:"ytsearch"`

	// MQTT
	MQTTHost     string `env:"MQTT_HOST"`
	MQTTPort     int    `env:"MQTT_PORT" envDefault:"1883"`
	MQTTUser     string `env:"MQTT_USER"`
	MQTTPassword string `env:"MQTT_PASSWORD"`

	// Web Server
	Port            int    `env:"PORT" envDefault:"3000"`
	WebAllowedHosts string `env:"WEB_ALLOWED_HOSTS" envDefault:"^(localhost|127\\.0\\.0\\.1)(:\\d+)?$"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`

	// Webhooks
	ErrorWebhook string `env:"ERROR_WEBHOOK"`
	LogsWebhook  string `env:"LOGS_WEBHOOK"`
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgErr  error
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgErr = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	cfg = &Config{}
	if err := env.Parse(cfg); err != nil {
		cfgErr = fmt.Errorf("error leyendo variables de entorno: %w", err)
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, cfgErr
}

// Get returns the current configuration
func Get() *Config {
	cfgOnce.Do(loadConfig)
	return cfg
}

// Validate checks the values the process cannot start without.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return ErrMissingToken
	}
	return nil
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// MQTTEnabled reports whether an MQTT broker is configured.
func (c *Config) MQTTEnabled() bool {
	return c.MQTTHost != ""
}
