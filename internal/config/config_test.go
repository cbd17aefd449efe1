package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("HEMAT_ANTHROPIC_API_KEY", "")

	cfg, err := Load(writeConfig(t, "# empty\n"))
	require.NoError(t, err)

	assert.Equal(t, 1500.0, cfg.Calculator.DefaultRate)
	assert.Equal(t, 100.0, cfg.Calculator.MinRate)
	assert.False(t, cfg.Calculator.StrictHoursValidation)
	assert.Len(t, cfg.Calculator.Palette, 5)
	assert.Equal(t, 10, cfg.Content.PageSize)
	assert.Equal(t, 50, cfg.Content.MaxPageSize)
	assert.Equal(t, "hemat.db", cfg.Database.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 30*time.Minute, cfg.AI.CacheTTL)
	assert.Equal(t, int64(1024), cfg.AI.MaxTokens)
	assert.Empty(t, cfg.Anthropic.APIKey)
	assert.False(t, cfg.AIAvailable())
	assert.False(t, cfg.MQTT.Enabled)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
calculator:
  default_rate: 1444.7
  strict_hours_validation: true
content:
  page_size: 5
database:
  path: /tmp/articles.db
access:
  admin_tokens: ["secret-1", "secret-2"]
  read_only: true
ai:
  timeout: 5s
mqtt:
  enabled: true
  broker: localhost:1883
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1444.7, cfg.Calculator.DefaultRate)
	assert.True(t, cfg.Calculator.StrictHoursValidation)
	assert.Equal(t, 5, cfg.Content.PageSize)
	assert.Equal(t, "/tmp/articles.db", cfg.Database.Path)
	assert.Equal(t, []string{"secret-1", "secret-2"}, cfg.Access.AdminTokens)
	assert.True(t, cfg.Access.ReadOnly)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "localhost:1883", cfg.MQTT.Broker)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HEMAT_CALCULATOR_DEFAULT_RATE", "2000")
	t.Setenv("HEMAT_SERVER_ADDR", ":9090")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load(writeConfig(t, "calculator:\n  default_rate: 1200\n"))
	require.NoError(t, err)

	assert.Equal(t, 2000.0, cfg.Calculator.DefaultRate)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "sk-test", cfg.Anthropic.APIKey)
	assert.True(t, cfg.AIAvailable())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit config path must exist")

	_, err = Load(writeConfig(t, "calculator: [oops\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "calculator:\n  default_rate: 50\n"))
	assert.ErrorContains(t, err, "min_rate")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Calculator: CalculatorConfig{DefaultRate: 1500, MinRate: 100},
			Content:    ContentConfig{PageSize: 10, MaxPageSize: 50},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"zero default rate", func(c *Config) { c.Calculator.DefaultRate = 0 }, "default_rate"},
		{"negative min rate", func(c *Config) { c.Calculator.MinRate = -1 }, "min_rate"},
		{"zero page size", func(c *Config) { c.Content.PageSize = 0 }, "page_size"},
		{"max below page size", func(c *Config) { c.Content.MaxPageSize = 5 }, "max_page_size"},
		{"mqtt without broker", func(c *Config) { c.MQTT.Enabled = true }, "mqtt.broker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}

func TestClampRate(t *testing.T) {
	cfg := &Config{Calculator: CalculatorConfig{DefaultRate: 1500, MinRate: 100}}

	assert.Equal(t, 1500.0, cfg.ClampRate(0))
	assert.Equal(t, 100.0, cfg.ClampRate(50))
	assert.Equal(t, 100.0, cfg.ClampRate(-10))
	assert.Equal(t, 1444.7, cfg.ClampRate(1444.7))
}
