package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level application configuration.
type Config struct {
	Anthropic     AnthropicConfig    `mapstructure:"anthropic"`
	AI            AIConfig           `mapstructure:"ai"`
	Calculator    CalculatorConfig   `mapstructure:"calculator"`
	Content       ContentConfig      `mapstructure:"content"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Server        ServerConfig       `mapstructure:"server"`
	Access        AccessConfig       `mapstructure:"access"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	MQTT          MQTTConfig         `mapstructure:"mqtt"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type AIConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxTokens        int64         `mapstructure:"max_tokens"`
	ArticleMaxTokens int64         `mapstructure:"article_max_tokens"`
	Timeout          time.Duration `mapstructure:"timeout"`
	CacheSize        int           `mapstructure:"cache_size"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	HistorySize      int           `mapstructure:"history_size"`
}

// CalculatorConfig holds tariff defaults and validation switches.
type CalculatorConfig struct {
	DefaultRate           float64  `mapstructure:"default_rate"`
	MinRate               float64  `mapstructure:"min_rate"`
	StrictHoursValidation bool     `mapstructure:"strict_hours_validation"`
	Palette               []string `mapstructure:"palette"`
}

type ContentConfig struct {
	PageSize    int `mapstructure:"page_size"`
	MaxPageSize int `mapstructure:"max_page_size"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type AccessConfig struct {
	AdminTokens []string `mapstructure:"admin_tokens"`
	ReadOnly    bool     `mapstructure:"read_only"`
}

type NotificationConfig struct {
	LogFile      string `mapstructure:"log_file"`
	AuditFile    string `mapstructure:"audit_file"`
	Verbose      bool   `mapstructure:"verbose"`
	ColorEnabled bool   `mapstructure:"color_enabled"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")

	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.article_max_tokens", 4096)
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.cache_size", 200)
	v.SetDefault("ai.cache_ttl", "30m")
	v.SetDefault("ai.history_size", 50)

	v.SetDefault("calculator.default_rate", 1500.0) // IDR per kWh
	v.SetDefault("calculator.min_rate", 100.0)
	v.SetDefault("calculator.strict_hours_validation", false)
	v.SetDefault("calculator.palette", []string{"#1e6626", "#1a4d6e", "#136e8c", "#0f7f9e", "#0084d1"})

	v.SetDefault("content.page_size", 10)
	v.SetDefault("content.max_page_size", 50)

	v.SetDefault("database.path", "hemat.db")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("access.admin_tokens", []string{})
	v.SetDefault("access.read_only", false)

	v.SetDefault("notifications.log_file", "hemat.log")
	v.SetDefault("notifications.audit_file", "hemat-audit.log")
	v.SetDefault("notifications.verbose", false)
	v.SetDefault("notifications.color_enabled", true)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.client_id", "hemat")
	v.SetDefault("mqtt.topic_prefix", "hemat")
}

// Load reads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("HEMAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow API key from env
	_ = v.BindEnv("anthropic.api_key", "HEMAT_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Search in current dir, home dir, /etc
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".hemat"))
		}
		v.AddConfigPath("/etc/hemat")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Missing config file is fine, defaults apply
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would make the calculator or store misbehave.
func (c *Config) Validate() error {
	if c.Calculator.DefaultRate <= 0 {
		return fmt.Errorf("calculator.default_rate must be positive, got %v", c.Calculator.DefaultRate)
	}
	if c.Calculator.MinRate < 0 {
		return fmt.Errorf("calculator.min_rate must not be negative, got %v", c.Calculator.MinRate)
	}
	if c.Calculator.MinRate > c.Calculator.DefaultRate {
		return fmt.Errorf("calculator.min_rate (%v) exceeds default_rate (%v)", c.Calculator.MinRate, c.Calculator.DefaultRate)
	}
	if c.Content.PageSize <= 0 {
		return fmt.Errorf("content.page_size must be positive, got %d", c.Content.PageSize)
	}
	if c.Content.MaxPageSize < c.Content.PageSize {
		return fmt.Errorf("content.max_page_size (%d) is below page_size (%d)", c.Content.MaxPageSize, c.Content.PageSize)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	return nil
}

// ClampRate applies the minimum tariff the calculator form enforces.
// Zero means "not given" and yields the default rate.
func (c *Config) ClampRate(rate float64) float64 {
	if rate == 0 {
		return c.Calculator.DefaultRate
	}
	if rate < c.Calculator.MinRate {
		return c.Calculator.MinRate
	}
	return rate
}

// AIAvailable reports whether generative features can be used.
func (c *Config) AIAvailable() bool {
	return c.AI.Enabled && c.Anthropic.APIKey != ""
}

// Global holds the current loaded configuration.
var Global *Config
