// Package config loads and validates relay configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/relay"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig           `mapstructure:"server"`
	Auth     AuthConfig             `mapstructure:"auth"`
	Enrich   EnrichConfig           `mapstructure:"enrich"`
	Proxy    ProxyConfig            `mapstructure:"proxy"`
	Discord  DiscordConfig          `mapstructure:"discord"`
	Mappings []relay.ChannelMapping `mapstructure:"mappings"`
	Logging  LoggingConfig          `mapstructure:"logging"`
}

// ServerConfig controls HTTP listener behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines the inbound webhook shared-secret check.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Secret  string `mapstructure:"secret"`
}

// EnrichConfig governs product page fetch behavior.
type EnrichConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ProxyConfig points at the flat proxy credentials file.
type ProxyConfig struct {
	File string `mapstructure:"file"`
}

// DiscordConfig names the destination webhook URLs mappings refer to.
type DiscordConfig struct {
	Webhooks map[string]string `mapstructure:"webhooks"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("auth.enabled", true)
	// Empty-string defaults register the keys so environment overrides
	// (e.g. RELAY_AUTH_SECRET) are seen by Unmarshal.
	v.SetDefault("auth.secret", "")
	v.SetDefault("enrich.user_agent", "")
	v.SetDefault("enrich.timeout_seconds", 15)
	v.SetDefault("proxy.file", "proxies.txt")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and mapping consistency.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret must be set when auth is enabled")
	}
	if c.Enrich.TimeoutSeconds <= 0 {
		return fmt.Errorf("enrich.timeout_seconds must be > 0")
	}
	seen := make(map[string]bool, len(c.Mappings))
	for i, m := range c.Mappings {
		if m.SourceID == "" {
			return fmt.Errorf("mappings[%d]: source_channel is required", i)
		}
		if m.Destination == "" {
			return fmt.Errorf("mappings[%d]: destination is required", i)
		}
		if seen[m.SourceID] {
			return fmt.Errorf("mappings[%d]: duplicate source_channel %q", i, m.SourceID)
		}
		seen[m.SourceID] = true
	}
	return nil
}

// EnrichTimeout converts the enrichment timeout config into a duration.
func (c Config) EnrichTimeout() time.Duration {
	return time.Duration(c.Enrich.TimeoutSeconds) * time.Second
}
