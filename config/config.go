package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TINYHTTPD_SERVER_PORT.
const EnvPrefix = "TINYHTTPD"

// Config is the complete tinyhttpd configuration.
type Config struct {
	Server  ServerConfig  `toml:"server" mapstructure:"server"`
	Logging LoggingConfig `toml:"logging" mapstructure:"logging"`
}

// ServerConfig configures the listening socket and the connection pool.
type ServerConfig struct {
	Host           string `toml:"host" mapstructure:"host"`
	Port           int    `toml:"port" mapstructure:"port"`
	MaxConns       int    `toml:"max_conns" mapstructure:"max_conns"`
	PollTimeoutMs  int    `toml:"poll_timeout_ms" mapstructure:"poll_timeout_ms"`
	RecvBufferSize int    `toml:"recv_buffer_size" mapstructure:"recv_buffer_size"`
	// MaxHeaderBytes of -1 disables the limit.
	MaxHeaderBytes int `toml:"max_header_bytes" mapstructure:"max_header_bytes"`
}

// LoggingConfig configures the slog output.
type LoggingConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           47890,
			MaxConns:       10,
			PollTimeoutMs:  100,
			RecvBufferSize: 4096,
			MaxHeaderBytes: 1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.max_conns", d.Server.MaxConns)
	v.SetDefault("server.poll_timeout_ms", d.Server.PollTimeoutMs)
	v.SetDefault("server.recv_buffer_size", d.Server.RecvBufferSize)
	v.SetDefault("server.max_header_bytes", d.Server.MaxHeaderBytes)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Load reads configuration from defaults, then the TOML file at path (if
// path is non-empty), then TINYHTTPD_* environment variables.
// The result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: fmt.Sprintf("must be between 1 and 65535, got %d", c.Server.Port)}
	}
	if c.Server.MaxConns < 1 {
		return &ConfigError{Field: "server.max_conns", Message: fmt.Sprintf("must be at least 1, got %d", c.Server.MaxConns)}
	}
	if c.Server.PollTimeoutMs < 1 {
		return &ConfigError{Field: "server.poll_timeout_ms", Message: fmt.Sprintf("must be at least 1, got %d", c.Server.PollTimeoutMs)}
	}
	if c.Server.RecvBufferSize < 1 {
		return &ConfigError{Field: "server.recv_buffer_size", Message: fmt.Sprintf("must be at least 1, got %d", c.Server.RecvBufferSize)}
	}
	return nil
}

// PollTimeout returns server.poll_timeout_ms as a duration.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.Server.PollTimeoutMs) * time.Millisecond
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Save writes c as TOML to path.
func (c *Config) Save(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if err := c.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
