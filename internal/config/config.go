// Package config loads the decoder service configuration from environment
// variables with command-line overrides.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"os"
)

// globalConfig stores the configuration loaded with command-line overrides so
// the handler package sees the same values the server was started with.
var (
	globalConfig *Config
	configMutex  sync.Mutex
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig
	Decoder  DecoderConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// LoadOptions holds command-line override options.
type LoadOptions struct {
	Host         string
	Port         string
	LogLevel     string
	BottomUpRows bool
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DecoderConfig bounds a single decode request.
type DecoderConfig struct {
	// MaxWidth and MaxHeight cap the decoded surface dimensions.
	MaxWidth  int
	MaxHeight int
	// MaxInputBytes caps the size of an uploaded bitmap.
	MaxInputBytes int64
	// PreviewEdge is the longest edge of the preview frame sent back to the
	// client; larger decodes are scaled down. Zero disables scaling.
	PreviewEdge int
	// BottomUpRows reverses scanlines of positive-height bitmaps per the BMP
	// bottom-up convention instead of keeping on-disk order.
	BottomUpRows bool
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	AllowedOrigins []string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables with defaults.
func Load() (*Config, error) {
	return LoadWithOverrides(LoadOptions{})
}

// LoadWithOverrides loads configuration with command-line overrides taking
// precedence over the environment.
func LoadWithOverrides(opts LoadOptions) (*Config, error) {
	config := &Config{}

	config.Server.Host = getOverrideOrEnv(opts.Host, "SERVER_HOST", "0.0.0.0")
	config.Server.Port = getOverrideOrEnv(opts.Port, "SERVER_PORT", "8080")
	config.Server.ReadTimeout = getDurationWithDefault("SERVER_READ_TIMEOUT", 30*time.Second)
	config.Server.WriteTimeout = getDurationWithDefault("SERVER_WRITE_TIMEOUT", 30*time.Second)
	config.Server.IdleTimeout = getDurationWithDefault("SERVER_IDLE_TIMEOUT", 120*time.Second)

	config.Decoder.MaxWidth = getIntWithDefault("DECODER_MAX_WIDTH", 8192)
	config.Decoder.MaxHeight = getIntWithDefault("DECODER_MAX_HEIGHT", 8192)
	config.Decoder.MaxInputBytes = int64(getIntWithDefault("DECODER_MAX_INPUT_BYTES", 32<<20))
	config.Decoder.PreviewEdge = getIntWithDefault("DECODER_PREVIEW_EDGE", 2048)
	config.Decoder.BottomUpRows = getBoolWithDefault("DECODER_BOTTOM_UP_ROWS", false) || opts.BottomUpRows

	config.Security.AllowedOrigins = getStringSliceWithDefault("ALLOWED_ORIGINS", []string{})

	config.Logging.Level = getOverrideOrEnv(opts.LogLevel, "LOG_LEVEL", "info")

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = config
	configMutex.Unlock()

	return config, nil
}

// GetGlobalConfig returns the globally stored configuration, or nil if the
// server has not loaded one yet.
func GetGlobalConfig() *Config {
	configMutex.Lock()
	defer configMutex.Unlock()
	return globalConfig
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", c.Server.Port)
	}

	if c.Decoder.MaxWidth <= 0 || c.Decoder.MaxHeight <= 0 {
		return fmt.Errorf("decoder dimension limits must be positive")
	}
	if c.Decoder.MaxInputBytes <= 0 {
		return fmt.Errorf("decoder input size limit must be positive")
	}
	if c.Decoder.PreviewEdge < 0 {
		return fmt.Errorf("preview edge cannot be negative")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

func getOverrideOrEnv(override, key, defaultValue string) string {
	if override != "" {
		return override
	}
	return getEnvWithDefault(key, defaultValue)
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceWithDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
