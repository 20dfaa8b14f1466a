package hang

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config controls how the SDK connects. ChatURL and NotifyURL are templates
// with a {username} placeholder; the URL is configuration, not protocol.
type Config struct {
	ChatURL   string
	NotifyURL string
	Username  string
	Token     string

	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration

	// PingInterval is the keepalive cadence while a connection is open.
	PingInterval time.Duration

	// LoadTimeout bounds how long a load_message request may stay pending
	// before it is considered failed and retryable.
	LoadTimeout time.Duration

	// Reconnect backoff. Delay doubles from min to max per attempt;
	// MaxReconnectAttempts of 0 means unlimited.
	ReconnectMinDelay    time.Duration
	ReconnectMaxDelay    time.Duration
	MaxReconnectAttempts int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChatURL:           "ws://localhost:8000/ws/chats/{username}/",
		NotifyURL:         "ws://localhost:8000/ws/real_time_ws/{username}/",
		HandshakeTimeout:  10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Second,
		PingInterval:      10 * time.Second,
		LoadTimeout:       10 * time.Second,
		ReconnectMinDelay: time.Second,
		ReconnectMaxDelay: 30 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, loading a .env
// file first if one exists. Unset variables fall back to DefaultConfig.
func ConfigFromEnv() Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	cfg.ChatURL = getEnvOrDefault("HANG_CHAT_URL", cfg.ChatURL)
	cfg.NotifyURL = getEnvOrDefault("HANG_NOTIFY_URL", cfg.NotifyURL)
	cfg.Username = os.Getenv("HANG_USERNAME")
	cfg.Token = os.Getenv("HANG_TOKEN")
	cfg.HandshakeTimeout = getDurationOrDefault("HANG_HANDSHAKE_TIMEOUT", cfg.HandshakeTimeout)
	cfg.ReadTimeout = getDurationOrDefault("HANG_READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = getDurationOrDefault("HANG_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.PingInterval = getDurationOrDefault("HANG_PING_INTERVAL", cfg.PingInterval)
	cfg.LoadTimeout = getDurationOrDefault("HANG_LOAD_TIMEOUT", cfg.LoadTimeout)
	cfg.ReconnectMinDelay = getDurationOrDefault("HANG_RECONNECT_MIN_DELAY", cfg.ReconnectMinDelay)
	cfg.ReconnectMaxDelay = getDurationOrDefault("HANG_RECONNECT_MAX_DELAY", cfg.ReconnectMaxDelay)
	cfg.MaxReconnectAttempts = getIntOrDefault("HANG_MAX_RECONNECT_ATTEMPTS", cfg.MaxReconnectAttempts)
	return cfg
}

// WithProfile copies the stored identity into the config. A nil profile
// (logged out) leaves the config without an identity, which makes clients
// built from it no-ops.
func (c Config) WithProfile(p *Profile) Config {
	if p == nil {
		return c
	}
	c.Username = p.User.Username
	c.Token = p.Token
	return c
}

// endpoint resolves a URL template for the configured identity. Empty when
// there is no logged-in user.
func (c Config) endpoint(template string) string {
	if c.Username == "" {
		return ""
	}
	return strings.ReplaceAll(template, "{username}", c.Username)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}
