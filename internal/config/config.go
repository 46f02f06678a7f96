package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the client configuration.
type Config struct {
	APIURL          string
	WSURL           string
	CredentialsFile string
	PollInterval    time.Duration
	HTTPTimeout     time.Duration
}

// ServerConfig configures the development API server.
type ServerConfig struct {
	Port         string
	JWTSecret    string
	SeedEmail    string
	SeedPassword string
	SeedName     string
}

func Load() *Config {
	apiURL := strings.TrimRight(getEnv("STOCKROOM_API_URL", "http://localhost:8081"), "/")
	return &Config{
		APIURL:          apiURL,
		WSURL:           getEnv("STOCKROOM_WS_URL", wsURL(apiURL)),
		CredentialsFile: getEnv("STOCKROOM_CREDENTIALS", defaultCredentialsFile()),
		PollInterval:    getDuration("STOCKROOM_POLL_INTERVAL", 10*time.Second),
		HTTPTimeout:     getDuration("STOCKROOM_HTTP_TIMEOUT", 10*time.Second),
	}
}

func LoadServer() *ServerConfig {
	return &ServerConfig{
		Port:         getEnv("PORT", "8081"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		SeedEmail:    getEnv("SEED_EMAIL", "admin@stockroom.local"),
		SeedPassword: getEnv("SEED_PASSWORD", "password123"),
		SeedName:     getEnv("SEED_NAME", "Admin"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// wsURL derives the order event stream URL from the API base URL.
func wsURL(apiURL string) string {
	switch {
	case strings.HasPrefix(apiURL, "https://"):
		return "wss://" + strings.TrimPrefix(apiURL, "https://") + "/ws/orders"
	case strings.HasPrefix(apiURL, "http://"):
		return "ws://" + strings.TrimPrefix(apiURL, "http://") + "/ws/orders"
	}
	return apiURL + "/ws/orders"
}

func defaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".stockroom-credentials.json"
	}
	return filepath.Join(dir, "stockroom", "credentials.json")
}
