package config

import (
	"os"
	"strconv"
	"time"
)

// AppConfig holds the dashboard server settings
type AppConfig struct {
	Env            string
	Port           string
	APIURL         string
	APITimeout     time.Duration
	SearchDebounce time.Duration
	PageSize       int
	CORSOrigin     string
}

// DevAPIConfig holds the settings of the in-memory development backend
type DevAPIConfig struct {
	Env                string
	Port               string
	JWTSecret          string
	JWTExpirationHours int64
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// LoadAppConfig reads the dashboard configuration from the environment
func LoadAppConfig() AppConfig {
	return AppConfig{
		Env:            env("APP_ENV", "dev"),
		Port:           env("SERVER_PORT", "8080"),
		APIURL:         env("API_URL", "http://localhost:5000"),
		APITimeout:     envDuration("API_TIMEOUT", 15*time.Second),
		SearchDebounce: envDuration("SEARCH_DEBOUNCE", 600*time.Millisecond),
		PageSize:       envInt("PAGE_SIZE", 10),
		CORSOrigin:     env("CORS_ORIGIN", "*"),
	}
}

// LoadDevAPIConfig reads the development backend configuration from the environment
func LoadDevAPIConfig() DevAPIConfig {
	return DevAPIConfig{
		Env:                env("APP_ENV", "dev"),
		Port:               env("DEVAPI_PORT", "5000"),
		JWTSecret:          env("JWT_SECRET_KEY", "meganote-dev-secret"),
		JWTExpirationHours: int64(envInt("JWT_EXPIRATION_HOURS", 24)),
	}
}
