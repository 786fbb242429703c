// Package dbconfig reads Postgres connection settings from the
// environment. Main loads .env first, so a local checkout only needs a
// .env file and production only needs real env vars.
package dbconfig

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Config holds Postgres connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// MaxConns caps the pgx pool size. Zero leaves pgx's default.
	MaxConns int
}

// NewConfigFromEnv reads DB_* environment variables with local-dev
// defaults.
func NewConfigFromEnv() Config {
	return Config{
		Host:     envOr("DB_HOST", "localhost"),
		Port:     envIntOr("DB_PORT", 5432),
		User:     envOr("DB_USER", "postgres"),
		Password: envOr("DB_PASSWORD", "postgres"),
		Database: envOr("DB_NAME", "popqiz"),
		SSLMode:  envOr("DB_SSLMODE", "disable"),
		MaxConns: envIntOr("DB_POOL_MAX_CONNS", 0),
	}
}

// DSN returns the connection URL. Pool sizing rides along as a query
// parameter, which pgxpool parses natively.
func (c Config) DSN() string {
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	if c.MaxConns > 0 {
		q.Set("pool_max_conns", strconv.Itoa(c.MaxConns))
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password),
		c.Host, c.Port, c.Database, q.Encode(),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
