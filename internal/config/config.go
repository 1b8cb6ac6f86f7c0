package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all configuration for the application.
type Config struct {
	// Addr is the listen address for the HTTP server, e.g. ":5000".
	Addr string

	// SurrealDB connection settings for the user/group directory.
	DBUrl  string
	DBNs   string
	DBDb   string
	DBUser string
	DBPass string

	// UploadDir is the directory uploaded files are stored under.
	UploadDir string
	// MaxUploadBytes caps the size of a single uploaded file.
	MaxUploadBytes int64
}

const defaultMaxUploadBytes = 25 << 20 // 25 MiB

// New loads configuration from environment variables.
func New() *Config {
	cfg := &Config{
		Addr:           envOr("ADDR", ":5000"),
		DBUrl:          os.Getenv("SURREAL_URL"),
		DBUser:         os.Getenv("SURREAL_USER"),
		DBPass:         os.Getenv("SURREAL_PASS"),
		DBNs:           os.Getenv("SURREAL_NS"),
		DBDb:           os.Getenv("SURREAL_DB"),
		UploadDir:      envOr("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: envInt64Or("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
	}

	if cfg.DBUrl == "" || cfg.DBNs == "" || cfg.DBDb == "" {
		log.Fatal("Required environment variables SURREAL_URL, SURREAL_NS, or SURREAL_DB are not set.")
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default", key, v)
		return fallback
	}
	return n
}
