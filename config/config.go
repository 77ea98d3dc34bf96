// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backend selectors.
const (
	StorePostgres = "postgres"
	StoreFile     = "file"
)

// Config holds all application configuration.
type Config struct {
	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// Store selects the persistence backend: StorePostgres or StoreFile.
	Store string
	// PredictionsFile is the JSON document path for the file backend.
	PredictionsFile string

	// MaxPredictionsPerIP caps submissions per network identity.
	MaxPredictionsPerIP int

	// Server
	Debug      bool
	Port       string
	StaticDir  string
	TLSDomains []string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	v := newViper()

	// Defaults
	v.SetDefault("DB_USER", "bihar")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "predictions")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("STORE", StorePostgres)
	v.SetDefault("PREDICTIONS_FILE", "predictions.json")
	v.SetDefault("MAX_PREDICTIONS_PER_IP", 3)
	v.SetDefault("PORT", ":3000")
	v.SetDefault("STATIC_DIR", "public")
	v.SetDefault("TLS_DOMAINS", "")
	v.SetDefault("DEBUG", false)

	cfg := &Config{
		DatabaseURL:         v.GetString("DATABASE_URL"),
		DBUser:              v.GetString("DB_USER"),
		DBPass:              v.GetString("DB_PASS"),
		DBHost:              v.GetString("DB_HOST"),
		DBPort:              v.GetString("DB_PORT"),
		DBName:              v.GetString("DB_NAME"),
		DBSSLMode:           v.GetString("DB_SSLMODE"),
		Store:               strings.ToLower(v.GetString("STORE")),
		PredictionsFile:     v.GetString("PREDICTIONS_FILE"),
		MaxPredictionsPerIP: v.GetInt("MAX_PREDICTIONS_PER_IP"),
		Debug:               v.GetBool("DEBUG"),
		Port:                v.GetString("PORT"),
		StaticDir:           v.GetString("STATIC_DIR"),
		TLSDomains:          splitTrimmed(v.GetString("TLS_DOMAINS")),
	}

	cfg.validate()
	return cfg
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

func (c *Config) validate() {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" && c.DBPass == "" {
			log.Fatal("config: DATABASE_URL or DB_PASS must be set for the postgres store")
		}
	case StoreFile:
		if c.PredictionsFile == "" {
			log.Fatal("config: PREDICTIONS_FILE must be set for the file store")
		}
	default:
		log.Fatalf("config: unknown STORE %q (want %s or %s)", c.Store, StorePostgres, StoreFile)
	}

	if c.MaxPredictionsPerIP <= 0 {
		log.Fatal("config: MAX_PREDICTIONS_PER_IP must be positive")
	}
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
