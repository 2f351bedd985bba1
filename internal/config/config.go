// Package config loads server settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ecinar/route-tracker/internal/db"
	"github.com/ecinar/route-tracker/internal/geo"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port            int
	DBPath          string
	JWTSecret       string
	TokenTTL        time.Duration
	NearbyThreshold float64 // meters
	LocationTimeout time.Duration
	StoreTimeout    time.Duration
	CORSOrigins     []string
	DevMode         bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first; real environment variables win.
func Load() (*Config, error) {
	// Missing .env is normal outside development.
	_ = godotenv.Load()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		var err error
		if dbPath, err = db.DefaultPath(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Port:            getInt("PORT", 8080),
		DBPath:          dbPath,
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        getDuration("TOKEN_TTL", 24*time.Hour),
		NearbyThreshold: getFloat("NEARBY_THRESHOLD_M", geo.DefaultThresholdMeters),
		LocationTimeout: getDuration("LOCATION_TIMEOUT", 10*time.Second),
		StoreTimeout:    getDuration("STORE_TIMEOUT", 5*time.Second),
		CORSOrigins:     getList("CORS_ORIGINS", []string{"*"}),
		DevMode:         getBool("DEV_MODE", false),
	}

	if cfg.JWTSecret == "" {
		if !cfg.DevMode {
			return nil, fmt.Errorf("JWT_SECRET is required outside dev mode")
		}
		cfg.JWTSecret = "dev-secret-do-not-use-in-production"
	}
	if cfg.NearbyThreshold <= 0 {
		return nil, fmt.Errorf("NEARBY_THRESHOLD_M must be positive, got %v", cfg.NearbyThreshold)
	}

	return cfg, nil
}

func getInt(key string, fallback int) int {
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

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
