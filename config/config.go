package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSQLite    = "sqlite"
	BackendPostgREST = "postgrest"
)

type AppConfig struct {
	Port     string
	Timezone string
	DBPath   string

	StoreBackend string
	RESTURL      string
	RESTAnonKey  string

	Areas       []string
	DefaultArea string
	RowsPerArea int
	Locale      string
	CatalogSeed string

	GeminiAPIKey string
	GeminiModel  string
	LLMEndpoint  string
	LLMAPIKey    string
	LLMModel     string

	LogLevel string
	LogDev   bool

	// DevUser keys requests that carry no user id. Empty rejects them.
	DevUser string
	// SessionIdle drops planner sessions unused for this long; 0 keeps them.
	SessionIdle time.Duration
}

// Load reads .env (when present) and the environment. Files are optional;
// envFiles overrides the default ".env".
func Load(envFiles ...string) (AppConfig, error) {
	_ = godotenv.Load(envFiles...)
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function, usually os.Getenv.
func FromEnv(getenv func(string) string) (AppConfig, error) {
	get := func(k, def string) string {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
		return def
	}

	cfg := AppConfig{
		Port:         get("PORT", "8080"),
		Timezone:     get("TZ", "UTC"),
		DBPath:       get("DB_PATH", "garden.db"),
		StoreBackend: strings.ToLower(get("STORE_BACKEND", BackendSQLite)),
		RESTURL:      get("REST_URL", ""),
		RESTAnonKey:  get("REST_ANON_KEY", ""),
		Areas:        splitList(get("GARDEN_AREAS", "エリアA,エリアB")),
		Locale:       get("LOCALE", "ja"),
		CatalogSeed:  get("CATALOG_SEED", ""),
		GeminiAPIKey: get("GEMINI_API_KEY", ""),
		GeminiModel:  get("GEMINI_MODEL", "gemini-2.5-pro"),
		LLMEndpoint:  get("LLM_ENDPOINT", ""),
		LLMAPIKey:    get("LLM_API_KEY", ""),
		LLMModel:     get("LLM_MODEL", "gpt-4o-mini"),
		LogLevel:     get("LOG_LEVEL", "info"),
		DevUser:      get("DEV_USER", "U_DEV_DEFAULT"),
	}

	var err error
	if cfg.RowsPerArea, err = strconv.Atoi(get("ROWS_PER_AREA", "10")); err != nil || cfg.RowsPerArea <= 0 {
		return cfg, fmt.Errorf("ROWS_PER_AREA must be a positive integer, got %q", getenv("ROWS_PER_AREA"))
	}
	if cfg.LogDev, err = strconv.ParseBool(get("LOG_DEV", "false")); err != nil {
		return cfg, fmt.Errorf("LOG_DEV: %w", err)
	}
	if cfg.SessionIdle, err = time.ParseDuration(get("SESSION_IDLE", "24h")); err != nil || cfg.SessionIdle < 0 {
		return cfg, fmt.Errorf("SESSION_IDLE must be a non-negative duration, got %q", getenv("SESSION_IDLE"))
	}
	if cfg.DevUser == "-" {
		cfg.DevUser = ""
	}
	if len(cfg.Areas) == 0 {
		return cfg, fmt.Errorf("GARDEN_AREAS must name at least one area")
	}
	cfg.DefaultArea = get("DEFAULT_AREA", cfg.Areas[0])
	if !contains(cfg.Areas, cfg.DefaultArea) {
		return cfg, fmt.Errorf("DEFAULT_AREA %q is not one of %v", cfg.DefaultArea, cfg.Areas)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return cfg, fmt.Errorf("TZ: %w", err)
	}

	switch cfg.StoreBackend {
	case BackendSQLite:
	case BackendPostgREST:
		if cfg.RESTURL == "" || cfg.RESTAnonKey == "" {
			return cfg, fmt.Errorf("REST_URL and REST_ANON_KEY are required for STORE_BACKEND=%s", BackendPostgREST)
		}
	default:
		return cfg, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	return cfg, nil
}

// Location is the zone "today" is observed in. Load has already validated it.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Redacted returns a copy with secrets masked, safe to log.
func (c AppConfig) Redacted() AppConfig {
	c.RESTAnonKey = mask(c.RESTAnonKey)
	c.GeminiAPIKey = mask(c.GeminiAPIKey)
	c.LLMAPIKey = mask(c.LLMAPIKey)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
