package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	JWTSecret     string
	AllowedOrigin string
	SessionTTL    time.Duration
	// Upstream shipping API
	UpstreamURL     string
	UpstreamTimeout time.Duration
	// DB Config (optional, sessions fall back to memory when DBUrl is empty)
	DBUrl             string
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	// Cache
	CacheBaseCatalogTTL time.Duration
	WorkspaceIdleTTL    time.Duration
	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
	// Tariff rules
	ZoneCount             int
	DefaultGroupageMarkup float64
}

func LoadConfig() *Config {
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// .env is optional; container deployments rely on system env vars.
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSecret:     getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		SessionTTL:    getDurationEnv("SESSION_TTL", 24*time.Hour),

		UpstreamURL:     strings.TrimRight(getEnv("UPSTREAM_API_URL", ""), "/"),
		UpstreamTimeout: getDurationEnv("UPSTREAM_TIMEOUT", 15*time.Second),

		DBUrl:             getEnv("DB_DSN", ""),
		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 10),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 2),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", 15*time.Minute),

		CacheBaseCatalogTTL: getDurationEnv("CACHE_BASE_CATALOG_TTL", 10*time.Minute),
		WorkspaceIdleTTL:    getDurationEnv("WORKSPACE_IDLE_TTL", 2*time.Hour),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 40),

		ZoneCount:             getIntEnv("ZONE_COUNT", 8),
		DefaultGroupageMarkup: getFloatEnv("DEFAULT_GROUPAGE_MARKUP", 15),
	}

	cfg.Validate()
	return cfg
}

func (c *Config) Validate() {
	if c.UpstreamURL == "" {
		log.Fatal("CRITICAL: UPSTREAM_API_URL environment variable is required")
	}
	if c.ZoneCount <= 0 {
		log.Fatal("CRITICAL: ZONE_COUNT must be a positive integer")
	}
	if c.DefaultGroupageMarkup < 0 {
		log.Fatal("CRITICAL: DEFAULT_GROUPAGE_MARKUP cannot be negative")
	}
	if c.JWTSecret == "default_secret_CHANGE_ME" {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
	if c.DBUrl == "" {
		log.Println("WARNING: DB_DSN not set, sessions are kept in memory only")
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid float for %s, using fallback", key)
	}
	return fallback
}
