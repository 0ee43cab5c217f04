package config

import (
	"log"
	"os"
	"strconv"
)

func getInt32Env(key string, fallback int32) int32 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
		log.Printf("Invalid int32 for %s, using fallback", key)
	}
	return fallback
}

// IsDevelopment reports whether the service runs with developer defaults
// (pretty console logs, permissive CORS in local setups).
func (c *Config) IsDevelopment() bool {
	switch c.Env {
	case "", "dev", "development":
		return true
	}
	return false
}
