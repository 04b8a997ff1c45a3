package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache placed in front of
// the read-mostly catalog endpoints (furniture, state configuration).
// Reservation reads are never cached because availability must be
// fresh.  KeyStrategy determines which parts of the request contribute
// to the key.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      map[string]bool{},
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "purobeach:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	for _, m := range envList("CACHE_METHODS", []string{"GET"}) {
		cfg.Methods[strings.ToUpper(m)] = true
	}
	return cfg
}
