// Package config loads application configuration from environment
// variables.  Required variables are collected and reported together;
// optional ones fall back to defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the core runtime values.  Each field corresponds to an
// environment variable.
type Config struct {
	Env            string // application environment (dev, test, prod)
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	DBMaxOpenConns int    // connection pool size
	AutoMigrate    bool   // apply the embedded schema at startup
	JWTSecret      string // HS256 secret shared with the identity service
}

// loader accumulates problems so that every missing variable is
// reported at once.
type loader struct {
	missing []string
	invalid []string
}

// must retrieves the value of a required environment variable.
func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		l.missing = append(l.missing, key)
		return ""
	}
	return v
}

// mustInt is like must() but converts the value into an integer.
func (l *loader) mustInt(key string) int {
	s := l.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		l.invalid = append(l.invalid, fmt.Sprintf("%s=%q", key, s))
	}
	return n
}

func (l *loader) err() error {
	var errs []error
	if len(l.missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required env vars: %s", strings.Join(l.missing, ", ")))
	}
	if len(l.invalid) > 0 {
		errs = append(errs, fmt.Errorf("invalid int env vars: %s", strings.Join(l.invalid, ", ")))
	}
	return errors.Join(errs...)
}

// Load reads the core configuration.  It fails listing every required
// variable that is unset or malformed.
func Load() (Config, error) {
	l := &loader{}
	cfg := Config{
		Env:            l.must("APP_ENV"),
		Port:           l.must("APP_PORT"),
		DBUser:         l.must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         l.must("DB_HOST"),
		DBPort:         l.must("DB_PORT"),
		DBName:         l.must("DB_NAME"),
		DBMaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 25),
		AutoMigrate:    envBool("DB_AUTO_MIGRATE", false),
		JWTSecret:      l.must("JWT_SECRET"),
	}
	if err := l.err(); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxOpenConns < 1 {
		cfg.DBMaxOpenConns = 1
	}
	return cfg, nil
}
