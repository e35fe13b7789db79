// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the server, mirroring the
// database.*/server.*/count.*/music.* option groups.
type Config struct {

	// Database connection
	DatabaseIP       string `env:"DATABASE_IP"       envDefault:"127.0.0.1"`
	DatabasePort     int    `env:"DATABASE_PORT"     envDefault:"5432"`
	DatabaseUser     string `env:"DATABASE_USER,required"`
	DatabasePassword string `env:"DATABASE_PASSWORD,required"`
	DatabaseName     string `env:"DATABASE_NAME,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`

	// Key-Value cache used for the login rate-limit sliding window.
	RedisURL string `env:"REDIS_URL,required"`

	// Server settings
	ServerPort                       string `env:"SERVER_PORT"                            envDefault:"8080"`
	Environment                      string `env:"ENVIRONMENT"                            envDefault:"development"`
	ServerLog                        string `env:"SERVER_LOG"                             envDefault:"info"`
	LoginCookieValidDurationSeconds  int    `env:"LOGIN_COOKIE_VALID_DURATION_SECONDS"    envDefault:"2592000"`
	UserUploadsDir                   string `env:"USER_UPLOADS_DIR"                       envDefault:"./data/uploads"`
	UserUploadsDirTmp                string `env:"USER_UPLOADS_DIR_TMP"                   envDefault:"./data/uploads_tmp"`
	RequestQuota                     int    `env:"REQUEST_QUOTA"                          envDefault:"150"`
	RequestQuotaReplenishMs          int    `env:"REQUEST_QUOTA_REPLENISH_MS"              envDefault:"10"`
	LoginAttemptWindowSeconds        int    `env:"LOGIN_ATTEMPT_WINDOW_SECONDS"           envDefault:"300"`
	LoginAttemptMaxPerWindow         int    `env:"LOGIN_ATTEMPT_MAX_PER_WINDOW"           envDefault:"5"`

	// Credential policy: login applies MaxPasswordLength; MinPasswordLength
	// is not read by this server.
	MinPasswordLength int `env:"MIN_PASSWORD_LENGTH" envDefault:"8"`
	MaxPasswordLength int `env:"MAX_PASSWORD_LENGTH" envDefault:"128"`

	// Music ingestion admission control
	MaxSongsInQueue int `env:"MAX_SONGS_IN_QUEUE" envDefault:"50"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins splits the comma-separated EXTRA_ORIGINS setting into a
// list of origins the CORS middleware should allow in production.
func (c *Config) AllowedOrigins() []string {
	if c.ExtraOrigins == "" {
		return nil
	}
	origins := strings.Split(c.ExtraOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

// DatabaseDSN builds the libpq connection string pgxpool expects.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		c.DatabaseUser, c.DatabasePassword, c.DatabaseIP, c.DatabasePort, c.DatabaseName)
}
