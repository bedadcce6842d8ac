// Package config loads server settings from an optional .env file,
// environment variables and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/and161185/salesgate/internal/errs"
	"github.com/joho/godotenv"
)

// Config holds validated runtime settings. It is not modified after Load.
type Config struct {
	HTTPAddr          string
	GRPCAddr          string
	DatabaseDSN       string
	EncryptionKey     string
	JWTSecret         string
	JWTIssuer         string
	AccessTTL         time.Duration
	InactivityTimeout time.Duration
	ActivityRetention time.Duration
	// CleanupAt is the daily run time as an offset from local midnight.
	CleanupAt time.Duration
	ResetTTL  time.Duration
	LogLevel  string
}

// Load reads .env (if present), then the environment, then parses args
// (without the program name). Invalid or missing settings yield errs.ErrConfiguration.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %w", errs.ErrConfiguration, err)
	}

	var (
		cfg                      Config
		ttlHours, inactivityMins int
		cleanupAt                string
		err                      error
	)
	cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
	cfg.GRPCAddr = getenv("GRPC_ADDR", ":9090")
	cfg.DatabaseDSN = getenv("DATABASE_URL", "")
	cfg.EncryptionKey = getenv("ENCRYPTION_KEY", "")
	cfg.JWTSecret = getenv("JWT_SECRET", "")
	cfg.JWTIssuer = getenv("JWT_ISSUER", "salesgate")
	cleanupAt = getenv("CLEANUP_AT", "00:00")
	cfg.LogLevel = getenv("LOG_LEVEL", "info")
	if ttlHours, err = getInt("JWT_EXPIRATION_HOURS", 24); err != nil {
		return nil, err
	}
	if inactivityMins, err = getInt("INACTIVITY_TIMEOUT_MINUTES", 15); err != nil {
		return nil, err
	}
	if cfg.ActivityRetention, err = getDuration("ACTIVITY_RETENTION", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ResetTTL, err = getDuration("RESET_TOKEN_TTL", time.Hour); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("salesgate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC listen address, empty disables it")
	fs.StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.EncryptionKey, "encryption-key", cfg.EncryptionKey, "base64 AES-256 key for sensitive fields")
	fs.StringVar(&cfg.JWTSecret, "jwt-key", cfg.JWTSecret, "HS256 signing key")
	fs.StringVar(&cfg.JWTIssuer, "jwt-issuer", cfg.JWTIssuer, "token issuer name")
	fs.IntVar(&ttlHours, "access-ttl-hours", ttlHours, "access token TTL, hours")
	fs.IntVar(&inactivityMins, "inactivity-minutes", inactivityMins, "session inactivity timeout, minutes")
	fs.DurationVar(&cfg.ActivityRetention, "activity-retention", cfg.ActivityRetention, "max age of activity records kept by cleanup")
	fs.StringVar(&cleanupAt, "cleanup-at", cleanupAt, "daily cleanup time, HH:MM local")
	fs.DurationVar(&cfg.ResetTTL, "reset-ttl", cfg.ResetTTL, "password reset token TTL")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrConfiguration, err)
	}

	cfg.AccessTTL = time.Duration(ttlHours) * time.Hour
	cfg.InactivityTimeout = time.Duration(inactivityMins) * time.Minute
	if cfg.CleanupAt, err = parseClock(cleanupAt); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var problems []string
	if c.HTTPAddr == "" {
		problems = append(problems, "empty HTTP address")
	}
	if c.DatabaseDSN == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if c.EncryptionKey == "" {
		problems = append(problems, "ENCRYPTION_KEY is required")
	}
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.AccessTTL <= 0 {
		problems = append(problems, "access token TTL must be positive")
	}
	if c.InactivityTimeout <= 0 {
		problems = append(problems, "inactivity timeout must be positive")
	}
	if c.ActivityRetention <= 0 {
		problems = append(problems, "activity retention must be positive")
	}
	if c.ActivityRetention > 0 && c.ActivityRetention <= c.InactivityTimeout {
		// otherwise cleanup drops idle records before the inactivity check can see them
		problems = append(problems, "activity retention must exceed the inactivity timeout")
	}
	if c.ResetTTL <= 0 {
		problems = append(problems, "reset token TTL must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errs.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", errs.ErrConfiguration, key, err)
	}
	return i, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", errs.ErrConfiguration, key, err)
	}
	return d, nil
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: cleanup time %q: want HH:MM", errs.ErrConfiguration, s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
