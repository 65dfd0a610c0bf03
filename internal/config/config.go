package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/5w1tchy/bookshelf/internal/security/password"
)

type Config struct {
	Env  string // "development" | "production"
	Addr string

	TLSCert string
	TLSKey  string

	DatabaseURL string

	RedisURL      string // full URL, wins over the split fields
	RedisAddr     string
	RedisUser     string
	RedisPassword string

	SessionSecret []byte
	SessionTTL    time.Duration
	CookieSecure  bool

	// FilterEmptyMatchesAll makes an empty search list every book.
	FilterEmptyMatchesAll bool

	LogLevel    string
	MaxBodySize int64

	LoginMaxAttempts int
	LoginWindow      time.Duration

	Argon2 password.Params

	S3     S3Config
	Backup BackupConfig
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// BackupConfig drives the nightly snapshot job. An empty At disables it.
type BackupConfig struct {
	Prefix   string
	At       string // "HH:MM"
	Timezone string
	Keep     int
}

func (c Config) Production() bool { return strings.EqualFold(c.Env, "production") }

// Load reads .env (if present) and the process environment.
// It fails fast on missing or malformed required settings.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// Missing files are fine; the environment may be set another way.
		_ = godotenv.Load(f)
	}
	return FromEnv(os.Getenv)
}

// LoadOps is Load for operator tooling, which only needs the database and
// object storage: Redis and the session secret are not required.
func LoadOps(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
	return build(os.Getenv, false)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	return build(getenv, true)
}

// OpsFromEnv is FromEnv without the web-only requirements.
func OpsFromEnv(getenv func(string) string) (Config, error) {
	return build(getenv, false)
}

func build(getenv func(string) string, web bool) (Config, error) {
	env := func(k, def string) string {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
		return def
	}

	c := Config{
		Env:           env("APP_ENV", "development"),
		Addr:          env("ADDR", ":3000"),
		TLSCert:       env("TLS_CERT", ""),
		TLSKey:        env("TLS_KEY", ""),
		DatabaseURL:   env("DATABASE_URL", ""),
		RedisURL:      env("REDIS_URL", ""),
		RedisAddr:     env("REDIS_ADDR", ""),
		RedisUser:     env("REDIS_USER", ""),
		RedisPassword: env("REDIS_PASSWORD", ""),
		SessionSecret: []byte(env("SESSION_SECRET", "")),
		LogLevel:      env("LOG_LEVEL", "info"),
		S3: S3Config{
			Endpoint:        env("S3_ENDPOINT", ""),
			Region:          env("S3_REGION", "auto"),
			Bucket:          env("S3_BUCKET", ""),
			AccessKeyID:     env("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: env("S3_SECRET_ACCESS_KEY", ""),
		},
		Backup: BackupConfig{
			Prefix:   env("BACKUP_PREFIX", "backups"),
			At:       env("BACKUP_AT", ""),
			Timezone: env("BACKUP_TZ", "UTC"),
		},
	}

	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL not set"))
	}
	if web && c.RedisURL == "" && c.RedisAddr == "" {
		errs = append(errs, errors.New("missing Redis config: set REDIS_URL or REDIS_ADDR"))
	}
	if web && len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters"))
	}

	var err error
	if c.SessionTTL, err = parseDuration(env("SESSION_TTL", "336h")); err != nil {
		errs = append(errs, fmt.Errorf("SESSION_TTL: %w", err))
	}
	if c.LoginWindow, err = parseDuration(env("LOGIN_WINDOW", "5m")); err != nil {
		errs = append(errs, fmt.Errorf("LOGIN_WINDOW: %w", err))
	}
	if c.CookieSecure, err = strconv.ParseBool(env("COOKIE_SECURE", strconv.FormatBool(c.Production()))); err != nil {
		errs = append(errs, fmt.Errorf("COOKIE_SECURE: %w", err))
	}
	if c.FilterEmptyMatchesAll, err = strconv.ParseBool(env("FILTER_EMPTY_MATCHES_ALL", "true")); err != nil {
		errs = append(errs, fmt.Errorf("FILTER_EMPTY_MATCHES_ALL: %w", err))
	}
	if c.MaxBodySize, err = strconv.ParseInt(env("MAX_BODY_SIZE", "1048576"), 10, 64); err != nil || c.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_SIZE: invalid size %q", env("MAX_BODY_SIZE", "")))
	}
	if c.LoginMaxAttempts, err = strconv.Atoi(env("LOGIN_MAX_ATTEMPTS", "10")); err != nil || c.LoginMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("LOGIN_MAX_ATTEMPTS: invalid count %q", env("LOGIN_MAX_ATTEMPTS", "")))
	}
	if c.Backup.Keep, err = strconv.Atoi(env("BACKUP_KEEP", "14")); err != nil || c.Backup.Keep < 1 {
		errs = append(errs, fmt.Errorf("BACKUP_KEEP: invalid count %q", env("BACKUP_KEEP", "")))
	}
	if c.Backup.At != "" {
		if _, err := time.Parse("15:04", c.Backup.At); err != nil {
			errs = append(errs, fmt.Errorf("BACKUP_AT: want HH:MM, got %q", c.Backup.At))
		}
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("BACKUP_AT set but S3_BUCKET is empty"))
		}
	}

	c.Argon2 = password.DefaultParams()
	if err := minUint(env("ARGON2_MEMORY", ""), 65536, &c.Argon2.Memory); err != nil { // >= 64MiB
		errs = append(errs, fmt.Errorf("ARGON2_MEMORY: %w", err))
	}
	if err := minUint(env("ARGON2_ITER", ""), 2, &c.Argon2.Iterations); err != nil {
		errs = append(errs, fmt.Errorf("ARGON2_ITER: %w", err))
	}
	par := uint32(c.Argon2.Parallelism)
	if err := minUint(env("ARGON2_PAR", ""), 1, &par); err != nil || par > 255 {
		errs = append(errs, errors.New("ARGON2_PAR: must be 1..255"))
	}
	c.Argon2.Parallelism = uint8(par)

	return c, errors.Join(errs...)
}

// HardeningWarnings returns non-fatal warnings worth logging on startup.
func (c Config) HardeningWarnings(getenv func(string) string) []string {
	var warns []string
	if c.SessionTTL > 30*24*time.Hour {
		warns = append(warns, fmt.Sprintf("SESSION_TTL=%s is > 30 days; saved searches and logins linger", c.SessionTTL))
	}
	if !c.Production() {
		return warns
	}
	if !c.CookieSecure {
		warns = append(warns, "COOKIE_SECURE=false in production; session cookies travel over plain HTTP")
	}
	if getenv("ARGON2_MEMORY") == "" || getenv("ARGON2_ITER") == "" {
		warns = append(warns, "ARGON2_* not explicitly set; using code defaults. Set strong values in production")
	}
	if strings.HasPrefix(c.RedisURL, "redis://") {
		warns = append(warns, "REDIS_URL uses redis:// (no TLS). Prefer rediss:// for TLS")
	}
	if c.RedisURL == "" && (c.RedisUser == "" || c.RedisPassword == "") {
		warns = append(warns, "REDIS_ADDR provided without REDIS_USER/REDIS_PASSWORD; require auth in production")
	}
	if c.TLSCert == "" || c.TLSKey == "" {
		warns = append(warns, "TLS_CERT/TLS_KEY not set; expecting TLS termination in front of the server")
	}
	return warns
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// minUint parses v into dst when set, enforcing a lower bound.
func minUint(v string, min uint32, dst *uint32) error {
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return fmt.Errorf("not a number: %v", err)
	}
	if uint32(n) < min {
		return fmt.Errorf("must be >= %d", min)
	}
	*dst = uint32(n)
	return nil
}
