package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const devJWTSecret = "dev-secret-change-me"

type Config struct {
	Port string `yaml:"port"`

	// StateURL picks the durable store: a directory, file://, sqlite://,
	// postgres:// or gs://bucket/prefix.
	StateURL           string `yaml:"state_url"`
	StateWriteBehind   string `yaml:"state_write_behind"`
	GCSCredentialsFile string `yaml:"gcs_credentials_file"`

	AdminPasswordHash string        `yaml:"admin_password_hash"`
	JWTSecret         string        `yaml:"jwt_secret"`
	AdminTokenTTL     time.Duration `yaml:"admin_token_ttl"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	VoteRatePerSec   float64  `yaml:"vote_rate_per_sec"`
	VoteBurst        int      `yaml:"vote_burst"`
	WSAllowedOrigins []string `yaml:"ws_allowed_origins"`
}

func defaults() Config {
	return Config{
		Port:             "8080",
		StateURL:         "./data",
		StateWriteBehind: "auto",
		JWTSecret:        devJWTSecret,
		AdminTokenTTL:    12 * time.Hour,
		LogLevel:         "info",
		LogFormat:        "text",
		VoteRatePerSec:   5,
		VoteBurst:        10,
		WSAllowedOrigins: []string{"*"},
	}
}

// Load reads .env, then the optional YAML file named by CONFIG_FILE, then
// environment variables. Later sources win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = getEnv("APP_PORT", cfg.Port)
	cfg.StateURL = getEnv("STATE_URL", cfg.StateURL)
	cfg.StateWriteBehind = strings.ToLower(getEnv("STATE_WRITE_BEHIND", cfg.StateWriteBehind))
	cfg.GCSCredentialsFile = getEnv("GCS_CREDENTIALS_FILE", cfg.GCSCredentialsFile)
	cfg.AdminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", cfg.AdminPasswordHash)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	var err error
	if cfg.AdminTokenTTL, err = getDuration("ADMIN_TOKEN_TTL", cfg.AdminTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.VoteRatePerSec, err = getFloat("VOTE_RATE_PER_SEC", cfg.VoteRatePerSec); err != nil {
		return Config{}, err
	}
	if cfg.VoteBurst, err = getInt("VOTE_BURST", cfg.VoteBurst); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("WS_ALLOWED_ORIGINS"); v != "" {
		cfg.WSAllowedOrigins = splitList(v)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WriteBehind reports whether state writes should leave the request path.
// "auto" enables it for remote stores only.
func (c Config) WriteBehind(remote bool) bool {
	switch c.StateWriteBehind {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return remote
	}
}

func (c Config) validate() error {
	if c.AdminPasswordHash != "" && (c.JWTSecret == "" || c.JWTSecret == devJWTSecret) {
		return errors.New("JWT_SECRET must be set to a private value when ADMIN_PASSWORD_HASH is set")
	}
	if c.AdminTokenTTL <= 0 {
		return errors.New("ADMIN_TOKEN_TTL must be positive")
	}
	if c.VoteRatePerSec <= 0 || c.VoteBurst <= 0 {
		return errors.New("VOTE_RATE_PER_SEC and VOTE_BURST must be positive")
	}
	switch c.StateWriteBehind {
	case "auto", "true", "1", "yes", "on", "false", "0", "no", "off":
	default:
		return fmt.Errorf("invalid STATE_WRITE_BEHIND %q", c.StateWriteBehind)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
