package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	DSN string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type EmailConfig struct {
	SMTPHost     string        `yaml:"smtp_host"`
	SMTPPort     int           `yaml:"smtp_port"`
	SMTPUser     string        `yaml:"smtp_user"`
	SMTPPassword string        `yaml:"smtp_password"`
	FromEmail    string        `yaml:"from_email"`
	FromName     string        `yaml:"from_name"`
	SendTimeout  time.Duration `yaml:"send_timeout"`
	MaxAttempts  int           `yaml:"max_attempts"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

type VerificationConfig struct {
	TTL   time.Duration `yaml:"ttl"`
	Store string        `yaml:"store"` // memory | redis
}

type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
	ResetTokenTTL  time.Duration `yaml:"reset_token_ttl"`
	ResetURL       string        `yaml:"reset_url"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Email        EmailConfig        `yaml:"email"`
	Verification VerificationConfig `yaml:"verification"`
	Auth         AuthConfig         `yaml:"auth"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
	Log          LogConfig          `yaml:"log"`
}

// Load читает yaml-файл, подмешивает .env и переменные окружения, проставляет дефолты.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	// .env необязателен
	_ = godotenv.Load()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	overrideString(&c.Database.DSN, "DATABASE_URL")
	overrideString(&c.Redis.Addr, "REDIS_ADDR")
	overrideString(&c.Redis.Password, "REDIS_PASSWORD")
	overrideString(&c.Email.SMTPUser, "SMTP_USER")
	overrideString(&c.Email.SMTPPassword, "SMTP_PASSWORD")
	overrideString(&c.Auth.JWTSecret, "JWT_SECRET")
}

func overrideString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3001
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.FromEmail == "" {
		c.Email.FromEmail = c.Email.SMTPUser
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "SAMURAI JAPANESE APP"
	}
	if c.Email.SendTimeout <= 0 {
		c.Email.SendTimeout = 10 * time.Second
	}
	if c.Email.MaxAttempts <= 0 {
		c.Email.MaxAttempts = 3
	}
	if c.Email.RetryBackoff <= 0 {
		c.Email.RetryBackoff = 500 * time.Millisecond
	}
	if c.Verification.TTL <= 0 {
		c.Verification.TTL = 5 * time.Minute
	}
	if c.Verification.Store == "" {
		c.Verification.Store = "memory"
	}
	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.ResetTokenTTL <= 0 {
		c.Auth.ResetTokenTTL = time.Hour
	}
	if c.Auth.ResetURL == "" {
		c.Auth.ResetURL = "http://localhost:5173/reset-password"
	}
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = 5
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) Validate() error {
	switch c.Verification.Store {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("verification.store=redis requires redis.addr")
		}
	default:
		return fmt.Errorf("unknown verification.store %q", c.Verification.Store)
	}
	if c.Email.SMTPHost == "" {
		return errors.New("email.smtp_host is required")
	}
	if c.Database.DSN != "" && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required when database.url is set")
	}
	return nil
}

// AccountsEnabled — есть ли постоянное хранилище аккаунтов.
func (c *Config) AccountsEnabled() bool {
	return c.Database.DSN != ""
}
