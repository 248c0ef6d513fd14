package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const minSecretLen = 32

type Config struct {
	DatabaseURL string

	HTTPAddress   string
	GRPCAddress   string
	HTTPSCertFile string
	HTTPSKeyFile  string

	AllowedOrigins   []string
	AllowCredentials bool

	// JWTSecret may be empty; signing then fails per request.
	JWTSecret           string
	Issuer              string
	SessionTTL          time.Duration
	VerificationCodeTTL time.Duration
	ResetCodeTTL        time.Duration
	PasswordPepper      string

	RedisAddress  string
	RedisPassword string
	RedisDB       int
	FeedCacheTTL  time.Duration

	APIBaseURL     string
	StorageBackend string
	UploadDir      string
	MaxUploadBytes int64
	S3             S3Config

	SMTP SMTPConfig

	Log LogConfig
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

type SMTPConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	From               string
	MaxConns           int
	Timeout            time.Duration
	InsecureSkipVerify bool
}

func (s SMTPConfig) Enabled() bool { return s.Host != "" }

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func Load() (*Config, error) {
	// .env is optional; real environment wins.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("GRPC_ADDRESS", ":50051")
	v.SetDefault("JWT_ISSUER", "community-service")
	v.SetDefault("SESSION_TTL", "1h")
	v.SetDefault("VERIFICATION_CODE_TTL", "15m")
	v.SetDefault("RESET_CODE_TTL", "30m")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("FEED_CACHE_TTL", "30s")
	v.SetDefault("STORAGE_BACKEND", "local")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_MAX_CONNS", 2)
	v.SetDefault("SMTP_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 5)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:      v.GetString("DATABASE_URL"),
		HTTPAddress:      v.GetString("HTTP_ADDRESS"),
		GRPCAddress:      v.GetString("GRPC_ADDRESS"),
		HTTPSCertFile:    v.GetString("HTTPS_CERT_FILE"),
		HTTPSKeyFile:     v.GetString("HTTPS_KEY_FILE"),
		AllowCredentials: v.GetBool("ALLOW_CREDENTIALS"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		Issuer:           v.GetString("JWT_ISSUER"),
		PasswordPepper:   v.GetString("PASSWORD_PEPPER"),
		RedisAddress:     v.GetString("REDIS_ADDRESS"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		APIBaseURL:       strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		StorageBackend:   strings.ToLower(v.GetString("STORAGE_BACKEND")),
		UploadDir:        v.GetString("UPLOAD_DIR"),
		MaxUploadBytes:   v.GetInt64("MAX_UPLOAD_BYTES"),
		S3: S3Config{
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			PublicURL: strings.TrimRight(v.GetString("S3_PUBLIC_URL"), "/"),
		},
		SMTP: SMTPConfig{
			Host:               v.GetString("SMTP_HOST"),
			Port:               v.GetInt("SMTP_PORT"),
			Username:           v.GetString("SMTP_USERNAME"),
			Password:           v.GetString("SMTP_PASSWORD"),
			From:               v.GetString("SMTP_FROM"),
			MaxConns:           v.GetInt("SMTP_MAX_CONNS"),
			InsecureSkipVerify: v.GetBool("SMTP_INSECURE_SKIP_VERIFY"),
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
	}

	var err error
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SESSION_TTL", &cfg.SessionTTL},
		{"VERIFICATION_CODE_TTL", &cfg.VerificationCodeTTL},
		{"RESET_CODE_TTL", &cfg.ResetCodeTTL},
		{"FEED_CACHE_TTL", &cfg.FeedCacheTTL},
		{"SMTP_TIMEOUT", &cfg.SMTP.Timeout},
	}
	for _, d := range durations {
		if *d.dst, err = time.ParseDuration(v.GetString(d.key)); err != nil {
			return nil, fmt.Errorf("%s: %w", d.key, err)
		}
		if *d.dst <= 0 {
			return nil, fmt.Errorf("%s must be positive", d.key)
		}
	}

	if cfg.AllowedOrigins, err = parseList(v.GetString("ALLOWED_ORIGINS")); err != nil {
		return nil, fmt.Errorf("ALLOWED_ORIGINS: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < minSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLen)
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	switch c.StorageBackend {
	case "local":
		if c.UploadDir == "" {
			return errors.New("UPLOAD_DIR is not set")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.SMTP.Enabled() && c.SMTP.From == "" {
		return errors.New("SMTP_FROM is required when SMTP_HOST is set")
	}
	return nil
}

// parseList accepts either a JSON array or a comma separated list.
func parseList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
