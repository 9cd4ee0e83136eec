package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	LogLevel string
	HTTPPort string

	DatabaseURL string
	AMQPURL     string

	SMTP SMTPConfig

	AdminEmail     string
	APIKey         string
	AppURL         string
	WhatsAppNumber string
	CORSOrigins    []string

	JWTSecret string
	JWTTTL    time.Duration

	S3 S3Config

	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	AccessSweepInterval time.Duration
	IntakeRatePerMinute int
}

type SMTPConfig struct {
	Service  string
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

// Enabled reports whether receipt uploads can be served.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("app_env", "production")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_port", "8080")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("app_url", "http://localhost:5173")
	v.SetDefault("jwt_ttl_hours", 12)
	v.SetDefault("cors_origins", "http://localhost:5173")
	v.SetDefault("access_sweep_interval", "1h")
	v.SetDefault("intake_rate_per_minute", 10)
	v.SetDefault("s3_region", "us-east-1")
	v.AutomaticEnv()

	for _, key := range []string{
		"database_url", "amqp_url", "smtp_service", "smtp_host", "smtp_user", "smtp_pass",
		"mail_from", "admin_email", "api_key", "whatsapp_number", "jwt_secret", "s3_bucket",
		"aws_access_key_id", "aws_secret_access_key", "s3_public_base_url",
		"bootstrap_admin_email", "bootstrap_admin_password",
	} {
		v.SetDefault(key, "")
	}
	return v
}

// FromViper builds the config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:         strings.ToLower(v.GetString("app_env")),
		LogLevel:    v.GetString("log_level"),
		HTTPPort:    v.GetString("http_port"),
		DatabaseURL: v.GetString("database_url"),
		AMQPURL:     v.GetString("amqp_url"),
		SMTP: SMTPConfig{
			Service:  v.GetString("smtp_service"),
			Host:     v.GetString("smtp_host"),
			Port:     v.GetInt("smtp_port"),
			User:     v.GetString("smtp_user"),
			Password: v.GetString("smtp_pass"),
			From:     v.GetString("mail_from"),
		},
		AdminEmail:     v.GetString("admin_email"),
		APIKey:         v.GetString("api_key"),
		AppURL:         strings.TrimRight(v.GetString("app_url"), "/"),
		WhatsAppNumber: v.GetString("whatsapp_number"),
		CORSOrigins:    splitList(v.GetString("cors_origins")),
		JWTSecret:      v.GetString("jwt_secret"),
		JWTTTL:         time.Duration(v.GetInt("jwt_ttl_hours")) * time.Hour,
		S3: S3Config{
			Bucket:          v.GetString("s3_bucket"),
			Region:          v.GetString("s3_region"),
			AccessKeyID:     v.GetString("aws_access_key_id"),
			SecretAccessKey: v.GetString("aws_secret_access_key"),
			PublicBaseURL:   v.GetString("s3_public_base_url"),
		},
		BootstrapAdminEmail:    v.GetString("bootstrap_admin_email"),
		BootstrapAdminPassword: v.GetString("bootstrap_admin_password"),
		AccessSweepInterval:    v.GetDuration("access_sweep_interval"),
		IntakeRatePerMinute:    v.GetInt("intake_rate_per_minute"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL_HOURS must be positive")
	}
	if cfg.AccessSweepInterval <= 0 {
		return nil, fmt.Errorf("ACCESS_SWEEP_INTERVAL must be a positive duration")
	}
	if cfg.IntakeRatePerMinute <= 0 {
		cfg.IntakeRatePerMinute = 10
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
