package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Env         string `env:"ENV" envDefault:"development"`
	DatabaseURL string `env:"DATABASE_URL"`

	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer       string        `env:"JWT_ISSUER" envDefault:"gather-api"`
	JWTAccessExpiry time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"15m"`

	// BaseURL is used to build the response links embedded in invitation emails.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	Mail    MailConfig    `envPrefix:"MAIL_"`
	SMTP    SMTPConfig    `envPrefix:"SMTP_"`
	SES     SESConfig     `envPrefix:"SES_"`
	Mailgun MailgunConfig `envPrefix:"MAILGUN_"`
	Redis   RedisConfig   `envPrefix:"REDIS_"`
	Notify  NotifyConfig  `envPrefix:"NOTIFY_"`

	StatusSweepInterval time.Duration `env:"STATUS_SWEEP_INTERVAL" envDefault:"30s"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string `env:"LOG_FILE"`
	MetricsAddr string `env:"METRICS_ADDR"`
}

// MailConfig selects the transport used for invitation emails.
// Provider is one of smtp, ses, mailgun or noop.
type MailConfig struct {
	Provider string `env:"PROVIDER" envDefault:"smtp"`
	From     string `env:"FROM"`
	FromName string `env:"FROM_NAME" envDefault:"Gather"`
}

type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

type SESConfig struct {
	Region          string `env:"REGION" envDefault:"eu-west-1"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
}

type MailgunConfig struct {
	Domain string `env:"DOMAIN"`
	APIKey string `env:"API_KEY"`
	EU     bool   `env:"EU"`
}

// RedisConfig enables the Redis backed notification queue when Addr is set.
type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Key      string `env:"QUEUE_KEY" envDefault:"gather:notifications"`
}

type NotifyConfig struct {
	Workers     int `env:"WORKERS" envDefault:"2"`
	MaxAttempts int `env:"MAX_ATTEMPTS" envDefault:"3"`
	BufferSize  int `env:"BUFFER_SIZE" envDefault:"256"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be blank")
	}

	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.SMTP.From
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
