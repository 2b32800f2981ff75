package config

import (
	"log"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port          string          `env:"PORT" envDefault:"8080"`
	DBDSN         string          `env:"DB_DSN" envDefault:"aaf11.db"`
	MediaDir      string          `env:"MEDIA_DIR" envDefault:"./data/media"`
	LogFile       string          `env:"LOG_FILE"`
	CORSOrigins   string          `env:"CORS_ORIGINS" envDefault:"*"`
	RateLimit     int             `env:"RATE_LIMIT" envDefault:"60"`
	MinDeposit    decimal.Decimal `env:"MIN_DEPOSIT" envDefault:"200.00"`
	MaxProofBytes int             `env:"MAX_PROOF_BYTES" envDefault:"5242880"`
	NotifyTo      []string        `env:"NOTIFY_TO" envSeparator:","`

	Admin Admin `envPrefix:"ADMIN_"`
	SMTP  SMTP  `envPrefix:"SMTP_"`
	UPI   UPI   `envPrefix:"UPI_"`
}

// Admin is the bootstrap account created at startup when both fields are set.
type Admin struct {
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
}

type SMTP struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

func (s SMTP) Enabled() bool { return s.Host != "" }

type UPI struct {
	Payee string `env:"PAYEE" envDefault:"aaf11@upi"`
	Name  string `env:"NAME" envDefault:"AAF11"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s SMTP_HOST=%s NOTIFY_TO=%s MIN_DEPOSIT=%s",
		cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.LogFile, cfg.SMTP.Host,
		strings.Join(cfg.NotifyTo, ","), cfg.MinDeposit.StringFixed(2))
	return cfg, nil
}
