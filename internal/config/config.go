package config

import (
	"os"
	"time"

	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"github.com/caarlos0/env"
	"go.uber.org/zap"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultReportHour   = 10
	defaultAccessTTL    = 15 * time.Minute
	defaultRefreshTTL   = 7 * 24 * time.Hour
)

type Config struct {
	Address string `env:"RUN_ADDRESS"`

	DatabaseDNS string `env:"DATABASE_URI"`

	SupplierURL    string `env:"SUPPLIER_URL"`
	SupplierAPIKey string `env:"SUPPLIER_API_KEY"`

	FrontendURL   string `env:"FRONTEND_URL"`
	FrontendToken string `env:"FRONTEND_TOKEN"`
	// APIToken authenticates the front-end when it calls us.
	APIToken  string `env:"API_TOKEN"`
	JWTSecret string `env:"JWT_SECRET"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL"`

	CatalogPath string `env:"CATALOG_PATH"`
	LogLevel    string `env:"LOG_LEVEL"`

	PollInterval time.Duration `env:"POLL_INTERVAL"`
	ReportHour   int           `env:"REPORT_HOUR"`
}

func InitConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	flags := Flags{}
	if err := flags.Parse(args); err != nil {
		logger.Log.Warn("Getting an error while parsing flags", zap.Error(err))
	}

	cfg := Config{
		Address:      flags.address,
		DatabaseDNS:  flags.dbDNS,
		SupplierURL:  flags.supplierURL,
		FrontendURL:  flags.frontendURL,
		CatalogPath:  flags.catalogPath,
		LogLevel:     flags.logLevel,
		PollInterval: defaultPollInterval,
		ReportHour:   defaultReportHour,

		AccessTokenTTL:  defaultAccessTTL,
		RefreshTokenTTL: defaultRefreshTTL,
	}
	cfg.parseEnv()

	return &cfg
}

func (cfg *Config) parseEnv() {
	err := env.Parse(cfg)
	if err != nil {
		logger.Log.Warn("Getting an error while parsing the configuration", zap.String("err", err.Error()))
	}
}
