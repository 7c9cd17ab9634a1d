package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`

	JWTAccessSecret  string `env:"JWT_ACCESS_SECRET"`
	JWTRefreshSecret string `env:"JWT_REFRESH_SECRET"`

	PaymentAPIURL string `env:"PAYMENT_API_URL"`
	PaymentAPIKey string `env:"PAYMENT_API_KEY"`

	// ClientURL базовый адрес фронтенда, на него процессор возвращает покупателя
	// после оплаты.
	ClientURL string `env:"CLIENT_URL"`

	ReleaseMode bool `env:"RELEASE_MODE"`
}

func LoadConfig() (*Config, error) {
	// .env опционален, в проде переменные приходят из окружения.
	_ = godotenv.Load()

	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if conf.JWTAccessSecret == "" || conf.JWTRefreshSecret == "" {
		return nil, errors.New("JWT secrets are not set")
	}
	if conf.JWTAccessSecret == conf.JWTRefreshSecret {
		return nil, errors.New("JWT access and refresh secrets must differ")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flag.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flag.StringVar(&flagConfig.MigrationsDir, "m", "db/migrations", "Database migrations directory")
	flag.StringVar(&flagConfig.RedisAddr, "r", "localhost:6379", "Redis address in format host:port")
	flag.StringVar(&flagConfig.PaymentAPIURL, "p", "", "Payment processor base URL")
	flag.StringVar(&flagConfig.ClientURL, "c", "http://localhost:5173", "Client app base URL")

	flag.Parse()
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		RunAddress:       defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:      defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir:    defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		RedisAddr:        defaultIfBlank(envConfig.RedisAddr, flagsConfig.RedisAddr),
		RedisPassword:    envConfig.RedisPassword,
		RedisDB:          envConfig.RedisDB,
		JWTAccessSecret:  envConfig.JWTAccessSecret,
		JWTRefreshSecret: envConfig.JWTRefreshSecret,
		PaymentAPIURL:    defaultIfBlank(envConfig.PaymentAPIURL, flagsConfig.PaymentAPIURL),
		PaymentAPIKey:    envConfig.PaymentAPIKey,
		ClientURL:        defaultIfBlank(envConfig.ClientURL, flagsConfig.ClientURL),
		ReleaseMode:      envConfig.ReleaseMode,
	}
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
