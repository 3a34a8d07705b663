// Package config содержит логику чтения конфигурации сервиса snaggle.
package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultRunAddress     = "localhost:8080"
	defaultKafkaTopic     = "snaggle.auction.ended"
	defaultCreditValue    = 60
	defaultCloserInterval = time.Second
	defaultLogLevel       = "info"
)

// Config содержит параметры конфигурации сервиса snaggle.
type Config struct {
	RunAddress       string        `env:"RUN_ADDRESS"`
	DatabaseURI      string        `env:"DATABASE_URI"`
	WebhookURL       string        `env:"WEBHOOK_URL"`
	KafkaBrokers     []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic       string        `env:"KAFKA_TOPIC"`
	CreditValueCents int64         `env:"CREDIT_VALUE_CENTS"`
	CloserInterval   time.Duration `env:"CLOSER_INTERVAL"`
	LogLevel         string        `env:"LOG_LEVEL"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	envCfg := Config{}
	if err := env.Parse(&envCfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg := &Config{}
	var brokers string

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI, in-memory store when empty")
	flag.StringVar(&cfg.WebhookURL, "w", "", "auction ended webhook URL")
	flag.StringVar(&brokers, "k", "", "comma-separated Kafka brokers")
	flag.StringVar(&cfg.KafkaTopic, "t", defaultKafkaTopic, "Kafka topic for auction ended events")
	flag.Int64Var(&cfg.CreditValueCents, "c", defaultCreditValue, "value of one credit in cents")
	flag.DurationVar(&cfg.CloserInterval, "i", defaultCloserInterval, "auction closer polling interval")
	flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")

	flag.Parse()

	cfg.KafkaBrokers = splitList(brokers)

	if envCfg.RunAddress != "" {
		cfg.RunAddress = envCfg.RunAddress
	}
	if envCfg.DatabaseURI != "" {
		cfg.DatabaseURI = envCfg.DatabaseURI
	}
	if envCfg.WebhookURL != "" {
		cfg.WebhookURL = envCfg.WebhookURL
	}
	if brokers := cleanList(envCfg.KafkaBrokers); len(brokers) > 0 {
		cfg.KafkaBrokers = brokers
	}
	if envCfg.KafkaTopic != "" {
		cfg.KafkaTopic = envCfg.KafkaTopic
	}
	if envCfg.CreditValueCents != 0 {
		cfg.CreditValueCents = envCfg.CreditValueCents
	}
	if envCfg.CloserInterval != 0 {
		cfg.CloserInterval = envCfg.CloserInterval
	}
	if envCfg.LogLevel != "" {
		cfg.LogLevel = envCfg.LogLevel
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = defaultKafkaTopic
	}
	if cfg.CloserInterval <= 0 {
		cfg.CloserInterval = defaultCloserInterval
	}
	if cfg.CreditValueCents <= 0 {
		return nil, fmt.Errorf("credit value must be positive, got %d", cfg.CreditValueCents)
	}

	return cfg, nil
}

func splitList(s string) []string {
	return cleanList(strings.Split(s, ","))
}

func cleanList(items []string) []string {
	var res []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			res = append(res, item)
		}
	}
	return res
}
