package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/streamforms/submission-exporter/internal/errors"
)

type AppConfig struct {
	File     string          `json:"-"`
	Service  *ServiceConfig  `json:"service,omitempty"`
	Consul   *ConsulConfig   `json:"consul,omitempty"`
	Redis    *RedisConfig    `json:"redis,omitempty"`
	Database *DatabaseConfig `json:"database,omitempty"`
	Export   *ExportConfig   `json:"export,omitempty"`
}

type ServiceConfig struct {
	HTTPAddr string `json:"httpAddr"`
}

type ConsulConfig struct {
	Id            string `json:"id"`
	Address       string `json:"address"`
	PublicAddress string `json:"publicAddress"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type DatabaseConfig struct {
	Url string `json:"url"`
}

type ExportConfig struct {
	CacheTTL time.Duration `json:"cacheTtl"`
	PageSize int           `json:"pageSize"`
}

func LoadConfig() (*AppConfig, error) {
	bindFlagsAndEnv()

	configFile := getConfigFilePath()
	if configFile != "" {
		if err := loadFromFile(configFile); err != nil {
			return nil, err
		}
	}

	cfg := buildAppConfig(configFile)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func bindFlagsAndEnv() {
	pflag.String("config_file", "", "Configuration file in JSON format")

	// http
	pflag.String("http_addr", ":8090", "HTTP listen address with port")

	// database
	pflag.String("data_source", "", "Data source")

	// consul (optional; empty disables registration)
	pflag.String("id", "", "Service id")
	pflag.String("consul", "", "Host to consul")
	pflag.String("public_addr", "", "Public HTTP address advertised to consul (defaults to http_addr)")

	// redis (optional; empty address disables the export cache)
	pflag.String("redis_addr", "localhost:6379", "Redis address")
	pflag.String("redis_password", "", "Redis password")
	pflag.Int("redis_db", 0, "Redis DB number")

	// export
	pflag.Duration("cache_ttl", 5*time.Minute, "How long built export documents stay cached")
	pflag.Int("page_size", 25, "Default submissions per listing page")

	pflag.Parse()

	_ = viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit mapping
	_ = viper.BindEnv("http_addr", "HTTP_ADDR")
	_ = viper.BindEnv("id", "CONSUL_ID")
	_ = viper.BindEnv("consul", "CONSUL_HOST")
	_ = viper.BindEnv("public_addr", "PUBLIC_ADDR")
	_ = viper.BindEnv("redis_addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis_password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis_db", "REDIS_DB")
}

func getConfigFilePath() string {
	file := viper.GetString("config_file")
	if file == "" {
		file = os.Getenv("SUBMISSION_EXPORTER_CONFIG_FILE")
	}
	return file
}

func loadFromFile(path string) error {
	viper.SetConfigFile(path)
	viper.SetConfigType("json")
	if err := viper.ReadInConfig(); err != nil {
		return errors.New(fmt.Sprintf("could not load config file: %s", err.Error()))
	}
	return nil
}

func buildAppConfig(file string) *AppConfig {
	cfg := &AppConfig{
		File:     file,
		Service:  &ServiceConfig{HTTPAddr: viper.GetString("http_addr")},
		Database: &DatabaseConfig{Url: viper.GetString("data_source")},
		Export: &ExportConfig{
			CacheTTL: viper.GetDuration("cache_ttl"),
			PageSize: viper.GetInt("page_size"),
		},
		Consul: &ConsulConfig{
			Id:            viper.GetString("id"),
			Address:       viper.GetString("consul"),
			PublicAddress: viper.GetString("public_addr"),
		},
		Redis: &RedisConfig{
			Addr:     viper.GetString("redis_addr"),
			Password: viper.GetString("redis_password"),
			DB:       viper.GetInt("redis_db"),
		},
	}
	if cfg.Consul.PublicAddress == "" {
		cfg.Consul.PublicAddress = cfg.Service.HTTPAddr
	}
	return cfg
}

func validateConfig(cfg *AppConfig) error {
	if cfg.Database.Url == "" {
		return errors.New("Data source is required")
	}
	if cfg.Service.HTTPAddr == "" {
		return errors.New("HTTP address is required")
	}
	if cfg.Consul.Address != "" && cfg.Consul.Id == "" {
		return errors.New("Service id is required when consul is configured")
	}
	return nil
}
