package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Name         string   `mapstructure:"name"`
		Port         string   `mapstructure:"port"`
		AllowOrigins []string `mapstructure:"allow_origins"`
	} `mapstructure:"app"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Rates struct {
		APIURL         string        `mapstructure:"api_url"`
		APIKey         string        `mapstructure:"api_key"`
		DefaultRate    float64       `mapstructure:"default_rate"`
		Markup         float64       `mapstructure:"markup"`
		CacheTTL       time.Duration `mapstructure:"cache_ttl"`
		RefreshCron    string        `mapstructure:"refresh_cron"`
		WarmupAttempts uint64        `mapstructure:"warmup_attempts"`
	} `mapstructure:"rates"`

	Postgres struct {
		Enabled  bool   `mapstructure:"enabled"`
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		DBName   string `mapstructure:"dbname"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"postgres"`
}

// setDefaults registers every key, so env overrides apply without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "pricing-service")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.allow_origins", []string{"http://localhost:8080", "http://127.0.0.1:8080"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("rates.api_url", "https://api.currencyfreaks.com")
	v.SetDefault("rates.api_key", "")
	v.SetDefault("rates.default_rate", 0.9)
	v.SetDefault("rates.markup", 0.2)
	v.SetDefault("rates.cache_ttl", time.Hour)
	v.SetDefault("rates.refresh_cron", "0 * * * *")
	v.SetDefault("rates.warmup_attempts", 3)
	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.dbname", "pricing")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.sslmode", "disable")
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../../config")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
