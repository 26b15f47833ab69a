package config

import (
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
	Auth            AuthConfig           `mapstructure:"auth"`
	Email           EmailConfig          `mapstructure:"email"`
	MarketData      MarketDataConfig     `mapstructure:"marketData"`
}

type ServiceConfig struct {
	Port      string `mapstructure:"port"`
	ClientURL string `mapstructure:"clientUrl"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

type ExternalClientConfig struct {
	CoinGecko CoinGeckoConfig `mapstructure:"coingecko"`
	CoinCap   CoinCapConfig   `mapstructure:"coincap"`
}

type CoinGeckoConfig struct {
	BaseURL string `mapstructure:"baseUrl"`
	APIKey  string `mapstructure:"apiKey"`
}

type CoinCapConfig struct {
	BaseURL string `mapstructure:"baseUrl"`
}

type AuthConfig struct {
	JWTSecret  string `mapstructure:"jwtSecret"`
	TokenHours int    `mapstructure:"tokenHours"`
}

type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type MarketDataConfig struct {
	CronSpec         string  `mapstructure:"cronSpec"`
	FreshnessMinutes int     `mapstructure:"freshnessMinutes"`
	RequestsPerSec   float64 `mapstructure:"requestsPerSec"`
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config

	viper.AddConfigPath(path)
	viper.SetConfigName("appsettings")
	viper.SetConfigType("yaml")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// Secrets come from the environment (or a .env file loaded by main) and win
// over whatever the yaml carries.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Databases.SQL.ConnectionString = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Databases.SQL.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Databases.Redis.Password = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		cfg.ExternalClients.CoinGecko.APIKey = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.Password = v
	}
}
