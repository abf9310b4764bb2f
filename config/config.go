package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"vitya-bot/apperr"
	"vitya-bot/logger"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	BotToken   string `env:"TELEGRAM_BOT_TOKEN"`
	ConfigPath string `env:"CONFIG_PATH" envDefault:"config.json"`

	DBDriver string `env:"VITYA_DB_DRIVER" envDefault:"sqlite"`
	DBPath   string `env:"VITYA_DB_PATH" envDefault:"vityaalkogolik.sqlite"`

	CooldownSeconds      int64 `env:"VITYA_COOLDOWN_SECONDS" envDefault:"86400"`
	EventIntervalSeconds int64 `env:"VITYA_EVENT_INTERVAL_SECONDS" envDefault:"43200"`
	EventDurationSeconds int64 `env:"VITYA_EVENT_DURATION_SECONDS" envDefault:"300"`
	SweepCron            string `env:"VITYA_SWEEP_CRON" envDefault:"@every 1m"`

	VodkaCost int64 `env:"VITYA_VODKA_COST" envDefault:"5"`
	TimeCost  int64 `env:"VITYA_TIME_COST" envDefault:"5"`

	RedisAddr      string `env:"REDIS_ADDR"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	LeaderboardTTL int64  `env:"VITYA_LEADERBOARD_TTL_SECONDS" envDefault:"30"`

	HTTPAddr string `env:"VITYA_HTTP_ADDR"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

func (c *Config) EventInterval() time.Duration {
	return time.Duration(c.EventIntervalSeconds) * time.Second
}

func (c *Config) EventDuration() time.Duration {
	return time.Duration(c.EventDurationSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.LeaderboardTTL) * time.Second
}

// Load reads .env (if any), the process environment and, when the bot token
// is still unset, the bot_token key of the optional config file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warn("Warning: .env file not found, using system environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, apperr.New(apperr.CodeConfig, "parse env", err)
	}

	if cfg.BotToken == "" {
		token, err := tokenFromFile(cfg.ConfigPath)
		if err != nil {
			logger.Debug("config file not used: ", err)
		}
		cfg.BotToken = token
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return apperr.New(apperr.CodeConfig,
			fmt.Sprintf("TELEGRAM_BOT_TOKEN is not set and %s has no bot_token", c.ConfigPath), nil)
	}
	if c.DBDriver != "sqlite" && c.DBDriver != "mysql" {
		return apperr.New(apperr.CodeConfig, "unsupported VITYA_DB_DRIVER "+c.DBDriver, nil)
	}
	if c.CooldownSeconds <= 0 || c.EventIntervalSeconds <= 0 || c.EventDurationSeconds <= 0 {
		return apperr.New(apperr.CodeConfig, "cooldown, event interval and duration must be positive", nil)
	}
	if c.VodkaCost < 0 || c.TimeCost < 0 {
		return apperr.New(apperr.CodeConfig, "boost costs must not be negative", nil)
	}
	return nil
}

func tokenFromFile(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("failed to read config file: %w", err)
	}
	token := v.GetString("bot_token")
	if token == "" {
		return "", errors.New("bot_token is empty")
	}
	return token, nil
}
