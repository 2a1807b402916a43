package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. The bot and the webhook
// binaries share one file; each validates only the sections it uses.
type Config struct {
	Discord struct {
		BotToken          string   `yaml:"bot_token"`
		AuthorizedUserIDs []string `yaml:"authorized_user_ids"`
		AlertChannelID    string   `yaml:"alert_channel_id"`
	} `yaml:"discord"`
	Gemini struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`
	MarketData struct {
		TwelveDataKey string `yaml:"twelve_data_key"`
		NewsAPIKey    string `yaml:"news_api_key"`
	} `yaml:"market_data"`
	Watch struct {
		Cron     string   `yaml:"cron"`
		Symbols  []string `yaml:"symbols"`
		Interval string   `yaml:"interval"`
	} `yaml:"watch"`
	Calendar struct {
		CredentialsJSON string `yaml:"credentials_json"`
		TokenJSON       string `yaml:"token_json"`
	} `yaml:"calendar"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DISCORD_BOT_TOKEN"); v != "" {
		cfg.Discord.BotToken = v
	}
	if v := os.Getenv("AUTHORIZED_USER_IDS"); v != "" {
		cfg.Discord.AuthorizedUserIDs = splitList(v)
	}
	if v := os.Getenv("ALERT_CHANNEL_ID"); v != "" {
		cfg.Discord.AlertChannelID = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("TWELVE_DATA_API_KEY"); v != "" {
		cfg.MarketData.TwelveDataKey = v
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		cfg.MarketData.NewsAPIKey = v
	}
	if v := os.Getenv("WATCH_SYMBOLS"); v != "" {
		cfg.Watch.Symbols = splitList(v)
	}
	if v := os.Getenv("WATCH_CRON"); v != "" {
		cfg.Watch.Cron = v
	}
	if v := os.Getenv("GOOGLE_CALENDAR_CREDENTIALS"); v != "" {
		cfg.Calendar.CredentialsJSON = v
	}
	if v := os.Getenv("GOOGLE_CALENDAR_TOKEN"); v != "" {
		cfg.Calendar.TokenJSON = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}

	// Defaults
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.Watch.Cron == "" {
		cfg.Watch.Cron = "0 0 * * * *"
	}
	if cfg.Watch.Interval == "" {
		cfg.Watch.Interval = "1h"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "5000"
	}

	return cfg, nil
}

// ValidateBot checks the fields the Discord bot binary needs.
func (c *Config) ValidateBot() error {
	if c.Discord.BotToken == "" {
		return fmt.Errorf("discord.bot_token is required")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.api_key is required")
	}
	if c.MarketData.TwelveDataKey == "" {
		return fmt.Errorf("market_data.twelve_data_key is required")
	}
	return nil
}

// ValidateWebhook checks the fields the webhook binary needs. Calendar
// credentials are optional; without them /schedule-appointment is disabled.
func (c *Config) ValidateWebhook() error {
	if c.MarketData.TwelveDataKey == "" {
		return fmt.Errorf("market_data.twelve_data_key is required")
	}
	if (c.Calendar.CredentialsJSON == "") != (c.Calendar.TokenJSON == "") {
		return fmt.Errorf("calendar credentials and token must be set together")
	}
	return nil
}

// CalendarEnabled reports whether both calendar blobs are present.
func (c *Config) CalendarEnabled() bool {
	return c.Calendar.CredentialsJSON != "" && c.Calendar.TokenJSON != ""
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
