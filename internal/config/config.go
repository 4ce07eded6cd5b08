// Package config provides YAML-based configuration loading for Sponso.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Sponso configuration, loaded from sponso.yaml.
// Secrets (bot tokens, the OpenAI key) may be left out of the file and
// supplied through environment variables instead.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Bot       BotConfig       `yaml:"bot"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Pitch     PitchConfig     `yaml:"pitch"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// DatabaseConfig selects and configures the storage backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "mysql"
	Path   string `yaml:"path"`   // sqlite file path

	// MySQL settings, used when driver is "mysql".
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Name string `yaml:"name"`
	User string `yaml:"user"`
}

// BotConfig holds chat platform settings.
type BotConfig struct {
	Platform   string        `yaml:"platform"` // "discord" or "slack"
	Discord    DiscordConfig `yaml:"discord"`
	Slack      SlackConfig   `yaml:"slack"`
	DigestCron string        `yaml:"digest_cron"` // 5-field cron; empty disables the digest
	ListLimit  int           `yaml:"list_limit"`  // max leads shown by the list action
}

// DiscordConfig holds Discord gateway credentials.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// SlackConfig holds Slack Socket Mode credentials.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	AppToken  string `yaml:"app_token"`
	ChannelID string `yaml:"channel_id"`
}

// OpenAIConfig holds drafting API settings. An empty APIKey switches the
// drafter to the offline letter template.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// PitchConfig describes the project being pitched to sponsors. These fields
// feed the drafting prompt and the offline letter template.
type PitchConfig struct {
	Project     string `yaml:"project"`
	Description string `yaml:"description"`
	Audience    string `yaml:"audience"`
	Benefits    string `yaml:"benefits"`
	AskAmount   string `yaml:"ask_amount"`
	Language    string `yaml:"language"` // "en" or "ru"
}

// DashboardConfig holds web dashboard settings.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays secrets from the environment. Values in the file win
// only when the corresponding variable is unset.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("DISCORD_BOT_TOKEN")); v != "" {
		c.Bot.Discord.BotToken = v
	}
	if v := strings.TrimSpace(os.Getenv("SLACK_BOT_TOKEN")); v != "" {
		c.Bot.Slack.BotToken = v
	}
	if v := strings.TrimSpace(os.Getenv("SLACK_APP_TOKEN")); v != "" {
		c.Bot.Slack.AppToken = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		c.OpenAI.APIKey = v
	}
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/sponso.db"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Name == "" {
		c.Database.Name = "sponso"
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Bot.ListLimit <= 0 {
		c.Bot.ListLimit = 20
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.Pitch.Project == "" {
		c.Pitch.Project = "Sponso"
	}
	if c.Pitch.Language == "" {
		c.Pitch.Language = "en"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (sqlite, mysql)", c.Database.Driver))
	}
	switch c.Bot.Platform {
	case "", "discord", "slack":
	default:
		errs = append(errs, fmt.Sprintf("bot.platform %q is not supported (discord, slack)", c.Bot.Platform))
	}
	if c.Bot.Platform == "discord" && c.Bot.Discord.BotToken == "" {
		errs = append(errs, "bot.discord.bot_token is required (or set DISCORD_BOT_TOKEN)")
	}
	if c.Bot.Platform == "slack" {
		if c.Bot.Slack.BotToken == "" {
			errs = append(errs, "bot.slack.bot_token is required (or set SLACK_BOT_TOKEN)")
		}
		if c.Bot.Slack.AppToken == "" {
			errs = append(errs, "bot.slack.app_token is required (or set SLACK_APP_TOKEN)")
		}
	}
	switch c.Pitch.Language {
	case "en", "ru":
	default:
		errs = append(errs, fmt.Sprintf("pitch.language %q is not supported (en, ru)", c.Pitch.Language))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
