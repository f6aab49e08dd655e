package config

import (
	"fmt"
	"os"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file leaves a field unset.
const (
	DefaultBackupDirectory  = "backups"
	DefaultPageSize         = 100
	DefaultProgressInterval = 1500 * time.Millisecond
	DefaultCatalogPath      = "backups/catalog.db"
	DefaultHistoryLimit     = 10
)

// Duration wraps time.Duration so YAML values can be written in the
// human-readable form accepted by time.ParseDuration, e.g. "1500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)

	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DiscordConfig stores Discord specific configurations.
type DiscordConfig struct {
	BotToken      string             `yaml:"bot_token"`
	ApplicationID *discord.Snowflake `yaml:"application_id"`
	GuildIDs      []string           `yaml:"guild_ids"`
}

// BackupConfig controls how guild archives are collected and stored.
type BackupConfig struct {
	// Directory is where finished archives are written.
	Directory string `yaml:"directory"`
	// PageSize is the number of messages fetched per history request.
	// Discord caps this at 100.
	PageSize uint `yaml:"page_size"`
	// MaxMessages limits how many messages are collected per channel.
	// Zero means no limit.
	MaxMessages int `yaml:"max_messages"`
	// ProgressInterval throttles status embed edits during a run.
	ProgressInterval Duration `yaml:"progress_interval"`
}

// CatalogConfig controls the local record of completed runs.
type CatalogConfig struct {
	Path         string `yaml:"path"`
	HistoryLimit int    `yaml:"history_limit"`
}

// Config stores the application configuration.
type Config struct {
	Discord  DiscordConfig `yaml:"discord"`
	Backup   BackupConfig  `yaml:"backup"`
	Catalog  CatalogConfig `yaml:"catalog"`
	LogLevel string        `yaml:"log_level"`
	LogFile  string        `yaml:"log_file"`
}

// Load reads the configuration from the given file path. A `.env` file in the
// working directory is loaded first so secrets can be supplied the same way
// the deployment environment supplies them; a missing `.env` is not an error.
// Environment variables override file values for secrets.
func Load(filePath string) (*Config, error) {
	_ = gotenv.Load()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if token := os.Getenv("BOT_TOKEN"); token != "" {
		c.Discord.BotToken = token
	}
	if appID := os.Getenv("DISCORD_APPLICATION_ID"); appID != "" {
		if sf, err := discord.ParseSnowflake(appID); err == nil {
			c.Discord.ApplicationID = &sf
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Backup.Directory == "" {
		c.Backup.Directory = DefaultBackupDirectory
	}
	// Discord allows at most 100 messages per request.
	if c.Backup.PageSize == 0 || c.Backup.PageSize > 100 {
		c.Backup.PageSize = DefaultPageSize
	}
	if c.Backup.ProgressInterval <= 0 {
		c.Backup.ProgressInterval = Duration(DefaultProgressInterval)
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = DefaultCatalogPath
	}
	if c.Catalog.HistoryLimit <= 0 {
		c.Catalog.HistoryLimit = DefaultHistoryLimit
	}
}
