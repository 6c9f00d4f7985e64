package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. REELINDEX_TMDB_API_KEY.
const EnvPrefix = "REELINDEX"

// Config holds all application configuration.
type Config struct {
	Share    ShareConfig    `mapstructure:"share"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	TMDB     TMDBConfig     `mapstructure:"tmdb"`
	Assets   AssetsConfig   `mapstructure:"assets"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
}

// ShareConfig holds the location and credentials of the movie share.
type ShareConfig struct {
	Address         string `mapstructure:"address"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Domain          string `mapstructure:"domain"`
	ConnectAttempts int    `mapstructure:"connect_attempts"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// TMDBConfig holds TMDB API configuration.
type TMDBConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	AccessToken       string  `mapstructure:"access_token"`
	BaseURL           string  `mapstructure:"base_url"`
	ImageBaseURL      string  `mapstructure:"image_base_url"`
	Language          string  `mapstructure:"language"`
	Timeout           int     `mapstructure:"timeout"` // seconds
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// AssetsConfig holds image download configuration.
type AssetsConfig struct {
	Root         string `mapstructure:"root"`
	Workers      int    `mapstructure:"workers"`
	PosterSize   string `mapstructure:"poster_size"`
	SnapshotSize string `mapstructure:"snapshot_size"`
	BackdropSize string `mapstructure:"backdrop_size"`
	ProfileSize  string `mapstructure:"profile_size"`
}

// IngestConfig holds pipeline configuration.
type IngestConfig struct {
	Workers    int    `mapstructure:"workers"`
	WalkBuffer int    `mapstructure:"walk_buffer"`
	Schedule   string `mapstructure:"schedule"` // cron; empty runs once and exits
	SkipKnown  bool   `mapstructure:"skip_known"`
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > .env file > config file > defaults
func Load(configPath string) (*Config, error) {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.reelindex")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values in viper. Every key needs a default so
// AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("share.address", "")
	v.SetDefault("share.username", "")
	v.SetDefault("share.password", "")
	v.SetDefault("share.domain", "")
	v.SetDefault("share.connect_attempts", 3)

	v.SetDefault("database.path", "./data/reelindex.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.access_token", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.image_base_url", "https://image.tmdb.org/t/p")
	v.SetDefault("tmdb.language", "en-US")
	v.SetDefault("tmdb.timeout", 30)
	v.SetDefault("tmdb.requests_per_second", 40)
	v.SetDefault("tmdb.burst", 20)

	v.SetDefault("assets.root", "./data")
	v.SetDefault("assets.workers", 20)
	v.SetDefault("assets.poster_size", "w780")
	v.SetDefault("assets.snapshot_size", "w185")
	v.SetDefault("assets.backdrop_size", "w1280")
	v.SetDefault("assets.profile_size", "w185")

	v.SetDefault("ingest.workers", 10)
	v.SetDefault("ingest.walk_buffer", 64)
	v.SetDefault("ingest.schedule", "")
	v.SetDefault("ingest.skip_known", false)
}

// Validate reports every missing or out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Share.Address) == "" {
		errs = append(errs, errors.New("share.address is required"))
	}
	if c.TMDB.APIKey == "" && c.TMDB.AccessToken == "" {
		errs = append(errs, errors.New("tmdb.api_key or tmdb.access_token is required"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Ingest.Workers < 1 {
		errs = append(errs, fmt.Errorf("ingest.workers must be positive, got %d", c.Ingest.Workers))
	}
	if c.Assets.Workers < 1 {
		errs = append(errs, fmt.Errorf("assets.workers must be positive, got %d", c.Assets.Workers))
	}
	if c.TMDB.Timeout < 1 {
		errs = append(errs, fmt.Errorf("tmdb.timeout must be positive, got %d", c.TMDB.Timeout))
	}
	return errors.Join(errs...)
}
