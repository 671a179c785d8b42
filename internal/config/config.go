package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/lepinkainen/content-feed/pkg/filesystem"
	"github.com/lepinkainen/content-feed/pkg/urlutils"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultPath is the site configuration file looked up when none is given
const DefaultPath = "site.yaml"

// Config holds the site configuration
type Config struct {
	Site struct {
		URL         string `mapstructure:"url"` // Absolute site base URL, e.g. "https://example.com"
		Title       string `mapstructure:"title"`
		Description string `mapstructure:"description"`
		Author      string `mapstructure:"author"`
	} `mapstructure:"site"`

	Feed struct {
		Locale string `mapstructure:"locale"` // Locale for feed labels
		Limit  int    `mapstructure:"limit"`  // Maximum number of items in the feed
	} `mapstructure:"feed"`

	Images struct {
		BaseURL string `mapstructure:"base_url"` // Absolute, or relative to site.url
	} `mapstructure:"images"`

	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.url", "")
	v.SetDefault("site.title", "")
	v.SetDefault("site.description", "")
	v.SetDefault("site.author", "")
	v.SetDefault("feed.locale", "en")
	v.SetDefault("feed.limit", 30)
	v.SetDefault("images.base_url", "/media/")
	v.SetDefault("database.path", "content.db")
}

// LoadConfig loads the configuration from a YAML file. A missing file is not
// an error; defaults and CONTENT_FEED_* environment variables still apply.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	path = filesystem.ResolvePath(path)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CONTENT_FEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		slog.Debug("Loaded site config", "path", path)
	} else {
		slog.Debug("Site config not found, using defaults", "path", path)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.Database.Path = filesystem.ResolvePath(config.Database.Path)
	return &config, nil
}

// Validate checks the settings required to publish a feed
func (c *Config) Validate() error {
	if c.Site.URL == "" {
		return fmt.Errorf("%w: site.url is required", ErrInvalidConfig)
	}
	if !urlutils.IsValidURL(c.Site.URL) {
		return fmt.Errorf("%w: site.url %q must be an absolute URL", ErrInvalidConfig, c.Site.URL)
	}
	if c.Feed.Limit < 0 {
		return fmt.Errorf("%w: feed.limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// SiteURL returns the site URL without a trailing slash, ready to prefix item links
func (c *Config) SiteURL() string {
	return strings.TrimRight(c.Site.URL, "/")
}

// ImageBaseURL returns images.base_url resolved against the site URL
func (c *Config) ImageBaseURL() (string, error) {
	return urlutils.ResolveURL(c.SiteURL()+"/", c.Images.BaseURL)
}
