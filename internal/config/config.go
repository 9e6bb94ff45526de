// Package config provides configuration management for the flatblog server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config represents the main application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Views   ViewsConfig   `yaml:"views"`
	Static  StaticConfig  `yaml:"static"`
	Blog    BlogConfig    `yaml:"blog"`
	Logging LoggingConfig `yaml:"logging"`
	Medium  MediumConfig  `yaml:"medium"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr                     string `yaml:"addr"`
	ReadHeaderTimeoutSeconds int    `yaml:"read_header_timeout_seconds"`
	ShutdownTimeoutSeconds   int    `yaml:"shutdown_timeout_seconds"`
}

// StorageConfig locates the posts file.
type StorageConfig struct {
	Path string `yaml:"path"` // JSON file holding every post
}

// ViewsConfig controls where templates come from.
type ViewsConfig struct {
	Dir   string `yaml:"dir"`   // Optional: overrides the embedded templates
	Watch bool   `yaml:"watch"` // Re-parse templates when Dir changes
}

// StaticConfig locates public assets.
type StaticConfig struct {
	Dir string `yaml:"dir"`
}

// BlogConfig holds presentation settings.
type BlogConfig struct {
	DateLocale       string `yaml:"date_locale"`        // e.g., "en-US", "en-GB", "de"
	HomeExcerptWords int    `yaml:"home_excerpt_words"` // Excerpt length on "/"
	ListExcerptWords int    `yaml:"list_excerpt_words"` // Excerpt length on "/blog"
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// MediumConfig contains credentials for cross-posting.
type MediumConfig struct {
	Token         string `yaml:"token"`
	APIURL        string `yaml:"api_url"`
	PublishStatus string `yaml:"publish_status"` // "public", "draft" or "unlisted"
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses a configuration file from the specified path.
// A missing file is not an error: the defaults are used instead.
func Load(path string) (*Config, error) {
	var config Config

	// #nosec G304 -- path is provided by user as configuration file path
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	config.applyDefaults()

	// Override with environment variables (env vars take precedence)
	if addr := os.Getenv("BLOG_ADDR"); addr != "" {
		config.Server.Addr = addr
	}
	if dataFile := os.Getenv("BLOG_DATA_FILE"); dataFile != "" {
		config.Storage.Path = dataFile
	}
	if viewsDir := os.Getenv("BLOG_VIEWS_DIR"); viewsDir != "" {
		config.Views.Dir = viewsDir
	}
	if staticDir := os.Getenv("BLOG_STATIC_DIR"); staticDir != "" {
		config.Static.Dir = staticDir
	}
	if level := os.Getenv("BLOG_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if mediumToken := os.Getenv("MEDIUM_TOKEN"); mediumToken != "" {
		config.Medium.Token = mediumToken
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadHeaderTimeoutSeconds == 0 {
		c.Server.ReadHeaderTimeoutSeconds = 10
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 5
	}

	if c.Storage.Path == "" {
		c.Storage.Path = "posts.json"
	}
	if c.Static.Dir == "" {
		c.Static.Dir = "public"
	}

	if c.Blog.DateLocale == "" {
		c.Blog.DateLocale = "en-US"
	}
	if c.Blog.HomeExcerptWords == 0 {
		c.Blog.HomeExcerptWords = 50
	}
	if c.Blog.ListExcerptWords == 0 {
		c.Blog.ListExcerptWords = 150
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if c.Medium.APIURL == "" {
		c.Medium.APIURL = "https://api.medium.com/v1"
	}
	if c.Medium.PublishStatus == "" {
		c.Medium.PublishStatus = "draft"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if c.Server.ReadHeaderTimeoutSeconds < 1 || c.Server.ReadHeaderTimeoutSeconds > 600 {
		return fmt.Errorf("server.read_header_timeout_seconds must be between 1 and 600, got %d", c.Server.ReadHeaderTimeoutSeconds)
	}
	if c.Server.ShutdownTimeoutSeconds < 1 || c.Server.ShutdownTimeoutSeconds > 600 {
		return fmt.Errorf("server.shutdown_timeout_seconds must be between 1 and 600, got %d", c.Server.ShutdownTimeoutSeconds)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path cannot be empty")
	}

	if c.Views.Watch && c.Views.Dir == "" {
		return fmt.Errorf("views.watch requires views.dir")
	}
	if c.Views.Dir != "" {
		if _, err := os.Stat(c.Views.Dir); err != nil {
			return fmt.Errorf("views.dir not found: %s", c.Views.Dir)
		}
	}

	if _, err := language.Parse(c.Blog.DateLocale); err != nil {
		return fmt.Errorf("blog.date_locale %q: %w", c.Blog.DateLocale, err)
	}
	if c.Blog.HomeExcerptWords < 1 {
		return fmt.Errorf("blog.home_excerpt_words must be positive, got %d", c.Blog.HomeExcerptWords)
	}
	if c.Blog.ListExcerptWords < 1 {
		return fmt.Errorf("blog.list_excerpt_words must be positive, got %d", c.Blog.ListExcerptWords)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	switch c.Medium.PublishStatus {
	case "public", "draft", "unlisted":
	default:
		return fmt.Errorf("medium.publish_status must be public, draft or unlisted, got %q", c.Medium.PublishStatus)
	}

	return nil
}

// GetMediumToken returns the Medium token with env var priority
func (c *Config) GetMediumToken() string {
	if token := os.Getenv("MEDIUM_TOKEN"); token != "" {
		return token
	}
	return c.Medium.Token
}

// ReadHeaderTimeout returns the server read-header timeout.
func (c *Config) ReadHeaderTimeout() time.Duration {
	return time.Duration(c.Server.ReadHeaderTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns how long a graceful shutdown may take.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}
