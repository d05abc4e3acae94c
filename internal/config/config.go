// Package config loads the service configuration from a YAML file with
// .env / environment variable overrides, applies defaults, and validates
// the result. The loaded Config is treated as immutable: components
// receive the values they need at construction time and never read
// configuration afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultServerPort        = 3000
	defaultServerTimeout     = 30 * time.Second
	defaultWriteTimeout      = 120 * time.Second
	defaultShutdownTimeout   = 30 * time.Second
	defaultMaxInputChars     = 12000
	defaultMaxTokens         = 4096
	defaultModelName         = "claude-sonnet-4-5"
	defaultNavigationTimeout = 60 * time.Second
	defaultSettleDelay       = 5 * time.Second
	defaultOutputDir         = "data/processed"
	defaultDataDir           = "data"
)

// Response shapes the generation pipeline understands.
const (
	ShapeJSONEnvelope = "json-envelope"
	ShapeMarkdown     = "markdown"
)

// Config is the root configuration for the docscrap service.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// PipelineConfig holds everything the generation pipeline needs: model
// access, HTML cleaning selectors, and fetch timing.
type PipelineConfig struct {
	ModelName     string `yaml:"model_name"`
	APIKey        string `yaml:"api_key"`
	MaxTokens     int    `yaml:"max_tokens"`
	ResponseShape string `yaml:"response_shape"`

	MaxInputChars    int      `yaml:"max_input_chars"`
	NoiseSelectors   []string `yaml:"noise_selectors"`
	ContentSelectors []string `yaml:"content_selectors"`

	BrowserEnabled    bool          `yaml:"browser_enabled"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	SettleDelay       time.Duration `yaml:"settle_delay"`
	UserAgent         string        `yaml:"user_agent"`
}

// StorageConfig holds the on-disk layout of the course store.
type StorageConfig struct {
	// OutputDir is the directory holding one file per course.
	OutputDir string `yaml:"output_dir"`
	// DataDir is the parent directory for debug artifacts such as the
	// most-recent-fetch cache.
	DataDir string `yaml:"data_dir"`
	// LegacyMarkdownPath backs the single-file /markdown endpoint.
	LegacyMarkdownPath string `yaml:"legacy_markdown_path"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML file at path, overlays .env and environment
// variables, applies defaults, and validates. A missing config file is not
// an error: the service runs on defaults plus environment overrides.
func Load(path string) (*Config, error) {
	// .env values become regular environment variables; missing files are fine.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, unmarshalErr)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks the fields the service cannot run without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("server.port must be positive")
	}
	if c.Pipeline.MaxInputChars <= 0 {
		return errors.New("pipeline.max_input_chars must be positive")
	}
	if c.Pipeline.ResponseShape != ShapeJSONEnvelope && c.Pipeline.ResponseShape != ShapeMarkdown {
		return fmt.Errorf("pipeline.response_shape must be %q or %q", ShapeJSONEnvelope, ShapeMarkdown)
	}
	if c.Storage.OutputDir == "" {
		return errors.New("storage.output_dir is required")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("APP_DEBUG"); v != "" {
		cfg.Debug, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Pipeline.APIKey = v
	}
	if v := os.Getenv("MODEL_NAME"); v != "" {
		cfg.Pipeline.ModelName = v
	}
	if v := os.Getenv("RESPONSE_SHAPE"); v != "" {
		cfg.Pipeline.ResponseShape = v
	}
	if v := os.Getenv("BROWSER_ENABLED"); v != "" {
		cfg.Pipeline.BrowserEnabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Storage.OutputDir = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultServerTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		// Generation requests hold the connection open for the full
		// fetch + model round trip, so writes get a generous ceiling.
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{
			"http://localhost:5173", // Vite dev server
			"http://127.0.0.1:5173",
		}
	}
	if cfg.Pipeline.ModelName == "" {
		cfg.Pipeline.ModelName = defaultModelName
	}
	if cfg.Pipeline.MaxTokens == 0 {
		cfg.Pipeline.MaxTokens = defaultMaxTokens
	}
	if cfg.Pipeline.ResponseShape == "" {
		cfg.Pipeline.ResponseShape = ShapeJSONEnvelope
	}
	if cfg.Pipeline.MaxInputChars == 0 {
		cfg.Pipeline.MaxInputChars = defaultMaxInputChars
	}
	if len(cfg.Pipeline.NoiseSelectors) == 0 {
		cfg.Pipeline.NoiseSelectors = DefaultNoiseSelectors()
	}
	if len(cfg.Pipeline.ContentSelectors) == 0 {
		cfg.Pipeline.ContentSelectors = DefaultContentSelectors()
	}
	if cfg.Pipeline.NavigationTimeout == 0 {
		cfg.Pipeline.NavigationTimeout = defaultNavigationTimeout
	}
	if cfg.Pipeline.SettleDelay == 0 {
		cfg.Pipeline.SettleDelay = defaultSettleDelay
	}
	if cfg.Pipeline.UserAgent == "" {
		cfg.Pipeline.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if cfg.Storage.OutputDir == "" {
		cfg.Storage.OutputDir = defaultOutputDir
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = defaultDataDir
	}
	if cfg.Storage.LegacyMarkdownPath == "" {
		cfg.Storage.LegacyMarkdownPath = "data/page.md"
	}
	if cfg.Logging.Level == "" {
		if cfg.Debug {
			cfg.Logging.Level = "debug"
		} else {
			cfg.Logging.Level = "info"
		}
	}
}

// DefaultNoiseSelectors returns the deny-list of boilerplate selectors
// stripped before content extraction.
func DefaultNoiseSelectors() []string {
	return []string{
		"script",
		"style",
		"nav",
		"footer",
		"header",
		"noscript",
		"iframe",
		"svg",
		".ads",
		".sidebar",
		"#menu",
		".cookie",
		".newsletter",
		"a[aria-label]",
		"button[aria-label]",
		".breadcrumb",
		".pagination",
	}
}

// DefaultContentSelectors returns the content-region probe order.
func DefaultContentSelectors() []string {
	return []string{"article", "main", "body"}
}
