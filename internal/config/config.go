package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Defaults   DefaultsConfig   `yaml:"defaults"`
	Transcribe TranscribeConfig `yaml:"transcribe"`
	Acquire    AcquireConfig    `yaml:"acquire"`
	Paths      PathsConfig      `yaml:"paths"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
}

// DefaultsConfig holds default values
type DefaultsConfig struct {
	Model  string `yaml:"model"`
	Words  string `yaml:"words"`
	Format string `yaml:"format"`
}

// TranscribeConfig selects and tunes the speech-to-text backend
type TranscribeConfig struct {
	Backend      string `yaml:"backend"` // whisper or openai
	Language     string `yaml:"language"`
	Threads      int    `yaml:"threads"`
	AutoDownload bool   `yaml:"auto_download"`
}

// AcquireConfig controls how remote media is fetched
type AcquireConfig struct {
	Fetcher string `yaml:"fetcher"` // http or ytdlp
	Timeout string `yaml:"timeout"`
}

// PathsConfig holds custom path overrides
type PathsConfig struct {
	Whisper string `yaml:"whisper"`
	FFmpeg  string `yaml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe"`
	YtDlp   string `yaml:"yt_dlp"`
	TempDir string `yaml:"temp_dir"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	BodyLimitMB int    `yaml:"body_limit_mb"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OpenAIConfig configures the hosted transcription backend.
// The API key is read from OPENAI_API_KEY only.
type OpenAIConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"-"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Model:  "small",
			Words:  "um, uh, like",
			Format: "text",
		},
		Transcribe: TranscribeConfig{
			Backend:      "whisper",
			Language:     "auto",
			AutoDownload: true,
		},
		Acquire: AcquireConfig{
			Fetcher: "http",
			Timeout: "30m",
		},
		Server: ServerConfig{
			Addr:        ":7860",
			BodyLimitMB: 512,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		OpenAI: OpenAIConfig{
			Model: "whisper-1",
		},
	}
}

// AppDir returns the application directory (~/.paralyze)
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".paralyze"
	}
	return filepath.Join(home, ".paralyze")
}

// ModelsDir returns the models directory
func ModelsDir() string {
	return filepath.Join(AppDir(), "models")
}

// BinDir returns the bin directory
func BinDir() string {
	return filepath.Join(AppDir(), "bin")
}

// ConfigPath returns the config file path
func ConfigPath() string {
	return filepath.Join(AppDir(), "config.yaml")
}

// EnvPath returns the optional dotenv file inside the app directory
func EnvPath() string {
	return filepath.Join(AppDir(), ".env")
}

// EnsureDirs creates all required directories
func EnsureDirs() error {
	dirs := []string{AppDir(), ModelsDir(), BinDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Load reads config from file, returns default if not exists
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// LoadDefault loads dotenv files, the config file from the default path and
// then applies environment overrides.
func LoadDefault() (*Config, error) {
	LoadEnvFiles(".env", EnvPath())

	cfg, err := Load(ConfigPath())
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads dotenv files that exist. Variables already set in the
// environment are not overwritten.
func LoadEnvFiles(paths ...string) {
	var existing []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return
	}
	_ = godotenv.Load(existing...)
}

// ApplyEnv overrides config values from environment variables
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("PARALYZE_MODEL")); v != "" {
		c.Defaults.Model = v
	}
	if v := strings.TrimSpace(getenv("PARALYZE_WORDS")); v != "" {
		c.Defaults.Words = v
	}
	if v := strings.TrimSpace(getenv("PARALYZE_BACKEND")); v != "" {
		c.Transcribe.Backend = v
	}
	if v := strings.TrimSpace(getenv("PARALYZE_LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(getenv("PARALYZE_ADDR")); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(getenv("OPENAI_API_KEY")); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := strings.TrimSpace(getenv("OPENAI_BASE_URL")); v != "" {
		c.OpenAI.BaseURL = v
	}
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Transcribe.Backend {
	case "whisper", "openai":
	default:
		return fmt.Errorf("invalid transcribe.backend %q (use whisper or openai)", c.Transcribe.Backend)
	}
	switch c.Acquire.Fetcher {
	case "http", "ytdlp":
	default:
		return fmt.Errorf("invalid acquire.fetcher %q (use http or ytdlp)", c.Acquire.Fetcher)
	}
	if _, err := c.GetAcquireTimeout(); err != nil {
		return err
	}
	return nil
}

// Save writes config to file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveDefault saves config to default path
func (c *Config) SaveDefault() error {
	return c.Save(ConfigPath())
}

// GetAcquireTimeout returns the download timeout. An empty value or "0"
// disables the timeout.
func (c *Config) GetAcquireTimeout() (time.Duration, error) {
	v := strings.TrimSpace(c.Acquire.Timeout)
	if v == "" || v == "0" {
		return 0, nil
	}
	return ParseDuration(v)
}

var durationPattern = regexp.MustCompile(`^(\d+)(s|m|h|d)$`)

// ParseDuration parses duration strings like "30s", "10m", "24h", "7d"
func ParseDuration(s string) (time.Duration, error) {
	matches := durationPattern.FindStringSubmatch(s)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid duration format: %s (use format like 30s, 10m, 24h, 7d)", s)
	}

	value, _ := strconv.Atoi(matches[1])
	unit := matches[2]

	switch unit {
	case "s":
		return time.Duration(value) * time.Second, nil
	case "m":
		return time.Duration(value) * time.Minute, nil
	case "h":
		return time.Duration(value) * time.Hour, nil
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}
}
