package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths locates the data files a scan reads and rewrites.
type Paths struct {
	DataDir       string `toml:"data_dir"`
	LogDir        string `toml:"log_dir"`
	ProgressFile  string `toml:"progress_file"`
	ListCacheFile string `toml:"list_cache_file"`
	TableFile     string `toml:"table_file"`
}

// RetroAchievements holds the web API credentials and endpoint settings.
type RetroAchievements struct {
	Username       string `toml:"username"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	PageSize       int    `toml:"page_size"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
}

// HLTB configures the HowLongToBeat search client.
type HLTB struct {
	BaseURL        string  `toml:"base_url"`
	SearchPath     string  `toml:"search_path"`
	UserAgent      string  `toml:"user_agent"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	ResultsPerPage int     `toml:"results_per_page"`
	MinSimilarity  float64 `toml:"min_similarity"`
	RateLimitMS    int     `toml:"rate_limit_ms"`
	MaxRetries     int     `toml:"max_retries"`
}

// Pipeline bounds the enrichment worker pool.
type Pipeline struct {
	MaxConcurrency int `toml:"max_concurrency"`
	BatchSize      int `toml:"batch_size"`
	RequestDelayMS int `toml:"request_delay_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for backlogtimer.
//
// Configuration sections by subsystem:
//   - Paths: data directory and the files kept inside it
//   - RetroAchievements: credentials and web API endpoint
//   - HLTB: time-to-beat search endpoint and matching threshold
//   - Pipeline: batch size, worker count, and per-request delay
//   - Logging: log format and level
type Config struct {
	Paths             Paths             `toml:"paths"`
	RetroAchievements RetroAchievements `toml:"retroachievements"`
	HLTB              HLTB              `toml:"hltb"`
	Pipeline          Pipeline          `toml:"pipeline"`
	Logging           Logging           `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/backlogtimer/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("backlogtimer.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HasCredentials reports whether both halves of the RetroAchievements credential pair are set.
func (c *Config) HasCredentials() bool {
	return c.RetroAchievements.Username != "" && c.RetroAchievements.APIKey != ""
}

// RequireCredentials returns a descriptive error when the credential pair is incomplete.
func (c *Config) RequireCredentials() error {
	if c.HasCredentials() {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/backlogtimer/config.toml"
	}
	return fmt.Errorf("retroachievements.username and retroachievements.api_key are required. Set RA_USERNAME and RA_API_KEY or edit %s (create with 'backlogtimer config init')", defaultPath)
}

// RATimeout returns the HTTP timeout for RetroAchievements calls.
func (c *Config) RATimeout() time.Duration {
	return time.Duration(c.RetroAchievements.TimeoutSeconds) * time.Second
}

// HLTBTimeout returns the HTTP timeout for HowLongToBeat searches.
func (c *Config) HLTBTimeout() time.Duration {
	return time.Duration(c.HLTB.TimeoutSeconds) * time.Second
}

// HLTBRateLimit returns the minimum spacing between HowLongToBeat searches.
func (c *Config) HLTBRateLimit() time.Duration {
	return time.Duration(c.HLTB.RateLimitMS) * time.Millisecond
}

// RequestDelay returns the pause each worker takes before an item's lookups.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.Pipeline.RequestDelayMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
