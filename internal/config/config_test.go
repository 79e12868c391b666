package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"backlogtimer/internal/config"
)

func TestLoadDefaultConfigUsesEnvCredentialsAndExpandsPaths(t *testing.T) {
	t.Setenv("RA_USERNAME", "player1")
	t.Setenv("RA_API_KEY", "secret")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "backlogtimer")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.ProgressFile != filepath.Join(wantData, "hltb_progress.json") {
		t.Fatalf("unexpected progress file: %q", cfg.Paths.ProgressFile)
	}
	if cfg.Paths.TableFile != filepath.Join(wantData, "backlog.db") {
		t.Fatalf("unexpected table file: %q", cfg.Paths.TableFile)
	}
	if !cfg.HasCredentials() {
		t.Fatal("expected credentials from env")
	}
	if cfg.RetroAchievements.Username != "player1" || cfg.RetroAchievements.APIKey != "secret" {
		t.Fatalf("unexpected credentials: %+v", cfg.RetroAchievements)
	}
	if cfg.Pipeline.MaxConcurrency != 5 || cfg.Pipeline.BatchSize != 25 || cfg.Pipeline.RequestDelayMS != 300 {
		t.Fatalf("unexpected pipeline defaults: %+v", cfg.Pipeline)
	}
	if cfg.RetroAchievements.MaxRetries != 4 || cfg.HLTB.MaxRetries != 4 {
		t.Fatalf("unexpected retry defaults: ra=%d hltb=%d", cfg.RetroAchievements.MaxRetries, cfg.HLTB.MaxRetries)
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	t.Setenv("RA_USERNAME", "")
	t.Setenv("RA_API_KEY", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"data_dir":      "~/backlog",
			"progress_file": "/tmp/progress.json",
		},
		"retroachievements": map[string]any{
			"username": "  someone ",
			"api_key":  "k",
			"base_url": "https://ra.example/API/",
		},
		"hltb": map[string]any{
			"max_retries": 2,
		},
		"pipeline": map[string]any{
			"max_concurrency": 2,
			"batch_size":      10,
		},
		"logging": map[string]any{
			"format": "JSON",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "backlog") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.ProgressFile != "/tmp/progress.json" {
		t.Fatalf("absolute progress file should be kept, got %q", cfg.Paths.ProgressFile)
	}
	if cfg.Paths.ListCacheFile != filepath.Join(tempHome, "backlog", "ra_wanttoplay_cache.json") {
		t.Fatalf("unexpected list cache file: %q", cfg.Paths.ListCacheFile)
	}
	if cfg.RetroAchievements.Username != "someone" {
		t.Fatalf("expected trimmed username, got %q", cfg.RetroAchievements.Username)
	}
	if cfg.RetroAchievements.BaseURL != "https://ra.example/API" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.RetroAchievements.BaseURL)
	}
	if cfg.Pipeline.MaxConcurrency != 2 || cfg.Pipeline.BatchSize != 10 {
		t.Fatalf("unexpected pipeline: %+v", cfg.Pipeline)
	}
	if cfg.HLTB.MaxRetries != 2 || cfg.RetroAchievements.MaxRetries != 4 {
		t.Fatalf("unexpected retries: hltb=%d ra=%d", cfg.HLTB.MaxRetries, cfg.RetroAchievements.MaxRetries)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased format, got %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero concurrency", func(c *config.Config) { c.Pipeline.MaxConcurrency = 0 }, "pipeline.max_concurrency"},
		{"zero batch", func(c *config.Config) { c.Pipeline.BatchSize = 0 }, "pipeline.batch_size"},
		{"negative delay", func(c *config.Config) { c.Pipeline.RequestDelayMS = -1 }, "pipeline.request_delay_ms"},
		{"similarity above one", func(c *config.Config) { c.HLTB.MinSimilarity = 1.5 }, "hltb.min_similarity"},
		{"zero page size", func(c *config.Config) { c.RetroAchievements.PageSize = 0 }, "retroachievements.page_size"},
		{"zero ra retries", func(c *config.Config) { c.RetroAchievements.MaxRetries = 0 }, "retroachievements.max_retries"},
		{"zero hltb retries", func(c *config.Config) { c.HLTB.MaxRetries = 0 }, "hltb.max_retries"},
		{"unknown format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg := config.Default()
	if err := cfg.RequireCredentials(); err == nil {
		t.Fatal("expected error without credentials")
	}
	cfg.RetroAchievements.Username = "u"
	cfg.RetroAchievements.APIKey = "k"
	if err := cfg.RequireCredentials(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config should load cleanly: exists=%v err=%v", exists, err)
	}
}
