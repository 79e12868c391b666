package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRetroAchievements()
	c.normalizeHLTB()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	files := []struct {
		name     string
		value    *string
		fallback string
	}{
		{"paths.progress_file", &c.Paths.ProgressFile, defaultProgressFile},
		{"paths.list_cache_file", &c.Paths.ListCacheFile, defaultListCacheFile},
		{"paths.table_file", &c.Paths.TableFile, defaultTableFile},
	}
	for _, f := range files {
		value := strings.TrimSpace(*f.value)
		if value == "" {
			value = f.fallback
		}
		// Bare file names live inside the data directory.
		if !strings.HasPrefix(value, "~") && !filepath.IsAbs(value) && !strings.ContainsRune(value, filepath.Separator) {
			value = filepath.Join(c.Paths.DataDir, value)
		}
		if *f.value, err = expandPath(value); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

func (c *Config) normalizeRetroAchievements() {
	if c.RetroAchievements.Username == "" {
		if value, ok := os.LookupEnv("RA_USERNAME"); ok {
			c.RetroAchievements.Username = value
		}
	}
	if c.RetroAchievements.APIKey == "" {
		if value, ok := os.LookupEnv("RA_API_KEY"); ok {
			c.RetroAchievements.APIKey = value
		}
	}
	c.RetroAchievements.Username = strings.TrimSpace(c.RetroAchievements.Username)
	c.RetroAchievements.APIKey = strings.TrimSpace(c.RetroAchievements.APIKey)
	c.RetroAchievements.BaseURL = strings.TrimRight(strings.TrimSpace(c.RetroAchievements.BaseURL), "/")
	if c.RetroAchievements.BaseURL == "" {
		c.RetroAchievements.BaseURL = defaultRABaseURL
	}
}

func (c *Config) normalizeHLTB() {
	c.HLTB.BaseURL = strings.TrimRight(strings.TrimSpace(c.HLTB.BaseURL), "/")
	if c.HLTB.BaseURL == "" {
		c.HLTB.BaseURL = defaultHLTBBaseURL
	}
	c.HLTB.SearchPath = strings.TrimSpace(c.HLTB.SearchPath)
	if c.HLTB.SearchPath == "" {
		c.HLTB.SearchPath = defaultHLTBSearchPath
	}
	if !strings.HasPrefix(c.HLTB.SearchPath, "/") {
		c.HLTB.SearchPath = "/" + c.HLTB.SearchPath
	}
	c.HLTB.UserAgent = strings.TrimSpace(c.HLTB.UserAgent)
	if c.HLTB.UserAgent == "" {
		c.HLTB.UserAgent = defaultHLTBUserAgent
	}
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("BACKLOGTIMER_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
