package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Credentials are not checked
// here because read-only commands work from local files alone; see
// RequireCredentials.
func (c *Config) Validate() error {
	if err := c.validateRetroAchievements(); err != nil {
		return err
	}
	if err := c.validateHLTB(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateRetroAchievements() error {
	if c.RetroAchievements.PageSize <= 0 {
		return errors.New("retroachievements.page_size must be positive")
	}
	if c.RetroAchievements.TimeoutSeconds <= 0 {
		return errors.New("retroachievements.timeout_seconds must be positive")
	}
	if c.RetroAchievements.MaxRetries <= 0 {
		return errors.New("retroachievements.max_retries must be positive")
	}
	return nil
}

func (c *Config) validateHLTB() error {
	if c.HLTB.TimeoutSeconds <= 0 {
		return errors.New("hltb.timeout_seconds must be positive")
	}
	if c.HLTB.ResultsPerPage <= 0 {
		return errors.New("hltb.results_per_page must be positive")
	}
	if c.HLTB.MinSimilarity < 0 || c.HLTB.MinSimilarity > 1 {
		return errors.New("hltb.min_similarity must be between 0 and 1")
	}
	if c.HLTB.RateLimitMS < 0 {
		return errors.New("hltb.rate_limit_ms must be >= 0")
	}
	if c.HLTB.MaxRetries <= 0 {
		return errors.New("hltb.max_retries must be positive")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.MaxConcurrency <= 0 {
		return errors.New("pipeline.max_concurrency must be positive")
	}
	if c.Pipeline.BatchSize <= 0 {
		return errors.New("pipeline.batch_size must be positive")
	}
	if c.Pipeline.RequestDelayMS < 0 {
		return errors.New("pipeline.request_delay_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
