package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"backlogtimer/internal/backlog"
	"backlogtimer/internal/config"
	"backlogtimer/internal/hltb"
	"backlogtimer/internal/logging"
	"backlogtimer/internal/retroachievements"
	"backlogtimer/internal/table"
	"backlogtimer/internal/timelookup"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) newRetroAchievementsClient(cfg *config.Config) (*retroachievements.Client, error) {
	return retroachievements.New(
		cfg.RetroAchievements.APIKey,
		cfg.RetroAchievements.BaseURL,
		retroachievements.WithHTTPClient(&http.Client{Timeout: cfg.RATimeout()}),
		retroachievements.WithPageSize(cfg.RetroAchievements.PageSize),
		retroachievements.WithMaxRetries(cfg.RetroAchievements.MaxRetries),
	)
}

func (c *commandContext) newTimeLookup(cfg *config.Config, logger *slog.Logger) (*timelookup.Service, error) {
	client, err := hltb.New(
		cfg.HLTB.BaseURL,
		hltb.WithHTTPClient(&http.Client{Timeout: cfg.HLTBTimeout()}),
		hltb.WithSearchPath(cfg.HLTB.SearchPath),
		hltb.WithUserAgent(cfg.HLTB.UserAgent),
		hltb.WithPageSize(cfg.HLTB.ResultsPerPage),
		hltb.WithMinSimilarity(cfg.HLTB.MinSimilarity),
		hltb.WithMaxRetries(cfg.HLTB.MaxRetries),
	)
	if err != nil {
		return nil, fmt.Errorf("create hltb client: %w", err)
	}
	return timelookup.New(client, logger, timelookup.WithRateLimit(cfg.HLTBRateLimit())), nil
}

// loadTable reads the saved snapshot. It fails with a hint when no scan has
// run yet.
func (c *commandContext) loadTable(ctx context.Context) (*config.Config, []backlog.Item, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	if !table.Exists(cfg.Paths.TableFile) {
		return nil, nil, fmt.Errorf("no backlog table at %s; run 'backlogtimer scan' first", cfg.Paths.TableFile)
	}
	tbl, err := table.Open(ctx, cfg.Paths.TableFile)
	if err != nil {
		return nil, nil, err
	}
	defer tbl.Close()
	items, err := tbl.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cfg, items, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func isUnauthorized(err error) bool {
	return errors.Is(err, retroachievements.ErrUnauthorized)
}
