package backlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"backlogtimer/internal/logging"
	"backlogtimer/internal/retroachievements"
)

// ListFetcher retrieves a user's Want to Play list.
type ListFetcher interface {
	WantToPlayList(ctx context.Context, username string) ([]retroachievements.ListEntry, error)
}

// Source produces backlog items from the Want to Play list, reusing a local
// copy of the list when one exists for the same user.
type Source struct {
	fetcher   ListFetcher
	cachePath string
	logger    *slog.Logger
}

type listCacheFile struct {
	Username string                        `json:"username"`
	Games    []retroachievements.ListEntry `json:"games"`
}

// NewSource creates a Source. An empty cachePath disables the list cache.
func NewSource(fetcher ListFetcher, cachePath string, logger *slog.Logger) *Source {
	return &Source{
		fetcher:   fetcher,
		cachePath: strings.TrimSpace(cachePath),
		logger:    logging.NewComponentLogger(logger, "backlog"),
	}
}

// Items returns the user's backlog in list order. With refresh false a cached
// list for the same user (compared case-insensitively) is used when present.
// A freshly fetched list always replaces the cache.
func (s *Source) Items(ctx context.Context, username string, refresh bool) ([]Item, error) {
	if !refresh {
		if entries, ok := s.cached(username); ok {
			s.logger.Info("using cached want to play list",
				logging.Int("games", len(entries)),
				logging.String("path", s.cachePath))
			return FromListEntries(entries), nil
		}
	}
	if s.fetcher == nil {
		return nil, errors.New("list fetcher unavailable")
	}

	s.logger.Info("fetching want to play list", logging.String("username", username))
	entries, err := s.fetcher.WantToPlayList(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetch want to play list: %w", err)
	}
	s.logger.Info("fetched want to play list", logging.Int("games", len(entries)))

	if err := s.store(username, entries); err != nil {
		logging.WarnWithContext(s.logger, "failed to write list cache", "list_cache_write_failed",
			logging.Error(err),
			logging.String("path", s.cachePath),
			logging.String(logging.FieldErrorHint, "check permissions on the data directory"),
			logging.String(logging.FieldImpact, "the next scan will fetch the list again"))
	}
	return FromListEntries(entries), nil
}

// ClearCache deletes the cached list. A missing file is not an error.
func (s *Source) ClearCache() error {
	if s.cachePath == "" {
		return nil
	}
	if err := os.Remove(s.cachePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove list cache: %w", err)
	}
	return nil
}

func (s *Source) cached(username string) ([]retroachievements.ListEntry, bool) {
	if s.cachePath == "" {
		return nil, false
	}
	data, err := os.ReadFile(s.cachePath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(s.logger, "failed to read list cache", "list_cache_read_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "list will be fetched from the API"))
		}
		return nil, false
	}
	var file listCacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		logging.WarnWithContext(s.logger, "ignoring unreadable list cache", "list_cache_parse_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "list will be fetched from the API"))
		return nil, false
	}
	if !strings.EqualFold(strings.TrimSpace(file.Username), strings.TrimSpace(username)) {
		return nil, false
	}
	return file.Games, true
}

func (s *Source) store(username string, entries []retroachievements.ListEntry) error {
	if s.cachePath == "" {
		return nil
	}
	if entries == nil {
		entries = []retroachievements.ListEntry{}
	}
	data, err := json.Marshal(listCacheFile{Username: username, Games: entries})
	if err != nil {
		return fmt.Errorf("marshal list cache: %w", err)
	}
	return writeFileAtomic(s.cachePath, data)
}

// FromListEntries converts list entries into unenriched items.
func FromListEntries(entries []retroachievements.ListEntry) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, Item{
			Title:        e.Title,
			System:       e.ConsoleName,
			Achievements: e.AchievementsPublished,
			Points:       e.PointsTotal,
			RAID:         e.ID,
		})
	}
	return items
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
