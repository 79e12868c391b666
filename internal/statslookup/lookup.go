// Package statslookup fetches player-reported completion statistics for a
// catalog game and converts them into progress-entry fields.
package statslookup

import (
	"context"
	"errors"
	"log/slog"

	"backlogtimer/internal/backlog"
	"backlogtimer/internal/logging"
	"backlogtimer/internal/retroachievements"
)

// ProgressionFetcher is the subset of the catalog client the lookup needs.
type ProgressionFetcher interface {
	GameProgression(ctx context.Context, gameID int) (*retroachievements.Progression, error)
}

// Service looks up median completion times.
type Service struct {
	client ProgressionFetcher
	logger *slog.Logger
}

// New creates a Service.
func New(client ProgressionFetcher, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logging.NewComponentLogger(logger, "statslookup")}
}

// Lookup returns the stats half of a progress entry for gameID. Missing or
// non-positive statistics are left nil. Only an authorization failure or
// context cancellation is returned as an error; any other failure yields an
// empty entry.
func (s *Service) Lookup(ctx context.Context, gameID int) (backlog.Entry, error) {
	if gameID <= 0 || s.client == nil {
		return backlog.Entry{}, nil
	}
	progression, err := s.client.GameProgression(ctx, gameID)
	if err != nil {
		if errors.Is(err, retroachievements.ErrUnauthorized) {
			return backlog.Entry{}, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return backlog.Entry{}, ctxErr
		}
		logging.WarnWithContext(s.logger, "stats lookup failed", "stats_lookup_failed",
			logging.Int("game_id", gameID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access to RetroAchievements"),
			logging.String(logging.FieldImpact, "game is stored without median completion times"))
		return backlog.Entry{}, nil
	}
	if progression == nil {
		return backlog.Entry{}, nil
	}
	return FromProgression(*progression), nil
}

// FromProgression converts median seconds into hours.
func FromProgression(p retroachievements.Progression) backlog.Entry {
	entry := backlog.Entry{
		RABeat:           backlog.HoursFromSeconds(p.MedianTimeToBeat),
		RAMaster:         backlog.HoursFromSeconds(p.MedianTimeToMaster),
		RABeatHardcore:   backlog.HoursFromSeconds(p.MedianTimeToBeatHardcore),
		RAMasterHardcore: backlog.HoursFromSeconds(p.MedianTimeToMasterHardcore),
	}
	if p.NumDistinctPlayers > 0 {
		entry.Players = backlog.Int(p.NumDistinctPlayers)
	}
	return entry
}
