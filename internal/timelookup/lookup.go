package timelookup

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"backlogtimer/internal/backlog"
	"backlogtimer/internal/hltb"
	"backlogtimer/internal/logging"
	"backlogtimer/internal/matching"
	"backlogtimer/internal/titles"
)

// Result is the outcome of one title lookup. Nil hours mean unknown.
type Result struct {
	BeatHours          *float64
	CompletionistHours *float64
	MatchedName        string
	Similarity         float64
	Comment            string
	Err                string
}

// ToEntry converts the result into the time half of a progress entry.
func (r Result) ToEntry() backlog.Entry {
	return backlog.Entry{
		Beat:        r.BeatHours,
		Complete:    r.CompletionistHours,
		MatchedName: r.MatchedName,
		Similarity:  r.Similarity,
		Error:       r.Err,
		Comment:     r.Comment,
	}
}

// Service performs title lookups against a time-to-beat searcher.
type Service struct {
	search *rateLimitedSearch
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	rateLimit time.Duration
	cacheTTL  time.Duration
	noCache   bool
}

// WithRateLimit sets the minimum spacing between searches. Zero disables it.
func WithRateLimit(d time.Duration) Option {
	return func(o *serviceOptions) {
		if d >= 0 {
			o.rateLimit = d
		}
	}
}

// WithCacheTTL expires memoized search responses after d. Without it they
// are kept for the life of the Service.
func WithCacheTTL(d time.Duration) Option {
	return func(o *serviceOptions) {
		if d > 0 {
			o.cacheTTL = d
		}
	}
}

// WithoutCache sends every search to the client.
func WithoutCache() Option {
	return func(o *serviceOptions) {
		o.noCache = true
	}
}

// New creates a Service backed by client.
func New(client hltb.Searcher, logger *slog.Logger, opts ...Option) *Service {
	var options serviceOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Service{
		search: newRateLimitedSearch(client, options.rateLimit, options.cacheTTL, !options.noCache),
		logger: logging.NewComponentLogger(logger, "timelookup"),
	}
}

// Lookup searches every variant of title and returns the best match. A failed
// search for one variant counts as no candidates for it; the failure is only
// reported when no variant produced a candidate. Context cancellation is
// returned as an error so callers can stop without recording a result.
func (s *Service) Lookup(ctx context.Context, title, platform string) (Result, error) {
	variants := titles.SearchVariants(title)
	logger := s.logger.With(logging.String("title", title))
	logger.Debug("searching time service",
		logging.String("platform_hint", titles.PlatformHint(platform)),
		logging.Any("variants", variants))

	if len(variants) == 0 {
		return Result{Err: matching.NoMatchError, Comment: matching.NoMatchComment}, nil
	}

	results := make([]matching.VariantResult, 0, len(variants))
	var lastErr error
	for _, term := range variants {
		candidates, err := s.search.search(ctx, term)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}
			if errors.Is(err, hltb.ErrMalformedResponse) {
				logger.Debug("unreadable search response; treating as no candidates",
					logging.String("term", term),
					logging.Error(err))
				results = append(results, matching.VariantResult{Term: term})
				continue
			}
			logger.Debug("variant search failed",
				logging.String("term", term),
				logging.Error(err))
			lastErr = err
			continue
		}
		results = append(results, matching.VariantResult{Term: term, Candidates: candidates})
	}

	choice, ok := matching.Select(logger, results)
	if !ok {
		if lastErr != nil {
			logging.WarnWithContext(logger, "time lookup failed", "time_lookup_failed",
				logging.Error(lastErr),
				logging.Int("variants", len(variants)),
				logging.String(logging.FieldErrorHint, "check network access to the time-to-beat service"),
				logging.String(logging.FieldImpact, "game keeps no time estimate until the progress entry is cleared"))
			return Result{Err: lastErr.Error(), Comment: matching.ErrorComment(lastErr)}, nil
		}
		logger.Info("no time match", logging.Int("variants", len(variants)))
		return Result{Err: matching.NoMatchError, Comment: matching.NoMatchComment}, nil
	}

	candidate := choice.Candidate
	result := Result{
		MatchedName: candidate.Name,
		Similarity:  candidate.Similarity,
		Comment:     matching.Annotate(choice, variants),
	}
	switch {
	case candidate.MainStoryHours > 0:
		result.BeatHours = backlog.Float(backlog.Round1(candidate.MainStoryHours))
	case candidate.MainExtraHours > 0:
		result.BeatHours = backlog.Float(backlog.Round1(candidate.MainExtraHours))
	}
	if candidate.CompletionistHours > 0 {
		result.CompletionistHours = backlog.Float(backlog.Round1(candidate.CompletionistHours))
	}

	logger.Info("time match selected",
		logging.String("matched_name", candidate.Name),
		logging.String("term", choice.Term),
		logging.Float64("score", choice.Score),
		logging.Float64("similarity", candidate.Similarity))
	return result, nil
}
