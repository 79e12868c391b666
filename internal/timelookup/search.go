package timelookup

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"backlogtimer/internal/hltb"
	"backlogtimer/internal/matching"
)

type cacheEntry struct {
	candidates []matching.Candidate
	expires    time.Time
}

// rateLimitedSearch spaces calls to the searcher and memoizes successful
// responses by lowercased term. A zero cacheTTL keeps entries forever; a nil
// cache disables memoization.
type rateLimitedSearch struct {
	client     hltb.Searcher
	cache      map[string]cacheEntry
	cacheTTL   time.Duration
	rateLimit  time.Duration
	mu         sync.Mutex
	lastSearch time.Time
}

func newRateLimitedSearch(client hltb.Searcher, rateLimit, cacheTTL time.Duration, memoize bool) *rateLimitedSearch {
	s := &rateLimitedSearch{
		client:     client,
		cacheTTL:   cacheTTL,
		rateLimit:  rateLimit,
		lastSearch: time.Unix(0, 0),
	}
	if memoize {
		s.cache = make(map[string]cacheEntry)
	}
	return s
}

func (e cacheEntry) live(now time.Time) bool {
	return e.expires.IsZero() || now.Before(e.expires)
}

func (s *rateLimitedSearch) search(ctx context.Context, term string) ([]matching.Candidate, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("hltb client unavailable")
	}

	key := strings.ToLower(strings.TrimSpace(term))
	s.mu.Lock()
	now := time.Now()
	if entry, ok := s.cache[key]; ok && entry.live(now) {
		s.mu.Unlock()
		return entry.candidates, nil
	}

	// Reserve the next slot before releasing the lock so concurrent
	// callers queue behind each other instead of firing together.
	next := s.lastSearch.Add(s.rateLimit)
	if next.Before(now) {
		next = now
	}
	s.lastSearch = next
	s.mu.Unlock()

	if wait := time.Until(next); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	candidates, err := s.client.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		entry := cacheEntry{candidates: candidates}
		if s.cacheTTL > 0 {
			entry.expires = time.Now().Add(s.cacheTTL)
		}
		s.mu.Lock()
		s.cache[key] = entry
		s.mu.Unlock()
	}
	return candidates, nil
}
