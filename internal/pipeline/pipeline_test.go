package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"backlogtimer/internal/backlog"
	"backlogtimer/internal/retroachievements"
	"backlogtimer/internal/timelookup"
)

type stubTimes struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

func (s *stubTimes) Lookup(ctx context.Context, title, _ string) (timelookup.Result, error) {
	s.calls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return timelookup.Result{}, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if title == "Missing" {
		return timelookup.Result{Err: "No results", Comment: "No HLTB match found"}, nil
	}
	hours := float64(len(title))
	return timelookup.Result{
		BeatHours:          backlog.Float(hours),
		CompletionistHours: backlog.Float(hours * 2),
		MatchedName:        title,
		Similarity:         1,
	}, nil
}

type stubStats struct {
	calls        atomic.Int32
	unauthorized int
}

func (s *stubStats) Lookup(_ context.Context, gameID int) (backlog.Entry, error) {
	s.calls.Add(1)
	if gameID == s.unauthorized {
		return backlog.Entry{}, fmt.Errorf("progression: %w", retroachievements.ErrUnauthorized)
	}
	return backlog.Entry{RAMaster: backlog.Float(float64(gameID)), Players: backlog.Int(gameID * 10)}, nil
}

type memStore struct {
	mu       sync.Mutex
	entries  map[string]backlog.Entry
	flushes  int
	flushErr error
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]backlog.Entry)}
}

func (m *memStore) Get(key string) (backlog.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return e, ok
}

func (m *memStore) Put(key string, entry backlog.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry
}

func (m *memStore) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.flushErr != nil {
		return m.flushErr
	}
	m.flushes++
	return nil
}

type memSnapshot struct {
	saves  int
	last   []backlog.Item
	onSave func(saves int)
}

func (m *memSnapshot) Save(_ context.Context, _ string, items []backlog.Item) error {
	m.saves++
	m.last = append([]backlog.Item(nil), items...)
	if m.onSave != nil {
		m.onSave(m.saves)
	}
	return nil
}

func makeItems(n int) []backlog.Item {
	items := make([]backlog.Item, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, backlog.Item{
			Title:  fmt.Sprintf("Game %02d", i),
			System: "SNES/Super Famicom",
			Points: i * 10,
			RAID:   i,
		})
	}
	return items
}

func TestRunEnrichesAndRanks(t *testing.T) {
	items := append(makeItems(3), backlog.Item{Title: "Missing", System: "NES/Famicom", Points: 5})
	store := newMemStore()
	snap := &memSnapshot{}
	stats := &stubStats{}

	got, err := New(&stubTimes{}, stats, store, snap, Options{}, nil).Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Fetched != 4 || got.ToFetch != 4 || got.Batches != 1 {
		t.Fatalf("unexpected stats %+v", got)
	}
	if stats.calls.Load() != 3 {
		t.Fatalf("row without an ID must skip the stats lookup, calls=%d", stats.calls.Load())
	}

	first := items[0]
	if *first.HLTBBeat != 7 || *first.HLTBComplete != 14 || *first.RAMaster != 1 || *first.RAPlayers != 10 {
		t.Fatalf("unexpected enrichment %+v", first)
	}
	if first.PointsPerHour == nil || *first.PointsPerHour != 10 {
		t.Fatalf("expected ranking on the mastery basis, got %v", first.PointsPerHour)
	}
	missing := items[3]
	if missing.HLTBBeat != nil || missing.PointsPerHour != nil || missing.Comment != "No HLTB match found" {
		t.Fatalf("unexpected no-match row %+v", missing)
	}
	if _, ok := store.Get("Missing|NES/Famicom"); !ok {
		t.Fatal("no-match outcome should still be checkpointed")
	}
	if snap.saves != 2 {
		t.Fatalf("expected batch and final saves, got %d", snap.saves)
	}
	if snap.last[0].PointsPerHour == nil {
		t.Fatal("final snapshot should include the ranking")
	}
}

func TestRunUsesCacheAndSkipsCompleteRows(t *testing.T) {
	items := makeItems(2)
	items[0].HLTBBeat = backlog.Float(1)
	items[0].HLTBComplete = backlog.Float(2)
	items[0].RAMaster = backlog.Float(3)

	store := newMemStore()
	store.Put(items[1].Key(), backlog.Entry{Beat: backlog.Float(9), Comment: "Fuzzy match: Game"})
	times := &stubTimes{}

	got, err := New(times, &stubStats{}, store, &memSnapshot{}, Options{}, nil).Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if times.calls.Load() != 0 {
		t.Fatalf("expected no lookups, got %d", times.calls.Load())
	}
	if got.Skipped != 1 || got.FromCache != 1 || got.ToFetch != 0 || got.Batches != 0 {
		t.Fatalf("unexpected stats %+v", got)
	}
	if *items[1].HLTBBeat != 9 || items[1].Comment != "Fuzzy match: Game" {
		t.Fatalf("cached entry not applied: %+v", items[1])
	}
}

func TestRunSharesEntryAcrossDuplicateKeys(t *testing.T) {
	items := []backlog.Item{
		{Title: "Tetris", System: "Game Boy", RAID: 1, Points: 10},
		{Title: "Tetris", System: "Game Boy", RAID: 2, Points: 10},
	}
	times := &stubTimes{}
	if _, err := New(times, &stubStats{}, newMemStore(), &memSnapshot{}, Options{}, nil).Run(context.Background(), items); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if times.calls.Load() != 1 {
		t.Fatalf("rows sharing a key should be fetched once, got %d", times.calls.Load())
	}
	if !reflect.DeepEqual(items[0].RAMaster, items[1].RAMaster) {
		t.Fatal("rows sharing a key should share one entry")
	}
}

func TestRunResumesFromCheckpoint(t *testing.T) {
	opts := Options{BatchSize: 10, MaxConcurrency: 4}

	want := makeItems(35)
	if _, err := New(&stubTimes{}, &stubStats{}, newMemStore(), &memSnapshot{}, opts, nil).Run(context.Background(), want); err != nil {
		t.Fatalf("uninterrupted Run: %v", err)
	}

	store := newMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	snap := &memSnapshot{onSave: func(saves int) {
		if saves == 2 {
			cancel()
		}
	}}
	interrupted := makeItems(35)
	stats, err := New(&stubTimes{}, &stubStats{}, store, snap, opts, nil).Run(ctx, interrupted)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if stats.Batches != 2 || len(store.entries) != 20 {
		t.Fatalf("expected two checkpointed batches, stats=%+v entries=%d", stats, len(store.entries))
	}

	times := &stubTimes{}
	resumed := makeItems(35)
	stats, err = New(times, &stubStats{}, store, &memSnapshot{}, opts, nil).Run(context.Background(), resumed)
	if err != nil {
		t.Fatalf("resumed Run: %v", err)
	}
	if stats.FromCache != 20 || times.calls.Load() != 15 {
		t.Fatalf("resume should only fetch unfinished rows, stats=%+v calls=%d", stats, times.calls.Load())
	}
	if !reflect.DeepEqual(want, resumed) {
		t.Fatal("resumed run should match an uninterrupted run")
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	times := &stubTimes{delay: 5 * time.Millisecond}
	opts := Options{MaxConcurrency: 3, BatchSize: 12}
	if _, err := New(times, nil, newMemStore(), &memSnapshot{}, opts, nil).Run(context.Background(), makeItems(24)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if peak := times.maxSeen.Load(); peak > 3 {
		t.Fatalf("expected at most 3 lookups in flight, saw %d", peak)
	}
}

func TestRunStopsOnUnauthorized(t *testing.T) {
	store := newMemStore()
	snap := &memSnapshot{}
	_, err := New(&stubTimes{}, &stubStats{unauthorized: 2}, store, snap, Options{}, nil).Run(context.Background(), makeItems(5))
	if !errors.Is(err, retroachievements.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(store.entries) != 0 || snap.saves != 0 {
		t.Fatalf("failed batch must not be checkpointed, entries=%d saves=%d", len(store.entries), snap.saves)
	}
}

func TestRunStopsOnPersistenceFailure(t *testing.T) {
	store := newMemStore()
	store.flushErr = errors.New("disk full")
	_, err := New(&stubTimes{}, &stubStats{}, store, &memSnapshot{}, Options{}, nil).Run(context.Background(), makeItems(2))
	if err == nil || !errors.Is(err, store.flushErr) {
		t.Fatalf("expected flush error, got %v", err)
	}
}

func TestRunAppliesRequestDelay(t *testing.T) {
	opts := Options{MaxConcurrency: 1, RequestDelay: 10 * time.Millisecond}
	start := time.Now()
	if _, err := New(&stubTimes{}, nil, newMemStore(), &memSnapshot{}, opts, nil).Run(context.Background(), makeItems(3)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("expected a delay per request, took %v", elapsed)
	}
}
