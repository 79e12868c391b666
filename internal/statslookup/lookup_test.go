package statslookup

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"backlogtimer/internal/retroachievements"
)

type stubFetcher struct {
	progression *retroachievements.Progression
	err         error
	calls       int
}

func (s *stubFetcher) GameProgression(_ context.Context, _ int) (*retroachievements.Progression, error) {
	s.calls++
	return s.progression, s.err
}

func TestLookupConvertsSecondsToHours(t *testing.T) {
	fetcher := &stubFetcher{progression: &retroachievements.Progression{
		NumDistinctPlayers:         120,
		MedianTimeToBeat:           5400,
		MedianTimeToMaster:         72000,
		MedianTimeToMasterHardcore: 0,
	}}
	entry, err := New(fetcher, nil).Lookup(context.Background(), 42)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if entry.RABeat == nil || *entry.RABeat != 1.5 {
		t.Fatalf("unexpected beat %v", entry.RABeat)
	}
	if entry.RAMaster == nil || *entry.RAMaster != 20.0 {
		t.Fatalf("unexpected master %v", entry.RAMaster)
	}
	if entry.RAMasterHardcore != nil {
		t.Fatal("zero seconds must stay unknown")
	}
	if entry.Players == nil || *entry.Players != 120 {
		t.Fatalf("unexpected players %v", entry.Players)
	}
}

func TestLookupSwallowsTransientErrors(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection reset")}
	entry, err := New(fetcher, nil).Lookup(context.Background(), 7)
	if err != nil {
		t.Fatalf("transient failure should not surface, got %v", err)
	}
	if entry.RAMaster != nil || entry.Players != nil {
		t.Fatalf("expected empty entry, got %+v", entry)
	}
}

func TestLookupSurfacesUnauthorized(t *testing.T) {
	fetcher := &stubFetcher{err: fmt.Errorf("progression: %w", retroachievements.ErrUnauthorized)}
	if _, err := New(fetcher, nil).Lookup(context.Background(), 7); !errors.Is(err, retroachievements.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLookupSkipsMissingID(t *testing.T) {
	fetcher := &stubFetcher{}
	if _, err := New(fetcher, nil).Lookup(context.Background(), 0); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if fetcher.calls != 0 {
		t.Fatal("items without an ID should not call the API")
	}
}
