package retroachievements_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"backlogtimer/internal/retroachievements"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := retroachievements.New("", "https://example.com"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestWantToPlayListPaginates(t *testing.T) {
	var (
		mu      sync.Mutex
		offsets []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/API_GetUserWantToPlayList.php" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("y") != "key" || q.Get("u") != "player" || q.Get("c") != "2" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		mu.Lock()
		offsets = append(offsets, q.Get("o"))
		mu.Unlock()
		offset, _ := strconv.Atoi(q.Get("o"))
		w.Header().Set("Content-Type", "application/json")
		switch offset {
		case 0:
			_, _ = w.Write([]byte(`{"Count":2,"Total":3,"Results":[
				{"ID":1,"Title":"Chrono Trigger","ConsoleName":"SNES/Super Famicom","AchievementsPublished":77,"PointsTotal":800},
				{"ID":2,"Title":"Metroid","ConsoleName":"NES/Famicom","AchievementsPublished":30,"PointsTotal":400}]}`))
		case 2:
			_, _ = w.Write([]byte(`{"Count":1,"Total":3,"Results":[{"ID":3,"Title":"Okami","ConsoleName":"PlayStation 2"}]}`))
		default:
			_, _ = w.Write([]byte(`{"Count":0,"Total":3,"Results":[]}`))
		}
	}))
	t.Cleanup(server.Close)

	client, err := retroachievements.New("key", server.URL, retroachievements.WithPageSize(2))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	entries, err := client.WantToPlayList(context.Background(), "player")
	if err != nil {
		t.Fatalf("WantToPlayList returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].PointsTotal != 800 || entries[2].Title != "Okami" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	mu.Lock()
	defer mu.Unlock()
	if fmt.Sprint(offsets) != "[0 2]" {
		t.Fatalf("expected two pages, got offsets %v", offsets)
	}
}

func TestWantToPlayListUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client, _ := retroachievements.New("bad", server.URL)
	_, err := client.WantToPlayList(context.Background(), "player")
	if !errors.Is(err, retroachievements.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGameProgression(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/API_GetGameProgression.php" || r.URL.Query().Get("i") != "42" {
			t.Errorf("unexpected request %s", r.URL)
		}
		_, _ = w.Write([]byte(`{"ID":42,"NumDistinctPlayers":1234,"MedianTimeToBeat":36000,"MedianTimeToMaster":72000,"MedianTimeToBeatHardcore":0}`))
	}))
	t.Cleanup(server.Close)

	client, _ := retroachievements.New("key", server.URL)
	progression, err := client.GameProgression(context.Background(), 42)
	if err != nil {
		t.Fatalf("GameProgression returned error: %v", err)
	}
	if progression.MedianTimeToBeat != 36000 || progression.MedianTimeToMaster != 72000 || progression.NumDistinctPlayers != 1234 {
		t.Fatalf("unexpected progression %+v", progression)
	}
}

func TestGameProgressionServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client, _ := retroachievements.New("key", server.URL)
	_, err := client.GameProgression(context.Background(), 1)
	if err == nil || errors.Is(err, retroachievements.ErrUnauthorized) {
		t.Fatalf("expected plain error, got %v", err)
	}
}

func TestGameProgressionMaxRetries(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client, _ := retroachievements.New("key", server.URL, retroachievements.WithMaxRetries(1))
	if _, err := client.GameProgression(context.Background(), 1); err == nil {
		t.Fatal("expected error after retries are used up")
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestGameSumsPoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/API_GetGameExtended.php" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"ID":7,"Title":"Okami","ConsoleName":"PlayStation 2","NumAchievements":2,
			"Achievements":{"1":{"Points":10},"2":{"Points":25}}}`))
	}))
	t.Cleanup(server.Close)

	client, _ := retroachievements.New("key", server.URL)
	info, err := client.Game(context.Background(), 7)
	if err != nil {
		t.Fatalf("Game returned error: %v", err)
	}
	if info.Title != "Okami" || info.Points != 35 || info.Achievements != 2 {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestGameNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client, _ := retroachievements.New("key", server.URL)
	if _, err := client.Game(context.Background(), 9); err == nil {
		t.Fatal("expected error for unknown game")
	}
}
