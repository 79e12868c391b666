package hltb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hbollon/go-edlib"

	"backlogtimer/internal/httputil"
	"backlogtimer/internal/matching"
)

const secondsPerHour = 3600.0

// ErrMalformedResponse reports a 200 response whose body is not a search
// result. The service returns HTML error pages this way.
var ErrMalformedResponse = errors.New("malformed hltb response")

// Searcher is the lookup surface the time lookup depends on.
type Searcher interface {
	Search(ctx context.Context, term string) ([]matching.Candidate, error)
}

// Client queries the HowLongToBeat search API.
type Client struct {
	baseURL       string
	searchPath    string
	userAgent     string
	pageSize      int
	minSimilarity float64
	maxRetries    int
	httpClient    *http.Client
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSearchPath overrides the search endpoint path. The site moves it now and then.
func WithSearchPath(path string) Option {
	return func(c *Client) {
		path = strings.TrimSpace(path)
		if path == "" {
			return
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		c.searchPath = path
	}
}

// WithUserAgent sets the User-Agent header. The site rejects empty agents.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// WithPageSize caps the number of candidates requested per search.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithMinSimilarity drops candidates whose similarity falls below min.
func WithMinSimilarity(min float64) Option {
	return func(c *Client) {
		if min >= 0 && min <= 1 {
			c.minSimilarity = min
		}
	}
}

// WithMaxRetries sets how many HTTP 429 responses are retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// New creates a HowLongToBeat client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("hltb base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		searchPath: "/api/search",
		userAgent:  "Mozilla/5.0 backlogtimer",
		pageSize:   20,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type searchRequest struct {
	SearchType    string        `json:"searchType"`
	SearchTerms   []string      `json:"searchTerms"`
	SearchPage    int           `json:"searchPage"`
	Size          int           `json:"size"`
	SearchOptions searchOptions `json:"searchOptions"`
	UseCache      bool          `json:"useCache"`
}

type searchOptions struct {
	Games      gameOptions `json:"games"`
	Filter     string      `json:"filter"`
	Sort       int         `json:"sort"`
	Randomizer int         `json:"randomizer"`
}

type gameOptions struct {
	UserID        int       `json:"userId"`
	Platform      string    `json:"platform"`
	SortCategory  string    `json:"sortCategory"`
	RangeCategory string    `json:"rangeCategory"`
	RangeTime     rangeTime `json:"rangeTime"`
	Modifier      string    `json:"modifier"`
}

type rangeTime struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

// Game is one raw search hit. Completion fields are seconds.
type Game struct {
	ID              int     `json:"game_id"`
	Name            string  `json:"game_name"`
	Alias           string  `json:"game_alias"`
	Platform        string  `json:"profile_platform"`
	MainSeconds     float64 `json:"comp_main"`
	ExtraSeconds    float64 `json:"comp_plus"`
	CompleteSeconds float64 `json:"comp_100"`
}

type searchResponse struct {
	Count int    `json:"count"`
	Data  []Game `json:"data"`
}

// Search returns candidates for term in the order the service ranked them.
// DLC entries are excluded server-side. An empty result is not an error.
func (c *Client) Search(ctx context.Context, term string) ([]matching.Candidate, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errors.New("search term must not be empty")
	}

	body, err := json.Marshal(searchRequest{
		SearchType:  "games",
		SearchTerms: strings.Fields(term),
		SearchPage:  1,
		Size:        c.pageSize,
		SearchOptions: searchOptions{
			Games: gameOptions{
				SortCategory:  "popular",
				RangeCategory: "main",
				Modifier:      "hide_dlc",
			},
		},
		UseCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("encode hltb search: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.baseURL+"/")
	req.Header.Set("Origin", c.baseURL)

	requestStart := time.Now()
	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hltb search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return c.candidates(term, payload.Data), nil
}

func (c *Client) candidates(term string, games []Game) []matching.Candidate {
	out := make([]matching.Candidate, 0, len(games))
	for _, game := range games {
		if strings.TrimSpace(game.Name) == "" {
			continue
		}
		similarity := Similarity(term, game.Name)
		if alias := strings.TrimSpace(game.Alias); alias != "" {
			similarity = max(similarity, Similarity(term, alias))
		}
		if similarity < c.minSimilarity {
			continue
		}
		out = append(out, matching.Candidate{
			ID:                 game.ID,
			Name:               game.Name,
			Similarity:         similarity,
			MainStoryHours:     game.MainSeconds / secondsPerHour,
			MainExtraHours:     game.ExtraSeconds / secondsPerHour,
			CompletionistHours: game.CompleteSeconds / secondsPerHour,
		})
	}
	return out
}

// Similarity compares two titles case-insensitively and returns a value in [0,1].
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return float64(edlib.JaroWinklerSimilarity(a, b))
}
