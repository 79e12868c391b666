package retroachievements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"backlogtimer/internal/httputil"
)

// ErrUnauthorized reports that the API key was rejected.
var ErrUnauthorized = errors.New("retroachievements: invalid API key or unauthorized")

// DefaultBaseURL is the public web API root.
const DefaultBaseURL = "https://retroachievements.org/API"

// Client provides access to the RetroAchievements web API.
type Client struct {
	apiKey     string
	baseURL    string
	pageSize   int
	maxRetries int
	httpClient *http.Client
}

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

// WithPageSize sets how many list entries are requested per page.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithMaxRetries sets how many HTTP 429 responses are retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// New creates a RetroAchievements client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("retroachievements api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		pageSize:   500,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ListEntry is one game on a user's Want to Play list.
type ListEntry struct {
	ID                    int    `json:"ID"`
	Title                 string `json:"Title"`
	ConsoleID             int    `json:"ConsoleID,omitempty"`
	ConsoleName           string `json:"ConsoleName"`
	AchievementsPublished int    `json:"AchievementsPublished"`
	PointsTotal           int    `json:"PointsTotal"`
}

type listPage struct {
	Count   int         `json:"Count"`
	Total   int         `json:"Total"`
	Results []ListEntry `json:"Results"`
}

// Progression carries the player-reported completion statistics for one game.
// Median times are seconds; zero means the site has no data.
type Progression struct {
	ID                         int     `json:"ID"`
	Title                      string  `json:"Title"`
	ConsoleName                string  `json:"ConsoleName"`
	NumDistinctPlayers         int     `json:"NumDistinctPlayers"`
	MedianTimeToBeat           float64 `json:"MedianTimeToBeat"`
	MedianTimeToBeatHardcore   float64 `json:"MedianTimeToBeatHardcore"`
	MedianTimeToMaster         float64 `json:"MedianTimeToMaster"`
	MedianTimeToMasterHardcore float64 `json:"MedianTimeToMasterHardcore"`
}

// GameInfo is the metadata needed to look a game up by ID.
type GameInfo struct {
	ID           int
	Title        string
	ConsoleName  string
	Achievements int
	Points       int
}

type gameExtended struct {
	ID              int    `json:"ID"`
	Title           string `json:"Title"`
	ConsoleName     string `json:"ConsoleName"`
	NumAchievements int    `json:"NumAchievements"`
	Achievements    map[string]struct {
		Points int `json:"Points"`
	} `json:"Achievements"`
}

// WantToPlayList fetches every page of username's Want to Play list. Paging
// stops on an empty page or once the offset reaches the reported total.
func (c *Client) WantToPlayList(ctx context.Context, username string) ([]ListEntry, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username must not be empty")
	}
	var all []ListEntry
	for offset := 0; ; offset += c.pageSize {
		params := url.Values{}
		params.Set("u", username)
		params.Set("c", strconv.Itoa(c.pageSize))
		params.Set("o", strconv.Itoa(offset))

		var page listPage
		if err := c.get(ctx, "API_GetUserWantToPlayList.php", params, &page); err != nil {
			return nil, err
		}
		if len(page.Results) == 0 {
			break
		}
		all = append(all, page.Results...)
		if offset+c.pageSize >= page.Total {
			break
		}
	}
	return all, nil
}

// GameProgression fetches median completion statistics for gameID.
func (c *Client) GameProgression(ctx context.Context, gameID int) (*Progression, error) {
	if gameID <= 0 {
		return nil, fmt.Errorf("invalid game id %d", gameID)
	}
	params := url.Values{}
	params.Set("i", strconv.Itoa(gameID))
	var payload Progression
	if err := c.get(ctx, "API_GetGameProgression.php", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Game fetches title, console, and achievement totals for gameID.
func (c *Client) Game(ctx context.Context, gameID int) (*GameInfo, error) {
	if gameID <= 0 {
		return nil, fmt.Errorf("invalid game id %d", gameID)
	}
	params := url.Values{}
	params.Set("i", strconv.Itoa(gameID))
	var payload gameExtended
	if err := c.get(ctx, "API_GetGameExtended.php", params, &payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.Title) == "" {
		return nil, fmt.Errorf("game %d not found", gameID)
	}
	info := &GameInfo{
		ID:           gameID,
		Title:        payload.Title,
		ConsoleName:  payload.ConsoleName,
		Achievements: payload.NumAchievements,
	}
	for _, ach := range payload.Achievements {
		info.Points += ach.Points
	}
	if info.Achievements == 0 {
		info.Achievements = len(payload.Achievements)
	}
	return info, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	target, err := url.Parse(c.baseURL + "/" + endpoint)
	if err != nil {
		return fmt.Errorf("parse retroachievements url: %w", err)
	}
	params.Set("y", c.apiKey)
	target.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("%s: execute request (latency=%v): %w", endpoint, latency, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s returned %d (latency=%v)", endpoint, resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
