package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

type fakeServices struct {
	ra           *httptest.Server
	hltb         *httptest.Server
	hltbCalls    atomic.Int32
	listCalls    atomic.Int32
	unauthorized atomic.Bool
	newGame      atomic.Bool
}

func newFakeServices(t *testing.T) *fakeServices {
	t.Helper()
	f := &fakeServices{}

	f.ra = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.unauthorized.Load() || r.URL.Query().Get("y") != "secret-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch filepath.Base(r.URL.Path) {
		case "API_GetUserWantToPlayList.php":
			f.listCalls.Add(1)
			games := []string{
				`{"ID":1,"Title":"Chrono Trigger","ConsoleName":"SNES/Super Famicom","AchievementsPublished":50,"PointsTotal":400}`,
				`{"ID":2,"Title":"~Homebrew~ Mystery Game","ConsoleName":"NES/Famicom","AchievementsPublished":10,"PointsTotal":100}`,
			}
			if f.newGame.Load() {
				games = append(games,
					`{"ID":3,"Title":"Secret of Mana","ConsoleName":"SNES/Super Famicom","AchievementsPublished":60,"PointsTotal":500}`)
			}
			fmt.Fprintf(w, `{"Count":%d,"Total":%d,"Results":[%s]}`, len(games), len(games), strings.Join(games, ","))
		case "API_GetGameProgression.php":
			if r.URL.Query().Get("i") == "1" {
				fmt.Fprint(w, `{"ID":1,"NumDistinctPlayers":500,"MedianTimeToBeat":36000,"MedianTimeToMaster":72000}`)
				return
			}
			fmt.Fprint(w, `{"ID":2}`)
		case "API_GetGameExtended.php":
			fmt.Fprint(w, `{"ID":1,"Title":"Chrono Trigger","ConsoleName":"SNES/Super Famicom","NumAchievements":2,
				"Achievements":{"10":{"Points":10},"11":{"Points":25}}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.ra.Close)

	f.hltb = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hltbCalls.Add(1)
		var req struct {
			SearchTerms []string `json:"searchTerms"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if strings.Join(req.SearchTerms, " ") == "Chrono Trigger" {
			fmt.Fprint(w, `{"count":1,"data":[{"game_id":4,"game_name":"Chrono Trigger","comp_main":82800,"comp_plus":115200,"comp_100":151200}]}`)
			return
		}
		fmt.Fprint(w, `{"count":0,"data":[]}`)
	}))
	t.Cleanup(f.hltb.Close)
	return f
}

type cliTestEnv struct {
	configPath string
	dataDir    string
	services   *fakeServices
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("BACKLOGTIMER_LOG_LEVEL", "error")

	services := newFakeServices(t)
	dataDir := filepath.Join(base, "data")
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[retroachievements]
username = "player"
api_key = "secret-key"
base_url = %q

[hltb]
base_url = %q
rate_limit_ms = 0

[pipeline]
max_concurrency = 2
batch_size = 1
request_delay_ms = 0
`, dataDir, filepath.Join(base, "logs"), services.ra.URL+"/API", services.hltb.URL)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{configPath: configPath, dataDir: dataDir, services: services}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
