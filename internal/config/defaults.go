package config

const (
	defaultDataDir            = "~/.local/share/backlogtimer"
	defaultLogDir             = "~/.local/share/backlogtimer/logs"
	defaultProgressFile       = "hltb_progress.json"
	defaultListCacheFile      = "ra_wanttoplay_cache.json"
	defaultTableFile          = "backlog.db"
	defaultRABaseURL          = "https://retroachievements.org/API"
	defaultRAPageSize         = 500
	defaultRATimeoutSeconds   = 30
	defaultHLTBBaseURL        = "https://howlongtobeat.com"
	defaultHLTBSearchPath     = "/api/search"
	defaultHLTBUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) backlogtimer/dev"
	defaultHLTBTimeoutSeconds = 30
	defaultHLTBResultsPerPage = 20
	defaultHLTBRateLimitMS    = 250
	defaultMaxRetries         = 4
	defaultMaxConcurrency     = 5
	defaultBatchSize          = 25
	defaultRequestDelayMS     = 300
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:       defaultDataDir,
			LogDir:        defaultLogDir,
			ProgressFile:  defaultProgressFile,
			ListCacheFile: defaultListCacheFile,
			TableFile:     defaultTableFile,
		},
		RetroAchievements: RetroAchievements{
			BaseURL:        defaultRABaseURL,
			PageSize:       defaultRAPageSize,
			TimeoutSeconds: defaultRATimeoutSeconds,
			MaxRetries:     defaultMaxRetries,
		},
		HLTB: HLTB{
			BaseURL:        defaultHLTBBaseURL,
			SearchPath:     defaultHLTBSearchPath,
			UserAgent:      defaultHLTBUserAgent,
			TimeoutSeconds: defaultHLTBTimeoutSeconds,
			ResultsPerPage: defaultHLTBResultsPerPage,
			RateLimitMS:    defaultHLTBRateLimitMS,
			MaxRetries:     defaultMaxRetries,
		},
		Pipeline: Pipeline{
			MaxConcurrency: defaultMaxConcurrency,
			BatchSize:      defaultBatchSize,
			RequestDelayMS: defaultRequestDelayMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
