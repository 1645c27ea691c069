package engine

import (
	"net/http"
	"path/filepath"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	ConfigDir        string // credential + quota state directory, e.g. ~/.go_tube
	ClientSecretPath string // Google OAuth client_secret.json
	APIKey           string // optional API key for public-only Data API calls

	QuotaDailyLimit int    // default 10,000 units
	QuotaDBPath     string // empty = <ConfigDir>/quota.db
	CostsPath       string // optional costs.yaml override

	FetchTimeout         time.Duration
	ScrapeRate           float64 // fallback-tier requests per second
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient *http.Client
	Browser    *stealth.BrowserClient // nil = fallback tier uses plain HTTPClient
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages and tools.
var Cfg = &cfg

// Long-lived engine state, built once by Init. Tool handlers go through
// these; tests construct fresh instances via the exported constructors.
var (
	Quota       *Ledger
	Session     *SessionManager
	Dispatch    *Dispatcher
	DataAPI     *YouTubeClient
	Analytics   *AnalyticsClient
	Reporting   *ReportingClient
	Transcripts *TranscriptResolver
	Reports     *JobTracker
)

// Init wires the engine from the given configuration. The ledger and session
// manager are constructed first and injected into the dispatcher, which every
// metered call then passes through.
func Init(c Config) error {
	cfg = c
	Cfg = &cfg

	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.QuotaDailyLimit <= 0 {
		cfg.QuotaDailyLimit = DefaultDailyLimit
	}
	if cfg.QuotaDBPath == "" && cfg.ConfigDir != "" {
		cfg.QuotaDBPath = filepath.Join(cfg.ConfigDir, "quota.db")
	}

	ledger, err := NewLedger(LedgerConfig{
		DailyLimit: cfg.QuotaDailyLimit,
		DBPath:     cfg.QuotaDBPath,
		CostsPath:  cfg.CostsPath,
	})
	if err != nil {
		return err
	}

	session, err := NewSessionManager(SessionConfig{
		ClientSecretPath: cfg.ClientSecretPath,
		TokenPath:        filepath.Join(cfg.ConfigDir, "token.json"),
		APIKey:           cfg.APIKey,
		HTTPClient:       cfg.HTTPClient,
	})
	if err != nil {
		return err
	}

	Quota = ledger
	Session = session
	Dispatch = NewDispatcher(ledger, session)
	DataAPI = NewYouTubeClient(cfg.HTTPClient, cfg.APIKey)
	Analytics = NewAnalyticsClient(cfg.HTTPClient)
	Reporting = NewReportingClient(cfg.HTTPClient)
	Transcripts = NewTranscriptResolver(Dispatch, DataAPI, NewTimedTextClient(cfg.Browser, cfg.HTTPClient, cfg.ScrapeRate))
	Reports = NewJobTracker(Dispatch, Reporting)
	return nil
}
