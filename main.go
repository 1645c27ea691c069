// go_tube — YouTube channel management MCP server.
//
// Exposes the YouTube Data, Analytics and Reporting APIs as MCP tools behind
// a local quota ledger, so agents can read channel data, publish videos, pull
// analytics and schedule bulk reports without blowing the daily API budget.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/tubeserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	if err := initEngine(); err != nil {
		slog.Error("engine init failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting go_tube",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_tube",
		Version: version,
	}, nil)

	tubeserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 40))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_tube",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() error {
	configDir := env.Str("GO_TUBE_DIR", "")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configDir = filepath.Join(home, ".go_tube")
	}

	var browser *stealth.BrowserClient
	if env.Str("SCRAPE_DISABLE_BROWSER", "") == "" {
		b, err := stealth.NewClient(stealth.WithTimeout(15))
		if err != nil {
			slog.Warn("stealth client unavailable, falling back to plain HTTP", slog.Any("error", err))
		} else {
			browser = b
		}
	}

	c := engine.Config{
		ConfigDir:            configDir,
		ClientSecretPath:     env.Str("YOUTUBE_CLIENT_SECRET", filepath.Join(configDir, "client_secret.json")),
		APIKey:               env.Str("YOUTUBE_API_KEY", ""),
		QuotaDailyLimit:      env.Int("QUOTA_DAILY_LIMIT", engine.DefaultDailyLimit),
		QuotaDBPath:          env.Str("QUOTA_DB_PATH", ""),
		CostsPath:            env.Str("QUOTA_COSTS_PATH", ""),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 30*time.Second),
		ScrapeRate:           env.Float("SCRAPE_RATE", 1.0),
		CacheTTL:             env.Duration("CACHE_TTL", 15*time.Minute),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: env.Duration("FETCH_TIMEOUT", 30*time.Second),
		},
		Browser: browser,
	}

	if err := engine.Init(c); err != nil {
		return err
	}

	engine.InitCache(
		env.Str("REDIS_URL", ""),
		c.CacheTTL,
		c.CacheMaxEntries,
		c.CacheCleanupInterval,
	)
	return nil
}
