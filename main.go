// coachtube — YouTube channel → AI coach MCP server.
//
// Ingests a YouTube channel (metadata, uploads, transcripts), builds a coach
// persona from it, and exposes the coach lifecycle as MCP tools: coach_train,
// coach_retrain, coach_status, coach_chat, coach_list, coach_delete.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/coachtube/coachtube/internal/coachserver"
	"github.com/coachtube/coachtube/internal/engine"
	"github.com/coachtube/coachtube/internal/store"
	"github.com/coachtube/coachtube/internal/training"
	"github.com/coachtube/coachtube/internal/youtube"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initEngine()

	slog.Info("starting coachtube",
		slog.String("port", mcpPort),
	)

	ctx := context.Background()

	st, err := store.Open(ctx, engine.Cfg.DatabaseURL, engine.Cfg.SQLitePath)
	if err != nil {
		slog.Error("store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.Close()

	yt, err := youtube.NewClient(ctx, engine.Cfg.YouTubeAPIKey, engine.Cfg.YouTubeAPIKeyFallback)
	if err != nil {
		slog.Error("youtube client init failed", slog.Any("error", err))
		os.Exit(1)
	}

	deps := coachserver.Deps{
		Store:        st,
		Orchestrator: youtube.NewOrchestrator(yt, yt, yt, youtube.NewExtractor()),
	}
	if env.Str("LLM_SUMMARIES", "") == "1" {
		deps.Summarizer = training.LLMSummarizer{}
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "coachtube",
		Version: version,
	}, nil)

	coachserver.RegisterTools(server, deps)
	slog.Info("tools registered", slog.Int("count", 6))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "coachtube",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),

		LLMAPIKey:          env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:           env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 1000),

		TranscriptProxyURL:     env.Str("TRANSCRIPT_PROXY_URL", ""),
		TranscriptProxyTimeout: env.Duration("TRANSCRIPT_PROXY_TIMEOUT", 120*time.Second),

		MaxVideos:     env.Int("MAX_VIDEOS", 50),
		IngestTimeout: env.Duration("INGEST_TIMEOUT", 4*time.Minute),

		DatabaseURL: env.Str("DATABASE_URL", ""),
		SQLitePath:  env.Str("SQLITE_PATH", ""),

		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),

		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Warn("stealth client init failed, watch pages use plain HTTP", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", engine.CacheTTL)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
