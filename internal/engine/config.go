package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string

	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMClient          *llm.Client

	// TranscriptProxyURL is the third-party transcription endpoint used as the
	// last transcript strategy. Empty disables the proxy strategy.
	TranscriptProxyURL     string
	TranscriptProxyTimeout time.Duration

	// MaxVideos is the default listing cap per ingestion run.
	MaxVideos int

	// IngestTimeout is the wall-clock budget for one full ingestion run.
	// A run chains dozens of sequential network calls; minutes, not seconds.
	IngestTimeout time.Duration

	DatabaseURL string // Postgres store when set; sqlite otherwise
	SQLitePath  string

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = watch-page scraping uses HTTPClient
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (youtube, training, coachserver).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
