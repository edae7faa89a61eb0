package youtube

import (
	"context"
	"log/slog"
	"strings"

	"github.com/coachtube/coachtube/internal/engine"
)

// Transcript extraction. No single caption source works for every channel —
// age restrictions, auto-caption-only videos and region locks each break a
// different surface — so resilience comes from strategy diversity, not from
// retrying one approach harder. Strategies are interchangeable, priority
// ordered, independently failing units behind one interface.

// Strategy is one transcript-retrieval method. Attempt returns the joined
// transcript text; an error or empty string means this strategy failed for
// this video and the cascade moves on.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, videoID string) (string, error)
}

// registration binds a strategy to its retry policy. Retry is a property of
// the registration, not a blanket wrapper: historically only the third-party
// proxy has been flaky enough to warrant it.
type registration struct {
	strategy Strategy
	retry    *engine.RetryConfig // nil = single attempt
}

// Extractor runs the strategy cascade for one video id at a time.
type Extractor struct {
	strategies []registration
}

// NewExtractor builds the default cascade: watch-page caption tracks, then
// the ANDROID Innertube client, then the third-party proxy (retry-wrapped)
// when one is configured.
func NewExtractor() *Extractor {
	e := &Extractor{}
	e.Register(&captionsStrategy{}, nil)
	e.Register(&innertubeStrategy{}, nil)
	if engine.Cfg.TranscriptProxyURL != "" {
		rc := engine.ProxyRetryConfig
		e.Register(&proxyStrategy{}, &rc)
	}
	return e
}

// Register appends a strategy with an optional retry policy.
func (e *Extractor) Register(s Strategy, retry *engine.RetryConfig) {
	e.strategies = append(e.strategies, registration{strategy: s, retry: retry})
}

// Extract attempts each strategy in priority order and returns the first
// non-empty transcript. When every strategy exhausts, the result is a
// definitive Unavailable — callers must not retry the same video within one
// ingestion run.
func (e *Extractor) Extract(ctx context.Context, videoID string) TranscriptResult {
	engine.IncrTranscriptAttempts()

	// Retrains within the cache TTL reuse extracted transcripts instead of
	// re-scraping. Only successes are cached; unavailability may be transient
	// across runs.
	cacheKey := engine.CacheKey("transcript", videoID)
	if cached, ok := engine.CacheLoadJSON[TranscriptResult](ctx, cacheKey); ok && cached.Status == StatusSuccess {
		return cached
	}

	for _, reg := range e.strategies {
		var text string
		var err error
		if reg.retry != nil {
			text, err = engine.RetryDo(ctx, *reg.retry, func() (string, error) {
				return reg.strategy.Attempt(ctx, videoID)
			})
		} else {
			text, err = reg.strategy.Attempt(ctx, videoID)
		}
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Warn("transcript: strategy failed, falling through",
				slog.String("strategy", reg.strategy.Name()),
				slog.String("video", videoID),
				slog.Any("error", err))
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			res := Success(text, reg.strategy.Name())
			engine.CacheStoreJSON(ctx, cacheKey, res)
			return res
		}
	}

	engine.IncrTranscriptUnavailable()
	return Unavailable()
}

// WatchURL returns the canonical watch URL for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// videoURLFor picks watch vs shorts form. Canonical video ids are 11
// characters; anything else is assumed to be a short.
func videoURLFor(videoID string) string {
	if len(videoID) == 11 {
		return WatchURL(videoID)
	}
	return "https://www.youtube.com/shorts/" + videoID
}
