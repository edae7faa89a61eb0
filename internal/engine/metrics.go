package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	ChannelResolutions    atomic.Int64
	ChannelFetches        atomic.Int64
	PagesListed           atomic.Int64
	TranscriptAttempts    atomic.Int64
	TranscriptCaptions    atomic.Int64 // watch-page caption track hits
	TranscriptInnertube   atomic.Int64 // ANDROID player hits
	TranscriptProxy       atomic.Int64 // third-party proxy hits
	TranscriptUnavailable atomic.Int64
	IngestRuns            atomic.Int64
	IngestFailures        atomic.Int64
	LLMCalls              atomic.Int64
	LLMErrors             atomic.Int64
	ChatRequests          atomic.Int64
	ChatTokensIn          atomic.Int64
	ChatTokensOut         atomic.Int64
}

func IncrChannelResolutions()    { metrics.ChannelResolutions.Add(1) }
func IncrChannelFetches()        { metrics.ChannelFetches.Add(1) }
func IncrPagesListed()           { metrics.PagesListed.Add(1) }
func IncrTranscriptAttempts()    { metrics.TranscriptAttempts.Add(1) }
func IncrTranscriptCaptions()    { metrics.TranscriptCaptions.Add(1) }
func IncrTranscriptInnertube()   { metrics.TranscriptInnertube.Add(1) }
func IncrTranscriptProxy()       { metrics.TranscriptProxy.Add(1) }
func IncrTranscriptUnavailable() { metrics.TranscriptUnavailable.Add(1) }
func IncrIngestRuns()            { metrics.IngestRuns.Add(1) }
func IncrIngestFailures()        { metrics.IngestFailures.Add(1) }
func IncrLLMCalls()              { metrics.LLMCalls.Add(1) }
func IncrLLMErrors()             { metrics.LLMErrors.Add(1) }
func IncrChatRequests()          { metrics.ChatRequests.Add(1) }
func AddChatTokensIn(n int64)    { metrics.ChatTokensIn.Add(n) }
func AddChatTokensOut(n int64)   { metrics.ChatTokensOut.Add(n) }

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"channel_resolutions":    metrics.ChannelResolutions.Load(),
		"channel_fetches":        metrics.ChannelFetches.Load(),
		"pages_listed":           metrics.PagesListed.Load(),
		"transcript_attempts":    metrics.TranscriptAttempts.Load(),
		"transcript_captions":    metrics.TranscriptCaptions.Load(),
		"transcript_innertube":   metrics.TranscriptInnertube.Load(),
		"transcript_proxy":       metrics.TranscriptProxy.Load(),
		"transcript_unavailable": metrics.TranscriptUnavailable.Load(),
		"ingest_runs":            metrics.IngestRuns.Load(),
		"ingest_failures":        metrics.IngestFailures.Load(),
		"llm_calls":              metrics.LLMCalls.Load(),
		"llm_errors":             metrics.LLMErrors.Load(),
		"chat_requests":          metrics.ChatRequests.Load(),
		"chat_tokens_in":         metrics.ChatTokensIn.Load(),
		"chat_tokens_out":        metrics.ChatTokensOut.Load(),
		"cache_hits":             hits,
		"cache_misses":           misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	snapshot := GetMetrics()
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, snapshot[k])
	}
	return sb.String()
}
