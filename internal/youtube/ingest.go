package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/coachtube/coachtube/internal/engine"
)

const (
	// DefaultMaxVideos caps how many uploads one run lists.
	DefaultMaxVideos = 50
	// TranscriptCap caps how many of the listed videos get a transcript
	// attempt; extraction is the expensive tail of the pipeline.
	TranscriptCap = 15
	// ThrottleInterval is the minimum spacing between transcript attempts.
	ThrottleInterval = 2 * time.Second

	// setupPercent is the progress credited to the channel-level phase
	// (resolve + metadata + listing); the remainder is spread evenly over
	// transcript attempts.
	setupPercent = 5
)

// ChannelResolver resolves a channel URL to a canonical channel id.
type ChannelResolver interface {
	Resolve(ctx context.Context, rawURL string) (string, error)
}

// ChannelFetcher fetches a channel metadata snapshot.
type ChannelFetcher interface {
	FetchChannelInfo(ctx context.Context, channelID string) (*ChannelInfo, error)
}

// VideoLister lists a channel's uploads, newest first, up to maxVideos.
type VideoLister interface {
	ListVideos(ctx context.Context, channelID string, maxVideos int) ([]VideoRecord, error)
}

// TranscriptExtractor extracts one video's transcript.
type TranscriptExtractor interface {
	Extract(ctx context.Context, videoID string) TranscriptResult
}

// Orchestrator runs the full ingestion pipeline for one channel URL:
// resolve, fetch metadata, list uploads, extract transcripts. Channel-level
// failures abort the run; per-video transcript failures do not.
type Orchestrator struct {
	resolver  ChannelResolver
	fetcher   ChannelFetcher
	lister    VideoLister
	extractor TranscriptExtractor

	maxVideos     int
	transcriptCap int
	limiter       *rate.Limiter
}

// NewOrchestrator wires the pipeline stages together. A *Client satisfies the
// first three interfaces; pass it three times in the common case.
func NewOrchestrator(resolver ChannelResolver, fetcher ChannelFetcher, lister VideoLister, extractor TranscriptExtractor) *Orchestrator {
	maxVideos := engine.Cfg.MaxVideos
	if maxVideos <= 0 {
		maxVideos = DefaultMaxVideos
	}
	return &Orchestrator{
		resolver:      resolver,
		fetcher:       fetcher,
		lister:        lister,
		extractor:     extractor,
		maxVideos:     maxVideos,
		transcriptCap: TranscriptCap,
		limiter:       rate.NewLimiter(rate.Every(ThrottleInterval), 1),
	}
}

// Ingest runs the pipeline for channelURL. The caller bounds the run with ctx;
// on cancellation the partial result is discarded and the error returned.
// maxVideos caps how many uploads are listed for this run; zero or negative
// means the orchestrator's configured default. Progress updates go to sink;
// pass nil to ignore them.
func (o *Orchestrator) Ingest(ctx context.Context, channelURL string, maxVideos int, sink ProgressSink) (*Summary, error) {
	if maxVideos <= 0 {
		maxVideos = o.maxVideos
	}
	if sink == nil {
		sink = nopSink{}
	}
	engine.IncrIngestRuns()
	start := time.Now()

	channelID, err := o.resolver.Resolve(ctx, channelURL)
	if err != nil {
		engine.IncrIngestFailures()
		return nil, fmt.Errorf("resolve channel: %w", err)
	}

	info, err := o.fetcher.FetchChannelInfo(ctx, channelID)
	if err != nil {
		engine.IncrIngestFailures()
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, err)
	}

	videos, err := o.lister.ListVideos(ctx, channelID, maxVideos)
	if err != nil {
		engine.IncrIngestFailures()
		return nil, fmt.Errorf("list videos for %s: %w", channelID, err)
	}

	attempts := len(videos)
	if attempts > o.transcriptCap {
		attempts = o.transcriptCap
	}
	sink.Publish(Progress{VideosProcessed: 0, VideosTotal: attempts, Percent: setupPercent})

	extracted := make([]VideoRecord, 0, attempts)
	totalChars := 0
	for i := 0; i < attempts; i++ {
		if err := o.limiter.Wait(ctx); err != nil {
			engine.IncrIngestFailures()
			return nil, fmt.Errorf("ingestion cancelled: %w", err)
		}

		res := o.extractor.Extract(ctx, videos[i].ID)
		if res.Status == StatusSuccess {
			videos[i].TranscriptState = TranscriptPresent
			videos[i].Transcript = res.Text
			totalChars += len(res.Text)
			extracted = append(extracted, videos[i])
		} else {
			videos[i].TranscriptState = TranscriptMissing
			slog.Debug("no transcript", "video_id", videos[i].ID, "title", videos[i].Title)
		}

		sink.Publish(Progress{
			VideosProcessed: i + 1,
			VideosTotal:     attempts,
			Percent:         setupPercent + (100-setupPercent)*(i+1)/attempts,
		})
	}

	if err := ctx.Err(); err != nil {
		engine.IncrIngestFailures()
		return nil, fmt.Errorf("ingestion cancelled: %w", err)
	}

	summary := &Summary{
		ChannelInfo:               info,
		Videos:                    extracted,
		TotalVideosProcessed:      len(videos),
		TotalTranscriptsExtracted: len(extracted),
		TotalTranscriptChars:      totalChars,
		AverageDurationSeconds:    averageDuration(videos),
		ChannelAge:                channelAge(info.JoinedAt, time.Now()),
		ListedVideos:              videos,
	}

	slog.Info("ingestion complete",
		"channel", info.Title,
		"videos", len(videos),
		"attempted", attempts,
		"transcripts", len(extracted),
		"chars", totalChars,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return summary, nil
}

// averageDuration averages over every listed video with a parsed duration,
// not just the transcript-bearing subset.
func averageDuration(videos []VideoRecord) int64 {
	var sum, n int64
	for _, v := range videos {
		if v.DurationSeconds != nil {
			sum += *v.DurationSeconds
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// channelAge buckets the channel's age into a coarse human label.
func channelAge(joined, now time.Time) string {
	if joined.IsZero() || joined.After(now) {
		return "unknown"
	}
	days := int(now.Sub(joined).Hours() / 24)
	switch {
	case days < 1:
		return "less than a day"
	case days < 31:
		return plural(days, "day")
	case days < 365:
		return plural(days/30, "month")
	}
	years := days / 365
	months := (days % 365) / 30
	if months == 0 {
		return plural(years, "year")
	}
	return plural(years, "year") + " " + plural(months, "month")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
