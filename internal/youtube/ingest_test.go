package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

type fakeResolver struct {
	id  string
	err error
}

func (f *fakeResolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	return f.id, f.err
}

type fakeFetcher struct {
	info *ChannelInfo
	err  error
}

func (f *fakeFetcher) FetchChannelInfo(ctx context.Context, channelID string) (*ChannelInfo, error) {
	return f.info, f.err
}

type fakeLister struct {
	available int
	err       error
}

func (f *fakeLister) ListVideos(ctx context.Context, channelID string, maxVideos int) ([]VideoRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	n := f.available
	if n > maxVideos {
		n = maxVideos
	}
	out := make([]VideoRecord, n)
	for i := range out {
		d := int64(120)
		out[i] = VideoRecord{ID: fmt.Sprintf("video%05d", i), Title: fmt.Sprintf("Video %d", i), DurationSeconds: &d}
	}
	return out, nil
}

// fakeExtractor fails every video id listed in failFor.
type fakeExtractor struct {
	failFor map[string]bool
	calls   int
}

func (f *fakeExtractor) Extract(ctx context.Context, videoID string) TranscriptResult {
	f.calls++
	if f.failFor[videoID] {
		return Unavailable()
	}
	return Success("transcript for "+videoID, "fake")
}

func newTestOrchestrator(r ChannelResolver, f ChannelFetcher, l VideoLister, e TranscriptExtractor) *Orchestrator {
	o := NewOrchestrator(r, f, l, e)
	o.limiter = rate.NewLimiter(rate.Inf, 1) // no throttling in tests
	return o
}

func testChannelInfo() *ChannelInfo {
	return &ChannelInfo{
		ID:       "UCtest",
		Title:    "Test Coach",
		JoinedAt: time.Now().AddDate(-2, -1, 0),
	}
}

func TestIngestHappyPath(t *testing.T) {
	ext := &fakeExtractor{failFor: map[string]bool{
		"video00001": true,
		"video00004": true,
		"video00009": true,
	}}
	o := newTestOrchestrator(
		&fakeResolver{id: "UCtest"},
		&fakeFetcher{info: testChannelInfo()},
		&fakeLister{available: 60},
		ext,
	)

	var updates []Progress
	sum, err := o.Ingest(context.Background(), "https://youtube.com/@testcoach", 0, ProgressFunc(func(p Progress) {
		updates = append(updates, p)
	}))
	if err != nil {
		t.Fatal(err)
	}

	// The headline count covers every listed video, not just the
	// transcript-capped prefix that got an extraction attempt.
	if sum.TotalVideosProcessed != DefaultMaxVideos {
		t.Errorf("TotalVideosProcessed = %d, want %d", sum.TotalVideosProcessed, DefaultMaxVideos)
	}
	if ext.calls != TranscriptCap {
		t.Errorf("extractor ran %d times, want %d", ext.calls, TranscriptCap)
	}
	if sum.TotalTranscriptsExtracted != TranscriptCap-3 {
		t.Errorf("TotalTranscriptsExtracted = %d, want %d", sum.TotalTranscriptsExtracted, TranscriptCap-3)
	}
	if len(sum.Videos) != TranscriptCap-3 {
		t.Errorf("len(Videos) = %d, want only the transcript-bearing records", len(sum.Videos))
	}
	for _, v := range sum.Videos {
		if v.TranscriptState != TranscriptPresent || v.Transcript == "" {
			t.Errorf("video %s in summary without transcript: state=%q", v.ID, v.TranscriptState)
		}
	}
	if len(sum.ListedVideos) != DefaultMaxVideos {
		t.Errorf("len(ListedVideos) = %d, want every listed record", len(sum.ListedVideos))
	}
	if sum.AverageDurationSeconds != 120 {
		t.Errorf("AverageDurationSeconds = %d, want 120", sum.AverageDurationSeconds)
	}
	if !strings.Contains(sum.ChannelAge, "year") {
		t.Errorf("ChannelAge = %q, want a year bucket", sum.ChannelAge)
	}

	// Progress: one setup update plus one per attempt, monotone, ending at 100.
	if len(updates) != TranscriptCap+1 {
		t.Fatalf("got %d progress updates, want %d", len(updates), TranscriptCap+1)
	}
	if updates[0].Percent != setupPercent || updates[0].VideosProcessed != 0 {
		t.Errorf("first update = %+v, want setup at %d%%", updates[0], setupPercent)
	}
	for i := 1; i < len(updates); i++ {
		if updates[i].Percent < updates[i-1].Percent {
			t.Errorf("progress went backwards at %d: %d -> %d", i, updates[i-1].Percent, updates[i].Percent)
		}
		if updates[i].VideosProcessed != i {
			t.Errorf("update %d: VideosProcessed = %d", i, updates[i].VideosProcessed)
		}
	}
	if last := updates[len(updates)-1]; last.Percent != 100 {
		t.Errorf("final percent = %d, want 100", last.Percent)
	}
}

func TestIngestFewerVideosThanCap(t *testing.T) {
	ext := &fakeExtractor{}
	o := newTestOrchestrator(
		&fakeResolver{id: "UCtest"},
		&fakeFetcher{info: testChannelInfo()},
		&fakeLister{available: 4},
		ext,
	)

	sum, err := o.Ingest(context.Background(), "@smallchannel", 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalVideosProcessed != 4 || ext.calls != 4 {
		t.Errorf("processed=%d calls=%d, want 4 each", sum.TotalVideosProcessed, ext.calls)
	}
}

func TestIngestPerCallMaxVideos(t *testing.T) {
	ext := &fakeExtractor{}
	o := newTestOrchestrator(
		&fakeResolver{id: "UCtest"},
		&fakeFetcher{info: testChannelInfo()},
		&fakeLister{available: 60},
		ext,
	)

	sum, err := o.Ingest(context.Background(), "@testcoach", 8, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalVideosProcessed != 8 {
		t.Errorf("TotalVideosProcessed = %d, want the per-call cap of 8", sum.TotalVideosProcessed)
	}
	if len(sum.ListedVideos) != 8 || ext.calls != 8 {
		t.Errorf("listed=%d calls=%d, want 8 each", len(sum.ListedVideos), ext.calls)
	}
}

func TestIngestChannelFailuresAreFatal(t *testing.T) {
	info := testChannelInfo()
	boom := errors.New("boom")

	tests := []struct {
		name string
		o    *Orchestrator
	}{
		{"resolve", newTestOrchestrator(&fakeResolver{err: boom}, &fakeFetcher{info: info}, &fakeLister{available: 5}, &fakeExtractor{})},
		{"fetch", newTestOrchestrator(&fakeResolver{id: "UCtest"}, &fakeFetcher{err: boom}, &fakeLister{available: 5}, &fakeExtractor{})},
		{"list", newTestOrchestrator(&fakeResolver{id: "UCtest"}, &fakeFetcher{info: info}, &fakeLister{err: boom}, &fakeExtractor{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum, err := tt.o.Ingest(context.Background(), "@anything", 0, nil)
			if err == nil || sum != nil {
				t.Fatalf("want fatal error and nil summary, got sum=%v err=%v", sum, err)
			}
			if !errors.Is(err, boom) {
				t.Errorf("error chain lost the cause: %v", err)
			}
		})
	}
}

func TestIngestCancelDiscardsPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ext := &fakeExtractor{}
	o := newTestOrchestrator(
		&fakeResolver{id: "UCtest"},
		&fakeFetcher{info: testChannelInfo()},
		&fakeLister{available: 10},
		ext,
	)

	// Cancel mid-run from the progress sink.
	sum, err := o.Ingest(ctx, "@testcoach", 0, ProgressFunc(func(p Progress) {
		if p.VideosProcessed == 3 {
			cancel()
		}
	}))
	if err == nil {
		t.Fatal("want cancellation error")
	}
	if sum != nil {
		t.Errorf("partial summary must be discarded, got %+v", sum)
	}
}

func TestChannelAgeBuckets(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		joined time.Time
		want   string
	}{
		{now.Add(-10 * time.Hour), "less than a day"},
		{now.AddDate(0, 0, -3), "3 days"},
		{now.AddDate(0, 0, -1), "1 day"},
		{now.AddDate(0, -2, 0), "2 months"},
		{now.AddDate(-4, 0, 0), "4 years"},
		{time.Time{}, "unknown"},
		{now.AddDate(1, 0, 0), "unknown"},
	}
	for _, tt := range tests {
		if got := channelAge(tt.joined, now); got != tt.want {
			t.Errorf("channelAge(%s) = %q, want %q", tt.joined.Format("2006-01-02"), got, tt.want)
		}
	}
}
