package coachserver

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/coachtube/coachtube/internal/store"
	"github.com/coachtube/coachtube/internal/youtube"
)

type fakeResolver struct{ err error }

func (f *fakeResolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	return "UCfake", f.err
}

type fakeFetcher struct{}

func (fakeFetcher) FetchChannelInfo(ctx context.Context, channelID string) (*youtube.ChannelInfo, error) {
	return &youtube.ChannelInfo{
		ID:       channelID,
		Title:    "Fake Coach",
		JoinedAt: time.Now().AddDate(-1, 0, 0),
	}, nil
}

type fakeLister struct{ n int }

func (f *fakeLister) ListVideos(ctx context.Context, channelID string, maxVideos int) ([]youtube.VideoRecord, error) {
	out := make([]youtube.VideoRecord, f.n)
	for i := range out {
		out[i] = youtube.VideoRecord{ID: uuid.NewString()[:11], Title: "A lesson"}
	}
	return out, nil
}

type fakeExtractor struct{ fail bool }

func (f *fakeExtractor) Extract(ctx context.Context, videoID string) youtube.TranscriptResult {
	if f.fail {
		return youtube.Unavailable()
	}
	return youtube.Success("some transcript text", "fake")
}

func testDeps(t *testing.T, resolveErr error) Deps {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return Deps{
		Store: s,
		Orchestrator: youtube.NewOrchestrator(
			&fakeResolver{err: resolveErr},
			fakeFetcher{},
			&fakeLister{n: 2},
			&fakeExtractor{},
		),
	}
}

func waitForJob(t *testing.T, deps Deps, jobID string) *store.TrainingJob {
	t.Helper()
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		job, err := deps.Store.GetJob(context.Background(), jobID)
		require.NoError(t, err)
		if job.Status == store.JobCompleted || job.Status == store.JobFailed {
			return job
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func TestTrainingRunHappyPath(t *testing.T) {
	ctx := context.Background()
	deps := testDeps(t, nil)

	coach := &store.Coach{ID: uuid.NewString(), Name: "Fake", ChannelURL: "@fake"}
	require.NoError(t, deps.Store.CreateCoach(ctx, coach))

	jobID, err := startTraining(ctx, deps, coach)
	require.NoError(t, err)

	got, err := deps.Store.GetCoach(ctx, coach.ID)
	require.NoError(t, err)
	require.Equal(t, store.StatusTraining, got.Status)

	job := waitForJob(t, deps, jobID)
	require.Equal(t, store.JobCompleted, job.Status)
	require.Equal(t, 100, job.Progress)

	got, err = deps.Store.GetCoach(ctx, coach.ID)
	require.NoError(t, err)
	require.Equal(t, store.StatusActive, got.Status)
	require.NotEmpty(t, got.Metadata)
	require.NotEmpty(t, got.TrainingData)
	require.Contains(t, got.SystemPrompt, "You are Fake Coach.")

	videos, err := deps.Store.ListVideos(ctx, coach.ID)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	for _, v := range videos {
		require.Equal(t, youtube.TranscriptPresent, v.TranscriptState)
	}
}

func TestTrainingRunFailure(t *testing.T) {
	ctx := context.Background()
	deps := testDeps(t, errors.New("no such channel"))

	coach := &store.Coach{ID: uuid.NewString(), Name: "Broken", ChannelURL: "@broken"}
	require.NoError(t, deps.Store.CreateCoach(ctx, coach))

	jobID, err := startTraining(ctx, deps, coach)
	require.NoError(t, err)

	job := waitForJob(t, deps, jobID)
	require.Equal(t, store.JobFailed, job.Status)
	require.Contains(t, job.Error, "no such channel")

	got, err := deps.Store.GetCoach(ctx, coach.ID)
	require.NoError(t, err)
	require.Equal(t, store.StatusError, got.Status)
}
