package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/coachtube/coachtube/internal/youtube"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestCoach() *Coach {
	return &Coach{
		ID:         uuid.NewString(),
		Name:       "Guitar With Sam",
		ChannelURL: "https://youtube.com/@guitarwithsam",
		Tone:       "friendly",
	}
}

func TestCoachLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	c := newTestCoach()
	require.NoError(t, s.CreateCoach(ctx, c))
	require.Equal(t, StatusPending, c.Status)

	got, err := s.GetCoach(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.Name, got.Name)
	require.Equal(t, c.ChannelURL, got.ChannelURL)
	require.Equal(t, StatusPending, got.Status)

	require.NoError(t, s.UpdateCoachStatus(ctx, c.ID, StatusActive))
	got, err = s.GetCoach(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, StatusActive, got.Status)

	list, err := s.ListCoaches(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.DeleteCoach(ctx, c.ID))
	_, err = s.GetCoach(ctx, c.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNotFoundErrors(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.GetCoach(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.DeleteCoach(ctx, "missing"), ErrNotFound)
	require.ErrorIs(t, s.UpdateCoachStatus(ctx, "missing", StatusActive), ErrNotFound)
	require.ErrorIs(t, s.SaveTrainingArtifacts(ctx, "missing", "", "", ""), ErrNotFound)
	_, err = s.LatestJob(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveTrainingArtifacts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	c := newTestCoach()
	require.NoError(t, s.CreateCoach(ctx, c))
	require.NoError(t, s.SaveTrainingArtifacts(ctx, c.ID, `{"subscriberCount":10}`, `{"videos":[]}`, "You are Sam."))

	got, err := s.GetCoach(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, `{"subscriberCount":10}`, got.Metadata)
	require.Equal(t, "You are Sam.", got.SystemPrompt)

	// A retrain supersedes, never merges.
	require.NoError(t, s.SaveTrainingArtifacts(ctx, c.ID, `{}`, `{}`, "You are still Sam."))
	got, err = s.GetCoach(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "You are still Sam.", got.SystemPrompt)
}

func TestReplaceVideos(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	c := newTestCoach()
	require.NoError(t, s.CreateCoach(ctx, c))

	d := int64(321)
	first := VideosFromRecords(c.ID, []youtube.VideoRecord{
		{
			ID:              "vid00000001",
			Title:           "Lesson 1",
			DurationSeconds: &d,
			PublishedAt:     time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
			URL:             "https://www.youtube.com/watch?v=vid00000001",
			TranscriptState: youtube.TranscriptPresent,
			Transcript:      "hello",
		},
		{
			ID:              "vid00000002",
			Title:           "Lesson 2",
			TranscriptState: youtube.TranscriptMissing,
		},
	})
	require.NoError(t, s.ReplaceVideos(ctx, c.ID, first))

	videos, err := s.ListVideos(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	require.Equal(t, "Lesson 1", videos[0].Title)
	require.NotNil(t, videos[0].DurationSeconds)
	require.EqualValues(t, 321, *videos[0].DurationSeconds)
	require.Equal(t, youtube.TranscriptPresent, videos[0].TranscriptState)
	require.Equal(t, youtube.TranscriptMissing, videos[1].TranscriptState)
	require.Nil(t, videos[1].DurationSeconds)

	// Replacement swaps the whole set.
	require.NoError(t, s.ReplaceVideos(ctx, c.ID, first[:1]))
	videos, err = s.ListVideos(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, videos, 1)
}

func TestTrainingJobs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	c := newTestCoach()
	require.NoError(t, s.CreateCoach(ctx, c))

	j := &TrainingJob{ID: uuid.NewString(), CoachID: c.ID}
	require.NoError(t, s.CreateJob(ctx, j))
	require.Equal(t, JobPending, j.Status)

	require.NoError(t, s.UpdateJobProgress(ctx, j.ID, 40))
	got, err := s.GetJob(ctx, j.ID)
	require.NoError(t, err)
	require.Equal(t, JobRunning, got.Status)
	require.Equal(t, 40, got.Progress)

	require.NoError(t, s.FinishJob(ctx, j.ID, JobCompleted, ""))
	got, err = s.GetJob(ctx, j.ID)
	require.NoError(t, err)
	require.Equal(t, JobCompleted, got.Status)
	require.Equal(t, 100, got.Progress)

	latest, err := s.LatestJob(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, j.ID, latest.ID)
}

func TestFailedJobKeepsProgress(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	c := newTestCoach()
	require.NoError(t, s.CreateCoach(ctx, c))

	j := &TrainingJob{ID: uuid.NewString(), CoachID: c.ID}
	require.NoError(t, s.CreateJob(ctx, j))
	require.NoError(t, s.UpdateJobProgress(ctx, j.ID, 60))
	require.NoError(t, s.FinishJob(ctx, j.ID, JobFailed, "channel not found"))

	got, err := s.GetJob(ctx, j.ID)
	require.NoError(t, err)
	require.Equal(t, JobFailed, got.Status)
	require.Equal(t, 60, got.Progress)
	require.Equal(t, "channel not found", got.Error)
}
