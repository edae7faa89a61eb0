// Package store persists coaches, their ingested videos and training jobs.
// Two backends share one interface: SQLite for single-node default, Postgres
// when DATABASE_URL is set.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/coachtube/coachtube/internal/youtube"
)

// CoachStatus is the coach lifecycle state.
type CoachStatus string

const (
	StatusPending  CoachStatus = "PENDING"
	StatusTraining CoachStatus = "TRAINING"
	StatusActive   CoachStatus = "ACTIVE"
	StatusError    CoachStatus = "ERROR"
)

// JobStatus is the training-job lifecycle state.
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
)

var (
	ErrNotFound = errors.New("store: not found")
)

// Coach is one trained channel persona.
type Coach struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	ChannelURL  string      `json:"channelUrl"`
	ChannelID   string      `json:"channelId,omitempty"`
	ChannelName string      `json:"channelName,omitempty"`
	Avatar      string      `json:"avatar,omitempty"`
	Tone        string      `json:"tone,omitempty"`
	Status      CoachStatus `json:"status"`

	// Metadata is the ChannelInfo snapshot as one JSON blob, replaced
	// wholesale on retrain.
	Metadata     string `json:"-"`
	TrainingData string `json:"-"`
	SystemPrompt string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Video is one persisted video record belonging to a coach. TranscriptState
// keeps the three-state distinction from ingestion.
type Video struct {
	ID              string                  `json:"id"`
	CoachID         string                  `json:"coachId"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description,omitempty"`
	Thumbnail       string                  `json:"thumbnail,omitempty"`
	DurationSeconds *int64                  `json:"durationSeconds,omitempty"`
	PublishedAt     time.Time               `json:"publishedAt"`
	URL             string                  `json:"url"`
	TranscriptState youtube.TranscriptState `json:"transcriptState"`
	Transcript      string                  `json:"-"`
}

// TrainingJob tracks one ingestion/training run for a coach.
type TrainingJob struct {
	ID        string    `json:"id"`
	CoachID   string    `json:"coachId"`
	Status    JobStatus `json:"status"`
	Progress  int       `json:"progress"` // 0..100
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is the persistence surface the tool layer builds on.
type Store interface {
	CreateCoach(ctx context.Context, c *Coach) error
	GetCoach(ctx context.Context, id string) (*Coach, error)
	ListCoaches(ctx context.Context) ([]Coach, error)
	DeleteCoach(ctx context.Context, id string) error

	// UpdateCoachStatus transitions the lifecycle state.
	UpdateCoachStatus(ctx context.Context, id string, status CoachStatus) error
	// SaveTrainingArtifacts stores the channel metadata snapshot, training
	// data and system prompt in one update, superseding previous values.
	SaveTrainingArtifacts(ctx context.Context, id, metadata, trainingData, systemPrompt string) error

	// ReplaceVideos swaps the coach's video set atomically.
	ReplaceVideos(ctx context.Context, coachID string, videos []Video) error
	ListVideos(ctx context.Context, coachID string) ([]Video, error)

	CreateJob(ctx context.Context, j *TrainingJob) error
	GetJob(ctx context.Context, id string) (*TrainingJob, error)
	LatestJob(ctx context.Context, coachID string) (*TrainingJob, error)
	UpdateJobProgress(ctx context.Context, id string, progress int) error
	FinishJob(ctx context.Context, id string, status JobStatus, errMsg string) error

	Close() error
}

// videoFromRecord maps an ingested record into a persisted row.
func videoFromRecord(coachID string, v youtube.VideoRecord) Video {
	return Video{
		ID:              v.ID,
		CoachID:         coachID,
		Title:           v.Title,
		Description:     v.Description,
		Thumbnail:       v.Thumbnail,
		DurationSeconds: v.DurationSeconds,
		PublishedAt:     v.PublishedAt,
		URL:             v.URL,
		TranscriptState: v.TranscriptState,
		Transcript:      v.Transcript,
	}
}

// VideosFromRecords maps ingested records for persistence.
func VideosFromRecords(coachID string, recs []youtube.VideoRecord) []Video {
	out := make([]Video, 0, len(recs))
	for _, r := range recs {
		out = append(out, videoFromRecord(coachID, r))
	}
	return out
}
