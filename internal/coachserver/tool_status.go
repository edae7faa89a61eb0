package coachserver

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/coachtube/coachtube/internal/store"
	"github.com/coachtube/coachtube/internal/youtube"
)

// CoachStatusInput is the input for coach_status.
type CoachStatusInput struct {
	CoachID string `json:"coach_id,omitempty"`
	JobID   string `json:"job_id,omitempty"`
}

// CoachStatusResult is the output for coach_status.
type CoachStatusResult struct {
	CoachID     string `json:"coach_id"`
	Name        string `json:"name"`
	ChannelName string `json:"channel_name,omitempty"`
	Status      string `json:"status"`

	JobID       string `json:"job_id,omitempty"`
	JobStatus   string `json:"job_status,omitempty"`
	Progress    int    `json:"progress,omitempty"`
	JobError    string `json:"job_error,omitempty"`
	JobUpdated  string `json:"job_updated,omitempty"`
	VideoCount  int    `json:"video_count"`
	Transcripts int    `json:"transcripts"`
}

func registerStatus(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "coach_status",
		Description: "Check a coach's lifecycle state and, while training, the latest job's progress percentage. Pass coach_id (and optionally job_id for a specific run).",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CoachStatusInput) (*mcp.CallToolResult, *CoachStatusResult, error) {
		if input.CoachID == "" {
			return nil, nil, errors.New("coach_id is required")
		}
		coach, err := deps.Store.GetCoach(ctx, input.CoachID)
		if err != nil {
			return nil, nil, err
		}

		out := &CoachStatusResult{
			CoachID:     coach.ID,
			Name:        coach.Name,
			ChannelName: coach.ChannelName,
			Status:      string(coach.Status),
		}

		var job *store.TrainingJob
		if input.JobID != "" {
			job, err = deps.Store.GetJob(ctx, input.JobID)
		} else {
			job, err = deps.Store.LatestJob(ctx, coach.ID)
		}
		if err == nil {
			out.JobID = job.ID
			out.JobStatus = string(job.Status)
			out.Progress = job.Progress
			out.JobError = job.Error
			out.JobUpdated = job.UpdatedAt.UTC().Format(time.RFC3339)
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, nil, err
		}

		videos, err := deps.Store.ListVideos(ctx, coach.ID)
		if err != nil {
			return nil, nil, err
		}
		out.VideoCount = len(videos)
		for _, v := range videos {
			if v.TranscriptState == youtube.TranscriptPresent {
				out.Transcripts++
			}
		}
		return nil, out, nil
	})
}
