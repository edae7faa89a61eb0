package coachserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/coachtube/coachtube/internal/engine"
	"github.com/coachtube/coachtube/internal/store"
	"github.com/coachtube/coachtube/internal/training"
	"github.com/coachtube/coachtube/internal/youtube"
)

// CoachTrainInput is the input for coach_train.
type CoachTrainInput struct {
	Name        string `json:"name"`
	ChannelURL  string `json:"channel_url"`
	Description string `json:"description,omitempty"`
	Tone        string `json:"tone,omitempty"`
}

// CoachTrainResult is the output for coach_train and coach_retrain.
type CoachTrainResult struct {
	CoachID string `json:"coach_id"`
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CoachRetrainInput is the input for coach_retrain.
type CoachRetrainInput struct {
	CoachID string `json:"coach_id"`
}

func registerTrain(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "coach_train",
		Description: "Create an AI coach from a YouTube channel. Accepts a channel URL or @handle; ingests channel metadata, recent uploads and transcripts, then builds the coach persona. Training runs in the background — poll coach_status with the returned job_id.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CoachTrainInput) (*mcp.CallToolResult, *CoachTrainResult, error) {
		if input.ChannelURL == "" {
			return nil, nil, errors.New("channel_url is required")
		}
		if _, err := youtube.ParseChannelURL(input.ChannelURL); err != nil {
			return nil, nil, fmt.Errorf("invalid channel_url: %w", err)
		}

		name := input.Name
		if name == "" {
			name = input.ChannelURL
		}
		coach := &store.Coach{
			ID:          uuid.NewString(),
			Name:        name,
			Description: input.Description,
			ChannelURL:  input.ChannelURL,
			Tone:        input.Tone,
			Status:      store.StatusPending,
		}
		if err := deps.Store.CreateCoach(ctx, coach); err != nil {
			return nil, nil, err
		}

		jobID, err := startTraining(ctx, deps, coach)
		if err != nil {
			return nil, nil, err
		}
		return nil, &CoachTrainResult{
			CoachID: coach.ID,
			JobID:   jobID,
			Status:  string(store.StatusTraining),
			Message: fmt.Sprintf("Training started for %q (job %s). Poll coach_status for progress.", coach.Name, jobID),
		}, nil
	})
}

func registerRetrain(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "coach_retrain",
		Description: "Re-ingest a coach's channel and rebuild its persona from scratch. Previous training data is superseded wholesale. Returns a new job_id to poll with coach_status.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CoachRetrainInput) (*mcp.CallToolResult, *CoachTrainResult, error) {
		if input.CoachID == "" {
			return nil, nil, errors.New("coach_id is required")
		}
		coach, err := deps.Store.GetCoach(ctx, input.CoachID)
		if err != nil {
			return nil, nil, err
		}
		if coach.Status == store.StatusTraining {
			return nil, nil, fmt.Errorf("coach %s is already training", coach.ID)
		}

		jobID, err := startTraining(ctx, deps, coach)
		if err != nil {
			return nil, nil, err
		}
		return nil, &CoachTrainResult{
			CoachID: coach.ID,
			JobID:   jobID,
			Status:  string(store.StatusTraining),
			Message: fmt.Sprintf("Retraining started for %q (job %s).", coach.Name, jobID),
		}, nil
	})
}

// startTraining creates the job row and launches the run in the background.
// The run gets its own context: it must outlive the tool request and be
// bounded by the ingestion wall-clock budget instead.
func startTraining(ctx context.Context, deps Deps, coach *store.Coach) (string, error) {
	job := &store.TrainingJob{ID: uuid.NewString(), CoachID: coach.ID}
	if err := deps.Store.CreateJob(ctx, job); err != nil {
		return "", err
	}
	if err := deps.Store.UpdateCoachStatus(ctx, coach.ID, store.StatusTraining); err != nil {
		return "", err
	}

	go runTraining(deps, coach, job.ID)
	return job.ID, nil
}

func runTraining(deps Deps, coach *store.Coach, jobID string) {
	timeout := engine.Cfg.IngestTimeout
	if timeout <= 0 {
		timeout = 4 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sink := youtube.ProgressFunc(func(p youtube.Progress) {
		if err := deps.Store.UpdateJobProgress(ctx, jobID, p.Percent); err != nil {
			slog.Warn("training: progress update failed", slog.String("job", jobID), slog.Any("error", err))
		}
	})

	summary, err := deps.Orchestrator.Ingest(ctx, coach.ChannelURL, 0, sink)
	if err != nil {
		failTraining(deps, coach.ID, jobID, err)
		return
	}

	td := training.BuildTrainingData(ctx, summary, coach.Tone, deps.Summarizer)
	systemPrompt := training.BuildSystemPrompt(td)

	metadata, err := json.Marshal(summary.ChannelInfo)
	if err != nil {
		failTraining(deps, coach.ID, jobID, fmt.Errorf("marshal metadata: %w", err))
		return
	}
	trainingData, err := json.Marshal(td)
	if err != nil {
		failTraining(deps, coach.ID, jobID, fmt.Errorf("marshal training data: %w", err))
		return
	}

	// Persist with a fresh context: the ingestion budget may be spent, but
	// a completed run must not be lost to a persistence deadline.
	persistCtx, persistCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer persistCancel()

	if err := deps.Store.SaveTrainingArtifacts(persistCtx, coach.ID, string(metadata), string(trainingData), systemPrompt); err != nil {
		failTraining(deps, coach.ID, jobID, err)
		return
	}
	if err := deps.Store.ReplaceVideos(persistCtx, coach.ID, store.VideosFromRecords(coach.ID, summary.ListedVideos)); err != nil {
		failTraining(deps, coach.ID, jobID, err)
		return
	}
	if err := deps.Store.UpdateCoachStatus(persistCtx, coach.ID, store.StatusActive); err != nil {
		failTraining(deps, coach.ID, jobID, err)
		return
	}
	if err := deps.Store.FinishJob(persistCtx, jobID, store.JobCompleted, ""); err != nil {
		slog.Warn("training: finish job failed", slog.String("job", jobID), slog.Any("error", err))
	}

	slog.Info("training complete",
		slog.String("coach", coach.ID),
		slog.String("channel", summary.ChannelInfo.Title),
		slog.Int("videos", summary.TotalVideosProcessed),
		slog.Int("transcripts", summary.TotalTranscriptsExtracted))
}

func failTraining(deps Deps, coachID, jobID string, cause error) {
	slog.Error("training failed",
		slog.String("coach", coachID),
		slog.String("job", jobID),
		slog.Any("error", cause))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := deps.Store.UpdateCoachStatus(ctx, coachID, store.StatusError); err != nil {
		slog.Warn("training: status update failed", slog.String("coach", coachID), slog.Any("error", err))
	}
	if err := deps.Store.FinishJob(ctx, jobID, store.JobFailed, cause.Error()); err != nil {
		slog.Warn("training: finish job failed", slog.String("job", jobID), slog.Any("error", err))
	}
}
