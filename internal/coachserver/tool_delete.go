package coachserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/coachtube/coachtube/internal/store"
)

// CoachDeleteInput is the input for coach_delete.
type CoachDeleteInput struct {
	CoachID string `json:"coach_id"`
}

// CoachDeleteResult is the output for coach_delete.
type CoachDeleteResult struct {
	CoachID string `json:"coach_id"`
	Message string `json:"message"`
}

func registerDelete(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "coach_delete",
		Description: "Delete a coach and all of its videos, transcripts and training jobs. Irreversible.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CoachDeleteInput) (*mcp.CallToolResult, *CoachDeleteResult, error) {
		if input.CoachID == "" {
			return nil, nil, errors.New("coach_id is required")
		}
		coach, err := deps.Store.GetCoach(ctx, input.CoachID)
		if err != nil {
			return nil, nil, err
		}
		if coach.Status == store.StatusTraining {
			return nil, nil, fmt.Errorf("coach %s is training; wait for the job to finish", coach.ID)
		}
		if err := deps.Store.DeleteCoach(ctx, coach.ID); err != nil {
			return nil, nil, err
		}
		return nil, &CoachDeleteResult{
			CoachID: coach.ID,
			Message: fmt.Sprintf("Coach %q deleted", coach.Name),
		}, nil
	})
}
