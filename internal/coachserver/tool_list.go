package coachserver

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CoachListInput is the input for coach_list.
type CoachListInput struct {
	Status string `json:"status,omitempty"`
}

// CoachListItem is one coach in the listing.
type CoachListItem struct {
	CoachID     string `json:"coach_id"`
	Name        string `json:"name"`
	ChannelURL  string `json:"channel_url"`
	ChannelName string `json:"channel_name,omitempty"`
	Status      string `json:"status"`
	Tone        string `json:"tone,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// CoachListResult is the output for coach_list.
type CoachListResult struct {
	Coaches []CoachListItem `json:"coaches"`
	Total   int             `json:"total"`
}

func registerList(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "coach_list",
		Description: "List all coaches with their lifecycle state. Optionally filter by status: PENDING, TRAINING, ACTIVE, ERROR.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CoachListInput) (*mcp.CallToolResult, *CoachListResult, error) {
		coaches, err := deps.Store.ListCoaches(ctx)
		if err != nil {
			return nil, nil, err
		}

		items := []CoachListItem{}
		for _, c := range coaches {
			if input.Status != "" && string(c.Status) != input.Status {
				continue
			}
			items = append(items, CoachListItem{
				CoachID:     c.ID,
				Name:        c.Name,
				ChannelURL:  c.ChannelURL,
				ChannelName: c.ChannelName,
				Status:      string(c.Status),
				Tone:        c.Tone,
				CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		return nil, &CoachListResult{Coaches: items, Total: len(items)}, nil
	})
}
