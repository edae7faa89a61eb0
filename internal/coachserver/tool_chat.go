package coachserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/coachtube/coachtube/internal/engine"
	"github.com/coachtube/coachtube/internal/store"
)

// ChatMessage is one prior turn of the conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// CoachChatInput is the input for coach_chat.
type CoachChatInput struct {
	CoachID string        `json:"coach_id"`
	Message string        `json:"message"`
	History []ChatMessage `json:"history,omitempty"`
}

// CoachChatResult is the output for coach_chat.
type CoachChatResult struct {
	CoachID  string `json:"coach_id"`
	Response string `json:"response"`

	TokensIn  int     `json:"tokens_in"`
	TokensOut int     `json:"tokens_out"`
	CostUSD   float64 `json:"cost_usd"`
}

// Per-1K-token rates used for cost estimates.
const (
	inputCostPer1K  = 0.001
	outputCostPer1K = 0.002
)

// estimateTokens is the rough chars/4 heuristic; good enough for dashboards,
// not billing.
func estimateTokens(s string) int {
	return (len(s) + 3) / 4
}

func registerChat(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "coach_chat",
		Description: "Chat with a trained coach. The coach answers in its channel persona, grounded in the ingested transcripts. Pass prior turns in history to keep the conversation coherent. Returns the reply plus token and cost estimates.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CoachChatInput) (*mcp.CallToolResult, *CoachChatResult, error) {
		if input.CoachID == "" {
			return nil, nil, errors.New("coach_id is required")
		}
		if strings.TrimSpace(input.Message) == "" {
			return nil, nil, errors.New("message is required")
		}

		coach, err := deps.Store.GetCoach(ctx, input.CoachID)
		if err != nil {
			return nil, nil, err
		}
		if coach.Status != store.StatusActive || coach.SystemPrompt == "" {
			return nil, nil, fmt.Errorf("coach %s is not trained yet (status %s)", coach.ID, coach.Status)
		}

		engine.IncrChatRequests()

		prompt := flattenConversation(input.History, input.Message)
		tokensIn := estimateTokens(coach.SystemPrompt) + estimateTokens(prompt)

		response, err := engine.CallLLM(ctx, coach.SystemPrompt, prompt)
		if err != nil {
			return nil, nil, fmt.Errorf("chat completion: %w", err)
		}
		tokensOut := estimateTokens(response)

		engine.AddChatTokensIn(int64(tokensIn))
		engine.AddChatTokensOut(int64(tokensOut))

		cost := float64(tokensIn)*inputCostPer1K/1000 + float64(tokensOut)*outputCostPer1K/1000
		slog.Debug("coach_chat",
			slog.String("coach", coach.ID),
			slog.Int("tokens_in", tokensIn),
			slog.Int("tokens_out", tokensOut),
			slog.String("cost", fmt.Sprintf("$%.6f", cost)))

		return nil, &CoachChatResult{
			CoachID:   coach.ID,
			Response:  response,
			TokensIn:  tokensIn,
			TokensOut: tokensOut,
			CostUSD:   cost,
		}, nil
	})
}

// flattenConversation renders prior turns plus the new message as one prompt.
func flattenConversation(history []ChatMessage, message string) string {
	if len(history) == 0 {
		return message
	}
	var b strings.Builder
	for _, m := range history {
		switch m.Role {
		case "assistant":
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(strings.TrimSpace(m.Content))
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(message)
	return b.String()
}
