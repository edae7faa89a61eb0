package engine

import (
	"context"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
)

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// CallLLM sends a prompt using the configured temperature and max_tokens.
func CallLLM(ctx context.Context, system, prompt string) (string, error) {
	IncrLLMCalls()
	resp, err := cfg.LLMClient.Complete(ctx, system, prompt)
	if err != nil {
		IncrLLMErrors()
		return "", err
	}
	return stripFences(resp), nil
}

// Summarize produces a short summary of text, capped at maxTokens output.
// Used by the optional LLM video summarizer; the template summarizer never
// calls this.
func Summarize(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	IncrLLMCalls()
	resp, err := cfg.LLMClient.Complete(ctx, system, prompt,
		llm.WithChatTemperature(0.3),
		llm.WithChatMaxTokens(maxTokens),
	)
	if err != nil {
		IncrLLMErrors()
		return "", err
	}
	return strings.TrimSpace(stripFences(resp)), nil
}
