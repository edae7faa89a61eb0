// Package coachserver exposes the coach lifecycle as MCP tools:
// coach_train, coach_retrain, coach_status, coach_chat, coach_list,
// coach_delete.
package coachserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/coachtube/coachtube/internal/store"
	"github.com/coachtube/coachtube/internal/training"
	"github.com/coachtube/coachtube/internal/youtube"
)

// Deps holds the wired pipeline and persistence shared by all tools.
type Deps struct {
	Store        store.Store
	Orchestrator *youtube.Orchestrator
	Summarizer   training.Summarizer // nil = deterministic template summaries
}

// RegisterTools registers every coach tool on the given MCP server.
func RegisterTools(server *mcp.Server, deps Deps) {
	registerTrain(server, deps)
	registerRetrain(server, deps)
	registerStatus(server, deps)
	registerChat(server, deps)
	registerList(server, deps)
	registerDelete(server, deps)
}
