// Package shared holds the model-call bookkeeping types used by the agents and
// the metrics store.
package shared

import "time"

// Agent names recorded in execution metrics.
const (
	AgentPlanner = "Planner"
	AgentChef    = "ChefChat"
)

// TokenUsage is what one model call consumed, as reported by the provider.
type TokenUsage struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// IsZero reports whether the call consumed nothing, e.g. it failed before the
// provider answered.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0
}

// AgentMeta ties a model call to the agent that made it.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}

// NewAgentMeta measures latency from start.
func NewAgentMeta(agent string, usage TokenUsage, start time.Time) AgentMeta {
	return AgentMeta{AgentName: agent, Usage: usage, Latency: time.Since(start)}
}
