package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
}

// Empty reports whether no tokens were recorded.
func (u TokenUsage) Empty() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0
}

// AgentMeta holds operational metadata for one model-backed call
// (daily insight, task breakdown).
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
	Fallback  bool
}
