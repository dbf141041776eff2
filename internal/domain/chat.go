package domain

import "errors"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// PromptMessage is the provider-agnostic message shape sent to LLM
// integrations.
type PromptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ErrMissingCredential marks errors caused by an absent provider credential.
var ErrMissingCredential = errors.New("provider credential is not configured")

// CompletionRequest describes a single chat completion call.
type CompletionRequest struct {
	Model       string
	Messages    []PromptMessage
	Temperature float64
	MaxTokens   int
}
