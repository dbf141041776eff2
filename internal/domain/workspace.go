package domain

import "strings"

const (
	AuthorUser = "user"
	AuthorAI   = "ai"
)

// Document is an uploaded plain-text file. Documents are never edited after
// upload.
type Document struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ChatMessage is a single transcript entry. Role is AuthorUser or AuthorAI.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PersistedState is the snapshot mirrored to the key-value store.
type PersistedState struct {
	Documents   []Document    `json:"documents"`
	ChatHistory []ChatMessage `json:"chatHistory"`
}

// PromptContext joins every document's content with a blank line.
func PromptContext(docs []Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Content)
	}
	return strings.Join(parts, "\n\n")
}
