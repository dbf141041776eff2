package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromptContext(t *testing.T) {
	require.Equal(t, "", PromptContext(nil))
	require.Equal(t, "one", PromptContext([]Document{{Content: "one"}}))
	require.Equal(t, "one\n\ntwo", PromptContext([]Document{
		{ID: "doc-1", Content: "one"},
		{ID: "doc-2", Content: "two"},
	}))
}
