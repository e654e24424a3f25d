package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polygate-dev/polygate/internal/config"
	"github.com/polygate-dev/polygate/internal/protocol"
)

func writePromptFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "system.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSystemPromptOverride(t *testing.T) {
	sp := newSystemPrompt(writePromptFile(t, "You are a pirate.\n"), config.SystemPromptOverride)

	req := &protocol.ChatCompletionRequest{Messages: []protocol.ChatMessage{
		{Role: "system", Content: protocol.TextContent("You are helpful.")},
		{Role: "user", Content: protocol.TextContent("hi")},
	}}
	sp.Apply(req)
	assert.Equal(t, "You are a pirate.", req.Messages[0].Content.AsText())

	// No system message: one is prepended.
	req = &protocol.ChatCompletionRequest{Messages: []protocol.ChatMessage{
		{Role: "user", Content: protocol.TextContent("hi")},
	}}
	sp.Apply(req)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "You are a pirate.", req.Messages[0].Content.AsText())
}

func TestSystemPromptAppend(t *testing.T) {
	sp := newSystemPrompt(writePromptFile(t, "Always cite sources."), config.SystemPromptAppend)

	req := &protocol.ChatCompletionRequest{Messages: []protocol.ChatMessage{
		{Role: "system", Content: protocol.TextContent("You are helpful.")},
	}}
	sp.Apply(req)
	assert.Equal(t, "You are helpful.\n\nAlways cite sources.", req.Messages[0].Content.AsText())
}

func TestSystemPromptOffAndMissingFile(t *testing.T) {
	req := &protocol.ChatCompletionRequest{Messages: []protocol.ChatMessage{
		{Role: "user", Content: protocol.TextContent("hi")},
	}}

	sp := newSystemPrompt(writePromptFile(t, "ignored"), config.SystemPromptOff)
	sp.Apply(req)
	require.Len(t, req.Messages, 1)

	sp = newSystemPrompt(filepath.Join(t.TempDir(), "absent.txt"), config.SystemPromptOverride)
	sp.Apply(req)
	require.Len(t, req.Messages, 1)
}
