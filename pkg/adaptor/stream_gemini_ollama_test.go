package adaptor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polygate-dev/polygate/internal/protocol"
)

func geminiChunk(parts []protocol.GeminiPart, finish string) *protocol.GenerateContentResponse {
	return &protocol.GenerateContentResponse{
		Candidates: []protocol.GeminiCandidate{{
			Content:      protocol.GeminiContent{Role: "model", Parts: parts},
			FinishReason: finish,
		}},
	}
}

func TestGeminiChunkToOpenAIChunks(t *testing.T) {
	state := NewStreamState("gemini-2.5-pro")

	chunks := GeminiChunkToOpenAIChunks(geminiChunk([]protocol.GeminiPart{{Text: "Hel"}}, ""), state)
	require.Len(t, chunks, 2)
	assert.Equal(t, "assistant", chunks[0].Choices[0].Delta.Role)
	assert.Equal(t, "Hel", chunks[1].Choices[0].Delta.Content)

	chunks = GeminiChunkToOpenAIChunks(geminiChunk([]protocol.GeminiPart{{Text: "lo"}}, ""), state)
	require.Len(t, chunks, 1)
	assert.Equal(t, "lo", chunks[0].Choices[0].Delta.Content)
	assert.Equal(t, "Hello", state.FullText.String())

	final := geminiChunk(nil, "STOP")
	final.UsageMetadata = &protocol.GeminiUsageMetadata{PromptTokenCount: 9, CandidatesTokenCount: 2}
	chunks = GeminiChunkToOpenAIChunks(final, state)
	require.Len(t, chunks, 1)
	assert.Equal(t, "stop", chunks[0].Choices[0].FinishReason)
	require.NotNil(t, chunks[0].Usage)
	assert.Equal(t, 9, chunks[0].Usage.PromptTokens)
	assert.Equal(t, 11, chunks[0].Usage.TotalTokens)
}

func TestGeminiChunkToOpenAIChunksToolCall(t *testing.T) {
	state := NewStreamState("gemini-2.5-flash")

	chunks := GeminiChunkToOpenAIChunks(geminiChunk([]protocol.GeminiPart{{
		FunctionCall: &protocol.GeminiFunctionCall{Name: "get_weather", Args: json.RawMessage(`{"city":"Oslo"}`)},
	}}, "STOP"), state)

	// role preamble, whole tool call, terminal
	require.Len(t, chunks, 3)
	tc := chunks[1].Choices[0].Delta.ToolCalls[0]
	assert.Equal(t, "get_weather", tc.Function.Name)
	assert.Equal(t, `{"city":"Oslo"}`, tc.Function.Arguments)
	assert.NotEmpty(t, tc.ID)
	// Tool calls override Gemini's STOP.
	assert.Equal(t, "tool_calls", chunks[2].Choices[0].FinishReason)
}

func TestOpenAIChunkToGeminiChunk(t *testing.T) {
	state := NewStreamState("gemini-2.5-pro")

	out := OpenAIChunkToGeminiChunk(textChunk("Hi", ""), state)
	require.NotNil(t, out)
	require.Len(t, out.Candidates, 1)
	assert.Equal(t, "model", out.Candidates[0].Content.Role)
	assert.Equal(t, "Hi", out.Candidates[0].Content.Parts[0].Text)
	assert.Empty(t, out.Candidates[0].FinishReason)

	// Role-only preamble has nothing to render.
	empty := &protocol.ChatCompletionChunk{Choices: []protocol.ChatChunkChoice{{
		Delta: protocol.ChatDelta{Role: "assistant"},
	}}}
	assert.Nil(t, OpenAIChunkToGeminiChunk(empty, state))

	final := OpenAIChunkToGeminiChunk(textChunk("", "stop"), state)
	require.NotNil(t, final)
	assert.Equal(t, "STOP", final.Candidates[0].FinishReason)
	require.NotNil(t, final.UsageMetadata)
}

func TestOpenAIChunkToGeminiChunkToolCalls(t *testing.T) {
	state := NewStreamState("gemini-2.5-flash")

	// Fragments accumulate silently until the terminal chunk.
	assert.Nil(t, OpenAIChunkToGeminiChunk(toolChunk(0, "call_1", "get_weather", `{"ci`), state))
	assert.Nil(t, OpenAIChunkToGeminiChunk(toolChunk(0, "", "", `ty":"Oslo"}`), state))

	final := OpenAIChunkToGeminiChunk(textChunk("", "tool_calls"), state)
	require.NotNil(t, final)
	parts := final.Candidates[0].Content.Parts
	require.Len(t, parts, 1)
	require.NotNil(t, parts[0].FunctionCall)
	assert.Equal(t, "get_weather", parts[0].FunctionCall.Name)
	assert.JSONEq(t, `{"city":"Oslo"}`, string(parts[0].FunctionCall.Args))
	assert.Equal(t, "STOP", final.Candidates[0].FinishReason)
}

func TestOpenAIChunkToOllamaChat(t *testing.T) {
	state := NewStreamState("llama3")

	out := OpenAIChunkToOllamaChat(textChunk("Blue", ""), state)
	require.NotNil(t, out)
	assert.False(t, out.Done)
	assert.Equal(t, "llama3", out.Model)
	assert.Equal(t, "Blue", out.Message.Content)

	// Empty deltas produce no NDJSON line.
	assert.Nil(t, OpenAIChunkToOllamaChat(textChunk("", ""), state))

	usage := textChunk("", "stop")
	usage.Usage = &protocol.ChatUsage{PromptTokens: 7, CompletionTokens: 1}
	final := OpenAIChunkToOllamaChat(usage, state)
	require.NotNil(t, final)
	assert.True(t, final.Done)
	assert.Equal(t, "stop", final.DoneReason)
	assert.Equal(t, 7, final.PromptEvalCount)
	assert.Equal(t, 1, final.EvalCount)
}

func TestOpenAIChunkToOllamaGenerate(t *testing.T) {
	state := NewStreamState("llama3")

	out := OpenAIChunkToOllamaGenerate(textChunk("Sky", ""), state)
	require.NotNil(t, out)
	assert.Equal(t, "Sky", out.Response)
	assert.False(t, out.Done)

	final := OpenAIChunkToOllamaGenerate(textChunk("", "length"), state)
	require.NotNil(t, final)
	assert.True(t, final.Done)
	assert.Equal(t, "length", final.DoneReason)
}
