package adaptor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polygate-dev/polygate/internal/protocol"
)

func anthropicEvent(t *testing.T, raw string) *protocol.AnthropicStreamEvent {
	t.Helper()
	var ev protocol.AnthropicStreamEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	return &ev
}

func TestAnthropicEventToOpenAIChunks(t *testing.T) {
	state := NewStreamState("claude-sonnet-4-5")

	chunks := AnthropicEventToOpenAIChunks(anthropicEvent(t,
		`{"type":"message_start","message":{"id":"msg_abc","usage":{"input_tokens":12,"output_tokens":0}}}`), state)
	require.Len(t, chunks, 1)
	assert.Equal(t, "assistant", chunks[0].Choices[0].Delta.Role)
	assert.Equal(t, "msg_abc", state.MsgID)
	assert.Equal(t, 12, state.InputTokens)

	// Text blocks open implicitly; content_block_start emits nothing.
	chunks = AnthropicEventToOpenAIChunks(anthropicEvent(t,
		`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`), state)
	assert.Empty(t, chunks)

	chunks = AnthropicEventToOpenAIChunks(anthropicEvent(t,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hi there"}}`), state)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Hi there", chunks[0].Choices[0].Delta.Content)

	chunks = AnthropicEventToOpenAIChunks(anthropicEvent(t,
		`{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":3}}`), state)
	require.Len(t, chunks, 1)
	assert.Equal(t, "stop", chunks[0].Choices[0].FinishReason)
	require.NotNil(t, chunks[0].Usage)
	assert.Equal(t, 12, chunks[0].Usage.PromptTokens)
	assert.Equal(t, 3, chunks[0].Usage.CompletionTokens)

	chunks = AnthropicEventToOpenAIChunks(anthropicEvent(t, `{"type":"message_stop"}`), state)
	assert.Empty(t, chunks)
	assert.Equal(t, "Hi there", state.FullText.String())
}

func TestAnthropicEventToOpenAIChunksToolUse(t *testing.T) {
	state := NewStreamState("claude-sonnet-4-5")

	AnthropicEventToOpenAIChunks(anthropicEvent(t,
		`{"type":"message_start","message":{"id":"msg_t","usage":{"input_tokens":5,"output_tokens":0}}}`), state)

	chunks := AnthropicEventToOpenAIChunks(anthropicEvent(t,
		`{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"toolu_1","name":"get_weather"}}`), state)
	require.Len(t, chunks, 1)
	tc := chunks[0].Choices[0].Delta.ToolCalls
	require.Len(t, tc, 1)
	assert.Equal(t, "toolu_1", tc[0].ID)
	assert.Equal(t, "get_weather", tc[0].Function.Name)
	require.NotNil(t, tc[0].Index)
	assert.Equal(t, 0, *tc[0].Index)

	chunks = AnthropicEventToOpenAIChunks(anthropicEvent(t,
		`{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"city\":\"Paris\"}"}}`), state)
	require.Len(t, chunks, 1)
	assert.Equal(t, `{"city":"Paris"}`, chunks[0].Choices[0].Delta.ToolCalls[0].Function.Arguments)

	// Deltas for an unknown block index are dropped.
	chunks = AnthropicEventToOpenAIChunks(anthropicEvent(t,
		`{"type":"content_block_delta","index":9,"delta":{"type":"input_json_delta","partial_json":"x"}}`), state)
	assert.Empty(t, chunks)

	chunks = AnthropicEventToOpenAIChunks(anthropicEvent(t,
		`{"type":"message_delta","delta":{"stop_reason":"tool_use"},"usage":{"output_tokens":7}}`), state)
	require.Len(t, chunks, 1)
	assert.Equal(t, "tool_calls", chunks[0].Choices[0].FinishReason)
	assert.True(t, state.SawToolCall)
}

func TestAnthropicEventToOpenAIChunksThinking(t *testing.T) {
	state := NewStreamState("claude-sonnet-4-5")
	chunks := AnthropicEventToOpenAIChunks(anthropicEvent(t,
		`{"type":"content_block_delta","index":0,"delta":{"type":"thinking_delta","thinking":"step one"}}`), state)
	require.Len(t, chunks, 1)
	assert.Equal(t, "step one", chunks[0].Choices[0].Delta.ReasoningContent)
	assert.Equal(t, "step one", state.ReasoningText.String())
}
