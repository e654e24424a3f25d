package adaptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polygate-dev/polygate/internal/protocol"
)

func textChunk(text, finish string) *protocol.ChatCompletionChunk {
	return &protocol.ChatCompletionChunk{
		ID:     "chatcmpl-1",
		Object: "chat.completion.chunk",
		Model:  "gpt-4o",
		Choices: []protocol.ChatChunkChoice{{
			Delta:        protocol.ChatDelta{Content: text},
			FinishReason: finish,
		}},
	}
}

func toolChunk(index int, id, name, args string) *protocol.ChatCompletionChunk {
	return &protocol.ChatCompletionChunk{
		ID:     "chatcmpl-1",
		Object: "chat.completion.chunk",
		Model:  "gpt-4o",
		Choices: []protocol.ChatChunkChoice{{
			Delta: protocol.ChatDelta{ToolCalls: []protocol.ChatToolCall{{
				Index:    intPtr(index),
				ID:       id,
				Type:     "function",
				Function: protocol.ChatToolFunction{Name: name, Arguments: args},
			}}},
		}},
	}
}

func eventTypes(events []StreamEvent) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Event
	}
	return out
}

func TestOpenAIChunkToAnthropicEventsText(t *testing.T) {
	state := NewStreamState("claude-sonnet-4-5")

	events := OpenAIChunkToAnthropicEvents(textChunk("Hel", ""), state)
	require.Equal(t, []string{"message_start", "content_block_start", "content_block_delta"}, eventTypes(events))

	start := events[0].Data["message"].(map[string]interface{})
	assert.Equal(t, "assistant", start["role"])
	assert.Equal(t, "claude-sonnet-4-5", start["model"])

	delta := events[2].Data["delta"].(map[string]interface{})
	assert.Equal(t, "text_delta", delta["type"])
	assert.Equal(t, "Hel", delta["text"])

	events = OpenAIChunkToAnthropicEvents(textChunk("lo", ""), state)
	require.Equal(t, []string{"content_block_delta"}, eventTypes(events))

	events = OpenAIChunkToAnthropicEvents(textChunk("", "stop"), state)
	require.Equal(t, []string{"content_block_stop", "message_delta", "message_stop"}, eventTypes(events))
	msgDelta := events[1].Data["delta"].(map[string]interface{})
	assert.Equal(t, "end_turn", msgDelta["stop_reason"])

	assert.Equal(t, "Hello", state.FullText.String())
}

func TestOpenAIChunkToAnthropicEventsToolCall(t *testing.T) {
	state := NewStreamState("claude-sonnet-4-5")

	// Tool call opens with id+name, arguments arrive in raw fragments.
	events := OpenAIChunkToAnthropicEvents(toolChunk(0, "call_1", "get_weather", ""), state)
	require.Equal(t, []string{"message_start", "content_block_start"}, eventTypes(events))
	block := events[1].Data["content_block"].(map[string]interface{})
	assert.Equal(t, "tool_use", block["type"])
	assert.Equal(t, "call_1", block["id"])
	assert.Equal(t, "get_weather", block["name"])

	// Argument fragments forward verbatim, unparsed.
	events = OpenAIChunkToAnthropicEvents(toolChunk(0, "", "", `{"city":`), state)
	require.Equal(t, []string{"content_block_delta"}, eventTypes(events))
	delta := events[0].Data["delta"].(map[string]interface{})
	assert.Equal(t, "input_json_delta", delta["type"])
	assert.Equal(t, `{"city":`, delta["partial_json"])

	events = OpenAIChunkToAnthropicEvents(toolChunk(0, "", "", `"London"}`), state)
	require.Equal(t, []string{"content_block_delta"}, eventTypes(events))

	finish := &protocol.ChatCompletionChunk{
		Choices: []protocol.ChatChunkChoice{{FinishReason: "tool_calls"}},
		Usage:   &protocol.ChatUsage{PromptTokens: 20, CompletionTokens: 11},
	}
	events = OpenAIChunkToAnthropicEvents(finish, state)
	require.Equal(t, []string{"content_block_stop", "message_delta", "message_stop"}, eventTypes(events))

	msgDelta := events[1].Data["delta"].(map[string]interface{})
	assert.Equal(t, "tool_use", msgDelta["stop_reason"])
	usage := events[1].Data["usage"].(map[string]interface{})
	assert.Equal(t, 20, usage["input_tokens"])
	assert.Equal(t, 11, usage["output_tokens"])

	assert.Equal(t, `{"city":"London"}`, state.OpenToolCalls[0].Args.String())
}

func TestOpenAIChunkToAnthropicEventsThinkingThenText(t *testing.T) {
	state := NewStreamState("claude-sonnet-4-5")

	chunk := &protocol.ChatCompletionChunk{
		Choices: []protocol.ChatChunkChoice{{Delta: protocol.ChatDelta{ReasoningContent: "hmm"}}},
	}
	events := OpenAIChunkToAnthropicEvents(chunk, state)
	require.Equal(t, []string{"message_start", "content_block_start", "content_block_delta"}, eventTypes(events))
	block := events[1].Data["content_block"].(map[string]interface{})
	assert.Equal(t, "thinking", block["type"])

	// Text opens a second block at the next index.
	events = OpenAIChunkToAnthropicEvents(textChunk("Hi", ""), state)
	require.Equal(t, []string{"content_block_start", "content_block_delta"}, eventTypes(events))
	assert.Equal(t, 1, events[0].Data["index"])

	events = OpenAIChunkToAnthropicEvents(textChunk("", "stop"), state)
	// Both blocks close.
	require.Equal(t, []string{"content_block_stop", "content_block_stop", "message_delta", "message_stop"}, eventTypes(events))
	assert.Equal(t, 0, events[0].Data["index"])
	assert.Equal(t, 1, events[1].Data["index"])
}

func TestAnthropicErrorEvent(t *testing.T) {
	ev := AnthropicErrorEvent("overloaded_error", "Overloaded")
	assert.Equal(t, "error", ev.Event)
	body := ev.Data["error"].(map[string]interface{})
	assert.Equal(t, "overloaded_error", body["type"])
	assert.Equal(t, "Overloaded", body["message"])
}
