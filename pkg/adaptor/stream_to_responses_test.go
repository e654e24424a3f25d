package adaptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polygate-dev/polygate/internal/protocol"
)

func TestOpenAIChunkToResponsesEvents(t *testing.T) {
	state := NewStreamState("gpt-4o")

	events := OpenAIChunkToResponsesEvents(textChunk("Hello", ""), state)
	require.Equal(t, []string{
		"response.created",
		"response.in_progress",
		"response.output_item.added",
		"response.content_part.added",
		"response.output_text.delta",
	}, eventTypes(events))

	created := events[0].Data["response"].(map[string]interface{})
	assert.Equal(t, "in_progress", created["status"])
	assert.Equal(t, state.ID, created["id"])
	assert.Equal(t, 1, events[0].Data["sequence_number"])
	assert.Equal(t, 2, events[1].Data["sequence_number"])

	events = OpenAIChunkToResponsesEvents(textChunk(" world", ""), state)
	require.Equal(t, []string{"response.output_text.delta"}, eventTypes(events))

	finish := &protocol.ChatCompletionChunk{
		Choices: []protocol.ChatChunkChoice{{FinishReason: "stop"}},
		Usage:   &protocol.ChatUsage{PromptTokens: 4, CompletionTokens: 2},
	}
	events = OpenAIChunkToResponsesEvents(finish, state)
	require.Equal(t, []string{
		"response.output_text.done",
		"response.content_part.done",
		"response.output_item.done",
		"response.completed",
	}, eventTypes(events))

	assert.Equal(t, "Hello world", events[0].Data["text"])

	completed := events[3].Data["response"].(map[string]interface{})
	assert.Equal(t, "completed", completed["status"])
	usage := completed["usage"].(map[string]interface{})
	assert.Equal(t, 4, usage["input_tokens"])
	assert.Equal(t, 2, usage["output_tokens"])
	assert.Equal(t, 6, usage["total_tokens"])
}

func TestOpenAIChunkToResponsesEventsToolCall(t *testing.T) {
	state := NewStreamState("gpt-4o")

	events := OpenAIChunkToResponsesEvents(toolChunk(0, "call_9", "lookup", ""), state)
	require.Equal(t, []string{
		"response.created",
		"response.in_progress",
		"response.output_item.added",
	}, eventTypes(events))
	item := events[2].Data["item"].(map[string]interface{})
	assert.Equal(t, "function_call", item["type"])
	assert.Equal(t, "call_9", item["call_id"])
	assert.Equal(t, "lookup", item["name"])

	events = OpenAIChunkToResponsesEvents(toolChunk(0, "", "", `{"q":"go"}`), state)
	require.Equal(t, []string{"response.custom_tool_call_input.delta"}, eventTypes(events))
	assert.Equal(t, `{"q":"go"}`, events[0].Data["delta"])

	finish := &protocol.ChatCompletionChunk{
		Choices: []protocol.ChatChunkChoice{{FinishReason: "tool_calls"}},
	}
	events = OpenAIChunkToResponsesEvents(finish, state)
	require.Equal(t, []string{"response.output_item.done", "response.completed"}, eventTypes(events))
	done := events[0].Data["item"].(map[string]interface{})
	assert.Equal(t, "completed", done["status"])
	assert.Equal(t, `{"q":"go"}`, done["arguments"])
}

func TestResponsesErrorEvent(t *testing.T) {
	ev := ResponsesErrorEvent("upstream_error", "bad gateway")
	assert.Equal(t, "error", ev.Event)
	assert.Equal(t, "upstream_error", ev.Data["code"])
	assert.Equal(t, "bad gateway", ev.Data["message"])
}
