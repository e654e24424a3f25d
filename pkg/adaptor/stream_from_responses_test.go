package adaptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponsesEventToOpenAIChunksText(t *testing.T) {
	state := NewStreamState("gpt-5")

	chunks, err := ResponsesEventToOpenAIChunks([]byte(`{"type":"response.created","response":{"id":"resp_abc"}}`), state)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "assistant", chunks[0].Choices[0].Delta.Role)
	assert.Equal(t, "resp_abc", state.MsgID)

	chunks, err = ResponsesEventToOpenAIChunks([]byte(`{"type":"response.output_text.delta","delta":"Hel"}`), state)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Hel", chunks[0].Choices[0].Delta.Content)

	chunks, err = ResponsesEventToOpenAIChunks([]byte(`{"type":"response.output_text.delta","delta":"lo"}`), state)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Hello", state.FullText.String())

	// Bookkeeping events the hub does not forward.
	chunks, err = ResponsesEventToOpenAIChunks([]byte(`{"type":"response.content_part.done"}`), state)
	require.NoError(t, err)
	assert.Nil(t, chunks)

	chunks, err = ResponsesEventToOpenAIChunks([]byte(`{"type":"response.completed","response":{"id":"resp_abc","usage":{"input_tokens":6,"output_tokens":2,"total_tokens":8}}}`), state)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "stop", chunks[0].Choices[0].FinishReason)
	require.NotNil(t, chunks[0].Usage)
	assert.Equal(t, 6, chunks[0].Usage.PromptTokens)
	assert.Equal(t, 8, chunks[0].Usage.TotalTokens)
}

func TestResponsesEventToOpenAIChunksToolCall(t *testing.T) {
	state := NewStreamState("gpt-5")

	chunks, err := ResponsesEventToOpenAIChunks([]byte(`{"type":"response.output_item.added","item":{"type":"function_call","call_id":"call_5","name":"search"}}`), state)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	tc := chunks[0].Choices[0].Delta.ToolCalls[0]
	assert.Equal(t, "call_5", tc.ID)
	assert.Equal(t, "search", tc.Function.Name)

	// A non-function item adds nothing.
	chunks, err = ResponsesEventToOpenAIChunks([]byte(`{"type":"response.output_item.added","item":{"type":"message"}}`), state)
	require.NoError(t, err)
	assert.Nil(t, chunks)

	chunks, err = ResponsesEventToOpenAIChunks([]byte(`{"type":"response.function_call_arguments.delta","delta":"{\"q\":"}`), state)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, `{"q":`, chunks[0].Choices[0].Delta.ToolCalls[0].Function.Arguments)

	chunks, err = ResponsesEventToOpenAIChunks([]byte(`{"type":"response.function_call_arguments.delta","delta":"\"go\"}"}`), state)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, `{"q":"go"}`, state.OpenToolCalls[0].Args.String())

	chunks, err = ResponsesEventToOpenAIChunks([]byte(`{"type":"response.completed"}`), state)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "tool_calls", chunks[0].Choices[0].FinishReason)
}

func TestResponsesEventToOpenAIChunksIncomplete(t *testing.T) {
	state := NewStreamState("gpt-5")
	_, err := ResponsesEventToOpenAIChunks([]byte(`{"type":"response.created"}`), state)
	require.NoError(t, err)

	chunks, err := ResponsesEventToOpenAIChunks([]byte(`{"type":"response.incomplete"}`), state)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "length", chunks[0].Choices[0].FinishReason)
}

func TestResponsesEventToOpenAIChunksBadJSON(t *testing.T) {
	state := NewStreamState("gpt-5")
	_, err := ResponsesEventToOpenAIChunks([]byte(`{not json`), state)
	assert.Error(t, err)
}
