package adaptor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polygate-dev/polygate/internal/protocol"
)

func TestOpenAIRequestToAnthropic(t *testing.T) {
	req := &protocol.ChatCompletionRequest{
		Model: "claude-sonnet-4-5",
		Messages: []protocol.ChatMessage{
			{Role: "system", Content: protocol.TextContent("Be brief.")},
			{Role: "developer", Content: protocol.TextContent("Answer in English.")},
			{Role: "user", Content: protocol.TextContent("Hello")},
		},
		MaxTokens:   intPtr(256),
		Temperature: floatPtr(0.5),
	}

	out := OpenAIRequestToAnthropic(req)

	// system and developer turns merge into Anthropic's system field.
	assert.Equal(t, "Be brief.\nAnswer in English.", out.System.AsText())
	require.Len(t, out.Messages, 1)
	assert.Equal(t, "user", out.Messages[0].Role)
	assert.Equal(t, "Hello", out.Messages[0].Content.AsText())
	assert.Equal(t, 256, out.MaxTokens)
	require.NotNil(t, out.Temperature)
	assert.Equal(t, 0.5, *out.Temperature)
}

func TestOpenAIRequestToAnthropicMaxTokensDefault(t *testing.T) {
	req := &protocol.ChatCompletionRequest{
		Model:    "claude-sonnet-4-5",
		Messages: []protocol.ChatMessage{{Role: "user", Content: protocol.TextContent("hi")}},
	}
	out := OpenAIRequestToAnthropic(req)
	assert.Equal(t, protocol.DefaultMaxOutputTokens, out.MaxTokens)

	req.MaxCompletionTokens = intPtr(1024)
	out = OpenAIRequestToAnthropic(req)
	assert.Equal(t, 1024, out.MaxTokens)
}

func TestOpenAIRequestToAnthropicToolResult(t *testing.T) {
	req := &protocol.ChatCompletionRequest{
		Model: "claude-sonnet-4-5",
		Messages: []protocol.ChatMessage{
			{Role: "user", Content: protocol.TextContent("What's the weather in London?")},
			{
				Role: "assistant",
				ToolCalls: []protocol.ChatToolCall{{
					ID:   "call_1",
					Type: "function",
					Function: protocol.ChatToolFunction{
						Name:      "get_weather",
						Arguments: `{"city":"London"}`,
					},
				}},
			},
			{Role: "tool", ToolCallID: "call_1", Content: protocol.TextContent("18C, cloudy")},
		},
		Tools: []protocol.ChatTool{{
			Type: "function",
			Function: protocol.ChatFunction{
				Name:       "get_weather",
				Parameters: json.RawMessage(`{"type":"object"}`),
			},
		}},
	}

	out := OpenAIRequestToAnthropic(req)
	require.Len(t, out.Messages, 3)

	asst := out.Messages[1].Content.AsBlocks()
	require.Len(t, asst, 1)
	assert.Equal(t, "tool_use", asst[0].Type)
	assert.Equal(t, "call_1", asst[0].ID)
	assert.Equal(t, "get_weather", asst[0].Name)
	assert.JSONEq(t, `{"city":"London"}`, string(asst[0].Input))

	// The tool turn becomes a user turn carrying a tool_result block.
	result := out.Messages[2].Content.AsBlocks()
	require.Len(t, result, 1)
	assert.Equal(t, "tool_result", result[0].Type)
	assert.Equal(t, "call_1", result[0].ToolUseID)

	require.Len(t, out.Tools, 1)
	assert.Equal(t, "get_weather", out.Tools[0].Name)
}

func TestOpenAIRequestToAnthropicImages(t *testing.T) {
	req := &protocol.ChatCompletionRequest{
		Model: "claude-sonnet-4-5",
		Messages: []protocol.ChatMessage{{
			Role: "user",
			Content: protocol.PartsContent([]protocol.ChatContentPart{
				{Type: "text", Text: "Describe these."},
				{Type: "image_url", ImageURL: &protocol.ChatImageURL{URL: "data:image/png;base64,iVBORw0KGgo="}},
				{Type: "image_url", ImageURL: &protocol.ChatImageURL{URL: "https://example.com/cat.png"}},
			}),
		}},
	}

	out := OpenAIRequestToAnthropic(req)
	require.Len(t, out.Messages, 1)
	blocks := out.Messages[0].Content.AsBlocks()
	require.Len(t, blocks, 3)

	assert.Equal(t, "text", blocks[0].Type)

	require.NotNil(t, blocks[1].Source)
	assert.Equal(t, "base64", blocks[1].Source.Type)
	assert.Equal(t, "image/png", blocks[1].Source.MediaType)
	assert.Equal(t, "iVBORw0KGgo=", blocks[1].Source.Data)

	// Remote URLs degrade to a text annotation.
	assert.Equal(t, "text", blocks[2].Type)
	assert.Equal(t, "[Image: https://example.com/cat.png]", blocks[2].Text)
}

func TestOpenAIRequestToAnthropicThinking(t *testing.T) {
	req := &protocol.ChatCompletionRequest{
		Model:           "claude-sonnet-4-5",
		Messages:        []protocol.ChatMessage{{Role: "user", Content: protocol.TextContent("hi")}},
		ReasoningEffort: "medium",
	}
	out := OpenAIRequestToAnthropic(req)
	require.NotNil(t, out.Thinking)
	assert.Equal(t, "enabled", out.Thinking.Type)
	assert.Equal(t, 4096, out.Thinking.BudgetTokens)
}

func TestOpenAIRequestToAnthropicInlineThinkingTags(t *testing.T) {
	req := &protocol.ChatCompletionRequest{
		Model: "claude-sonnet-4-5",
		Messages: []protocol.ChatMessage{
			{Role: "user", Content: protocol.TextContent("hi")},
			{Role: "assistant", Content: protocol.TextContent("<thinking>the user greets</thinking>Hello!")},
			{Role: "user", Content: protocol.TextContent("bye")},
		},
	}
	out := OpenAIRequestToAnthropic(req)
	require.Len(t, out.Messages, 3)

	blocks := out.Messages[1].Content.AsBlocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, "thinking", blocks[0].Type)
	assert.Equal(t, "the user greets", blocks[0].Thinking)
	assert.Equal(t, "text", blocks[1].Type)
	assert.Equal(t, "Hello!", blocks[1].Text)
}

func TestAnthropicRequestToOpenAI(t *testing.T) {
	req := &protocol.MessagesRequest{
		Model:  "claude-sonnet-4-5",
		System: protocol.SystemText("Be helpful."),
		Messages: []protocol.AnthropicMessage{
			{Role: "user", Content: protocol.AnthropicTextContent("Hello")},
		},
		MaxTokens:     512,
		StopSequences: []string{"END"},
		Thinking:      &protocol.AnthropicThinking{Type: "enabled", BudgetTokens: 100},
	}

	out := AnthropicRequestToOpenAI(req)
	require.Len(t, out.Messages, 2)
	assert.Equal(t, "system", out.Messages[0].Role)
	assert.Equal(t, "Be helpful.", out.Messages[0].Content.AsText())
	assert.Equal(t, "user", out.Messages[1].Role)
	require.NotNil(t, out.MaxTokens)
	assert.Equal(t, 512, *out.MaxTokens)
	assert.Equal(t, "medium", out.ReasoningEffort)

	var stops []string
	require.NoError(t, json.Unmarshal(out.Stop, &stops))
	assert.Equal(t, []string{"END"}, stops)
}

func TestAnthropicRequestToOpenAIToolFlow(t *testing.T) {
	req := &protocol.MessagesRequest{
		Model: "claude-sonnet-4-5",
		Messages: []protocol.AnthropicMessage{
			{Role: "user", Content: protocol.AnthropicTextContent("weather?")},
			{Role: "assistant", Content: protocol.AnthropicBlocksContent([]protocol.AnthropicBlock{
				{Type: "thinking", Thinking: "needs the tool"},
				{Type: "text", Text: "Let me check."},
				{Type: "tool_use", ID: "toolu_1", Name: "get_weather", Input: json.RawMessage(`{"city":"Paris"}`)},
			})},
			{Role: "user", Content: protocol.AnthropicBlocksContent([]protocol.AnthropicBlock{
				{Type: "tool_result", ToolUseID: "toolu_1", Content: json.RawMessage(`"15C"`)},
				{Type: "text", Text: "thanks"},
			})},
		},
		MaxTokens:  512,
		ToolChoice: &protocol.AnthropicToolChoice{Type: "any"},
	}

	out := AnthropicRequestToOpenAI(req)
	require.Len(t, out.Messages, 4)

	asst := out.Messages[1]
	assert.Equal(t, "assistant", asst.Role)
	assert.Equal(t, "needs the tool", asst.ReasoningContent)
	assert.Equal(t, "Let me check.", asst.Content.AsText())
	require.Len(t, asst.ToolCalls, 1)
	assert.Equal(t, "toolu_1", asst.ToolCalls[0].ID)
	assert.Equal(t, "get_weather", asst.ToolCalls[0].Function.Name)

	// tool_result splits off into its own tool-role message before the user text.
	toolMsg := out.Messages[2]
	assert.Equal(t, "tool", toolMsg.Role)
	assert.Equal(t, "toolu_1", toolMsg.ToolCallID)
	assert.Equal(t, "15C", toolMsg.Content.AsText())
	assert.Equal(t, "user", out.Messages[3].Role)

	assert.Equal(t, "required", string(rawUnquote(out.ToolChoice)))
}

func TestAnthropicToolResultText(t *testing.T) {
	assert.Equal(t, "plain", anthropicToolResultText(json.RawMessage(`"plain"`)))
	assert.Equal(t, "a\nb", anthropicToolResultText(json.RawMessage(`[{"type":"text","text":"a"},{"type":"text","text":"b"}]`)))
	assert.Equal(t, `{"ok":true}`, anthropicToolResultText(json.RawMessage(`{"ok":true}`)))
	assert.Equal(t, "", anthropicToolResultText(nil))
}

func TestThinkingBudgetBands(t *testing.T) {
	assert.Equal(t, "low", reasoningEffortFromBudget(50))
	assert.Equal(t, "medium", reasoningEffortFromBudget(51))
	assert.Equal(t, "medium", reasoningEffortFromBudget(200))
	assert.Equal(t, "high", reasoningEffortFromBudget(201))

	assert.Equal(t, 1024, budgetFromReasoningEffort("low"))
	assert.Equal(t, 4096, budgetFromReasoningEffort("medium"))
	assert.Equal(t, 16384, budgetFromReasoningEffort("high"))
	assert.Equal(t, 0, budgetFromReasoningEffort("none"))
}

// rawUnquote strips the quotes off a raw JSON string value.
func rawUnquote(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw)
	}
	return s
}
