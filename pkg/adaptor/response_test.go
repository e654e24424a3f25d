package adaptor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polygate-dev/polygate/internal/protocol"
)

func TestAnthropicResponseToOpenAI(t *testing.T) {
	resp := &protocol.MessagesResponse{
		ID:   "msg_01",
		Type: "message",
		Role: "assistant",
		Content: []protocol.AnthropicBlock{
			{Type: "thinking", Thinking: "considering"},
			{Type: "text", Text: "Hello "},
			{Type: "text", Text: "there"},
			{Type: "tool_use", ID: "toolu_01", Name: "get_weather", Input: json.RawMessage(`{"city":"Oslo"}`)},
		},
		StopReason: "tool_use",
		Usage:      protocol.AnthropicUsage{InputTokens: 12, OutputTokens: 7},
	}

	out := AnthropicResponseToOpenAI(resp, "[Kiro] claude-sonnet-4-5")
	assert.Equal(t, "msg_01", out.ID)
	assert.Equal(t, "[Kiro] claude-sonnet-4-5", out.Model)
	require.Len(t, out.Choices, 1)

	msg := out.Choices[0].Message
	assert.Equal(t, "Hello there", msg.Content.AsText())
	assert.Equal(t, "considering", msg.ReasoningContent)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "toolu_01", msg.ToolCalls[0].ID)
	assert.Equal(t, `{"city":"Oslo"}`, msg.ToolCalls[0].Function.Arguments)
	assert.Equal(t, "tool_calls", out.Choices[0].FinishReason)

	require.NotNil(t, out.Usage)
	assert.Equal(t, 12, out.Usage.PromptTokens)
	assert.Equal(t, 19, out.Usage.TotalTokens)
}

func TestOpenAIResponseToAnthropic(t *testing.T) {
	resp := &protocol.ChatCompletionResponse{
		ID: "chatcmpl-1",
		Choices: []protocol.ChatChoice{{
			Message: protocol.ChatMessage{
				Role:             "assistant",
				ReasoningContent: "hmm",
				Content:          protocol.TextContent("Done."),
				ToolCalls: []protocol.ChatToolCall{{
					ID:       "call_9",
					Type:     "function",
					Function: protocol.ChatToolFunction{Name: "lookup", Arguments: `{"q":"x"}`},
				}},
			},
			FinishReason: "tool_calls",
		}},
		Usage: &protocol.ChatUsage{PromptTokens: 5, CompletionTokens: 3, TotalTokens: 8},
	}

	out := OpenAIResponseToAnthropic(resp, "claude-sonnet-4-5")
	assert.Equal(t, "chatcmpl-1", out.ID)
	assert.Equal(t, "message", out.Type)
	assert.Equal(t, "tool_use", out.StopReason)

	require.Len(t, out.Content, 3)
	assert.Equal(t, "thinking", out.Content[0].Type)
	assert.Equal(t, "hmm", out.Content[0].Thinking)
	assert.Equal(t, "text", out.Content[1].Type)
	assert.Equal(t, "Done.", out.Content[1].Text)
	assert.Equal(t, "tool_use", out.Content[2].Type)
	assert.Equal(t, "call_9", out.Content[2].ID)
	assert.JSONEq(t, `{"q":"x"}`, string(out.Content[2].Input))

	assert.Equal(t, 5, out.Usage.InputTokens)
	assert.Equal(t, 3, out.Usage.OutputTokens)
}

func TestOpenAIResponseToAnthropicSynthesizesIDs(t *testing.T) {
	resp := &protocol.ChatCompletionResponse{
		Choices: []protocol.ChatChoice{{
			Message: protocol.ChatMessage{
				Role: "assistant",
				ToolCalls: []protocol.ChatToolCall{{
					Type:     "function",
					Function: protocol.ChatToolFunction{Name: "f", Arguments: ""},
				}},
			},
			FinishReason: "tool_calls",
		}},
	}
	out := OpenAIResponseToAnthropic(resp, "claude-sonnet-4-5")
	assert.NotEmpty(t, out.ID)
	require.Len(t, out.Content, 1)
	assert.NotEmpty(t, out.Content[0].ID)
	// Empty arguments become a valid empty object.
	assert.JSONEq(t, `{}`, string(out.Content[0].Input))
}

func TestGeminiResponseToOpenAI(t *testing.T) {
	resp := &protocol.GenerateContentResponse{
		ResponseID: "resp-1",
		Candidates: []protocol.GeminiCandidate{{
			Content: protocol.GeminiContent{
				Role: "model",
				Parts: []protocol.GeminiPart{
					{Text: "thinking about it", Thought: true},
					{Text: "It is cold."},
					{FunctionCall: &protocol.GeminiFunctionCall{Name: "get_weather", Args: json.RawMessage(`{"city":"Oslo"}`)}},
				},
			},
			FinishReason: "STOP",
		}},
		UsageMetadata: &protocol.GeminiUsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 6},
	}

	out := GeminiResponseToOpenAI(resp, "[Gemini CLI] gemini-2.5-pro")
	assert.Equal(t, "resp-1", out.ID)
	require.Len(t, out.Choices, 1)

	msg := out.Choices[0].Message
	assert.Equal(t, "It is cold.", msg.Content.AsText())
	assert.Equal(t, "thinking about it", msg.ReasoningContent)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "get_weather", msg.ToolCalls[0].Function.Name)
	// A function call overrides Gemini's STOP.
	assert.Equal(t, "tool_calls", out.Choices[0].FinishReason)

	require.NotNil(t, out.Usage)
	assert.Equal(t, 16, out.Usage.TotalTokens)
}

func TestOpenAIResponseToGemini(t *testing.T) {
	resp := &protocol.ChatCompletionResponse{
		ID: "chatcmpl-2",
		Choices: []protocol.ChatChoice{{
			Message:      protocol.ChatMessage{Role: "assistant", Content: protocol.TextContent("Hi")},
			FinishReason: "length",
		}},
		Usage: &protocol.ChatUsage{PromptTokens: 4, CompletionTokens: 2, TotalTokens: 6},
	}

	out := OpenAIResponseToGemini(resp, "gemini-2.5-pro")
	assert.Equal(t, "chatcmpl-2", out.ResponseID)
	require.Len(t, out.Candidates, 1)
	assert.Equal(t, "model", out.Candidates[0].Content.Role)
	assert.Equal(t, "Hi", out.Candidates[0].Content.Parts[0].Text)
	assert.Equal(t, "MAX_TOKENS", out.Candidates[0].FinishReason)

	require.NotNil(t, out.UsageMetadata)
	assert.Equal(t, 4, out.UsageMetadata.PromptTokenCount)
	assert.Equal(t, 6, out.UsageMetadata.TotalTokenCount)
}

func TestResponsesResponseToOpenAI(t *testing.T) {
	resp := &protocol.ResponsesResponse{
		ID:        "resp_9",
		Status:    "completed",
		CreatedAt: 1700000000,
		Output: []protocol.ResponsesItem{
			{Type: "reasoning", Summary: []protocol.ResponsesSummaryPart{{Type: "summary_text", Text: "plan"}}},
			{Type: "message", Role: "assistant", Content: protocol.ResponsesContentParts([]protocol.ResponsesContentPart{
				{Type: "output_text", Text: "Answer"},
			})},
		},
		Usage: &protocol.ResponsesUsage{InputTokens: 8, OutputTokens: 5, TotalTokens: 13},
	}

	out := ResponsesResponseToOpenAI(resp, "gpt-5")
	assert.Equal(t, "resp_9", out.ID)
	assert.Equal(t, int64(1700000000), out.Created)
	require.Len(t, out.Choices, 1)
	assert.Equal(t, "Answer", out.Choices[0].Message.Content.AsText())
	assert.Equal(t, "plan", out.Choices[0].Message.ReasoningContent)
	assert.Equal(t, "stop", out.Choices[0].FinishReason)
	assert.Equal(t, 13, out.Usage.TotalTokens)
}

func TestResponsesResponseToOpenAIIncomplete(t *testing.T) {
	resp := &protocol.ResponsesResponse{
		ID:     "resp_10",
		Status: "incomplete",
		Output: []protocol.ResponsesItem{
			{Type: "message", Role: "assistant", Content: protocol.ResponsesContentText("truncat")},
		},
	}
	out := ResponsesResponseToOpenAI(resp, "gpt-5")
	assert.Equal(t, "length", out.Choices[0].FinishReason)
}

func TestOpenAIResponseToResponses(t *testing.T) {
	resp := &protocol.ChatCompletionResponse{
		Created: 1700000001,
		Choices: []protocol.ChatChoice{{
			Message: protocol.ChatMessage{
				Role:    "assistant",
				Content: protocol.TextContent("Sure."),
				ToolCalls: []protocol.ChatToolCall{{
					ID:       "call_3",
					Type:     "function",
					Function: protocol.ChatToolFunction{Name: "search", Arguments: `{"q":"go"}`},
				}},
			},
			FinishReason: "tool_calls",
		}},
		Usage: &protocol.ChatUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	}

	out := OpenAIResponseToResponses(resp, "gpt-5")
	assert.Equal(t, "response", out.Object)
	assert.Equal(t, "completed", out.Status)
	assert.NotEmpty(t, out.ID)

	require.Len(t, out.Output, 2)
	assert.Equal(t, "message", out.Output[0].Type)
	assert.Equal(t, "Sure.", out.Output[0].Content.AsText())
	assert.Equal(t, "function_call", out.Output[1].Type)
	assert.Equal(t, "call_3", out.Output[1].CallID)
	assert.Equal(t, "search", out.Output[1].Name)

	require.NotNil(t, out.Usage)
	assert.Equal(t, 3, out.Usage.InputTokens)
}

func TestOpenAIResponseToOllama(t *testing.T) {
	resp := &protocol.ChatCompletionResponse{
		Choices: []protocol.ChatChoice{{
			Message:      protocol.ChatMessage{Role: "assistant", Content: protocol.TextContent("Blue.")},
			FinishReason: "length",
		}},
		Usage: &protocol.ChatUsage{PromptTokens: 6, CompletionTokens: 1},
	}

	chat := OpenAIResponseToOllamaChat(resp, "llama3")
	assert.Equal(t, "llama3", chat.Model)
	assert.True(t, chat.Done)
	assert.Equal(t, "assistant", chat.Message.Role)
	assert.Equal(t, "Blue.", chat.Message.Content)
	assert.Equal(t, "length", chat.DoneReason)
	assert.Equal(t, 6, chat.PromptEvalCount)
	assert.Equal(t, 1, chat.EvalCount)

	gen := OpenAIResponseToOllamaGenerate(resp, "llama3")
	assert.Equal(t, "Blue.", gen.Response)
	assert.True(t, gen.Done)
	assert.Equal(t, "length", gen.DoneReason)
}
