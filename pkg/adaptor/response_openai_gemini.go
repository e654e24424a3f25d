package adaptor

import (
	"fmt"
	"strings"
	"time"

	"github.com/polygate-dev/polygate/internal/protocol"
)

// GeminiResponseToOpenAI converts a generateContent response into a Chat
// Completions response.
func GeminiResponseToOpenAI(resp *protocol.GenerateContentResponse, model string) *protocol.ChatCompletionResponse {
	message := protocol.ChatMessage{Role: "assistant"}
	finish := protocol.FinishStop
	var texts []string

	if len(resp.Candidates) > 0 {
		cand := resp.Candidates[0]
		for i, part := range cand.Content.Parts {
			switch {
			case part.FunctionCall != nil:
				id := part.FunctionCall.ID
				if id == "" {
					id = fmt.Sprintf("call_%d", i)
				}
				args := string(part.FunctionCall.Args)
				if args == "" {
					args = "{}"
				}
				message.ToolCalls = append(message.ToolCalls, protocol.ChatToolCall{
					ID:   id,
					Type: "function",
					Function: protocol.ChatToolFunction{
						Name:      part.FunctionCall.Name,
						Arguments: args,
					},
				})
			case part.Thought:
				message.ReasoningContent += part.Text
			case part.Text != "":
				texts = append(texts, part.Text)
			}
		}
		finish = protocol.FinishReasonFromGemini(cand.FinishReason)
		if len(message.ToolCalls) > 0 {
			// Gemini reports STOP for tool calls.
			finish = protocol.FinishToolCall
		}
	}
	if len(texts) > 0 {
		message.Content = protocol.TextContent(strings.Join(texts, ""))
	}

	id := resp.ResponseID
	if id == "" {
		id = fmt.Sprintf("chatcmpl-%d", time.Now().UnixNano())
	}
	return &protocol.ChatCompletionResponse{
		ID:      id,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []protocol.ChatChoice{{
			Index:        0,
			Message:      message,
			FinishReason: protocol.FinishReasonToOpenAI(finish),
		}},
		Usage: usageFromGemini(resp.UsageMetadata),
	}
}

// OpenAIResponseToGemini converts a Chat Completions response into a
// generateContent response.
func OpenAIResponseToGemini(resp *protocol.ChatCompletionResponse, model string) *protocol.GenerateContentResponse {
	out := &protocol.GenerateContentResponse{
		ResponseID:    resp.ID,
		ModelVersion:  model,
		UsageMetadata: usageToGemini(resp.Usage),
	}

	var parts []protocol.GeminiPart
	finish := "STOP"
	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		if text := choice.Message.Content.AsText(); text != "" {
			parts = append(parts, protocol.GeminiPart{Text: text})
		}
		for _, tc := range choice.Message.ToolCalls {
			parts = append(parts, protocol.GeminiPart{
				FunctionCall: &protocol.GeminiFunctionCall{
					ID:   tc.ID,
					Name: tc.Function.Name,
					Args: validJSONObject(tc.Function.Arguments),
				},
			})
		}
		finish = protocol.FinishReasonToGemini(protocol.FinishReasonFromOpenAI(choice.FinishReason))
	}

	out.Candidates = []protocol.GeminiCandidate{{
		Content:      protocol.GeminiContent{Role: "model", Parts: parts},
		FinishReason: finish,
	}}
	return out
}
