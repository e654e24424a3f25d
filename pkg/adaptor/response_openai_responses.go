package adaptor

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polygate-dev/polygate/internal/protocol"
)

// ResponsesResponseToOpenAI converts a Responses API response into a Chat
// Completions response.
func ResponsesResponseToOpenAI(resp *protocol.ResponsesResponse, model string) *protocol.ChatCompletionResponse {
	message := protocol.ChatMessage{Role: "assistant"}
	var texts []string

	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			if text := item.Content.AsText(); text != "" {
				texts = append(texts, text)
			}
		case "function_call":
			message.ToolCalls = append(message.ToolCalls, protocol.ChatToolCall{
				ID:   item.CallID,
				Type: "function",
				Function: protocol.ChatToolFunction{
					Name:      item.Name,
					Arguments: item.Arguments,
				},
			})
		case "reasoning":
			for _, part := range item.Summary {
				message.ReasoningContent += part.Text
			}
		}
	}
	if len(texts) > 0 {
		message.Content = protocol.TextContent(strings.Join(texts, "\n"))
	}

	finish := "stop"
	if len(message.ToolCalls) > 0 {
		finish = "tool_calls"
	} else if resp.Status == "incomplete" {
		finish = "length"
	}

	return &protocol.ChatCompletionResponse{
		ID:      resp.ID,
		Object:  "chat.completion",
		Created: resp.CreatedAt,
		Model:   model,
		Choices: []protocol.ChatChoice{{
			Index:        0,
			Message:      message,
			FinishReason: finish,
		}},
		Usage: usageFromResponses(resp.Usage),
	}
}

// OpenAIResponseToResponses converts a Chat Completions response into a
// Responses API response.
func OpenAIResponseToResponses(resp *protocol.ChatCompletionResponse, model string) *protocol.ResponsesResponse {
	out := &protocol.ResponsesResponse{
		ID:        "resp_" + uuid.NewString(),
		Object:    "response",
		CreatedAt: resp.Created,
		Status:    "completed",
		Model:     model,
		Usage:     usageToResponses(resp.Usage),
	}
	if out.CreatedAt == 0 {
		out.CreatedAt = time.Now().Unix()
	}

	if len(resp.Choices) == 0 {
		return out
	}
	choice := resp.Choices[0]

	if choice.Message.ReasoningContent != "" {
		out.Output = append(out.Output, protocol.ResponsesItem{
			Type: "reasoning",
			ID:   "rs_" + uuid.NewString(),
			Summary: []protocol.ResponsesSummaryPart{{
				Type: "summary_text",
				Text: choice.Message.ReasoningContent,
			}},
		})
	}
	if text := choice.Message.Content.AsText(); text != "" {
		out.Output = append(out.Output, protocol.ResponsesItem{
			Type:   "message",
			ID:     "msg_" + uuid.NewString(),
			Status: "completed",
			Role:   "assistant",
			Content: protocol.ResponsesContentParts([]protocol.ResponsesContentPart{
				{Type: "output_text", Text: text},
			}),
		})
	}
	for _, tc := range choice.Message.ToolCalls {
		out.Output = append(out.Output, protocol.ResponsesItem{
			Type:      "function_call",
			ID:        "fc_" + uuid.NewString(),
			Status:    "completed",
			CallID:    tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	if choice.FinishReason == "length" {
		out.Status = "incomplete"
	}
	return out
}
