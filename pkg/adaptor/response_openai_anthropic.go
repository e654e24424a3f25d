package adaptor

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polygate-dev/polygate/internal/protocol"
)

// AnthropicResponseToOpenAI converts a Messages response into a Chat
// Completions response.
func AnthropicResponseToOpenAI(resp *protocol.MessagesResponse, model string) *protocol.ChatCompletionResponse {
	message := protocol.ChatMessage{Role: "assistant"}
	var texts []string

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			texts = append(texts, block.Text)
		case "thinking":
			message.ReasoningContent += block.Thinking
		case "tool_use":
			message.ToolCalls = append(message.ToolCalls, protocol.ChatToolCall{
				ID:   block.ID,
				Type: "function",
				Function: protocol.ChatToolFunction{
					Name:      block.Name,
					Arguments: string(block.Input),
				},
			})
		}
	}
	if len(texts) > 0 {
		message.Content = protocol.TextContent(strings.Join(texts, ""))
	}

	finish := protocol.FinishReasonToOpenAI(protocol.FinishReasonFromAnthropic(resp.StopReason))

	return &protocol.ChatCompletionResponse{
		ID:      resp.ID,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []protocol.ChatChoice{{
			Index:        0,
			Message:      message,
			FinishReason: finish,
		}},
		Usage: usageFromAnthropic(resp.Usage),
	}
}

// OpenAIResponseToAnthropic converts a Chat Completions response into a
// Messages response.
func OpenAIResponseToAnthropic(resp *protocol.ChatCompletionResponse, model string) *protocol.MessagesResponse {
	out := &protocol.MessagesResponse{
		ID:    resp.ID,
		Type:  "message",
		Role:  "assistant",
		Model: model,
	}
	if out.ID == "" {
		out.ID = "msg_" + uuid.NewString()
	}

	finish := "stop"
	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		finish = choice.FinishReason

		if choice.Message.ReasoningContent != "" {
			out.Content = append(out.Content, protocol.AnthropicBlock{
				Type:     "thinking",
				Thinking: choice.Message.ReasoningContent,
			})
		}
		if text := choice.Message.Content.AsText(); text != "" {
			thinking, rest := splitThinkingTags(text)
			if thinking != "" {
				out.Content = append(out.Content, protocol.AnthropicBlock{Type: "thinking", Thinking: thinking})
			}
			if rest != "" {
				out.Content = append(out.Content, protocol.AnthropicBlock{Type: "text", Text: rest})
			}
		}
		for i, tc := range choice.Message.ToolCalls {
			id := tc.ID
			if id == "" {
				id = fmt.Sprintf("toolu_%02d_%s", i, uuid.NewString()[:8])
			}
			out.Content = append(out.Content, protocol.AnthropicBlock{
				Type:  "tool_use",
				ID:    id,
				Name:  tc.Function.Name,
				Input: validJSONObject(tc.Function.Arguments),
			})
		}
	}
	out.StopReason = protocol.FinishReasonToAnthropic(protocol.FinishReasonFromOpenAI(finish))
	out.Usage = usageToAnthropic(resp.Usage)
	return out
}
