package adaptor

import (
	"github.com/polygate-dev/polygate/internal/protocol"
)

// OllamaChatToOpenAI converts an Ollama /api/chat request into a Chat
// Completions request. Ollama defaults to streaming unless stream:false.
func OllamaChatToOpenAI(req *protocol.OllamaChatRequest) *protocol.ChatCompletionRequest {
	out := &protocol.ChatCompletionRequest{
		Model:  req.Model,
		Stream: req.Stream == nil || *req.Stream,
	}

	var messages []protocol.ChatMessage
	if req.System != "" {
		messages = append(messages, protocol.ChatMessage{
			Role:    "system",
			Content: protocol.TextContent(req.System),
		})
	}
	for _, msg := range req.Messages {
		role := msg.Role
		if role == "" {
			role = "user"
		}
		if len(msg.Images) > 0 {
			parts := []protocol.ChatContentPart{{Type: "text", Text: msg.Content}}
			for _, img := range msg.Images {
				parts = append(parts, protocol.ChatContentPart{
					Type:     "image_url",
					ImageURL: &protocol.ChatImageURL{URL: buildDataURL("image/png", img)},
				})
			}
			messages = append(messages, protocol.ChatMessage{Role: role, Content: protocol.PartsContent(parts)})
			continue
		}
		messages = append(messages, protocol.ChatMessage{Role: role, Content: protocol.TextContent(msg.Content)})
	}
	out.Messages = mergeOpenAIMessages(messages)

	applyOllamaOptions(out, req.Options)
	if string(req.Format) == `"json"` {
		out.ResponseFormat = &protocol.ChatResponseFormat{Type: "json_object"}
	}
	return out
}

// OllamaGenerateToOpenAI converts an Ollama /api/generate request into a
// Chat Completions request by folding system and prompt into messages.
func OllamaGenerateToOpenAI(req *protocol.OllamaGenerateRequest) *protocol.ChatCompletionRequest {
	out := &protocol.ChatCompletionRequest{
		Model:  req.Model,
		Stream: req.Stream == nil || *req.Stream,
	}

	var messages []protocol.ChatMessage
	if req.System != "" {
		messages = append(messages, protocol.ChatMessage{
			Role:    "system",
			Content: protocol.TextContent(req.System),
		})
	}
	if req.Prompt != "" || len(req.Images) == 0 {
		if len(req.Images) > 0 {
			parts := []protocol.ChatContentPart{{Type: "text", Text: req.Prompt}}
			for _, img := range req.Images {
				parts = append(parts, protocol.ChatContentPart{
					Type:     "image_url",
					ImageURL: &protocol.ChatImageURL{URL: buildDataURL("image/png", img)},
				})
			}
			messages = append(messages, protocol.ChatMessage{Role: "user", Content: protocol.PartsContent(parts)})
		} else {
			messages = append(messages, protocol.ChatMessage{Role: "user", Content: protocol.TextContent(req.Prompt)})
		}
	}
	out.Messages = messages

	applyOllamaOptions(out, req.Options)
	if string(req.Format) == `"json"` {
		out.ResponseFormat = &protocol.ChatResponseFormat{Type: "json_object"}
	}
	return out
}

func applyOllamaOptions(out *protocol.ChatCompletionRequest, opts *protocol.OllamaOptions) {
	if opts == nil {
		return
	}
	out.Temperature = opts.Temperature
	out.TopP = opts.TopP
	if opts.NumPredict != nil {
		out.MaxTokens = opts.NumPredict
	}
	out.Stop = marshalStop(opts.Stop)
}
