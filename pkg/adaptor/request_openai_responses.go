package adaptor

import (
	"encoding/json"
	"strings"

	"github.com/polygate-dev/polygate/internal/protocol"
)

// OpenAIRequestToResponses converts a Chat Completions request into a
// Responses API request.
func OpenAIRequestToResponses(req *protocol.ChatCompletionRequest) *protocol.ResponsesRequest {
	out := &protocol.ResponsesRequest{
		Model:  req.Model,
		Stream: req.Stream,
	}

	var systemParts []string
	var items []protocol.ResponsesItem

	for _, msg := range req.Messages {
		switch msg.Role {
		case "system", "developer":
			if text := msg.Content.AsText(); text != "" {
				systemParts = append(systemParts, text)
			}

		case "user":
			parts := openAIContentToResponsesParts(msg.Content, "input")
			if len(parts) == 0 {
				continue
			}
			items = append(items, protocol.ResponsesItem{
				Type:    "message",
				Role:    "user",
				Content: protocol.ResponsesContentParts(parts),
			})

		case "assistant":
			if text := msg.Content.AsText(); text != "" {
				items = append(items, protocol.ResponsesItem{
					Type: "message",
					Role: "assistant",
					Content: protocol.ResponsesContentParts([]protocol.ResponsesContentPart{
						{Type: "output_text", Text: text},
					}),
				})
			}
			for _, tc := range msg.ToolCalls {
				items = append(items, protocol.ResponsesItem{
					Type:      "function_call",
					CallID:    tc.ID,
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				})
			}

		case "tool":
			items = append(items, protocol.ResponsesItem{
				Type:   "function_call_output",
				CallID: msg.ToolCallID,
				Output: msg.Content.AsText(),
			})
		}
	}

	out.Instructions = strings.Join(systemParts, "\n")
	out.Input = protocol.ResponsesInputItems(items)

	for _, tool := range req.Tools {
		out.Tools = append(out.Tools, protocol.ResponsesTool{
			Type:        "function",
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
			Parameters:  tool.Function.Parameters,
		})
	}

	switch mode, name := openAIToolChoice(req.ToolChoice); mode {
	case "auto", "none", "required":
		out.ToolChoice = rawString(mode)
	case "named":
		// Responses uses a flattened named tool choice.
		raw, _ := json.Marshal(map[string]string{"type": "function", "name": name})
		out.ToolChoice = raw
	}

	out.Temperature = req.Temperature
	out.TopP = req.TopP
	switch {
	case req.MaxTokens != nil:
		out.MaxOutputTokens = req.MaxTokens
	case req.MaxCompletionTokens != nil:
		out.MaxOutputTokens = req.MaxCompletionTokens
	}
	if req.ReasoningEffort != "" {
		out.Reasoning = &protocol.ResponsesReasoning{Effort: req.ReasoningEffort}
	}
	if req.ResponseFormat != nil {
		format := &protocol.ResponsesTextFormat{Type: req.ResponseFormat.Type}
		if req.ResponseFormat.JSONSchema != nil {
			format.Name = req.ResponseFormat.JSONSchema.Name
			format.Schema = req.ResponseFormat.JSONSchema.Schema
		}
		out.Text = &protocol.ResponsesText{Format: format}
	}

	return out
}

func openAIContentToResponsesParts(content protocol.MessageContent, direction string) []protocol.ResponsesContentPart {
	textType := "input_text"
	if direction == "output" {
		textType = "output_text"
	}
	var parts []protocol.ResponsesContentPart
	if content.IsTextOnly() {
		if text := content.AsText(); text != "" {
			parts = append(parts, protocol.ResponsesContentPart{Type: textType, Text: text})
		}
		return parts
	}
	for _, part := range content.Parts {
		switch part.Type {
		case "text":
			if part.Text != "" {
				parts = append(parts, protocol.ResponsesContentPart{Type: textType, Text: part.Text})
			}
		case "image_url":
			if part.ImageURL != nil {
				parts = append(parts, protocol.ResponsesContentPart{Type: "input_image", ImageURL: part.ImageURL.URL})
			}
		case "input_audio":
			parts = append(parts, protocol.ResponsesContentPart{Type: textType, Text: "[Audio: input_audio]"})
		}
	}
	return parts
}

// ResponsesRequestToOpenAI converts a Responses API request into a Chat
// Completions request.
func ResponsesRequestToOpenAI(req *protocol.ResponsesRequest) *protocol.ChatCompletionRequest {
	out := &protocol.ChatCompletionRequest{
		Model:  req.Model,
		Stream: req.Stream,
	}

	var messages []protocol.ChatMessage
	if req.Instructions != "" {
		messages = append(messages, protocol.ChatMessage{
			Role:    "system",
			Content: protocol.TextContent(req.Instructions),
		})
	}

	for _, item := range req.Input.AsItems() {
		switch item.Type {
		case "message", "":
			role := item.Role
			if role == "" {
				role = "user"
			}
			msg := protocol.ChatMessage{Role: role}
			if item.Content.IsZero() {
				continue
			}
			var parts []protocol.ChatContentPart
			textOnly := true
			for _, p := range item.Content.Parts {
				switch p.Type {
				case "input_text", "output_text", "text":
					parts = append(parts, protocol.ChatContentPart{Type: "text", Text: p.Text})
				case "input_image":
					parts = append(parts, protocol.ChatContentPart{
						Type:     "image_url",
						ImageURL: &protocol.ChatImageURL{URL: p.ImageURL},
					})
					textOnly = false
				}
			}
			if parts == nil {
				msg.Content = protocol.TextContent(item.Content.AsText())
			} else if textOnly {
				msg.Content = protocol.TextContent(item.Content.AsText())
			} else {
				msg.Content = protocol.PartsContent(parts)
			}
			messages = append(messages, msg)

		case "function_call":
			messages = append(messages, protocol.ChatMessage{
				Role: "assistant",
				ToolCalls: []protocol.ChatToolCall{{
					ID:   item.CallID,
					Type: "function",
					Function: protocol.ChatToolFunction{
						Name:      item.Name,
						Arguments: item.Arguments,
					},
				}},
			})

		case "function_call_output":
			messages = append(messages, protocol.ChatMessage{
				Role:       "tool",
				ToolCallID: item.CallID,
				Content:    protocol.TextContent(item.Output),
			})
		}
	}
	out.Messages = mergeOpenAIMessages(messages)

	for _, tool := range req.Tools {
		if tool.Type != "function" {
			continue
		}
		out.Tools = append(out.Tools, protocol.ChatTool{
			Type: "function",
			Function: protocol.ChatFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	if len(req.ToolChoice) > 0 {
		var s string
		if err := json.Unmarshal(req.ToolChoice, &s); err == nil {
			out.ToolChoice = rawString(s)
		} else {
			var named struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(req.ToolChoice, &named); err == nil && named.Name != "" {
				out.ToolChoice = namedToolChoice(named.Name)
			}
		}
	}

	out.Temperature = req.Temperature
	out.TopP = req.TopP
	out.MaxTokens = req.MaxOutputTokens
	if req.Reasoning != nil {
		out.ReasoningEffort = req.Reasoning.Effort
	}
	if req.Text != nil && req.Text.Format != nil {
		rf := &protocol.ChatResponseFormat{Type: req.Text.Format.Type}
		if req.Text.Format.Type == "json_schema" {
			rf.JSONSchema = &protocol.ChatJSONSchema{
				Name:   req.Text.Format.Name,
				Schema: req.Text.Format.Schema,
			}
		}
		out.ResponseFormat = rf
	}

	return out
}
