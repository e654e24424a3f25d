package adaptor

import (
	"encoding/json"
	"strings"

	"github.com/polygate-dev/polygate/internal/protocol"
)

// OpenAIRequestToAnthropic converts a Chat Completions request into an
// Anthropic Messages request.
func OpenAIRequestToAnthropic(req *protocol.ChatCompletionRequest) *protocol.MessagesRequest {
	out := &protocol.MessagesRequest{
		Model:  req.Model,
		Stream: req.Stream,
	}

	var systemParts []string
	var messages []protocol.AnthropicMessage

	for _, msg := range req.Messages {
		switch msg.Role {
		case "system", "developer":
			if text := msg.Content.AsText(); text != "" {
				systemParts = append(systemParts, text)
			}

		case "user":
			blocks := openAIContentToAnthropicBlocks(msg.Content)
			if len(blocks) == 0 {
				continue
			}
			messages = append(messages, protocol.AnthropicMessage{
				Role:    "user",
				Content: protocol.AnthropicBlocksContent(blocks),
			})

		case "assistant":
			var blocks []protocol.AnthropicBlock
			if msg.ReasoningContent != "" {
				blocks = append(blocks, protocol.AnthropicBlock{Type: "thinking", Thinking: msg.ReasoningContent})
			}
			if text := msg.Content.AsText(); text != "" {
				thinking, rest := splitThinkingTags(text)
				if thinking != "" {
					blocks = append(blocks, protocol.AnthropicBlock{Type: "thinking", Thinking: thinking})
				}
				if rest != "" {
					blocks = append(blocks, protocol.AnthropicBlock{Type: "text", Text: rest})
				}
			}
			for _, tc := range msg.ToolCalls {
				blocks = append(blocks, protocol.AnthropicBlock{
					Type:  "tool_use",
					ID:    tc.ID,
					Name:  tc.Function.Name,
					Input: validJSONObject(tc.Function.Arguments),
				})
			}
			if len(blocks) == 0 {
				continue
			}
			messages = append(messages, protocol.AnthropicMessage{
				Role:    "assistant",
				Content: protocol.AnthropicBlocksContent(blocks),
			})

		case "tool":
			// Tool results ride on a user turn in the Anthropic dialect.
			messages = append(messages, protocol.AnthropicMessage{
				Role: "user",
				Content: protocol.AnthropicBlocksContent([]protocol.AnthropicBlock{{
					Type:      "tool_result",
					ToolUseID: msg.ToolCallID,
					Content:   rawString(msg.Content.AsText()),
				}}),
			})
		}
	}

	if len(systemParts) > 0 {
		out.System = protocol.SystemText(strings.Join(systemParts, "\n"))
	}
	out.Messages = mergeAnthropicMessages(messages)

	for _, tool := range req.Tools {
		if tool.Type != "" && tool.Type != "function" {
			continue
		}
		out.Tools = append(out.Tools, protocol.AnthropicTool{
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
			InputSchema: tool.Function.Parameters,
		})
	}

	switch mode, name := openAIToolChoice(req.ToolChoice); mode {
	case "auto":
		out.ToolChoice = &protocol.AnthropicToolChoice{Type: "auto"}
	case "none":
		out.ToolChoice = &protocol.AnthropicToolChoice{Type: "none"}
	case "required":
		out.ToolChoice = &protocol.AnthropicToolChoice{Type: "any"}
	case "named":
		out.ToolChoice = &protocol.AnthropicToolChoice{Type: "tool", Name: name}
	}

	// Anthropic requires max_tokens.
	switch {
	case req.MaxTokens != nil:
		out.MaxTokens = *req.MaxTokens
	case req.MaxCompletionTokens != nil:
		out.MaxTokens = *req.MaxCompletionTokens
	default:
		out.MaxTokens = protocol.DefaultMaxOutputTokens
	}
	out.Temperature = req.Temperature
	out.TopP = req.TopP
	out.StopSequences = stopSequences(req.Stop)

	if req.ReasoningEffort != "" {
		if budget := budgetFromReasoningEffort(req.ReasoningEffort); budget > 0 {
			out.Thinking = &protocol.AnthropicThinking{Type: "enabled", BudgetTokens: budget}
		}
	}

	return out
}

// openAIContentToAnthropicBlocks maps user content parts to Anthropic blocks.
func openAIContentToAnthropicBlocks(content protocol.MessageContent) []protocol.AnthropicBlock {
	var blocks []protocol.AnthropicBlock
	if content.IsTextOnly() {
		if text := content.AsText(); text != "" {
			blocks = append(blocks, protocol.AnthropicBlock{Type: "text", Text: text})
		}
		return blocks
	}
	for _, part := range content.Parts {
		switch part.Type {
		case "text":
			if part.Text != "" {
				blocks = append(blocks, protocol.AnthropicBlock{Type: "text", Text: part.Text})
			}
		case "image_url":
			if part.ImageURL == nil {
				continue
			}
			if mediaType, data, ok := parseDataURL(part.ImageURL.URL); ok {
				blocks = append(blocks, protocol.AnthropicBlock{
					Type: "image",
					Source: &protocol.AnthropicImageSource{
						Type:      "base64",
						MediaType: mediaType,
						Data:      data,
					},
				})
			} else {
				// Anthropic rejects remote URL images on this path.
				blocks = append(blocks, protocol.AnthropicBlock{Type: "text", Text: "[Image: " + part.ImageURL.URL + "]"})
			}
		case "input_audio":
			uri := ""
			if part.InputAudio != nil {
				uri = part.InputAudio.Format
			}
			blocks = append(blocks, protocol.AnthropicBlock{Type: "text", Text: "[Audio: " + uri + "]"})
		}
	}
	return blocks
}

// AnthropicRequestToOpenAI converts an Anthropic Messages request into a
// Chat Completions request.
func AnthropicRequestToOpenAI(req *protocol.MessagesRequest) *protocol.ChatCompletionRequest {
	out := &protocol.ChatCompletionRequest{
		Model:  req.Model,
		Stream: req.Stream,
	}

	var messages []protocol.ChatMessage
	if system := req.System.AsText(); system != "" {
		messages = append(messages, protocol.ChatMessage{
			Role:    "system",
			Content: protocol.TextContent(system),
		})
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case "user":
			messages = append(messages, anthropicUserToOpenAI(msg)...)
		case "assistant":
			messages = append(messages, anthropicAssistantToOpenAI(msg))
		}
	}
	out.Messages = mergeOpenAIMessages(messages)

	for _, tool := range req.Tools {
		out.Tools = append(out.Tools, protocol.ChatTool{
			Type: "function",
			Function: protocol.ChatFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.InputSchema,
			},
		})
	}

	if req.ToolChoice != nil {
		switch req.ToolChoice.Type {
		case "auto":
			out.ToolChoice = rawString("auto")
		case "none":
			out.ToolChoice = rawString("none")
		case "any":
			out.ToolChoice = rawString("required")
		case "tool":
			out.ToolChoice = namedToolChoice(req.ToolChoice.Name)
		}
	}

	if req.MaxTokens > 0 {
		out.MaxTokens = intPtr(req.MaxTokens)
	}
	out.Temperature = req.Temperature
	out.TopP = req.TopP
	out.Stop = marshalStop(req.StopSequences)

	if req.Thinking != nil && req.Thinking.Type == "enabled" {
		out.ReasoningEffort = reasoningEffortFromBudget(req.Thinking.BudgetTokens)
	}

	return out
}

// anthropicUserToOpenAI splits a user turn into tool messages (for
// tool_result blocks) followed by a user message for the rest.
func anthropicUserToOpenAI(msg protocol.AnthropicMessage) []protocol.ChatMessage {
	var result []protocol.ChatMessage
	var parts []protocol.ChatContentPart

	for _, block := range msg.Content.AsBlocks() {
		switch block.Type {
		case "tool_result":
			result = append(result, protocol.ChatMessage{
				Role:       "tool",
				ToolCallID: block.ToolUseID,
				Content:    protocol.TextContent(anthropicToolResultText(block.Content)),
			})
		case "text":
			if block.Text != "" {
				parts = append(parts, protocol.ChatContentPart{Type: "text", Text: block.Text})
			}
		case "image":
			if block.Source == nil {
				continue
			}
			url := block.Source.URL
			if block.Source.Type == "base64" {
				url = buildDataURL(block.Source.MediaType, block.Source.Data)
			}
			parts = append(parts, protocol.ChatContentPart{
				Type:     "image_url",
				ImageURL: &protocol.ChatImageURL{URL: url},
			})
		}
	}

	if len(parts) > 0 {
		content := protocol.PartsContent(parts)
		if len(parts) == 1 && parts[0].Type == "text" {
			content = protocol.TextContent(parts[0].Text)
		}
		result = append(result, protocol.ChatMessage{Role: "user", Content: content})
	}
	return result
}

func anthropicAssistantToOpenAI(msg protocol.AnthropicMessage) protocol.ChatMessage {
	out := protocol.ChatMessage{Role: "assistant"}
	var texts []string

	for _, block := range msg.Content.AsBlocks() {
		switch block.Type {
		case "text":
			if block.Text != "" {
				texts = append(texts, block.Text)
			}
		case "thinking":
			if block.Thinking != "" {
				out.ReasoningContent += block.Thinking
			}
		case "tool_use":
			out.ToolCalls = append(out.ToolCalls, protocol.ChatToolCall{
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
		out.Content = protocol.TextContent(strings.Join(texts, "\n"))
	}
	return out
}

// anthropicToolResultText flattens a tool_result content value (string,
// block array, or arbitrary JSON) into text for OpenAI's tool message.
func anthropicToolResultText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []protocol.AnthropicBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		var texts []string
		for _, b := range blocks {
			if b.Type == "text" && b.Text != "" {
				texts = append(texts, b.Text)
			}
		}
		if len(texts) > 0 {
			return strings.Join(texts, "\n")
		}
	}
	return string(raw)
}
