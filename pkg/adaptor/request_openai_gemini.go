package adaptor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/polygate-dev/polygate/internal/protocol"
)

// OpenAIRequestToGemini converts a Chat Completions request into a Gemini
// generateContent request. The model only steers quirk handling; Gemini
// carries the model in the URL, not the body.
func OpenAIRequestToGemini(req *protocol.ChatCompletionRequest, model string) *protocol.GenerateContentRequest {
	out := &protocol.GenerateContentRequest{}

	var systemParts []string
	// tool_call_id -> function name, for functionResponse back-resolution.
	callNames := map[string]string{}

	for _, msg := range req.Messages {
		switch msg.Role {
		case "system", "developer":
			if text := msg.Content.AsText(); text != "" {
				systemParts = append(systemParts, text)
			}

		case "user":
			parts := openAIContentToGeminiParts(msg.Content)
			if len(parts) == 0 {
				continue
			}
			out.Contents = append(out.Contents, protocol.GeminiContent{Role: "user", Parts: parts})

		case "assistant":
			var parts []protocol.GeminiPart
			if text := msg.Content.AsText(); text != "" {
				parts = append(parts, protocol.GeminiPart{Text: text})
			}
			for _, tc := range msg.ToolCalls {
				callNames[tc.ID] = tc.Function.Name
				parts = append(parts, protocol.GeminiPart{
					FunctionCall: &protocol.GeminiFunctionCall{
						ID:   tc.ID,
						Name: tc.Function.Name,
						Args: validJSONObject(tc.Function.Arguments),
					},
				})
			}
			if len(parts) == 0 {
				continue
			}
			out.Contents = append(out.Contents, protocol.GeminiContent{Role: "model", Parts: parts})

		case "tool":
			name := callNames[msg.ToolCallID]
			content := msg.Content.AsText()
			// Gemini echoes the function name inside the response body.
			response, _ := json.Marshal(map[string]interface{}{
				"name":    name,
				"content": content,
			})
			out.Contents = append(out.Contents, protocol.GeminiContent{
				Role: "user",
				Parts: []protocol.GeminiPart{{
					FunctionResponse: &protocol.GeminiFunctionResponse{
						ID:       msg.ToolCallID,
						Name:     name,
						Response: response,
					},
				}},
			})
		}
	}

	if len(systemParts) > 0 {
		out.SystemInstruction = &protocol.GeminiContent{
			Parts: []protocol.GeminiPart{{Text: strings.Join(systemParts, "\n")}},
		}
	}

	if len(req.Tools) > 0 {
		var decls []protocol.GeminiFunctionDeclaration
		for _, tool := range req.Tools {
			decls = append(decls, protocol.GeminiFunctionDeclaration{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  CleanGeminiSchema(tool.Function.Parameters),
			})
		}
		out.Tools = []protocol.GeminiTool{{FunctionDeclarations: decls}}
	}

	switch mode, name := openAIToolChoice(req.ToolChoice); mode {
	case "auto":
		out.ToolConfig = geminiToolMode("AUTO", nil)
	case "none":
		out.ToolConfig = geminiToolMode("NONE", nil)
	case "required":
		out.ToolConfig = geminiToolMode("ANY", nil)
	case "named":
		out.ToolConfig = geminiToolMode("ANY", []string{name})
	}

	gc := &protocol.GeminiGenerationConfig{
		Temperature:   req.Temperature,
		TopP:          req.TopP,
		StopSequences: stopSequences(req.Stop),
	}
	switch {
	case req.MaxTokens != nil:
		gc.MaxOutputTokens = req.MaxTokens
	case req.MaxCompletionTokens != nil:
		gc.MaxOutputTokens = req.MaxCompletionTokens
	default:
		gc.MaxOutputTokens = intPtr(protocol.DefaultGeminiMaxOutputTokens)
	}

	if req.ResponseFormat != nil {
		switch req.ResponseFormat.Type {
		case "json_object":
			gc.ResponseMimeType = "application/json"
		case "json_schema":
			gc.ResponseMimeType = "application/json"
			if req.ResponseFormat.JSONSchema != nil {
				gc.ResponseSchema = CleanGeminiSchema(req.ResponseFormat.JSONSchema.Schema)
			}
		}
	}

	// Thinking-family models reject responseModalities together with tools.
	if geminiThinkingModel(model) && len(req.Tools) == 0 {
		gc.ResponseModalities = []string{"TEXT"}
	}
	out.GenerationConfig = gc

	return out
}

func geminiToolMode(mode string, allowed []string) *protocol.GeminiToolConfig {
	return &protocol.GeminiToolConfig{
		FunctionCallingConfig: &protocol.GeminiFunctionCallingConfig{
			Mode:                 mode,
			AllowedFunctionNames: allowed,
		},
	}
}

func geminiThinkingModel(model string) bool {
	return strings.Contains(model, "2.5") ||
		strings.Contains(model, "thinking") ||
		strings.Contains(model, "2.0-flash-thinking")
}

func openAIContentToGeminiParts(content protocol.MessageContent) []protocol.GeminiPart {
	var parts []protocol.GeminiPart
	if content.IsTextOnly() {
		if text := content.AsText(); text != "" {
			parts = append(parts, protocol.GeminiPart{Text: text})
		}
		return parts
	}
	for _, part := range content.Parts {
		switch part.Type {
		case "text":
			if part.Text != "" {
				parts = append(parts, protocol.GeminiPart{Text: part.Text})
			}
		case "image_url":
			if part.ImageURL == nil {
				continue
			}
			if mimeType, data, ok := parseDataURL(part.ImageURL.URL); ok {
				parts = append(parts, protocol.GeminiPart{
					InlineData: &protocol.GeminiBlob{MimeType: mimeType, Data: data},
				})
			} else {
				parts = append(parts, protocol.GeminiPart{
					FileData: &protocol.GeminiFileData{MimeType: "image/*", FileURI: part.ImageURL.URL},
				})
			}
		case "input_audio":
			parts = append(parts, protocol.GeminiPart{Text: "[Audio: input_audio]"})
		}
	}
	return parts
}

// GeminiRequestToOpenAI converts a Gemini generateContent request into a
// Chat Completions request. The model comes from the URL.
func GeminiRequestToOpenAI(req *protocol.GenerateContentRequest, model string) *protocol.ChatCompletionRequest {
	out := &protocol.ChatCompletionRequest{Model: model}

	var messages []protocol.ChatMessage
	if req.SystemInstruction != nil {
		var texts []string
		for _, p := range req.SystemInstruction.Parts {
			if p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
		if len(texts) > 0 {
			messages = append(messages, protocol.ChatMessage{
				Role:    "system",
				Content: protocol.TextContent(strings.Join(texts, "\n")),
			})
		}
	}

	// functionCall name -> synthesized tool_call_id, most recent wins.
	callIDs := map[string]string{}
	callSeq := 0

	for _, content := range req.Contents {
		role := content.Role
		if role == "model" {
			role = "assistant"
		}
		if role == "" {
			role = "user"
		}

		var parts []protocol.ChatContentPart
		var toolCalls []protocol.ChatToolCall
		var toolResults []protocol.ChatMessage

		for _, part := range content.Parts {
			switch {
			case part.FunctionCall != nil:
				id := part.FunctionCall.ID
				if id == "" {
					id = fmt.Sprintf("call_%d", callSeq)
					callSeq++
				}
				callIDs[part.FunctionCall.Name] = id
				args := string(part.FunctionCall.Args)
				if args == "" {
					args = "{}"
				}
				toolCalls = append(toolCalls, protocol.ChatToolCall{
					ID:   id,
					Type: "function",
					Function: protocol.ChatToolFunction{
						Name:      part.FunctionCall.Name,
						Arguments: args,
					},
				})
			case part.FunctionResponse != nil:
				id := part.FunctionResponse.ID
				if id == "" {
					id = callIDs[part.FunctionResponse.Name]
				}
				toolResults = append(toolResults, protocol.ChatMessage{
					Role:       "tool",
					ToolCallID: id,
					Content:    protocol.TextContent(geminiFunctionResponseText(part.FunctionResponse.Response)),
				})
			case part.InlineData != nil:
				parts = append(parts, protocol.ChatContentPart{
					Type:     "image_url",
					ImageURL: &protocol.ChatImageURL{URL: buildDataURL(part.InlineData.MimeType, part.InlineData.Data)},
				})
			case part.FileData != nil:
				parts = append(parts, protocol.ChatContentPart{
					Type:     "image_url",
					ImageURL: &protocol.ChatImageURL{URL: part.FileData.FileURI},
				})
			case part.Text != "":
				parts = append(parts, protocol.ChatContentPart{Type: "text", Text: part.Text})
			}
		}

		if len(parts) > 0 || len(toolCalls) > 0 {
			msg := protocol.ChatMessage{Role: role, ToolCalls: toolCalls}
			if len(parts) == 1 && parts[0].Type == "text" {
				msg.Content = protocol.TextContent(parts[0].Text)
			} else if len(parts) > 0 {
				msg.Content = protocol.PartsContent(parts)
			}
			messages = append(messages, msg)
		}
		messages = append(messages, toolResults...)
	}
	out.Messages = mergeOpenAIMessages(messages)

	for _, tool := range req.Tools {
		for _, decl := range tool.FunctionDeclarations {
			out.Tools = append(out.Tools, protocol.ChatTool{
				Type: "function",
				Function: protocol.ChatFunction{
					Name:        decl.Name,
					Description: decl.Description,
					Parameters:  decl.Parameters,
				},
			})
		}
	}

	if req.ToolConfig != nil && req.ToolConfig.FunctionCallingConfig != nil {
		fc := req.ToolConfig.FunctionCallingConfig
		switch fc.Mode {
		case "AUTO":
			out.ToolChoice = rawString("auto")
		case "NONE":
			out.ToolChoice = rawString("none")
		case "ANY":
			if len(fc.AllowedFunctionNames) == 1 {
				out.ToolChoice = namedToolChoice(fc.AllowedFunctionNames[0])
			} else {
				out.ToolChoice = rawString("required")
			}
		}
	}

	if gc := req.GenerationConfig; gc != nil {
		out.Temperature = gc.Temperature
		out.TopP = gc.TopP
		out.MaxTokens = gc.MaxOutputTokens
		out.Stop = marshalStop(gc.StopSequences)
		if gc.ResponseMimeType == "application/json" {
			if len(gc.ResponseSchema) > 0 {
				out.ResponseFormat = &protocol.ChatResponseFormat{
					Type:       "json_schema",
					JSONSchema: &protocol.ChatJSONSchema{Name: "response", Schema: gc.ResponseSchema},
				}
			} else {
				out.ResponseFormat = &protocol.ChatResponseFormat{Type: "json_object"}
			}
		}
	}

	return out
}

// geminiFunctionResponseText unwraps Gemini's {name, content} response
// envelope; unknown shapes pass through as raw JSON.
func geminiFunctionResponseText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var envelope struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Content) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Content, &s); err == nil {
			return s
		}
		return string(envelope.Content)
	}
	return string(raw)
}
