package adaptor

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/polygate-dev/polygate/internal/protocol"
)

var thinkingTagRe = regexp.MustCompile(`(?s)<thinking>(.*?)</thinking>`)

// splitThinkingTags separates inline <thinking>...</thinking> spans from the
// surrounding text. Some OpenAI-compatible upstreams inline reasoning this
// way instead of using reasoning_content.
func splitThinkingTags(text string) (thinking string, rest string) {
	matches := thinkingTagRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", text
	}
	var parts []string
	for _, m := range matches {
		parts = append(parts, m[1])
	}
	rest = strings.TrimSpace(thinkingTagRe.ReplaceAllString(text, ""))
	return strings.Join(parts, "\n"), rest
}

var dataURLRe = regexp.MustCompile(`^data:([^;,]+);base64,(.+)$`)

// parseDataURL splits a base64 data URL into media type and payload.
func parseDataURL(url string) (mediaType, data string, ok bool) {
	m := dataURLRe.FindStringSubmatch(url)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// buildDataURL assembles a base64 data URL.
func buildDataURL(mediaType, data string) string {
	return "data:" + mediaType + ";base64," + data
}

// stopSequences normalizes OpenAI's string-or-array stop field.
func stopSequences(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil
		}
		return []string{single}
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}

// marshalStop encodes stop sequences back into OpenAI's field.
func marshalStop(stops []string) json.RawMessage {
	if len(stops) == 0 {
		return nil
	}
	out, _ := json.Marshal(stops)
	return out
}

// openAIToolChoice decodes OpenAI's tool_choice union into a mode and an
// optional function name. Mode is one of "auto", "none", "required",
// "named" or "" when absent.
func openAIToolChoice(raw json.RawMessage) (mode, name string) {
	if len(raw) == 0 {
		return "", ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, ""
	}
	var obj struct {
		Type     string `json:"type"`
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Function.Name != "" {
		return "named", obj.Function.Name
	}
	return "", ""
}

// namedToolChoice builds the OpenAI {type:"function",function:{name}} form.
func namedToolChoice(name string) json.RawMessage {
	out, _ := json.Marshal(map[string]interface{}{
		"type":     "function",
		"function": map[string]interface{}{"name": name},
	})
	return out
}

// rawString wraps s as a JSON string literal.
func rawString(s string) json.RawMessage {
	out, _ := json.Marshal(s)
	return out
}

// validJSONObject returns args when it already is a JSON value, otherwise a
// best-effort wrapping so the target never receives malformed input.
func validJSONObject(args string) json.RawMessage {
	trimmed := strings.TrimSpace(args)
	if trimmed == "" {
		return json.RawMessage(`{}`)
	}
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	return rawString(args)
}

// mergeOpenAIMessages collapses adjacent same-role messages that carry only
// text content into a single newline-joined message.
func mergeOpenAIMessages(messages []protocol.ChatMessage) []protocol.ChatMessage {
	var merged []protocol.ChatMessage
	for _, msg := range messages {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Role == msg.Role &&
				last.Content.IsTextOnly() && msg.Content.IsTextOnly() &&
				len(last.ToolCalls) == 0 && len(msg.ToolCalls) == 0 &&
				last.ToolCallID == "" && msg.ToolCallID == "" &&
				last.ReasoningContent == "" && msg.ReasoningContent == "" {
				joined := last.Content.AsText()
				if text := msg.Content.AsText(); text != "" {
					if joined != "" {
						joined += "\n"
					}
					joined += text
				}
				last.Content = protocol.TextContent(joined)
				continue
			}
		}
		merged = append(merged, msg)
	}
	return merged
}

// mergeAnthropicMessages concatenates the block arrays of adjacent same-role
// messages and trims trailing whitespace from the final assistant text block
// (the Anthropic API rejects trailing whitespace there).
func mergeAnthropicMessages(messages []protocol.AnthropicMessage) []protocol.AnthropicMessage {
	var merged []protocol.AnthropicMessage
	for _, msg := range messages {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Role == msg.Role {
				blocks := append(last.Content.AsBlocks(), msg.Content.AsBlocks()...)
				last.Content = protocol.AnthropicBlocksContent(blocks)
				continue
			}
		}
		merged = append(merged, msg)
	}
	if len(merged) > 0 {
		last := &merged[len(merged)-1]
		if last.Role == "assistant" {
			blocks := last.Content.AsBlocks()
			for i := len(blocks) - 1; i >= 0; i-- {
				if blocks[i].Type == "text" {
					blocks[i].Text = strings.TrimRight(blocks[i].Text, " \t\n\r")
					break
				}
			}
			if blocks != nil {
				last.Content = protocol.AnthropicBlocksContent(blocks)
			}
		}
	}
	return merged
}

// reasoningEffortFromBudget maps an Anthropic thinking budget to OpenAI's
// reasoning_effort bands.
func reasoningEffortFromBudget(budget int) string {
	switch {
	case budget <= 50:
		return "low"
	case budget <= 200:
		return "medium"
	default:
		return "high"
	}
}

// budgetFromReasoningEffort is the inverse band mapping; the values are
// representatives, not a faithful inverse.
func budgetFromReasoningEffort(effort string) int {
	switch effort {
	case "low":
		return 1024
	case "medium":
		return 4096
	case "high":
		return 16384
	default:
		return 0
	}
}

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }
