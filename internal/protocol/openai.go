package protocol

import (
	"bytes"
	"encoding/json"
)

// ChatCompletionRequest is the OpenAI Chat Completions request body.
type ChatCompletionRequest struct {
	Model               string              `json:"model"`
	Messages            []ChatMessage       `json:"messages"`
	Tools               []ChatTool          `json:"tools,omitempty"`
	ToolChoice          json.RawMessage     `json:"tool_choice,omitempty"`
	Temperature         *float64            `json:"temperature,omitempty"`
	TopP                *float64            `json:"top_p,omitempty"`
	MaxTokens           *int                `json:"max_tokens,omitempty"`
	MaxCompletionTokens *int                `json:"max_completion_tokens,omitempty"`
	Stop                json.RawMessage     `json:"stop,omitempty"`
	Stream              bool                `json:"stream,omitempty"`
	StreamOptions       *ChatStreamOptions  `json:"stream_options,omitempty"`
	ResponseFormat      *ChatResponseFormat `json:"response_format,omitempty"`
	ReasoningEffort     string              `json:"reasoning_effort,omitempty"`
	User                string              `json:"user,omitempty"`
}

// ChatStreamOptions controls streaming extras.
type ChatStreamOptions struct {
	IncludeUsage bool `json:"include_usage,omitempty"`
}

// ChatResponseFormat selects plain text, JSON mode, or a JSON schema.
type ChatResponseFormat struct {
	Type       string          `json:"type"`
	JSONSchema *ChatJSONSchema `json:"json_schema,omitempty"`
}

// ChatJSONSchema is the json_schema response format payload.
type ChatJSONSchema struct {
	Name   string          `json:"name,omitempty"`
	Strict bool            `json:"strict,omitempty"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

// ChatTool declares a callable function.
type ChatTool struct {
	Type     string       `json:"type"`
	Function ChatFunction `json:"function"`
}

// ChatFunction is the function half of a tool declaration.
type ChatFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ChatMessage is one turn in a Chat Completions conversation. Content may be
// a plain string or an array of typed parts on the wire; MessageContent
// hides the distinction.
type ChatMessage struct {
	Role             string         `json:"role"`
	Content          MessageContent `json:"content,omitempty"`
	ReasoningContent string         `json:"reasoning_content,omitempty"`
	Name             string         `json:"name,omitempty"`
	ToolCalls        []ChatToolCall `json:"tool_calls,omitempty"`
	ToolCallID       string         `json:"tool_call_id,omitempty"`
	Refusal          string         `json:"refusal,omitempty"`
}

// ChatToolCall is an assistant-emitted function invocation. Index is only
// present on streaming deltas.
type ChatToolCall struct {
	Index    *int             `json:"index,omitempty"`
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type,omitempty"`
	Function ChatToolFunction `json:"function"`
}

// ChatToolFunction carries the function name and JSON-encoded arguments.
// During streaming Arguments holds a raw partial fragment.
type ChatToolFunction struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ChatContentPart is one element of an array-valued message content.
type ChatContentPart struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	ImageURL   *ChatImageURL   `json:"image_url,omitempty"`
	InputAudio *ChatInputAudio `json:"input_audio,omitempty"`
}

// ChatImageURL holds an image reference; URL may be an https URL or a data URL.
type ChatImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// ChatInputAudio holds base64 audio input.
type ChatInputAudio struct {
	Data   string `json:"data"`
	Format string `json:"format,omitempty"`
}

// MessageContent is a string-or-parts union. A nil Parts slice with an empty
// Text marshals as an absent field; a string form round-trips as a string.
type MessageContent struct {
	Text     string
	Parts    []ChatContentPart
	isString bool
}

// TextContent builds a plain-string content.
func TextContent(s string) MessageContent {
	return MessageContent{Text: s, isString: true}
}

// PartsContent builds an array-of-parts content.
func PartsContent(parts []ChatContentPart) MessageContent {
	return MessageContent{Parts: parts}
}

// IsZero reports whether the content is absent entirely.
func (m MessageContent) IsZero() bool {
	return !m.isString && m.Parts == nil
}

// AsText flattens the content to plain text, joining text parts with "\n".
func (m MessageContent) AsText() string {
	if m.isString {
		return m.Text
	}
	var buf bytes.Buffer
	for _, p := range m.Parts {
		if p.Type == "text" && p.Text != "" {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(p.Text)
		}
	}
	return buf.String()
}

// IsTextOnly reports whether the content contains no non-text parts.
func (m MessageContent) IsTextOnly() bool {
	if m.isString {
		return true
	}
	for _, p := range m.Parts {
		if p.Type != "text" {
			return false
		}
	}
	return true
}

// MarshalJSON emits the original wire form: string or array of parts.
func (m MessageContent) MarshalJSON() ([]byte, error) {
	if m.isString {
		return json.Marshal(m.Text)
	}
	if m.Parts == nil {
		return []byte("null"), nil
	}
	return json.Marshal(m.Parts)
}

// UnmarshalJSON accepts either a JSON string or an array of parts.
func (m *MessageContent) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*m = MessageContent{}
		return nil
	}
	if trimmed[0] == '"' {
		m.isString = true
		m.Parts = nil
		return json.Unmarshal(trimmed, &m.Text)
	}
	m.isString = false
	m.Text = ""
	return json.Unmarshal(trimmed, &m.Parts)
}

// ChatCompletionResponse is the non-streaming Chat Completions response.
type ChatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   *ChatUsage   `json:"usage,omitempty"`
}

// ChatChoice is one completion candidate.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatUsage is OpenAI's token accounting block.
type ChatUsage struct {
	PromptTokens            int                      `json:"prompt_tokens"`
	CompletionTokens        int                      `json:"completion_tokens"`
	TotalTokens             int                      `json:"total_tokens"`
	PromptTokensDetails     *PromptTokensDetails     `json:"prompt_tokens_details,omitempty"`
	CompletionTokensDetails *CompletionTokensDetails `json:"completion_tokens_details,omitempty"`
}

// PromptTokensDetails breaks out cached prompt tokens.
type PromptTokensDetails struct {
	CachedTokens int `json:"cached_tokens"`
}

// CompletionTokensDetails breaks out reasoning tokens.
type CompletionTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

// ChatCompletionChunk is one streaming SSE payload.
type ChatCompletionChunk struct {
	ID      string            `json:"id"`
	Object  string            `json:"object"`
	Created int64             `json:"created"`
	Model   string            `json:"model"`
	Choices []ChatChunkChoice `json:"choices"`
	Usage   *ChatUsage        `json:"usage,omitempty"`
}

// ChatChunkChoice is the delta holder of a streaming chunk.
type ChatChunkChoice struct {
	Index        int       `json:"index"`
	Delta        ChatDelta `json:"delta"`
	FinishReason string    `json:"finish_reason,omitempty"`
}

// ChatDelta carries the incremental fields of a streaming chunk.
type ChatDelta struct {
	Role             string         `json:"role,omitempty"`
	Content          string         `json:"content,omitempty"`
	ReasoningContent string         `json:"reasoning_content,omitempty"`
	Refusal          string         `json:"refusal,omitempty"`
	ToolCalls        []ChatToolCall `json:"tool_calls,omitempty"`
}

// ChatModelList is the GET /v1/models response.
type ChatModelList struct {
	Object string      `json:"object"`
	Data   []ChatModel `json:"data"`
}

// ChatModel is one /v1/models entry.
type ChatModel struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}
