package protocol

import (
	"bytes"
	"encoding/json"
)

// MessagesRequest is the Anthropic Messages API request body.
type MessagesRequest struct {
	Model         string               `json:"model"`
	System        AnthropicSystem      `json:"system,omitempty"`
	Messages      []AnthropicMessage   `json:"messages"`
	Tools         []AnthropicTool      `json:"tools,omitempty"`
	ToolChoice    *AnthropicToolChoice `json:"tool_choice,omitempty"`
	MaxTokens     int                  `json:"max_tokens"`
	Temperature   *float64             `json:"temperature,omitempty"`
	TopP          *float64             `json:"top_p,omitempty"`
	TopK          *int                 `json:"top_k,omitempty"`
	StopSequences []string             `json:"stop_sequences,omitempty"`
	Stream        bool                 `json:"stream,omitempty"`
	Thinking      *AnthropicThinking   `json:"thinking,omitempty"`
	Metadata      json.RawMessage      `json:"metadata,omitempty"`
}

// AnthropicThinking enables extended thinking with a token budget.
type AnthropicThinking struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens,omitempty"`
}

// AnthropicTool declares a callable tool.
type AnthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// AnthropicToolChoice selects the tool-use policy.
type AnthropicToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// AnthropicSystem is a string-or-blocks union for the top-level system field.
type AnthropicSystem struct {
	Text     string
	Blocks   []AnthropicBlock
	isString bool
}

// SystemText builds a plain-string system prompt.
func SystemText(s string) AnthropicSystem {
	return AnthropicSystem{Text: s, isString: true}
}

// IsZero reports whether the system field is absent.
func (s AnthropicSystem) IsZero() bool {
	return !s.isString && s.Blocks == nil
}

// AsText flattens the system field to plain text.
func (s AnthropicSystem) AsText() string {
	if s.isString {
		return s.Text
	}
	var buf bytes.Buffer
	for _, b := range s.Blocks {
		if b.Type == "text" && b.Text != "" {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(b.Text)
		}
	}
	return buf.String()
}

// MarshalJSON emits a string or an array of text blocks, matching the input form.
func (s AnthropicSystem) MarshalJSON() ([]byte, error) {
	if s.isString {
		return json.Marshal(s.Text)
	}
	if s.Blocks == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.Blocks)
}

// UnmarshalJSON accepts a string or an array of blocks.
func (s *AnthropicSystem) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = AnthropicSystem{}
		return nil
	}
	if trimmed[0] == '"' {
		s.isString = true
		s.Blocks = nil
		return json.Unmarshal(trimmed, &s.Text)
	}
	s.isString = false
	s.Text = ""
	return json.Unmarshal(trimmed, &s.Blocks)
}

// AnthropicMessage is one conversation turn.
type AnthropicMessage struct {
	Role    string           `json:"role"`
	Content AnthropicContent `json:"content"`
}

// AnthropicContent is a string-or-blocks union for message content.
type AnthropicContent struct {
	Text     string
	Blocks   []AnthropicBlock
	isString bool
}

// AnthropicTextContent builds a plain-string content.
func AnthropicTextContent(s string) AnthropicContent {
	return AnthropicContent{Text: s, isString: true}
}

// AnthropicBlocksContent builds a block-array content.
func AnthropicBlocksContent(blocks []AnthropicBlock) AnthropicContent {
	return AnthropicContent{Blocks: blocks}
}

// AsBlocks normalizes the content to block form.
func (c AnthropicContent) AsBlocks() []AnthropicBlock {
	if c.isString {
		if c.Text == "" {
			return nil
		}
		return []AnthropicBlock{{Type: "text", Text: c.Text}}
	}
	return c.Blocks
}

// AsText flattens text blocks, joining with "\n".
func (c AnthropicContent) AsText() string {
	if c.isString {
		return c.Text
	}
	var buf bytes.Buffer
	for _, b := range c.Blocks {
		if b.Type == "text" && b.Text != "" {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(b.Text)
		}
	}
	return buf.String()
}

// MarshalJSON preserves the original wire form.
func (c AnthropicContent) MarshalJSON() ([]byte, error) {
	if c.isString {
		return json.Marshal(c.Text)
	}
	if c.Blocks == nil {
		return []byte(`[]`), nil
	}
	return json.Marshal(c.Blocks)
}

// UnmarshalJSON accepts a string or an array of blocks.
func (c *AnthropicContent) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = AnthropicContent{}
		return nil
	}
	if trimmed[0] == '"' {
		c.isString = true
		c.Blocks = nil
		return json.Unmarshal(trimmed, &c.Text)
	}
	c.isString = false
	c.Text = ""
	return json.Unmarshal(trimmed, &c.Blocks)
}

// AnthropicBlock is one typed content block: text, image, tool_use,
// tool_result or thinking.
type AnthropicBlock struct {
	Type string `json:"type"`

	// text / thinking
	Text     string `json:"text,omitempty"`
	Thinking string `json:"thinking,omitempty"`

	// image
	Source *AnthropicImageSource `json:"source,omitempty"`

	// tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// AnthropicImageSource carries base64 image bytes.
type AnthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

// MessagesResponse is the non-streaming Messages API response.
type MessagesResponse struct {
	ID           string           `json:"id"`
	Type         string           `json:"type"`
	Role         string           `json:"role"`
	Model        string           `json:"model"`
	Content      []AnthropicBlock `json:"content"`
	StopReason   string           `json:"stop_reason,omitempty"`
	StopSequence *string          `json:"stop_sequence"`
	Usage        AnthropicUsage   `json:"usage"`
}

// AnthropicUsage is Anthropic's token accounting block.
type AnthropicUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens,omitempty"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens,omitempty"`
}

// AnthropicStreamEvent is one parsed SSE event from a Messages stream.
type AnthropicStreamEvent struct {
	Type         string                `json:"type"`
	Message      *MessagesResponse     `json:"message,omitempty"`
	Index        int                   `json:"index,omitempty"`
	ContentBlock *AnthropicBlock       `json:"content_block,omitempty"`
	Delta        *AnthropicStreamDelta `json:"delta,omitempty"`
	Usage        *AnthropicUsage       `json:"usage,omitempty"`
	Error        *AnthropicErrorBody   `json:"error,omitempty"`
}

// AnthropicStreamDelta is the delta payload of content_block_delta and
// message_delta events.
type AnthropicStreamDelta struct {
	Type         string  `json:"type,omitempty"`
	Text         string  `json:"text,omitempty"`
	PartialJSON  string  `json:"partial_json,omitempty"`
	Thinking     string  `json:"thinking,omitempty"`
	StopReason   string  `json:"stop_reason,omitempty"`
	StopSequence *string `json:"stop_sequence,omitempty"`
}

// AnthropicErrorBody is the error object in Anthropic's error envelope.
type AnthropicErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AnthropicModelList is the GET /v1/models response of the Anthropic API.
type AnthropicModelList struct {
	Data    []AnthropicModel `json:"data"`
	HasMore bool             `json:"has_more"`
	FirstID *string          `json:"first_id"`
	LastID  *string          `json:"last_id"`
}

// AnthropicModel is one Anthropic model-list entry.
type AnthropicModel struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}
