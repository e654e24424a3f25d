package protocol

import (
	"bytes"
	"encoding/json"
)

// ResponsesRequest is the OpenAI Responses API request body.
type ResponsesRequest struct {
	Model           string              `json:"model"`
	Input           ResponsesInput      `json:"input,omitempty"`
	Instructions    string              `json:"instructions,omitempty"`
	Tools           []ResponsesTool     `json:"tools,omitempty"`
	ToolChoice      json.RawMessage     `json:"tool_choice,omitempty"`
	Temperature     *float64            `json:"temperature,omitempty"`
	TopP            *float64            `json:"top_p,omitempty"`
	MaxOutputTokens *int                `json:"max_output_tokens,omitempty"`
	Stream          bool                `json:"stream,omitempty"`
	Store           *bool               `json:"store,omitempty"`
	Reasoning       *ResponsesReasoning `json:"reasoning,omitempty"`
	Text            *ResponsesText      `json:"text,omitempty"`
}

// ResponsesReasoning configures reasoning effort and summaries.
type ResponsesReasoning struct {
	Effort  string `json:"effort,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// ResponsesText selects the output text format.
type ResponsesText struct {
	Format *ResponsesTextFormat `json:"format,omitempty"`
}

// ResponsesTextFormat is text / json_object / json_schema.
type ResponsesTextFormat struct {
	Type   string          `json:"type"`
	Name   string          `json:"name,omitempty"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

// ResponsesTool is a flattened function tool declaration (no nested
// "function" object, unlike Chat Completions).
type ResponsesTool struct {
	Type        string          `json:"type"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ResponsesInput is a string-or-items union for the input field.
type ResponsesInput struct {
	Text     string
	Items    []ResponsesItem
	isString bool
}

// ResponsesInputText builds a plain-string input.
func ResponsesInputText(s string) ResponsesInput {
	return ResponsesInput{Text: s, isString: true}
}

// ResponsesInputItems builds an item-list input.
func ResponsesInputItems(items []ResponsesItem) ResponsesInput {
	return ResponsesInput{Items: items}
}

// IsZero reports whether the input is absent.
func (in ResponsesInput) IsZero() bool {
	return !in.isString && in.Items == nil
}

// AsItems normalizes a string input into a single user message item.
func (in ResponsesInput) AsItems() []ResponsesItem {
	if in.isString {
		if in.Text == "" {
			return nil
		}
		return []ResponsesItem{{
			Type:    "message",
			Role:    "user",
			Content: ResponsesContentText(in.Text),
		}}
	}
	return in.Items
}

// MarshalJSON preserves the original wire form.
func (in ResponsesInput) MarshalJSON() ([]byte, error) {
	if in.isString {
		return json.Marshal(in.Text)
	}
	if in.Items == nil {
		return []byte("null"), nil
	}
	return json.Marshal(in.Items)
}

// UnmarshalJSON accepts a string or an array of items.
func (in *ResponsesInput) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*in = ResponsesInput{}
		return nil
	}
	if trimmed[0] == '"' {
		in.isString = true
		in.Items = nil
		return json.Unmarshal(trimmed, &in.Text)
	}
	in.isString = false
	in.Text = ""
	return json.Unmarshal(trimmed, &in.Items)
}

// ResponsesItem is one input or output item: message, function_call,
// function_call_output or reasoning.
type ResponsesItem struct {
	Type    string           `json:"type,omitempty"`
	ID      string           `json:"id,omitempty"`
	Status  string           `json:"status,omitempty"`
	Role    string           `json:"role,omitempty"`
	Content ResponsesContent `json:"content,omitempty"`

	// function_call / function_call_output
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Output    string `json:"output,omitempty"`

	// reasoning
	Summary []ResponsesSummaryPart `json:"summary,omitempty"`
}

// ResponsesSummaryPart is one reasoning summary segment.
type ResponsesSummaryPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ResponsesContent is a string-or-parts union for item content.
type ResponsesContent struct {
	Text     string
	Parts    []ResponsesContentPart
	isString bool
}

// ResponsesContentText builds a plain-string content.
func ResponsesContentText(s string) ResponsesContent {
	return ResponsesContent{Text: s, isString: true}
}

// ResponsesContentParts builds a parts content.
func ResponsesContentParts(parts []ResponsesContentPart) ResponsesContent {
	return ResponsesContent{Parts: parts}
}

// IsZero reports whether the content is absent.
func (c ResponsesContent) IsZero() bool {
	return !c.isString && c.Parts == nil
}

// AsText flattens text parts, joining with "\n".
func (c ResponsesContent) AsText() string {
	if c.isString {
		return c.Text
	}
	var buf bytes.Buffer
	for _, p := range c.Parts {
		switch p.Type {
		case "input_text", "output_text", "text":
			if p.Text != "" {
				if buf.Len() > 0 {
					buf.WriteByte('\n')
				}
				buf.WriteString(p.Text)
			}
		}
	}
	return buf.String()
}

// MarshalJSON preserves the original wire form.
func (c ResponsesContent) MarshalJSON() ([]byte, error) {
	if c.isString {
		return json.Marshal(c.Text)
	}
	if c.Parts == nil {
		return []byte("null"), nil
	}
	return json.Marshal(c.Parts)
}

// UnmarshalJSON accepts a string or an array of parts.
func (c *ResponsesContent) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = ResponsesContent{}
		return nil
	}
	if trimmed[0] == '"' {
		c.isString = true
		c.Parts = nil
		return json.Unmarshal(trimmed, &c.Text)
	}
	c.isString = false
	c.Text = ""
	return json.Unmarshal(trimmed, &c.Parts)
}

// ResponsesContentPart is one typed content part of a Responses item.
type ResponsesContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// ResponsesResponse is the non-streaming Responses API response.
type ResponsesResponse struct {
	ID        string          `json:"id"`
	Object    string          `json:"object"`
	CreatedAt int64           `json:"created_at"`
	Status    string          `json:"status"`
	Model     string          `json:"model"`
	Output    []ResponsesItem `json:"output"`
	Usage     *ResponsesUsage `json:"usage,omitempty"`
}

// ResponsesUsage is the Responses API token accounting block.
type ResponsesUsage struct {
	InputTokens         int                       `json:"input_tokens"`
	OutputTokens        int                       `json:"output_tokens"`
	TotalTokens         int                       `json:"total_tokens"`
	InputTokensDetails  *ResponsesInputTokensDet  `json:"input_tokens_details,omitempty"`
	OutputTokensDetails *ResponsesOutputTokensDet `json:"output_tokens_details,omitempty"`
}

// ResponsesInputTokensDet breaks out cached input tokens.
type ResponsesInputTokensDet struct {
	CachedTokens int `json:"cached_tokens"`
}

// ResponsesOutputTokensDet breaks out reasoning tokens.
type ResponsesOutputTokensDet struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}
