package protocol

import "encoding/json"

// OllamaChatRequest is the POST /api/chat request body.
type OllamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []OllamaMessage `json:"messages"`
	Stream   *bool           `json:"stream,omitempty"`
	Format   json.RawMessage `json:"format,omitempty"`
	Options  *OllamaOptions  `json:"options,omitempty"`
	System   string          `json:"system,omitempty"`
	Template string          `json:"template,omitempty"`
}

// OllamaGenerateRequest is the POST /api/generate request body.
type OllamaGenerateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt,omitempty"`
	System  string          `json:"system,omitempty"`
	Stream  *bool           `json:"stream,omitempty"`
	Format  json.RawMessage `json:"format,omitempty"`
	Options *OllamaOptions  `json:"options,omitempty"`
	Raw     bool            `json:"raw,omitempty"`
	Images  []string        `json:"images,omitempty"`
}

// OllamaMessage is one chat turn.
type OllamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// OllamaOptions carries the sampling knobs the gateway understands.
type OllamaOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
	NumPredict  *int     `json:"num_predict,omitempty"`
	NumCtx      *int     `json:"num_ctx,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// OllamaChatResponse is one /api/chat response object (NDJSON when streaming).
type OllamaChatResponse struct {
	Model           string        `json:"model"`
	CreatedAt       string        `json:"created_at"`
	Message         OllamaMessage `json:"message"`
	Done            bool          `json:"done"`
	DoneReason      string        `json:"done_reason,omitempty"`
	TotalDuration   int64         `json:"total_duration,omitempty"`
	PromptEvalCount int           `json:"prompt_eval_count,omitempty"`
	EvalCount       int           `json:"eval_count,omitempty"`
}

// OllamaGenerateResponse is one /api/generate response object.
type OllamaGenerateResponse struct {
	Model           string `json:"model"`
	CreatedAt       string `json:"created_at"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason,omitempty"`
	TotalDuration   int64  `json:"total_duration,omitempty"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
}

// OllamaTagsResponse is the GET /api/tags response.
type OllamaTagsResponse struct {
	Models []OllamaTagModel `json:"models"`
}

// OllamaTagModel is one /api/tags entry.
type OllamaTagModel struct {
	Name       string             `json:"name"`
	Model      string             `json:"model"`
	ModifiedAt string             `json:"modified_at"`
	Size       int64              `json:"size"`
	Digest     string             `json:"digest,omitempty"`
	Details    OllamaModelDetails `json:"details"`
}

// OllamaModelDetails describes a model in tags/show responses. Family is
// literally "Ollama" (capital O); GitHub Copilot checks this string.
type OllamaModelDetails struct {
	ParentModel       string   `json:"parent_model,omitempty"`
	Format            string   `json:"format,omitempty"`
	Family            string   `json:"family"`
	Families          []string `json:"families,omitempty"`
	ParameterSize     string   `json:"parameter_size,omitempty"`
	QuantizationLevel string   `json:"quantization_level,omitempty"`
}

// OllamaShowRequest is the POST /api/show request body; clients send either
// "model" or the legacy "name".
type OllamaShowRequest struct {
	Model string `json:"model,omitempty"`
	Name  string `json:"name,omitempty"`
}

// OllamaShowResponse is the POST /api/show response.
type OllamaShowResponse struct {
	Modelfile  string             `json:"modelfile"`
	Parameters string             `json:"parameters,omitempty"`
	Template   string             `json:"template,omitempty"`
	Details    OllamaModelDetails `json:"details"`
	ModelInfo  map[string]any     `json:"model_info,omitempty"`
}

// OllamaVersionResponse is the GET /api/version response.
type OllamaVersionResponse struct {
	Version string `json:"version"`
}
