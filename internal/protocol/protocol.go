// Package protocol defines the wire shapes of the supported LLM dialects and
// the identifiers used to route between them.
package protocol

import "strings"

// Protocol identifies one of the supported wire dialects.
type Protocol string

const (
	ProtocolOpenAIChat      Protocol = "openai_chat"
	ProtocolOpenAIResponses Protocol = "openai_responses"
	ProtocolAnthropic       Protocol = "anthropic"
	ProtocolGemini          Protocol = "gemini"
	ProtocolOllama          Protocol = "ollama"
)

// Well-known provider kinds. A kind string is "<protocol>-<vendor>"; the
// prefix before the first '-' names the upstream protocol.
const (
	KindGeminiCLIOAuth  = "gemini-cli-oauth"
	KindGeminiAntigrav  = "gemini-antigravity"
	KindClaudeKiroOAuth = "claude-kiro-oauth"
	KindClaudeCustom    = "claude-custom"
	KindOpenAICustom    = "openai-custom"
	KindOpenAIQwenOAuth = "openai-qwen-oauth"
	KindOpenAIResponses = "openaiResponses-custom"
)

// KnownKinds lists every provider kind the gateway routes to; the order is
// stable so derived route tables stay deterministic.
var KnownKinds = []string{
	KindGeminiCLIOAuth,
	KindGeminiAntigrav,
	KindClaudeKiroOAuth,
	KindClaudeCustom,
	KindOpenAICustom,
	KindOpenAIQwenOAuth,
	KindOpenAIResponses,
}

// ProtocolOf resolves the wire protocol a provider kind speaks.
func ProtocolOf(kind string) Protocol {
	prefix := kind
	if i := strings.Index(kind, "-"); i >= 0 {
		prefix = kind[:i]
	}
	switch prefix {
	case "openai":
		return ProtocolOpenAIChat
	case "openaiResponses":
		return ProtocolOpenAIResponses
	case "claude", "anthropic":
		return ProtocolAnthropic
	case "gemini":
		return ProtocolGemini
	case "ollama":
		return ProtocolOllama
	default:
		return ProtocolOpenAIChat
	}
}

// FinishReason is the dialect-neutral completion cause.
type FinishReason string

const (
	FinishStop     FinishReason = "stop"
	FinishLength   FinishReason = "length"
	FinishToolCall FinishReason = "toolCall"
	FinishSafety   FinishReason = "safety"
	FinishOther    FinishReason = "other"
)

// FinishReasonFromOpenAI maps an OpenAI finish_reason to the neutral form.
func FinishReasonFromOpenAI(r string) FinishReason {
	switch r {
	case "stop":
		return FinishStop
	case "length":
		return FinishLength
	case "tool_calls", "function_call":
		return FinishToolCall
	case "content_filter":
		return FinishSafety
	case "":
		return FinishOther
	default:
		return FinishOther
	}
}

// FinishReasonToOpenAI maps the neutral finish reason to OpenAI's wire value.
func FinishReasonToOpenAI(r FinishReason) string {
	switch r {
	case FinishLength:
		return "length"
	case FinishToolCall:
		return "tool_calls"
	case FinishSafety:
		return "content_filter"
	default:
		return "stop"
	}
}

// FinishReasonFromAnthropic maps an Anthropic stop_reason to the neutral form.
func FinishReasonFromAnthropic(r string) FinishReason {
	switch r {
	case "end_turn":
		return FinishStop
	case "max_tokens":
		return FinishLength
	case "tool_use":
		return FinishToolCall
	case "stop_sequence":
		return FinishSafety
	default:
		return FinishOther
	}
}

// FinishReasonToAnthropic maps the neutral finish reason to Anthropic's wire value.
func FinishReasonToAnthropic(r FinishReason) string {
	switch r {
	case FinishLength:
		return "max_tokens"
	case FinishToolCall:
		return "tool_use"
	case FinishSafety:
		return "stop_sequence"
	default:
		return "end_turn"
	}
}

// FinishReasonFromGemini maps a Gemini finishReason to the neutral form.
// Gemini reports STOP for tool calls; callers that saw a functionCall part
// should override with FinishToolCall.
func FinishReasonFromGemini(r string) FinishReason {
	switch r {
	case "STOP":
		return FinishStop
	case "MAX_TOKENS":
		return FinishLength
	case "SAFETY", "RECITATION", "PROHIBITED_CONTENT", "BLOCKLIST":
		return FinishSafety
	default:
		return FinishOther
	}
}

// FinishReasonToGemini maps the neutral finish reason to Gemini's wire value.
func FinishReasonToGemini(r FinishReason) string {
	switch r {
	case FinishLength:
		return "MAX_TOKENS"
	case FinishSafety:
		return "SAFETY"
	default:
		return "STOP"
	}
}

// ModelInfo is the dialect-neutral model-list entry adapters return.
type ModelInfo struct {
	ID               string `json:"id"`
	DisplayName      string `json:"display_name,omitempty"`
	Description      string `json:"description,omitempty"`
	Version          string `json:"version,omitempty"`
	InputTokenLimit  int    `json:"input_token_limit,omitempty"`
	OutputTokenLimit int    `json:"output_token_limit,omitempty"`
	Created          int64  `json:"created,omitempty"`
	OwnedBy          string `json:"owned_by,omitempty"`
}

// Sampling defaults applied when a target dialect requires a value the
// source request did not carry.
const (
	DefaultMaxOutputTokens       = 8192
	DefaultGeminiMaxOutputTokens = 65535
	DefaultTemperature           = 1.0
	DefaultTopP                  = 0.95
)
