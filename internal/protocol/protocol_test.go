package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtocolOf(t *testing.T) {
	tests := []struct {
		kind string
		want Protocol
	}{
		{"openai-custom", ProtocolOpenAIChat},
		{"openai-qwen-oauth", ProtocolOpenAIChat},
		{"openaiResponses-custom", ProtocolOpenAIResponses},
		{"claude-kiro-oauth", ProtocolAnthropic},
		{"claude-custom", ProtocolAnthropic},
		{"anthropic-custom", ProtocolAnthropic},
		{"gemini-cli-oauth", ProtocolGemini},
		{"gemini-antigravity", ProtocolGemini},
		{"ollama-local", ProtocolOllama},
		{"unknown-thing", ProtocolOpenAIChat},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ProtocolOf(tt.kind), "kind %s", tt.kind)
	}
}

func TestFinishReasonRoundTrip(t *testing.T) {
	// Composing maps across dialects must preserve the canonical reason.
	for _, r := range []FinishReason{FinishStop, FinishLength, FinishToolCall, FinishSafety} {
		viaAnthropic := FinishReasonFromAnthropic(FinishReasonToAnthropic(r))
		assert.Equal(t, r, viaAnthropic, "anthropic round trip of %s", r)

		viaOpenAI := FinishReasonFromOpenAI(FinishReasonToOpenAI(r))
		assert.Equal(t, r, viaOpenAI, "openai round trip of %s", r)
	}
}

func TestFinishReasonMapping(t *testing.T) {
	assert.Equal(t, FinishToolCall, FinishReasonFromAnthropic("tool_use"))
	assert.Equal(t, "tool_calls", FinishReasonToOpenAI(FinishToolCall))
	// Gemini has no tool finish; toolCall renders as STOP.
	assert.Equal(t, "STOP", FinishReasonToGemini(FinishToolCall))
	assert.Equal(t, FinishSafety, FinishReasonFromGemini("SAFETY"))
	assert.Equal(t, FinishLength, FinishReasonFromGemini("MAX_TOKENS"))
}

func TestStripModelPrefix(t *testing.T) {
	clean, kind := StripModelPrefix("[Kiro] claude-sonnet-4-5")
	assert.Equal(t, "claude-sonnet-4-5", clean)
	assert.Equal(t, KindClaudeKiroOAuth, kind)

	clean, kind = StripModelPrefix("[Gemini CLI] gemini-2.5-pro")
	assert.Equal(t, "gemini-2.5-pro", clean)
	assert.Equal(t, KindGeminiCLIOAuth, kind)

	// Unknown bracket tags are dropped without resolving a kind.
	clean, kind = StripModelPrefix("[Whatever] some-model")
	assert.Equal(t, "some-model", clean)
	assert.Equal(t, "", kind)

	clean, kind = StripModelPrefix("gpt-4o")
	assert.Equal(t, "gpt-4o", clean)
	assert.Equal(t, "", kind)
}

func TestPrefixModel(t *testing.T) {
	assert.Equal(t, "[Claude] claude-3-5-sonnet", PrefixModel(KindClaudeCustom, "claude-3-5-sonnet"))
	assert.Equal(t, "[OpenAI Responses] gpt-4o", PrefixModel(KindOpenAIResponses, "gpt-4o"))
	// Unregistered kinds pass the model through unlabeled.
	assert.Equal(t, "llama3", PrefixModel("ollama-local", "llama3"))
}

func TestClassifyModelKind(t *testing.T) {
	assert.Equal(t, KindClaudeCustom, ClassifyModelKind("claude-sonnet-4-5"))
	assert.Equal(t, KindClaudeCustom, ClassifyModelKind("sonnet-latest"))
	assert.Equal(t, KindGeminiCLIOAuth, ClassifyModelKind("gemini-2.5-flash"))
	assert.Equal(t, KindOpenAIQwenOAuth, ClassifyModelKind("qwen3-coder-plus"))
	assert.Equal(t, KindOpenAICustom, ClassifyModelKind("gpt-4.1"))
	assert.Equal(t, KindOpenAICustom, ClassifyModelKind("o3-mini"))
	assert.Equal(t, "", ClassifyModelKind("mystery-model"))
}
