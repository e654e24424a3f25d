package adaptor

import (
	"time"

	"github.com/polygate-dev/polygate/internal/protocol"
)

// ollamaDoneReason maps an OpenAI finish reason to Ollama's done_reason.
func ollamaDoneReason(finish string) string {
	switch finish {
	case "length":
		return "length"
	default:
		return "stop"
	}
}

// OpenAIResponseToOllamaChat converts a Chat Completions response into the
// terminal /api/chat object.
func OpenAIResponseToOllamaChat(resp *protocol.ChatCompletionResponse, model string) *protocol.OllamaChatResponse {
	out := &protocol.OllamaChatResponse{
		Model:     model,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Message:   protocol.OllamaMessage{Role: "assistant"},
		Done:      true,
	}
	if len(resp.Choices) > 0 {
		out.Message.Content = resp.Choices[0].Message.Content.AsText()
		out.DoneReason = ollamaDoneReason(resp.Choices[0].FinishReason)
	} else {
		out.DoneReason = "stop"
	}
	if resp.Usage != nil {
		out.PromptEvalCount = resp.Usage.PromptTokens
		out.EvalCount = resp.Usage.CompletionTokens
	}
	return out
}

// OpenAIResponseToOllamaGenerate converts a Chat Completions response into
// the terminal /api/generate object.
func OpenAIResponseToOllamaGenerate(resp *protocol.ChatCompletionResponse, model string) *protocol.OllamaGenerateResponse {
	out := &protocol.OllamaGenerateResponse{
		Model:     model,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Done:      true,
	}
	if len(resp.Choices) > 0 {
		out.Response = resp.Choices[0].Message.Content.AsText()
		out.DoneReason = ollamaDoneReason(resp.Choices[0].FinishReason)
	} else {
		out.DoneReason = "stop"
	}
	if resp.Usage != nil {
		out.PromptEvalCount = resp.Usage.PromptTokens
		out.EvalCount = resp.Usage.CompletionTokens
	}
	return out
}
