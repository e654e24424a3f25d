package adaptor

import (
	"time"

	"github.com/polygate-dev/polygate/internal/protocol"
)

// OpenAIChunkToOllamaChat re-frames one OpenAI chunk as an /api/chat NDJSON
// object. Non-text chunks produce nil; the terminal chunk sets done:true.
func OpenAIChunkToOllamaChat(chunk *protocol.ChatCompletionChunk, state *StreamState) *protocol.OllamaChatResponse {
	if chunk.Usage != nil {
		state.InputTokens = chunk.Usage.PromptTokens
		state.OutputTokens = chunk.Usage.CompletionTokens
	}
	if len(chunk.Choices) == 0 {
		return nil
	}
	choice := chunk.Choices[0]

	if choice.FinishReason != "" {
		state.FinishReason = choice.FinishReason
		return &protocol.OllamaChatResponse{
			Model:           state.Model,
			CreatedAt:       time.Now().UTC().Format(time.RFC3339Nano),
			Message:         protocol.OllamaMessage{Role: "assistant"},
			Done:            true,
			DoneReason:      ollamaDoneReason(choice.FinishReason),
			PromptEvalCount: state.InputTokens,
			EvalCount:       state.OutputTokens,
		}
	}

	if choice.Delta.Content == "" {
		return nil
	}
	state.FullText.WriteString(choice.Delta.Content)
	return &protocol.OllamaChatResponse{
		Model:     state.Model,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Message:   protocol.OllamaMessage{Role: "assistant", Content: choice.Delta.Content},
		Done:      false,
	}
}

// OpenAIChunkToOllamaGenerate re-frames one OpenAI chunk as an
// /api/generate NDJSON object.
func OpenAIChunkToOllamaGenerate(chunk *protocol.ChatCompletionChunk, state *StreamState) *protocol.OllamaGenerateResponse {
	if chunk.Usage != nil {
		state.InputTokens = chunk.Usage.PromptTokens
		state.OutputTokens = chunk.Usage.CompletionTokens
	}
	if len(chunk.Choices) == 0 {
		return nil
	}
	choice := chunk.Choices[0]

	if choice.FinishReason != "" {
		state.FinishReason = choice.FinishReason
		return &protocol.OllamaGenerateResponse{
			Model:           state.Model,
			CreatedAt:       time.Now().UTC().Format(time.RFC3339Nano),
			Done:            true,
			DoneReason:      ollamaDoneReason(choice.FinishReason),
			PromptEvalCount: state.InputTokens,
			EvalCount:       state.OutputTokens,
		}
	}

	if choice.Delta.Content == "" {
		return nil
	}
	state.FullText.WriteString(choice.Delta.Content)
	return &protocol.OllamaGenerateResponse{
		Model:     state.Model,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Response:  choice.Delta.Content,
		Done:      false,
	}
}
