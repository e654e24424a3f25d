package adaptor

import (
	"github.com/polygate-dev/polygate/internal/protocol"
)

// OpenAIChunkToGeminiChunk re-frames one OpenAI chunk as a Gemini
// streamGenerateContent chunk. Gemini has no preamble; the first data chunk
// simply carries the model role. Chunks with nothing to say return nil.
func OpenAIChunkToGeminiChunk(chunk *protocol.ChatCompletionChunk, state *StreamState) *protocol.GenerateContentResponse {
	if chunk.Usage != nil {
		state.InputTokens = chunk.Usage.PromptTokens
		state.OutputTokens = chunk.Usage.CompletionTokens
	}
	if len(chunk.Choices) == 0 {
		return nil
	}
	choice := chunk.Choices[0]
	delta := choice.Delta

	var parts []protocol.GeminiPart
	if delta.ReasoningContent != "" {
		state.ReasoningText.WriteString(delta.ReasoningContent)
		parts = append(parts, protocol.GeminiPart{Text: delta.ReasoningContent, Thought: true})
	}
	if text := delta.Content + delta.Refusal; text != "" {
		state.FullText.WriteString(text)
		parts = append(parts, protocol.GeminiPart{Text: text})
	}
	for _, tcDelta := range delta.ToolCalls {
		idx := 0
		if tcDelta.Index != nil {
			idx = *tcDelta.Index
		}
		tc := state.toolCall(idx)
		if tcDelta.ID != "" {
			tc.ID = tcDelta.ID
		}
		if tcDelta.Function.Name != "" {
			tc.Name = tcDelta.Function.Name
		}
		if tcDelta.Function.Arguments != "" {
			tc.Args.WriteString(tcDelta.Function.Arguments)
		}
		state.SawToolCall = true
	}

	if choice.FinishReason == "" {
		if parts == nil {
			return nil
		}
		return &protocol.GenerateContentResponse{
			ResponseID: state.ID,
			Candidates: []protocol.GeminiCandidate{{
				Content: protocol.GeminiContent{Role: "model", Parts: parts},
			}},
		}
	}

	// Terminal chunk: flush accumulated tool calls whole, Gemini-style.
	state.FinishReason = choice.FinishReason
	for _, idx := range state.ToolCallOrder() {
		tc := state.OpenToolCalls[idx]
		if tc.Name == "" {
			continue
		}
		parts = append(parts, protocol.GeminiPart{
			FunctionCall: &protocol.GeminiFunctionCall{
				ID:   tc.ID,
				Name: tc.Name,
				Args: validJSONObject(tc.Args.String()),
			},
		})
	}
	return &protocol.GenerateContentResponse{
		ResponseID: state.ID,
		Candidates: []protocol.GeminiCandidate{{
			Content:      protocol.GeminiContent{Role: "model", Parts: parts},
			FinishReason: protocol.FinishReasonToGemini(protocol.FinishReasonFromOpenAI(choice.FinishReason)),
		}},
		UsageMetadata: &protocol.GeminiUsageMetadata{
			PromptTokenCount:     state.InputTokens,
			CandidatesTokenCount: state.OutputTokens,
			TotalTokenCount:      state.InputTokens + state.OutputTokens,
		},
	}
}
