package adaptor

import (
	"github.com/polygate-dev/polygate/internal/protocol"
)

// GeminiChunkToOpenAIChunks re-frames one Gemini streamGenerateContent
// chunk as OpenAI chat-completion chunks. Gemini delivers tool calls whole,
// so a functionCall part becomes one delta carrying the full arguments.
func GeminiChunkToOpenAIChunks(chunk *protocol.GenerateContentResponse, state *StreamState) []*protocol.ChatCompletionChunk {
	var out []*protocol.ChatCompletionChunk

	if !state.Started {
		state.Started = true
		if chunk.ResponseID != "" {
			state.MsgID = chunk.ResponseID
		}
		out = append(out, newChunk(state, protocol.ChatDelta{Role: "assistant"}, ""))
	}

	if chunk.UsageMetadata != nil {
		state.InputTokens = chunk.UsageMetadata.PromptTokenCount
		state.OutputTokens = chunk.UsageMetadata.CandidatesTokenCount
		state.CachedTokens = chunk.UsageMetadata.CachedContentTokenCount
		state.ReasoningTokens = chunk.UsageMetadata.ThoughtsTokenCount
	}

	if len(chunk.Candidates) == 0 {
		return out
	}
	cand := chunk.Candidates[0]

	for _, part := range cand.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			idx := len(state.OpenToolCalls)
			tc := state.toolCall(idx)
			tc.ID = part.FunctionCall.ID
			if tc.ID == "" {
				tc.ID = "call_" + state.MsgID[:8]
			}
			tc.Name = part.FunctionCall.Name
			args := string(part.FunctionCall.Args)
			if args == "" {
				args = "{}"
			}
			tc.Args.WriteString(args)
			state.SawToolCall = true
			out = append(out, newChunk(state, protocol.ChatDelta{
				ToolCalls: []protocol.ChatToolCall{{
					Index: intPtr(idx),
					ID:    tc.ID,
					Type:  "function",
					Function: protocol.ChatToolFunction{
						Name:      part.FunctionCall.Name,
						Arguments: args,
					},
				}},
			}, ""))
		case part.Thought:
			state.ReasoningText.WriteString(part.Text)
			out = append(out, newChunk(state, protocol.ChatDelta{ReasoningContent: part.Text}, ""))
		case part.Text != "":
			state.FullText.WriteString(part.Text)
			out = append(out, newChunk(state, protocol.ChatDelta{Content: part.Text}, ""))
		}
	}

	if cand.FinishReason != "" {
		finish := protocol.FinishReasonFromGemini(cand.FinishReason)
		if state.SawToolCall {
			finish = protocol.FinishToolCall
		}
		state.FinishReason = protocol.FinishReasonToOpenAI(finish)
		terminal := newChunk(state, protocol.ChatDelta{}, state.FinishReason)
		terminal.Usage = &protocol.ChatUsage{
			PromptTokens:     state.InputTokens,
			CompletionTokens: state.OutputTokens,
			TotalTokens:      state.InputTokens + state.OutputTokens,
		}
		out = append(out, terminal)
	}

	return out
}
