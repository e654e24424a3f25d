package adaptor

import (
	"time"

	"github.com/polygate-dev/polygate/internal/protocol"
)

// AnthropicEventToOpenAIChunks re-frames one upstream Anthropic stream
// event as zero or more OpenAI chat-completion chunks. The hub form feeds
// the per-dialect framers, so every upstream dialect converges on the same
// downstream path.
func AnthropicEventToOpenAIChunks(ev *protocol.AnthropicStreamEvent, state *StreamState) []*protocol.ChatCompletionChunk {
	switch ev.Type {
	case "message_start":
		if ev.Message != nil {
			if ev.Message.ID != "" {
				state.MsgID = ev.Message.ID
			}
			state.InputTokens = ev.Message.Usage.InputTokens
			state.CachedTokens = ev.Message.Usage.CacheReadInputTokens
		}
		return []*protocol.ChatCompletionChunk{newChunk(state, protocol.ChatDelta{Role: "assistant"}, "")}

	case "content_block_start":
		if ev.ContentBlock == nil || ev.ContentBlock.Type != "tool_use" {
			// Text and thinking blocks open implicitly with their first delta.
			return nil
		}
		idx := len(state.OpenToolCalls)
		tc := state.toolCall(idx)
		tc.ID = ev.ContentBlock.ID
		tc.Name = ev.ContentBlock.Name
		state.blockToTool[ev.Index] = idx
		state.SawToolCall = true
		return []*protocol.ChatCompletionChunk{newChunk(state, protocol.ChatDelta{
			ToolCalls: []protocol.ChatToolCall{{
				Index: intPtr(idx),
				ID:    ev.ContentBlock.ID,
				Type:  "function",
				Function: protocol.ChatToolFunction{
					Name:      ev.ContentBlock.Name,
					Arguments: "",
				},
			}},
		}, "")}

	case "content_block_delta":
		if ev.Delta == nil {
			return nil
		}
		switch ev.Delta.Type {
		case "text_delta":
			state.FullText.WriteString(ev.Delta.Text)
			return []*protocol.ChatCompletionChunk{newChunk(state, protocol.ChatDelta{Content: ev.Delta.Text}, "")}
		case "thinking_delta":
			state.ReasoningText.WriteString(ev.Delta.Thinking)
			return []*protocol.ChatCompletionChunk{newChunk(state, protocol.ChatDelta{ReasoningContent: ev.Delta.Thinking}, "")}
		case "input_json_delta":
			idx, ok := state.blockToTool[ev.Index]
			if !ok {
				return nil
			}
			// Forward the raw partial JSON verbatim; parsing waits for the end.
			state.toolCall(idx).Args.WriteString(ev.Delta.PartialJSON)
			return []*protocol.ChatCompletionChunk{newChunk(state, protocol.ChatDelta{
				ToolCalls: []protocol.ChatToolCall{{
					Index:    intPtr(idx),
					Function: protocol.ChatToolFunction{Arguments: ev.Delta.PartialJSON},
				}},
			}, "")}
		}
		return nil

	case "message_delta":
		finish := ""
		if ev.Delta != nil && ev.Delta.StopReason != "" {
			finish = protocol.FinishReasonToOpenAI(protocol.FinishReasonFromAnthropic(ev.Delta.StopReason))
		}
		if ev.Usage != nil {
			state.OutputTokens = ev.Usage.OutputTokens
			if ev.Usage.InputTokens > 0 {
				state.InputTokens = ev.Usage.InputTokens
			}
		}
		if finish == "" {
			return nil
		}
		state.FinishReason = finish
		chunk := newChunk(state, protocol.ChatDelta{}, finish)
		chunk.Usage = &protocol.ChatUsage{
			PromptTokens:     state.InputTokens,
			CompletionTokens: state.OutputTokens,
			TotalTokens:      state.InputTokens + state.OutputTokens,
		}
		return []*protocol.ChatCompletionChunk{chunk}

	case "message_stop", "content_block_stop", "ping":
		return nil
	}
	return nil
}

// newChunk builds a single-choice chunk with the state's identity.
func newChunk(state *StreamState, delta protocol.ChatDelta, finish string) *protocol.ChatCompletionChunk {
	return &protocol.ChatCompletionChunk{
		ID:      state.MsgID,
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   state.Model,
		Choices: []protocol.ChatChunkChoice{{
			Index:        0,
			Delta:        delta,
			FinishReason: finish,
		}},
	}
}
