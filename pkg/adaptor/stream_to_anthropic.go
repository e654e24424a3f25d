package adaptor

import (
	"github.com/polygate-dev/polygate/internal/protocol"
)

// Anthropic stream event and block type names.
const (
	eventTypeMessageStart      = "message_start"
	eventTypeContentBlockStart = "content_block_start"
	eventTypeContentBlockDelta = "content_block_delta"
	eventTypeContentBlockStop  = "content_block_stop"
	eventTypeMessageDelta      = "message_delta"
	eventTypeMessageStop       = "message_stop"
	eventTypeError             = "error"

	blockTypeText     = "text"
	blockTypeThinking = "thinking"
	blockTypeToolUse  = "tool_use"

	deltaTypeTextDelta      = "text_delta"
	deltaTypeThinkingDelta  = "thinking_delta"
	deltaTypeInputJSONDelta = "input_json_delta"
)

// OpenAIChunkToAnthropicEvents re-frames one OpenAI chunk as Anthropic
// Messages stream events, maintaining block bookkeeping in state.
func OpenAIChunkToAnthropicEvents(chunk *protocol.ChatCompletionChunk, state *StreamState) []StreamEvent {
	var events []StreamEvent

	if !state.Started {
		state.Started = true
		events = append(events, StreamEvent{
			Event: eventTypeMessageStart,
			Data: map[string]interface{}{
				"type": eventTypeMessageStart,
				"message": map[string]interface{}{
					"id":            state.MsgID,
					"type":          "message",
					"role":          "assistant",
					"content":       []interface{}{},
					"model":         state.Model,
					"stop_reason":   nil,
					"stop_sequence": nil,
					"usage": map[string]interface{}{
						"input_tokens":  state.InputTokens,
						"output_tokens": 0,
					},
				},
			},
		})
	}

	if chunk.Usage != nil {
		state.InputTokens = chunk.Usage.PromptTokens
		state.OutputTokens = chunk.Usage.CompletionTokens
	}
	if len(chunk.Choices) == 0 {
		return events
	}
	choice := chunk.Choices[0]
	delta := choice.Delta

	if delta.ReasoningContent != "" {
		if state.ThinkBlockIndex == -1 {
			state.ThinkBlockIndex = state.NextBlockIndex
			state.NextBlockIndex++
			events = append(events, anthropicBlockStart(state.ThinkBlockIndex, blockTypeThinking,
				map[string]interface{}{"thinking": ""}))
		}
		state.ReasoningText.WriteString(delta.ReasoningContent)
		events = append(events, anthropicBlockDelta(state.ThinkBlockIndex, map[string]interface{}{
			"type":     deltaTypeThinkingDelta,
			"thinking": delta.ReasoningContent,
		}))
	}

	if text := delta.Content + delta.Refusal; text != "" {
		if state.TextBlockIndex == -1 {
			state.TextBlockIndex = state.NextBlockIndex
			state.NextBlockIndex++
			events = append(events, anthropicBlockStart(state.TextBlockIndex, blockTypeText,
				map[string]interface{}{"text": ""}))
		}
		state.FullText.WriteString(text)
		events = append(events, anthropicBlockDelta(state.TextBlockIndex, map[string]interface{}{
			"type": deltaTypeTextDelta,
			"text": text,
		}))
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
		if !tc.Started && tc.Name != "" {
			tc.Started = true
			tc.BlockIndex = state.NextBlockIndex
			state.NextBlockIndex++
			state.SawToolCall = true
			events = append(events, anthropicBlockStart(tc.BlockIndex, blockTypeToolUse,
				map[string]interface{}{
					"id":    tc.ID,
					"name":  tc.Name,
					"input": map[string]interface{}{},
				}))
		}
		if tcDelta.Function.Arguments != "" && tc.BlockIndex >= 0 {
			tc.Args.WriteString(tcDelta.Function.Arguments)
			events = append(events, anthropicBlockDelta(tc.BlockIndex, map[string]interface{}{
				"type":         deltaTypeInputJSONDelta,
				"partial_json": tcDelta.Function.Arguments,
			}))
		}
	}

	if choice.FinishReason != "" {
		state.FinishReason = choice.FinishReason
		events = append(events, anthropicClosingEvents(state)...)
	}

	return events
}

// anthropicClosingEvents emits content_block_stop for every open block,
// then message_delta with the stop reason and usage, then message_stop.
func anthropicClosingEvents(state *StreamState) []StreamEvent {
	var events []StreamEvent

	if state.ThinkBlockIndex >= 0 {
		events = append(events, anthropicBlockStop(state.ThinkBlockIndex))
	}
	if state.TextBlockIndex >= 0 {
		events = append(events, anthropicBlockStop(state.TextBlockIndex))
	}
	for _, idx := range state.ToolCallOrder() {
		if tc := state.OpenToolCalls[idx]; tc.Started {
			events = append(events, anthropicBlockStop(tc.BlockIndex))
		}
	}

	stopReason := protocol.FinishReasonToAnthropic(protocol.FinishReasonFromOpenAI(state.FinishReason))
	events = append(events, StreamEvent{
		Event: eventTypeMessageDelta,
		Data: map[string]interface{}{
			"type": eventTypeMessageDelta,
			"delta": map[string]interface{}{
				"stop_reason":   stopReason,
				"stop_sequence": nil,
			},
			"usage": map[string]interface{}{
				"input_tokens":  state.InputTokens,
				"output_tokens": state.OutputTokens,
			},
		},
	})
	events = append(events, StreamEvent{
		Event: eventTypeMessageStop,
		Data:  map[string]interface{}{"type": eventTypeMessageStop},
	})
	return events
}

func anthropicBlockStart(index int, blockType string, block map[string]interface{}) StreamEvent {
	block["type"] = blockType
	return StreamEvent{
		Event: eventTypeContentBlockStart,
		Data: map[string]interface{}{
			"type":          eventTypeContentBlockStart,
			"index":         index,
			"content_block": block,
		},
	}
}

func anthropicBlockDelta(index int, delta map[string]interface{}) StreamEvent {
	return StreamEvent{
		Event: eventTypeContentBlockDelta,
		Data: map[string]interface{}{
			"type":  eventTypeContentBlockDelta,
			"index": index,
			"delta": delta,
		},
	}
}

func anthropicBlockStop(index int) StreamEvent {
	return StreamEvent{
		Event: eventTypeContentBlockStop,
		Data: map[string]interface{}{
			"type":  eventTypeContentBlockStop,
			"index": index,
		},
	}
}

// AnthropicErrorEvent renders a mid-stream failure in the Anthropic dialect.
func AnthropicErrorEvent(errType, message string) StreamEvent {
	return StreamEvent{
		Event: eventTypeError,
		Data: map[string]interface{}{
			"type": eventTypeError,
			"error": map[string]interface{}{
				"type":    errType,
				"message": message,
			},
		},
	}
}
