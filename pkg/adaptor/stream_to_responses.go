package adaptor

import (
	"github.com/polygate-dev/polygate/internal/protocol"
)

// OpenAIChunkToResponsesEvents re-frames one OpenAI chunk as Responses API
// stream events. The opening frames follow the fixed order response.created,
// response.in_progress, response.output_item.added, response.content_part.added.
func OpenAIChunkToResponsesEvents(chunk *protocol.ChatCompletionChunk, state *StreamState) []StreamEvent {
	var events []StreamEvent

	if !state.Started {
		state.Started = true
		events = append(events,
			responsesEvent(state, "response.created", map[string]interface{}{
				"response": responsesSnapshot(state, "in_progress", nil),
			}),
			responsesEvent(state, "response.in_progress", map[string]interface{}{
				"response": responsesSnapshot(state, "in_progress", nil),
			}),
		)
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
		state.ReasoningText.WriteString(delta.ReasoningContent)
		events = append(events, responsesEvent(state, "response.reasoning_summary_text.delta", map[string]interface{}{
			"item_id":       "rs_" + state.MsgID,
			"output_index":  state.OutputIndex,
			"summary_index": 0,
			"delta":         delta.ReasoningContent,
		}))
	}

	if text := delta.Content + delta.Refusal; text != "" {
		if !state.ContentPartOpen {
			state.ContentPartOpen = true
			state.MessageItemID = "msg_" + state.MsgID
			events = append(events,
				responsesEvent(state, "response.output_item.added", map[string]interface{}{
					"output_index": state.OutputIndex,
					"item": map[string]interface{}{
						"id":      state.MessageItemID,
						"type":    "message",
						"status":  "in_progress",
						"role":    "assistant",
						"content": []interface{}{},
					},
				}),
				responsesEvent(state, "response.content_part.added", map[string]interface{}{
					"item_id":       state.MessageItemID,
					"output_index":  state.OutputIndex,
					"content_index": 0,
					"part": map[string]interface{}{
						"type":        "output_text",
						"text":        "",
						"annotations": []interface{}{},
					},
				}),
			)
		}
		state.FullText.WriteString(text)
		events = append(events, responsesEvent(state, "response.output_text.delta", map[string]interface{}{
			"item_id":       state.MessageItemID,
			"output_index":  state.OutputIndex,
			"content_index": 0,
			"delta":         text,
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
			if state.ContentPartOpen {
				tc.BlockIndex = state.OutputIndex + 1 + len(state.ToolCallOrder()) - 1
			} else {
				tc.BlockIndex = state.OutputIndex + len(state.ToolCallOrder()) - 1
			}
			state.SawToolCall = true
			events = append(events, responsesEvent(state, "response.output_item.added", map[string]interface{}{
				"output_index": tc.BlockIndex,
				"item": map[string]interface{}{
					"id":        "fc_" + state.MsgID,
					"type":      "function_call",
					"status":    "in_progress",
					"call_id":   tc.ID,
					"name":      tc.Name,
					"arguments": "",
				},
			}))
		}
		if tcDelta.Function.Arguments != "" && tc.Started {
			tc.Args.WriteString(tcDelta.Function.Arguments)
			events = append(events, responsesEvent(state, "response.custom_tool_call_input.delta", map[string]interface{}{
				"item_id":      "fc_" + state.MsgID,
				"output_index": tc.BlockIndex,
				"delta":        tcDelta.Function.Arguments,
			}))
		}
	}

	if choice.FinishReason != "" {
		state.FinishReason = choice.FinishReason
		events = append(events, responsesClosingEvents(state)...)
	}

	return events
}

// responsesClosingEvents closes the open text part and item, then emits the
// completed response snapshot with the buffered full text.
func responsesClosingEvents(state *StreamState) []StreamEvent {
	var events []StreamEvent

	if state.ContentPartOpen {
		events = append(events,
			responsesEvent(state, "response.output_text.done", map[string]interface{}{
				"item_id":       state.MessageItemID,
				"output_index":  state.OutputIndex,
				"content_index": 0,
				"text":          state.FullText.String(),
			}),
			responsesEvent(state, "response.content_part.done", map[string]interface{}{
				"item_id":       state.MessageItemID,
				"output_index":  state.OutputIndex,
				"content_index": 0,
				"part": map[string]interface{}{
					"type":        "output_text",
					"text":        state.FullText.String(),
					"annotations": []interface{}{},
				},
			}),
			responsesEvent(state, "response.output_item.done", map[string]interface{}{
				"output_index": state.OutputIndex,
				"item": map[string]interface{}{
					"id":     state.MessageItemID,
					"type":   "message",
					"status": "completed",
					"role":   "assistant",
					"content": []interface{}{map[string]interface{}{
						"type":        "output_text",
						"text":        state.FullText.String(),
						"annotations": []interface{}{},
					}},
				},
			}),
		)
	}
	for _, idx := range state.ToolCallOrder() {
		tc := state.OpenToolCalls[idx]
		if !tc.Started {
			continue
		}
		events = append(events, responsesEvent(state, "response.output_item.done", map[string]interface{}{
			"output_index": tc.BlockIndex,
			"item": map[string]interface{}{
				"id":        "fc_" + state.MsgID,
				"type":      "function_call",
				"status":    "completed",
				"call_id":   tc.ID,
				"name":      tc.Name,
				"arguments": tc.Args.String(),
			},
		}))
	}

	usage := map[string]interface{}{
		"input_tokens":  state.InputTokens,
		"output_tokens": state.OutputTokens,
		"total_tokens":  state.InputTokens + state.OutputTokens,
	}
	events = append(events, responsesEvent(state, "response.completed", map[string]interface{}{
		"response": responsesSnapshot(state, "completed", usage),
	}))
	return events
}

// responsesSnapshot builds the response object embedded in lifecycle events.
func responsesSnapshot(state *StreamState, status string, usage map[string]interface{}) map[string]interface{} {
	snapshot := map[string]interface{}{
		"id":         state.ID,
		"object":     "response",
		"created_at": state.StartedAt.Unix(),
		"status":     status,
		"model":      state.Model,
		"output":     []interface{}{},
	}
	if usage != nil {
		snapshot["usage"] = usage
	}
	return snapshot
}

func responsesEvent(state *StreamState, eventType string, data map[string]interface{}) StreamEvent {
	data["type"] = eventType
	data["sequence_number"] = state.nextSeq()
	return StreamEvent{Event: eventType, Data: data}
}

// ResponsesErrorEvent renders a mid-stream failure in the Responses dialect.
func ResponsesErrorEvent(code, message string) StreamEvent {
	return StreamEvent{
		Event: "error",
		Data: map[string]interface{}{
			"type":    "error",
			"code":    code,
			"message": message,
		},
	}
}
