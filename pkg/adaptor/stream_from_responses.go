package adaptor

import (
	"encoding/json"

	"github.com/polygate-dev/polygate/internal/protocol"
)

// responsesStreamEvent is the superset of fields the gateway reads from
// Responses API stream events.
type responsesStreamEvent struct {
	Type     string                      `json:"type"`
	Delta    string                      `json:"delta,omitempty"`
	Item     *protocol.ResponsesItem     `json:"item,omitempty"`
	Response *protocol.ResponsesResponse `json:"response,omitempty"`
}

// ResponsesEventToOpenAIChunks re-frames one upstream Responses API stream
// event as hub chunks.
func ResponsesEventToOpenAIChunks(data []byte, state *StreamState) ([]*protocol.ChatCompletionChunk, error) {
	var ev responsesStreamEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}

	switch ev.Type {
	case "response.created":
		if ev.Response != nil && ev.Response.ID != "" {
			state.MsgID = ev.Response.ID
		}
		return []*protocol.ChatCompletionChunk{newChunk(state, protocol.ChatDelta{Role: "assistant"}, "")}, nil

	case "response.output_text.delta":
		state.FullText.WriteString(ev.Delta)
		return []*protocol.ChatCompletionChunk{newChunk(state, protocol.ChatDelta{Content: ev.Delta}, "")}, nil

	case "response.reasoning_summary_text.delta":
		state.ReasoningText.WriteString(ev.Delta)
		return []*protocol.ChatCompletionChunk{newChunk(state, protocol.ChatDelta{ReasoningContent: ev.Delta}, "")}, nil

	case "response.output_item.added":
		if ev.Item == nil || ev.Item.Type != "function_call" {
			return nil, nil
		}
		idx := len(state.OpenToolCalls)
		tc := state.toolCall(idx)
		tc.ID = ev.Item.CallID
		tc.Name = ev.Item.Name
		state.SawToolCall = true
		return []*protocol.ChatCompletionChunk{newChunk(state, protocol.ChatDelta{
			ToolCalls: []protocol.ChatToolCall{{
				Index:    intPtr(idx),
				ID:       ev.Item.CallID,
				Type:     "function",
				Function: protocol.ChatToolFunction{Name: ev.Item.Name},
			}},
		}, "")}, nil

	case "response.function_call_arguments.delta", "response.custom_tool_call_input.delta":
		if len(state.ToolCallOrder()) == 0 {
			return nil, nil
		}
		idx := state.ToolCallOrder()[len(state.ToolCallOrder())-1]
		state.toolCall(idx).Args.WriteString(ev.Delta)
		return []*protocol.ChatCompletionChunk{newChunk(state, protocol.ChatDelta{
			ToolCalls: []protocol.ChatToolCall{{
				Index:    intPtr(idx),
				Function: protocol.ChatToolFunction{Arguments: ev.Delta},
			}},
		}, "")}, nil

	case "response.completed", "response.incomplete":
		finish := "stop"
		if state.SawToolCall {
			finish = "tool_calls"
		} else if ev.Type == "response.incomplete" {
			finish = "length"
		}
		state.FinishReason = finish
		chunk := newChunk(state, protocol.ChatDelta{}, finish)
		if ev.Response != nil && ev.Response.Usage != nil {
			chunk.Usage = usageFromResponses(ev.Response.Usage)
			state.InputTokens = ev.Response.Usage.InputTokens
			state.OutputTokens = ev.Response.Usage.OutputTokens
		}
		return []*protocol.ChatCompletionChunk{chunk}, nil
	}

	return nil, nil
}
