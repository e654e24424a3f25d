// Package adaptor converts requests, responses, streaming chunks and model
// lists between the supported LLM wire dialects. OpenAI Chat Completions is
// the hub form: every inbound dialect is first normalized to it and every
// outbound dialect is framed from it, so each dialect needs exactly one
// converter pair instead of a full matrix.
package adaptor

import (
	"encoding/json"
	"fmt"

	"github.com/polygate-dev/polygate/internal/protocol"
)

// OpenAIRequestToUpstreamBody renders the hub request in the target
// protocol and returns the upstream request body. For Gemini the model
// travels in the URL, so it is absent from the body.
func OpenAIRequestToUpstreamBody(req *protocol.ChatCompletionRequest, to protocol.Protocol, model string) ([]byte, error) {
	switch to {
	case protocol.ProtocolOpenAIChat:
		clone := *req
		clone.Model = model
		return json.Marshal(&clone)
	case protocol.ProtocolAnthropic:
		out := OpenAIRequestToAnthropic(req)
		out.Model = model
		return json.Marshal(out)
	case protocol.ProtocolGemini:
		return json.Marshal(OpenAIRequestToGemini(req, model))
	case protocol.ProtocolOpenAIResponses:
		out := OpenAIRequestToResponses(req)
		out.Model = model
		return json.Marshal(out)
	default:
		return nil, fmt.Errorf("adaptor: no request converter for protocol %q", to)
	}
}

// UpstreamResponseToOpenAI parses an upstream unary response body and
// normalizes it to the hub form.
func UpstreamResponseToOpenAI(from protocol.Protocol, body []byte, model string) (*protocol.ChatCompletionResponse, error) {
	switch from {
	case protocol.ProtocolOpenAIChat:
		var resp protocol.ChatCompletionResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("adaptor: decode openai response: %w", err)
		}
		resp.Model = model
		return &resp, nil
	case protocol.ProtocolAnthropic:
		var resp protocol.MessagesResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("adaptor: decode anthropic response: %w", err)
		}
		return AnthropicResponseToOpenAI(&resp, model), nil
	case protocol.ProtocolGemini:
		var resp protocol.GenerateContentResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("adaptor: decode gemini response: %w", err)
		}
		return GeminiResponseToOpenAI(&resp, model), nil
	case protocol.ProtocolOpenAIResponses:
		var resp protocol.ResponsesResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("adaptor: decode responses response: %w", err)
		}
		return ResponsesResponseToOpenAI(&resp, model), nil
	default:
		return nil, fmt.Errorf("adaptor: no response converter for protocol %q", from)
	}
}

// UpstreamChunkToOpenAIChunks parses one upstream streaming payload and
// normalizes it to hub chunks. For anthropic the event name from the SSE
// framing travels inside the JSON "type" field, so the body alone suffices.
func UpstreamChunkToOpenAIChunks(from protocol.Protocol, data []byte, state *StreamState) ([]*protocol.ChatCompletionChunk, error) {
	switch from {
	case protocol.ProtocolOpenAIChat:
		var chunk protocol.ChatCompletionChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			return nil, fmt.Errorf("adaptor: decode openai chunk: %w", err)
		}
		chunk.Model = state.Model
		if chunk.Usage != nil {
			state.InputTokens = chunk.Usage.PromptTokens
			state.OutputTokens = chunk.Usage.CompletionTokens
		}
		if len(chunk.Choices) > 0 {
			state.FullText.WriteString(chunk.Choices[0].Delta.Content)
			if fr := chunk.Choices[0].FinishReason; fr != "" {
				state.FinishReason = fr
			}
		}
		return []*protocol.ChatCompletionChunk{&chunk}, nil
	case protocol.ProtocolAnthropic:
		var ev protocol.AnthropicStreamEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("adaptor: decode anthropic event: %w", err)
		}
		return AnthropicEventToOpenAIChunks(&ev, state), nil
	case protocol.ProtocolGemini:
		var chunk protocol.GenerateContentResponse
		if err := json.Unmarshal(data, &chunk); err != nil {
			return nil, fmt.Errorf("adaptor: decode gemini chunk: %w", err)
		}
		return GeminiChunkToOpenAIChunks(&chunk, state), nil
	case protocol.ProtocolOpenAIResponses:
		return ResponsesEventToOpenAIChunks(data, state)
	default:
		return nil, fmt.Errorf("adaptor: no stream converter for protocol %q", from)
	}
}
