// Package token estimates token counts for requests and streamed output
// when the upstream omits usage accounting.
package token

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/polygate-dev/polygate/internal/protocol"
)

var (
	encOnce sync.Once
	enc     tokenizer.Codec
)

// codec returns the shared O200kBase codec; GPT-4o-era models and the rough
// estimates the gateway needs are all fine with one encoding.
func codec() tokenizer.Codec {
	encOnce.Do(func() {
		enc, _ = tokenizer.Get(tokenizer.O200kBase)
	})
	return enc
}

// Count returns the token count of text, falling back to len/4 when the
// tokenizer is unavailable.
func Count(text string) int {
	c := codec()
	if c == nil {
		return len(text) / 4
	}
	ids, _, err := c.Encode(text)
	if err != nil {
		return len(text) / 4
	}
	return len(ids)
}

// EstimateInputTokens estimates prompt tokens of a Chat Completions request.
func EstimateInputTokens(req *protocol.ChatCompletionRequest) int {
	total := 3 // request framing overhead
	for _, msg := range req.Messages {
		total += Count(msg.Role)
		total += Count(msg.Content.AsText())
		for _, tc := range msg.ToolCalls {
			total += Count(tc.Function.Name)
			total += Count(tc.Function.Arguments)
		}
	}
	for _, tool := range req.Tools {
		total += Count(tool.Function.Name)
		total += Count(tool.Function.Description)
		total += Count(string(tool.Function.Parameters))
	}
	return total
}

// EstimateOutputTokens estimates completion tokens from accumulated text.
func EstimateOutputTokens(content string) int {
	if content == "" {
		return 0
	}
	return Count(content)
}
