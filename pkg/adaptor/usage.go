package adaptor

import "github.com/polygate-dev/polygate/internal/protocol"

// usageFromAnthropic maps Anthropic usage into OpenAI accounting.
func usageFromAnthropic(u protocol.AnthropicUsage) *protocol.ChatUsage {
	out := &protocol.ChatUsage{
		PromptTokens:     u.InputTokens,
		CompletionTokens: u.OutputTokens,
		TotalTokens:      u.InputTokens + u.OutputTokens,
	}
	if u.CacheReadInputTokens > 0 {
		out.PromptTokensDetails = &protocol.PromptTokensDetails{CachedTokens: u.CacheReadInputTokens}
	}
	return out
}

// usageToAnthropic maps OpenAI usage into Anthropic accounting.
func usageToAnthropic(u *protocol.ChatUsage) protocol.AnthropicUsage {
	if u == nil {
		return protocol.AnthropicUsage{}
	}
	out := protocol.AnthropicUsage{
		InputTokens:  u.PromptTokens,
		OutputTokens: u.CompletionTokens,
	}
	if u.PromptTokensDetails != nil {
		out.CacheReadInputTokens = u.PromptTokensDetails.CachedTokens
	}
	return out
}

// usageFromGemini maps Gemini usage metadata into OpenAI accounting.
func usageFromGemini(u *protocol.GeminiUsageMetadata) *protocol.ChatUsage {
	if u == nil {
		return nil
	}
	total := u.TotalTokenCount
	if total == 0 {
		total = u.PromptTokenCount + u.CandidatesTokenCount
	}
	out := &protocol.ChatUsage{
		PromptTokens:     u.PromptTokenCount,
		CompletionTokens: u.CandidatesTokenCount,
		TotalTokens:      total,
	}
	if u.CachedContentTokenCount > 0 {
		out.PromptTokensDetails = &protocol.PromptTokensDetails{CachedTokens: u.CachedContentTokenCount}
	}
	if u.ThoughtsTokenCount > 0 {
		out.CompletionTokensDetails = &protocol.CompletionTokensDetails{ReasoningTokens: u.ThoughtsTokenCount}
	}
	return out
}

// usageToGemini maps OpenAI usage into Gemini usage metadata.
func usageToGemini(u *protocol.ChatUsage) *protocol.GeminiUsageMetadata {
	if u == nil {
		return nil
	}
	out := &protocol.GeminiUsageMetadata{
		PromptTokenCount:     u.PromptTokens,
		CandidatesTokenCount: u.CompletionTokens,
		TotalTokenCount:      u.TotalTokens,
	}
	if u.PromptTokensDetails != nil {
		out.CachedContentTokenCount = u.PromptTokensDetails.CachedTokens
	}
	if u.CompletionTokensDetails != nil {
		out.ThoughtsTokenCount = u.CompletionTokensDetails.ReasoningTokens
	}
	return out
}

// usageFromResponses maps Responses usage into OpenAI accounting.
func usageFromResponses(u *protocol.ResponsesUsage) *protocol.ChatUsage {
	if u == nil {
		return nil
	}
	out := &protocol.ChatUsage{
		PromptTokens:     u.InputTokens,
		CompletionTokens: u.OutputTokens,
		TotalTokens:      u.TotalTokens,
	}
	if u.InputTokensDetails != nil && u.InputTokensDetails.CachedTokens > 0 {
		out.PromptTokensDetails = &protocol.PromptTokensDetails{CachedTokens: u.InputTokensDetails.CachedTokens}
	}
	if u.OutputTokensDetails != nil && u.OutputTokensDetails.ReasoningTokens > 0 {
		out.CompletionTokensDetails = &protocol.CompletionTokensDetails{ReasoningTokens: u.OutputTokensDetails.ReasoningTokens}
	}
	return out
}

// usageToResponses maps OpenAI usage into Responses accounting.
func usageToResponses(u *protocol.ChatUsage) *protocol.ResponsesUsage {
	if u == nil {
		return nil
	}
	out := &protocol.ResponsesUsage{
		InputTokens:  u.PromptTokens,
		OutputTokens: u.CompletionTokens,
		TotalTokens:  u.TotalTokens,
	}
	if u.PromptTokensDetails != nil {
		out.InputTokensDetails = &protocol.ResponsesInputTokensDet{CachedTokens: u.PromptTokensDetails.CachedTokens}
	}
	if u.CompletionTokensDetails != nil {
		out.OutputTokensDetails = &protocol.ResponsesOutputTokensDet{ReasoningTokens: u.CompletionTokensDetails.ReasoningTokens}
	}
	return out
}
