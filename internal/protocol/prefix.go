package protocol

import "strings"

// displayPrefixes maps a provider kind to the bracketed tag shown in model
// lists. The tag is also accepted on inbound model names to force dispatch
// to that kind.
var displayPrefixes = map[string]string{
	KindGeminiCLIOAuth:  "[Gemini CLI]",
	KindClaudeKiroOAuth: "[Kiro]",
	KindClaudeCustom:    "[Claude]",
	KindOpenAICustom:    "[OpenAI]",
	KindOpenAIResponses: "[OpenAI Responses]",
	KindOpenAIQwenOAuth: "[Qwen CLI]",
	KindGeminiAntigrav:  "[Antigravity]",
}

// DisplayPrefix returns the bracketed display tag for a kind, or "".
func DisplayPrefix(kind string) string {
	return displayPrefixes[kind]
}

// PrefixModel attaches the kind's display tag to a model id for listing.
func PrefixModel(kind, model string) string {
	prefix := displayPrefixes[kind]
	if prefix == "" {
		return model
	}
	return prefix + " " + model
}

// StripModelPrefix removes a leading display tag from a model name. It
// returns the cleaned model name and the kind the tag denotes ("" when no
// known tag is present).
func StripModelPrefix(model string) (string, string) {
	trimmed := strings.TrimSpace(model)
	if !strings.HasPrefix(trimmed, "[") {
		return trimmed, ""
	}
	for kind, prefix := range displayPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.TrimSpace(trimmed[len(prefix):]), kind
		}
	}
	// Unknown bracket tag: drop it so upstreams never see it.
	if i := strings.Index(trimmed, "]"); i >= 0 {
		return strings.TrimSpace(trimmed[i+1:]), ""
	}
	return trimmed, ""
}

// ClassifyModelKind guesses a provider kind from a bare model name. Used
// when the request carries no display tag and no path override.
func ClassifyModelKind(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "claude"), strings.Contains(m, "sonnet"),
		strings.Contains(m, "opus"), strings.Contains(m, "haiku"):
		return KindClaudeCustom
	case strings.Contains(m, "gemini"):
		return KindGeminiCLIOAuth
	case strings.Contains(m, "qwen"):
		return KindOpenAIQwenOAuth
	case strings.Contains(m, "gpt"), strings.HasPrefix(m, "o1"),
		strings.HasPrefix(m, "o3"):
		return KindOpenAICustom
	default:
		return ""
	}
}
