package obs

import "strings"

// modelCosts holds USD per million tokens (input, output), keyed by model
// id substring. First match wins, so specific entries precede family ones.
var modelCosts = []struct {
	substr string
	input  float64
	output float64
}{
	{"claude-opus-4", 15.0, 75.0},
	{"claude-sonnet-4", 3.0, 15.0},
	{"claude-haiku-4", 1.0, 5.0},
	{"claude-3-5-haiku", 0.8, 4.0},
	{"claude", 3.0, 15.0},
	{"gemini-2.5-pro", 1.25, 10.0},
	{"gemini-2.5-flash", 0.30, 2.50},
	{"gemini-2.0-flash", 0.10, 0.40},
	{"gemini", 0.30, 2.50},
	{"gpt-5", 1.25, 10.0},
	{"gpt-4.1", 2.0, 8.0},
	{"gpt-4o-mini", 0.15, 0.60},
	{"gpt-4o", 2.50, 10.0},
	{"o3", 2.0, 8.0},
	{"o1", 15.0, 60.0},
	{"qwen", 0.40, 1.20},
}

// EstimateCost returns the estimated USD cost of one request. Unknown
// models cost zero rather than guessing.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	lower := strings.ToLower(model)
	for _, c := range modelCosts {
		if strings.Contains(lower, c.substr) {
			return float64(inputTokens)*c.input/1e6 + float64(outputTokens)*c.output/1e6
		}
	}
	return 0
}
