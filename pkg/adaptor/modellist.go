package adaptor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/polygate-dev/polygate/internal/protocol"
)

// LabeledModel is one entry of the gateway's combined model list: a model id
// plus the provider kind it came from. The kind decides the display prefix
// and the dispatch target when the labeled name comes back on a request.
type LabeledModel struct {
	Kind string
	Info protocol.ModelInfo
}

// ModelsToOpenAIList renders the combined list in the GET /v1/models shape.
// Model ids carry the kind's display prefix.
func ModelsToOpenAIList(models []LabeledModel) *protocol.ChatModelList {
	out := &protocol.ChatModelList{Object: "list"}
	for _, m := range models {
		created := m.Info.Created
		if created == 0 {
			created = time.Now().Unix()
		}
		ownedBy := m.Info.OwnedBy
		if ownedBy == "" {
			ownedBy = m.Kind
		}
		out.Data = append(out.Data, protocol.ChatModel{
			ID:      protocol.PrefixModel(m.Kind, m.Info.ID),
			Object:  "model",
			Created: created,
			OwnedBy: ownedBy,
		})
	}
	if out.Data == nil {
		out.Data = []protocol.ChatModel{}
	}
	return out
}

// ModelsToGeminiList renders the combined list in the GET /v1beta/models
// shape. Gemini names carry the "models/" resource prefix.
func ModelsToGeminiList(models []LabeledModel) *protocol.GeminiModelList {
	out := &protocol.GeminiModelList{}
	for _, m := range models {
		display := m.Info.DisplayName
		if display == "" {
			display = m.Info.ID
		}
		out.Models = append(out.Models, protocol.GeminiModel{
			Name:                       "models/" + protocol.PrefixModel(m.Kind, m.Info.ID),
			DisplayName:                display,
			Description:                m.Info.Description,
			Version:                    m.Info.Version,
			InputTokenLimit:            m.Info.InputTokenLimit,
			OutputTokenLimit:           m.Info.OutputTokenLimit,
			SupportedGenerationMethods: []string{"generateContent", "streamGenerateContent"},
		})
	}
	if out.Models == nil {
		out.Models = []protocol.GeminiModel{}
	}
	return out
}

// ModelsToAnthropicList renders the combined list in the Anthropic
// GET /v1/models shape.
func ModelsToAnthropicList(models []LabeledModel) *protocol.AnthropicModelList {
	out := &protocol.AnthropicModelList{}
	for _, m := range models {
		display := m.Info.DisplayName
		if display == "" {
			display = m.Info.ID
		}
		out.Data = append(out.Data, protocol.AnthropicModel{
			Type:        "model",
			ID:          protocol.PrefixModel(m.Kind, m.Info.ID),
			DisplayName: display,
		})
	}
	if out.Data == nil {
		out.Data = []protocol.AnthropicModel{}
	}
	if n := len(out.Data); n > 0 {
		out.FirstID = &out.Data[0].ID
		out.LastID = &out.Data[n-1].ID
	}
	return out
}

// ModelsToOllamaTags renders the combined list in the GET /api/tags shape.
// Family is always "Ollama"; see OllamaModelDetails.
func ModelsToOllamaTags(models []LabeledModel) *protocol.OllamaTagsResponse {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	out := &protocol.OllamaTagsResponse{}
	for _, m := range models {
		name := protocol.PrefixModel(m.Kind, m.Info.ID)
		out.Models = append(out.Models, protocol.OllamaTagModel{
			Name:       name,
			Model:      name,
			ModifiedAt: now,
			Size:       0,
			Digest:     fmt.Sprintf("%x", len(name)),
			Details: protocol.OllamaModelDetails{
				Format:            "gguf",
				Family:            "Ollama",
				Families:          []string{"Ollama"},
				ParameterSize:     "0B",
				QuantizationLevel: "none",
			},
		})
	}
	if out.Models == nil {
		out.Models = []protocol.OllamaTagModel{}
	}
	return out
}

// modelLimits are the synthesized context/output windows for /api/show,
// keyed by substrings of the cleaned model id.
var modelLimits = []struct {
	substr     string
	numCtx     int
	numPredict int
}{
	{"claude-sonnet-4", 200000, 64000},
	{"claude-opus-4", 200000, 32000},
	{"claude-haiku-4", 200000, 64000},
	{"claude", 200000, 8192},
	{"gemini-2.5-pro", 1048576, 65536},
	{"gemini-2.5-flash", 1048576, 65536},
	{"gemini", 1048576, 8192},
	{"gpt-5", 400000, 128000},
	{"gpt-4.1", 1047576, 32768},
	{"gpt-4o", 128000, 16384},
	{"gpt-4", 128000, 4096},
	{"o3", 200000, 100000},
	{"o1", 200000, 100000},
	{"qwen", 262144, 65536},
}

// ModelContextWindow returns the synthesized (num_ctx, num_predict) pair for
// a cleaned model id.
func ModelContextWindow(model string) (int, int) {
	lower := strings.ToLower(model)
	for _, band := range modelLimits {
		if strings.Contains(lower, band.substr) {
			return band.numCtx, band.numPredict
		}
	}
	return 128000, 8192
}

// SynthesizeOllamaShow builds a plausible POST /api/show response for a
// labeled model name. Ollama clients read general.architecture and the
// context_length key to size their prompts.
func SynthesizeOllamaShow(name string) *protocol.OllamaShowResponse {
	clean, _ := protocol.StripModelPrefix(name)
	numCtx, numPredict := ModelContextWindow(clean)
	modelfile := fmt.Sprintf("# Modelfile generated by polygate\nFROM %s\nPARAMETER num_ctx %d\nPARAMETER num_predict %d\n", clean, numCtx, numPredict)
	return &protocol.OllamaShowResponse{
		Modelfile:  modelfile,
		Parameters: fmt.Sprintf("num_ctx %d\nnum_predict %d", numCtx, numPredict),
		Template:   "{{ .Prompt }}",
		Details: protocol.OllamaModelDetails{
			Format:            "gguf",
			Family:            "Ollama",
			Families:          []string{"Ollama"},
			ParameterSize:     "0B",
			QuantizationLevel: "none",
		},
		ModelInfo: map[string]any{
			"general.architecture":  "Ollama",
			"Ollama.context_length": numCtx,
			"limits.num_ctx":        numCtx,
			"limits.num_predict":    numPredict,
		},
	}
}

// ParseOpenAIModelList decodes a GET /v1/models body into neutral entries.
func ParseOpenAIModelList(body []byte) ([]protocol.ModelInfo, error) {
	var list protocol.ChatModelList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("adaptor: decode openai model list: %w", err)
	}
	out := make([]protocol.ModelInfo, 0, len(list.Data))
	for _, m := range list.Data {
		out = append(out, protocol.ModelInfo{ID: m.ID, Created: m.Created, OwnedBy: m.OwnedBy})
	}
	return out, nil
}

// ParseGeminiModelList decodes a GET /v1beta/models body into neutral
// entries, dropping the "models/" resource prefix.
func ParseGeminiModelList(body []byte) ([]protocol.ModelInfo, error) {
	var list protocol.GeminiModelList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("adaptor: decode gemini model list: %w", err)
	}
	out := make([]protocol.ModelInfo, 0, len(list.Models))
	for _, m := range list.Models {
		out = append(out, protocol.ModelInfo{
			ID:               strings.TrimPrefix(m.Name, "models/"),
			DisplayName:      m.DisplayName,
			Description:      m.Description,
			Version:          m.Version,
			InputTokenLimit:  m.InputTokenLimit,
			OutputTokenLimit: m.OutputTokenLimit,
		})
	}
	return out, nil
}

// ParseAnthropicModelList decodes an Anthropic GET /v1/models body into
// neutral entries.
func ParseAnthropicModelList(body []byte) ([]protocol.ModelInfo, error) {
	var list protocol.AnthropicModelList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("adaptor: decode anthropic model list: %w", err)
	}
	out := make([]protocol.ModelInfo, 0, len(list.Data))
	for _, m := range list.Data {
		out = append(out, protocol.ModelInfo{ID: m.ID, DisplayName: m.DisplayName})
	}
	return out, nil
}
