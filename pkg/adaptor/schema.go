package adaptor

import "encoding/json"

// geminiSchemaKeywords are the only JSON-schema keywords Gemini accepts in
// function declarations. Everything else (additionalProperties, $schema,
// default, ...) is rejected with INVALID_ARGUMENT and must be stripped.
var geminiSchemaKeywords = map[string]bool{
	"type":        true,
	"description": true,
	"properties":  true,
	"required":    true,
	"enum":        true,
	"items":       true,
}

// CleanGeminiSchema strips unsupported JSON-schema keywords from a tool
// parameter schema, recursing into properties and items. Invalid JSON is
// returned unchanged.
func CleanGeminiSchema(schema json.RawMessage) json.RawMessage {
	if len(schema) == 0 {
		return schema
	}
	var node map[string]interface{}
	if err := json.Unmarshal(schema, &node); err != nil {
		return schema
	}
	cleaned := cleanSchemaNode(node)
	out, err := json.Marshal(cleaned)
	if err != nil {
		return schema
	}
	return out
}

func cleanSchemaNode(node map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(node))
	for k, v := range node {
		if !geminiSchemaKeywords[k] {
			continue
		}
		switch k {
		case "properties":
			if props, ok := v.(map[string]interface{}); ok {
				cleanedProps := make(map[string]interface{}, len(props))
				for name, sub := range props {
					if subMap, ok := sub.(map[string]interface{}); ok {
						cleanedProps[name] = cleanSchemaNode(subMap)
					} else {
						cleanedProps[name] = sub
					}
				}
				result[k] = cleanedProps
				continue
			}
			result[k] = v
		case "items":
			if subMap, ok := v.(map[string]interface{}); ok {
				result[k] = cleanSchemaNode(subMap)
				continue
			}
			result[k] = v
		default:
			result[k] = v
		}
	}
	return result
}
