package adaptor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanGeminiSchema(t *testing.T) {
	in := json.RawMessage(`{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"city": {"type": "string", "default": "London", "description": "city name"},
			"days": {"type": "array", "items": {"type": "integer", "minimum": 1}}
		},
		"required": ["city"]
	}`)

	out := CleanGeminiSchema(in)
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {
			"city": {"type": "string", "description": "city name"},
			"days": {"type": "array", "items": {"type": "integer"}}
		},
		"required": ["city"]
	}`, string(out))
}

func TestCleanGeminiSchemaInvalidJSON(t *testing.T) {
	in := json.RawMessage(`not json`)
	assert.Equal(t, in, CleanGeminiSchema(in))
	assert.Empty(t, CleanGeminiSchema(nil))
}
