package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type location struct {
	Lat float64 `json:"lat"`
}

type weatherArgs struct {
	City   string   `json:"city" description:"City name"`
	Days   *int     `json:"days"`
	Units  string   `json:"units,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	Where  location `json:"where,omitempty"`
	Skip   string   `json:"-"`
	hidden bool
}

func TestSchemaOf(t *testing.T) {
	schema := SchemaOf(&weatherArgs{})

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"city"}, schema["required"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, props, 5)
	assert.Equal(t, map[string]any{"type": "string", "description": "City name"}, props["city"])
	assert.Equal(t, map[string]any{"type": "integer"}, props["days"])
	assert.Equal(t, map[string]any{"type": "array", "items": map[string]any{"type": "string"}}, props["tags"])

	where, ok := props["where"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{"lat"}, where["required"])
}

func TestSchemaOf_NonStruct(t *testing.T) {
	assert.Equal(t, map[string]any{"type": "object", "properties": map[string]any{}}, SchemaOf(42))
	assert.Equal(t, map[string]any{"type": "object", "properties": map[string]any{}}, SchemaOf(nil))
}

func TestNewFunctionTool(t *testing.T) {
	raw := map[string]any{"type": "object"}
	tool := NewFunctionTool("weather", "Get the weather", raw)
	assert.Equal(t, "function", tool.Type)
	assert.Equal(t, "weather", tool.Function.Name)
	assert.Equal(t, raw, tool.Function.Parameters)

	tool = NewFunctionTool("weather", "Get the weather", weatherArgs{})
	assert.Equal(t, []string{"city"}, tool.Function.Parameters["required"])
}
