package testutil

import (
	"github.com/hupe1980/modelmesh/core"
	"github.com/hupe1980/modelmesh/model"
)

// RequestBuilder provides a fluent helper for constructing model requests in tests.
// Example:
//
//	req := NewRequestBuilder().Instructions("be brief").UserText("hi").Build()
//
// Chain only the parts you need.
type RequestBuilder struct {
	req model.Request
}

// NewRequestBuilder creates an empty builder.
func NewRequestBuilder() *RequestBuilder { return &RequestBuilder{} }

// Instructions sets the system level instructions (chainable).
func (b *RequestBuilder) Instructions(s string) *RequestBuilder { b.req.Instructions = s; return b }

// Stream enables streaming (chainable).
func (b *RequestBuilder) Stream() *RequestBuilder { b.req.Stream = true; return b }

// UserText appends a user turn (chainable).
func (b *RequestBuilder) UserText(text string) *RequestBuilder {
	b.req.Contents = append(b.req.Contents, core.NewUserText(text))
	return b
}

// AssistantText appends an assistant turn (chainable).
func (b *RequestBuilder) AssistantText(text string) *RequestBuilder {
	b.req.Contents = append(b.req.Contents, core.NewTextContent(core.RoleAssistant, text))
	return b
}

// AssistantCall appends an assistant turn requesting a function call (chainable).
func (b *RequestBuilder) AssistantCall(id, name, args string) *RequestBuilder {
	b.req.Contents = append(b.req.Contents, core.Content{
		Role:  core.RoleAssistant,
		Parts: []core.Part{core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: id, Name: name, Arguments: args}}},
	})
	return b
}

// ToolResult appends a tool turn answering call id (chainable).
func (b *RequestBuilder) ToolResult(id, name string, result any) *RequestBuilder {
	b.req.Contents = append(b.req.Contents, core.Content{
		Role:  core.RoleTool,
		Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: id, Name: name, Response: result}}},
	})
	return b
}

// Tool exposes a function tool with an object schema (chainable).
func (b *RequestBuilder) Tool(name, description string, properties map[string]any) *RequestBuilder {
	b.req.Tools = append(b.req.Tools, model.NewFunctionTool(name, description, map[string]any{"type": "object", "properties": properties}))
	return b
}

// Build returns the assembled request.
func (b *RequestBuilder) Build() model.Request { return b.req }
