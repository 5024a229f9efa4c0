package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/modelmesh/core"
	"github.com/hupe1980/modelmesh/logging"
	"github.com/hupe1980/modelmesh/model"
	"github.com/openai/openai-go"
)

// aggCall aggregates partial tool call streaming deltas (id, name, arguments)
// allowing reconstruction of complete function call parts when finish reason
// is emitted.
type aggCall struct{ id, name, args string }

// ChatCompletionsModel wraps the Chat Completions API behind model.Model.
type ChatCompletionsModel struct {
	client *openai.Client
	name   string
	opts   ModelOptions
}

var _ model.Model = (*ChatCompletionsModel)(nil)

// NewChatCompletionsModel binds client and model name.
func NewChatCompletionsModel(client *openai.Client, name string, optFns ...func(o *ModelOptions)) *ChatCompletionsModel {
	return &ChatCompletionsModel{client: client, name: name, opts: newModelOptions(optFns)}
}

// Name returns the model name sent with every request.
func (m *ChatCompletionsModel) Name() string { return m.name }

// Client returns the bound client.
func (m *ChatCompletionsModel) Client() *openai.Client { return m.client }

// Generate implements unified streaming / non-streaming generation.
func (m *ChatCompletionsModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		logger := logging.With(m.opts.Logger, "call_id", core.NewID(), "model", m.name, "api", "chat_completions")
		start := time.Now()
		params := m.buildParams(req, buildMessages(req))
		var err error
		if req.Stream {
			err = m.handleStreaming(ctx, params, out, logger)
		} else {
			err = m.handleNonStreaming(ctx, params, out, logger)
		}
		if err != nil {
			logger.Error("LLM call failed", "duration", time.Since(start), "error", err)
			errCh <- err
			return
		}
		logger.Debug("LLM call completed", "duration", time.Since(start), "stream", req.Stream)
	}()
	return out, errCh
}

// collectToolResponses indexes tool (function) responses by id preserving first-seen order.
func collectToolResponses(req model.Request) (map[string]string, []string) {
	responses := map[string]string{}
	order := []string{}
	for _, c := range req.Contents {
		if c.Role != core.RoleTool {
			continue
		}
		for _, fr := range c.FunctionResponses() {
			if fr.ID == "" {
				continue
			}
			if _, exists := responses[fr.ID]; exists {
				continue
			}
			responses[fr.ID] = fr.Text()
			order = append(order, fr.ID)
		}
	}
	return responses, order
}

// buildMessages converts normalized contents into chat messages while
// attaching matching tool responses immediately after assistant tool calls.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	toolResponses, order := collectToolResponses(req)
	var messages []openai.ChatCompletionMessageParamUnion
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, c := range req.Contents {
		if c.Role == core.RoleTool {
			continue
		}
		text := c.Text()
		switch c.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(text))
		case core.RoleUser:
			messages = append(messages, openai.UserMessage(text))
		case core.RoleAssistant:
			toolCalls, callIDs := extractToolCalls(c)
			if len(toolCalls) == 0 {
				messages = append(messages, openai.AssistantMessage(text))
				continue
			}
			messages = append(
				messages,
				openai.ChatCompletionMessageParamUnion{OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: toolCalls,
				}},
			)
			for _, id := range callIDs {
				if resp, ok := toolResponses[id]; ok {
					messages = append(messages, openai.ToolMessage(resp, id))
					delete(toolResponses, id)
				}
			}
		default:
			if text != "" {
				messages = append(messages, openai.UserMessage(text))
			}
		}
	}
	for _, id := range order {
		if resp, ok := toolResponses[id]; ok {
			messages = append(messages, openai.ToolMessage(resp, id))
		}
	}
	return messages
}

// extractToolCalls extracts tool call parts and returns chat formatted tool calls + ordered IDs.
func extractToolCalls(c core.Content) ([]openai.ChatCompletionMessageToolCallParam, []string) {
	var toolCalls []openai.ChatCompletionMessageToolCallParam
	var callIDs []string
	for _, fc := range c.FunctionCalls() {
		toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
			ID:   fc.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      fc.Name,
				Arguments: fc.Arguments,
			},
		})
		if fc.ID != "" {
			callIDs = append(callIDs, fc.ID)
		}
	}
	return toolCalls, callIDs
}

// buildParams assembles the request parameters including tool definitions.
func (m *ChatCompletionsModel) buildParams(
	req model.Request,
	messages []openai.ChatCompletionMessageParamUnion,
) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    m.name,
	}
	if m.opts.Temperature != nil {
		params.Temperature = openai.Float(*m.opts.Temperature)
	}
	if m.opts.MaxCompletionTokens > 0 {
		params.MaxCompletionTokens = openai.Int(m.opts.MaxCompletionTokens)
	}
	if len(req.Tools) == 0 {
		return params
	}
	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, tdef := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Function.Name,
				Description: openai.String(tdef.Function.Description),
				Parameters:  tdef.Function.Parameters,
			},
		}
	}
	params.Tools = tools
	return params
}

// handleStreaming processes streaming responses and forwards partial / final events.
func (m *ChatCompletionsModel) handleStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	logger logging.Logger,
) error {
	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()
	var textBuilder strings.Builder
	toolAgg := map[int64]*aggCall{}
	var toolOrder []int64
	for stream.Next() {
		ck := stream.Current()
		if ck.Usage.TotalTokens > 0 {
			logUsage(logger, &model.TokenUsage{
				PromptTokens:     int(ck.Usage.PromptTokens),
				CompletionTokens: int(ck.Usage.CompletionTokens),
				TotalTokens:      int(ck.Usage.TotalTokens),
			})
		}
		for _, ch := range ck.Choices {
			if err := emitTextDelta(ctx, ck.ID, ch, &textBuilder, out); err != nil {
				return err
			}
			var err error
			if toolOrder, err = emitToolCallDeltas(ctx, ck.ID, ch, toolAgg, toolOrder, out); err != nil {
				return err
			}
			if ch.FinishReason != "" {
				if err := emitFinalChunk(ctx, ck.ID, ch.FinishReason, &textBuilder, toolAgg, toolOrder, out); err != nil {
					return err
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("openai streaming error: %w", err)
	}
	return nil
}

func emitTextDelta(
	ctx context.Context,
	id string,
	ch openai.ChatCompletionChunkChoice,
	builder *strings.Builder,
	out chan<- model.Response,
) error {
	if ch.Delta.Content == "" {
		return nil
	}
	builder.WriteString(ch.Delta.Content)
	return send(ctx, out, model.Response{
		ID:      id,
		Partial: true,
		Content: core.NewTextContent(core.RoleAssistant, ch.Delta.Content),
	})
}

func emitToolCallDeltas(
	ctx context.Context,
	id string,
	ch openai.ChatCompletionChunkChoice,
	agg map[int64]*aggCall,
	order []int64,
	out chan<- model.Response,
) ([]int64, error) {
	for _, tc := range ch.Delta.ToolCalls {
		ac, ok := agg[tc.Index]
		if !ok {
			ac = &aggCall{}
			agg[tc.Index] = ac
			order = append(order, tc.Index)
		}
		if tc.ID != "" {
			ac.id = tc.ID
		}
		if tc.Function.Name != "" {
			ac.name = tc.Function.Name
		}
		if tc.Function.Arguments != "" {
			ac.args += tc.Function.Arguments
		}
		err := send(ctx, out, model.Response{
			ID:      id,
			Partial: true,
			Content: core.Content{
				Role: core.RoleAssistant,
				Parts: []core.Part{core.FunctionCallPart{FunctionCall: core.FunctionCall{
					ID:        ac.id,
					Name:      ac.name,
					Arguments: ac.args,
				}}},
			},
		})
		if err != nil {
			return order, err
		}
	}
	return order, nil
}

func emitFinalChunk(
	ctx context.Context,
	id string,
	finishReason string,
	builder *strings.Builder,
	toolAgg map[int64]*aggCall,
	order []int64,
	out chan<- model.Response,
) error {
	finalParts := make([]core.Part, 0, len(toolAgg)+1)
	if builder.Len() > 0 {
		finalParts = append(finalParts, core.TextPart{Text: builder.String()})
	}
	for _, idx := range order {
		ac := toolAgg[idx]
		finalParts = append(finalParts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        ac.id,
			Name:      ac.name,
			Arguments: ac.args,
		}})
	}
	return send(ctx, out, model.Response{
		ID:           id,
		Partial:      false,
		Content:      core.Content{Role: core.RoleAssistant, Parts: finalParts},
		FinishReason: finishReason,
	})
}

// handleNonStreaming processes a normal (non-streaming) completion.
func (m *ChatCompletionsModel) handleNonStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	logger logging.Logger,
) error {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("no choices returned")
	}
	ch0 := resp.Choices[0]
	parts := make([]core.Part, 0, len(ch0.Message.ToolCalls)+1)
	if ch0.Message.Content != "" {
		parts = append(parts, core.TextPart{Text: ch0.Message.Content})
	}
	for _, tc := range ch0.Message.ToolCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}})
	}
	usage := &model.TokenUsage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	logUsage(logger, usage)
	return send(ctx, out, model.Response{
		ID:           resp.ID,
		Partial:      false,
		Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
		FinishReason: ch0.FinishReason,
		Usage:        usage,
	})
}

// Info returns metadata describing this model.
func (m *ChatCompletionsModel) Info() model.Info {
	return model.Info{
		Name:          m.name,
		Provider:      m.opts.Provider,
		SupportsTools: true,
	}
}
