package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/modelmesh/core"
	"github.com/hupe1980/modelmesh/logging"
	"github.com/hupe1980/modelmesh/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

// ResponsesModel wraps the Responses API behind model.Model.
type ResponsesModel struct {
	client *openai.Client
	name   string
	opts   ModelOptions
}

var _ model.Model = (*ResponsesModel)(nil)

// NewResponsesModel binds client and model name.
func NewResponsesModel(client *openai.Client, name string, optFns ...func(o *ModelOptions)) *ResponsesModel {
	return &ResponsesModel{client: client, name: name, opts: newModelOptions(optFns)}
}

// Name returns the model name sent with every request.
func (m *ResponsesModel) Name() string { return m.name }

// Client returns the bound client.
func (m *ResponsesModel) Client() *openai.Client { return m.client }

// Generate implements unified streaming / non-streaming generation.
func (m *ResponsesModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		logger := logging.With(m.opts.Logger, "call_id", core.NewID(), "model", m.name, "api", "responses")
		start := time.Now()
		params := m.buildParams(req)
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

// buildInput converts normalized contents into Responses input items. Tool
// results are emitted right after the call that produced them.
func buildInput(req model.Request) responses.ResponseInputParam {
	toolResponses, order := collectToolResponses(req)
	var items responses.ResponseInputParam
	for _, c := range req.Contents {
		switch c.Role {
		case core.RoleTool:
			continue
		case core.RoleSystem:
			items = append(items, messageItem(responses.EasyInputMessageRoleSystem, c.Text()))
		case core.RoleAssistant:
			if text := c.Text(); text != "" {
				items = append(items, messageItem(responses.EasyInputMessageRoleAssistant, text))
			}
			for _, fc := range c.FunctionCalls() {
				items = append(items, responses.ResponseInputItemUnionParam{
					OfFunctionCall: &responses.ResponseFunctionToolCallParam{
						CallID:    fc.ID,
						Name:      fc.Name,
						Arguments: fc.Arguments,
					},
				})
				if resp, ok := toolResponses[fc.ID]; ok {
					items = append(items, functionOutputItem(fc.ID, resp))
					delete(toolResponses, fc.ID)
				}
			}
		default:
			if text := c.Text(); text != "" {
				items = append(items, messageItem(responses.EasyInputMessageRoleUser, text))
			}
		}
	}
	for _, id := range order {
		if resp, ok := toolResponses[id]; ok {
			items = append(items, functionOutputItem(id, resp))
		}
	}
	return items
}

func messageItem(role responses.EasyInputMessageRole, text string) responses.ResponseInputItemUnionParam {
	return responses.ResponseInputItemUnionParam{
		OfMessage: &responses.EasyInputMessageParam{
			Role:    role,
			Content: responses.EasyInputMessageContentUnionParam{OfString: openai.String(text)},
		},
	}
}

func functionOutputItem(callID, output string) responses.ResponseInputItemUnionParam {
	return responses.ResponseInputItemUnionParam{
		OfFunctionCallOutput: &responses.ResponseInputItemFunctionCallOutputParam{
			CallID: callID,
			Output: output,
		},
	}
}

func (m *ResponsesModel) buildParams(req model.Request) responses.ResponseNewParams {
	params := responses.ResponseNewParams{
		Model: m.name,
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: buildInput(req)},
	}
	if req.Instructions != "" {
		params.Instructions = openai.String(req.Instructions)
	}
	if m.opts.Temperature != nil {
		params.Temperature = openai.Float(*m.opts.Temperature)
	}
	if m.opts.MaxCompletionTokens > 0 {
		params.MaxOutputTokens = openai.Int(m.opts.MaxCompletionTokens)
	}
	if len(req.Tools) == 0 {
		return params
	}
	tools := make([]responses.ToolUnionParam, len(req.Tools))
	for i, tdef := range req.Tools {
		tools[i] = responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        tdef.Function.Name,
				Description: openai.String(tdef.Function.Description),
				Parameters:  tdef.Function.Parameters,
				Strict:      openai.Bool(false),
			},
		}
	}
	params.Tools = tools
	return params
}

func (m *ResponsesModel) handleNonStreaming(
	ctx context.Context,
	params responses.ResponseNewParams,
	out chan<- model.Response,
	logger logging.Logger,
) error {
	resp, err := m.client.Responses.New(ctx, params)
	if err != nil {
		return fmt.Errorf("openai api error: %w", err)
	}
	final := convertResponse(resp)
	logUsage(logger, final.Usage)
	return send(ctx, out, final)
}

func (m *ResponsesModel) handleStreaming(
	ctx context.Context,
	params responses.ResponseNewParams,
	out chan<- model.Response,
	logger logging.Logger,
) error {
	stream := m.client.Responses.NewStreaming(ctx, params)
	defer stream.Close()
	for stream.Next() {
		ev := stream.Current()
		switch ev.Type {
		case "response.output_text.delta":
			delta := ev.AsResponseOutputTextDelta()
			if delta.Delta == "" {
				continue
			}
			err := send(ctx, out, model.Response{
				Partial: true,
				Content: core.NewTextContent(core.RoleAssistant, delta.Delta),
			})
			if err != nil {
				return err
			}
		case "response.completed":
			completed := ev.AsResponseCompleted()
			final := convertResponse(&completed.Response)
			logUsage(logger, final.Usage)
			if err := send(ctx, out, final); err != nil {
				return err
			}
		case "response.failed", "error":
			return fmt.Errorf("openai streaming error: %s: %s", ev.Type, ev.RawJSON())
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("openai streaming error: %w", err)
	}
	return nil
}

// convertResponse maps a final Responses API result onto a model.Response.
func convertResponse(resp *responses.Response) model.Response {
	var parts []core.Part
	if text := resp.OutputText(); text != "" {
		parts = append(parts, core.TextPart{Text: text})
	}
	finishReason := "stop"
	for _, item := range resp.Output {
		if item.Type != "function_call" {
			continue
		}
		fc := item.AsFunctionCall()
		parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        fc.CallID,
			Name:      fc.Name,
			Arguments: fc.Arguments,
		}})
		finishReason = "tool_calls"
	}
	if resp.Status == "incomplete" {
		finishReason = "length"
	}
	return model.Response{
		ID:           resp.ID,
		Partial:      false,
		Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
		FinishReason: finishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
}

// Info returns metadata describing this model.
func (m *ResponsesModel) Info() model.Info {
	return model.Info{
		Name:          m.name,
		Provider:      m.opts.Provider,
		SupportsTools: true,
	}
}
