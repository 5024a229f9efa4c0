package openai

import (
	"context"

	"github.com/hupe1980/modelmesh/logging"
	"github.com/hupe1980/modelmesh/model"
)

// ModelOptions configure the chat completions and responses adapters.
// Zero values leave the parameter to the API default.
type ModelOptions struct {
	Temperature         *float64
	MaxCompletionTokens int64
	// Provider is reported through Info().Provider ("openai" or "azure").
	Provider string
	Logger   logging.Logger
}

func newModelOptions(optFns []func(o *ModelOptions)) ModelOptions {
	opts := ModelOptions{
		Provider: string(KindStandard),
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return opts
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) func(o *ModelOptions) {
	return func(o *ModelOptions) { o.Temperature = &t }
}

// WithMaxCompletionTokens caps the number of generated tokens.
func WithMaxCompletionTokens(n int64) func(o *ModelOptions) {
	return func(o *ModelOptions) { o.MaxCompletionTokens = n }
}

// send forwards resp unless ctx is done first.
func send(ctx context.Context, out chan<- model.Response, resp model.Response) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- resp:
		return nil
	}
}

func logUsage(logger logging.Logger, usage *model.TokenUsage) {
	if usage == nil {
		return
	}
	logger.Debug("token usage",
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"total_tokens", usage.TotalTokens)
}
