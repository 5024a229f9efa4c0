// Package modelmesh provides a high-level façade over the provider packages.
// Most applications interact with this package by:
//  1. Optionally setting process wide defaults (openai.SetDefaultAzureEndpoint, ...)
//  2. Creating a provider via New(), overriding per-backend options as needed
//  3. Resolving models by name: "gpt-4o", "openai/gpt-4o-mini" or
//     "anthropic/claude-3-5-sonnet-20241022"
//
// Clients are built lazily on the first model request, so constructing the
// façade never fails for missing credentials of a backend that is never used.
package modelmesh

import (
	"github.com/hupe1980/modelmesh/logging"
	"github.com/hupe1980/modelmesh/model"
	"github.com/hupe1980/modelmesh/model/anthropic"
	"github.com/hupe1980/modelmesh/model/multi"
	"github.com/hupe1980/modelmesh/model/openai"
)

// AnthropicPrefix routes model names to the Anthropic provider.
const AnthropicPrefix = "anthropic"

// Options configures the façade.
type Options struct {
	// OpenAI options for the default (unprefixed) provider.
	OpenAI []func(o *openai.ProviderOptions)
	// Anthropic options for names prefixed with "anthropic/".
	Anthropic []func(o *anthropic.ProviderOptions)
	// Extra providers keyed by prefix.
	Providers map[string]model.Provider

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// New creates a provider routing unprefixed names to OpenAI / Azure OpenAI and
// "anthropic/..." names to Anthropic. Configuration conflicts are reported here.
func New(optFns ...func(o *Options)) (*multi.Provider, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	oa, err := openai.NewProvider(append([]func(o *openai.ProviderOptions){
		func(o *openai.ProviderOptions) { o.Logger = opts.Logger },
	}, opts.OpenAI...)...)
	if err != nil {
		return nil, err
	}

	an, err := anthropic.NewProvider(append([]func(o *anthropic.ProviderOptions){
		func(o *anthropic.ProviderOptions) { o.Logger = opts.Logger },
	}, opts.Anthropic...)...)
	if err != nil {
		return nil, err
	}

	providers := map[string]model.Provider{AnthropicPrefix: an}
	for prefix, p := range opts.Providers {
		providers[prefix] = p
	}

	return multi.New(func(o *multi.Options) {
		o.Default = oa
		o.Providers = providers
		o.Logger = opts.Logger
	}), nil
}
