// Package multi routes model names to providers by prefix, e.g.
// "anthropic/claude-3-5-sonnet-20241022" or "openai/gpt-4o". Unprefixed names
// and unknown prefixes go to the default provider unchanged.
package multi

import (
	"strings"
	"sync"

	"github.com/hupe1980/modelmesh/logging"
	"github.com/hupe1980/modelmesh/model"
	"github.com/hupe1980/modelmesh/model/openai"
)

// DefaultPrefix addresses the default provider explicitly.
const DefaultPrefix = "openai"

// Options configure a Provider.
type Options struct {
	// Default serves unprefixed names. Nil means an openai.Provider built
	// from the process wide defaults on first use.
	Default model.Provider

	// Providers maps a prefix to the provider serving it.
	Providers map[string]model.Provider

	Logger logging.Logger
}

// Provider dispatches Model calls by name prefix.
type Provider struct {
	opts   Options
	logger logging.Logger

	mu sync.Mutex
}

var _ model.Provider = (*Provider)(nil)

// New creates a Provider.
func New(optFns ...func(o *Options)) *Provider {
	opts := Options{Providers: map[string]model.Provider{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Provider{opts: opts, logger: logger}
}

// Register adds or replaces the provider for prefix.
func (p *Provider) Register(prefix string, provider model.Provider) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.opts.Providers == nil {
		p.opts.Providers = map[string]model.Provider{}
	}
	p.opts.Providers[prefix] = provider
}

// Model resolves name to a model of the matching provider.
func (p *Provider) Model(name string) (model.Model, error) {
	prefix, rest, found := strings.Cut(name, "/")
	if found {
		p.mu.Lock()
		provider, ok := p.opts.Providers[prefix]
		p.mu.Unlock()
		if ok {
			p.logger.Debug("routing model", "prefix", prefix, "model", rest)
			return provider.Model(rest)
		}
		if prefix == DefaultPrefix {
			name = rest
		}
	}

	provider, err := p.defaultProvider()
	if err != nil {
		return nil, err
	}
	return provider.Model(name)
}

func (p *Provider) defaultProvider() (model.Provider, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.opts.Default != nil {
		return p.opts.Default, nil
	}
	provider, err := openai.NewProvider(func(o *openai.ProviderOptions) { o.Logger = p.logger })
	if err != nil {
		return nil, err
	}
	p.opts.Default = provider
	return provider, nil
}
