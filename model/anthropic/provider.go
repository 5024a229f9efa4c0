package anthropic

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/modelmesh/internal/httpclient"
	"github.com/hupe1980/modelmesh/logging"
	"github.com/hupe1980/modelmesh/model"
)

// DefaultModel is used when Model is called without a name.
const DefaultModel = string(anthropic.ModelClaude3_5Sonnet20241022)

var (
	// ErrConfigurationConflict is matched by ConfigurationConflictError.
	ErrConfigurationConflict = errors.New("anthropic: conflicting provider configuration")

	// ErrMissingAPIKey is returned when no API key is configured anywhere.
	ErrMissingAPIKey = errors.New("anthropic: missing api key (set it explicitly or via ANTHROPIC_API_KEY)")
)

// ConfigurationConflictError is returned by NewProvider when a pre-built
// client is combined with connection settings.
type ConfigurationConflictError struct {
	// Fields lists the conflicting option names.
	Fields []string
}

func (e *ConfigurationConflictError) Error() string {
	return fmt.Sprintf("anthropic: do not set %s when providing a client", strings.Join(e.Fields, ", "))
}

// Is reports whether target is ErrConfigurationConflict.
func (e *ConfigurationConflictError) Is(target error) bool { return target == ErrConfigurationConflict }

// ProviderOptions configure a Provider. Client excludes APIKey and BaseURL.
type ProviderOptions struct {
	Client  *anthropic.Client
	APIKey  string
	BaseURL string

	// ModelOptions are applied to every model the provider returns.
	ModelOptions []func(o *Options)

	Logger logging.Logger
}

// Provider hands out Anthropic models bound to a lazily built client.
type Provider struct {
	opts   ProviderOptions
	logger logging.Logger

	mu     sync.Mutex
	client *anthropic.Client
}

var _ model.Provider = (*Provider)(nil)

// NewProvider creates a Provider. It never constructs a client.
func NewProvider(optFns ...func(o *ProviderOptions)) (*Provider, error) {
	opts := ProviderOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Client != nil {
		var conflicts []string
		if opts.APIKey != "" {
			conflicts = append(conflicts, "APIKey")
		}
		if opts.BaseURL != "" {
			conflicts = append(conflicts, "BaseURL")
		}
		if len(conflicts) > 0 {
			return nil, &ConfigurationConflictError{Fields: conflicts}
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	return &Provider{opts: opts, logger: logger, client: opts.Client}, nil
}

// Client returns the Anthropic client, building it on the first call.
func (p *Provider) Client() (*anthropic.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	if p.opts.APIKey == "" && os.Getenv("ANTHROPIC_API_KEY") == "" {
		return nil, ErrMissingAPIKey
	}

	reqOpts := []option.RequestOption{option.WithHTTPClient(httpclient.Shared())}
	if p.opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(p.opts.APIKey))
	}
	if p.opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(p.opts.BaseURL))
	}

	client := anthropic.NewClient(reqOpts...)
	p.client = &client
	p.logger.Debug("resolved anthropic client", "base_url", p.opts.BaseURL)
	return p.client, nil
}

// Model returns a model bound to the provider's client. An empty name means DefaultModel.
func (p *Provider) Model(name string) (model.Model, error) {
	if name == "" {
		name = DefaultModel
	}
	client, err := p.Client()
	if err != nil {
		return nil, err
	}
	optFns := make([]func(o *Options), 0, len(p.opts.ModelOptions)+1)
	optFns = append(optFns, func(o *Options) { o.Logger = p.logger })
	optFns = append(optFns, p.opts.ModelOptions...)
	return NewModel(client, name, optFns...), nil
}
