package openai

import (
	"sync"

	"github.com/hupe1980/modelmesh/internal/httpclient"
	"github.com/hupe1980/modelmesh/logging"
	"github.com/hupe1980/modelmesh/model"
	"github.com/openai/openai-go"
)

const (
	// DefaultModel is used when Model is called without a name.
	DefaultModel = "gpt-4o"

	// FallbackAPIVersion is the Azure API version used when neither the
	// provider nor the Defaults store configure one.
	FallbackAPIVersion = "2023-07-01-preview"
)

// ProviderOptions configure a Provider. Either Client or the connection
// settings may be given, not both: combining Client with APIKey, BaseURL or
// AzureEndpoint is a ConfigurationConflictError.
type ProviderOptions struct {
	// Client is a pre-built client used as is. No resolution against Defaults
	// happens for it. Setting AzureDeployment alongside marks it as an Azure
	// client bound to that deployment.
	Client *openai.Client

	APIKey       string
	BaseURL      string
	Organization string
	Project      string

	AzureEndpoint   string
	APIVersion      string
	AzureDeployment string

	// UseResponses selects the Responses API (true) or Chat Completions
	// (false). Nil takes Defaults.UseResponses() at construction time.
	UseResponses *bool

	// Defaults is the fallback store. Nil uses DefaultStore().
	Defaults *Defaults

	// ModelOptions are applied to every model the provider returns.
	ModelOptions []func(o *ModelOptions)

	Logger logging.Logger
}

// Provider resolves OpenAI or Azure OpenAI clients lazily and hands out
// models bound to them. The client is built on first use and then reused for
// the lifetime of the provider; a failed construction is not cached.
type Provider struct {
	opts         ProviderOptions
	defaults     *Defaults
	useResponses bool
	logger       logging.Logger

	newStandardClient func(StandardConfig) (*openai.Client, error)
	newAzureClient    func(AzureConfig) (*openai.Client, error)

	mu       sync.Mutex
	resolved *ResolvedClient
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
		if opts.AzureEndpoint != "" {
			conflicts = append(conflicts, "AzureEndpoint")
		}
		if len(conflicts) > 0 {
			return nil, &ConfigurationConflictError{Fields: conflicts}
		}
	}

	defaults := opts.Defaults
	if defaults == nil {
		defaults = DefaultStore()
	}

	useResponses := defaults.UseResponses()
	if opts.UseResponses != nil {
		useResponses = *opts.UseResponses
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	p := &Provider{
		opts:              opts,
		defaults:          defaults,
		useResponses:      useResponses,
		logger:            logger,
		newStandardClient: NewStandardClient,
		newAzureClient:    NewAzureClient,
	}

	if opts.Client != nil {
		p.resolved = prebuilt(opts.Client, opts.AzureDeployment)
	}

	return p, nil
}

func prebuilt(client *openai.Client, deployment string) *ResolvedClient {
	if deployment != "" {
		return &ResolvedClient{Kind: KindAzure, Client: client, Azure: AzureConfig{Deployment: deployment}, Prebuilt: true}
	}
	return &ResolvedClient{Kind: KindStandard, Client: client, Prebuilt: true}
}

// UseResponses reports whether models use the Responses API.
func (p *Provider) UseResponses() bool { return p.useResponses }

// Client returns the resolved client, building it on the first call.
// Construction errors are returned unchanged.
func (p *Provider) Client() (*ResolvedClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.resolved != nil {
		return p.resolved, nil
	}

	rc, err := p.resolve()
	if err != nil {
		return nil, err
	}
	p.resolved = rc
	return rc, nil
}

func (p *Provider) resolve() (*ResolvedClient, error) {
	if endpoint := firstNonEmpty(p.opts.AzureEndpoint, p.defaults.AzureEndpoint()); endpoint != "" {
		cfg := AzureConfig{
			APIKey:     firstNonEmpty(p.opts.APIKey, p.defaults.APIKey()),
			Endpoint:   endpoint,
			APIVersion: firstNonEmpty(p.opts.APIVersion, p.defaults.APIVersion(), FallbackAPIVersion),
			Deployment: firstNonEmpty(p.opts.AzureDeployment, p.defaults.AzureDeployment()),
			HTTPClient: httpclient.Shared(),
		}
		client, err := p.newAzureClient(cfg)
		if err != nil {
			return nil, err
		}
		p.logger.Debug("resolved openai client",
			"backend", KindAzure,
			"endpoint", cfg.Endpoint,
			"api_version", cfg.APIVersion,
			"deployment", cfg.Deployment)
		return &ResolvedClient{Kind: KindAzure, Client: client, Azure: cfg}, nil
	}

	if client := p.defaults.Client(); client != nil {
		p.logger.Debug("resolved openai client", "backend", KindStandard, "source", "defaults")
		return &ResolvedClient{Kind: KindStandard, Client: client, Prebuilt: true}, nil
	}

	cfg := StandardConfig{
		APIKey:       firstNonEmpty(p.opts.APIKey, p.defaults.APIKey()),
		BaseURL:      p.opts.BaseURL,
		Organization: p.opts.Organization,
		Project:      p.opts.Project,
		HTTPClient:   httpclient.Shared(),
	}
	client, err := p.newStandardClient(cfg)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("resolved openai client", "backend", KindStandard, "base_url", cfg.BaseURL)
	return &ResolvedClient{Kind: KindStandard, Client: client, Standard: cfg}, nil
}

// Model returns a model bound to the resolved client. An empty name means
// DefaultModel. When the client is an Azure client with a deployment and the
// name is still DefaultModel, the deployment is used as the model name.
func (p *Provider) Model(name string) (model.Model, error) {
	if name == "" {
		name = DefaultModel
	}

	rc, err := p.Client()
	if err != nil {
		return nil, err
	}

	if deployment := rc.Deployment(); deployment != "" && name == DefaultModel {
		name = deployment
	}

	optFns := make([]func(o *ModelOptions), 0, len(p.opts.ModelOptions)+1)
	optFns = append(optFns, func(o *ModelOptions) {
		o.Provider = string(rc.Kind)
		o.Logger = p.logger
	})
	optFns = append(optFns, p.opts.ModelOptions...)

	if p.useResponses {
		return NewResponsesModel(rc.Client, name, optFns...), nil
	}
	return NewChatCompletionsModel(rc.Client, name, optFns...), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
