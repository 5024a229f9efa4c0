package openai

import (
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

// Kind tags which backend a resolved client talks to.
type Kind string

const (
	// KindStandard is the api.openai.com (or compatible base URL) backend.
	KindStandard Kind = "openai"
	// KindAzure is the Azure OpenAI backend.
	KindAzure Kind = "azure"
)

// StandardConfig holds the resolved settings for a standard client.
type StandardConfig struct {
	APIKey       string
	BaseURL      string
	Organization string
	Project      string
	HTTPClient   *http.Client
}

// AzureConfig holds the resolved settings for an Azure OpenAI client.
type AzureConfig struct {
	APIKey     string
	Endpoint   string
	APIVersion string
	Deployment string
	HTTPClient *http.Client
}

// ResolvedClient is the outcome of client resolution. Kind decides which of
// Standard or Azure carries the settings the client was built from; both are
// zero for pre-built clients.
type ResolvedClient struct {
	Kind     Kind
	Client   *openai.Client
	Standard StandardConfig
	Azure    AzureConfig
	// Prebuilt is set when the client came from ProviderOptions.Client or
	// Defaults.Client instead of being constructed by the provider.
	Prebuilt bool
}

// Deployment returns the Azure deployment the client is bound to, or "".
func (rc *ResolvedClient) Deployment() string {
	if rc.Kind != KindAzure {
		return ""
	}
	return rc.Azure.Deployment
}

// NewStandardClient builds an openai-go client for the standard backend.
// Empty fields are left to the SDK defaults (which read OPENAI_BASE_URL,
// OPENAI_ORG_ID and OPENAI_PROJECT_ID).
func NewStandardClient(cfg StandardConfig) (*openai.Client, error) {
	if cfg.APIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
		return nil, &ClientConstructionError{Backend: KindStandard, Missing: "api key (set it explicitly or via OPENAI_API_KEY)"}
	}

	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Organization != "" {
		opts = append(opts, option.WithOrganization(cfg.Organization))
	}
	if cfg.Project != "" {
		opts = append(opts, option.WithProject(cfg.Project))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	client := openai.NewClient(opts...)
	return &client, nil
}

// NewAzureClient builds an openai-go client routed through Azure OpenAI. The
// API key falls back to AZURE_OPENAI_API_KEY. With a Deployment every request
// goes to {endpoint}/openai/deployments/{deployment}, whatever model name it
// carries; without one the model name of a request selects the deployment.
func NewAzureClient(cfg AzureConfig) (*openai.Client, error) {
	if cfg.Endpoint == "" {
		return nil, &ClientConstructionError{Backend: KindAzure, Missing: "azure endpoint"}
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("AZURE_OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, &ClientConstructionError{Backend: KindAzure, Missing: "api key (set it explicitly or via AZURE_OPENAI_API_KEY)"}
	}

	var opts []option.RequestOption
	if cfg.Deployment != "" {
		opts = append(opts,
			option.WithBaseURL(deploymentURL(cfg.Endpoint, cfg.Deployment)),
			option.WithQuery("api-version", cfg.APIVersion),
		)
	} else {
		opts = append(opts, azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion))
	}
	opts = append(opts, azure.WithAPIKey(apiKey))
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	client := openai.NewClient(opts...)
	return &client, nil
}

func deploymentURL(endpoint, deployment string) string {
	return strings.TrimRight(endpoint, "/") + "/openai/deployments/" + url.PathEscape(deployment) + "/"
}
