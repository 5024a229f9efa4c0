package openai

import (
	"sync"

	"github.com/openai/openai-go"
)

// Defaults is a fallback configuration shared by every Provider created with
// it. Empty strings and a nil client mean "unset". Setters overwrite
// unconditionally and nothing is validated here; bad values surface when the
// SDK client is built or used.
type Defaults struct {
	mu              sync.RWMutex
	apiKey          string
	client          *openai.Client
	useResponses    bool
	azureEndpoint   string
	apiVersion      string
	azureDeployment string
}

// NewDefaults returns an isolated store in its initial state (everything
// unset, responses API enabled).
func NewDefaults() *Defaults {
	return &Defaults{useResponses: true}
}

var defaultStore = NewDefaults()

// DefaultStore returns the process wide store used by providers that do not
// set ProviderOptions.Defaults and by the package level setters and getters.
func DefaultStore() *Defaults { return defaultStore }

// Reset restores the initial state.
func (d *Defaults) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.apiKey = ""
	d.client = nil
	d.useResponses = true
	d.azureEndpoint = ""
	d.apiVersion = ""
	d.azureDeployment = ""
}

// SetAPIKey sets the fallback API key.
func (d *Defaults) SetAPIKey(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.apiKey = key
}

// APIKey returns the fallback API key or "".
func (d *Defaults) APIKey() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.apiKey
}

// SetClient sets a pre-built client used by the standard (non Azure) path.
func (d *Defaults) SetClient(client *openai.Client) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.client = client
}

// Client returns the fallback pre-built client or nil.
func (d *Defaults) Client() *openai.Client {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.client
}

// SetUseResponses selects the Responses API (true) or Chat Completions (false)
// for providers that do not override it.
func (d *Defaults) SetUseResponses(useResponses bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.useResponses = useResponses
}

// UseResponses reports the fallback wire format flag.
func (d *Defaults) UseResponses() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.useResponses
}

// SetAzureEndpoint sets the fallback Azure OpenAI endpoint. A non-empty value
// routes providers without their own endpoint to Azure.
func (d *Defaults) SetAzureEndpoint(endpoint string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.azureEndpoint = endpoint
}

// AzureEndpoint returns the fallback Azure endpoint or "".
func (d *Defaults) AzureEndpoint() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.azureEndpoint
}

// SetAPIVersion sets the fallback Azure API version.
func (d *Defaults) SetAPIVersion(version string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.apiVersion = version
}

// APIVersion returns the fallback Azure API version or "".
func (d *Defaults) APIVersion() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.apiVersion
}

// SetAzureDeployment sets the fallback Azure deployment.
func (d *Defaults) SetAzureDeployment(deployment string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.azureDeployment = deployment
}

// AzureDeployment returns the fallback Azure deployment or "".
func (d *Defaults) AzureDeployment() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.azureDeployment
}

// SetDefaultAPIKey sets the process wide fallback API key.
func SetDefaultAPIKey(key string) { defaultStore.SetAPIKey(key) }

// DefaultAPIKey returns the process wide fallback API key.
func DefaultAPIKey() string { return defaultStore.APIKey() }

// SetDefaultClient sets the process wide pre-built client.
func SetDefaultClient(client *openai.Client) { defaultStore.SetClient(client) }

// DefaultClient returns the process wide pre-built client.
func DefaultClient() *openai.Client { return defaultStore.Client() }

// SetUseResponsesByDefault sets the process wide wire format flag.
func SetUseResponsesByDefault(useResponses bool) { defaultStore.SetUseResponses(useResponses) }

// UseResponsesByDefault returns the process wide wire format flag.
func UseResponsesByDefault() bool { return defaultStore.UseResponses() }

// SetDefaultAzureEndpoint sets the process wide Azure endpoint.
func SetDefaultAzureEndpoint(endpoint string) { defaultStore.SetAzureEndpoint(endpoint) }

// DefaultAzureEndpoint returns the process wide Azure endpoint.
func DefaultAzureEndpoint() string { return defaultStore.AzureEndpoint() }

// SetDefaultAPIVersion sets the process wide Azure API version.
func SetDefaultAPIVersion(version string) { defaultStore.SetAPIVersion(version) }

// DefaultAPIVersion returns the process wide Azure API version.
func DefaultAPIVersion() string { return defaultStore.APIVersion() }

// SetDefaultAzureDeployment sets the process wide Azure deployment.
func SetDefaultAzureDeployment(deployment string) { defaultStore.SetAzureDeployment(deployment) }

// DefaultAzureDeployment returns the process wide Azure deployment.
func DefaultAzureDeployment() string { return defaultStore.AzureDeployment() }
