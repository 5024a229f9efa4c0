// Package openai resolves OpenAI and Azure OpenAI clients and exposes them as
// model.Model implementations (Responses API or Chat Completions).
//
// A Provider is configured either with a pre-built client or with connection
// settings. Settings the provider does not set fall back to a Defaults store
// (the process wide DefaultStore unless one is injected). The client is built
// lazily on the first Model call:
//
//   - an Azure endpoint on the provider or in the defaults selects Azure;
//     key, endpoint, API version and deployment each take the provider value,
//     then the default, and the API version finally FallbackAPIVersion
//   - otherwise a default pre-built client is used if one is set, else a
//     standard client is built from key, base URL, organization and project
//
// Self-built clients share one HTTP client (and connection pool) per process.
//
//	provider, err := openai.NewProvider(func(o *openai.ProviderOptions) {
//		o.APIKey = os.Getenv("AZURE_OPENAI_API_KEY")
//		o.AzureEndpoint = "https://my-resource.openai.azure.com/"
//		o.AzureDeployment = "gpt-4o-prod"
//	})
//	m, err := provider.Model("") // named "gpt-4o-prod"
package openai
