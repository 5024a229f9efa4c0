package openai

import (
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
)

func TestDefaults_InitialState(t *testing.T) {
	d := NewDefaults()
	assert.Empty(t, d.APIKey())
	assert.Nil(t, d.Client())
	assert.True(t, d.UseResponses())
	assert.Empty(t, d.AzureEndpoint())
	assert.Empty(t, d.APIVersion())
	assert.Empty(t, d.AzureDeployment())
}

func TestDefaults_RoundTrip(t *testing.T) {
	d := NewDefaults()
	client := openai.NewClient()

	d.SetAPIVersion("2024-10-21")
	d.SetAPIKey("k")
	d.SetClient(&client)
	d.SetUseResponses(false)
	d.SetAzureEndpoint("https://test-endpoint.openai.azure.com/")
	d.SetAzureDeployment("test-deployment")

	// Unrelated setters leave earlier values alone.
	assert.Equal(t, "2024-10-21", d.APIVersion())
	assert.Equal(t, "k", d.APIKey())
	assert.Same(t, &client, d.Client())
	assert.False(t, d.UseResponses())
	assert.Equal(t, "https://test-endpoint.openai.azure.com/", d.AzureEndpoint())
	assert.Equal(t, "test-deployment", d.AzureDeployment())

	// Setters overwrite unconditionally, including with empty values.
	d.SetAPIVersion("")
	assert.Empty(t, d.APIVersion())
	d.SetAPIVersion("not a version")
	assert.Equal(t, "not a version", d.APIVersion())
}

func TestDefaults_Reset(t *testing.T) {
	d := NewDefaults()
	d.SetAPIKey("k")
	d.SetUseResponses(false)
	d.SetAzureEndpoint("https://e/")

	d.Reset()

	assert.Empty(t, d.APIKey())
	assert.True(t, d.UseResponses())
	assert.Empty(t, d.AzureEndpoint())
}

func TestDefaults_Isolated(t *testing.T) {
	a, b := NewDefaults(), NewDefaults()
	a.SetAzureEndpoint("https://a/")
	assert.Empty(t, b.AzureEndpoint())
	assert.Empty(t, DefaultStore().AzureEndpoint())
}

func TestPackageLevelDefaults(t *testing.T) {
	t.Cleanup(DefaultStore().Reset)
	client := openai.NewClient()

	SetDefaultAzureEndpoint("https://test-endpoint.openai.azure.com/")
	SetDefaultAPIVersion("2023-07-01-preview")
	SetDefaultAzureDeployment("test-deployment")
	SetDefaultAPIKey("k")
	SetDefaultClient(&client)
	SetUseResponsesByDefault(false)

	assert.Equal(t, "https://test-endpoint.openai.azure.com/", DefaultAzureEndpoint())
	assert.Equal(t, "2023-07-01-preview", DefaultAPIVersion())
	assert.Equal(t, "test-deployment", DefaultAzureDeployment())
	assert.Equal(t, "k", DefaultAPIKey())
	assert.Same(t, &client, DefaultClient())
	assert.False(t, UseResponsesByDefault())
	assert.Equal(t, "k", DefaultStore().APIKey())
}
