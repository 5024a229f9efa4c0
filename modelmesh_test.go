package modelmesh

import (
	"testing"

	"github.com/hupe1980/modelmesh/model"
	"github.com/hupe1980/modelmesh/model/openai"
	sdk "github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Routing(t *testing.T) {
	p, err := New(func(o *Options) {
		o.OpenAI = append(o.OpenAI, func(o *openai.ProviderOptions) {
			o.Defaults = openai.NewDefaults()
			o.APIKey = "k"
			o.AzureEndpoint = "https://e/"
			o.AzureDeployment = "dep-X"
		})
		o.Providers = map[string]model.Provider{"mock": model.NewMockProvider("mock", "m")}
	})
	require.NoError(t, err)

	m, err := p.Model("")
	require.NoError(t, err)
	assert.Equal(t, "dep-X", m.Info().Name)
	assert.Equal(t, "azure", m.Info().Provider)

	m, err = p.Model("mock/x")
	require.NoError(t, err)
	assert.Equal(t, "x", m.Info().Name)
}

func TestNew_Anthropic(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test")
	p, err := New()
	require.NoError(t, err)

	m, err := p.Model("anthropic/claude-x")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", m.Info().Provider)
	assert.Equal(t, "claude-x", m.Info().Name)
}

func TestNew_ConflictSurfaces(t *testing.T) {
	client := sdk.NewClient()

	_, err := New(func(o *Options) {
		o.OpenAI = append(o.OpenAI, func(o *openai.ProviderOptions) {
			o.Client = &client
			o.APIKey = "k"
		})
	})
	assert.ErrorIs(t, err, openai.ErrConfigurationConflict)
}
