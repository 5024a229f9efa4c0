package multi

import (
	"errors"
	"testing"

	"github.com/hupe1980/modelmesh/model"
	"github.com/hupe1980/modelmesh/model/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProvider_Routing(t *testing.T) {
	def := model.NewMockProvider("openai", "gpt-4o")
	claude := model.NewMockProvider("anthropic", "claude")

	p := New(func(o *Options) {
		o.Default = def
		o.Providers = map[string]model.Provider{"anthropic": claude}
	})

	tests := []struct {
		in       string
		provider string
		name     string
	}{
		{"anthropic/claude-3-5-sonnet", "anthropic", "claude-3-5-sonnet"},
		{"openai/gpt-4o-mini", "openai", "gpt-4o-mini"},
		{"gpt-4o", "openai", "gpt-4o"},
		{"", "openai", "gpt-4o"},
		{"meta/llama-3", "openai", "meta/llama-3"},
	}
	for _, tt := range tests {
		m, err := p.Model(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.provider, m.Info().Provider, tt.in)
		assert.Equal(t, tt.name, m.Info().Name, tt.in)
	}
	assert.Equal(t, []string{"claude-3-5-sonnet"}, claude.Requested())
}

func TestProvider_Register(t *testing.T) {
	p := New(func(o *Options) { o.Default = model.NewMockProvider("openai", "gpt-4o") })
	local := model.NewMockProvider("local", "llama")
	p.Register("local", local)

	m, err := p.Model("local/")
	require.NoError(t, err)
	assert.Equal(t, "llama", m.Info().Name)
	assert.Equal(t, "local", m.Info().Provider)
}

func TestProvider_LazyOpenAIDefault(t *testing.T) {
	store := openai.DefaultStore()
	t.Cleanup(store.Reset)

	store.SetAzureEndpoint("https://e/")
	store.SetAPIKey("k")
	store.SetAzureDeployment("dep-X")

	p := New()
	m, err := p.Model("openai/")
	require.NoError(t, err)
	assert.Equal(t, "dep-X", m.Info().Name)
	assert.Equal(t, "azure", m.Info().Provider)
}

type providerMock struct{ mock.Mock }

func (m *providerMock) Model(name string) (model.Model, error) {
	args := m.Called(name)
	if mdl, ok := args.Get(0).(model.Model); ok {
		return mdl, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestProvider_ErrorPassThrough(t *testing.T) {
	boom := errors.New("boom")
	failing := &providerMock{}
	failing.On("Model", "x").Return(nil, boom).Once()

	p := New(func(o *Options) {
		o.Default = model.NewMockProvider("openai", "gpt-4o")
		o.Providers = map[string]model.Provider{"failing": failing}
	})

	m, err := p.Model("failing/x")
	assert.Nil(t, m)
	assert.ErrorIs(t, err, boom)
	failing.AssertExpectations(t)
}
