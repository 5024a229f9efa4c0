package anthropic

import (
	"bytes"
	"context"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/modelmesh/core"
	"github.com/hupe1980/modelmesh/internal/testutil"
	"github.com/hupe1980/modelmesh/logging"
	"github.com/hupe1980/modelmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messageJSON = `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-sonnet-20241022",` +
	`"content":[{"type":"text","text":"Let me check."},{"type":"tool_use","id":"toolu_1","name":"weather","input":{"city":"Paris"}}],` +
	`"stop_reason":"tool_use","stop_sequence":null,"usage":{"input_tokens":7,"output_tokens":5}}`

func TestBuildMessages_ToolResultsFollowCalls(t *testing.T) {
	req := testutil.NewRequestBuilder().
		UserText("weather in Paris?").
		AssistantCall("toolu_1", "weather", `{"city":"Paris"}`).
		ToolResult("toolu_1", "weather", "sunny").
		Build()

	msgs := buildMessages(req.Contents)
	require.Len(t, msgs, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
	require.Len(t, msgs[2].Content, 1)
	require.NotNil(t, msgs[2].Content[0].OfToolResult)
	assert.Equal(t, "toolu_1", msgs[2].Content[0].OfToolResult.ToolUseID)
}

func TestRequiredFields(t *testing.T) {
	assert.Equal(t, []string{"a"}, requiredFields([]string{"a"}))
	assert.Equal(t, []string{"a", "b"}, requiredFields([]any{"a", 1, "b"}))
	assert.Nil(t, requiredFields(nil))
}

func TestModel_Generate(t *testing.T) {
	srv := testutil.NewServer(t, testutil.Reply{Suffix: "/messages", Body: messageJSON})
	client := anthropic.NewClient(option.WithAPIKey("test"), option.WithBaseURL(srv.URL), option.WithMaxRetries(0))

	m := NewModel(&client, "claude-3-5-sonnet-20241022")
	req := testutil.NewRequestBuilder().
		Instructions("be brief").
		UserText("weather in Paris?").
		Tool("weather", "Get the weather", map[string]any{"city": map[string]any{"type": "string"}}).
		Build()

	resp, err := model.Collect(m.Generate(context.Background(), req))
	require.NoError(t, err)
	assert.Equal(t, "msg_1", resp.ID)
	assert.Equal(t, "Let me check.", resp.Content.Text())
	assert.Equal(t, "tool_use", resp.FinishReason)
	assert.Equal(t, []core.FunctionCall{{ID: "toolu_1", Name: "weather", Arguments: `{"city":"Paris"}`}}, resp.Content.FunctionCalls())
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 12, resp.Usage.TotalTokens)

	rec, ok := srv.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "/v1/messages", rec.Path)
	assert.Equal(t, "claude-3-5-sonnet-20241022", rec.Body["model"])
	assert.EqualValues(t, 4096, rec.Body["max_tokens"])
	system, ok := rec.Body["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
	assert.Equal(t, "be brief", system[0].(map[string]any)["text"])
}

func TestModel_Info(t *testing.T) {
	m := NewModel(nil, "claude-x")
	assert.Equal(t, model.Info{Name: "claude-x", Provider: "anthropic", SupportsTools: true}, m.Info())
	assert.Equal(t, "claude-x", m.Name())
}

func TestModel_LogsTokenUsage(t *testing.T) {
	srv := testutil.NewServer(t, testutil.Reply{Suffix: "/messages", Body: messageJSON})
	client := anthropic.NewClient(option.WithAPIKey("test"), option.WithBaseURL(srv.URL), option.WithMaxRetries(0))

	var buf bytes.Buffer
	m := NewModel(&client, "claude-x", func(o *Options) {
		o.Logger = logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Format: "json", Output: &buf})
	})

	_, err := model.Collect(m.Generate(context.Background(), testutil.NewRequestBuilder().UserText("hi").Build()))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"token usage"`)
	assert.Contains(t, buf.String(), `"total_tokens":12`)
}
