package openai

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hupe1980/modelmesh/internal/testutil"
	"github.com/hupe1980/modelmesh/logging"
	"github.com/hupe1980/modelmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatDeltas(n int) string {
	payloads := make([]string, 0, n+1)
	for i := 0; i < n; i++ {
		payloads = append(payloads, fmt.Sprintf(
			`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":"t%d "},"finish_reason":null}]}`, i))
	}
	payloads = append(payloads, `{"id":"c1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`)
	return testutil.SSE(payloads...)
}

func responseDeltas(n int) string {
	payloads := make([]string, 0, n+1)
	for i := 0; i < n; i++ {
		payloads = append(payloads, fmt.Sprintf(
			`{"type":"response.output_text.delta","item_id":"msg_1","output_index":0,"content_index":0,"delta":"t%d ","sequence_number":%d}`, i, i+1))
	}
	payloads = append(payloads, `{"type":"response.completed","sequence_number":999,"response":`+testutil.ResponseJSON("m", "done")+`}`)
	return testutil.SSE(payloads...)
}

// stopsOnCancel fills the response buffer without draining it, cancels the
// context and expects Generate to give up instead of blocking forever.
func stopsOnCancel(t *testing.T, m model.Model) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	respCh, errCh := m.Generate(ctx, testutil.NewRequestBuilder().UserText("hi").Stream().Build())
	require.Eventually(t, func() bool { return len(respCh) == cap(respCh) }, 5*time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("generate kept blocking after the context was cancelled")
	}
}

func TestChatCompletionsModel_StopsOnCancel(t *testing.T) {
	srv := testutil.NewServer(t, testutil.Reply{Suffix: "/chat/completions", ContentType: "text/event-stream", Body: chatDeltas(100)})
	stopsOnCancel(t, NewChatCompletionsModel(newTestClient(srv), "m"))
}

func TestResponsesModel_StopsOnCancel(t *testing.T) {
	srv := testutil.NewServer(t, testutil.Reply{Suffix: "/responses", ContentType: "text/event-stream", Body: responseDeltas(100)})
	stopsOnCancel(t, NewResponsesModel(newTestClient(srv), "m"))
}

func debugLogger(buf *bytes.Buffer) func(o *ModelOptions) {
	return func(o *ModelOptions) {
		o.Logger = logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Format: "json", Output: buf})
	}
}

func TestResponsesModel_LogsTokenUsage(t *testing.T) {
	t.Run("non-streaming", func(t *testing.T) {
		srv := testutil.NewServer(t, testutil.Reply{Suffix: "/responses", Body: testutil.ResponseJSON("m", "hello")})

		var buf bytes.Buffer
		m := NewResponsesModel(newTestClient(srv), "m", debugLogger(&buf))
		_, err := model.Collect(m.Generate(context.Background(), testutil.NewRequestBuilder().UserText("hi").Build()))
		require.NoError(t, err)

		assert.Contains(t, buf.String(), `"msg":"token usage"`)
		assert.Contains(t, buf.String(), `"total_tokens":5`)
	})

	t.Run("streaming", func(t *testing.T) {
		srv := testutil.NewServer(t, testutil.Reply{Suffix: "/responses", ContentType: "text/event-stream", Body: responseDeltas(2)})

		var buf bytes.Buffer
		m := NewResponsesModel(newTestClient(srv), "m", debugLogger(&buf))
		_, err := model.Collect(m.Generate(context.Background(), testutil.NewRequestBuilder().UserText("hi").Stream().Build()))
		require.NoError(t, err)

		assert.Contains(t, buf.String(), `"msg":"token usage"`)
		assert.Contains(t, buf.String(), `"prompt_tokens":3`)
	})
}

func TestChatCompletionsModel_LogsTokenUsage(t *testing.T) {
	srv := testutil.NewServer(t, testutil.Reply{Suffix: "/chat/completions", Body: testutil.ChatCompletionJSON("m", "hello")})

	var buf bytes.Buffer
	m := NewChatCompletionsModel(newTestClient(srv), "m", debugLogger(&buf))
	_, err := model.Collect(m.Generate(context.Background(), testutil.NewRequestBuilder().UserText("hi").Build()))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"msg":"token usage"`)
	assert.Contains(t, buf.String(), `"completion_tokens":2`)
}
