package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompletionServer answers /chat/completions with a fixed message and
// records the last request body.
func fakeCompletionServer(t *testing.T, reply string) (*httptest.Server, *map[string]any) {
	t.Helper()
	var lastReq map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &lastReq))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "test-model",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": reply}}},
			"usage":   map[string]any{"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &lastReq
}

func testClientLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenAIClient_GenerateSQL_StripsFences(t *testing.T) {
	srv, lastReq := fakeCompletionServer(t, "```sql\nSELECT * FROM client_info_view\n```")
	client, err := NewOpenAIClient(srv.URL, "test-model", "test-key", testClientLogger())
	require.NoError(t, err)

	sql, err := client.GenerateSQL(context.Background(), "who are the clients?", "Table: client_info_view")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM client_info_view", sql)

	// The request carries both the schema-bearing prompt and the SQL persona.
	msgs, ok := (*lastReq)["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	system := msgs[0].(map[string]any)
	user := msgs[1].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Contains(t, system["content"], "SQL expert")
	assert.Contains(t, user["content"], "Table: client_info_view")
	assert.Contains(t, user["content"], "who are the clients?")
}

func TestOpenAIClient_Chat(t *testing.T) {
	srv, lastReq := fakeCompletionServer(t, "Hello! How can I help?")
	client, err := NewOpenAIClient(srv.URL, "test-model", "", testClientLogger())
	require.NoError(t, err)

	out, err := client.Chat(context.Background(), "hi there")
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help?", out)

	msgs := (*lastReq)["messages"].([]any)
	system := msgs[0].(map[string]any)
	assert.Contains(t, system["content"], "helpful AI assistant")
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewOpenAIClient(srv.URL, "test-model", "", testClientLogger())
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestNewOpenAIClient_RequiresModel(t *testing.T) {
	_, err := NewOpenAIClient("http://localhost:11434/v1", "", "", testClientLogger())
	require.Error(t, err)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New("gemini", "", "m", "k", testClientLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown LLM provider")
}

func TestNew_DefaultsToOpenAI(t *testing.T) {
	c, err := New("", "http://localhost:11434/v1", "test-model", "", testClientLogger())
	require.NoError(t, err)
	_, ok := c.(*OpenAIClient)
	assert.True(t, ok)
}
