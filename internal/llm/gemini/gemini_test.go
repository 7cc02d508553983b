package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/domain"
)

func newTestModel(t *testing.T, handler http.HandlerFunc) *ChatModel {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	m, err := New(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gemini-test"})
	require.NoError(t, err)
	return m
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(Config{APIKey: "  "})
	assert.Error(t, err)

	m, err := New(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, m.ModelName())
}

func TestChat_RequestShape(t *testing.T) {
	var got generateRequest
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"), "key must not travel in the URL")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello "},{"text":"there"}]},"finishReason":"STOP"}]}`))
	})

	answer, err := m.Chat(context.Background(), []domain.Message{
		{Role: domain.RoleSystem, Content: "be brief"},
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
		{Role: domain.RoleUser, Content: "again"},
	}, domain.ChatOptions{Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", answer)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be brief", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 3)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, "again", got.Contents[2].Parts[0].Text)
	require.NotNil(t, got.GenerationConfig.Temperature)
	assert.Equal(t, 0.7, *got.GenerationConfig.Temperature)
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "api error", status: 400, body: `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, wantErr: "API key not valid"},
		{name: "non json", status: 502, body: `bad gateway`, wantErr: "decode response"},
		{name: "blocked", status: 200, body: `{"promptFeedback":{"blockReason":"SAFETY"}}`, wantErr: "SAFETY"},
		{name: "no candidates", status: 200, body: `{"candidates":[]}`, wantErr: "no candidates"},
		{name: "empty parts", status: 200, body: `{"candidates":[{"content":{"parts":[]},"finishReason":"MAX_TOKENS"}]}`, wantErr: "MAX_TOKENS"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := m.Chat(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "q"}}, domain.ChatOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestChat_NoUserContent(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := m.Chat(context.Background(), []domain.Message{{Role: domain.RoleSystem, Content: "s"}}, domain.ChatOptions{})
	assert.Error(t, err)
}

func TestChat_TransportError(t *testing.T) {
	m, err := New(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	_, err = m.Chat(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "q"}}, domain.ChatOptions{})
	assert.Error(t, err)
}
