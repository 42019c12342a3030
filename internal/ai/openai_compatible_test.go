package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemcanvas/internal/model"
)

type capturedRequest struct {
	Model          string            `json:"model"`
	Messages       []ChatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
}

func newCompletionServer(t *testing.T, reply string, got *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAICompatibleGateway_CompleteChat(t *testing.T) {
	var got capturedRequest
	srv := newCompletionServer(t, "hi there", &got)
	gw := NewOpenAICompatibleGateway(ChatConfig{BaseURL: srv.URL + "/", APIKey: "secret", Model: "m"})

	history := []model.Message{{Sender: model.SenderUser, Text: "hello"}}
	reply, err := gw.CompleteChat(context.Background(), "hello", history, "be kind", []string{"https://docs.example"})
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)

	assert.Equal(t, "m", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "https://docs.example")
	assert.Equal(t, ChatMessage{Role: "user", Content: "hello"}, got.Messages[1])
	assert.Nil(t, got.ResponseFormat)
}

func TestOpenAICompatibleGateway_SynthesizeCanvas(t *testing.T) {
	var got capturedRequest
	srv := newCompletionServer(t, `{"canvasContent":"## Done","proposedSignature":"Lora"}`, &got)
	gw := NewOpenAICompatibleGateway(ChatConfig{BaseURL: srv.URL, APIKey: "secret", Model: "m"})

	result, err := gw.SynthesizeCanvas(context.Background(), nil, "be kind", "Caveat")
	require.NoError(t, err)
	parsed, ok := result.(CanvasParsed)
	require.True(t, ok)
	assert.Equal(t, "## Done", parsed.Content)
	assert.Equal(t, "json_object", got.ResponseFormat["type"])
}

func TestOpenAICompatibleGateway_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	gw := NewOpenAICompatibleGateway(ChatConfig{BaseURL: srv.URL, APIKey: "secret"})
	_, err := gw.CompleteChat(context.Background(), "hello", nil, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")

	_, err = gw.SynthesizeSpeech(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrSpeechUnsupported)
}

func TestOpenAICompatibleGateway_BlankReplyIsAnError(t *testing.T) {
	var got capturedRequest
	srv := newCompletionServer(t, "  \n", &got)
	gw := NewOpenAICompatibleGateway(ChatConfig{BaseURL: srv.URL, APIKey: "secret", Model: "m"})

	_, err := gw.CompleteChat(context.Background(), "hello", nil, "be kind", nil)
	assert.ErrorIs(t, err, ErrEmptyReply)
}
