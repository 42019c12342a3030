package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gemcanvas/internal/ai"
	"gemcanvas/internal/app"
	"gemcanvas/internal/bootstrap"
	"gemcanvas/internal/config"
	"gemcanvas/internal/logger"
	"gemcanvas/internal/model"
	"gemcanvas/internal/store"
	"gemcanvas/internal/transport/http/response"
)

type stubGateway struct{}

func (stubGateway) CompleteChat(context.Context, string, []model.Message, string, []string) (string, error) {
	return "hi there", nil
}

func (stubGateway) SynthesizeSpeech(context.Context, string) (string, error) {
	return "UklGRg==", nil
}

func (stubGateway) SynthesizeCanvas(context.Context, []model.Message, string, string) (ai.CanvasResult, error) {
	return ai.CanvasParsed{Content: "## A good talk", Practice: "1. ___", ProposedSignature: "Crimson Text"}, nil
}

func newTestApp(t *testing.T, configErr error, passwordHash string) *bootstrap.App {
	t.Helper()
	log := logger.NewNop()
	cfg := &config.Config{
		App:   config.AppConfig{Name: "gemcanvas", Env: "test", GinMode: gin.TestMode},
		Auth:  config.AuthConfig{OwnerName: "owner", OwnerPasswordHash: passwordHash, JWTSecret: "secret", JWTExpireMinute: 60},
		LLM:   config.LLMConfig{Provider: config.ProviderGemini, Model: "gemini-2.5-flash"},
		Store: config.StoreConfig{Driver: config.StoreDriverMemory},
	}
	st := store.New(store.NewMemoryKV(), "", log)
	gems, err := app.NewGemRegistry(context.Background(), st, log)
	require.NoError(t, err)
	groups, err := app.NewKnowledgeRegistry(context.Background(), st, log)
	require.NoError(t, err)

	return &bootstrap.App{
		Config:    cfg,
		Log:       log,
		Store:     st,
		Studio:    app.NewStudio(gems, groups, stubGateway{}, nil, log),
		Auth:      app.NewOwnerAuthService("owner", passwordHash, "secret", time.Hour),
		ConfigErr: configErr,
		StartedAt: time.Now(),
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}, token string) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") != "text/html; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func TestRouter_SessionToCanvasFlow(t *testing.T) {
	router := NewRouter(newTestApp(t, nil, ""))

	status, env := do(t, router, http.MethodPost, "/api/v1/gems", gin.H{
		"name": "A", "studentName": "B", "systemInstruction": "Be a tutor.",
	}, "")
	require.Equal(t, http.StatusOK, status, env.Message)
	var gem model.Gem
	require.NoError(t, json.Unmarshal(env.Data, &gem))
	assert.True(t, model.IsVisualSignature(gem.VisualSignature))

	status, _ = do(t, router, http.MethodPost, "/api/v1/gems/"+gem.ID+"/session", nil, "")
	require.Equal(t, http.StatusOK, status)

	status, env = do(t, router, http.MethodPost, "/api/v1/gems/"+gem.ID+"/session/messages", gin.H{"text": "hello"}, "")
	require.Equal(t, http.StatusOK, status, env.Message)
	var sent struct {
		Reply   model.Message `json:"reply"`
		Session struct {
			State   string          `json:"state"`
			History []model.Message `json:"history"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sent))
	assert.Equal(t, "hi there", sent.Reply.Text)
	assert.Equal(t, "idle", sent.Session.State)
	assert.Len(t, sent.Session.History, 2)

	status, env = do(t, router, http.MethodPost, "/api/v1/gems/"+gem.ID+"/session/end", nil, "")
	require.Equal(t, http.StatusOK, status, env.Message)
	var ended struct {
		Pending app.PendingCanvas `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &ended))
	assert.Equal(t, "Crimson Text", ended.Pending.Canvas.ProposedVisualSignature)

	status, env = do(t, router, http.MethodGet, "/api/v1/canvas/review", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"reviewing"`)

	status, env = do(t, router, http.MethodPost, "/api/v1/gems/"+gem.ID+"/session", nil, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, response.CodeCanvasBusy, env.Code)

	status, env = do(t, router, http.MethodPost, "/api/v1/canvas/review/accept", gin.H{
		"gemId": gem.ID, "canvasId": ended.Pending.Canvas.ID,
	}, "")
	require.Equal(t, http.StatusOK, status, env.Message)
	var committed model.Gem
	require.NoError(t, json.Unmarshal(env.Data, &committed))
	assert.Empty(t, committed.ChatHistory)
	assert.Len(t, committed.Canvases, 1)
	assert.Equal(t, "Crimson Text", committed.VisualSignature)

	status, env = do(t, router, http.MethodGet, "/api/v1/canvases", nil, "")
	require.Equal(t, http.StatusOK, status)
	var feed []model.FeedItem
	require.NoError(t, json.Unmarshal(env.Data, &feed))
	require.Len(t, feed, 1)
	assert.Equal(t, "B", feed[0].StudentName)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gems/"+gem.ID+"/canvases/"+ended.Pending.Canvas.ID+"/html", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h2>A good talk</h2>")
}

func TestRouter_SessionErrors(t *testing.T) {
	router := NewRouter(newTestApp(t, nil, ""))

	status, env := do(t, router, http.MethodPost, "/api/v1/gems/gem-missing/session", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, response.CodeGemNotFound, env.Code)

	status, env = do(t, router, http.MethodPost, "/api/v1/gems/gem-missing/session/messages", gin.H{"text": "hi"}, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, response.CodeSessionNotFound, env.Code)

	status, env = do(t, router, http.MethodPost, "/api/v1/canvas/review/discard", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, response.CodeCanvasNotFound, env.Code)
}

func TestRouter_DeleteNeedsConfirmation(t *testing.T) {
	router := NewRouter(newTestApp(t, nil, ""))
	_, env := do(t, router, http.MethodPost, "/api/v1/gems", gin.H{
		"name": "A", "studentName": "B", "systemInstruction": "C",
	}, "")
	var gem model.Gem
	require.NoError(t, json.Unmarshal(env.Data, &gem))

	status, env := do(t, router, http.MethodDelete, "/api/v1/gems/"+gem.ID, nil, "")
	assert.Equal(t, http.StatusPreconditionRequired, status)
	assert.Equal(t, response.CodeNotConfirmed, env.Code)

	status, _ = do(t, router, http.MethodDelete, "/api/v1/gems/"+gem.ID+"?confirm=true", nil, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, router, http.MethodGet, "/api/v1/gems/"+gem.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_KnowledgeBases(t *testing.T) {
	router := NewRouter(newTestApp(t, nil, ""))

	status, env := do(t, router, http.MethodPost, "/api/v1/knowledge-bases", gin.H{
		"name": "Docs", "urlsText": "https://a.example\n\nhttps://b.example",
	}, "")
	require.Equal(t, http.StatusOK, status, env.Message)
	var group model.KnowledgeBaseGroup
	require.NoError(t, json.Unmarshal(env.Data, &group))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, group.URLs)

	status, _ = do(t, router, http.MethodPut, "/api/v1/knowledge-bases/group-missing", gin.H{"name": "x"}, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, router, http.MethodDelete, "/api/v1/knowledge-bases/"+group.ID+"?confirm=true", nil, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestRouter_GatewayNotConfigured(t *testing.T) {
	router := NewRouter(newTestApp(t, app.ErrGatewayNotConfigured, ""))

	status, env := do(t, router, http.MethodGet, "/api/v1/gems", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "Gemini API key is not set. Please configure GEMINI_API_KEY to use the application.", env.Message)

	status, env = do(t, router, http.MethodGet, "/api/v1/status", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"configured":false`)
}

func TestRouter_OwnerAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	router := NewRouter(newTestApp(t, nil, string(hash)))

	status, _ := do(t, router, http.MethodGet, "/api/v1/gems", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := do(t, router, http.MethodPost, "/api/v1/auth/login", gin.H{"username": "owner", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, response.CodeInvalidCredentials, env.Code)

	status, env = do(t, router, http.MethodPost, "/api/v1/auth/login", gin.H{"username": "owner", "password": "correct horse"}, "")
	require.Equal(t, http.StatusOK, status)
	var login app.AuthResult
	require.NoError(t, json.Unmarshal(env.Data, &login))

	status, _ = do(t, router, http.MethodGet, "/api/v1/gems", nil, login.Token)
	assert.Equal(t, http.StatusOK, status)

	status, env = do(t, router, http.MethodGet, "/api/v1/auth/me", nil, login.Token)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"owner"`)
}
