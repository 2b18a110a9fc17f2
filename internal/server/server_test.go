package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/marcelohs402015/app-email-attendant-sub001/internal/classifier"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/conversation"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/inbox"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/models"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testEnv struct {
	handler http.Handler
	store   *storage.MemoryStorage
}

func newTestEnv(t *testing.T) *testEnv {
	logger := zaptest.NewLogger(t)
	store := storage.NewMemoryStorage()
	reg := prometheus.NewRegistry()

	engine := conversation.NewEngine(store,
		conversation.WithLogger(logger),
		conversation.WithRandSource(conversation.NewRandSource(7)),
		conversation.WithResourceStore(store),
		conversation.WithMetrics(conversation.NewMetrics(reg)),
	)
	clf := classifier.New(logger, classifier.NewMetrics(reg), "")
	svc := inbox.NewService(store, store, clf, logger)
	_, err := svc.SeedDefaultRules(context.Background(), classifier.DefaultRules())
	require.NoError(t, err)

	srv := New(Config{Gatherer: reg}, engine, svc, store, logger)
	return &testEnv{handler: srv.Router(), store: store}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (e *testEnv) createSession(t *testing.T) models.ChatSession {
	rec := e.do(t, http.MethodPost, "/api/chat/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeBody[models.ChatSession](t, rec)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, rec)["status"])
}

func TestChatFlow(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)
	assert.Equal(t, models.SessionActive, session.Status)

	path := "/api/chat/sessions/" + session.ID + "/messages"
	rec := env.do(t, http.MethodPost, path, `{"message": "quero cadastrar um cliente"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[conversation.Response](t, rec)
	assert.Equal(t, session.ID, resp.SessionID)
	require.NotNil(t, resp.Metadata)
	assert.Equal(t, "register_client", resp.Metadata.Action)

	for _, answer := range []string{"Carlos Lima", "carlos@exemplo.com", "11 99999-0000", "Rua A, 10"} {
		rec = env.do(t, http.MethodPost, path, `{"message": "`+answer+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	resp = decodeBody[conversation.Response](t, rec)
	assert.Equal(t, "client_completed", resp.Metadata.Action)

	rec = env.do(t, http.MethodGet, "/api/chat/sessions/"+session.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[models.ChatSession](t, rec)
	assert.Len(t, got.Messages, 10)
	assert.Equal(t, "Cadastro de Cliente", got.Title)

	rec = env.do(t, http.MethodGet, "/api/resources?type=client", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resources := decodeBody[[]models.Resource](t, rec)
	require.Len(t, resources, 1)
	assert.True(t, strings.HasPrefix(resources[0].ID, "CLI-"))
}

func TestChatErrors(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
	}{
		{"unknown session", http.MethodGet, "/api/chat/sessions/nope", "", http.StatusNotFound},
		{"message to unknown session", http.MethodPost, "/api/chat/sessions/nope/messages", `{"message":"oi"}`, http.StatusNotFound},
		{"malformed json", http.MethodPost, "/api/chat/sessions/" + session.ID + "/messages", `{"message":`, http.StatusBadRequest},
		{"empty message", http.MethodPost, "/api/chat/sessions/" + session.ID + "/messages", `{"message":"  "}`, http.StatusBadRequest},
		{"invalid status", http.MethodPatch, "/api/chat/sessions/" + session.ID + "/status", `{"status":"deleted"}`, http.StatusBadRequest},
		{"status of unknown session", http.MethodPatch, "/api/chat/sessions/nope/status", `{"status":"archived"}`, http.StatusNotFound},
		{"unknown resource type", http.MethodGet, "/api/resources?type=invoice", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.NotEmpty(t, decodeBody[ErrorResponse](t, rec).Error)
		})
	}
}

func TestSetStatusAndList(t *testing.T) {
	env := newTestEnv(t)
	first := env.createSession(t)
	second := env.createSession(t)

	rec := env.do(t, http.MethodPatch, "/api/chat/sessions/"+first.ID+"/status", `{"status":"archived"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SessionArchived, decodeBody[models.ChatSession](t, rec).Status)

	rec = env.do(t, http.MethodGet, "/api/chat/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sessions := decodeBody[[]models.ChatSession](t, rec)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.ID, sessions[0].ID)
	assert.Equal(t, second.ID, sessions[1].ID)
}

func TestClassifyEmails(t *testing.T) {
	env := newTestEnv(t)

	body := `{"emails": [
		{"subject": "Orçamento", "body": "Preciso de um orçamento para pintura"},
		{"subject": "oi", "body": "tudo bem?"}
	]}`
	rec := env.do(t, http.MethodPost, "/api/emails/classify", body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[ClassifyResponse](t, rec)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "quote", resp.Results[0].Category)
	assert.Equal(t, classifier.DefaultUncategorized, resp.Results[1].Category)

	rec = env.do(t, http.MethodGet, "/api/emails", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]models.Email](t, rec))
}

func TestIngestAndListEmails(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/emails", `{"subject": "Boleto", "body": "segue o pix", "from": "financeiro@paypal.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	ingested := decodeBody[IngestResponse](t, rec)
	assert.Equal(t, "payment", ingested.Result.Category)

	rec = env.do(t, http.MethodGet, "/api/emails/"+ingested.Email.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/emails?category=quote", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]models.Email](t, rec))

	rec = env.do(t, http.MethodGet, "/api/emails/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/emails/reclassify", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[ReclassifyResponse](t, rec).Processed)
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/categories", `{"name": "urgent", "keywords": ["urgente"], "active": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rules := decodeBody[[]models.CategoryRule](t, rec)
	assert.Len(t, rules, len(classifier.DefaultRules())+1)

	rec = env.do(t, http.MethodPost, "/api/categories", `{"name": " "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/categories/urgent", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/categories/urgent", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)
	env.do(t, http.MethodPost, "/api/chat/sessions/"+session.ID+"/messages", `{"message":"ajuda"}`)

	rec := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `attendant_chat_turns_total{action="help"} 1`)
}
