package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhookPayload struct {
	Text   string           `json:"text"`
	Blocks []map[string]any `json:"blocks"`
}

func newWebhookServer(t *testing.T) (*httptest.Server, <-chan webhookPayload) {
	t.Helper()
	received := make(chan webhookPayload, 10)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload webhookPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		received <- payload
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	return server, received
}

func waitForAlert(t *testing.T, received <-chan webhookPayload) webhookPayload {
	t.Helper()
	select {
	case payload := <-received:
		return payload
	case <-time.After(2 * time.Second):
		require.FailNow(t, "expected a Slack alert")
		return webhookPayload{}
	}
}

func assertNoAlert(t *testing.T, received <-chan webhookPayload) {
	t.Helper()
	select {
	case payload := <-received:
		assert.Failf(t, "unexpected Slack alert", "%s", payload.Text)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestErrorAlertMiddleware_AlertOnError(t *testing.T) {
	server, received := newWebhookServer(t)
	m := NewErrorAlertMiddleware(SlackAlertConfig{
		WebhookURL:  server.URL,
		Environment: "dev",
		AppName:     "weatherbot",
		LogsURL:     "https://logs.example.com",
	})

	m.AlertOnError(fmt.Errorf("city not found"), "Slash command /weatherbot")

	payload := waitForAlert(t, received)
	assert.Equal(t, "Slash command /weatherbot: city not found", payload.Text)
	require.Len(t, payload.Blocks, 4)
	assert.Equal(t, "header", payload.Blocks[0]["type"])
	header := payload.Blocks[0]["text"].(map[string]any)
	assert.Equal(t, "🚨 [dev] [weatherbot] Error Alert", header["text"])
}

func TestErrorAlertMiddleware_ThrottlesRepeatedErrors(t *testing.T) {
	server, received := newWebhookServer(t)
	m := NewErrorAlertMiddleware(SlackAlertConfig{WebhookURL: server.URL, AppName: "weatherbot"})
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.AlertOnError(fmt.Errorf("boom"), "ctx")
	waitForAlert(t, received)

	m.AlertOnError(fmt.Errorf("boom"), "ctx")
	assertNoAlert(t, received)

	m.AlertOnError(fmt.Errorf("different"), "ctx")
	assert.Equal(t, "ctx: different", waitForAlert(t, received).Text)

	now = now.Add(11 * time.Minute)
	m.AlertOnError(fmt.Errorf("boom"), "ctx")
	assert.Equal(t, "ctx: boom", waitForAlert(t, received).Text)
}

func TestErrorAlertMiddleware_HTTPMiddlewareRecoversPanics(t *testing.T) {
	server, received := newWebhookServer(t)
	m := NewErrorAlertMiddleware(SlackAlertConfig{WebhookURL: server.URL, AppName: "weatherbot"})

	handler := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil reading")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/slash", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	payload := waitForAlert(t, received)
	assert.Contains(t, payload.Text, "HTTP POST /slash")
	assert.Contains(t, payload.Text, "PANIC - nil reading")
}

func TestErrorAlertMiddleware_PassesThrough(t *testing.T) {
	m := NewErrorAlertMiddleware(SlackAlertConfig{})

	handler := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestErrorAlertMiddleware_DisabledWithoutWebhook(t *testing.T) {
	m := NewErrorAlertMiddleware(SlackAlertConfig{})

	assert.NotPanics(t, func() {
		m.AlertOnError(fmt.Errorf("boom"), "ctx")
		m.sendSlackAlert("boom", "ctx")
	})
}
