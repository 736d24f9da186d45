package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/trainingagent/anthropic"
	"github.com/briangreenhill/trainingagent/internal/agent"
	appmw "github.com/briangreenhill/trainingagent/internal/http/middleware"
	"github.com/briangreenhill/trainingagent/learnings"
)

type fakeDashboard struct {
	connectErr error
	chatErr    error
	reply      string
	state      agent.State
	doc        learnings.Document
	gotText    string
}

func (d *fakeDashboard) Connect(context.Context) error { return d.connectErr }

func (d *fakeDashboard) SendChat(_ context.Context, text string) (anthropic.Message, error) {
	d.gotText = text
	if d.chatErr != nil {
		return anthropic.Message{}, d.chatErr
	}
	return anthropic.Message{Role: anthropic.RoleAssistant, Content: d.reply}, nil
}

func (d *fakeDashboard) State() agent.State { return d.state }
func (d *fakeDashboard) Learnings(context.Context) learnings.Document { return d.doc }

func serve(t *testing.T, s *Server, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	return rec
}

func newServer(d Dashboard, key string) *Server {
	return New(ServerOptions{Dashboard: d, Logger: zerolog.Nop(), DashboardKey: key})
}

func TestHealthz(t *testing.T) {
	rec := serve(t, newServer(&fakeDashboard{}, ""), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(t, newServer(&fakeDashboard{}, ""), http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestState(t *testing.T) {
	d := &fakeDashboard{state: agent.State{Connected: true, Error: ""}}
	rec := serve(t, newServer(d, ""), http.MethodGet, "/api/state", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, true, got["connected"])
	assert.Contains(t, got, "recommendation")
}

func TestConnectStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusOK},
		{"busy", agent.ErrBusy, http.StatusConflict},
		{"missing key", agent.ErrMissingAPIKey, http.StatusBadRequest},
		{"upstream", errors.New("connect: API error 500: boom"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDashboard{connectErr: tt.err, state: agent.State{Error: "shown"}}
			rec := serve(t, newServer(d, ""), http.MethodPost, "/api/connect", "", nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestChat(t *testing.T) {
	d := &fakeDashboard{reply: "Rest today."}
	rec := serve(t, newServer(d, ""), http.MethodPost, "/api/chat", `{"text":"tired?"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tired?", d.gotText)

	var got chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Rest today.", got.Reply.Content)
	assert.Equal(t, anthropic.RoleAssistant, got.Reply.Role)
}

func TestChatErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"invalid json", `{`, nil, http.StatusBadRequest},
		{"empty", `{"text":""}`, agent.ErrEmptyMessage, http.StatusBadRequest},
		{"busy", `{"text":"hi"}`, agent.ErrBusy, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDashboard{chatErr: tt.err}
			rec := serve(t, newServer(d, ""), http.MethodPost, "/api/chat", tt.body, nil)
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestLearnings(t *testing.T) {
	d := &fakeDashboard{doc: learnings.Document{Notes: []learnings.Note{{Date: "2026-10-14", Note: "likes hills"}}}}
	rec := serve(t, newServer(d, ""), http.MethodGet, "/api/learnings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"notes":[{"date":"2026-10-14","note":"likes hills"}]}`, rec.Body.String())
}

func TestDashboardKey(t *testing.T) {
	s := newServer(&fakeDashboard{}, "s3cret")

	assert.Equal(t, http.StatusUnauthorized, serve(t, s, http.MethodGet, "/api/state", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(t, s, http.MethodGet, "/api/state", "", map[string]string{appmw.KeyHeader: "s3cret"}).Code)
	assert.Equal(t, http.StatusOK, serve(t, s, http.MethodGet, "/healthz", "", nil).Code, "health is public")
}
