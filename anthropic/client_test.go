package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithBaseURL(srv.URL), WithHTTPClient(srv.Client())}, opts...)
	return New(opts...)
}

func TestSendRequestShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, DefaultVersion, r.Header.Get("anthropic-version"))
		assert.Equal(t, DefaultBeta, r.Header.Get("anthropic-beta"))
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-test", req.Model)
		assert.Equal(t, 512, req.MaxTokens)
		require.Len(t, req.System, 1)
		assert.Equal(t, "text", req.System[0].Type)
		assert.Equal(t, "context block", req.System[0].Text)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, Message{Role: RoleUser, Content: "how am I doing?"}, req.Messages[0])

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Fine."},{"type":"text","text":"ignored"}]}`))
	}, WithAPIKey("sk-test"), WithModel("claude-test", 512))

	reply, err := c.Send(context.Background(), "context block", "how am I doing?")
	require.NoError(t, err)
	assert.Equal(t, "Fine.", reply)
}

func TestSendWithoutAPIKeyOrBeta(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("x-api-key"))
		assert.Empty(t, r.Header.Get("anthropic-beta"))
		assert.Equal(t, "2024-01-01", r.Header.Get("anthropic-version"))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}, WithVersion("2024-01-01", ""))

	reply, err := c.Send(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestSendFallbackReply(t *testing.T) {
	for _, body := range []string{`{}`, `{"content":[]}`, `{"content":[{"type":"tool_use"}]}`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		reply, err := c.Send(context.Background(), "s", "u")
		require.NoError(t, err, "body %s", body)
		assert.Equal(t, FallbackReply, reply)
	}
}

func TestSendNon2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error"}}`))
	})

	_, err := c.Send(context.Background(), "s", "u")
	require.Error(t, err)

	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, http.StatusTooManyRequests, aerr.StatusCode)
	assert.Contains(t, aerr.Body, "rate_limit_error")
}

func TestSendMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	})

	_, err := c.Send(context.Background(), "s", "u")
	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, http.StatusOK, aerr.StatusCode)
	assert.Contains(t, err.Error(), "decode response")
}

func TestNewDefaults(t *testing.T) {
	c := New(WithModel("", 0))
	assert.Equal(t, DefaultModel, c.model)
	assert.Equal(t, DefaultMaxTokens, c.maxTokens)
	assert.Equal(t, DefaultBaseURL, c.baseURL.String())
}
