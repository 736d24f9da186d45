package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/trainingagent/internal/agent"
	"github.com/briangreenhill/trainingagent/internal/config"
	"github.com/briangreenhill/trainingagent/intervals"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Assistant: config.AssistantConfig{
			BaseURL:   "http://127.0.0.1:1",
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 256,
			Version:   "2023-06-01",
		},
		Store:       config.StoreConfig{Backend: "file", Dir: t.TempDir()},
		HTTPTimeout: 5 * time.Second,
	}
}

func TestBuildWithoutIntervalsKey(t *testing.T) {
	a, closeStore, err := Build(context.Background(), testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer func() { assert.NoError(t, closeStore()) }()

	assert.ErrorIs(t, a.Connect(context.Background()), agent.ErrMissingAPIKey)
	assert.Equal(t, "please enter an API key", a.State().Error)
}

func TestBuildConnects(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/proxy/api/v1/athlete/i9":
			fmt.Fprint(w, `{"id":"i9","ctl":30}`)
		default:
			fmt.Fprint(w, `[]`)
		}
	}))
	defer proxy.Close()

	cfg := testConfig(t)
	cfg.Intervals = config.IntervalsConfig{ProxyURL: proxy.URL, APIKey: "k", AthleteID: "i9"}

	a, closeStore, err := Build(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer func() { assert.NoError(t, closeStore()) }()

	require.NoError(t, a.Connect(context.Background()))
	st := a.State()
	assert.True(t, st.Connected)
	assert.Equal(t, "i9", st.Profile.ID)
}

func TestBuildKeyWithoutAthleteFailsConnect(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	defer proxy.Close()

	cfg := testConfig(t)
	cfg.Intervals = config.IntervalsConfig{ProxyURL: proxy.URL, APIKey: "k"}

	a, closeStore, err := Build(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer func() { assert.NoError(t, closeStore()) }()

	require.ErrorIs(t, a.Connect(context.Background()), intervals.ErrMissingAthleteID)
	assert.Equal(t, "connection failed: athlete ID required", a.State().Error)
}

func TestBuildBadStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "redis"
	_, _, err := Build(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
}
