package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/trainingagent/internal/agent"
	"github.com/briangreenhill/trainingagent/intervals"
	"github.com/briangreenhill/trainingagent/recovery"
)

// isolateEnv points the store at a temp dir and clears upstream credentials
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("STORE_DIR", dir)
	t.Setenv("INTERVALS_API_KEY", "")
	t.Setenv("INTERVALS_ATHLETE_ID", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FILE", "")
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "trainingagent "+version+"\n", out)
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := run(t, "strength")
	assert.Error(t, err)
}

func TestLearningsEmpty(t *testing.T) {
	isolateEnv(t)
	out, _, err := run(t, "learnings")
	require.NoError(t, err)
	assert.Equal(t, "{}\n", out)
}

func TestLearningsExisting(t *testing.T) {
	dir := isolateEnv(t)
	require.NoError(t, os.WriteFile(dir+"/agent_learnings.json",
		[]byte(`{"notes":[{"date":"2026-10-01","note":"long ride on Sunday"}]}`), 0o644))

	out, _, err := run(t, "learnings")
	require.NoError(t, err)
	assert.Contains(t, out, `"note": "long ride on Sunday"`)
}

func TestStatusWithoutKey(t *testing.T) {
	isolateEnv(t)
	_, _, err := run(t, "status")
	require.Error(t, err)
	assert.Equal(t, "please enter an API key", err.Error())
}

func TestChatRequiresMessage(t *testing.T) {
	isolateEnv(t)
	_, _, err := run(t, "chat")
	assert.Error(t, err)
}

func TestChatWithoutIntervals(t *testing.T) {
	isolateEnv(t)
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content":[{"type":"text","text":"✅ Gespeichert: rest days on Friday"}]}`)
	}))
	defer llm.Close()
	t.Setenv("ANTHROPIC_BASE_URL", llm.URL)

	out, errOut, err := run(t, "chat", "I", "rest", "on", "Fridays")
	require.NoError(t, err)
	assert.Equal(t, "✅ Gespeichert: rest days on Friday\n", out)
	assert.Contains(t, errOut, "please enter an API key")

	out, _, err = run(t, "learnings")
	require.NoError(t, err)
	assert.Contains(t, out, `"note": "rest days on Friday"`)
}

func TestRenderStatus(t *testing.T) {
	st := agent.State{
		Profile:    &intervals.Athlete{Name: "Sam"},
		Activities: make([]intervals.Activity, 4),
		Assessment: &recovery.Assessment{Score: 8.5, HRVDeltaPct: 6.2, RHRDeltaPct: -2},
	}
	st.Recommendation = recovery.Recommend(st.Assessment)

	out := renderStatus(st)
	assert.Contains(t, out, "Athlete: Sam\n")
	assert.Contains(t, out, "Recovery: 8.5/10 (HRV +6.2%, resting HR -2.0%)\n")
	assert.Contains(t, out, "Status: GO, normal training\n")
	assert.Contains(t, out, "Activities (30 days): 4\n")

	empty := renderStatus(agent.State{Recommendation: recovery.Recommend(nil)})
	assert.Contains(t, empty, "Recovery: N/A\n")
	assert.Contains(t, empty, "Status: unknown, no data\n")
}
