package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	root := NewRootCmd()
	expected := map[string]bool{"ping": false, "trigger": false, "recent": false, "stats": false}
	for _, c := range root.Commands() {
		name := strings.Fields(c.Use)[0]
		if _, ok := expected[name]; ok {
			expected[name] = true
		}
	}
	for name, found := range expected {
		assert.True(t, found, "expected command %q to be registered", name)
	}
}

func relayStub(t *testing.T, seen *map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/trigger/n8n":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
			_, _ = w.Write([]byte(`{"status":"success","workflow":"daily","trigger_id":"abc"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/triggers/recent":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"status":"success","triggers":[],"count":0}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/stats":
			_, _ = w.Write([]byte(`{"active_connections":2,"redis_available":true}`))
		case r.Method == http.MethodPost && r.URL.Path == "/test/n8n":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"detail":"n8n unreachable"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTrigger_PostsWorkflowRequest(t *testing.T) {
	var seen map[string]interface{}
	srv := relayStub(t, &seen)

	out, err := run(t, "trigger", "daily", "--server", srv.URL, "--type", "scheduled", "--data", `{"region":"north"}`)
	require.NoError(t, err)

	assert.Equal(t, "daily", seen["workflow_name"])
	assert.Equal(t, "scheduled", seen["trigger_type"])
	assert.Equal(t, map[string]interface{}{"region": "north"}, seen["data"])

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "abc", res["trigger_id"])
}

func TestTrigger_RejectsBadInputBeforeCalling(t *testing.T) {
	var seen map[string]interface{}
	srv := relayStub(t, &seen)

	_, err := run(t, "trigger", "daily", "--server", srv.URL, "--type", "hourly")
	assert.Error(t, err)

	_, err = run(t, "trigger", "daily", "--server", srv.URL, "--data", `[1,2]`)
	assert.Error(t, err)
	assert.Nil(t, seen)

	_, err = run(t, "trigger", "--server", srv.URL)
	assert.Error(t, err)
}

func TestRecent_PassesLimit(t *testing.T) {
	srv := relayStub(t, new(map[string]interface{}))
	out, err := run(t, "recent", "--server", srv.URL, "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, `"count": 0`)
}

func TestStats_YAMLOutput(t *testing.T) {
	srv := relayStub(t, new(map[string]interface{}))
	out, err := run(t, "stats", "--server", srv.URL, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "active_connections: 2")
	assert.Contains(t, out, "redis_available: true")
}

func TestPing_SurfacesRelayDetail(t *testing.T) {
	srv := relayStub(t, new(map[string]interface{}))
	_, err := run(t, "ping", "--server", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "n8n unreachable")
	assert.Contains(t, err.Error(), "502")
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	assert.Error(t, write(&bytes.Buffer{}, "table", map[string]int{"a": 1}))
}
