package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgsmith/pkgsmith/internal/events"
	"github.com/pkgsmith/pkgsmith/internal/lookup"
	"github.com/pkgsmith/pkgsmith/internal/output"
	"github.com/pkgsmith/pkgsmith/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	return NewServer(Config{
		Port:         0,
		Orchestrator: lookup.NewOrchestrator("", lookup.Options{}),
		EventBus:     events.NewBus(),
	})
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, ServiceName, body["service"])
}

func TestHandleEventsStreamsBusEvents(t *testing.T) {
	bus := events.NewBus()
	s := NewServer(Config{
		Orchestrator: lookup.NewOrchestrator("", lookup.Options{}),
		EventBus:     bus,
	})

	srv := httptest.NewServer(http.HandlerFunc(s.handleEvents))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)

	// First frame announces the connection.
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	// Drain the rest of the connected frame.
	_, err = reader.ReadString('\n')
	require.NoError(t, err)
	_, err = reader.ReadString('\n')
	require.NoError(t, err)

	// Give the handler time to subscribe before publishing.
	time.Sleep(50 * time.Millisecond)
	bus.Publish(events.Event{
		Type:    events.EventLookupCompleted,
		Payload: map[string]any{"package_name": "express"},
	})

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: lookup.completed\n", line)

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "data: "))
	assert.Contains(t, line, `"package_name":"express"`)
}

func TestCorrelationIDMiddleware(t *testing.T) {
	var seen string
	handler := CorrelationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
	}))

	// Generated when absent.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Correlation-ID"))

	// Propagated when present.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Correlation-ID"))
}

func TestCorsMiddlewarePreflights(t *testing.T) {
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestBindArguments(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"packages": []any{
			map[string]any{"ecosystem": "npm", "package_name": "express"},
		},
	}

	var args struct {
		Packages []lookup.Request `json:"packages"`
	}
	require.NoError(t, bindArguments(req, &args))
	require.Len(t, args.Packages, 1)
	assert.Equal(t, lookup.EcosystemNPM, args.Packages[0].Ecosystem)
	assert.Equal(t, "express", args.Packages[0].PackageName)
}

func TestTextResultRendersJSON(t *testing.T) {
	result, err := textResult(map[string]string{"hello": "world"})
	require.NoError(t, err)

	require.Len(t, result.Content, 1)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(text.Text), &body))
	assert.Equal(t, "world", body["hello"])
}

func TestHandleGetLatestPackageVersionsRejectsBadArguments(t *testing.T) {
	s := newTestServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"packages": "not-an-array"}

	result, err := s.handleGetLatestPackageVersions(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func newHistoryServer(t *testing.T) *Server {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewSQLiteStorage(dbPath, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.LogLookup(context.Background(),
		"npm", "express", "", "5.1.0", storage.LookupStatusResolved, nil))

	return NewServer(Config{
		Orchestrator: lookup.NewOrchestrator("", lookup.Options{Store: store}),
		EventBus:     events.NewBus(),
	})
}

func TestHandleHistoryReturnsRecordedLookups(t *testing.T) {
	s := newHistoryServer(t)

	req := httptest.NewRequest(http.MethodGet, "/history?ecosystem=npm&package_name=express", nil)
	rec := httptest.NewRecorder()
	s.handleHistory(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body output.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)

	entries, ok := body.Data.([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)

	entry, ok := entries[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "express", entry["package_name"])
	assert.Equal(t, "5.1.0", entry["resolved_version"])
	assert.Equal(t, "resolved", entry["status"])
}

func TestHandleHistorySinceWindow(t *testing.T) {
	s := newHistoryServer(t)

	since := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	req := httptest.NewRequest(http.MethodGet, "/history?since="+url.QueryEscape(since), nil)
	rec := httptest.NewRecorder()
	s.handleHistory(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body output.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)

	entries, ok := body.Data.([]any)
	require.True(t, ok)
	assert.Len(t, entries, 1)
}

func TestHandleHistoryRejectsBadParameters(t *testing.T) {
	s := newHistoryServer(t)

	tests := []struct {
		name  string
		query string
	}{
		{"missing package", "?ecosystem=npm"},
		{"missing ecosystem", "?package_name=express"},
		{"bad since", "?since=yesterday"},
		{"bad limit", "?ecosystem=npm&package_name=express&limit=-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/history"+tt.query, nil)
			rec := httptest.NewRecorder()
			s.handleHistory(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body output.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestHandleHistoryWithoutStorage(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/history?ecosystem=npm&package_name=express", nil)
	rec := httptest.NewRecorder()
	s.handleHistory(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body output.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
}
