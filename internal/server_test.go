package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/board"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/form"
)

func newTestServer() (*Server, *board.Manager) {
	m := board.NewManager(board.Board{{ID: "1", Name: "To Do", Tasks: []board.Task{{ID: "t1", Name: "first"}}}})
	bus := eventbus.New()
	m.Subscribe(board.PublishChanges(bus))
	env := &config.Env{BaseEnv: config.BaseEnv{HTTPHost: "127.0.0.1", HTTPPort: "0"}}
	return NewServer(env, board.NewServer(m, form.NewValidator(time.Now), bus)), m
}

func TestServer_Handler(t *testing.T) {
	s, m := newTestServer()
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/columns", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got board.BoardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Columns.Equal(m.Columns()))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NotFound"`)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/drag/end", strings.NewReader(`{"activeId":"t1","overId":"1"}`))
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"moved":false`)
}

func TestServer_CORSPreflight(t *testing.T) {
	s, _ := newTestServer()
	req := httptest.NewRequest(http.MethodOptions, "/api/columns/1", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	s, _ := newTestServer()
	require.NoError(t, s.Shutdown(context.Background()))
	err := s.ListenAndServe(context.Background())
	assert.True(t, errors.Is(err, http.ErrServerClosed))
}
