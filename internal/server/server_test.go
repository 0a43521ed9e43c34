// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/crewline/internal/history"
	"github.com/pdiddy/crewline/internal/llm"
	"github.com/pdiddy/crewline/internal/notion"
	"github.com/pdiddy/crewline/internal/provider"
	"github.com/pdiddy/crewline/internal/workflow"
	"github.com/pdiddy/crewline/pkg/types"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type pagePublisher struct{}

func (pagePublisher) CreatePage(context.Context, string, string, []types.Block) (notion.Page, error) {
	return notion.Page{URL: "https://www.notion.so/page"}, nil
}

// echoDeps answers every role with answers[role], or "ok".
func echoDeps(answers map[string]string) DepsFunc {
	return func(w types.Workflow) (workflow.Deps, types.Backend, error) {
		gen := llm.GeneratorFunc(func(_ context.Context, req types.GenerationRequest) (string, error) {
			if a, ok := answers[req.Role.Name]; ok {
				return a, nil
			}
			return "ok", nil
		})
		return workflow.Deps{Generator: gen, Publisher: pagePublisher{}, Logger: quiet},
			types.Backend{ID: types.BackendOpenAI, Model: "gpt-4o"}, nil
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") && strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestInvalidInput(t *testing.T) {
	h := New(Config{Deps: echoDeps(nil), Logger: quiet}).Handler()

	tests := []struct {
		path, body, want string
	}{
		{"/api/generate", `{}`, "Invalid topic"},
		{"/api/generate", `{"topic": 3}`, "Invalid topic"},
		{"/api/web", `{"prompt": "  "}`, "Invalid prompt"},
		{"/api/analyze", `not json`, "Invalid analysis request"},
	}
	for _, tc := range tests {
		rec, out := do(t, h, http.MethodPost, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.path)
		assert.Equal(t, tc.want, out["error"], tc.path)
	}
}

func TestGenerate(t *testing.T) {
	h := New(Config{
		Deps:   echoDeps(map[string]string{"go Blog Writer": "# Go\nbody"}),
		Blog:   workflow.BlogOptions{DatabaseID: "db"},
		Logger: quiet,
	}).Handler()

	rec, out := do(t, h, http.MethodPost, "/api/generate", `{"topic": "go"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "https://www.notion.so/page", out["url"])
	assert.Equal(t, "Go", out["title"])
}

func TestWebAndZipDownload(t *testing.T) {
	root := t.TempDir()
	publish := filepath.Join(root, "public", "zip_folder")
	store, err := history.Open(filepath.Join(root, "history.db"))
	require.NoError(t, err)
	defer store.Close()

	packaged := `{"project_name": "Todo App", "files": {"pages/index.js": "export default () => null"}}`
	h := New(Config{
		Deps:    echoDeps(map[string]string{"Project Packager": packaged}),
		WebApp:  workflow.WebAppOptions{OutputDir: root, PublishDir: publish},
		History: store,
		Logger:  quiet,
	}).Handler()

	rec, out := do(t, h, http.MethodPost, "/api/web", `{"prompt": "todo app"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "/zip_folder/todo_app.zip", out["zip_path"])
	runID := rec.Header().Get("X-Run-ID")
	require.NotEmpty(t, runID)

	zipRec := httptest.NewRecorder()
	h.ServeHTTP(zipRec, httptest.NewRequest(http.MethodGet, "/zip_folder/todo_app.zip", nil))
	assert.Equal(t, http.StatusOK, zipRec.Code)
	assert.True(t, strings.HasPrefix(zipRec.Body.String(), "PK"))

	runRec, run := do(t, h, http.MethodGet, "/api/runs/"+runID, "")
	require.Equal(t, http.StatusOK, runRec.Code)
	assert.Equal(t, "completed", run["state"])
	assert.Len(t, run["outputs"], 4)
}

func TestRunFailureReportsRecord(t *testing.T) {
	h := New(Config{
		Deps:   echoDeps(map[string]string{"Project Packager": "no json here"}),
		WebApp: workflow.WebAppOptions{OutputDir: t.TempDir(), NoArchive: true},
		Logger: quiet,
	}).Handler()

	rec, out := do(t, h, http.MethodPost, "/api/web", `{"prompt": "x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "no json here", out["output"])
	assert.NotEmpty(t, out["error"])
}

func TestMissingBackend(t *testing.T) {
	deps := func(types.Workflow) (workflow.Deps, types.Backend, error) {
		return workflow.Deps{}, types.Backend{}, &provider.ConfigError{Missing: []string{"GEMINI_API_KEY", "OPENAI_API_KEY"}}
	}
	h := New(Config{Deps: deps, Logger: quiet}).Handler()

	rec, out := do(t, h, http.MethodPost, "/api/analyze", `{"request": "sales"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, out["error"], "GEMINI_API_KEY")
}

func TestAnalyze(t *testing.T) {
	h := New(Config{Deps: echoDeps(nil), Logger: quiet}).Handler()
	rec, out := do(t, h, http.MethodPost, "/api/analyze", `{"request": "sales"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sales", out["request"])
	assert.Len(t, out["charts"], 5)
}

func TestRunsWithoutHistory(t *testing.T) {
	h := New(Config{Logger: quiet}).Handler()
	rec, _ := do(t, h, http.MethodGet, "/api/runs", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRuns(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	defer store.Close()
	h := New(Config{Deps: echoDeps(nil), History: store, Logger: quiet}).Handler()

	rec, _ := do(t, h, http.MethodGet, "/api/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	do(t, h, http.MethodPost, "/api/analyze", `{"request": "sales"}`)

	rec, _ = do(t, h, http.MethodGet, "/api/runs?workflow=analysis&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []types.RunRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, types.RunCompleted, runs[0].State)

	rec, _ = do(t, h, http.MethodGet, "/api/runs?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/runs/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec, out := do(t, New(Config{}).Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
}
