// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/crewline/pkg/types"
)

var gemini = types.Backend{ID: types.BackendGemini, Model: "gemini/gemini-pro"}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec, err := s.Start(ctx, types.WorkflowWebApp, "login page", gemini)
	require.NoError(t, err)
	assert.Len(t, rec.ID, 36)
	assert.Equal(t, types.RunRunning, rec.State)

	require.NoError(t, s.AppendOutput(ctx, rec.ID, types.Output{Step: "plan", Role: "Planner", Text: "p"}))
	require.NoError(t, s.AppendOutput(ctx, rec.ID, types.Output{Step: "code", Role: "Coder", Text: "c"}))
	require.NoError(t, s.Complete(ctx, rec.ID, map[string]string{"zip_path": "/zip_folder/login_page.zip"}))

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RunCompleted, got.State)
	assert.Equal(t, "gemini", got.Backend)
	assert.Equal(t, "gemini/gemini-pro", got.Model)
	assert.Equal(t, "login page", got.Request)
	assert.Equal(t, rec.StartedAt, got.StartedAt)
	require.NotNil(t, got.FinishedAt)
	assert.True(t, got.FinishedAt.After(got.StartedAt))
	assert.Equal(t, "/zip_folder/login_page.zip", got.Result["zip_path"])
	assert.Equal(t, []types.Output{
		{Step: "plan", Role: "Planner", Text: "p"},
		{Step: "code", Role: "Coder", Text: "c"},
	}, got.Outputs)
}

func TestFail(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec, err := s.Start(ctx, types.WorkflowBlog, "go", gemini)
	require.NoError(t, err)
	require.NoError(t, s.Fail(ctx, rec.ID, errors.New("quota exceeded")))

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RunFailed, got.State)
	assert.Equal(t, "quota exceeded", got.Error)
	assert.Nil(t, got.Result)

	assert.ErrorIs(t, s.Fail(ctx, "missing", errors.New("x")), ErrNotFound)
}

func TestGetByPrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec, err := s.Start(ctx, types.WorkflowBlog, "go", gemini)
	require.NoError(t, err)

	got, err := s.Get(ctx, rec.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = s.Get(ctx, "zzzz")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "%")
	assert.ErrorIs(t, err, ErrNotFound, "LIKE wildcards are literal")
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, w := range []types.Workflow{types.WorkflowBlog, types.WorkflowWebApp, types.WorkflowBlog} {
		rec, err := s.Start(ctx, w, "req", gemini)
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	require.NoError(t, s.Complete(ctx, ids[0], map[string]string{}))

	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID, "newest first")
	assert.Empty(t, all[0].Outputs)

	blogs, err := s.List(ctx, ListOptions{Workflow: types.WorkflowBlog})
	require.NoError(t, err)
	assert.Len(t, blogs, 2)

	done, err := s.List(ctx, ListOptions{State: types.RunCompleted})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, ids[0], done[0].ID)

	one, err := s.List(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestExport(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec, err := s.Start(ctx, types.WorkflowAnalysis, "sales", gemini)
	require.NoError(t, err)
	require.NoError(t, s.AppendOutput(ctx, rec.ID, types.Output{Step: "explore", Role: "Data Explorer", Text: "rows: 91"}))

	var jsonBuf bytes.Buffer
	require.NoError(t, s.Export(ctx, &jsonBuf, FormatJSON, ListOptions{}))
	var decoded []types.RunRecord
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "rows: 91", decoded[0].Outputs[0].Text)

	var yamlBuf bytes.Buffer
	require.NoError(t, s.Export(ctx, &yamlBuf, FormatYAML, ListOptions{}))
	var generic []map[string]any
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &generic))
	require.Len(t, generic, 1)
	assert.Equal(t, "analysis", generic[0]["workflow"])

	assert.Error(t, s.Export(ctx, io.Discard, "xml", ListOptions{}))
}

func TestTracker(t *testing.T) {
	s := openTestStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tr := s.Track(context.Background(), types.WorkflowBlog, "go", gemini, logger)
	require.NotNil(t, tr)
	tr.OnStep(types.Output{Step: "research", Role: "go Researcher", Text: "notes"})
	tr.Finish(map[string]string{"url": "https://www.notion.so/x"}, nil)

	got, err := s.Get(context.Background(), tr.ID())
	require.NoError(t, err)
	assert.Equal(t, types.RunCompleted, got.State)
	assert.Len(t, got.Outputs, 1)
}

func TestNilTracker(t *testing.T) {
	var s *Store
	tr := s.Track(context.Background(), types.WorkflowBlog, "go", gemini, nil)
	assert.Nil(t, tr)
	assert.Empty(t, tr.ID())
	assert.NotPanics(t, func() {
		tr.OnStep(types.Output{})
		tr.Finish(nil, errors.New("x"))
	})
}
