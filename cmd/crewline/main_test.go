// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/crewline/internal/history"
	"github.com/pdiddy/crewline/internal/llm"
	"github.com/pdiddy/crewline/internal/structured"
	"github.com/pdiddy/crewline/internal/workflow"
	"github.com/pdiddy/crewline/pkg/types"
)

// withSettings swaps the global settings and deps builder for one test.
func withSettings(t *testing.T, s types.Settings, build func(types.Workflow) (workflow.Deps, types.Backend, error)) {
	t.Helper()
	prevSettings, prevBuilder := settings, depsBuilder
	settings = s
	if build != nil {
		depsBuilder = build
	}
	t.Cleanup(func() {
		settings, depsBuilder = prevSettings, prevBuilder
	})
}

func testCommand(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())
	return cmd
}

func decodeLine(t *testing.T, out *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1, "exactly one JSON line on stdout")
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	return rec
}

func TestEmitError(t *testing.T) {
	var out bytes.Buffer
	err := emitError(testCommand(&out), &structured.RecoveryError{Raw: "not json"})

	assert.ErrorIs(t, err, errReported)
	rec := decodeLine(t, &out)
	assert.Equal(t, "could not recover structured output", rec["error"])
	assert.Equal(t, "not json", rec["output"])
}

func TestExecuteReportsArgumentErrors(t *testing.T) {
	chdir(t, t.TempDir())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing request", []string{"webapp"}, "accepts 1 arg(s), received 0"},
		{"extra request", []string{"blog", "a", "b"}, "accepts 1 arg(s), received 2"},
		{"unknown command", []string{"podcast"}, `unknown command "podcast"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			rootCmd.SetArgs(tt.args)
			assert.Equal(t, 1, execute(rootCmd))
			assert.Contains(t, decodeLine(t, &out)["error"], tt.wantErr)
		})
	}
}

func TestRunWorkflowRecordsHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	backend := types.Backend{ID: types.BackendGemini, Model: "gemini-1.5-flash"}
	withSettings(t, types.Settings{HistoryDB: dbPath}, func(types.Workflow) (workflow.Deps, types.Backend, error) {
		gen := llm.GeneratorFunc(func(_ context.Context, req types.GenerationRequest) (string, error) {
			return "text from " + req.Role.Name, nil
		})
		return workflow.Deps{Generator: gen}, backend, nil
	})

	var out bytes.Buffer
	err := runWorkflow(testCommand(&out), types.WorkflowAnalysis, "which regions grow",
		func(ctx context.Context, deps workflow.Deps) (any, error) {
			return workflow.RunAnalysis(ctx, deps, "which regions grow")
		})
	require.NoError(t, err)

	rec := decodeLine(t, &out)
	assert.Equal(t, "which regions grow", rec["request"])
	assert.NotEmpty(t, rec["summary"])

	store, err := history.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.List(context.Background(), history.ListOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, types.RunCompleted, runs[0].State)
	assert.Equal(t, types.WorkflowAnalysis, runs[0].Workflow)
	assert.Equal(t, "gemini-1.5-flash", runs[0].Model)

	full, err := store.Get(context.Background(), runs[0].ID)
	require.NoError(t, err)
	assert.Len(t, full.Outputs, 3)
}

func TestRunWorkflowBackendUnavailable(t *testing.T) {
	withSettings(t, types.Settings{}, func(types.Workflow) (workflow.Deps, types.Backend, error) {
		return workflow.Deps{}, types.Backend{}, errors.New("no generation backend configured")
	})

	called := false
	var out bytes.Buffer
	err := runWorkflow(testCommand(&out), types.WorkflowBlog, "topic",
		func(context.Context, workflow.Deps) (any, error) {
			called = true
			return nil, nil
		})

	assert.ErrorIs(t, err, errReported)
	assert.False(t, called)
	assert.Equal(t, map[string]any{"error": "no generation backend configured"}, decodeLine(t, &out))
}

func TestRunWorkflowFailureIsRecorded(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	withSettings(t, types.Settings{HistoryDB: dbPath}, func(types.Workflow) (workflow.Deps, types.Backend, error) {
		gen := llm.GeneratorFunc(func(context.Context, types.GenerationRequest) (string, error) {
			return "", errors.New("quota exceeded")
		})
		return workflow.Deps{Generator: gen}, types.Backend{ID: types.BackendOpenAI}, nil
	})

	var out bytes.Buffer
	err := runWorkflow(testCommand(&out), types.WorkflowAnalysis, "r",
		func(ctx context.Context, deps workflow.Deps) (any, error) {
			return workflow.RunAnalysis(ctx, deps, "r")
		})
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, decodeLine(t, &out)["error"], "quota exceeded")

	store, err := history.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.List(context.Background(), history.ListOptions{State: types.RunFailed})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Contains(t, runs[0].Error, "quota exceeded")
}

func TestBlogRequiresNotionBeforeBackend(t *testing.T) {
	built := false
	withSettings(t, types.Settings{Notion: types.NotionSettings{Token: "secret_x"}}, func(types.Workflow) (workflow.Deps, types.Backend, error) {
		built = true
		return workflow.Deps{}, types.Backend{}, nil
	})

	var out bytes.Buffer
	blogCmd.SetOut(&out)
	t.Cleanup(func() { blogCmd.SetOut(nil) })

	err := blogCmd.RunE(blogCmd, []string{"quantum computing"})
	assert.ErrorIs(t, err, errReported)
	assert.False(t, built)
	assert.Equal(t, workflow.ErrPublisherNotConfigured.Error(), decodeLine(t, &out)["error"])
}

func TestRolesPrintsPipeline(t *testing.T) {
	var out bytes.Buffer
	rolesCmd.SetOut(&out)
	t.Cleanup(func() { rolesCmd.SetOut(nil) })

	require.NoError(t, rolesCmd.RunE(rolesCmd, []string{"webapp", "a todo list"}))

	var steps []crewStep
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &steps))
	require.Len(t, steps, 4)
	assert.Contains(t, steps[0].Capabilities, types.CapabilityWebSearch)
	assert.Empty(t, steps[3].Capabilities)
	assert.Contains(t, steps[0].Instructions, "a todo list")
}

func TestRolesUnknownWorkflow(t *testing.T) {
	err := rolesCmd.RunE(rolesCmd, []string{"podcast"})
	assert.ErrorContains(t, err, `unknown workflow "podcast"`)
}

func TestHistoryList(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	withSettings(t, types.Settings{HistoryDB: dbPath}, nil)

	store, err := history.Open(dbPath)
	require.NoError(t, err)
	rec, err := store.Start(context.Background(), types.WorkflowBlog, "quantum computing", types.Backend{ID: types.BackendGemini})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	var out bytes.Buffer
	historyListCmd.SetOut(&out)
	historyListCmd.SetContext(context.Background())
	t.Cleanup(func() { historyListCmd.SetOut(nil) })

	require.NoError(t, historyListCmd.RunE(historyListCmd, nil))
	assert.Contains(t, out.String(), "WORKFLOW")
	assert.Contains(t, out.String(), rec.ID[:8])
	assert.Contains(t, out.String(), "quantum computing")
}

func TestHistoryDisabled(t *testing.T) {
	withSettings(t, types.Settings{}, nil)
	err := historyListCmd.RunE(historyListCmd, nil)
	assert.ErrorContains(t, err, "disabled")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b c", truncate("a\n b\tc", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
