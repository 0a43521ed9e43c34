// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pdiddy/crewline/internal/log"
	"github.com/pdiddy/crewline/internal/workflow"
	"github.com/pdiddy/crewline/pkg/types"
)

type runFunc func(ctx context.Context, deps workflow.Deps) (any, error)

// depsBuilder is replaced in tests.
var depsBuilder = buildDeps

// runWorkflow selects a backend, runs w once with history recording and
// prints the result or error record.
func runWorkflow(cmd *cobra.Command, w types.Workflow, input string, run runFunc) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deps, backend, err := depsBuilder(w)
	if err != nil {
		return emitError(cmd, err)
	}

	store := openHistory()
	if store != nil {
		defer store.Close()
	}
	tracker := store.Track(ctx, w, input, backend, log.Logger())
	deps.OnStep = tracker.OnStep

	result, err := run(ctx, deps)
	tracker.Finish(result, err)
	if err != nil {
		log.Error("run failed", "workflow", w, "run", tracker.ID(), "err", err)
		return emitError(cmd, err)
	}
	return emit(cmd.OutOrStdout(), result)
}
