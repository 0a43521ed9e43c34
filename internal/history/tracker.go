// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"log/slog"

	"github.com/pdiddy/crewline/pkg/types"
)

// Tracker records one run as it progresses. A nil *Tracker records nothing,
// so callers need not check whether history is enabled.
type Tracker struct {
	store  *Store
	id     string
	logger *slog.Logger
}

// Track starts recording a run. History problems never fail the run: they
// are logged and the returned tracker is nil.
func (s *Store) Track(ctx context.Context, w types.Workflow, request string, b types.Backend, logger *slog.Logger) *Tracker {
	if s == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	rec, err := s.Start(ctx, w, request, b)
	if err != nil {
		logger.Warn("run history disabled for this run", "err", err)
		return nil
	}
	return &Tracker{store: s, id: rec.ID, logger: logger}
}

// ID returns the run id, or "" for a nil tracker.
func (t *Tracker) ID() string {
	if t == nil {
		return ""
	}
	return t.id
}

// OnStep stores a completed step output. It matches crew.Runner.OnStep.
func (t *Tracker) OnStep(out types.Output) {
	if t == nil {
		return
	}
	if err := t.store.AppendOutput(context.Background(), t.id, out); err != nil {
		t.logger.Warn("recording step output", "run", t.id, "step", out.Step, "err", err)
	}
}

// Finish marks the run completed with result, or failed when runErr is set.
func (t *Tracker) Finish(result any, runErr error) {
	if t == nil {
		return
	}
	ctx := context.Background()
	var err error
	if runErr != nil {
		err = t.store.Fail(ctx, t.id, runErr)
	} else {
		err = t.store.Complete(ctx, t.id, result)
	}
	if err != nil {
		t.logger.Warn("recording run outcome", "run", t.id, "err", err)
	}
}
