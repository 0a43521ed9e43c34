// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records workflow runs and the output of every step in a
// SQLite database, so a run's provenance can be inspected after the fact.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/crewline/pkg/types"
)

// ErrNotFound is returned when no run matches an id.
var ErrNotFound = errors.New("run not found")

const defaultListLimit = 20

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the run history database. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the history database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			workflow TEXT NOT NULL,
			request TEXT NOT NULL,
			state TEXT NOT NULL,
			backend TEXT,
			model TEXT,
			result TEXT,
			error TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS outputs (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			step TEXT NOT NULL,
			role TEXT NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_workflow ON runs(workflow)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Start records a new running run and returns it.
func (s *Store) Start(ctx context.Context, w types.Workflow, request string, b types.Backend) (types.RunRecord, error) {
	rec := types.RunRecord{
		ID:        uuid.NewString(),
		Workflow:  w,
		Request:   request,
		State:     types.RunRunning,
		Backend:   string(b.ID),
		Model:     b.Model,
		StartedAt: s.now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, workflow, request, state, backend, model, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Workflow), rec.Request, string(rec.State), rec.Backend, rec.Model,
		rec.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return types.RunRecord{}, fmt.Errorf("inserting run: %w", err)
	}
	return rec, nil
}

// AppendOutput stores the next step output of run id.
func (s *Store) AppendOutput(ctx context.Context, id string, out types.Output) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outputs (run_id, seq, step, role, text)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM outputs WHERE run_id = ?), ?, ?, ?)`,
		id, id, out.Step, out.Role, out.Text,
	)
	if err != nil {
		return fmt.Errorf("inserting output for run %s: %w", id, err)
	}
	return nil
}

// Complete marks run id completed with result, which must marshal to a
// JSON object.
func (s *Store) Complete(ctx context.Context, id string, result any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return s.finish(ctx, id, types.RunCompleted, string(data), "")
}

// Fail marks run id failed with runErr's message.
func (s *Store) Fail(ctx context.Context, id string, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	return s.finish(ctx, id, types.RunFailed, "", msg)
}

func (s *Store) finish(ctx context.Context, id string, state types.RunState, result, msg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET state = ?, result = NULLIF(?, ''), error = NULLIF(?, ''), finished_at = ? WHERE id = ?`,
		string(state), result, msg, s.now().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("updating run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating run %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListOptions filters List.
type ListOptions struct {
	Workflow types.Workflow
	State    types.RunState
	// Limit caps the result count. Zero uses 20; negative means no limit.
	Limit int
}

const runColumns = `id, workflow, request, state, backend, model, result, error, started_at, finished_at`

// List returns runs newest first, without their step outputs.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.RunRecord, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT ` + runColumns + ` FROM runs WHERE 1=1`)
	if opts.Workflow != "" {
		qb.WriteString(` AND workflow = ?`)
		args = append(args, string(opts.Workflow))
	}
	if opts.State != "" {
		qb.WriteString(` AND state = ?`)
		args = append(args, string(opts.State))
	}
	qb.WriteString(` ORDER BY started_at DESC, rowid DESC`)

	limit := opts.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// Get returns the run whose id is or starts with id, with its outputs in
// step order. A prefix matching several runs is an error.
func (s *Store) Get(ctx context.Context, id string) (types.RunRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.RunRecord{}, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id = ? DESC LIMIT 2`,
		id, escapeLike(id)+"%", id)
	if err != nil {
		return types.RunRecord{}, fmt.Errorf("querying run: %w", err)
	}
	var matches []types.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return types.RunRecord{}, err
		}
		matches = append(matches, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return types.RunRecord{}, err
	}

	switch {
	case len(matches) == 0:
		return types.RunRecord{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	case len(matches) > 1 && matches[0].ID != id:
		return types.RunRecord{}, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
	rec := matches[0]

	rec.Outputs, err = s.outputs(ctx, rec.ID)
	if err != nil {
		return types.RunRecord{}, err
	}
	return rec, nil
}

func (s *Store) outputs(ctx context.Context, id string) ([]types.Output, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT step, role, text FROM outputs WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("querying outputs: %w", err)
	}
	defer rows.Close()

	var outs []types.Output
	for rows.Next() {
		var o types.Output
		if err := rows.Scan(&o.Step, &o.Role, &o.Text); err != nil {
			return nil, fmt.Errorf("scanning output: %w", err)
		}
		outs = append(outs, o)
	}
	return outs, rows.Err()
}

func scanRun(rows *sql.Rows) (types.RunRecord, error) {
	var (
		rec                         types.RunRecord
		workflow, state, started    string
		backend, model, result, msg sql.NullString
		finished                    sql.NullString
	)
	if err := rows.Scan(&rec.ID, &workflow, &rec.Request, &state, &backend, &model, &result, &msg, &started, &finished); err != nil {
		return types.RunRecord{}, fmt.Errorf("scanning run: %w", err)
	}
	rec.Workflow = types.Workflow(workflow)
	rec.State = types.RunState(state)
	rec.Backend = backend.String
	rec.Model = model.String
	rec.Error = msg.String

	if result.Valid && result.String != "" {
		if err := json.Unmarshal([]byte(result.String), &rec.Result); err != nil {
			return types.RunRecord{}, fmt.Errorf("decoding result of run %s: %w", rec.ID, err)
		}
	}

	var err error
	if rec.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return types.RunRecord{}, fmt.Errorf("parsing started_at of run %s: %w", rec.ID, err)
	}
	if finished.Valid && finished.String != "" {
		t, err := time.Parse(timeLayout, finished.String)
		if err != nil {
			return types.RunRecord{}, fmt.Errorf("parsing finished_at of run %s: %w", rec.ID, err)
		}
		rec.FinishedAt = &t
	}
	return rec, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
