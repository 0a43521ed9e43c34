// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"errors"

	"github.com/pdiddy/crewline/internal/structured"
)

// ErrorRecord converts a run error into the record reported to callers:
// {"error": msg}, plus "output" with the raw text when structured output
// could not be recovered, or "data" with the decoded record when it lacked
// required fields.
func ErrorRecord(err error) map[string]any {
	rec := map[string]any{"error": err.Error()}

	var recErr *structured.RecoveryError
	var valErr *structured.ValidationError
	switch {
	case errors.As(err, &recErr):
		rec["output"] = recErr.Raw
	case errors.As(err, &valErr):
		rec["data"] = valErr.Record
	}
	return rec
}
