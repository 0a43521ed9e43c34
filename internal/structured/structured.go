// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package structured recovers JSON records from free-form generated text.
//
// Recovery is deliberately shallow: the whole text is decoded strictly,
// and failing that the span from the first "{" to the last "}" is decoded
// strictly. Nothing else is repaired. Text holding two separate objects
// therefore fails, because the span covers both.
package structured

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/crewline/pkg/types"
)

// RecoveryError reports text from which no JSON object could be recovered.
// Raw is the unmodified input.
type RecoveryError struct {
	Raw string
}

func (e *RecoveryError) Error() string {
	return "could not recover structured output"
}

// ValidationError reports a decoded record that lacks required fields.
type ValidationError struct {
	Record map[string]any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return "structured output missing required fields"
	}
	return "structured output missing required fields: " + e.Reason
}

// Parse decodes text into a JSON object. Anything that does not decode to an
// object, including a bare array or scalar, is a *RecoveryError.
func Parse(text string) (map[string]any, error) {
	if rec, ok := decodeObject(text); ok {
		return rec, nil
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if rec, ok := decodeObject(text[start : end+1]); ok {
			return rec, nil
		}
	}
	return nil, &RecoveryError{Raw: text}
}

// decodeObject decodes s as exactly one JSON object.
func decodeObject(s string) (map[string]any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	var rec map[string]any
	if err := dec.Decode(&rec); err != nil || rec == nil {
		return nil, false
	}
	if strings.TrimSpace(s[dec.InputOffset():]) != "" {
		return nil, false
	}
	return rec, true
}

// ParseProject recovers a project tree: a record with a non-empty string
// "project_name" and a "files" object whose values are all strings.
func ParseProject(text string) (types.ProjectTree, error) {
	rec, err := Parse(text)
	if err != nil {
		return types.ProjectTree{}, err
	}
	return ProjectFromRecord(rec)
}

// ProjectFromRecord validates an already decoded record as a project tree.
func ProjectFromRecord(rec map[string]any) (types.ProjectTree, error) {
	name, _ := rec["project_name"].(string)
	if strings.TrimSpace(name) == "" {
		return types.ProjectTree{}, &ValidationError{Record: rec, Reason: "project_name"}
	}
	raw, ok := rec["files"].(map[string]any)
	if !ok {
		return types.ProjectTree{}, &ValidationError{Record: rec, Reason: "files"}
	}

	files := make(map[string]string, len(raw))
	for _, p := range sortedKeys(raw) {
		content, ok := raw[p].(string)
		if !ok {
			return types.ProjectTree{}, &ValidationError{
				Record: rec,
				Reason: fmt.Sprintf("files[%q] is not a string", p),
			}
		}
		files[p] = content
	}
	return types.ProjectTree{ProjectName: name, Files: files}, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
