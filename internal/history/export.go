// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/crewline/pkg/types"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Export writes the runs matching opts, each with its step outputs, to w in
// format.
func (s *Store) Export(ctx context.Context, w io.Writer, format string, opts ListOptions) error {
	runs, err := s.List(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	full := make([]types.RunRecord, 0, len(runs))
	for _, r := range runs {
		r.Outputs, err = s.outputs(ctx, r.ID)
		if err != nil {
			return err
		}
		full = append(full, r)
	}
	return Encode(w, format, full)
}

// Encode writes v to w as YAML or indented JSON.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown format %q (want yaml or json)", format)
}
