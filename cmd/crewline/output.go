// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/crewline/internal/workflow"
)

// errReported marks an error whose record was already printed on stdout.
var errReported = errors.New("error reported")

// emit prints v as one JSON line.
func emit(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// emitError prints the error record for err on the command's stdout and
// returns errReported so main exits 1 without printing it again.
func emitError(cmd *cobra.Command, err error) error {
	if encErr := emit(cmd.OutOrStdout(), workflow.ErrorRecord(err)); encErr != nil {
		return encErr
	}
	return errReported
}
