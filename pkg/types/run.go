// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Workflow names one of the fixed role pipelines.
type Workflow string

const (
	WorkflowBlog     Workflow = "blog"
	WorkflowWebApp   Workflow = "webapp"
	WorkflowAnalysis Workflow = "analysis"
)

// RunState tracks a run through its lifecycle.
type RunState string

const (
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
)

// RunRecord is the persisted trace of one workflow invocation.
type RunRecord struct {
	ID         string         `json:"id" yaml:"id"`
	Workflow   Workflow       `json:"workflow" yaml:"workflow"`
	Request    string         `json:"request" yaml:"request"`
	State      RunState       `json:"state" yaml:"state"`
	Backend    string         `json:"backend,omitempty" yaml:"backend,omitempty"`
	Model      string         `json:"model,omitempty" yaml:"model,omitempty"`
	Outputs    []Output       `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Result     map[string]any `json:"result,omitempty" yaml:"result,omitempty"`
	Error      string         `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}
