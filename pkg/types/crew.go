// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Capability is an auxiliary tool a role may use during generation.
type Capability string

const (
	CapabilityWebSearch Capability = "web-search"
)

// Role is a named generation persona. Roles are built per run from the
// request and are never mutated afterwards.
type Role struct {
	Name         string       `json:"name" yaml:"name"`
	Objective    string       `json:"objective" yaml:"objective"`
	Persona      string       `json:"persona" yaml:"persona"`
	Capabilities []Capability `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
}

// HasCapability reports whether the role declares c.
func (r Role) HasCapability(c Capability) bool {
	for _, have := range r.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Step is one generation call bound to a single role.
type Step struct {
	Name           string `json:"name" yaml:"name"`
	Instructions   string `json:"instructions" yaml:"instructions"`
	ExpectedOutput string `json:"expected_output" yaml:"expected_output"`
	Role           Role   `json:"role" yaml:"role"`
}

// Output is the text one step produced, tagged with the role that produced it.
type Output struct {
	Step string `json:"step" yaml:"step"`
	Role string `json:"role" yaml:"role"`
	Text string `json:"text" yaml:"text"`
}

// PipelineResult holds every step output in order. Final is the last step's text.
type PipelineResult struct {
	Outputs []Output `json:"outputs" yaml:"outputs"`
	Final   string   `json:"final" yaml:"final"`
}

// GenerationRequest is everything a backend receives for one step.
type GenerationRequest struct {
	Role           Role
	Instructions   string
	ExpectedOutput string

	// Input is the original request the run was started with.
	Input string

	// Context holds the outputs of all earlier steps, oldest first.
	Context []Output

	// SearchResults is set only for roles with web search when a searcher is configured.
	SearchResults []SearchResult
}
