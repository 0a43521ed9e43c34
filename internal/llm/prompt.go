// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/crewline/pkg/types"
)

var systemPromptTmpl = template.Must(template.New("system").Parse(`You are {{.Role.Name}}.
{{.Role.Persona}}

Your personal goal is: {{.Role.Objective}}`))

var userPromptTmpl = template.Must(template.New("user").Parse(`Original request:
{{.Input}}
{{range .Context}}
## Output from {{.Role}}

{{.Text}}
{{end}}{{if .SearchResults}}
## Web search results
{{range .SearchResults}}
{{.Rank}}. {{.Title}} ({{.URL}})
   {{.Snippet}}
{{end}}{{end}}
## Current task

{{.Instructions}}

This is the expected criteria for your final answer: {{.ExpectedOutput}}
You MUST return the actual complete content as the final answer, not a summary.`))

// RenderPrompt builds the system and user messages for one request. The
// system message carries the role; the user message carries the original
// request, every earlier step output in order, optional search results and
// the step's instructions.
func RenderPrompt(req types.GenerationRequest) (system, user string, err error) {
	var sb, ub bytes.Buffer
	if err := systemPromptTmpl.Execute(&sb, req); err != nil {
		return "", "", err
	}
	if err := userPromptTmpl.Execute(&ub, req); err != nil {
		return "", "", err
	}
	return sb.String(), ub.String(), nil
}
