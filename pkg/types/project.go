// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ProjectTree is a generated project: a name plus relative path to content.
type ProjectTree struct {
	ProjectName string            `json:"project_name" yaml:"project_name"`
	Files       map[string]string `json:"files" yaml:"files"`
}
