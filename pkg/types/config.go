// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// BackendSettings holds the optional credential, model and endpoint for one
// generation backend. Empty fields mean "not configured".
type BackendSettings struct {
	// APIKey is the backend credential. Its presence drives provider selection.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Model overrides the workflow's default model id.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// BaseURL overrides the backend's public endpoint (proxies, gateways).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// ProviderSettings is the immutable input to provider selection.
type ProviderSettings struct {
	Gemini BackendSettings `json:"gemini" yaml:"gemini"`
	OpenAI BackendSettings `json:"openai" yaml:"openai"`
}

// NotionSettings identifies the database blog posts are published to.
type NotionSettings struct {
	Token      string `json:"token,omitempty" yaml:"token,omitempty"`
	DatabaseID string `json:"database_id" yaml:"database_id"`
}

// Settings groups everything a run reads from configuration.
type Settings struct {
	Provider ProviderSettings `json:"provider" yaml:"provider"`

	// SerperAPIKey enables web search for roles that declare it.
	SerperAPIKey string `json:"serper_api_key,omitempty" yaml:"serper_api_key,omitempty"`

	Notion NotionSettings `json:"notion" yaml:"notion"`

	// OutputDir is where generated project trees are created (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// PublishDir is the fixed location archives are written to
	// (default "public/zip_folder").
	PublishDir string `json:"publish_dir" yaml:"publish_dir"`

	// PublishPrefix is the client-facing path prefix of PublishDir
	// (default "/zip_folder").
	PublishPrefix string `json:"publish_prefix" yaml:"publish_prefix"`

	// HistoryDB is the SQLite file runs are recorded in. Empty disables history.
	HistoryDB string `json:"history_db" yaml:"history_db"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level"`

	// Timeout bounds each outbound HTTP request made by a collaborator client.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// BackendID tags which generation backend a run uses.
type BackendID string

const (
	BackendGemini BackendID = "gemini"
	BackendOpenAI BackendID = "openai"
)

// Backend is the resolved generation backend for one run. It is produced once
// by provider selection and never changes for the run's duration.
type Backend struct {
	ID          BackendID `json:"id" yaml:"id"`
	Model       string    `json:"model" yaml:"model"`
	APIKey      string    `json:"-" yaml:"-"`
	BaseURL     string    `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Temperature float64   `json:"temperature" yaml:"temperature"`
}
