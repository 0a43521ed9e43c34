// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	require.NoError(t, Bind(v))
	return v
}

func TestLoadDefaults(t *testing.T) {
	for _, env := range envBindings {
		t.Setenv(env, "")
	}
	s := Load(newViper(t), nil)

	assert.Equal(t, DefaultOutputDir, s.OutputDir)
	assert.Equal(t, DefaultPublishDir, s.PublishDir)
	assert.Equal(t, DefaultPublishPrefix, s.PublishPrefix)
	assert.Equal(t, DefaultHistoryDB, s.HistoryDB)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, DefaultTimeout, s.Timeout)
	assert.Empty(t, s.Provider.Gemini.APIKey)
	assert.Empty(t, s.Provider.OpenAI.APIKey)
}

func TestLoadReadsProviderEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gk")
	t.Setenv("GEMINI_MODEL", "gemini/gemini-1.5-flash")
	t.Setenv("OPENAI_API_KEY", "sk")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:4000/v1")
	t.Setenv("NOTION_DATABASE_ID", "db-1")

	s := Load(newViper(t), nil)

	assert.Equal(t, "gk", s.Provider.Gemini.APIKey)
	assert.Equal(t, "gemini/gemini-1.5-flash", s.Provider.Gemini.Model)
	assert.Equal(t, "sk", s.Provider.OpenAI.APIKey)
	assert.Equal(t, "http://localhost:4000/v1", s.Provider.OpenAI.BaseURL)
	assert.Equal(t, "db-1", s.Notion.DatabaseID)
}

func TestLoadFallbackOnlyFillsGaps(t *testing.T) {
	for _, env := range envBindings {
		t.Setenv(env, "")
	}
	v := newViper(t)
	v.Set(KeyOpenAIAPIKey, "from-config")
	v.Set(KeyTimeout, "45s")

	s := Load(v, map[string]string{
		"OPENAI_API_KEY": "from-secrets",
		"NOTION_TOKEN":   "secret_notion",
		"SERPER_API_KEY": "serper",
	})

	assert.Equal(t, "from-config", s.Provider.OpenAI.APIKey)
	assert.Equal(t, "secret_notion", s.Notion.Token)
	assert.Equal(t, "serper", s.SerperAPIKey)
	assert.Equal(t, 45*time.Second, s.Timeout)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY=gk\nOPENAI_MODEL=gpt-4o-mini\nEMPTY=\n"), 0o644))

	got, err := LoadDotEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "gk", got["GEMINI_API_KEY"])
	assert.Equal(t, "gpt-4o-mini", got["OPENAI_MODEL"])
	_, hasEmpty := got["EMPTY"]
	assert.False(t, hasEmpty)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	got, err := LoadDotEnv(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMerge(t *testing.T) {
	got := Merge(map[string]string{"A": "1", "B": "1"}, map[string]string{"B": "2"})
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, got)
}
