// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "gemini-api-key", "  gk_abc123  \n")
				writeFile(t, dir, "notion-token", "secret_xyz\n")
				return dir
			},
			want: map[string]string{
				"gemini-api-key": "gk_abc123",
				"notion-token":   "secret_xyz",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files and dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openai-api-key", "sk-live")
				writeFile(t, dir, "serper-api-key", "   \n\t ")
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden", "nope")
				return dir
			},
			want: map[string]string{
				"openai-api-key": "sk-live",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "gemini-api-key", "gk")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
				return dir
			},
			want: map[string]string{
				"gemini-api-key": "gk",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, "gemini-api-key", "gk")

	bad := filepath.Join(dir, "openai-api-key")
	require.NoError(t, os.WriteFile(bad, []byte("sk"), 0o000))
	t.Cleanup(func() { os.Chmod(bad, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"gemini-api-key": "gk"}, got)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "GEMINI_API_KEY", EnvName("gemini-api-key"))
	assert.Equal(t, "NOTION_DATABASE_ID", EnvName("notion-database-id"))
}

func TestByEnvName(t *testing.T) {
	got := ByEnvName(map[string]string{"serper-api-key": "s", "notion-token": "n"})
	assert.Equal(t, map[string]string{"SERPER_API_KEY": "s", "NOTION_TOKEN": "n"}, got)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
