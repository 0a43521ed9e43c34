// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config resolves run settings from viper (config file, CREWLINE_*
// environment, provider environment variables) with credentials from
// .secrets/ and .env as fallbacks.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/crewline/pkg/types"
)

// Viper keys.
const (
	KeyGeminiAPIKey     = "gemini.api_key"
	KeyGeminiModel      = "gemini.model"
	KeyGeminiBaseURL    = "gemini.base_url"
	KeyOpenAIAPIKey     = "openai.api_key"
	KeyOpenAIModel      = "openai.model"
	KeyOpenAIBaseURL    = "openai.base_url"
	KeySerperAPIKey     = "serper.api_key"
	KeyNotionToken      = "notion.token"
	KeyNotionDatabaseID = "notion.database_id"
	KeyOutputDir        = "output_dir"
	KeyPublishDir       = "publish_dir"
	KeyPublishPrefix    = "publish_prefix"
	KeyHistoryDB        = "history_db"
	KeyLogLevel         = "log_level"
	KeyTimeout          = "timeout"
)

// envBindings maps viper keys to the environment variables the workflows
// have always been configured with. These are read without the CREWLINE_ prefix.
var envBindings = map[string]string{
	KeyGeminiAPIKey:     "GEMINI_API_KEY",
	KeyGeminiModel:      "GEMINI_MODEL",
	KeyGeminiBaseURL:    "GEMINI_BASE_URL",
	KeyOpenAIAPIKey:     "OPENAI_API_KEY",
	KeyOpenAIModel:      "OPENAI_MODEL",
	KeyOpenAIBaseURL:    "OPENAI_BASE_URL",
	KeySerperAPIKey:     "SERPER_API_KEY",
	KeyNotionToken:      "NOTION_TOKEN",
	KeyNotionDatabaseID: "NOTION_DATABASE_ID",
}

const (
	DefaultOutputDir     = "."
	DefaultPublishDir    = "public/zip_folder"
	DefaultPublishPrefix = "/zip_folder"
	DefaultHistoryDB     = ".crewline/history.db"
	DefaultTimeout       = 300 * time.Second
)

// Bind registers defaults and environment bindings on v.
func Bind(v *viper.Viper) error {
	v.SetDefault(KeyOutputDir, DefaultOutputDir)
	v.SetDefault(KeyPublishDir, DefaultPublishDir)
	v.SetDefault(KeyPublishPrefix, DefaultPublishPrefix)
	v.SetDefault(KeyHistoryDB, DefaultHistoryDB)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyTimeout, DefaultTimeout)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("binding %s: %w", env, err)
		}
	}
	return nil
}

// Load builds Settings from v. Credentials missing from v are looked up in
// fallback, which is keyed by environment variable name (see
// secrets.ByEnvName and LoadDotEnv).
func Load(v *viper.Viper, fallback map[string]string) types.Settings {
	get := func(key string) string {
		if s := strings.TrimSpace(v.GetString(key)); s != "" {
			return s
		}
		return fallback[envBindings[key]]
	}

	timeout := v.GetDuration(KeyTimeout)
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return types.Settings{
		Provider: types.ProviderSettings{
			Gemini: types.BackendSettings{
				APIKey:  get(KeyGeminiAPIKey),
				Model:   get(KeyGeminiModel),
				BaseURL: get(KeyGeminiBaseURL),
			},
			OpenAI: types.BackendSettings{
				APIKey:  get(KeyOpenAIAPIKey),
				Model:   get(KeyOpenAIModel),
				BaseURL: get(KeyOpenAIBaseURL),
			},
		},
		SerperAPIKey: get(KeySerperAPIKey),
		Notion: types.NotionSettings{
			Token:      get(KeyNotionToken),
			DatabaseID: get(KeyNotionDatabaseID),
		},
		OutputDir:     v.GetString(KeyOutputDir),
		PublishDir:    v.GetString(KeyPublishDir),
		PublishPrefix: v.GetString(KeyPublishPrefix),
		HistoryDB:     v.GetString(KeyHistoryDB),
		LogLevel:      v.GetString(KeyLogLevel),
		Timeout:       timeout,
	}
}

// LoadDotEnv reads KEY=VALUE pairs from a dotenv file. A missing file yields
// an empty map. Keys are returned upper-cased.
func LoadDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}

	dv := viper.New()
	dv.SetConfigFile(path)
	dv.SetConfigType("env")
	if err := dv.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	out := make(map[string]string)
	for _, k := range dv.AllKeys() {
		if val := strings.TrimSpace(dv.GetString(k)); val != "" {
			out[strings.ToUpper(k)] = val
		}
	}
	return out, nil
}

// Merge combines fallback maps; later maps win.
func Merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
