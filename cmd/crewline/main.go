// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the crewline CLI.
//
// Every workflow command prints exactly one JSON object on stdout: the
// result record on success (exit 0) or {"error": ...} on failure (exit 1).
// Logs go to stderr.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/crewline/internal/config"
	"github.com/pdiddy/crewline/internal/log"
	"github.com/pdiddy/crewline/internal/secrets"
	"github.com/pdiddy/crewline/internal/workflow"
	"github.com/pdiddy/crewline/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// settings is resolved once per invocation in PersistentPreRunE.
var settings types.Settings

const (
	secretsDir = ".secrets/"
	dotEnvFile = ".env"
)

// rootCmd is the base command for the crewline CLI.
var rootCmd = &cobra.Command{
	Use:   "crewline",
	Short: "Run fixed crews of generation roles to produce finished artifacts",
	Long: `crewline turns one natural-language request into a finished artifact by
running a fixed sequence of generation roles, each seeing the request and
every earlier role's output.

  blog     research a topic, write a post and publish it to Notion
  webapp   plan, code, review and package a Next.js project, then zip it
  analyze  explore, analyse and report on a sample sales dataset
  serve    expose the same workflows over HTTP

Credentials come from the environment (GEMINI_API_KEY, OPENAI_API_KEY,
SERPER_API_KEY, NOTION_TOKEN, NOTION_DATABASE_ID), the config file, .env
or files in .secrets/.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}
		settings = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./crewline.yaml or ~/.config/crewline/crewline.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("crewline")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "crewline"))
		}
	}

	viper.SetEnvPrefix("CREWLINE")
	viper.AutomaticEnv()
	if err := config.Bind(viper.GetViper()); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	if err := viper.ReadInConfig(); err == nil {
		log.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

// loadSettings resolves settings from v with .env and .secrets/ as
// credential fallbacks; .secrets/ wins over .env.
func loadSettings(v *viper.Viper) (types.Settings, error) {
	log.Init(v.GetString(config.KeyLogLevel), os.Stderr)

	dotEnv, err := config.LoadDotEnv(dotEnvFile)
	if err != nil {
		return types.Settings{}, err
	}
	sec, err := secrets.Load(secretsDir)
	if err != nil {
		return types.Settings{}, err
	}
	if len(sec) > 0 {
		keys := make([]string, 0, len(sec))
		for k := range sec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		log.Debug("loaded secrets", "keys", keys)
	}

	return config.Load(v, config.Merge(dotEnv, secrets.ByEnvName(sec))), nil
}

// execute runs root and returns the exit code. Errors raised before a
// command could report them (argument validation, settings) are printed
// as the same {"error": ...} record on stdout.
func execute(root *cobra.Command) int {
	err := root.Execute()
	if err == nil {
		return 0
	}
	if !errors.Is(err, errReported) {
		if encErr := emit(root.OutOrStdout(), workflow.ErrorRecord(err)); encErr != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	return 1
}

func main() {
	os.Exit(execute(rootCmd))
}
