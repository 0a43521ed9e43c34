//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Workflow targets run the freshly built CLI against a request taken from
// the CREWLINE_REQUEST environment variable.
type Workflow mg.Namespace

func runCLI(args ...string) error {
	mg.Deps(Build, Init)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

func request(example string) (string, error) {
	r := os.Getenv("CREWLINE_REQUEST")
	if r == "" {
		return "", fmt.Errorf("set CREWLINE_REQUEST, e.g. CREWLINE_REQUEST=%q", example)
	}
	return r, nil
}

// Blog researches a topic and publishes a post to Notion.
func (Workflow) Blog() error {
	r, err := request("quantum computing")
	if err != nil {
		return err
	}
	return runCLI("blog", r)
}

// WebApp generates a Next.js project and archives it under public/zip_folder.
func (Workflow) WebApp() error {
	r, err := request("a login page with validation")
	if err != nil {
		return err
	}
	return runCLI("webapp", r)
}

// Analyze reports on the bundled sample sales dataset.
func (Workflow) Analyze() error {
	r, err := request("which regions drive growth")
	if err != nil {
		return err
	}
	return runCLI("analyze", r)
}

// Serve starts the HTTP API on :3000.
func (Workflow) Serve() error {
	return runCLI("serve")
}
