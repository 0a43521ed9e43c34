// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/pdiddy/crewline/internal/crew"
	"github.com/pdiddy/crewline/internal/materialize"
	"github.com/pdiddy/crewline/internal/structured"
	"github.com/pdiddy/crewline/pkg/types"
)

// WebAppOptions controls where a generated project lands.
type WebAppOptions struct {
	// OutputDir is the parent of the project directory (default ".").
	OutputDir string
	// PublishDir and PublishPrefix locate the archive; see materialize.ArchiveDir.
	PublishDir    string
	PublishPrefix string
	// NoArchive skips the zip step.
	NoArchive bool
}

// WebAppResult is the webapp workflow's result record.
type WebAppResult struct {
	ZipPath    string   `json:"zip_path,omitempty" yaml:"zip_path,omitempty"`
	ProjectDir string   `json:"project_dir" yaml:"project_dir"`
	Files      []string `json:"-" yaml:"-"`
}

// WebAppCrew returns planner, coder, reviewer and packager for request. The
// planner and coder may use web search.
func WebAppCrew(request string) (crew.Pipeline, error) {
	planner := types.Role{
		Name: "Next.js Project Planner",
		Objective: "Break down the user's web application request into a structured plan. Identify necessary pages, " +
			"components, API routes, state management and other files according to Next.js conventions.",
		Persona: "You are a seasoned full-stack architect specialising in React and Next.js. You analyse high-level " +
			"specifications and design project structures that balance simplicity with best practices. Your plans " +
			"describe the purpose of each file and follow the conventions of the latest stable Next.js release.",
		Capabilities: []types.Capability{types.CapabilityWebSearch},
	}
	coder := types.Role{
		Name: "Next.js Coder",
		Objective: "Generate functional Next.js code based on a project plan. Write pages, components, API routes and " +
			"configuration files that match the planner's specifications. Use modern React (functional components, " +
			"hooks) and ensure imports and exports are correct.",
		Persona: "You are an expert developer with deep knowledge of JavaScript, TypeScript, React and Next.js. You " +
			"follow project plans accurately and generate clean, readable code.",
		Capabilities: []types.Capability{types.CapabilityWebSearch},
	}
	reviewer := types.Role{
		Name: "Code Reviewer",
		Objective: "Review the generated code for correctness, clarity and best practices. Suggest improvements and " +
			"refactorings without altering the overall design.",
		Persona: "You are an experienced code reviewer known for catching subtle bugs and improving code readability. " +
			"You ensure that the code adheres to modern standards and explain your changes inline with comments where appropriate.",
	}
	packager := types.Role{
		Name: "Project Packager",
		Objective: "Package the final reviewed code into a structured JSON object for external writing. Do not modify " +
			"the code; simply prepare the data with a project name and file mapping.",
		Persona: "You act as an interface between the other roles and the file system. You assemble the final outputs " +
			"into a consistent format without making any additional modifications.",
	}

	return crew.New(
		types.Step{
			Name: "plan",
			Instructions: fmt.Sprintf("The user has requested the following Next.js feature: '%s'. ", request) +
				"Analyse this request and break it down into a plan. List each file that needs to be created in a JSON " +
				"object under the key 'files'. For each file, provide a short description of its purpose. Use Next.js " +
				"conventions (e.g., pages/ for page routes, components/ for reusable components, api/ for API routes). " +
				"Your output must be valid JSON.",
			ExpectedOutput: "A JSON plan with a 'files' object where keys are file paths and values are descriptions.",
			Role:           planner,
		},
		types.Step{
			Name: "code",
			Instructions: "Using the planner's JSON plan as input, generate the actual code for each listed file. Return a " +
				"JSON object mapping each file path to the contents of the file as a string. Include imports, exports and " +
				"any necessary configuration. Do not include any prose or explanation; only return a valid JSON object " +
				"with file paths as keys and code strings as values.",
			ExpectedOutput: "A JSON dictionary mapping file paths to code strings.",
			Role:           coder,
		},
		types.Step{
			Name: "review",
			Instructions: "Review the code dictionary produced by the coder. Improve the code if necessary for readability, " +
				"correctness or best practices. If you make changes, include brief inline comments (e.g., // explanation) " +
				"explaining your reasoning. Return a JSON dictionary with the same structure as input: file paths mapped " +
				"to updated code strings. Do not wrap your response in any additional text; output only JSON.",
			ExpectedOutput: "An improved JSON dictionary mapping file paths to updated code strings.",
			Role:           reviewer,
		},
		types.Step{
			Name: "package",
			Instructions: "Prepare the final code dictionary for external writing. You will receive the reviewer's JSON " +
				"output. Construct a new JSON object with two keys: 'project_name' and 'files'. Set 'project_name' to a " +
				"slugified version of the user's request (lowercase with underscores). Set 'files' to the code dictionary " +
				"without any changes. Return only this JSON object without any additional text.",
			ExpectedOutput: "A JSON object with 'project_name' (string) and 'files' (object mapping file paths to code strings).",
			Role:           packager,
		},
	)
}

// RunWebApp generates a project for request, writes it under
// opts.OutputDir and, unless disabled, publishes it as a zip archive.
// Unrecoverable or incomplete packager output is returned as
// *structured.RecoveryError or *structured.ValidationError.
func RunWebApp(ctx context.Context, deps Deps, request string, opts WebAppOptions) (WebAppResult, error) {
	logger := deps.logger()

	p, err := WebAppCrew(request)
	if err != nil {
		return WebAppResult{}, err
	}
	res, err := deps.run(ctx, p, request)
	if err != nil {
		return WebAppResult{}, err
	}

	tree, err := structured.ParseProject(res.Final)
	if err != nil {
		return WebAppResult{}, err
	}

	// Reject unsafe paths before the project directory exists.
	for path := range tree.Files {
		if _, err := materialize.CleanPath(path); err != nil {
			return WebAppResult{}, err
		}
	}

	target, err := materialize.ProjectDir(opts.OutputDir, tree.ProjectName)
	if err != nil {
		return WebAppResult{}, err
	}
	if err := materialize.CheckPublishDir(target, opts.PublishDir); err != nil {
		return WebAppResult{}, err
	}

	dir, err := materialize.Prepare(opts.OutputDir, tree.ProjectName)
	if err != nil {
		return WebAppResult{}, err
	}
	if err := materialize.Write(tree.Files, dir); err != nil {
		return WebAppResult{}, err
	}

	out := WebAppResult{ProjectDir: dir, Files: sortedPaths(tree.Files)}
	logger.Info("project written", "dir", dir, "files", len(tree.Files))

	if opts.NoArchive {
		return out, nil
	}
	archive, err := materialize.ArchiveDir(dir, opts.PublishDir, opts.PublishPrefix, materialize.Slug(tree.ProjectName))
	if err != nil {
		return WebAppResult{}, err
	}
	out.ZipPath = archive.ClientPath
	logger.Info("project archived", "path", archive.Path)
	return out, nil
}

func sortedPaths(files map[string]string) []string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
