// Package config handles parsing and validation of botstrap configuration.
//
// Two files are involved:
//   - botstrap.json: the launch config consumed by the in-container
//     commands (run, install, check). JSONC (JSON with Comments) is
//     supported, so this package uses github.com/tidwall/jsonc to strip
//     comments before parsing with the standard encoding/json library.
//   - deploy.yaml: the host-side deployment config consumed by up/status/
//     down, parsed with gopkg.in/yaml.v3 (see deploy.go).
//
// Key responsibilities:
//   - Locate the config files in their standard paths
//   - Parse them into raw structs
//   - Resolve the launch config against built-in defaults into a
//     model.LaunchPlan
//   - Validate both configs (see validate.go)
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/interprep-ai/botstrap/internal/model"
)

// Built-in defaults for the launch plan. These reproduce the original
// deployment: the aiogram bot entry point, its token variable, the
// directories it expects, and the pinned dependency manifest.
var (
	// DefaultCommand is the argv handed off to when no command is configured.
	DefaultCommand = []string{"python", "main.py"}

	// DefaultDirectories are the workspace directories created before
	// hand-off: the SQLite data directory, the vector store directory,
	// and the log directory.
	DefaultDirectories = []string{"data", "chroma_db", "logs"}

	// DefaultPackageFilters are the package name substrings reported
	// after installation.
	DefaultPackageFilters = []string{"aiogram", "chromadb", "gigachat", "langchain"}
)

// Default scalar values for the launch plan.
const (
	// DefaultName identifies the bot when the config provides no name.
	DefaultName = "interprep"

	// DefaultTokenVar is the environment variable checked before hand-off.
	DefaultTokenVar = "TELEGRAM_BOT_TOKEN"

	// DefaultManifest is the pinned dependency manifest.
	DefaultManifest = "requirements.txt"

	// DefaultPython is the interpreter used by the installer.
	DefaultPython = "python3"
)

// RawLaunchConfig represents the raw JSON structure of a botstrap.json
// file. Every field is optional; missing fields fall back to the built-in
// defaults during ResolvePlan. Unknown fields are silently ignored by
// encoding/json, so the file may carry extra metadata for other tools.
type RawLaunchConfig struct {
	// Name is the display name for the bot.
	Name string `json:"name,omitempty"`

	// Command is the argv to hand off to after bootstrap.
	Command []string `json:"command,omitempty"`

	// TokenVar names the environment variable holding the bot token.
	TokenVar string `json:"tokenVar,omitempty"`

	// Directories lists workspace directories to create before hand-off.
	Directories []string `json:"directories,omitempty"`

	// Manifest is the path to the pinned dependency manifest.
	Manifest string `json:"manifest,omitempty"`

	// PackageFilters lists package name substrings for the post-install
	// diagnostic report.
	PackageFilters []string `json:"packageFilters,omitempty"`

	// Python is the interpreter executable used by the installer.
	Python string `json:"python,omitempty"`

	// Env holds extra environment variables set at hand-off time.
	Env map[string]string `json:"env,omitempty"`
}

// LoadLaunchConfig reads a botstrap.json file, strips JSONC comments, and
// parses it into a RawLaunchConfig struct.
//
// Returns a CLIError with ExitConfigError if the file does not exist.
// Callers that treat the config as optional should use FindLaunchConfig
// first and skip loading when no file is found.
func LoadLaunchConfig(path string) (*RawLaunchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitConfigError,
				fmt.Sprintf("launch config not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read launch config: %w", err)
	}

	// Strip JSONC comments (// and /* */) and trailing commas before
	// parsing. Operator-edited config files frequently carry comments.
	cleanJSON := jsonc.ToJSON(data)

	var raw RawLaunchConfig
	if err := json.Unmarshal(cleanJSON, &raw); err != nil {
		return nil, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to parse launch config at %s", path),
			err,
		)
	}

	return &raw, nil
}

// FindLaunchConfig searches for botstrap.json in the standard locations
// within a project directory.
//
// The search order:
//  1. <projectPath>/.botstrap/botstrap.json (preferred)
//  2. <projectPath>/botstrap.json (convenience for simple projects)
//
// Returns the absolute path to the first found file, or an empty string
// if neither location contains the file. A missing config is not an
// error — the bootstrap runs on defaults.
func FindLaunchConfig(projectPath string) string {
	candidates := []string{
		filepath.Join(projectPath, ".botstrap", "botstrap.json"),
		filepath.Join(projectPath, "botstrap.json"),
	}

	for _, path := range candidates {
		// os.Stat checks existence without reading contents.
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// ResolvePlan merges a raw launch config with the built-in defaults and
// returns the fully resolved model.LaunchPlan. Passing nil resolves to
// the pure-default plan (used when no config file exists).
//
// Slices and maps from the raw config are copied so later mutation of
// the plan cannot alias the parsed config.
func ResolvePlan(raw *RawLaunchConfig) *model.LaunchPlan {
	plan := &model.LaunchPlan{
		Name:           DefaultName,
		Command:        append([]string(nil), DefaultCommand...),
		TokenVar:       DefaultTokenVar,
		Directories:    append([]string(nil), DefaultDirectories...),
		Manifest:       DefaultManifest,
		PackageFilters: append([]string(nil), DefaultPackageFilters...),
		Python:         DefaultPython,
	}

	if raw == nil {
		return plan
	}

	if raw.Name != "" {
		plan.Name = raw.Name
	}
	if len(raw.Command) > 0 {
		plan.Command = append([]string(nil), raw.Command...)
	}
	if raw.TokenVar != "" {
		plan.TokenVar = raw.TokenVar
	}
	if raw.Directories != nil {
		// An explicit empty list disables directory creation, so nil and
		// empty are deliberately distinguished here.
		plan.Directories = append([]string(nil), raw.Directories...)
	}
	if raw.Manifest != "" {
		plan.Manifest = raw.Manifest
	}
	if raw.PackageFilters != nil {
		plan.PackageFilters = append([]string(nil), raw.PackageFilters...)
	}
	if raw.Python != "" {
		plan.Python = raw.Python
	}
	if len(raw.Env) > 0 {
		plan.Env = make(map[string]string, len(raw.Env))
		for k, v := range raw.Env {
			plan.Env[k] = v
		}
	}

	return plan
}

// LoadPlan is the convenience entry point used by the CLI commands:
// it discovers the launch config (or uses explicitPath when non-empty),
// loads it if present, validates it, and resolves the plan.
//
// An explicitPath that does not exist is an error; an undiscovered
// config is not.
func LoadPlan(projectPath, explicitPath string) (*model.LaunchPlan, string, error) {
	path := explicitPath
	if path == "" {
		path = FindLaunchConfig(projectPath)
	}

	// No config anywhere: run on the built-in defaults.
	if path == "" {
		return ResolvePlan(nil), "", nil
	}

	raw, err := LoadLaunchConfig(path)
	if err != nil {
		return nil, "", err
	}

	if verrs := ValidateLaunchConfig(raw); len(verrs) > 0 {
		return nil, "", model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("invalid launch config at %s", path),
			verrs[0],
		)
	}

	return ResolvePlan(raw), path, nil
}
