package installer

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/interprep-ai/botstrap/internal/model"
)

// Runner executes an external command and returns its stdout. The
// default implementation shells out via os/exec; tests inject a fake to
// capture arguments. A non-zero exit must surface as a non-nil error
// whose message includes the command's stderr.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// Installer invokes the Python interpreter's pip module for dependency
// installation and package listing. pip is always addressed as
// `<python> -m pip` rather than a bare `pip` binary, so the packages land
// in the same interpreter that later runs the bot.
type Installer struct {
	// python is the interpreter executable, e.g. "python3".
	python string

	// run executes external commands. Nil means the default os/exec
	// runner; injectable for testing.
	run Runner
}

// New creates an Installer for the given interpreter executable.
func New(python string) *Installer {
	return &Installer{python: python}
}

// NewWithRunner creates an Installer with a custom command runner.
// Used by tests to capture invocations without executing anything.
func NewWithRunner(python string, run Runner) *Installer {
	return &Installer{python: python, run: run}
}

// runner returns the effective command runner.
func (i *Installer) runner() Runner {
	if i.run != nil {
		return i.run
	}
	return runCommand
}

// Install installs the pinned dependencies from the manifest file:
//
//	<python> -m pip install --no-cache-dir -r <manifest>
//
// --no-cache-dir disables pip's local cache so installs are reproducible
// from the manifest alone. The manifest is passed through regardless of
// whether it is empty or populated — pip handles an empty requirements
// file as a successful no-op.
//
// A pip failure is returned as a CLIError with ExitInstallFailed; it is
// not retried or recovered from here.
func (i *Installer) Install(ctx context.Context, manifest string) error {
	_, err := i.runner()(ctx, i.python, "-m", "pip", "install", "--no-cache-dir", "-r", manifest)
	if err != nil {
		return model.WrapCLIError(
			model.ExitInstallFailed,
			fmt.Sprintf("dependency installation from %s failed", manifest),
			err,
		)
	}
	return nil
}

// PythonVersion reports the interpreter version string, e.g.
// "Python 3.11.8". Printed at the start of the install step so operator
// logs record which interpreter the dependencies were installed into.
func (i *Installer) PythonVersion(ctx context.Context) (string, error) {
	out, err := i.runner()(ctx, i.python, "--version")
	if err != nil {
		return "", fmt.Errorf("failed to query interpreter version: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// InstalledPackages queries the interpreter's installed package set via
// `pip list --format=json` and returns it sorted by name. The JSON
// format is used instead of the default table so no column parsing is
// needed.
func (i *Installer) InstalledPackages(ctx context.Context) ([]model.PackageInfo, error) {
	out, err := i.runner()(ctx, i.python, "-m", "pip", "list", "--format=json")
	if err != nil {
		return nil, fmt.Errorf("failed to list installed packages: %w", err)
	}

	var packages []model.PackageInfo
	if err := json.Unmarshal([]byte(out), &packages); err != nil {
		return nil, fmt.Errorf("failed to parse pip list output: %w", err)
	}

	sort.Slice(packages, func(a, b int) bool {
		return strings.ToLower(packages[a].Name) < strings.ToLower(packages[b].Name)
	})
	return packages, nil
}

// FilterPackages returns the packages whose names contain any of the
// given substrings, case-insensitively. This reproduces the original
// bootstrap's `pip list | grep` diagnostic: the operator sees at a
// glance whether the bot framework, the vector store client, and the
// LLM SDKs actually got installed.
//
// An empty filter list selects nothing — the report is opt-in.
func FilterPackages(packages []model.PackageInfo, substrings []string) []model.PackageInfo {
	if len(substrings) == 0 {
		return nil
	}

	var matched []model.PackageInfo
	for _, pkg := range packages {
		name := strings.ToLower(pkg.Name)
		for _, sub := range substrings {
			if sub != "" && strings.Contains(name, strings.ToLower(sub)) {
				matched = append(matched, pkg)
				break
			}
		}
	}
	return matched
}

// runCommand is the default Runner. It captures stdout and stderr
// separately so error messages can carry pip's diagnostics while stdout
// stays parseable.
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("%s %s failed", name, strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", fmt.Errorf("%s: %w", message, err)
	}

	return stdout.String(), nil
}
