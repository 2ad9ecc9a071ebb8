package installer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interprep-ai/botstrap/internal/model"
)

// capturedCall records a single invocation of the fake runner.
type capturedCall struct {
	name string
	args []string
}

// fakeRunner returns a Runner that records every invocation and replies
// with the given output and error.
func fakeRunner(calls *[]capturedCall, output string, err error) Runner {
	return func(ctx context.Context, name string, args ...string) (string, error) {
		*calls = append(*calls, capturedCall{name: name, args: args})
		return output, err
	}
}

// TestInstall_Arguments verifies the installer contract: pip is
// invoked with the pinned manifest and with caching disabled, regardless
// of the manifest's contents.
func TestInstall_Arguments(t *testing.T) {
	var calls []capturedCall
	inst := NewWithRunner("python3", fakeRunner(&calls, "", nil))

	require.NoError(t, inst.Install(context.Background(), "requirements.txt"))

	require.Len(t, calls, 1)
	assert.Equal(t, "python3", calls[0].name)
	assert.Equal(t, []string{"-m", "pip", "install", "--no-cache-dir", "-r", "requirements.txt"}, calls[0].args)
}

// TestInstall_Failure verifies that a pip failure surfaces as a CLIError
// with ExitInstallFailed — not handled locally, just propagated.
func TestInstall_Failure(t *testing.T) {
	var calls []capturedCall
	pipErr := errors.New("No matching distribution found for aiogram==99.0")
	inst := NewWithRunner("python3", fakeRunner(&calls, "", pipErr))

	err := inst.Install(context.Background(), "requirements.txt")
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitInstallFailed, cliErr.Code)
	assert.True(t, errors.Is(err, pipErr), "the pip error must be wrapped, not swallowed")
}

// TestPythonVersion verifies the interpreter version query and trimming.
func TestPythonVersion(t *testing.T) {
	var calls []capturedCall
	inst := NewWithRunner("python3", fakeRunner(&calls, "Python 3.11.8\n", nil))

	version, err := inst.PythonVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Python 3.11.8", version)

	require.Len(t, calls, 1)
	assert.Equal(t, []string{"--version"}, calls[0].args)
}

// TestInstalledPackages verifies pip list JSON parsing and name sorting.
func TestInstalledPackages(t *testing.T) {
	var calls []capturedCall
	listJSON := `[
		{"name": "chromadb", "version": "0.4.24"},
		{"name": "aiogram", "version": "3.4.1"},
		{"name": "Pydantic", "version": "2.6.3"}
	]`
	inst := NewWithRunner("python3", fakeRunner(&calls, listJSON, nil))

	packages, err := inst.InstalledPackages(context.Background())
	require.NoError(t, err)

	require.Len(t, calls, 1)
	assert.Equal(t, []string{"-m", "pip", "list", "--format=json"}, calls[0].args)

	// Sorted case-insensitively by name.
	require.Len(t, packages, 3)
	assert.Equal(t, "aiogram", packages[0].Name)
	assert.Equal(t, "chromadb", packages[1].Name)
	assert.Equal(t, "Pydantic", packages[2].Name)
	assert.Equal(t, "3.4.1", packages[0].Version)
}

// TestInstalledPackages_BadJSON verifies that unparseable pip output is
// an error rather than an empty report.
func TestInstalledPackages_BadJSON(t *testing.T) {
	var calls []capturedCall
	inst := NewWithRunner("python3", fakeRunner(&calls, "not json", nil))

	_, err := inst.InstalledPackages(context.Background())
	assert.Error(t, err)
}

// TestFilterPackages verifies the case-insensitive substring filter that
// reproduces the original `pip list | grep` diagnostic.
func TestFilterPackages(t *testing.T) {
	packages := []model.PackageInfo{
		{Name: "aiogram", Version: "3.4.1"},
		{Name: "chromadb", Version: "0.4.24"},
		{Name: "chromadb-client", Version: "0.4.24"},
		{Name: "gigachat", Version: "0.1.16"},
		{Name: "requests", Version: "2.31.0"},
	}

	matched := FilterPackages(packages, []string{"aiogram", "CHROMADB"})
	require.Len(t, matched, 3)
	assert.Equal(t, "aiogram", matched[0].Name)
	assert.Equal(t, "chromadb", matched[1].Name)
	assert.Equal(t, "chromadb-client", matched[2].Name)

	// No filters selects nothing.
	assert.Empty(t, FilterPackages(packages, nil))

	// Filters that match nothing yield an empty report, not an error.
	assert.Empty(t, FilterPackages(packages, []string{"torch"}))
}
