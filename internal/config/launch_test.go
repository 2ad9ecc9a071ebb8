package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interprep-ai/botstrap/internal/model"
)

// writeFile creates a file with the given content inside dir, creating
// parent directories as needed. Returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// --- LoadLaunchConfig tests ---

// TestLoadLaunchConfig_Full verifies that a complete botstrap.json is
// parsed correctly, including JSONC comment stripping.
func TestLoadLaunchConfig_Full(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "botstrap.json", `{
  // Launch config for the interview-prep bot.
  "name": "interprep",
  "command": ["python", "main.py"],
  "tokenVar": "TELEGRAM_BOT_TOKEN",
  "directories": ["data", "chroma_db", "logs"],
  "manifest": "requirements.txt",
  "packageFilters": ["aiogram", "chromadb"],
  "python": "python3.11",
  "env": {"PYTHONUNBUFFERED": "1"}, // trailing comma tolerated
}`)

	raw, err := LoadLaunchConfig(path)
	require.NoError(t, err, "LoadLaunchConfig should succeed for a valid JSONC file")

	assert.Equal(t, "interprep", raw.Name)
	assert.Equal(t, []string{"python", "main.py"}, raw.Command)
	assert.Equal(t, "TELEGRAM_BOT_TOKEN", raw.TokenVar)
	assert.Equal(t, []string{"data", "chroma_db", "logs"}, raw.Directories)
	assert.Equal(t, "requirements.txt", raw.Manifest)
	assert.Equal(t, []string{"aiogram", "chromadb"}, raw.PackageFilters)
	assert.Equal(t, "python3.11", raw.Python)
	assert.Equal(t, "1", raw.Env["PYTHONUNBUFFERED"])
}

// TestLoadLaunchConfig_NotFound verifies that a missing file produces a
// CLIError with ExitConfigError.
func TestLoadLaunchConfig_NotFound(t *testing.T) {
	_, err := LoadLaunchConfig("/nonexistent/botstrap.json")
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr), "error should be a *model.CLIError")
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestLoadLaunchConfig_Malformed verifies that unparseable JSON produces
// a CLIError with ExitConfigError rather than a raw json error.
func TestLoadLaunchConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "botstrap.json", `{"command": [`)

	_, err := LoadLaunchConfig(path)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// --- FindLaunchConfig tests ---

// TestFindLaunchConfig_PrefersDotDir verifies the search order:
// .botstrap/botstrap.json wins over a root-level botstrap.json.
func TestFindLaunchConfig_PrefersDotDir(t *testing.T) {
	dir := t.TempDir()
	preferred := writeFile(t, dir, filepath.Join(".botstrap", "botstrap.json"), `{}`)
	writeFile(t, dir, "botstrap.json", `{}`)

	assert.Equal(t, preferred, FindLaunchConfig(dir))
}

// TestFindLaunchConfig_RootFallback verifies the root-level fallback.
func TestFindLaunchConfig_RootFallback(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "botstrap.json", `{}`)

	assert.Equal(t, root, FindLaunchConfig(dir))
}

// TestFindLaunchConfig_Missing verifies that an absent config yields an
// empty path, not an error — the bootstrap runs on defaults.
func TestFindLaunchConfig_Missing(t *testing.T) {
	assert.Equal(t, "", FindLaunchConfig(t.TempDir()))
}

// --- ResolvePlan tests ---

// TestResolvePlan_Defaults verifies that a nil raw config resolves to
// the built-in defaults reproducing the original deployment.
func TestResolvePlan_Defaults(t *testing.T) {
	plan := ResolvePlan(nil)

	assert.Equal(t, "interprep", plan.Name)
	assert.Equal(t, []string{"python", "main.py"}, plan.Command)
	assert.Equal(t, "TELEGRAM_BOT_TOKEN", plan.TokenVar)
	assert.Equal(t, []string{"data", "chroma_db", "logs"}, plan.Directories)
	assert.Equal(t, "requirements.txt", plan.Manifest)
	assert.Equal(t, []string{"aiogram", "chromadb", "gigachat", "langchain"}, plan.PackageFilters)
	assert.Equal(t, "python3", plan.Python)
	assert.Nil(t, plan.Env)
	assert.NoError(t, plan.Validate())
}

// TestResolvePlan_Overrides verifies that configured fields replace the
// defaults while unset fields keep them.
func TestResolvePlan_Overrides(t *testing.T) {
	raw := &RawLaunchConfig{
		Command:  []string{"python", "-m", "bot"},
		TokenVar: "BOT_TOKEN",
	}
	plan := ResolvePlan(raw)

	assert.Equal(t, []string{"python", "-m", "bot"}, plan.Command)
	assert.Equal(t, "BOT_TOKEN", plan.TokenVar)
	// Unset fields fall back to defaults.
	assert.Equal(t, "interprep", plan.Name)
	assert.Equal(t, []string{"data", "chroma_db", "logs"}, plan.Directories)
}

// TestResolvePlan_EmptyDirectoriesDisables verifies that an explicit
// empty directories list disables directory creation (distinct from an
// absent field, which keeps the defaults).
func TestResolvePlan_EmptyDirectoriesDisables(t *testing.T) {
	raw := &RawLaunchConfig{Directories: []string{}}
	plan := ResolvePlan(raw)
	assert.Empty(t, plan.Directories)
}

// TestResolvePlan_CopiesSlices verifies that mutating the resolved plan
// does not alias the raw config's slices.
func TestResolvePlan_CopiesSlices(t *testing.T) {
	raw := &RawLaunchConfig{Command: []string{"python", "main.py"}}
	plan := ResolvePlan(raw)

	plan.Command[0] = "mutated"
	assert.Equal(t, "python", raw.Command[0], "raw config must not be aliased by the plan")
}

// --- LoadPlan tests ---

// TestLoadPlan_NoConfig verifies the default plan is returned when no
// config file exists anywhere.
func TestLoadPlan_NoConfig(t *testing.T) {
	plan, path, err := LoadPlan(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, "", path)
	assert.Equal(t, []string{"python", "main.py"}, plan.Command)
}

// TestLoadPlan_ExplicitMissing verifies that an explicitly requested
// config that does not exist is an error, unlike an undiscovered one.
func TestLoadPlan_ExplicitMissing(t *testing.T) {
	_, _, err := LoadPlan(t.TempDir(), "/nonexistent/botstrap.json")
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestLoadPlan_InvalidConfig verifies that a config failing validation
// is rejected with ExitConfigError.
func TestLoadPlan_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "botstrap.json", `{"tokenVar": "1BAD NAME"}`)

	_, _, err := LoadPlan(dir, "")
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestLoadPlan_Discovered verifies the happy path: a discovered config
// is loaded, validated, and resolved.
func TestLoadPlan_Discovered(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, filepath.Join(".botstrap", "botstrap.json"),
		`{"name": "interprep-staging", "tokenVar": "STAGING_BOT_TOKEN"}`)

	plan, foundPath, err := LoadPlan(dir, "")
	require.NoError(t, err)
	assert.Equal(t, path, foundPath)
	assert.Equal(t, "interprep-staging", plan.Name)
	assert.Equal(t, "STAGING_BOT_TOKEN", plan.TokenVar)
}
