package handoff

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interprep-ai/botstrap/internal/model"
)

// capturedExec records the arguments passed to the injected exec function.
type capturedExec struct {
	argv0  string
	argv   []string
	envv   []string
	called bool
}

// capture returns an ExecFunc that records its arguments and returns err.
func capture(c *capturedExec, err error) ExecFunc {
	return func(argv0 string, argv []string, envv []string) error {
		c.called = true
		c.argv0 = argv0
		c.argv = argv
		c.envv = envv
		return err
	}
}

// writeExecutable creates an executable file in dir and returns its path.
func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

// TestExec_ReplacesProcess verifies the hand-off contract: the command
// is exec'd in place (not spawned), with argv[0] kept as written and the
// binary resolved via PATH lookup.
func TestExec_ReplacesProcess(t *testing.T) {
	dir := t.TempDir()
	binary := writeExecutable(t, dir, "python")

	var c capturedExec
	h := NewWithExec(capture(&c, nil), func(file string) (string, error) {
		assert.Equal(t, "python", file)
		return binary, nil
	})

	err := h.Exec([]string{"python", "main.py"}, nil)
	require.NoError(t, err)

	require.True(t, c.called, "exec function must be invoked")
	assert.Equal(t, binary, c.argv0, "argv0 should be the resolved binary path")
	assert.Equal(t, []string{"python", "main.py"}, c.argv, "argv should pass the command through unchanged")
	assert.Equal(t, os.Environ(), c.envv, "environment should be inherited unchanged")
}

// TestExec_ExplicitPathSkipsLookup verifies that a command containing a
// path separator bypasses PATH resolution.
func TestExec_ExplicitPathSkipsLookup(t *testing.T) {
	dir := t.TempDir()
	binary := writeExecutable(t, dir, "python")

	var c capturedExec
	h := NewWithExec(capture(&c, nil), func(string) (string, error) {
		t.Fatal("lookPath must not be called for explicit paths")
		return "", nil
	})

	require.NoError(t, h.Exec([]string{binary, "main.py"}, nil))
	assert.Equal(t, binary, c.argv0)
}

// TestExec_MergesExtraEnv verifies that launch-config env entries are
// appended and override inherited values of the same key.
func TestExec_MergesExtraEnv(t *testing.T) {
	t.Setenv("BOTSTRAP_HANDOFF_TEST", "inherited")

	dir := t.TempDir()
	binary := writeExecutable(t, dir, "python")

	var c capturedExec
	h := NewWithExec(capture(&c, nil), func(string) (string, error) { return binary, nil })

	err := h.Exec([]string{"python", "main.py"}, map[string]string{
		"BOTSTRAP_HANDOFF_TEST": "overridden",
		"PYTHONUNBUFFERED":      "1",
	})
	require.NoError(t, err)

	assert.Contains(t, c.envv, "BOTSTRAP_HANDOFF_TEST=overridden")
	assert.NotContains(t, c.envv, "BOTSTRAP_HANDOFF_TEST=inherited")
	assert.Contains(t, c.envv, "PYTHONUNBUFFERED=1")
}

// TestExec_EmptyCommand verifies rejection of an empty hand-off command.
func TestExec_EmptyCommand(t *testing.T) {
	var c capturedExec
	h := NewWithExec(capture(&c, nil), nil)

	err := h.Exec(nil, nil)
	require.Error(t, err)
	assert.False(t, c.called)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitHandoffFailed, cliErr.Code)
}

// TestExec_NotFoundOnPath verifies the error when PATH resolution fails;
// the exec function must never be reached.
func TestExec_NotFoundOnPath(t *testing.T) {
	var c capturedExec
	h := NewWithExec(capture(&c, nil), func(string) (string, error) {
		return "", errors.New("executable file not found in $PATH")
	})

	err := h.Exec([]string{"python", "main.py"}, nil)
	require.Error(t, err)
	assert.False(t, c.called, "exec must not be attempted when resolution fails")

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitHandoffFailed, cliErr.Code)
}

// TestExec_NotExecutable verifies that a resolved target without an
// execute bit is rejected before the exec attempt.
func TestExec_NotExecutable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "python")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644))

	var c capturedExec
	h := NewWithExec(capture(&c, nil), func(string) (string, error) { return path, nil })

	err := h.Exec([]string{"python"}, nil)
	require.Error(t, err)
	assert.False(t, c.called)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitHandoffFailed, cliErr.Code)
}

// TestExec_SyscallFailure verifies that a failing exec syscall surfaces
// as ExitHandoffFailed with the underlying error preserved.
func TestExec_SyscallFailure(t *testing.T) {
	dir := t.TempDir()
	binary := writeExecutable(t, dir, "python")

	execErr := errors.New("exec format error")
	var c capturedExec
	h := NewWithExec(capture(&c, execErr), func(string) (string, error) { return binary, nil })

	err := h.Exec([]string{"python", "main.py"}, nil)
	require.Error(t, err)
	assert.True(t, c.called)
	assert.True(t, errors.Is(err, execErr))

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitHandoffFailed, cliErr.Code)
}
