package env

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interprep-ai/botstrap/internal/model"
)

// requireMissingToken asserts that err is a CLIError carrying
// ExitMissingToken.
func requireMissingToken(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr), "error should be a *model.CLIError")
	assert.Equal(t, model.ExitMissingToken, cliErr.Code)
}

// TestRequireToken_Set verifies the happy path: a set variable is
// returned trimmed.
func TestRequireToken_Set(t *testing.T) {
	t.Setenv("BOTSTRAP_TEST_TOKEN", "123456789:AAF0abcdefghijklmnopqrstuvwxyz0123456")

	token, err := RequireToken("BOTSTRAP_TEST_TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "123456789:AAF0abcdefghijklmnopqrstuvwxyz0123456", token)
}

// TestRequireToken_TrimsWhitespace verifies that surrounding whitespace
// (common when tokens are pasted into env files) is stripped.
func TestRequireToken_TrimsWhitespace(t *testing.T) {
	t.Setenv("BOTSTRAP_TEST_TOKEN", "  secret-token\n")

	token, err := RequireToken("BOTSTRAP_TEST_TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)
}

// TestRequireToken_Unset verifies the fail-fast path for an unset variable.
func TestRequireToken_Unset(t *testing.T) {
	// t.Setenv registers cleanup that restores the original state after
	// the test; unsetting afterwards gives us "unset" without leaking
	// into other tests.
	t.Setenv("BOTSTRAP_TEST_TOKEN", "x")
	require.NoError(t, os.Unsetenv("BOTSTRAP_TEST_TOKEN"))

	_, err := RequireToken("BOTSTRAP_TEST_TOKEN")
	requireMissingToken(t, err)
}

// TestRequireToken_Empty verifies that a set-but-empty variable is
// rejected the same way as an unset one.
func TestRequireToken_Empty(t *testing.T) {
	t.Setenv("BOTSTRAP_TEST_TOKEN", "")

	_, err := RequireToken("BOTSTRAP_TEST_TOKEN")
	requireMissingToken(t, err)
}

// TestRequireToken_WhitespaceOnly verifies that whitespace-only values
// count as empty.
func TestRequireToken_WhitespaceOnly(t *testing.T) {
	t.Setenv("BOTSTRAP_TEST_TOKEN", "   \t\n")

	_, err := RequireToken("BOTSTRAP_TEST_TOKEN")
	requireMissingToken(t, err)
}

// TestStatusFor verifies the diagnostic report for present and absent
// tokens.
func TestStatusFor(t *testing.T) {
	t.Setenv("BOTSTRAP_TEST_TOKEN", "123456789:AAF0abcdefghijklmnopqrstuvwxyz0123456")

	status := StatusFor("BOTSTRAP_TEST_TOKEN")
	assert.Equal(t, "BOTSTRAP_TEST_TOKEN", status.Var)
	assert.True(t, status.Present)
	assert.NotEmpty(t, status.Masked)
	assert.NotContains(t, status.Masked, "abcdefghijklmnop", "masked value must not contain the token body")

	t.Setenv("BOTSTRAP_TEST_TOKEN", "")
	status = StatusFor("BOTSTRAP_TEST_TOKEN")
	assert.False(t, status.Present)
	assert.Empty(t, status.Masked)
}

// TestMask verifies the redaction rules for long and short secrets.
func TestMask(t *testing.T) {
	assert.Equal(t, "1234…cdef", Mask("123456789:AAF0abcdef"))

	// Short secrets are fully redacted — keeping any characters would
	// reveal too much.
	assert.Equal(t, "****", Mask("shorttoken"))
	assert.Equal(t, "****", Mask("x"))
}
