package env

import (
	"fmt"
	"os"
	"strings"

	"github.com/interprep-ai/botstrap/internal/model"
)

// TokenStatus describes the state of the token variable for diagnostic
// output. The token value itself never leaves this package unmasked
// except through RequireToken.
type TokenStatus struct {
	// Var is the environment variable name that was checked.
	Var string `json:"var"`

	// Present is true when the variable is set to a non-empty value
	// (after whitespace trimming).
	Present bool `json:"present"`

	// Masked is a redacted preview of the token for operator
	// confirmation, empty when the token is absent.
	Masked string `json:"masked,omitempty"`
}

// RequireToken reads the named environment variable and returns its
// trimmed value. This is the fail-fast precondition check that guards
// every hand-off: if the variable is unset or empty, it returns a
// CLIError with ExitMissingToken and the caller must terminate without
// attempting the hand-off. No retries, no recovery.
func RequireToken(name string) (string, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", model.NewCLIError(
			model.ExitMissingToken,
			fmt.Sprintf("%s is not set — the bot cannot authenticate without it", name),
		)
	}

	// Trim before the emptiness check so a variable set to whitespace is
	// treated the same as an unset one.
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", model.NewCLIError(
			model.ExitMissingToken,
			fmt.Sprintf("%s is set but empty — the bot cannot authenticate without it", name),
		)
	}

	return trimmed, nil
}

// StatusFor reports the diagnostic state of the named token variable
// without failing. Used by the check command and verbose output.
func StatusFor(name string) TokenStatus {
	status := TokenStatus{Var: name}

	value, err := RequireToken(name)
	if err != nil {
		return status
	}

	status.Present = true
	status.Masked = Mask(value)
	return status
}

// Mask redacts a secret for display: the first and last four characters
// are kept when the value is long enough to make that safe, otherwise
// the whole value is replaced. Telegram bot tokens are ~45 characters,
// so the normal case shows enough to confirm which token is loaded
// without revealing it.
func Mask(secret string) string {
	const keep = 4
	if len(secret) <= keep*3 {
		return "****"
	}
	return secret[:keep] + "…" + secret[len(secret)-keep:]
}
