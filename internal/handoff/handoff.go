package handoff

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/interprep-ai/botstrap/internal/model"
)

// ExecFunc is the signature of the process-replacement syscall. Defaults
// to syscall.Exec; injectable for testing — a test can capture the
// arguments without actually replacing the test process.
type ExecFunc func(argv0 string, argv []string, envv []string) error

// Handoff performs the final bootstrap step: replacing the current
// process with the bot command.
type Handoff struct {
	// execFunc is the replacement syscall. Nil means syscall.Exec.
	execFunc ExecFunc

	// lookPath resolves a bare command name against PATH. Nil means
	// exec.LookPath; injectable alongside execFunc for testing.
	lookPath func(file string) (string, error)
}

// New creates a Handoff using the real exec syscall.
func New() *Handoff {
	return &Handoff{}
}

// NewWithExec creates a Handoff with injected exec and PATH-lookup
// functions. Either may be nil to keep the real implementation.
func NewWithExec(execFunc ExecFunc, lookPath func(string) (string, error)) *Handoff {
	return &Handoff{execFunc: execFunc, lookPath: lookPath}
}

// Exec replaces the current process image with the given command,
// passing through the inherited environment plus extraEnv. On success
// this function never returns. If it does return, the exec failed and
// the error carries ExitHandoffFailed.
//
// The command's first element is resolved against PATH when it contains
// no path separator, because exec(2) itself does no PATH resolution.
// The resolved binary must exist and have an execute bit set — checked
// up front so the failure message names the actual problem instead of a
// bare ENOENT/EACCES.
func (h *Handoff) Exec(command []string, extraEnv map[string]string) error {
	if len(command) == 0 || command[0] == "" {
		return model.NewCLIError(model.ExitHandoffFailed, "hand-off command is empty")
	}

	binary, err := h.resolveBinary(command[0])
	if err != nil {
		return err
	}

	env := mergeEnv(os.Environ(), extraEnv)

	execFunction := h.execFunc
	if execFunction == nil {
		execFunction = syscall.Exec
	}

	// argv[0] stays as written in the command so the bot sees the
	// conventional name, while argv0 is the resolved binary path.
	if err := execFunction(binary, command, env); err != nil {
		return model.WrapCLIError(
			model.ExitHandoffFailed,
			fmt.Sprintf("exec %s failed", strings.Join(command, " ")),
			err,
		)
	}

	// Only reachable with an injected execFunc that returns nil.
	return nil
}

// resolveBinary turns the command executable into an absolute-ish path
// suitable for exec(2) and validates that it is actually executable.
func (h *Handoff) resolveBinary(name string) (string, error) {
	binary := name

	if !strings.ContainsRune(name, os.PathSeparator) {
		look := h.lookPath
		if look == nil {
			look = exec.LookPath
		}
		resolved, err := look(name)
		if err != nil {
			return "", model.WrapCLIError(
				model.ExitHandoffFailed,
				fmt.Sprintf("hand-off target %q not found on PATH", name),
				err,
			)
		}
		binary = resolved
	}

	info, err := os.Stat(binary)
	if err != nil {
		return "", model.WrapCLIError(
			model.ExitHandoffFailed,
			fmt.Sprintf("hand-off target not found: %s", binary),
			err,
		)
	}
	if info.Mode()&0111 == 0 {
		return "", model.NewCLIError(
			model.ExitHandoffFailed,
			fmt.Sprintf("hand-off target is not executable: %s", binary),
		)
	}

	return binary, nil
}

// mergeEnv appends extra KEY=VALUE pairs to the inherited environment,
// replacing any inherited entry with the same key so the launch config's
// env block wins over the container's.
func mergeEnv(inherited []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return inherited
	}

	merged := make([]string, 0, len(inherited)+len(extra))
	for _, kv := range inherited {
		key, _, _ := strings.Cut(kv, "=")
		if _, overridden := extra[key]; overridden {
			continue
		}
		merged = append(merged, kv)
	}
	for key, value := range extra {
		merged = append(merged, key+"="+value)
	}
	return merged
}
