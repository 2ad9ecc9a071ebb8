package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DirResult records the outcome of ensuring a single directory.
type DirResult struct {
	// Path is the directory path as configured (relative to Root).
	Path string `json:"path"`

	// Created is true when the directory was created by this call,
	// false when it already existed.
	Created bool `json:"created"`
}

// Entry is a single element of the workspace listing, used for the
// operator diagnostics printed before hand-off.
type Entry struct {
	// Name is the file or directory name.
	Name string `json:"name"`

	// IsDir reports whether the entry is a directory.
	IsDir bool `json:"isDir"`

	// Size is the file size in bytes; zero for directories.
	Size int64 `json:"size,omitempty"`
}

// Manager performs workspace preparation rooted at a fixed directory.
//
// The struct carries only the root path; all methods are safe to call
// repeatedly. A zero root means the current working directory.
type Manager struct {
	root string
}

// NewManager creates a workspace Manager rooted at the given directory.
// An empty root resolves to the process working directory, which is the
// normal in-container case.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Root returns the effective root directory, resolving an empty
// configured root against the process working directory.
func (m *Manager) Root() (string, error) {
	if m.root != "" {
		return m.root, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine working directory: %w", err)
	}
	return cwd, nil
}

// EnsureDirs creates each of the given directories under the root if it
// does not already exist. Creation is idempotent: running it twice on
// the same filesystem state succeeds and reports Created=false on the
// second run. Parent directories are created as needed.
//
// Existing files or directories are never deleted or overwritten; if a
// path exists but is a regular file, an error is returned rather than
// replacing it.
func (m *Manager) EnsureDirs(dirs []string) ([]DirResult, error) {
	root, err := m.Root()
	if err != nil {
		return nil, err
	}

	results := make([]DirResult, 0, len(dirs))
	for _, dir := range dirs {
		full := filepath.Join(root, dir)

		info, statErr := os.Stat(full)
		switch {
		case statErr == nil && info.IsDir():
			// Already there — idempotent success.
			results = append(results, DirResult{Path: dir, Created: false})
			continue
		case statErr == nil:
			return results, fmt.Errorf("workspace path %s exists but is not a directory", full)
		case !os.IsNotExist(statErr):
			return results, fmt.Errorf("failed to stat workspace path %s: %w", full, statErr)
		}

		if err := os.MkdirAll(full, 0o755); err != nil {
			return results, fmt.Errorf("failed to create workspace directory %s: %w", full, err)
		}
		results = append(results, DirResult{Path: dir, Created: true})
	}

	return results, nil
}

// List returns the root directory's entries sorted by name. This is the
// diagnostic listing the bootstrap prints so operators can verify the
// container's working directory contents from the logs.
func (m *Manager) List() ([]Entry, error) {
	root, err := m.Root()
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace directory %s: %w", root, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entry := Entry{Name: de.Name(), IsDir: de.IsDir()}
		if !de.IsDir() {
			// Sizes are best-effort diagnostics; a racing deletion is not
			// worth failing the whole listing for.
			if info, err := de.Info(); err == nil {
				entry.Size = info.Size()
			}
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
