package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrBlockedPath is returned when a path resolves into an always-blocked
// location (credential stores, SSH/GPG material).
var ErrBlockedPath = errors.New("safety: path is in a blocked location")

// ErrOutsideWorkspace is returned when a workspace root is configured and
// the resolved path does not lie under it.
var ErrOutsideWorkspace = errors.New("safety: path is outside the workspace root")

// alwaysBlocked are path fragments that are never permitted regardless of
// workspace configuration.
var alwaysBlocked = []string{
	".ssh/",
	".gnupg/",
	".aws/credentials",
	".env",
	".docker/config.json",
}

// ResolvePath canonicalizes path (following symlinks) and checks it against
// the always-blocked set and, if workspaceRoot is non-empty, against the
// workspace boundary. It returns the canonical absolute path on success.
func ResolvePath(path string, workspaceRoot string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			// A not-yet-created file: resolve its parent directory instead
			// and re-append the leaf, so traversal/workspace checks still
			// apply to new files.
			parent, evalErr := filepath.EvalSymlinks(filepath.Dir(abs))
			if evalErr != nil {
				return "", evalErr
			}
			resolved = filepath.Join(parent, filepath.Base(abs))
		} else {
			return "", err
		}
	}

	normalized := filepath.ToSlash(resolved)
	for _, blocked := range alwaysBlocked {
		if strings.Contains(normalized, blocked) {
			return "", ErrBlockedPath
		}
	}

	if workspaceRoot != "" {
		rootResolved, err := filepath.EvalSymlinks(workspaceRoot)
		if err != nil {
			rootResolved = workspaceRoot
		}
		rootAbs, err := filepath.Abs(rootResolved)
		if err != nil {
			return "", err
		}
		rel, err := filepath.Rel(rootAbs, resolved)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", ErrOutsideWorkspace
		}
	}

	return resolved, nil
}
