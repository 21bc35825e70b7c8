package tools

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned when a destructive operation targets a
// path that must never be removed.
var ErrUnsafePath = errors.New("refusing to operate on unsafe path")

func ResolvePath(path string) string {
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return realPath
}

// ExpandPath expands a leading ~ and any $VAR references, then returns
// the cleaned absolute path.
func ExpandPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", ErrUnsafePath)
	}

	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	return filepath.Abs(path)
}

// CheckRemovable fails for the filesystem root, for the home directory
// of the current user and for any path that is, or contains, one of the
// protected paths. Paths are compared in their symlink-resolved form.
func CheckRemovable(path string, protected ...string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: %s is not absolute", ErrUnsafePath, path)
	}

	resolved := ResolvePath(filepath.Clean(path))
	if resolved == string(filepath.Separator) {
		return fmt.Errorf("%w: %s", ErrUnsafePath, path)
	}

	if home, err := os.UserHomeDir(); err == nil {
		protected = append(protected, home)
	}

	for _, p := range protected {
		if p == "" {
			continue
		}
		if isWithin(ResolvePath(filepath.Clean(p)), resolved) {
			return fmt.Errorf("%w: %s would remove %s", ErrUnsafePath, path, p)
		}
	}

	return nil
}

// isWithin reports whether path is parent or one of its descendants.
func isWithin(path, parent string) bool {
	rel, err := filepath.Rel(parent, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Exists reports whether the path exists, following symlinks.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
