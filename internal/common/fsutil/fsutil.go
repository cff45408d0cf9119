package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/models/llm
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// removeAll is swapped in tests to simulate entries that cannot be removed.
var removeAll = os.RemoveAll

// ClearDirectory removes every entry inside dir and keeps dir itself.
// It returns 1 when dir cannot be opened for listing, -1 when at least one
// entry could not be removed, and 0 when dir is left empty.
func ClearDirectory(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 1
	}
	code := 0
	for _, e := range entries {
		if err := removeAll(filepath.Join(dir, e.Name())); err != nil {
			code = -1
		}
	}
	return code
}

// FindByExt lists regular files in dir whose extension matches ext,
// case-insensitively. Results are sorted by name.
func FindByExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	ext = strings.ToLower(ext)
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
