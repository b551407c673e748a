// Package filesystem holds the path helpers shared by the config loader and
// the state database: resolving files relative to the executable and making
// sure a file's parent directory exists before it is written.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaultPath resolves filename against the directory the running
// executable lives in.
func GetDefaultPath(filename string) (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	return filepath.Join(filepath.Dir(exePath), filename), nil
}

// EnsureDirectoryExists creates the parent directory of filePath if it is
// missing. A path in the current directory needs nothing created.
func EnsureDirectoryExists(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "." {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return nil
}
