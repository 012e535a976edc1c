package hosts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// TargetPath returns the system hosts file location for the current OS
func TargetPath() string {
	return targetPath(runtime.GOOS, os.Getenv("SystemRoot"))
}

func targetPath(goos, systemRoot string) string {
	if goos == "windows" {
		if systemRoot == "" {
			systemRoot = `C:\Windows`
		}
		return filepath.Join(systemRoot, "System32", "drivers", "etc", "hosts")
	}
	return "/etc/hosts"
}

// Load reads and parses a hosts file. A missing file yields an empty document.
func Load(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Parse(""), nil
		}
		return nil, fmt.Errorf("failed to read hosts file %s: %w", path, err)
	}
	return Parse(string(content)), nil
}
