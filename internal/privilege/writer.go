package privilege

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Writer commits full hosts file content to its target path. It always
// tries a direct write first and falls back to its escalator only when
// the direct write is refused for lack of permission.
type Writer struct {
	target    string
	escalator Escalator
	write     func(target string, content []byte) error
}

// NewWriter creates a writer for target using escalator as the fallback
func NewWriter(target string, escalator Escalator) *Writer {
	if escalator == nil {
		escalator = Unsupported{}
	}
	return &Writer{
		target:    target,
		escalator: escalator,
		write:     WriteAtomic,
	}
}

// Target returns the path this writer commits to
func (w *Writer) Target() string {
	return w.target
}

// Escalator returns the fallback escalator
func (w *Writer) Escalator() Escalator {
	return w.escalator
}

// Commit replaces the target's content. Either all of content lands or
// the target is left as it was.
func (w *Writer) Commit(ctx context.Context, content []byte) error {
	err := w.write(w.target, content)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrPermission) {
		return &HostsWriteError{Path: w.target, Err: err}
	}

	if err := w.escalator.Escalate(ctx, w.target, content); err != nil {
		return &HostsWriteError{Path: w.target, Err: err}
	}
	return nil
}

// WriteAtomic writes content to a temporary file next to target and
// renames it into place, keeping the target's permission bits
func WriteAtomic(target string, content []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".hosts-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	return os.Rename(tmpPath, target)
}
