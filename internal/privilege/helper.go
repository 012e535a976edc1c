package privilege

import (
	"fmt"
	"io"
	"os"
)

const (
	// HelperSuccessCode is the exit code an elevated helper uses to report success
	HelperSuccessCode = 42

	// ActionMove moves a staged file onto the hosts file
	ActionMove = "move"
)

// HelperArgs builds the command line an elevated helper is started with
func HelperArgs(action, src, dst string) []string {
	return []string{"helper", action, "--src", src, "--dst", dst}
}

// HelperMain runs a helper action and returns the process exit code
func HelperMain(action, src, dst string, stderr io.Writer) int {
	switch action {
	case ActionMove:
		if src == "" || dst == "" {
			fmt.Fprintln(stderr, "move requires --src and --dst")
			return 1
		}
		if err := MoveFile(src, dst); err != nil {
			fmt.Fprintf(stderr, "move %s -> %s failed: %v\n", src, dst, err)
			return 1
		}
		return HelperSuccessCode
	default:
		fmt.Fprintf(stderr, "unknown helper action %q\n", action)
		return 2
	}
}

// MoveFile replaces dst with the content of src and removes src. The
// content is rewritten next to dst rather than renamed from src, so the
// result is owned by the helper's user and keeps dst's permissions.
func MoveFile(src, dst string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	if err := WriteAtomic(dst, content); err != nil {
		return fmt.Errorf("replace %s: %w", dst, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s: %w", src, err)
	}
	return nil
}
