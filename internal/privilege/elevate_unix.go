//go:build unix

package privilege

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// canWriteDirect reports whether the process may replace target, which
// needs write access to its directory for the rename
func canWriteDirect(target string) bool {
	if unix.Access(filepath.Dir(target), unix.W_OK) != nil {
		return false
	}
	if _, err := os.Stat(target); err == nil {
		return unix.Access(target, unix.W_OK) == nil
	}
	return true
}

// elevationLauncher prefers sudo and falls back to pkexec
func elevationLauncher() (Launcher, string, bool) {
	if path, err := exec.LookPath("sudo"); err == nil {
		return commandLauncher(path, "--"), "sudo", true
	}
	if path, err := exec.LookPath("pkexec"); err == nil {
		return commandLauncher(path), "pkexec", true
	}
	return nil, "", false
}

func commandLauncher(tool string, toolArgs ...string) Launcher {
	return func(ctx context.Context, exe string, args []string) (int, error) {
		argv := append(append(append([]string{}, toolArgs...), exe), args...)
		cmd := exec.CommandContext(ctx, tool, argv...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return exitCode(cmd.Run())
	}
}

func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
