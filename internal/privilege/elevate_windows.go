//go:build windows

package privilege

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sys/windows"
)

// canWriteDirect reports whether the process token is elevated
func canWriteDirect(string) bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

// elevationLauncher starts the helper through a UAC prompt and relays its
// exit code. A declined prompt makes Start-Process fail, so PowerShell
// exits with 1.
func elevationLauncher() (Launcher, string, bool) {
	ps, err := exec.LookPath("powershell.exe")
	if err != nil {
		return nil, "", false
	}

	return func(ctx context.Context, exe string, args []string) (int, error) {
		quoted := make([]string, len(args))
		for i, arg := range args {
			quoted[i] = `"` + arg + `"`
		}
		script := fmt.Sprintf(
			"$p = Start-Process -FilePath %s -ArgumentList %s -Verb RunAs -Wait -PassThru -WindowStyle Hidden; exit $p.ExitCode",
			psQuote(exe), psQuote(strings.Join(quoted, " ")),
		)

		cmd := exec.CommandContext(ctx, ps, "-NoProfile", "-NonInteractive", "-Command", script)
		err := cmd.Run()
		if err == nil {
			return 0, nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, err
	}, "powershell-runas", true
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
