//go:build darwin

package dnscache

import (
	"context"
	"os/exec"
)

const dscacheutilPath = "/usr/bin/dscacheutil"

func flush(ctx context.Context) error {
	if err := run(ctx, dscacheutilPath, "-flushcache"); err != nil {
		return err
	}
	// mDNSResponder might not be running
	_ = exec.CommandContext(ctx, "killall", "-HUP", "mDNSResponder").Run()
	return nil
}
