// Package dnscache flushes the operating system resolver cache so that
// hosts file changes take effect without a reboot.
package dnscache

import (
	"context"
	"fmt"
	"os/exec"
)

// Flusher clears the system DNS cache
type Flusher interface {
	Flush(ctx context.Context) error
}

// System flushes the cache of the running operating system
type System struct{}

// Flush clears the system DNS cache
func (System) Flush(ctx context.Context) error {
	return flush(ctx)
}

// Nop does nothing; it is used when flushing is disabled
type Nop struct{}

// Flush returns nil
func (Nop) Flush(context.Context) error {
	return nil
}

func run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w (%s)", name, err, output)
	}
	return nil
}
