//go:build windows

package dnscache

import "context"

func flush(ctx context.Context) error {
	return run(ctx, "ipconfig", "/flushdns")
}
