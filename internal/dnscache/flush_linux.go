//go:build linux

package dnscache

import (
	"context"
	"fmt"
	"time"

	dbus "github.com/godbus/dbus/v5"
)

const (
	resolvedDest         = "org.freedesktop.resolve1"
	resolvedObjectNode   = "/org/freedesktop/resolve1"
	resolvedFlushCaches  = "org.freedesktop.resolve1.Manager.FlushCaches"
	resolvedFlushTimeout = 5 * time.Second
)

// flush asks systemd-resolved to drop its caches over D-Bus, falling back
// to resolvectl. Hosts without a caching resolver have nothing to flush.
func flush(ctx context.Context) error {
	dbusErr := flushResolved(ctx)
	if dbusErr == nil {
		return nil
	}
	if err := run(ctx, "resolvectl", "flush-caches"); err != nil {
		return fmt.Errorf("flush systemd-resolved caches: %v; %w", dbusErr, err)
	}
	return nil
}

func flushResolved(ctx context.Context) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("connect to system bus: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, resolvedFlushTimeout)
	defer cancel()

	obj := conn.Object(resolvedDest, resolvedObjectNode)
	if err := obj.CallWithContext(ctx, resolvedFlushCaches, 0).Store(); err != nil {
		return fmt.Errorf("flush caches: %w", err)
	}
	return nil
}
