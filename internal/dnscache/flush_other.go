//go:build !linux && !darwin && !windows

package dnscache

import "context"

func flush(context.Context) error {
	return nil
}
