package monitor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"cfhosts/internal/hosts"
	"cfhosts/internal/notify"
	"cfhosts/pkg/models"
)

// Applier re-applies an override
type Applier interface {
	ApplyOverride(ctx context.Context, ip string, hostnames []string) error
}

// Monitor watches the hosts file and restores the pinned override when
// another program drops or changes it
type Monitor struct {
	path      string
	ip        string
	hostnames []string
	applier   Applier
	sink      notify.Sink
}

// New creates a monitor pinning hostnames to ip in the hosts file at path
func New(path, ip string, hostnames []string, applier Applier, sink notify.Sink) *Monitor {
	if sink == nil {
		sink = notify.Discard{}
	}
	return &Monitor{
		path:      path,
		ip:        ip,
		hostnames: models.UniqueNames(hostnames),
		applier:   applier,
		sink:      sink,
	}
}

// Drifted returns the hostnames whose active binding differs from the pinned IP
func (m *Monitor) Drifted() ([]string, error) {
	doc, err := hosts.Load(m.path)
	if err != nil {
		return nil, err
	}

	var drifted []string
	for _, name := range m.hostnames {
		entry, ok := doc.Lookup(name)
		if !ok || entry.Address != m.ip {
			drifted = append(drifted, name)
		}
	}
	return drifted, nil
}

// Check re-applies the override if the hosts file drifted
func (m *Monitor) Check(ctx context.Context) error {
	drifted, err := m.Drifted()
	if err != nil {
		return err
	}
	if len(drifted) == 0 {
		return nil
	}

	m.sink.Info(fmt.Sprintf("Hosts file no longer maps %v to %s, re-applying", drifted, m.ip))
	return m.applier.ApplyOverride(ctx, m.ip, m.hostnames)
}

// Run checks once, then watches until ctx is done. The directory is
// watched rather than the file because atomic writes replace the file.
func (m *Monitor) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := m.Check(ctx); err != nil {
		return err
	}

	dir := filepath.Dir(m.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	m.sink.Info(fmt.Sprintf("Watching %s", m.path))

	absPath, _ := filepath.Abs(m.path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !m.relevant(event, absPath) {
				continue
			}
			if err := m.Check(ctx); err != nil {
				m.sink.Warn(fmt.Sprintf("Failed to restore override: %v", err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.sink.Warn(fmt.Sprintf("File watcher error: %v", err))

		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Monitor) relevant(event fsnotify.Event, absPath string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	absEventPath, _ := filepath.Abs(event.Name)
	return absEventPath == absPath
}
