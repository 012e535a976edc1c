package reconciler

import (
	"context"
	"errors"
	"fmt"

	"cfhosts/internal/dnscache"
	"cfhosts/internal/hosts"
	"cfhosts/internal/notify"
	"cfhosts/pkg/models"
)

// ErrNoHostnames is returned when an operation is given no hostnames
var ErrNoHostnames = errors.New("no hostnames given")

// Committer durably replaces the hosts file content
type Committer interface {
	Commit(ctx context.Context, content []byte) error
}

// Reconciler applies and reverts hostname overrides in a hosts file.
// Every operation reads the file fresh, mutates it in memory and commits
// the full content once; a failure at any step leaves the file untouched.
type Reconciler struct {
	path    string
	writer  Committer
	flusher dnscache.Flusher
	sink    notify.Sink
}

// New creates a reconciler for the hosts file at path
func New(path string, writer Committer, flusher dnscache.Flusher, sink notify.Sink) *Reconciler {
	if flusher == nil {
		flusher = dnscache.Nop{}
	}
	if sink == nil {
		sink = notify.Discard{}
	}
	return &Reconciler{
		path:    path,
		writer:  writer,
		flusher: flusher,
		sink:    sink,
	}
}

// Binding is the current hosts file answer for one hostname
type Binding struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Found   bool   `json:"found"`
}

// ApplyOverride points every hostname at ip, replacing any existing
// active entries for those names
func (r *Reconciler) ApplyOverride(ctx context.Context, ip string, hostnames []string) error {
	names := models.UniqueNames(hostnames)
	if len(names) == 0 {
		return ErrNoHostnames
	}

	entry, err := models.NewHostsEntry(ip, names...)
	if err != nil {
		return fmt.Errorf("invalid override: %w", err)
	}

	r.sink.Info(fmt.Sprintf("Updating hosts file %s", r.path))
	doc, err := hosts.Load(r.path)
	if err != nil {
		return err
	}

	if err := doc.Add([]models.HostsEntry{entry}, true); err != nil {
		return fmt.Errorf("failed to add override: %w", err)
	}
	r.sink.Info(fmt.Sprintf("Using IP %s for %v", entry.Address, entry.Names))

	if err := r.commit(ctx, doc); err != nil {
		return err
	}
	r.flush(ctx)
	r.sink.Info("Hosts file updated, restart affected programs for the change to take effect")
	return nil
}

// RemoveOverride strips every hostname from all active entries
func (r *Reconciler) RemoveOverride(ctx context.Context, hostnames []string) error {
	names := models.UniqueNames(hostnames)
	if len(names) == 0 {
		return ErrNoHostnames
	}

	r.sink.Info(fmt.Sprintf("Removing overrides from hosts file %s", r.path))
	doc, err := hosts.Load(r.path)
	if err != nil {
		return err
	}

	removed := 0
	for _, name := range names {
		removed += doc.RemoveAllMatching(name)
	}
	r.sink.Info(fmt.Sprintf("Removed %v from %d entries", names, removed))

	if err := r.commit(ctx, doc); err != nil {
		return err
	}
	r.flush(ctx)
	r.sink.Info("Hosts file updated, restart affected programs for the change to take effect")
	return nil
}

// Status reports where each hostname currently points
func (r *Reconciler) Status(hostnames []string) ([]Binding, error) {
	doc, err := hosts.Load(r.path)
	if err != nil {
		return nil, err
	}

	names := models.UniqueNames(hostnames)
	bindings := make([]Binding, 0, len(names))
	for _, name := range names {
		b := Binding{Name: name}
		if entry, ok := doc.Lookup(name); ok {
			b.Address = entry.Address
			b.Found = true
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

func (r *Reconciler) commit(ctx context.Context, doc *hosts.Document) error {
	if err := r.writer.Commit(ctx, []byte(doc.Serialize())); err != nil {
		return fmt.Errorf("failed to commit hosts file: %w", err)
	}
	return nil
}

// flush is best-effort; the hosts change stands either way
func (r *Reconciler) flush(ctx context.Context) {
	if err := r.flusher.Flush(ctx); err != nil {
		r.sink.Warn(fmt.Sprintf("Failed to flush DNS cache: %v", err))
	}
}
