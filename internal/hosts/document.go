package hosts

import (
	"fmt"
	"strings"

	"cfhosts/pkg/models"
)

// line is one physical line of a hosts file. Raw lines have a nil entry.
type line struct {
	text  string
	eol   string
	entry *models.HostsEntry
	dirty bool
}

func (l *line) active() bool {
	return l.entry != nil && l.entry.Enabled
}

// Document is the in-memory form of a hosts file. Untouched lines keep
// their original text and line ending.
type Document struct {
	lines []*line
	eol   string
}

// DuplicateEntryError is returned by a non-forced Add when a hostname is
// already claimed by an active entry
type DuplicateEntryError struct {
	Name    string
	Address string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("hostname %s already exists with IP %s", e.Name, e.Address)
}

// Entries returns a copy of every parsed entry, enabled or not, in file order
func (d *Document) Entries() []models.HostsEntry {
	var entries []models.HostsEntry
	for _, l := range d.lines {
		if l.entry != nil {
			entries = append(entries, cloneEntry(*l.entry))
		}
	}
	return entries
}

// Lookup returns the first active entry claiming name
func (d *Document) Lookup(name string) (models.HostsEntry, bool) {
	for _, l := range d.lines {
		if l.active() && l.entry.HasName(name) {
			return cloneEntry(*l.entry), true
		}
	}
	return models.HostsEntry{}, false
}

// Add appends entries to the document. With force, conflicting hostnames
// are stripped from existing active entries first, and entries left with
// no names are dropped. Without force, any conflict fails the whole call
// with a *DuplicateEntryError and the document is left unchanged.
func (d *Document) Add(entries []models.HostsEntry, force bool) error {
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return fmt.Errorf("invalid entry %d: %w", i+1, err)
		}
	}

	if !force {
		if err := d.checkConflicts(entries); err != nil {
			return err
		}
	}

	for _, entry := range entries {
		if force && entry.Enabled {
			d.strip(entry.Names)
		}
		added := cloneEntry(entry)
		d.lines = append(d.lines, &line{entry: &added, eol: d.eol, dirty: true})
	}
	return nil
}

// RemoveAllMatching strips name from every active entry, deleting entries
// that end up empty, and returns the number of entries affected
func (d *Document) RemoveAllMatching(name string) int {
	return d.strip([]string{name})
}

// Serialize renders the document back to hosts file text
func (d *Document) Serialize() string {
	var b strings.Builder
	for i, l := range d.lines {
		if l.entry != nil && l.dirty {
			b.WriteString(l.entry.Line())
		} else {
			b.WriteString(l.text)
		}

		eol := l.eol
		if eol == "" && i < len(d.lines)-1 {
			eol = d.eol
		}
		b.WriteString(eol)
	}
	return b.String()
}

func (d *Document) checkConflicts(entries []models.HostsEntry) error {
	claimed := make(map[string]string)
	for _, l := range d.lines {
		if !l.active() {
			continue
		}
		for _, name := range l.entry.Names {
			key := strings.ToLower(name)
			if _, ok := claimed[key]; !ok {
				claimed[key] = l.entry.Address
			}
		}
	}

	for _, entry := range entries {
		if !entry.Enabled {
			continue
		}
		for _, name := range entry.Names {
			key := strings.ToLower(name)
			if addr, ok := claimed[key]; ok {
				return &DuplicateEntryError{Name: name, Address: addr}
			}
			claimed[key] = entry.Address
		}
	}
	return nil
}

// strip removes names from all active entries
func (d *Document) strip(names []string) int {
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		drop[strings.ToLower(name)] = struct{}{}
	}

	affected := 0
	kept := d.lines[:0]
	for _, l := range d.lines {
		if !l.active() {
			kept = append(kept, l)
			continue
		}

		remaining := make([]string, 0, len(l.entry.Names))
		for _, name := range l.entry.Names {
			if _, ok := drop[strings.ToLower(name)]; !ok {
				remaining = append(remaining, name)
			}
		}
		if len(remaining) == len(l.entry.Names) {
			kept = append(kept, l)
			continue
		}

		affected++
		if len(remaining) == 0 {
			continue
		}
		l.entry.Names = remaining
		l.dirty = true
		kept = append(kept, l)
	}

	for i := len(kept); i < len(d.lines); i++ {
		d.lines[i] = nil
	}
	d.lines = kept
	return affected
}

func cloneEntry(e models.HostsEntry) models.HostsEntry {
	e.Names = append([]string(nil), e.Names...)
	return e
}
