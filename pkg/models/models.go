package models

import (
	"fmt"
	"strings"
	"time"

	"cfhosts/pkg/utils"
)

// Family is the address family of a hosts entry
type Family int

const (
	IPv4 Family = iota
	IPv6
)

// String returns the family name
func (f Family) String() string {
	switch f {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// HostsEntry represents one address-to-hostnames binding in a hosts file
type HostsEntry struct {
	Family  Family   `json:"family"`
	Address string   `json:"address"`
	Names   []string `json:"names"`
	Enabled bool     `json:"enabled"`
	Comment string   `json:"comment"`
}

// NewHostsEntry creates an enabled entry, inferring the family from the address
func NewHostsEntry(address string, names ...string) (HostsEntry, error) {
	addr, err := utils.ParseAddr(address)
	if err != nil {
		return HostsEntry{}, err
	}

	entry := HostsEntry{
		Family:  FamilyOf(addr.Is4()),
		Address: strings.TrimSpace(address),
		Names:   UniqueNames(names),
		Enabled: true,
	}
	if err := entry.Validate(); err != nil {
		return HostsEntry{}, err
	}
	return entry, nil
}

// FamilyOf maps an is-IPv4 flag to a Family
func FamilyOf(is4 bool) Family {
	if is4 {
		return IPv4
	}
	return IPv6
}

// Validate checks the entry invariants
func (e *HostsEntry) Validate() error {
	addr, err := utils.ParseAddr(e.Address)
	if err != nil {
		return err
	}
	if FamilyOf(addr.Is4()) != e.Family {
		return fmt.Errorf("address %s is not a valid %s literal", e.Address, e.Family)
	}
	if e.Enabled && len(e.Names) == 0 {
		return fmt.Errorf("entry for %s has no hostnames", e.Address)
	}

	seen := make(map[string]struct{}, len(e.Names))
	for _, name := range e.Names {
		if !utils.IsHostname(name) {
			return fmt.Errorf("invalid hostname: %q", name)
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("duplicate hostname %s in entry for %s", name, e.Address)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// HasName reports whether the entry claims name
func (e *HostsEntry) HasName(name string) bool {
	for _, n := range e.Names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// Line renders the entry in hosts file format
func (e *HostsEntry) Line() string {
	line := e.Address + " " + strings.Join(e.Names, " ")
	if e.Comment != "" {
		line += " # " + e.Comment
	}
	if !e.Enabled {
		line = "# " + line
	}
	return line
}

// UniqueNames trims names and drops empty or repeated ones, keeping order
func UniqueNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

// LogEntry represents one line of output captured from an external process
type LogEntry struct {
	Timestamp time.Time `json:"when"`
	UnixTime  int64     `json:"utime"`
	Channel   string    `json:"channel"`
	Message   string    `json:"message"`
}
