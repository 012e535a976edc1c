package utils

import (
	"fmt"
	"net/netip"
	"regexp"
	"strings"
)

var hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]([a-zA-Z0-9_\-\.]*[a-zA-Z0-9_])?$`)

// ParseAddr parses an IPv4 or IPv6 literal, zones included
func ParseAddr(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("invalid IP address %q: %w", s, err)
	}
	return addr, nil
}

// IsAddr reports whether s is an IP literal
func IsAddr(s string) bool {
	_, err := netip.ParseAddr(s)
	return err == nil
}

// IsHostname reports whether s is usable as a hosts file name
func IsHostname(s string) bool {
	return len(s) <= 253 && hostnameRegex.MatchString(s)
}

// SplitNames splits a comma or whitespace separated hostname list
func SplitNames(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}
