package hosts

import (
	"strings"

	"cfhosts/pkg/models"
	"cfhosts/pkg/utils"
)

// Parser handles hosts file parsing
type Parser struct{}

// NewParser creates a new hosts parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse splits content into lines and recognizes entry lines. It never
// fails: anything that is not a well-formed entry is kept as a raw line.
func (p *Parser) Parse(content string) *Document {
	doc := &Document{eol: "\n"}
	sawEOL := false

	for len(content) > 0 {
		text, eol := content, ""
		if idx := strings.IndexByte(content, '\n'); idx >= 0 {
			text, content = content[:idx], content[idx+1:]
			eol = "\n"
			if strings.HasSuffix(text, "\r") {
				text = text[:len(text)-1]
				eol = "\r\n"
			}
			if !sawEOL {
				doc.eol = eol
				sawEOL = true
			}
		} else {
			content = ""
		}

		l := &line{text: text, eol: eol}
		if entry, ok := p.ParseLine(text); ok {
			l.entry = &entry
		}
		doc.lines = append(doc.lines, l)
	}

	return doc
}

// ParseLine parses a single line into an entry. Lines starting with '#'
// followed by a valid entry are returned as disabled entries.
func (p *Parser) ParseLine(text string) (models.HostsEntry, bool) {
	line := strings.TrimSpace(text)
	if line == "" {
		return models.HostsEntry{}, false
	}

	enabled := true
	if strings.HasPrefix(line, "#") {
		enabled = false
		line = strings.TrimSpace(line[1:])
	}

	line, comment := p.splitComment(line)
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return models.HostsEntry{}, false
	}

	addr, err := utils.ParseAddr(fields[0])
	if err != nil {
		return models.HostsEntry{}, false
	}

	var names []string
	for _, field := range fields[1:] {
		for _, name := range utils.SplitNames(field) {
			if !utils.IsHostname(name) {
				return models.HostsEntry{}, false
			}
			names = append(names, name)
		}
	}
	names = models.UniqueNames(names)
	if len(names) == 0 {
		return models.HostsEntry{}, false
	}

	return models.HostsEntry{
		Family:  models.FamilyOf(addr.Is4()),
		Address: fields[0],
		Names:   names,
		Enabled: enabled,
		Comment: comment,
	}, true
}

// splitComment separates a trailing comment from a line
func (p *Parser) splitComment(line string) (string, string) {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
	}
	return line, ""
}

// Parse parses hosts file content with the default parser
func Parse(content string) *Document {
	return NewParser().Parse(content)
}
