// Package pattern matches dataset and snapshot names against the simple
// wildcard rules accepted by the omit options. The only wildcard is '*',
// which matches any run of characters, including none.
package pattern

import "strings"

// Wildcard is the only special character in a pattern
const Wildcard = "*"

// Pattern is a parsed, immutable name pattern
type Pattern struct {
	raw      string
	segments []string
}

// Parse turns user input into a Pattern. A string without a wildcard is a
// literal and only matches itself.
func Parse(s string) Pattern {
	p := Pattern{raw: s}
	if strings.Contains(s, Wildcard) {
		p.segments = strings.Split(s, Wildcard)
	}
	return p
}

// String returns the pattern as the user wrote it
func (p Pattern) String() string {
	return p.raw
}

// Literal reports whether the pattern has no wildcards
func (p Pattern) Literal() bool {
	return p.segments == nil
}

// Match reports whether name matches the pattern. Text before the first
// '*' must be a prefix, text after the last '*' a suffix, and anything in
// between must occur in order without overlapping either.
func (p Pattern) Match(name string) bool {
	if p.Literal() {
		return name == p.raw
	}

	first := p.segments[0]
	last := p.segments[len(p.segments)-1]

	if !strings.HasPrefix(name, first) {
		return false
	}
	rest := name[len(first):]

	if len(rest) < len(last) || !strings.HasSuffix(rest, last) {
		return false
	}
	rest = rest[:len(rest)-len(last)]

	for _, seg := range p.segments[1 : len(p.segments)-1] {
		i := strings.Index(rest, seg)
		if i < 0 {
			return false
		}
		rest = rest[i+len(seg):]
	}

	return true
}

// List is an ordered set of patterns. A name matches the list if it
// matches any member.
type List []Pattern

// ParseList parses a comma-separated list of patterns. Blank entries are
// dropped.
func ParseList(s string) List {
	return NewList(s)
}

// NewList parses each argument as a comma-separated list and concatenates
// the results. It accepts the output of a string slice flag directly.
func NewList(raw ...string) List {
	var list List
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				list = append(list, Parse(part))
			}
		}
	}
	return list
}

// Match reports whether any pattern in the list matches name. An empty
// list matches nothing.
func (l List) Match(name string) bool {
	for _, p := range l {
		if p.Match(name) {
			return true
		}
	}
	return false
}

// Empty reports whether the list has no patterns
func (l List) Empty() bool {
	return len(l) == 0
}

// Strings returns the patterns as written
func (l List) Strings() []string {
	out := make([]string, len(l))
	for i, p := range l {
		out[i] = p.String()
	}
	return out
}
