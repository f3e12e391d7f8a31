// Package naming knows the shapes of automatically generated snapshot
// names. Each scheme is a row in a table holding a generator and a strict
// validator; adding a scheme means adding a row.
package naming

import (
	"fmt"
	"strings"
	"time"
)

// Scheme identifies one snapshot naming convention
type Scheme int

const (
	// DayOfWeek names are lower case weekday names, e.g. wednesday
	DayOfWeek Scheme = iota
	// Month names are lower case month names, e.g. january
	Month
	// Date names are YYYY-mm-dd
	Date
	// Time names are HH:MM
	Time
	// FullTimestamp names are YYYY-mm-dd_HH:MM:SS
	FullTimestamp
)

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04"
	timestampLayout = "2006-01-02_15:04:05"
)

type scheme struct {
	id       Scheme
	name     string
	generate func(time.Time) string
	valid    func(string) bool
}

var table = []scheme{
	{
		id:       DayOfWeek,
		name:     "day",
		generate: func(t time.Time) string { return strings.ToLower(t.Weekday().String()) },
		valid:    inSet(weekdayNames()),
	},
	{
		id:       Month,
		name:     "month",
		generate: func(t time.Time) string { return strings.ToLower(t.Month().String()) },
		valid:    inSet(monthNames()),
	},
	{
		id:       Date,
		name:     "date",
		generate: layout(dateLayout),
		valid:    roundTrips(dateLayout),
	},
	{
		id:       Time,
		name:     "time",
		generate: layout(timeLayout),
		valid:    roundTrips(timeLayout),
	},
	{
		id:       FullTimestamp,
		name:     "now",
		generate: layout(timestampLayout),
		valid:    roundTrips(timestampLayout),
	},
}

// All returns every known scheme
func All() []Scheme {
	out := make([]Scheme, len(table))
	for i, s := range table {
		out[i] = s.id
	}
	return out
}

func (s Scheme) String() string {
	if row, ok := lookup(s); ok {
		return row.name
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// ParseScheme maps a snapshot type given on the command line onto a Scheme
func ParseScheme(name string) (Scheme, error) {
	for _, row := range table {
		if row.name == name {
			return row.id, nil
		}
	}
	return 0, fmt.Errorf("unsupported snapshot type: %s (must be one of: %s)", name, strings.Join(schemeNames(), ", "))
}

// ParseSchemes parses a list of scheme names
func ParseSchemes(names []string) ([]Scheme, error) {
	out := make([]Scheme, 0, len(names))
	for _, n := range names {
		s, err := ParseScheme(strings.TrimSpace(n))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Name generates the snapshot name for t under scheme s
func Name(s Scheme, t time.Time) (string, error) {
	row, ok := lookup(s)
	if !ok {
		return "", fmt.Errorf("unsupported snapshot scheme: %s", s)
	}
	return row.generate(t), nil
}

// Yesterday is the day-of-week snapshot name taken the day before t
func Yesterday(t time.Time) string {
	return strings.ToLower(t.AddDate(0, 0, -1).Weekday().String())
}

// Matches reports whether name has the exact shape of scheme s
func Matches(s Scheme, name string) bool {
	row, ok := lookup(s)
	return ok && row.valid(name)
}

// IsConformant reports whether name fits any of the given schemes
func IsConformant(name string, schemes []Scheme) bool {
	for _, s := range schemes {
		if Matches(s, name) {
			return true
		}
	}
	return false
}

func lookup(s Scheme) (scheme, bool) {
	for _, row := range table {
		if row.id == s {
			return row, true
		}
	}
	return scheme{}, false
}

func schemeNames() []string {
	out := make([]string, len(table))
	for i, row := range table {
		out[i] = row.name
	}
	return out
}

func layout(l string) func(time.Time) string {
	return func(t time.Time) string { return t.Format(l) }
}

// roundTrips accepts only strings which parse under layout and format back
// to themselves, which rules out bad ranges and unpadded fields
func roundTrips(l string) func(string) bool {
	return func(s string) bool {
		t, err := time.Parse(l, s)
		return err == nil && t.Format(l) == s
	}
}

func inSet(names []string) func(string) bool {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(s string) bool {
		_, ok := set[s]
		return ok
	}
}

func weekdayNames() []string {
	var out []string
	for d := time.Sunday; d <= time.Saturday; d++ {
		out = append(out, strings.ToLower(d.String()))
	}
	return out
}

func monthNames() []string {
	var out []string
	for m := time.January; m <= time.December; m++ {
		out = append(out, strings.ToLower(m.String()))
	}
	return out
}
