// Package selection computes the datasets and snapshots an operation acts
// on. It does no I/O: callers enumerate the pool into a hierarchy, call
// Select or SelectDatasets, and then act on the result themselves.
package selection

import (
	"path"
	"sort"
	"strings"

	"github.com/pders01/zfs-tools/internal/hierarchy"
	"github.com/pders01/zfs-tools/internal/models"
	"github.com/pders01/zfs-tools/internal/pattern"
	"go.uber.org/multierr"
)

// Request describes one selection
type Request struct {
	Mode          Mode
	Args          []string
	Recurse       bool
	OmitDatasets  pattern.List
	OmitSnapshots pattern.List
}

// TargetSet is the ordered result of a selection: datasets in ascending
// name order, and each dataset's snapshots in creation order
type TargetSet []models.Snapshot

// Empty reports whether nothing was selected. This is a legitimate outcome,
// not an error.
func (ts TargetSet) Empty() bool {
	return len(ts) == 0
}

// Names returns dataset@snapshot for every target
func (ts TargetSet) Names() []string {
	out := make([]string, len(ts))
	for i, s := range ts {
		out[i] = s.FullName()
	}
	return out
}

// Datasets returns the distinct datasets in the set, in order
func (ts TargetSet) Datasets() []string {
	var out []string
	for i, s := range ts {
		if i == 0 || ts[i-1].Dataset != s.Dataset {
			out = append(out, s.Dataset)
		}
	}
	return out
}

// Validate checks the request for option conflicts
func (r Request) Validate() error {
	if !r.Mode.valid() {
		return invalid("unknown selection mode %d", int(r.Mode))
	}

	if r.Mode.usesPatterns() && (!r.OmitDatasets.Empty() || !r.OmitSnapshots.Empty()) {
		return invalid("omit lists cannot be combined with -a or -s")
	}

	if len(r.Args) == 0 {
		switch {
		case r.Mode == Files:
			return invalid("-f requires one or more files")
		case r.Mode.usesPatterns():
			return invalid("%s mode requires at least one argument", r.Mode)
		case r.Recurse:
			return invalid("-r makes no sense without a list of datasets")
		}
	}

	return nil
}

// Select returns every snapshot the request refers to. It fails with
// ErrInvalidArgumentCombination for conflicting options, and with one
// ReferenceError per unresolvable argument, all reported together.
// Datasets mode with no arguments selects nothing here; only
// SelectDatasets widens it to every dataset.
func Select(req Request, h *hierarchy.Hierarchy) (TargetSet, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.Mode == Datasets && len(req.Args) == 0 {
		return TargetSet{}, nil
	}

	if req.Mode == SnapshotNames {
		return selectSnapshotNames(req, h), nil
	}

	datasets, err := candidates(req, h)
	if err != nil {
		return nil, err
	}

	var out TargetSet
	for _, name := range datasets {
		for _, s := range h.Snapshots(name) {
			if req.OmitSnapshots.Match(s.Name) {
				continue
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// SelectDatasets returns the names of the datasets the request refers to,
// in ascending order. It is used when snapshots are to be created rather
// than found, so SnapshotNames mode is refused. Datasets mode with no
// arguments takes every dataset in the hierarchy.
func SelectDatasets(req Request, h *hierarchy.Hierarchy) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Mode == SnapshotNames {
		return nil, invalid("-s selects snapshots, not datasets")
	}
	return candidates(req, h)
}

func candidates(req Request, h *hierarchy.Hierarchy) ([]string, error) {
	set := make(map[string]struct{})
	add := func(name string) {
		set[name] = struct{}{}
		if req.Recurse {
			for _, d := range h.Descendants(name) {
				set[d.Name] = struct{}{}
			}
		}
	}

	var errs error
	unresolved := func(arg string) {
		errs = multierr.Append(errs, &ReferenceError{Mode: req.Mode, Arg: arg})
	}

	switch req.Mode {
	case Datasets:
		if len(req.Args) == 0 {
			for _, name := range h.Names() {
				set[name] = struct{}{}
			}
		}
		for _, arg := range req.Args {
			name := strings.TrimSuffix(arg, "/")
			if !h.Has(name) {
				unresolved(arg)
				continue
			}
			add(name)
		}

	case Files:
		for _, arg := range req.Args {
			d, ok := h.DatasetForPath(path.Clean(arg))
			if !ok {
				unresolved(arg)
				continue
			}
			add(d.Name)
		}

	case AllDatasets:
		datasets := h.Datasets()
		for _, arg := range req.Args {
			p := pattern.Parse(arg)
			matched := false
			for _, d := range datasets {
				if p.Match(d.Leaf()) {
					add(d.Name)
					matched = true
				}
			}
			if !matched {
				unresolved(arg)
			}
		}
	}

	if errs != nil {
		return nil, errs
	}

	out := make([]string, 0, len(set))
	for name := range set {
		if req.OmitDatasets.Match(name) {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func selectSnapshotNames(req Request, h *hierarchy.Hierarchy) TargetSet {
	wanted := make(map[string]struct{}, len(req.Args))
	for _, arg := range req.Args {
		wanted[strings.TrimPrefix(arg, "@")] = struct{}{}
	}

	var out TargetSet
	for _, name := range h.Names() {
		for _, s := range h.Snapshots(name) {
			if _, ok := wanted[s.Name]; ok {
				out = append(out, s)
			}
		}
	}
	return out
}
