package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/pders01/zfs-tools/internal/pattern"
	"github.com/pders01/zfs-tools/internal/selection"
	"github.com/spf13/pflag"
)

// selectionFlags are the flags shared by the tools that pick datasets and
// snapshots
type selectionFlags struct {
	files         bool
	allDatasets   bool
	snapNames     bool
	recurse       bool
	omitDatasets  string
	omitSnapshots string
}

// register adds the flags to fs. withPatterns adds -a and -s, withSnapOmit
// adds -O.
func (f *selectionFlags) register(fs *pflag.FlagSet, withPatterns, withSnapOmit bool) {
	fs.BoolVarP(&f.files, "files", "f", false, "Arguments are files: act on the datasets containing them")
	if withPatterns {
		fs.BoolVarP(&f.allDatasets, "all-datasets", "a", false, "Arguments are leaf dataset names, matched in every pool (accepts *)")
		fs.BoolVarP(&f.snapNames, "snaps", "s", false, "Arguments are snapshot names, matched in every dataset")
	}
	fs.BoolVarP(&f.recurse, "recurse", "r", false, "Include the descendants of every selected dataset")
	fs.StringVarP(&f.omitDatasets, "omit", "o", "", "Comma-separated datasets to leave alone (accepts *)")
	if withSnapOmit {
		fs.StringVarP(&f.omitSnapshots, "omit-snaps", "O", "", "Comma-separated snapshot names to leave alone (accepts *)")
	}
}

func (f *selectionFlags) reset() {
	*f = selectionFlags{}
}

// request turns the flags and arguments into a selection request. File
// arguments are made absolute.
func (f *selectionFlags) request(args []string) (selection.Request, error) {
	mode, err := selection.ModeFromFlags(f.files, f.allDatasets, f.snapNames)
	if err != nil {
		return selection.Request{}, err
	}

	if mode == selection.Files {
		abs := make([]string, 0, len(args))
		for _, a := range args {
			p, err := filepath.Abs(a)
			if err != nil {
				return selection.Request{}, fmt.Errorf("failed to resolve %s: %w", a, err)
			}
			abs = append(abs, p)
		}
		args = abs
	}

	return selection.Request{
		Mode:          mode,
		Args:          args,
		Recurse:       f.recurse,
		OmitDatasets:  pattern.ParseList(f.omitDatasets),
		OmitSnapshots: pattern.ParseList(f.omitSnapshots),
	}, nil
}
