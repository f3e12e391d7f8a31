package selection

// Mode decides how the arguments of a Request are interpreted
type Mode int

const (
	// Datasets treats arguments as full dataset names. This is the default.
	Datasets Mode = iota
	// Files treats arguments as paths on mounted datasets.
	Files
	// AllDatasets treats arguments as patterns over the last component of
	// every dataset name in the tree.
	AllDatasets
	// SnapshotNames treats arguments as snapshot names, looked for on every
	// dataset.
	SnapshotNames
)

var modeNames = map[Mode]string{
	Datasets:      "datasets",
	Files:         "files",
	AllDatasets:   "all-datasets",
	SnapshotNames: "snapshot-names",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}

func (m Mode) valid() bool {
	_, ok := modeNames[m]
	return ok
}

// usesPatterns reports whether the mode already interprets its arguments
// over the whole tree, in which case omit lists are refused
func (m Mode) usesPatterns() bool {
	return m == AllDatasets || m == SnapshotNames
}

// ModeFromFlags maps the -f, -a and -s flags onto a Mode. At most one may
// be set.
func ModeFromFlags(files, all, snaps bool) (Mode, error) {
	set := 0
	for _, f := range []bool{files, all, snaps} {
		if f {
			set++
		}
	}
	if set > 1 {
		return Datasets, invalid("only one of -f, -a and -s may be given")
	}

	switch {
	case files:
		return Files, nil
	case all:
		return AllDatasets, nil
	case snaps:
		return SnapshotNames, nil
	default:
		return Datasets, nil
	}
}
