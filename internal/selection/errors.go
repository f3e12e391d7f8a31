package selection

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	// ErrInvalidArgumentCombination is returned when mutually exclusive
	// options are given together. It is detected before the hierarchy is
	// consulted.
	ErrInvalidArgumentCombination = errors.New("invalid argument combination")

	// ErrAmbiguousReference is wrapped by every ReferenceError
	ErrAmbiguousReference = errors.New("ambiguous reference")
)

// ReferenceError reports an argument that did not resolve to anything
type ReferenceError struct {
	Mode Mode
	Arg  string
}

func (e *ReferenceError) Error() string {
	switch e.Mode {
	case Files:
		return fmt.Sprintf("%s is not on a mounted dataset", e.Arg)
	case AllDatasets:
		return fmt.Sprintf("no dataset is called %s", e.Arg)
	default:
		return fmt.Sprintf("dataset %s does not exist", e.Arg)
	}
}

// Unwrap makes errors.Is(err, ErrAmbiguousReference) hold
func (e *ReferenceError) Unwrap() error {
	return ErrAmbiguousReference
}

// UnresolvedArgs returns the arguments named by every ReferenceError in err,
// in the order they were reported.
func UnresolvedArgs(err error) []string {
	var args []string
	for _, e := range multierr.Errors(err) {
		var ref *ReferenceError
		if errors.As(e, &ref) {
			args = append(args, ref.Arg)
		}
	}
	return args
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgumentCombination, fmt.Sprintf(format, args...))
}
