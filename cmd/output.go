package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/alpkeskin/gotoon"
)

// outputFlags selects a machine-readable rendering
type outputFlags struct {
	json bool
	toon bool
}

// write renders v as JSON or Toon when asked to. It reports whether it
// wrote anything, so callers fall back to their text rendering.
func (o outputFlags) write(v any) (bool, error) {
	if o.json {
		output, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(output))
		return true, nil
	}

	if o.toon {
		output, err := gotoon.Encode(v)
		if err != nil {
			return true, fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Fprintln(out, output)
		return true, nil
	}

	return false, nil
}
