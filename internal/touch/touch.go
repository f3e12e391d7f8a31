// Package touch aligns the modification times of a live directory tree
// with those of the same tree in a snapshot.
package touch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// Options controls a touch run
type Options struct {
	Noop    bool
	Verbose bool
	Out     io.Writer
}

// Result counts what a run found
type Result struct {
	Live     int
	Snapshot int
	Changed  int
}

// Timestamps returns the modification time of everything below dir, keyed
// by path relative to dir. The .zfs control directory is not descended.
func Timestamps(fs afero.Fs, dir string) (map[string]time.Time, error) {
	out := make(map[string]time.Time)
	err := afero.Walk(fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && info.Name() == ".zfs" {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil || rel == "." {
			return err
		}
		out[rel] = info.ModTime()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return out, nil
}

// Align sets the modification time of every file below live which also
// exists below snapshot, but with a different time, to the snapshot's.
// Every failure is reported.
func Align(fs afero.Fs, live, snapshot string, opts Options) (Result, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	liveTimes, err := Timestamps(fs, live)
	if err != nil {
		return Result{}, err
	}
	snapTimes, err := Timestamps(fs, snapshot)
	if err != nil {
		return Result{}, err
	}

	res := Result{Live: len(liveTimes), Snapshot: len(snapTimes)}
	var errs error

	for _, rel := range sortedKeys(snapTimes) {
		ts := snapTimes[rel]
		liveTS, ok := liveTimes[rel]
		if !ok {
			if opts.Verbose {
				fmt.Fprintf(opts.Out, "%s : no live copy\n", rel)
			}
			continue
		}
		if liveTS.Equal(ts) {
			if opts.Verbose {
				fmt.Fprintf(opts.Out, "%s : correct\n", rel)
			}
			continue
		}

		target := filepath.Join(live, rel)
		if opts.Noop || opts.Verbose {
			fmt.Fprintf(opts.Out, "%s -> %s\n", target, ts.Format(time.RFC1123Z))
		}
		if opts.Noop {
			continue
		}
		if err := fs.Chtimes(target, ts, ts); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to set times on %s: %w", target, err))
			continue
		}
		res.Changed++
	}

	return res, errs
}
