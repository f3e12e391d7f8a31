package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// FakeZFS stands in for the zfs command. It answers the list invocations
// the zfs package issues from an in-memory pool, and applies and records
// destroy and snapshot commands.
type FakeZFS struct {
	T *testing.T

	datasets  map[string]string
	snapshots []fakeSnapshot
	usage     []string
	calls     []string
	fail      map[string]error
	clock     time.Time
}

type fakeSnapshot struct {
	full    string
	created time.Time
	used    uint64
}

// NewFakeZFS creates an empty fake pool
func NewFakeZFS(t *testing.T) *FakeZFS {
	t.Helper()
	return &FakeZFS{
		T:        t,
		datasets: make(map[string]string),
		fail:     make(map[string]error),
		clock:    time.Date(2024, 10, 28, 0, 0, 0, 0, time.UTC),
	}
}

// AddDataset adds a filesystem. Use "-" or "none" for an unmounted one.
func (f *FakeZFS) AddDataset(name, mountPoint string) *FakeZFS {
	f.datasets[name] = mountPoint
	return f
}

// AddSnapshot adds dataset@name, created one hour after the previous one
func (f *FakeZFS) AddSnapshot(full string, used uint64) *FakeZFS {
	f.clock = f.clock.Add(time.Hour)
	f.snapshots = append(f.snapshots, fakeSnapshot{full: full, created: f.clock, used: used})
	return f
}

// AddUsage adds a raw `zfs list -Ho name,used,usedbydataset` line
func (f *FakeZFS) AddUsage(line string) *FakeZFS {
	f.usage = append(f.usage, line)
	return f
}

// FailOn makes the given command line (without the binary) fail
func (f *FakeZFS) FailOn(command string, err error) *FakeZFS {
	f.fail[command] = err
	return f
}

// Calls returns every mutating command run, without the binary
func (f *FakeZFS) Calls() []string {
	return append([]string(nil), f.calls...)
}

// Snapshots returns the full names of the snapshots currently in the pool
func (f *FakeZFS) Snapshots() []string {
	var out []string
	for _, s := range f.snapshots {
		out = append(out, s.full)
	}
	sort.Strings(out)
	return out
}

// Run implements zfs.Runner
func (f *FakeZFS) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no zfs subcommand")
	}

	switch args[0] {
	case "list":
		return f.list(args[1:])
	case "destroy", "snapshot":
		line := strings.Join(args, " ")
		f.calls = append(f.calls, line)
		if err := f.fail[line]; err != nil {
			return nil, err
		}
		if args[0] == "destroy" {
			f.destroy(args[1])
		} else {
			f.AddSnapshot(args[1], 0)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected zfs subcommand %q", args[0])
	}
}

func (f *FakeZFS) list(args []string) ([]byte, error) {
	kind := flagValue(args, "-t")
	var b strings.Builder

	switch kind {
	case "filesystem,volume":
		names := make([]string, 0, len(f.datasets))
		for n := range f.datasets {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(&b, "%s\t%s\n", n, f.datasets[n])
		}

	case "snapshot":
		only := ""
		if flagValue(args, "-d") != "" {
			only = args[len(args)-1]
		}
		for _, s := range f.snapshots {
			if only != "" && !strings.HasPrefix(s.full, only+"@") {
				continue
			}
			fmt.Fprintf(&b, "%s\t%s\t%d\n", s.full, strconv.FormatInt(s.created.Unix(), 10), s.used)
		}

	case "all":
		for _, line := range f.usage {
			b.WriteString(line + "\n")
		}

	default:
		return nil, fmt.Errorf("unexpected list type %q", kind)
	}

	return []byte(b.String()), nil
}

func (f *FakeZFS) destroy(full string) {
	kept := f.snapshots[:0]
	for _, s := range f.snapshots {
		if s.full != full {
			kept = append(kept, s)
		}
	}
	f.snapshots = kept
}

func flagValue(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

// WriteFile creates a file with the given contents and modification time,
// making parent directories as needed
func WriteFile(t *testing.T, fs afero.Fs, path, content string, mtime time.Time) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if !mtime.IsZero() {
		if err := fs.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("failed to set file times: %v", err)
		}
	}
}

// ReadFile returns the contents of a file, failing the test if it cannot
func ReadFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	return string(b)
}

// ModTime returns the modification time of a file
func ModTime(t *testing.T, fs afero.Fs, path string) time.Time {
	t.Helper()
	info, err := fs.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat file: %v", err)
	}
	return info.ModTime()
}
