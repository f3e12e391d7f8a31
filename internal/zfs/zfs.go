// Package zfs talks to the zfs command. Read-only listings always run;
// mutating commands honour no-op mode by printing the command instead.
package zfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pders01/zfs-tools/internal/hierarchy"
	"github.com/pders01/zfs-tools/internal/models"
	"go.uber.org/zap"
)

// DefaultBinary is the usual location of the zfs command
const DefaultBinary = "/usr/sbin/zfs"

// Runner executes an external command and returns its standard output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run executes the command. The error carries the command's stderr.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return output, fmt.Errorf("%w: %s", err, bytes.TrimSpace(exitErr.Stderr))
		}
		return output, err
	}
	return output, nil
}

// Options configures a Client
type Options struct {
	Binary  string
	Runner  Runner
	Noop    bool
	Verbose bool
	Out     io.Writer
	Logger  *zap.Logger
}

// Client wraps the zfs command
type Client struct {
	binary  string
	runner  Runner
	noop    bool
	verbose bool
	out     io.Writer
	log     *zap.Logger
}

// New creates a Client. Zero fields in opts get defaults.
func New(opts Options) *Client {
	c := &Client{
		binary:  opts.Binary,
		runner:  opts.Runner,
		noop:    opts.Noop,
		verbose: opts.Verbose,
		out:     opts.Out,
		log:     opts.Logger,
	}
	if c.binary == "" {
		c.binary = DefaultBinary
	}
	if c.runner == nil {
		c.runner = ExecRunner{}
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Noop reports whether mutating commands are only printed
func (c *Client) Noop() bool {
	return c.noop
}

// ListDatasets returns every filesystem and volume with its mount point
func (c *Client) ListDatasets(ctx context.Context) ([]models.Dataset, error) {
	lines, err := c.list(ctx, "list", "-Hp", "-t", "filesystem,volume", "-o", "name,mountpoint")
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return parseDatasets(lines)
}

// AllSnapshots returns every snapshot on the host, oldest first
func (c *Client) AllSnapshots(ctx context.Context) ([]models.Snapshot, error) {
	lines, err := c.list(ctx, "list", "-Hp", "-t", "snapshot", "-o", "name,creation,used", "-s", "creation")
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return parseSnapshots(lines)
}

// ListSnapshots returns the snapshots of a single dataset, oldest first
func (c *Client) ListSnapshots(ctx context.Context, dataset string) ([]models.Snapshot, error) {
	lines, err := c.list(ctx, "list", "-Hp", "-t", "snapshot", "-o", "name,creation,used", "-s", "creation", "-d", "1", dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots of %s: %w", dataset, err)
	}
	return parseSnapshots(lines)
}

// Hierarchy enumerates datasets and snapshots into a Hierarchy
func (c *Client) Hierarchy(ctx context.Context) (*hierarchy.Hierarchy, error) {
	datasets, err := c.ListDatasets(ctx)
	if err != nil {
		return nil, err
	}

	snapshots, err := c.AllSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(datasets))
	for i, d := range datasets {
		index[d.Name] = i
	}
	for _, s := range snapshots {
		i, ok := index[s.Dataset]
		if !ok {
			c.log.Debug("snapshot of unlisted dataset", zap.String("snapshot", s.FullName()))
			continue
		}
		datasets[i].Snapshots = append(datasets[i].Snapshots, s)
	}

	c.log.Debug("enumerated pool",
		zap.Int("datasets", len(datasets)),
		zap.Int("snapshots", len(snapshots)))

	return hierarchy.New(datasets), nil
}

// Destroy removes a single snapshot. It refuses anything which would name
// a dataset rather than a snapshot.
func (c *Client) Destroy(ctx context.Context, dataset, snapshot string) error {
	if dataset == "" || snapshot == "" || strings.ContainsAny(dataset+snapshot, "@") {
		return fmt.Errorf("refusing to destroy %q: not a snapshot", models.SnapshotName(dataset, snapshot))
	}
	return c.mutate(ctx, "destroy", models.SnapshotName(dataset, snapshot))
}

// Create takes a snapshot of dataset called snapshot
func (c *Client) Create(ctx context.Context, dataset, snapshot string) error {
	if dataset == "" || snapshot == "" {
		return fmt.Errorf("refusing to create %q: incomplete snapshot name", models.SnapshotName(dataset, snapshot))
	}
	return c.mutate(ctx, "snapshot", models.SnapshotName(dataset, snapshot))
}

// Usage lists the space used by every dataset and snapshot. Entries using
// nothing are dropped.
func (c *Client) Usage(ctx context.Context) ([]models.Usage, error) {
	lines, err := c.list(ctx, "list", "-t", "all", "-Ho", "name,used,usedbydataset")
	if err != nil {
		return nil, fmt.Errorf("failed to list dataset usage: %w", err)
	}

	var out []models.Usage
	for _, line := range lines {
		u, ok, err := ParseUsageLine(line)
		if err != nil {
			c.log.Warn("skipping usage line", zap.String("line", line), zap.Error(err))
			continue
		}
		if ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// FormatCommand renders a command line for display
func FormatCommand(program string, args ...string) string {
	return strings.TrimSpace(program + " " + strings.Join(args, " "))
}

func (c *Client) list(ctx context.Context, args ...string) ([]string, error) {
	c.log.Debug("running", zap.String("command", FormatCommand(c.binary, args...)))

	output, err := c.runner.Run(ctx, c.binary, args...)
	if err != nil {
		return nil, err
	}
	return outputLines(output), nil
}

func (c *Client) mutate(ctx context.Context, args ...string) error {
	line := FormatCommand(c.binary, args...)
	if c.verbose || c.noop {
		fmt.Fprintln(c.out, line)
	}
	if c.noop {
		return nil
	}

	c.log.Debug("running", zap.String("command", line))
	if _, err := c.runner.Run(ctx, c.binary, args...); err != nil {
		return fmt.Errorf("failed to run '%s': %w", line, err)
	}
	return nil
}

// outputLines splits command output into non-empty lines
func outputLines(output []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
