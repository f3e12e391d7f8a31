// Package copier copies files and directory trees out of snapshots. With
// NoClobber set it merges into an existing target, leaving existing files
// alone.
package copier

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Options controls a copy
type Options struct {
	NoClobber bool
	Noop      bool
	Verbose   bool
	Out       io.Writer
}

// Copier copies within a single filesystem
type Copier struct {
	fs   afero.Fs
	opts Options
}

// New returns a Copier working on fs
func New(fs afero.Fs, opts Options) *Copier {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Copier{fs: fs, opts: opts}
}

// Copy copies src to dest. Directories are copied recursively, creating
// dest as needed.
func (c *Copier) Copy(src, dest string) error {
	info, err := c.fs.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	if !info.IsDir() {
		return c.copyFile(src, dest, info.Mode())
	}

	if !c.opts.Noop {
		if err := c.fs.MkdirAll(dest, info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dest, err)
		}
	}

	entries, err := afero.ReadDir(c.fs, src)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", src, err)
	}
	for _, e := range entries {
		if err := c.Copy(filepath.Join(src, e.Name()), filepath.Join(dest, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// MkdirAll creates dir and its parents unless in no-op mode
func (c *Copier) MkdirAll(dir string) error {
	if exists, _ := afero.DirExists(c.fs, dir); exists {
		return nil
	}
	if c.opts.Verbose || c.opts.Noop {
		fmt.Fprintf(c.opts.Out, "Creating %s\n", dir)
	}
	if c.opts.Noop {
		return nil
	}
	return c.fs.MkdirAll(dir, 0755)
}

// Rename moves src to dest unless in no-op mode
func (c *Copier) Rename(src, dest string) error {
	if c.opts.Verbose || c.opts.Noop {
		fmt.Fprintf(c.opts.Out, "%s -> %s\n", src, dest)
	}
	if c.opts.Noop {
		return nil
	}
	if err := c.fs.Rename(src, dest); err != nil {
		return fmt.Errorf("failed to rename %s: %w", src, err)
	}
	return nil
}

func (c *Copier) copyFile(src, dest string, mode os.FileMode) error {
	exists, err := afero.Exists(c.fs, dest)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", dest, err)
	}
	if exists && c.opts.NoClobber {
		if c.opts.Verbose {
			fmt.Fprintf(c.opts.Out, "%s exists and noclobber is set\n", dest)
		}
		return nil
	}

	if c.opts.Verbose || c.opts.Noop {
		fmt.Fprintf(c.opts.Out, "%s -> %s\n", src, dest)
	}
	if c.opts.Noop {
		return nil
	}

	in, err := c.fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := c.fs.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dest, err)
	}
	return out.Close()
}
