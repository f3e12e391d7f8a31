package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/pders01/zfs-tools/internal/naming"
	"github.com/pders01/zfs-tools/internal/touch"
	"github.com/pders01/zfs-tools/internal/zfs"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	touchSnapName string
	touchNoop     bool
	touchVerbose  bool
)

var touchCmd = &cobra.Command{
	Use:   "touch [flags] <dir>...",
	Short: "Align file timestamps with those in a snapshot",
	Long: `Set the modification time of every file below each directory to the
time the same file has in a snapshot. Files whose times already agree,
and files missing from the snapshot, are left alone.

By default yesterday's day-of-week snapshot is used.

Examples:
  ztools touch /export/home/rob
  ztools touch -s 2024-10-27 -n /data/build`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTouch,
}

func init() {
	rootCmd.AddCommand(touchCmd)

	touchCmd.Flags().StringVarP(&touchSnapName, "snapname", "s", "", "Use this snapshot rather than yesterday's")
	touchCmd.Flags().BoolVarP(&touchNoop, "noop", "n", false, "Print what would happen, without doing it")
	touchCmd.Flags().BoolVarP(&touchVerbose, "verbose", "v", false, "Be verbose")
}

func runTouch(cmd *cobra.Command, args []string) error {
	snapName := touchSnapName
	if snapName == "" {
		snapName = naming.Yesterday(now())
	}

	h, err := loadHierarchy(contextOf(cmd), newClient(touchNoop, touchVerbose))
	if err != nil {
		return err
	}
	snapDir := zfs.NewSnapshotDir(appFs, h)

	for _, arg := range args {
		dir, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", arg, err)
		}

		if isDir, _ := afero.DirExists(appFs, dir); !isDir {
			fmt.Fprintf(out, "WARNING: %s is not a valid directory\n", dir)
			continue
		}

		ds, ok := h.DatasetForPath(dir)
		if !ok {
			return fmt.Errorf("%s does not appear to be a ZFS filesystem", dir)
		}
		rel, _ := h.RelativePath(ds.Name, dir)

		if exists, _ := afero.DirExists(appFs, snapDir.Root(ds.Name, snapName)); !exists {
			return fmt.Errorf("%s has no snapshot called %s", dir, snapName)
		}

		source := snapDir.Path(ds.Name, snapName, rel)
		if exists, _ := afero.DirExists(appFs, source); !exists {
			return fmt.Errorf("no source directory: %s", source)
		}

		res, err := touch.Align(appFs, dir, source, touch.Options{
			Noop:    touchNoop,
			Verbose: touchVerbose,
			Out:     out,
		})
		fmt.Fprintf(out, "%d in live and %d in snapshot, %d changed\n", res.Live, res.Snapshot, res.Changed)
		if err != nil {
			return err
		}
	}

	return nil
}
