package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/pders01/zfs-tools/internal/copier"
	"github.com/pders01/zfs-tools/internal/zfs"
	"github.com/spf13/cobra"
)

var (
	promoteNoClobber bool
	promoteNoop      bool
	promoteVerbose   bool
)

var promoteCmd = &cobra.Command{
	Use:   "promote [flags] <snapshot-file>...",
	Short: "Copy files out of a snapshot to their live location",
	Long: `Copy files or directories from inside a .zfs/snapshot/<name> directory
back to the same place in the live filesystem. Existing live files are
overwritten unless -N is given.

Example:
  cd /export/home/.zfs/snapshot/monday/rob
  ztools promote notes.txt src`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPromote,
}

func init() {
	rootCmd.AddCommand(promoteCmd)

	promoteCmd.Flags().BoolVarP(&promoteNoClobber, "noclobber", "N", false, "Do not overwrite existing live files")
	promoteCmd.Flags().BoolVarP(&promoteNoop, "noop", "n", false, "Print what would happen, without doing it")
	promoteCmd.Flags().BoolVarP(&promoteVerbose, "verbose", "v", false, "Be verbose")
}

func runPromote(cmd *cobra.Command, args []string) error {
	cp := copier.New(appFs, copier.Options{
		NoClobber: promoteNoClobber,
		Noop:      promoteNoop,
		Verbose:   promoteVerbose,
		Out:       out,
	})

	errs := 0
	for _, arg := range args {
		if err := promoteFile(cp, arg); err != nil {
			fmt.Fprintln(out, err)
			errs++
		}
	}

	if errs > 0 {
		return fmt.Errorf("encountered %d error(s)", errs)
	}
	return nil
}

func promoteFile(cp *copier.Copier, arg string) error {
	file, err := filepath.Abs(arg)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", arg, err)
	}

	if !zfs.InSnapshot(file) {
		return fmt.Errorf("%s is not inside a ZFS snapshot", file)
	}

	target, ok := zfs.LiveTarget(file)
	if !ok {
		return fmt.Errorf("could not find target for %s", file)
	}

	if err := cp.MkdirAll(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(target), err)
	}

	if err := cp.Copy(file, target); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", file, target, err)
	}
	return nil
}
