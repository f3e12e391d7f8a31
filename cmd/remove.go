package cmd

import (
	"fmt"

	"github.com/pders01/zfs-tools/internal/selection"
	"github.com/spf13/cobra"
)

var (
	removeSelect  selectionFlags
	removeNoop    bool
	removeVerbose bool
)

var removeCmd = &cobra.Command{
	Use:   "remove [flags] <dataset|file|name>...",
	Short: "Bulk-remove ZFS snapshots",
	Long: `Remove snapshots chosen by dataset, file, leaf dataset name or
snapshot name.

By default arguments are dataset names and every snapshot of each dataset
is removed. -f treats arguments as files, -a as leaf dataset names matched
in every pool, and -s as snapshot names matched in every dataset.

Examples:
  ztools remove -n tank/scratch              # show what would go
  ztools remove -r -O 'monday,tuesday' tank   # keep two weekdays
  ztools remove -a -r build                  # every .../build tree
  ztools remove -s 2024-01-01                # that snapshot, everywhere`,
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)

	removeSelect.register(removeCmd.Flags(), true, true)
	removeCmd.Flags().BoolVarP(&removeNoop, "noop", "n", false, "Print what would happen, without doing it")
	removeCmd.Flags().BoolVarP(&removeVerbose, "verbose", "v", false, "Be verbose")
}

func runRemove(cmd *cobra.Command, args []string) error {
	req, err := removeSelect.request(args)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx := contextOf(cmd)
	client := newClient(removeNoop, removeVerbose)

	h, err := loadHierarchy(ctx, client)
	if err != nil {
		return err
	}

	targets, err := selection.Select(req, h)
	if err != nil {
		return err
	}

	if targets.Empty() {
		fmt.Fprintln(out, "No snapshots to remove")
		return nil
	}

	for _, s := range targets {
		if err := client.Destroy(ctx, s.Dataset, s.Name); err != nil {
			return fmt.Errorf("failed to remove snapshots: %w", err)
		}
	}

	if removeVerbose && !removeNoop {
		fmt.Fprintf(out, "Removed %d snapshot(s)\n", len(targets))
	}
	return nil
}
