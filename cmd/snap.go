package cmd

import (
	"fmt"

	"github.com/pders01/zfs-tools/internal/config"
	"github.com/pders01/zfs-tools/internal/models"
	"github.com/pders01/zfs-tools/internal/naming"
	"github.com/pders01/zfs-tools/internal/selection"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	snapType    string
	snapSelect  selectionFlags
	snapNoop    bool
	snapVerbose bool
)

var snapCmd = &cobra.Command{
	Use:   "snap [flags] [dataset|file]...",
	Short: "Take automatically named ZFS snapshots",
	Long: `Take snapshots named after the current time. The type determines the
name:
  day    @wednesday
  month  @january
  date   @2008-01-30
  time   @08:45
  now    @2008-01-30_08:45:00

An existing snapshot with the same name is destroyed first, so a daily
snapshot always holds the most recent state for that day. With no
arguments every dataset is snapshotted.

Examples:
  ztools snap -t day
  ztools snap -t time -r -o 'rpool/swap,rpool/dump' rpool
  ztools snap -t now -f /export/home/rob`,
	RunE: runSnap,
}

func init() {
	rootCmd.AddCommand(snapCmd)

	snapCmd.Flags().StringVarP(&snapType, "type", "t", "", "Snapshot type: day, month, date, time or now (default from config)")
	snapSelect.register(snapCmd.Flags(), false, false)
	snapCmd.Flags().BoolVarP(&snapNoop, "noop", "n", false, "Print what would happen, without doing it")
	snapCmd.Flags().BoolVarP(&snapVerbose, "verbose", "v", false, "Be verbose")
}

func runSnap(cmd *cobra.Command, args []string) error {
	kind := snapType
	if kind == "" {
		kind = config.DefaultSnapshotType()
	}
	scheme, err := naming.ParseScheme(kind)
	if err != nil {
		return err
	}

	req, err := snapSelect.request(args)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	name, err := naming.Name(scheme, now())
	if err != nil {
		return err
	}

	ctx := contextOf(cmd)
	client := newClient(snapNoop, snapVerbose)

	h, err := loadHierarchy(ctx, client)
	if err != nil {
		return err
	}

	datasets, err := selection.SelectDatasets(req, h)
	if err != nil {
		return err
	}

	if len(datasets) == 0 {
		fmt.Fprintln(out, "No datasets to snapshot")
		return nil
	}

	errs := 0
	for _, ds := range datasets {
		fmt.Fprintf(out, "Snapshotting %s\n", models.SnapshotName(ds, name))

		if h.HasSnapshot(ds, name) {
			if err := client.Destroy(ctx, ds, name); err != nil {
				log.Warn("failed to destroy existing snapshot", zap.String("dataset", ds), zap.Error(err))
				fmt.Fprintf(out, "Failed to destroy existing %s\n", models.SnapshotName(ds, name))
				errs++
				continue
			}
		}

		if err := client.Create(ctx, ds, name); err != nil {
			log.Warn("failed to create snapshot", zap.String("dataset", ds), zap.Error(err))
			fmt.Fprintf(out, "Failed to create %s\n", models.SnapshotName(ds, name))
			errs++
		}
	}

	if errs > 0 {
		return fmt.Errorf("%d snapshot(s) were not created", errs)
	}
	return nil
}
