package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pders01/zfs-tools/internal/selection"
	"github.com/spf13/cobra"
)

var (
	listSelect selectionFlags
	listOutput outputFlags
)

var listCmd = &cobra.Command{
	Use:   "list [flags] <dataset|file|name>...",
	Short: "Show which snapshots a selection picks",
	Long: `Resolve a selection exactly as remove would, and print the result
without touching anything.

Examples:
  ztools list -r tank
  ztools list -a '*log*'
  ztools list -s monday --json
  ztools list -f /export/home/rob --toon`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listSelect.register(listCmd.Flags(), true, true)
	listCmd.Flags().BoolVar(&listOutput.json, "json", false, "Output as JSON")
	listCmd.Flags().BoolVar(&listOutput.toon, "toon", false, "Output in LLM-friendly toon format")
}

type listEntry struct {
	Snapshot string `json:"snapshot"`
	Dataset  string `json:"dataset"`
	Name     string `json:"name"`
	Created  string `json:"created"`
	Used     uint64 `json:"used"`
}

func runList(cmd *cobra.Command, args []string) error {
	req, err := listSelect.request(args)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx := contextOf(cmd)
	h, err := loadHierarchy(ctx, newClient(false, false))
	if err != nil {
		return err
	}

	targets, err := selection.Select(req, h)
	if err != nil {
		return err
	}

	entries := make([]listEntry, 0, len(targets))
	for _, s := range targets {
		entries = append(entries, listEntry{
			Snapshot: s.FullName(),
			Dataset:  s.Dataset,
			Name:     s.Name,
			Created:  s.Created.Format("2006-01-02 15:04:05"),
			Used:     s.Used,
		})
	}

	if done, err := listOutput.write(entries); done {
		return err
	}

	if targets.Empty() {
		fmt.Fprintln(out, "No snapshots selected")
		return nil
	}

	fmt.Fprintf(out, "Selected %d snapshot(s) in %d dataset(s):\n\n", len(targets), len(targets.Datasets()))
	for _, e := range entries {
		fmt.Fprintf(out, "  %-50s %s  %s\n", e.Snapshot, e.Created, humanize.Bytes(e.Used))
	}
	return nil
}
