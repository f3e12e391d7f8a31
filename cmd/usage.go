package cmd

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/pders01/zfs-tools/internal/config"
	"github.com/pders01/zfs-tools/internal/models"
	"github.com/spf13/cobra"
)

var usageOutput outputFlags

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show the real space used by datasets and snapshots",
	Long: `List every dataset and snapshot using space, smallest first. Datasets
report the space used by the dataset itself rather than by its children,
so the figures add up.

Examples:
  ztools usage
  ztools usage --json`,
	Args: cobra.NoArgs,
	RunE: runUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.Flags().BoolVar(&usageOutput.json, "json", false, "Output as JSON")
	usageCmd.Flags().BoolVar(&usageOutput.toon, "toon", false, "Output in LLM-friendly toon format")
}

type usageEntry struct {
	Name  string `json:"name"`
	Bytes uint64 `json:"bytes"`
	Size  string `json:"size"`
}

func runUsage(cmd *cobra.Command, args []string) error {
	usage, err := newClient(false, false).Usage(contextOf(cmd))
	if err != nil {
		return err
	}

	usage = filterUsage(usage, config.UsageMinBytes())

	entries := make([]usageEntry, len(usage))
	for i, u := range usage {
		entries[i] = usageEntry{Name: u.Name, Bytes: u.Bytes, Size: humanize.Bytes(u.Bytes)}
	}

	if done, err := usageOutput.write(entries); done {
		return err
	}

	for _, u := range usage {
		fmt.Fprintf(out, "  %6s  %s\n", u.Display, u.Name)
	}
	return nil
}

// filterUsage drops entries below min and sorts the rest by size
func filterUsage(usage []models.Usage, min uint64) []models.Usage {
	kept := make([]models.Usage, 0, len(usage))
	for _, u := range usage {
		if u.Bytes >= min {
			kept = append(kept, u)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Bytes < kept[j].Bytes
	})
	return kept
}
