package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pders01/zfs-tools/internal/locate"
	"github.com/pders01/zfs-tools/internal/models"
	"github.com/pders01/zfs-tools/internal/zfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var locateOutput outputFlags

var locateCmd = &cobra.Command{
	Use:   "locate <file>",
	Short: "List the snapshot copies of a file",
	Long: `Find every copy of a file kept in the snapshots of the dataset which
holds it, newest first.

Examples:
  ztools locate /export/home/rob/notes.txt
  ztools locate --json notes.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)

	locateCmd.Flags().BoolVar(&locateOutput.json, "json", false, "Output as JSON")
	locateCmd.Flags().BoolVar(&locateOutput.toon, "toon", false, "Output in LLM-friendly toon format")
}

type locateEntry struct {
	Snapshot string `json:"snapshot"`
	Path     string `json:"path"`
	Modified string `json:"modified"`
	Size     int64  `json:"size"`
}

func runLocate(cmd *cobra.Command, args []string) error {
	file, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}

	candidates, err := findCopies(contextOf(cmd), file)
	if err != nil {
		return err
	}

	entries := make([]locateEntry, len(candidates))
	for i, c := range candidates {
		entries[i] = locateEntry{
			Snapshot: c.Snapshot,
			Path:     c.Path,
			Modified: c.ModTime.Format(candidateTimeLayout),
			Size:     c.Size,
		}
	}

	if done, err := locateOutput.write(entries); done {
		return err
	}

	if len(candidates) == 0 {
		fmt.Fprintln(out, "No matches found.")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(out, "%-20s %s %8s  %s\n", e.Snapshot, e.Modified, humanize.Bytes(uint64(e.Size)), e.Path)
	}
	return nil
}

// findCopies enumerates the pool and returns the snapshot copies of file,
// newest first
func findCopies(ctx context.Context, file string) ([]models.Candidate, error) {
	h, err := loadHierarchy(ctx, newClient(false, false))
	if err != nil {
		return nil, err
	}

	candidates, err := locate.Locate(file, h, zfs.NewSnapshotDir(appFs, h))
	if err != nil {
		return nil, err
	}

	log.Debug("located snapshot copies", zap.String("file", file), zap.Int("copies", len(candidates)))
	return candidates, nil
}
