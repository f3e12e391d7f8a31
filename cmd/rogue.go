package cmd

import (
	"fmt"

	"github.com/pders01/zfs-tools/internal/config"
	"github.com/pders01/zfs-tools/internal/naming"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rogueOutput outputFlags

var rogueCmd = &cobra.Command{
	Use:   "rogue",
	Short: "List snapshots which do not follow the naming schemes",
	Long: `List every snapshot whose name fits none of the configured naming
schemes. Such snapshots were usually taken by hand and forgotten.

Dataset subtrees and snapshot names can be excluded in the config file:
  [rogue]
  schemes = ["day", "month", "time"]
  ignore_prefixes = ["rpool/ROOT", "rpool/VARSHARE/zones"]
  ignore_names = ["initial"]

Examples:
  ztools rogue
  ztools rogue --toon`,
	Args: cobra.NoArgs,
	RunE: runRogue,
}

func init() {
	rootCmd.AddCommand(rogueCmd)

	rogueCmd.Flags().BoolVar(&rogueOutput.json, "json", false, "Output as JSON")
	rogueCmd.Flags().BoolVar(&rogueOutput.toon, "toon", false, "Output in LLM-friendly toon format")
}

func runRogue(cmd *cobra.Command, args []string) error {
	rules, err := config.RogueRules()
	if err != nil {
		return err
	}

	snapshots, err := newClient(false, false).AllSnapshots(contextOf(cmd))
	if err != nil {
		return err
	}

	rogues := naming.FindRogues(snapshots, rules)
	log.Debug("checked snapshot names",
		zap.Int("snapshots", len(snapshots)),
		zap.Int("rogues", len(rogues)))

	names := make([]string, len(rogues))
	for i, s := range rogues {
		names[i] = s.FullName()
	}

	if done, err := rogueOutput.write(names); done {
		return err
	}

	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}
