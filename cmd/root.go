package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pders01/zfs-tools/internal/config"
	"github.com/pders01/zfs-tools/internal/hierarchy"
	"github.com/pders01/zfs-tools/internal/logger"
	"github.com/pders01/zfs-tools/internal/zfs"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

// Collaborators of every subcommand. Tests swap them for fakes.
var (
	out       io.Writer = os.Stdout
	stdin     io.Reader = os.Stdin
	appFs               = afero.NewOsFs()
	zfsRunner zfs.Runner = zfs.ExecRunner{}
	now                  = time.Now
	log                  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "ztools",
	Short: "Select, snapshot, prune and recover from ZFS datasets",
	Long: `ztools is a family of tools for working with a ZFS pool:
  - take automatically named snapshots
  - bulk-remove snapshots by dataset, file, leaf name or snapshot name
  - find snapshots which do not follow the naming schemes
  - report real space usage
  - find and restore earlier copies of files from snapshots

Every mutating tool accepts -n to print the zfs commands it would run
without running them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger(verboseSet(cmd))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/ztools/config.toml)")
	rootCmd.PersistentFlags().String("log-level", "", "diagnostics level: none, debug, info, warn or error")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(configDir(home))
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("ztools")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults()

	if err := viper.ReadInConfig(); err == nil {
		log.Debug("using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}

func configDir(home string) string {
	return filepath.Join(home, ".config", "ztools")
}

// setupLogger builds the diagnostics logger. -v forces debug level.
func setupLogger(verbose bool) error {
	level := config.LogLevel()
	if verbose {
		level = logger.LevelDebug
	}
	l, err := logger.GetLogger(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log = l
	return nil
}

func verboseSet(cmd *cobra.Command) bool {
	f := cmd.Flags().Lookup("verbose")
	return f != nil && f.Value.String() == "true"
}

// newClient returns a zfs client honouring the given no-op and verbose
// settings
func newClient(noop, verbose bool) *zfs.Client {
	return zfs.New(zfs.Options{
		Binary:  config.ZFSBinary(),
		Runner:  zfsRunner,
		Noop:    noop,
		Verbose: verbose,
		Out:     out,
		Logger:  log,
	})
}

// loadHierarchy enumerates the pool once
func loadHierarchy(ctx context.Context, client *zfs.Client) (*hierarchy.Hierarchy, error) {
	h, err := client.Hierarchy(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read pool: %w", err)
	}
	return h, nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
