package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pders01/zfs-tools/internal/config"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// homeDir locates the directory holding .config/ztools
var homeDir = os.UserHomeDir

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long: `Create $HOME/.config/ztools/config.toml holding the default settings,
ready for editing. An existing file is left alone.

Every setting can also be given in the environment, e.g.
  ZTOOLS_ZFS_BINARY=/sbin/zfs`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	home, err := homeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := configDir(home)
	configPath := filepath.Join(dir, "config.toml")

	exists, err := afero.Exists(appFs, configPath)
	if err != nil {
		return fmt.Errorf("failed to check config file: %w", err)
	}
	if exists {
		fmt.Fprintf(out, "Config already exists: %s\n", configPath)
		return nil
	}

	content, err := defaultConfig()
	if err != nil {
		return err
	}

	if err := appFs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(appFs, configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Fprintf(out, "✓ Created default config: %s\n", configPath)
	return nil
}

// defaultConfig renders config.Defaults as TOML, one table per key prefix
func defaultConfig() ([]byte, error) {
	tables := make(map[string]map[string]any)
	for key, value := range config.Defaults {
		table, name, _ := strings.Cut(key, ".")
		if tables[table] == nil {
			tables[table] = make(map[string]any)
		}
		tables[table][name] = value
	}

	content, err := toml.Marshal(tables)
	if err != nil {
		return nil, fmt.Errorf("failed to render default config: %w", err)
	}
	return content, nil
}
