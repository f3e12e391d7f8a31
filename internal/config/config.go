package config

import (
	"fmt"

	"github.com/pders01/zfs-tools/internal/naming"
	"github.com/spf13/viper"
)

// ZFSBinary returns the path of the zfs command
func ZFSBinary() string {
	return viper.GetString("zfs.binary")
}

// DiffBinary returns the path of the diff command used by recover
func DiffBinary() string {
	return viper.GetString("diff.binary")
}

// LogLevel returns the diagnostics log level
func LogLevel() string {
	return viper.GetString("log.level")
}

// DefaultSnapshotType returns the naming scheme snap uses without -t
func DefaultSnapshotType() string {
	return viper.GetString("snap.default_type")
}

// RogueSchemes returns the naming schemes a snapshot may conform to
func RogueSchemes() ([]naming.Scheme, error) {
	schemes, err := naming.ParseSchemes(viper.GetStringSlice("rogue.schemes"))
	if err != nil {
		return nil, fmt.Errorf("invalid rogue.schemes: %w", err)
	}
	return schemes, nil
}

// RogueIgnorePrefixes returns the dataset subtrees rogue never reports
func RogueIgnorePrefixes() []string {
	return viper.GetStringSlice("rogue.ignore_prefixes")
}

// RogueIgnoreNames returns snapshot names rogue never reports
func RogueIgnoreNames() []string {
	return viper.GetStringSlice("rogue.ignore_names")
}

// UsageMinBytes returns the smallest usage figure worth reporting
func UsageMinBytes() uint64 {
	return viper.GetUint64("usage.min_bytes")
}

// RogueRules assembles the configured rogue detection rules
func RogueRules() (naming.RogueRules, error) {
	schemes, err := RogueSchemes()
	if err != nil {
		return naming.RogueRules{}, err
	}
	return naming.RogueRules{
		Schemes:        schemes,
		IgnoreDatasets: RogueIgnorePrefixes(),
		IgnoreNames:    RogueIgnoreNames(),
	}, nil
}

// Defaults are the settings used when neither the config file nor the
// environment supplies a value
var Defaults = map[string]any{
	"zfs.binary":            "/usr/sbin/zfs",
	"diff.binary":           "/usr/bin/diff",
	"log.level":             "warn",
	"snap.default_type":     "day",
	"rogue.schemes":         []string{"day", "month", "date", "time", "now"},
	"rogue.ignore_prefixes": []string{"rpool/ROOT", "rpool/VARSHARE/zones"},
	"rogue.ignore_names":    []string{"initial"},
	"usage.min_bytes":       1,
}

// SetDefaults registers Defaults with viper
func SetDefaults() {
	for k, v := range Defaults {
		viper.SetDefault(k, v)
	}
}
