package zfs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pders01/zfs-tools/internal/hierarchy"
	"github.com/pders01/zfs-tools/internal/models"
	"github.com/spf13/afero"
)

// SnapshotRoot is where zfs exposes snapshots below a mount point
const SnapshotRoot = ".zfs/snapshot"

// SnapshotDir reads snapshot contents through the .zfs/snapshot directory
// of each mounted dataset
type SnapshotDir struct {
	fs afero.Fs
	h  *hierarchy.Hierarchy
}

// NewSnapshotDir returns a SnapshotDir over fs
func NewSnapshotDir(fs afero.Fs, h *hierarchy.Hierarchy) *SnapshotDir {
	return &SnapshotDir{fs: fs, h: h}
}

// Root returns the top directory of a snapshot
func (s *SnapshotDir) Root(dataset, snapshot string) string {
	d, _ := s.h.Get(dataset)
	return filepath.Join(d.MountPoint, SnapshotRoot, snapshot)
}

// Path returns the location of rel inside a snapshot
func (s *SnapshotDir) Path(dataset, snapshot, rel string) string {
	return filepath.Join(s.Root(dataset, snapshot), rel)
}

// Contains reports whether rel exists inside a snapshot
func (s *SnapshotDir) Contains(dataset, snapshot, rel string) bool {
	if _, ok := s.h.MountPoint(dataset); !ok {
		return false
	}
	exists, err := afero.Exists(s.fs, s.Path(dataset, snapshot, rel))
	return err == nil && exists
}

// Stat returns the modification time and size of rel inside a snapshot
func (s *SnapshotDir) Stat(dataset, snapshot, rel string) (models.FileStat, error) {
	info, err := s.fs.Stat(s.Path(dataset, snapshot, rel))
	if err != nil {
		return models.FileStat{}, fmt.Errorf("failed to stat %s in %s: %w", rel, models.SnapshotName(dataset, snapshot), err)
	}
	return models.FileStat{ModTime: info.ModTime(), Size: info.Size()}, nil
}

// InSnapshot reports whether file lies inside a .zfs/snapshot/<name>
// directory
func InSnapshot(file string) bool {
	parts := splitPath(file)
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == ".zfs" && parts[i+1] == "snapshot" {
			return true
		}
	}
	return false
}

// LiveTarget maps a path inside a snapshot onto the live file it is a copy
// of, by dropping the .zfs/snapshot/<name> components
func LiveTarget(file string) (string, bool) {
	parts := splitPath(file)
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == ".zfs" && parts[i+1] == "snapshot" {
			kept := append(append([]string{}, parts[:i]...), parts[i+3:]...)
			target := filepath.Join(kept...)
			if filepath.IsAbs(file) {
				target = string(filepath.Separator) + target
			}
			return target, true
		}
	}
	return "", false
}

func splitPath(file string) []string {
	var parts []string
	for _, p := range strings.Split(filepath.ToSlash(filepath.Clean(file)), "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
