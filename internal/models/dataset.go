package models

import "strings"

// Mount point values zfs reports for datasets which are not mounted
const (
	MountNone   = "none"
	MountLegacy = "legacy"
)

// Dataset is a filesystem or volume in the pool hierarchy
type Dataset struct {
	Name       string     `json:"name"`
	MountPoint string     `json:"mountpoint,omitempty"`
	Snapshots  []Snapshot `json:"snapshots,omitempty"`
}

// Leaf returns the final component of the dataset name
func (d Dataset) Leaf() string {
	return LeafName(d.Name)
}

// Mounted reports whether the dataset has a usable mount point
func (d Dataset) Mounted() bool {
	switch d.MountPoint {
	case "", "-", MountNone, MountLegacy:
		return false
	}
	return strings.HasPrefix(d.MountPoint, "/")
}

// LeafName returns the part of a dataset name after the last '/'
func LeafName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// ParentName returns the name of the parent dataset, or "" for a pool root
func ParentName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[:i]
	}
	return ""
}
