// Package hierarchy holds a read-only view of the dataset tree as reported
// by a single enumeration of the volume manager. Datasets are stored in a
// flat map keyed by name; parent/child relationships are derived from the
// names themselves.
package hierarchy

import (
	"path"
	"sort"
	"strings"

	"github.com/pders01/zfs-tools/internal/models"
)

// Hierarchy is the dataset tree of one enumeration
type Hierarchy struct {
	datasets map[string]models.Dataset
	children map[string][]string
	names    []string
}

// New builds a Hierarchy from a flat listing. Later duplicates of a name
// replace earlier ones. Snapshots of each dataset are kept in creation
// order.
func New(datasets []models.Dataset) *Hierarchy {
	h := &Hierarchy{
		datasets: make(map[string]models.Dataset, len(datasets)),
		children: make(map[string][]string),
	}

	for _, d := range datasets {
		snaps := append([]models.Snapshot(nil), d.Snapshots...)
		sort.SliceStable(snaps, func(i, j int) bool {
			return snaps[i].Created.Before(snaps[j].Created)
		})
		for i := range snaps {
			snaps[i].Dataset = d.Name
		}
		d.Snapshots = snaps
		h.datasets[d.Name] = d
	}

	for name := range h.datasets {
		h.names = append(h.names, name)
	}
	sort.Strings(h.names)

	for _, name := range h.names {
		parent := models.ParentName(name)
		if parent == "" {
			continue
		}
		h.children[parent] = append(h.children[parent], name)
	}

	return h
}

// Len returns the number of datasets
func (h *Hierarchy) Len() int {
	return len(h.names)
}

// Has reports whether name is a known dataset
func (h *Hierarchy) Has(name string) bool {
	_, ok := h.datasets[name]
	return ok
}

// Get returns the named dataset
func (h *Hierarchy) Get(name string) (models.Dataset, bool) {
	d, ok := h.datasets[name]
	return d, ok
}

// MountPoint returns where the named dataset is mounted. ok is false for
// unknown and unmounted datasets.
func (h *Hierarchy) MountPoint(name string) (mountPoint string, ok bool) {
	d, found := h.datasets[name]
	if !found || !d.Mounted() {
		return "", false
	}
	return d.MountPoint, true
}

// Names returns every dataset name in ascending order
func (h *Hierarchy) Names() []string {
	return append([]string(nil), h.names...)
}

// Datasets returns every dataset in ascending name order
func (h *Hierarchy) Datasets() []models.Dataset {
	return h.lookup(h.names)
}

// Snapshots returns the snapshots of the named dataset in creation order
func (h *Hierarchy) Snapshots(name string) []models.Snapshot {
	return h.datasets[name].Snapshots
}

// HasSnapshot reports whether dataset has a snapshot called snapshot
func (h *Hierarchy) HasSnapshot(dataset, snapshot string) bool {
	for _, s := range h.datasets[dataset].Snapshots {
		if s.Name == snapshot {
			return true
		}
	}
	return false
}

// Children returns the direct children of name, in name order
func (h *Hierarchy) Children(name string) []models.Dataset {
	return h.lookup(h.children[name])
}

// Descendants returns every dataset below name, depth first, with siblings
// visited in name order. name itself is not included.
func (h *Hierarchy) Descendants(name string) []models.Dataset {
	var out []models.Dataset
	var walk func(string)
	walk = func(n string) {
		for _, c := range h.children[n] {
			out = append(out, h.datasets[c])
			walk(c)
		}
	}
	walk(name)
	return out
}

// DatasetForPath returns the dataset whose mount point is the longest
// prefix of file. Prefixes are compared a path component at a time, so
// /build does not own /buildx. Unmounted datasets never match.
func (h *Hierarchy) DatasetForPath(file string) (models.Dataset, bool) {
	file = path.Clean(file)

	var best models.Dataset
	found := false
	for _, name := range h.names {
		d := h.datasets[name]
		if !d.Mounted() || !underMount(file, d.MountPoint) {
			continue
		}
		if !found || len(path.Clean(d.MountPoint)) > len(path.Clean(best.MountPoint)) {
			best = d
			found = true
		}
	}
	return best, found
}

// RelativePath returns file relative to the mount point of dataset
func (h *Hierarchy) RelativePath(dataset, file string) (string, bool) {
	d, ok := h.datasets[dataset]
	if !ok || !d.Mounted() {
		return "", false
	}
	file = path.Clean(file)
	mnt := path.Clean(d.MountPoint)
	if !underMount(file, mnt) {
		return "", false
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(file, mnt), "/")
	if rel == "" {
		rel = "."
	}
	return rel, true
}

func (h *Hierarchy) lookup(names []string) []models.Dataset {
	out := make([]models.Dataset, 0, len(names))
	for _, n := range names {
		out = append(out, h.datasets[n])
	}
	return out
}

func underMount(file, mountPoint string) bool {
	mnt := path.Clean(mountPoint)
	if mnt == "/" {
		return strings.HasPrefix(file, "/")
	}
	return file == mnt || strings.HasPrefix(file, mnt+"/")
}
