// Package locate finds the snapshot copies of a live file
package locate

import (
	"sort"

	"github.com/pders01/zfs-tools/internal/hierarchy"
	"github.com/pders01/zfs-tools/internal/models"
	"github.com/pders01/zfs-tools/internal/selection"
)

// SnapshotStore answers questions about the contents of snapshots
type SnapshotStore interface {
	// Contains reports whether rel exists inside the snapshot
	Contains(dataset, snapshot, rel string) bool
	// Stat returns the metadata of rel inside the snapshot
	Stat(dataset, snapshot, rel string) (models.FileStat, error)
	// Path returns the absolute path of rel inside the snapshot
	Path(dataset, snapshot, rel string) string
}

// Locate returns every snapshot copy of file, newest modification time
// first. Copies with equal modification times keep snapshot creation order.
// A copy that exists but cannot be stat'ed is skipped. Finding nothing is
// not an error; a file outside every mounted dataset is.
func Locate(file string, h *hierarchy.Hierarchy, store SnapshotStore) ([]models.Candidate, error) {
	datasets, err := selection.SelectDatasets(selection.Request{
		Mode: selection.Files,
		Args: []string{file},
	}, h)
	if err != nil {
		return nil, err
	}
	dataset := datasets[0]

	rel, ok := h.RelativePath(dataset, file)
	if !ok {
		return nil, &selection.ReferenceError{Mode: selection.Files, Arg: file}
	}

	var found []models.Candidate
	for _, snap := range h.Snapshots(dataset) {
		if !store.Contains(dataset, snap.Name, rel) {
			continue
		}
		st, err := store.Stat(dataset, snap.Name, rel)
		if err != nil {
			continue
		}
		found = append(found, models.Candidate{
			Snapshot: snap.Name,
			Path:     store.Path(dataset, snap.Name, rel),
			ModTime:  st.ModTime,
			Size:     st.Size,
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].ModTime.After(found[j].ModTime)
	})

	return found, nil
}
