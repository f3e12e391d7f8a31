package models

import (
	"fmt"
	"strings"
	"time"
)

// Snapshot represents a point-in-time copy of a dataset
type Snapshot struct {
	Dataset string    `json:"dataset"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
	Used    uint64    `json:"used"`
}

// FullName renders the snapshot the way zfs addresses it
// Format: dataset@name
func (s Snapshot) FullName() string {
	return SnapshotName(s.Dataset, s.Name)
}

// SnapshotName joins a dataset and snapshot name
func SnapshotName(dataset, snapshot string) string {
	return fmt.Sprintf("%s@%s", dataset, snapshot)
}

// SplitSnapshotName splits dataset@name. ok is false if there is no '@'.
func SplitSnapshotName(full string) (dataset, snapshot string, ok bool) {
	return strings.Cut(full, "@")
}
