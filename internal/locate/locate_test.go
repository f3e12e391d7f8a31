package locate

import (
	"errors"
	"path"
	"testing"
	"time"

	"github.com/pders01/zfs-tools/internal/hierarchy"
	"github.com/pders01/zfs-tools/internal/models"
	"github.com/pders01/zfs-tools/internal/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore maps "snapshot/rel" to file metadata
type fakeStore struct {
	files  map[string]models.FileStat
	broken map[string]bool
}

func (f fakeStore) key(snapshot, rel string) string {
	return snapshot + "/" + rel
}

func (f fakeStore) Contains(dataset, snapshot, rel string) bool {
	_, ok := f.files[f.key(snapshot, rel)]
	return ok
}

func (f fakeStore) Stat(dataset, snapshot, rel string) (models.FileStat, error) {
	if f.broken[f.key(snapshot, rel)] {
		return models.FileStat{}, errors.New("permission denied")
	}
	return f.files[f.key(snapshot, rel)], nil
}

func (f fakeStore) Path(dataset, snapshot, rel string) string {
	return path.Join("/data/.zfs/snapshot", snapshot, rel)
}

var day = time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC)

func testTree() *hierarchy.Hierarchy {
	return hierarchy.New([]models.Dataset{
		{Name: "tank", MountPoint: "/tank"},
		{Name: "tank/data", MountPoint: "/data", Snapshots: []models.Snapshot{
			{Name: "monday", Created: day},
			{Name: "tuesday", Created: day.Add(24 * time.Hour)},
			{Name: "wednesday", Created: day.Add(48 * time.Hour)},
			{Name: "thursday", Created: day.Add(72 * time.Hour)},
		}},
	})
}

func TestLocateOrdersByModificationTime(t *testing.T) {
	store := fakeStore{files: map[string]models.FileStat{
		"monday/dir/file":    {ModTime: day.Add(9 * time.Hour), Size: 10},
		"tuesday/dir/file":   {ModTime: day.Add(11 * time.Hour), Size: 11},
		"wednesday/dir/file": {ModTime: day.Add(10 * time.Hour), Size: 12},
	}}

	got, err := Locate("/data/dir/file", testTree(), store)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "tuesday", got[0].Snapshot)
	assert.Equal(t, "wednesday", got[1].Snapshot)
	assert.Equal(t, "monday", got[2].Snapshot)
	assert.Equal(t, "/data/.zfs/snapshot/tuesday/dir/file", got[0].Path)
	assert.Equal(t, int64(11), got[0].Size)
}

func TestLocateTiesKeepCreationOrder(t *testing.T) {
	same := models.FileStat{ModTime: day, Size: 1}
	store := fakeStore{files: map[string]models.FileStat{
		"thursday/f": same,
		"monday/f":   same,
		"tuesday/f":  same,
	}}

	got, err := Locate("/data/f", testTree(), store)
	require.NoError(t, err)

	var snaps []string
	for _, c := range got {
		snaps = append(snaps, c.Snapshot)
	}
	assert.Equal(t, []string{"monday", "tuesday", "thursday"}, snaps)
}

func TestLocateSkipsUnreadableCopies(t *testing.T) {
	store := fakeStore{
		files: map[string]models.FileStat{
			"monday/f":  {ModTime: day},
			"tuesday/f": {ModTime: day},
		},
		broken: map[string]bool{"tuesday/f": true},
	}

	got, err := Locate("/data/f", testTree(), store)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "monday", got[0].Snapshot)
}

func TestLocateNothingFound(t *testing.T) {
	got, err := Locate("/data/file_in_neither", testTree(), fakeStore{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLocateOutsideAnyDataset(t *testing.T) {
	_, err := Locate("/etc/passwd", testTree(), fakeStore{})
	require.ErrorIs(t, err, selection.ErrAmbiguousReference)
}
