package zfs

import (
	"testing"
	"time"

	"github.com/pders01/zfs-tools/internal/hierarchy"
	"github.com/pders01/zfs-tools/internal/models"
	"github.com/pders01/zfs-tools/internal/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	mtime := time.Date(2024, 11, 2, 16, 11, 59, 0, time.UTC)
	testutil.WriteFile(t, fs, "/data/.zfs/snapshot/monday/file_in_both", "monday", mtime)
	testutil.WriteFile(t, fs, "/data/.zfs/snapshot/tuesday/file_in_both", "tuesday", mtime)
	testutil.WriteFile(t, fs, "/data/.zfs/snapshot/monday/file_in_monday", "x", mtime)

	h := hierarchy.New([]models.Dataset{
		{Name: "tank/data", MountPoint: "/data"},
		{Name: "tank/vol", MountPoint: "-"},
	})
	sd := NewSnapshotDir(fs, h)

	assert.Equal(t, "/data/.zfs/snapshot/monday", sd.Root("tank/data", "monday"))
	assert.True(t, sd.Contains("tank/data", "monday", "file_in_both"))
	assert.True(t, sd.Contains("tank/data", "tuesday", "file_in_both"))
	assert.False(t, sd.Contains("tank/data", "tuesday", "file_in_monday"))
	assert.False(t, sd.Contains("tank/vol", "monday", "file_in_both"))
	assert.False(t, sd.Contains("nope", "monday", "file_in_both"))

	st, err := sd.Stat("tank/data", "tuesday", "file_in_both")
	require.NoError(t, err)
	assert.Equal(t, int64(7), st.Size)
	assert.True(t, st.ModTime.Equal(mtime))

	_, err = sd.Stat("tank/data", "tuesday", "file_in_monday")
	assert.Error(t, err)
}

func TestInSnapshot(t *testing.T) {
	assert.True(t, InSnapshot("/test/.zfs/snapshot/monday/d"))
	assert.False(t, InSnapshot("/build/dir"))
	assert.False(t, InSnapshot("/test/snapshot/dir"))
	assert.False(t, InSnapshot("/test/.zfs/snapshot"))
}

func TestLiveTarget(t *testing.T) {
	got, ok := LiveTarget("/test/.zfs/snapshot/monday/dir/file")
	require.True(t, ok)
	assert.Equal(t, "/test/dir/file", got)

	got, ok = LiveTarget("/test/u01/u02/mtpt/.zfs/snapshot/test/deep/dir/file")
	require.True(t, ok)
	assert.Equal(t, "/test/u01/u02/mtpt/deep/dir/file", got)

	_, ok = LiveTarget("/build/dir/file")
	assert.False(t, ok)
}
