package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pders01/zfs-tools/internal/config"
	"github.com/pders01/zfs-tools/internal/testutil"
	"github.com/pders01/zfs-tools/internal/zfs"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// wednesday is the clock every command test runs at
var wednesday = time.Date(2024, 10, 30, 10, 0, 0, 0, time.UTC)

// testPool is a small pool with a mounted dataset at /data
func testPool(t *testing.T) *testutil.FakeZFS {
	return testutil.NewFakeZFS(t).
		AddDataset("rpool", "/rpool").
		AddDataset("rpool/logs", "/rpool/logs").
		AddDataset("rpool/logstash", "/rpool/logstash").
		AddDataset("tank", "/tank").
		AddDataset("tank/data", "/data").
		AddSnapshot("rpool@monday", 100).
		AddSnapshot("rpool@tuesday", 200).
		AddSnapshot("rpool/logs@monday", 300).
		AddSnapshot("rpool/logstash@monday", 400).
		AddSnapshot("tank@monday", 500).
		AddSnapshot("tank/data@monday", 600).
		AddSnapshot("tank/data@tuesday", 700).
		AddSnapshot("rpool@wednesday", 800)
}

// setup points every collaborator at fakes and resets flags. It returns
// the buffer standing in for stdout.
func setup(t *testing.T, pool *testutil.FakeZFS, fs afero.Fs) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	oldOut, oldStdin, oldFs, oldRunner, oldNow, oldDiff, oldHome := out, stdin, appFs, zfsRunner, now, diffRunner, homeDir

	out = &buf
	stdin = &bytes.Buffer{}
	appFs = fs
	zfsRunner = pool
	now = func() time.Time { return wednesday }
	log = zap.NewNop()

	viper.Reset()
	config.SetDefaults()

	removeSelect.reset()
	removeNoop, removeVerbose = false, false
	snapSelect.reset()
	snapType, snapNoop, snapVerbose = "", false, false
	listSelect.reset()
	listOutput, usageOutput, rogueOutput, locateOutput = outputFlags{}, outputFlags{}, outputFlags{}, outputFlags{}
	recoverAuto, recoverNoClobber, recoverNoop, recoverVerbose = false, false, false, false
	promoteNoClobber, promoteNoop, promoteVerbose = false, false, false
	touchSnapName, touchNoop, touchVerbose = "", false, false

	t.Cleanup(func() {
		out, stdin, appFs, zfsRunner, now, diffRunner, homeDir = oldOut, oldStdin, oldFs, oldRunner, oldNow, oldDiff, oldHome
		viper.Reset()
	})

	return &buf
}

// recordingRunner remembers the last command it was asked to run
type recordingRunner struct {
	name   string
	args   []string
	output []byte
	err    error
}

func (r *recordingRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.name = name
	r.args = args
	return r.output, r.err
}

var _ zfs.Runner = (*recordingRunner)(nil)
