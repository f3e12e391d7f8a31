package cmd

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/pders01/zfs-tools/internal/models"
	"github.com/pders01/zfs-tools/internal/testutil"
	"github.com/spf13/afero"
)

var (
	nineAM   = time.Date(2024, 10, 28, 9, 0, 0, 0, time.UTC)
	elevenAM = time.Date(2024, 10, 29, 11, 0, 0, 0, time.UTC)
	noon     = time.Date(2024, 10, 30, 12, 0, 0, 0, time.UTC)
)

// copiesFs holds two snapshot copies of /data/notes.txt and the live file
func copiesFs(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	testutil.WriteFile(t, fs, "/data/.zfs/snapshot/monday/notes.txt", "monday", nineAM)
	testutil.WriteFile(t, fs, "/data/.zfs/snapshot/tuesday/notes.txt", "tuesday!", elevenAM)
	testutil.WriteFile(t, fs, "/data/notes.txt", "live", noon)
	return fs
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input string
		want  restoreChoice
		ok    bool
	}{
		{"x", restoreChoice{}, false},
		{"47k", restoreChoice{index: 47, command: "k"}, true},
		{"7\n", restoreChoice{index: 7}, true},
		{"7kd", restoreChoice{}, false},
	}

	for _, tt := range tests {
		got, ok := parseChoice(tt.input)
		if ok != tt.ok {
			t.Errorf("parseChoice(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("parseChoice(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestCandidateLine(t *testing.T) {
	c := models.Candidate{
		Snapshot: "may",
		Path:     "some/path",
		ModTime:  time.Unix(1730563919, 0).UTC(),
		Size:     150679,
	}
	want := " 0 may                  2024-11-02 16:11:59 +0000           150679"
	if got := candidateLine(0, c); got != want {
		t.Errorf("candidateLine = %q, want %q", got, want)
	}
}

func TestBackupFile(t *testing.T) {
	tests := map[string]string{
		"/data/notes.txt": "/data/notes.backup",
		"/data/Makefile":  "/data/Makefile.backup",
	}
	for input, want := range tests {
		if got := backupFile(input); got != want {
			t.Errorf("backupFile(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestLocate(t *testing.T) {
	buf := setup(t, testPool(t), copiesFs(t))
	locateOutput.json = true

	if err := runLocate(nil, []string{"/data/notes.txt"}); err != nil {
		t.Fatalf("locate command failed: %v", err)
	}

	var entries []locateEntry
	if err := json.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 copies, got %d", len(entries))
	}
	if entries[0].Snapshot != "tuesday" || entries[0].Path != "/data/.zfs/snapshot/tuesday/notes.txt" {
		t.Errorf("newest copy = %+v", entries[0])
	}
	if entries[1].Snapshot != "monday" {
		t.Errorf("oldest copy = %+v", entries[1])
	}
}

func TestLocateNothing(t *testing.T) {
	buf := setup(t, testPool(t), copiesFs(t))

	if err := runLocate(nil, []string{"/data/other.txt"}); err != nil {
		t.Fatalf("locate command failed: %v", err)
	}
	if got := buf.String(); got != "No matches found.\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestLocateOutsideDatasets(t *testing.T) {
	setup(t, testPool(t), copiesFs(t))

	if err := runLocate(nil, []string{"/elsewhere/notes.txt"}); err == nil {
		t.Error("expected a path outside every dataset to fail")
	}
}

func TestRecoverAuto(t *testing.T) {
	fs := copiesFs(t)
	pool := testPool(t)
	setup(t, pool, fs)
	recoverAuto = true

	if err := runRecover(nil, []string{"/data/notes.txt"}); err != nil {
		t.Fatalf("recover command failed: %v", err)
	}
	if got := testutil.ReadFile(t, fs, "/data/notes.txt"); got != "tuesday!" {
		t.Errorf("recovered content = %q, want the newest copy", got)
	}
	if calls := pool.Calls(); len(calls) != 0 {
		t.Errorf("recover changed the pool: %v", calls)
	}
}

func TestRecoverChoiceKeepsLiveFile(t *testing.T) {
	fs := copiesFs(t)
	buf := setup(t, testPool(t), fs)
	stdin = bytes.NewBufferString("1k\n")

	if err := runRecover(nil, []string{"/data/notes.txt"}); err != nil {
		t.Fatalf("recover command failed: %v", err)
	}
	if got := testutil.ReadFile(t, fs, "/data/notes.txt"); got != "monday" {
		t.Errorf("recovered content = %q, want monday", got)
	}
	if got := testutil.ReadFile(t, fs, "/data/notes.backup"); got != "live" {
		t.Errorf("backup content = %q, want live", got)
	}
	for _, want := range []string{" 0 tuesday", " 1 monday"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("menu missing %q:\n%s", want, buf.String())
		}
	}
}

func TestRecoverRefusesToOverwriteBackup(t *testing.T) {
	fs := copiesFs(t)
	testutil.WriteFile(t, fs, "/data/notes.backup", "older backup", noon)
	setup(t, testPool(t), fs)
	stdin = bytes.NewBufferString("0k\n")

	if err := runRecover(nil, []string{"/data/notes.txt"}); err == nil {
		t.Fatal("expected recover to refuse an existing backup")
	}
	if got := testutil.ReadFile(t, fs, "/data/notes.txt"); got != "live" {
		t.Errorf("live file changed to %q", got)
	}
	if got := testutil.ReadFile(t, fs, "/data/notes.backup"); got != "older backup" {
		t.Errorf("backup changed to %q", got)
	}
}

func TestRecoverDiff(t *testing.T) {
	fs := copiesFs(t)
	buf := setup(t, testPool(t), fs)
	diff := &recordingRunner{output: []byte("< monday\n---\n> live")}
	diffRunner = diff
	stdin = bytes.NewBufferString("1d\n")

	if err := runRecover(nil, []string{"/data/notes.txt"}); err != nil {
		t.Fatalf("recover command failed: %v", err)
	}

	if diff.name != "/usr/bin/diff" {
		t.Errorf("ran %q, want /usr/bin/diff", diff.name)
	}
	wantArgs := []string{"/data/.zfs/snapshot/monday/notes.txt", "/data/notes.txt"}
	if !slices.Equal(diff.args, wantArgs) {
		t.Errorf("diff args = %v, want %v", diff.args, wantArgs)
	}
	if !strings.Contains(buf.String(), "< monday") {
		t.Errorf("diff output not shown:\n%s", buf.String())
	}
	if got := testutil.ReadFile(t, fs, "/data/notes.txt"); got != "live" {
		t.Errorf("diff changed the live file to %q", got)
	}
}

func TestRecoverUnknownChoice(t *testing.T) {
	fs := copiesFs(t)
	buf := setup(t, testPool(t), fs)
	stdin = bytes.NewBufferString("9\n")

	if err := runRecover(nil, []string{"/data/notes.txt"}); err != nil {
		t.Fatalf("recover command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Cannot find requested item") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if got := testutil.ReadFile(t, fs, "/data/notes.txt"); got != "live" {
		t.Errorf("live file changed to %q", got)
	}
}

func TestRecoverNoop(t *testing.T) {
	fs := copiesFs(t)
	buf := setup(t, testPool(t), fs)
	recoverAuto = true
	recoverNoop = true

	if err := runRecover(nil, []string{"/data/notes.txt"}); err != nil {
		t.Fatalf("recover command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "/data/.zfs/snapshot/tuesday/notes.txt -> /data/notes.txt") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if got := testutil.ReadFile(t, fs, "/data/notes.txt"); got != "live" {
		t.Errorf("noop recover changed the live file to %q", got)
	}
}

func TestRecoverCountsErrors(t *testing.T) {
	setup(t, testPool(t), copiesFs(t))
	recoverAuto = true

	err := runRecover(nil, []string{"/elsewhere/a", "/data/notes.txt"})
	if err == nil {
		t.Fatal("expected recover to report the failed path")
	}
	if err.Error() != "encountered 1 error(s)" {
		t.Errorf("unexpected error: %v", err)
	}
}
