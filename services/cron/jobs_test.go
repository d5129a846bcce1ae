package cron

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDir(t *testing.T, root, name string, modTime time.Time) string {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "upload.pdf"), []byte("%PDF-"), 0o600))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
	return path
}

func TestSweepScratchDir(t *testing.T) {
	root := t.TempDir()
	now := time.Now()

	stale := makeDir(t, root, "pdfx-1a2b3c4d-111", now.Add(-2*time.Hour))
	fresh := makeDir(t, root, "pdfx-5e6f7a8b-222", now.Add(-time.Minute))
	foreign := makeDir(t, root, "other-tool-333", now.Add(-48*time.Hour))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pdfx-file"), nil, 0o600))

	removed, err := SweepScratchDir(root, 30*time.Minute, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoDirExists(t, stale)
	assert.DirExists(t, fresh)
	assert.DirExists(t, foreign)
	assert.FileExists(t, filepath.Join(root, "pdfx-file"))
}

func TestSweepScratchDirMissingRoot(t *testing.T) {
	removed, err := SweepScratchDir(filepath.Join(t.TempDir(), "gone"), time.Minute, time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestNewCronManagerDefaults(t *testing.T) {
	m := NewCronManager(nil, Config{ScratchRoot: t.TempDir(), ScratchMaxAge: time.Minute})
	assert.Equal(t, ScheduleScratchSweep, m.config.SweepSchedule)
	assert.Equal(t, ScheduleLogRetention, m.config.PurgeSchedule)

	require.NoError(t, m.Start())
	assert.Len(t, m.cron.Entries(), 1)
	m.Stop()
}

func TestNewCronManagerRejectsBadSchedule(t *testing.T) {
	m := NewCronManager(nil, Config{SweepSchedule: "not a schedule"})
	assert.Error(t, m.Start())
}

func TestSweepScratchWithoutDatabase(t *testing.T) {
	root := t.TempDir()
	stale := makeDir(t, root, "pdfx-deadbeef-1", time.Now().Add(-time.Hour))

	m := NewCronManager(nil, Config{ScratchRoot: root, ScratchMaxAge: time.Minute})
	m.SweepScratch()

	assert.NoDirExists(t, stale)
}
