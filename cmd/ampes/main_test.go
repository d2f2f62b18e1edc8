package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ampes-dev/ampes/internal/config"
	"github.com/ampes-dev/ampes/internal/db"
	"github.com/ampes-dev/ampes/internal/fsutil"
	"github.com/ampes-dev/ampes/internal/monitoring"
	"github.com/ampes-dev/ampes/internal/security"
	"github.com/ampes-dev/ampes/internal/testutil"
	"github.com/ampes-dev/ampes/internal/timeutil"
)

func init() {
	monitoring.SetLogger(nil)
}

func TestFindGCode(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()

	_, err := findGCode(fs, ".", "")
	assert.True(t, errors.Is(err, errNoGCode))

	fs.WriteFile("b.gcode", []byte("G1 X0"))
	fs.WriteFile("a.gcode", []byte("G1 X0"))
	fs.WriteFile("notes.txt", nil)

	got, err := findGCode(fs, ".", "")
	require.NoError(t, err)
	assert.Equal(t, "a.gcode", got)

	got, err = findGCode(fs, ".", "b.gcode")
	require.NoError(t, err)
	assert.Equal(t, "b.gcode", got)

	_, err = findGCode(fs, ".", "notes.txt")
	assert.True(t, errors.Is(err, errNoGCode))

	_, err = findGCode(fs, ".", "missing.gcode")
	assert.True(t, errors.Is(err, errNoGCode))
}

func writeInputs(t *testing.T, cfg string) (dir string, o options) {
	t.Helper()
	dir = t.TempDir()
	gcode := filepath.Join(dir, "part.gcode")
	require.NoError(t, os.WriteFile(gcode, []byte(testutil.SquareTower(4, 10, 0.25)), 0644))
	cfgPath := filepath.Join(dir, "input.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))
	return dir, options{
		gcode:  gcode,
		config: cfgPath,
		outDir: filepath.Join(dir, "out"),
		base:   "part",
		seed:   -1,
	}
}

func TestRun_AllOutputs(t *testing.T) {
	dir, o := writeInputs(t, testutil.GroupedYAML)
	o.png = true
	o.html = true
	o.dbPath = filepath.Join(dir, "runs.db")
	o.seed = 3

	res, err := run(context.Background(), fsutil.OSFileSystem{}, timeutil.RealClock{}, o)
	require.NoError(t, err)
	assert.Len(t, res.files, 7)
	for _, f := range res.files {
		info, err := os.Stat(f)
		require.NoError(t, err, f)
		assert.NotZero(t, info.Size(), f)
	}
	assert.Equal(t, filepath.Join(o.outDir, "part.html"), res.files[len(res.files)-1])
	require.NotEmpty(t, res.runID)

	registry, err := db.NewDB(o.dbPath)
	require.NoError(t, err)
	defer registry.Close()
	runs, err := registry.Runs(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.runID, runs[0].ID)
	assert.Equal(t, 4, runs[0].Layers)
	assert.Equal(t, uint64(3), runs[0].Seed)

	layers, err := registry.RunLayers(res.runID)
	require.NoError(t, err)
	assert.Len(t, layers, 4)
}

func TestRun_InvalidConfigWritesNothing(t *testing.T) {
	_, o := writeInputs(t, strings.Replace(testutil.GroupedYAML, "w_dwell: 2", "w_dwell: 4", 1))

	_, err := run(context.Background(), fsutil.OSFileSystem{}, timeutil.RealClock{}, o)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrRollerDwell))
	_, statErr := os.Stat(o.outDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_RejectsBasenameWithPath(t *testing.T) {
	_, o := writeInputs(t, testutil.SingleGroupYAML)
	o.base = "../escape"

	_, err := run(context.Background(), fsutil.OSFileSystem{}, timeutil.RealClock{}, o)
	assert.True(t, errors.Is(err, security.ErrInvalidBasename))
}

func TestRun_MissingConfig(t *testing.T) {
	_, o := writeInputs(t, testutil.SingleGroupYAML)
	o.config = filepath.Join(filepath.Dir(o.config), "nope.yaml")

	_, err := run(context.Background(), fsutil.OSFileSystem{}, timeutil.RealClock{}, o)
	assert.Error(t, err)
}

func TestWatchLoop_Debounces(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	names := map[string]bool{"dir/part.gcode": true}
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, events, errs, clock, names, time.Second, func() { calls.Add(1) })
	}()

	events <- fsnotify.Event{Name: "dir/other.gcode", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "dir/part.gcode", Op: fsnotify.Chmod}
	events <- fsnotify.Event{Name: "dir/part.gcode", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "dir/part.gcode", Op: fsnotify.Create}

	require.Eventually(t, func() bool {
		clock.Advance(time.Second)
		return calls.Load() == 1
	}, time.Second, time.Millisecond)

	clock.Advance(time.Minute)
	events <- fsnotify.Event{Name: "./dir/part.gcode", Op: fsnotify.Write}
	require.Eventually(t, func() bool {
		clock.Advance(time.Second)
		return calls.Load() == 2
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("watch loop did not stop")
	}
}

func TestWatchLoop_ClosedEvents(t *testing.T) {
	events := make(chan fsnotify.Event)
	close(events)
	err := watchLoop(context.Background(), events, nil, timeutil.NewMockClock(time.Unix(0, 0)), nil, time.Second, func() {})
	assert.NoError(t, err)
}
