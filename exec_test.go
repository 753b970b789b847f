package emojiconv

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/esimov/emojiconv/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSources(t *testing.T, dir string, names ...string) []string {
	t.Helper()

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(sampleSVG), 0644))
		paths = append(paths, path)
	}
	return paths
}

func newTestConverter(out io.Writer) *Converter {
	return &Converter{
		Rasterizer: &Rasterizer{Resolution: 32},
		Optimizer:  &Optimizer{},
		Workers:    MaxWorkers,
		Stdout:     out,
	}
}

// trackingCompressor records the compressions it receives and how many of them overlap.
type trackingCompressor struct {
	next  Compressor
	delay time.Duration

	mu     sync.Mutex
	active int
	peak   int
	calls  []string
}

func (c *trackingCompressor) Compress(path string) (bool, error) {
	c.mu.Lock()
	c.active++
	c.peak = max(c.peak, c.active)
	c.calls = append(c.calls, filepath.Base(path))
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.active--
		c.mu.Unlock()
	}()

	time.Sleep(c.delay)
	if c.next != nil {
		return c.next.Compress(path)
	}
	return false, nil
}

func (c *trackingCompressor) stats() (active, peak, calls int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.active, c.peak, len(c.calls)
}

// failingCompressor fails the first compression once a second one is running,
// while the second one waits for that failure.
type failingCompressor struct {
	mu     sync.Mutex
	calls  []string
	full   chan struct{}
	failed chan struct{}
}

var errCompression = errors.New("compression failed")

func (c *failingCompressor) Compress(path string) (bool, error) {
	c.mu.Lock()
	c.calls = append(c.calls, filepath.Base(path))
	n := len(c.calls)
	if n == 2 {
		close(c.full)
	}
	c.mu.Unlock()

	if n == 1 {
		select {
		case <-c.full:
		case <-time.After(5 * time.Second):
		}
		close(c.failed)
		return false, errCompression
	}

	select {
	case <-c.failed:
	case <-time.After(5 * time.Second):
	}
	time.Sleep(20 * time.Millisecond)
	return false, nil
}

func TestExec_ShouldConvertEverySource(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	names := []string{"1f600.svg", "1f601.svg", "263a.svg", "1f636-200d-1f32b-fe0f.svg", "2764.svg", "1f44d.svg", "1f47d.svg"}
	sources := writeSources(t, srcDir, names...)

	var out bytes.Buffer
	summary, err := newTestConverter(&out).Convert(context.Background(), sources, dstDir)
	require.NoError(t, err)
	assert.Equal(t, len(names), summary.Converted)

	entries, err := os.ReadDir(dstDir)
	require.NoError(t, err)
	require.Len(t, entries, len(names))

	for _, name := range names {
		want := strings.TrimSuffix(name, ".svg") + ".png"
		_, err := os.Stat(filepath.Join(dstDir, want))
		assert.NoError(t, err, want)
	}

	assert.Contains(t, out.String(), "[1/7] 1f600.svg -> ")
	assert.Contains(t, out.String(), "[7/7] 1f47d.svg -> ")
	assert.Contains(t, out.String(), "Waiting for image optimization tasks to complete")
}

func TestExec_ShouldStopOnCancellation(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	sources := writeSources(t, srcDir, "1f600.svg", "1f601.svg")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newTestConverter(&bytes.Buffer{}).Convert(ctx, sources, dstDir)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, summary.Converted)

	entries, err := os.ReadDir(dstDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExec_ShouldFailOnUnwritableOutput(t *testing.T) {
	srcDir := t.TempDir()
	sources := writeSources(t, srcDir, "1f600.svg")

	_, err := newTestConverter(nil).Convert(context.Background(), sources, filepath.Join(srcDir, "missing"))
	assert.Error(t, err)
}

func TestExec_ListSources(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir, "b.svg", "a.SVG", "c.svg")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.svg"), 0755))

	files, err := ListSources(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.SVG"),
		filepath.Join(dir, "b.svg"),
		filepath.Join(dir, "c.svg"),
	}, files)
}

func TestExec_ListSourcesErrors(t *testing.T) {
	_, err := ListSources(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = ListSources(t.TempDir())
	assert.True(t, errors.Is(err, ErrNoSources))
}

func TestExec_PrepareOutputDirDeclined(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "keep.png")
	require.NoError(t, os.WriteFile(keep, []byte("old"), 0644))

	err := PrepareOutputDir(dir, func() (bool, error) { return false, nil })
	assert.True(t, errors.Is(err, ErrOverwriteDeclined))

	data, err := os.ReadFile(keep)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestExec_PrepareOutputDirAccepted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.png"), []byte("old"), 0644))

	err := PrepareOutputDir(dir, func() (bool, error) { return true, nil })
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExec_PrepareOutputDirCreatesMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "png")

	err := PrepareOutputDir(dir, func() (bool, error) {
		t.Fatal("confirmation should not be asked for a missing directory")
		return false, nil
	})
	require.NoError(t, err)

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestExec_OutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "1f600.png"), OutputPath(filepath.Join("svg", "1f600.svg"), "out"))
	assert.Equal(t, filepath.Join("out", "a.b.png"), OutputPath("a.b.svg", "out"))
}

func TestExec_ShouldCapConcurrentCompressions(t *testing.T) {
	names := []string{"a.svg", "b.svg", "c.svg", "d.svg", "e.svg", "f.svg", "g.svg", "h.svg"}

	for _, workers := range []int{0, 3, 9} {
		srcDir, dstDir := t.TempDir(), t.TempDir()
		sources := writeSources(t, srcDir, names...)

		tracker := &trackingCompressor{delay: 20 * time.Millisecond}
		conv := newTestConverter(nil)
		conv.Optimizer = tracker
		conv.Workers = workers

		_, err := conv.Convert(context.Background(), sources, dstDir)
		require.NoError(t, err)

		_, peak, calls := tracker.stats()
		assert.Equal(t, len(names), calls, "workers: %d", workers)
		assert.Positive(t, peak, "workers: %d", workers)
		assert.LessOrEqual(t, peak, utils.Clamp(workers, MinWorkers, MaxWorkers), "workers: %d", workers)
	}
}

func TestExec_CompressionFailureSkipsPendingTasks(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	sources := writeSources(t, srcDir, "a.svg", "b.svg", "c.svg", "d.svg", "e.svg", "f.svg")

	failing := &failingCompressor{
		full:   make(chan struct{}),
		failed: make(chan struct{}),
	}
	conv := newTestConverter(nil)
	conv.Optimizer = failing
	conv.Workers = 0

	_, err := conv.Convert(context.Background(), sources, dstDir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errCompression))

	// Only the two admitted tasks ran, the queued ones were dropped at the gate.
	failing.mu.Lock()
	defer failing.mu.Unlock()
	assert.Len(t, failing.calls, MinWorkers)
}

func TestExec_RasterizeFailureWaitsForRunningTasks(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	sources := writeSources(t, srcDir, "a.svg", "b.svg", "c.svg")
	sources = append(sources, filepath.Join(srcDir, "missing.svg"))

	tracker := &trackingCompressor{next: &Optimizer{}, delay: 30 * time.Millisecond}
	conv := newTestConverter(nil)
	conv.Rasterizer.Resolution = 128
	conv.Optimizer = tracker
	conv.Workers = MinWorkers

	summary, err := conv.Convert(context.Background(), sources, dstDir)
	require.Error(t, err)
	assert.Equal(t, 3, summary.Converted)

	active, _, _ := tracker.stats()
	assert.Zero(t, active)

	entries, err := os.ReadDir(dstDir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "."), "leftover temporary file: %s", e.Name())
	}
}
