package emojiconv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/esimov/emojiconv/utils"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// The compression pool admits at least MinWorkers and at most MaxWorkers concurrent tasks.
const (
	MinWorkers = 2
	MaxWorkers = 5
)

// SourceExtension is the extension of the files picked up from the source directory.
const SourceExtension = ".svg"

// OutputExtension is the extension of the generated images.
const OutputExtension = ".png"

var (
	// ErrNoSources is returned when the source directory has no SVG file.
	ErrNoSources = errors.New("no SVG files were found")
	// ErrOverwriteDeclined is returned when the user refuses to clear the output directory.
	ErrOverwriteDeclined = errors.New("overwrite of the output directory declined")
)

// Compressor shrinks an image file in place and reports whether it got smaller.
// *Optimizer is the implementation used by the command line tool.
type Compressor interface {
	Compress(path string) (bool, error)
}

// Summary holds the outcome of a conversion batch.
type Summary struct {
	Converted  int
	Compressed int
	BytesSaved int64
}

// Converter rasterizes the SVG sources one at a time and hands every
// generated image over to a bounded pool of compression tasks.
type Converter struct {
	Rasterizer *Rasterizer
	Optimizer  Compressor
	// Workers is the number of concurrent compressions, clamped to [MinWorkers, MaxWorkers].
	Workers int
	// Stdout receives the progress lines. Nothing is printed when nil.
	Stdout io.Writer
	// Spinner, if set, runs while waiting for the compression tasks.
	Spinner *utils.Spinner

	mu      sync.Mutex
	summary Summary
}

// ListSources returns the SVG files found directly inside dir, sorted by name.
func ListSources(dir string) ([]string, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("the directory '%s' does not exist", dir)
		}
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("'%s' is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read the directory '%s': %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if isValidExtension(filepath.Ext(e.Name()), []string{SourceExtension}) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in the directory '%s'", ErrNoSources, dir)
	}
	sort.Strings(files)

	return files, nil
}

// PrepareOutputDir creates dir. If dir already exists, confirm is asked
// whether it can be removed; on refusal ErrOverwriteDeclined is returned and dir is left untouched.
func PrepareOutputDir(dir string, confirm func() (bool, error)) error {
	_, err := os.Stat(dir)
	switch {
	case err == nil:
		ok, err := confirm()
		if err != nil {
			return err
		}
		if !ok {
			return ErrOverwriteDeclined
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("unable to clear the output directory: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("unable to get dir stats: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create the output directory: %w", err)
	}
	return nil
}

// OutputPath returns the location of the image generated for src inside dir.
func OutputPath(src, dir string) string {
	base := filepath.Base(src)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+OutputExtension)
}

// Convert runs the conversion batch over sources, writing the images into dst.
//
// Cancellation is checked before every rasterization; once ctx is done the
// method returns ctx.Err() without waiting for the dispatched compressions.
// A rasterization failure stops the pending compressions and waits for the
// running ones before it is returned. After a compression failure no further
// source is rasterized and the compressions not yet admitted are skipped;
// the first failure is returned once every task has finished.
func (c *Converter) Convert(ctx context.Context, sources []string, dst string) (Summary, error) {
	c.mu.Lock()
	c.summary = Summary{}
	c.mu.Unlock()

	workers := utils.Clamp(c.Workers, MinWorkers, MaxWorkers)
	sem := semaphore.NewWeighted(int64(workers))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	for i, src := range sources {
		if ctx.Err() != nil {
			return c.snapshot(), ctx.Err()
		}
		if gctx.Err() != nil {
			// One of the compressions failed, Wait reports it.
			break
		}

		out := OutputPath(src, dst)
		c.printf("[%d/%d] %s -> %s\n", i+1, len(sources), filepath.Base(src), utils.RelativeToCwd(out))

		if err := c.Rasterizer.Convert(src, out); err != nil {
			cancel()
			g.Wait()
			return c.snapshot(), err
		}
		c.mu.Lock()
		c.summary.Converted++
		c.mu.Unlock()

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			err := c.compress(gctx, out)
			if err != nil {
				// Cancel while the slot is still held, so no waiting task gets admitted.
				cancel()
			}
			return err
		})
	}

	c.printf("Waiting for image optimization tasks to complete... 👀\n")
	if c.Spinner != nil {
		c.Spinner.Start()
	}
	err := g.Wait()
	if c.Spinner != nil {
		c.Spinner.Stop()
	}
	return c.snapshot(), err
}

// compress compresses the image found at path and records the saved bytes.
// The caller must hold a slot of the pool.
func (c *Converter) compress(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	before, err := fileSize(path)
	if err != nil {
		return err
	}
	ok, err := c.Optimizer.Compress(path)
	if err != nil {
		return fmt.Errorf("unable to compress %s: %w", filepath.Base(path), err)
	}
	if !ok {
		return nil
	}
	after, err := fileSize(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.summary.Compressed++
	c.summary.BytesSaved += before - after
	c.mu.Unlock()

	return nil
}

func (c *Converter) snapshot() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.summary
}

func (c *Converter) printf(format string, args ...any) {
	if c.Stdout != nil {
		fmt.Fprintf(c.Stdout, format, args...)
	}
}

func fileSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// isValidExtension checks for the supported extensions, ignoring case.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if strings.EqualFold(ex, ext) {
			return true
		}
	}
	return false
}
