package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/esimov/emojiconv"
	"github.com/esimov/emojiconv/utils"
)

// convert runs the 'convert' command.
func (c *cli) convert(ctx context.Context, args []string) int {
	fs := c.newFlagSet("convert")
	var (
		svgDir      = fs.String("svg-directory", "", "The path to the directory containing the Twemoji SVG files.")
		outDir      = fs.String("output-directory", "", "The path to where the converted images will be saved.")
		resolution  = fs.Int("output-resolution", emojiconv.DefaultResolution, "The output resolution for the converted images.")
		workers     = fs.Int("workers", emojiconv.MinWorkers, fmt.Sprintf("Number of images compressed concurrently (%d-%d).", emojiconv.MinWorkers, emojiconv.MaxWorkers))
		supersample = fs.Int("supersample", 1, "Render at a multiple of the output resolution and downsample the result.")
		overwrite   = fs.Bool("overwrite", false, "Clear an existing output directory without asking.")
	)
	if code, ok := c.parseFlags(fs, args); !ok {
		return code
	}

	switch {
	case *svgDir == "":
		c.errorf("'--svg-directory' argument was empty.")
		return exitFailure
	case *outDir == "":
		c.errorf("'--output-directory' argument was empty.")
		return exitFailure
	case *resolution <= 0:
		c.errorf("'--output-resolution' should be a positive number, got %d.", *resolution)
		return exitFailure
	}

	srcPath, err := filepath.Abs(*svgDir)
	if err != nil {
		c.errorf("%v", err)
		return exitFailure
	}
	sources, err := emojiconv.ListSources(srcPath)
	if err != nil {
		c.errorf("%v", err)
		return exitFailure
	}

	dstPath, err := filepath.Abs(*outDir)
	if err != nil {
		c.errorf("%v", err)
		return exitFailure
	}

	err = emojiconv.PrepareOutputDir(dstPath, func() (bool, error) {
		c.warnf("The directory '%s' already exists.", dstPath)
		if !*overwrite {
			ok, err := utils.Confirm(c.stdin, c.stdout, "Do you want to overwrite the existing files?")
			if err != nil || !ok {
				return ok, err
			}
		}
		c.warnf("Clearing the output directory...")
		return true, nil
	})
	switch {
	case errors.Is(err, emojiconv.ErrOverwriteDeclined):
		c.errorf("Conversion process aborted.")
		return exitDeclined
	case err != nil:
		c.errorf("%v", err)
		return exitFailure
	}
	c.infof("Creating the output directory...")

	conv := &emojiconv.Converter{
		Rasterizer: &emojiconv.Rasterizer{
			Resolution:  *resolution,
			Supersample: *supersample,
		},
		Optimizer: &emojiconv.Optimizer{},
		Workers:   *workers,
		Stdout:    c.stdout,
		Spinner:   c.newSpinner("⇢ optimizing images..."),
	}

	now := time.Now()
	summary, err := conv.Convert(ctx, sources, dstPath)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.errorf("\nOperation was canceled. 🤯")
			return exitFailure
		}
		c.errorf("\nAn unknown error occurred. 😢")
		c.errorf("\tReason: %v", err)
		return exitFailure
	}

	c.successf("\nConversion process completed successfully. 🎉")
	fmt.Fprintf(c.stdout, "Converted: %d, compressed: %d, saved: %s\n",
		summary.Converted, summary.Compressed, utils.FormatBytes(summary.BytesSaved))
	fmt.Fprintf(c.stdout, "Execution time: %s\n",
		c.decorate(utils.FormatTime(time.Since(now)), utils.SuccessMessage))

	return exitOK
}
