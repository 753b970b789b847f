package emojiconv

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/esimov/emojiconv/utils"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
)

// DefaultResolution is the width and height of the generated images.
const DefaultResolution = 512

// maxSupersample caps the supersampling factor to keep the canvas size reasonable.
const maxSupersample = 4

// Rasterizer renders SVG icons onto a transparent square canvas.
// The icon keeps its aspect ratio and gets centered on the canvas.
type Rasterizer struct {
	// Resolution is the side length of the output image in pixels.
	Resolution int
	// Supersample renders the icon at a multiple of the resolution and
	// downsamples it afterwards. Values below 2 disable supersampling.
	Supersample int
}

// Rasterize decodes the SVG document and renders it into a new image.
func (r *Rasterizer) Rasterize(src io.Reader) (*image.NRGBA, error) {
	if r.Resolution <= 0 {
		return nil, fmt.Errorf("invalid output resolution: %d", r.Resolution)
	}

	icon, err := oksvg.ReadIconStream(src, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}

	ss := utils.Clamp(r.Supersample, 1, maxSupersample)
	size := r.Resolution * ss

	x, y, w, h := fitViewBox(icon.ViewBox.W, icon.ViewBox.H, float64(size))
	icon.SetTarget(x, y, w, h)

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, canvas, canvas.Bounds())
	dasher := rasterx.NewDasher(size, size, scanner)
	icon.Draw(dasher, 1.0)

	if ss == 1 {
		return imaging.Clone(canvas), nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, r.Resolution, r.Resolution))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), canvas, canvas.Bounds(), xdraw.Src, nil)

	return dst, nil
}

// Convert rasterizes the SVG file found at in and encodes the result as PNG into out.
func (r *Rasterizer) Convert(in, out string) error {
	src, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("unable to open the source file: %w", err)
	}
	defer src.Close()

	img, err := r.Rasterize(src)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	dst, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("unable to create the destination file: %w", err)
	}

	if err := imaging.Encode(dst, img, imaging.PNG); err != nil {
		dst.Close()
		os.Remove(out)
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return dst.Close()
}

// fitViewBox scales a w x h view box into a size x size square, keeping the
// aspect ratio, and returns the placement of the scaled box.
func fitViewBox(w, h, size float64) (x, y, sw, sh float64) {
	if w <= 0 || h <= 0 {
		return 0, 0, size, size
	}

	if w >= h {
		sw, sh = size, size*h/w
	} else {
		sw, sh = size*w/h, size
	}

	return (size - sw) / 2, (size - sh) / 2, sw, sh
}
