package emojiconv

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// maxPaletteSize is the number of colors an 8 bit palette can hold.
const maxPaletteSize = 256

// Optimizer compresses PNG images in place without altering their pixels.
type Optimizer struct{}

// Compress re-encodes the PNG file found at path with the best compression level,
// switching to an 8 bit palette when the image has few enough colors.
// The file is replaced only when the new encoding is smaller, in which case it returns true.
func (o *Optimizer) Compress(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	src, err := imaging.Open(path)
	if err != nil {
		return false, fmt.Errorf("could not decode the image: %w", err)
	}

	var img image.Image = src
	if p, ok := toPaletted(src); ok {
		img = p
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return false, fmt.Errorf("unable to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := imaging.Encode(tmp, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		tmp.Close()
		return false, fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}

	ti, err := os.Stat(tmp.Name())
	if err != nil {
		return false, err
	}
	if ti.Size() >= fi.Size() {
		return false, nil
	}

	if err := os.Chmod(tmp.Name(), fi.Mode().Perm()); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, fmt.Errorf("unable to replace the original image: %w", err)
	}
	return true, nil
}

// toPaletted converts img to a paletted image if it has at most 256 distinct colors.
// Fully transparent pixels are folded into a single palette entry.
func toPaletted(img image.Image) (*image.Paletted, bool) {
	if p, ok := img.(*image.Paletted); ok {
		return p, true
	}

	b := img.Bounds()
	pix := make([]uint8, 0, b.Dx()*b.Dy())
	index := make(map[color.NRGBA]uint8)
	palette := make(color.Palette, 0, maxPaletteSize)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				c = color.NRGBA{}
			}
			idx, ok := index[c]
			if !ok {
				if len(palette) == maxPaletteSize {
					return nil, false
				}
				idx = uint8(len(palette))
				index[c] = idx
				palette = append(palette, c)
			}
			pix = append(pix, idx)
		}
	}

	dst := image.NewPaletted(b, palette)
	copy(dst.Pix, pix)

	return dst, true
}
