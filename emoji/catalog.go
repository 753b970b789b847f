package emoji

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Builder joins the registry records with the alias dataset.
type Builder struct {
	// Aliases is the alias dataset used to resolve short names.
	Aliases AliasTable
	// ImageDir is the optional directory of rendered emoji images.
	// It is only honored together with OutputPath.
	ImageDir string
	// OutputPath is the location of the JSON catalog. Image paths are made relative to its directory.
	OutputPath string

	// Warnf reports recoverable issues, like a missing short name.
	Warnf func(format string, args ...any)
	// Errorf reports unexpected issues which do not abort the build.
	Errorf func(format string, args ...any)
}

// Catalog is the list of emoji records produced by a Builder.
type Catalog struct {
	Records []Record
}

// StatusCounts summarizes a catalog by qualification status.
type StatusCounts struct {
	Total              int
	FullyQualified     int
	MinimallyQualified int
	Unqualified        int
	Component          int
}

// Build parses the registry text and resolves short names and image paths for every record.
// A *ParseError aborts the build, a failed alias lookup only gets reported.
func (b *Builder) Build(text string) (*Catalog, error) {
	var imageDir, outputDir string
	if b.ImageDir != "" && b.OutputPath != "" {
		var err error
		if imageDir, err = filepath.Abs(b.ImageDir); err != nil {
			return nil, fmt.Errorf("unable to resolve the image directory: %w", err)
		}
		outputPath, err := filepath.Abs(b.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("unable to resolve the output path: %w", err)
		}
		outputDir = filepath.Dir(outputPath)
	}

	catalog := &Catalog{Records: []Record{}}

	err := eachRecord(text, func(rec Record) error {
		if imageDir != "" {
			if err := resolveImagePath(&rec, imageDir, outputDir); err != nil {
				return err
			}
		}

		entry, err := b.Aliases.Lookup(rec.AliasKey())
		switch {
		case err == nil:
			rec.SetAlias(entry)
		case errors.Is(err, ErrAliasNotFound):
			b.warnf("[E%s - %s] No shortname found for emoji.", rec.EmojiVersion, rec.Name)
		default:
			b.errorf("%v", err)
		}

		catalog.Records = append(catalog.Records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// resolveImagePath sets the image path of the record, relative to outputDir,
// only if the image exists inside imageDir.
func resolveImagePath(rec *Record, imageDir, outputDir string) error {
	path := filepath.Join(imageDir, rec.ImageFileName())

	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		rec.ImagePath = nil
		return nil
	}

	rel, err := filepath.Rel(outputDir, path)
	if err != nil {
		return fmt.Errorf("unable to compute the relative image path: %w", err)
	}
	rel = filepath.ToSlash(rel)
	rec.ImagePath = &rel

	return nil
}

func (b *Builder) warnf(format string, args ...any) {
	if b.Warnf != nil {
		b.Warnf(format, args...)
	}
}

func (b *Builder) errorf(format string, args ...any) {
	if b.Errorf != nil {
		b.Errorf(format, args...)
	}
}

// Counts returns the number of records per qualification status.
func (c *Catalog) Counts() StatusCounts {
	counts := StatusCounts{Total: len(c.Records)}
	for _, rec := range c.Records {
		switch rec.Status {
		case FullyQualified:
			counts.FullyQualified++
		case MinimallyQualified:
			counts.MinimallyQualified++
		case Unqualified:
			counts.Unqualified++
		case Component:
			counts.Component++
		}
	}
	return counts
}

func (sc StatusCounts) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Emoji count: %d\n", sc.Total)
	fmt.Fprintf(&sb, "Fully-qualified emoji count: %d\n", sc.FullyQualified)
	fmt.Fprintf(&sb, "Minimally-qualified emoji count: %d\n", sc.MinimallyQualified)
	fmt.Fprintf(&sb, "Unqualified emoji count: %d\n", sc.Unqualified)
	fmt.Fprintf(&sb, "Component emoji count: %d\n", sc.Component)

	return sb.String()
}

// WriteJSON persists the catalog records as a compact JSON array.
func (c *Catalog) WriteJSON(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create the output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("unable to close the output file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	records := c.Records
	if records == nil {
		records = []Record{}
	}
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("unable to encode the catalog: %w", err)
	}
	return w.Flush()
}
