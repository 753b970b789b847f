package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Confirm writes the question to w and reads a single line answer from r.
// Only "y" (case insensitive) counts as a positive answer. An empty input
// stream is treated as a negative answer.
func Confirm(r io.Reader, w io.Writer, question string) (bool, error) {
	fmt.Fprintf(w, "%s (y/N) ", question)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("unable to read the answer: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}

// RelativeToCwd returns path relative to the working directory,
// or path itself if it cannot be expressed that way.
func RelativeToCwd(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, abs)
	if err != nil {
		return path
	}
	return rel
}
