package emoji

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LineKind classifies the outcome of parsing a single registry line.
type LineKind int

const (
	// LineSkip marks a line which is not a record: comments, headers, blank lines.
	LineSkip LineKind = iota
	// LineRecord marks a line successfully parsed into a Record.
	LineRecord
)

var lineRegex = regexp.MustCompile(
	`^(?P<codepoints>.+?)\s+;\s(?P<status>.+?)\s+#\s(?P<emoji>.+?)\s[Ee](?P<version>\d+\.\d+)\s(?P<name>.+?)$`,
)

var (
	codePointsIdx = lineRegex.SubexpIndex("codepoints")
	statusIdx     = lineRegex.SubexpIndex("status")
	emojiIdx      = lineRegex.SubexpIndex("emoji")
	versionIdx    = lineRegex.SubexpIndex("version")
	nameIdx       = lineRegex.SubexpIndex("name")
)

// ParseError reports a registry line which has the record shape but invalid content.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseLine parses a single registry line. Lines without the record shape are
// reported as LineSkip with a nil error.
func ParseLine(line string) (Record, LineKind, error) {
	line = strings.TrimRight(line, "\r")

	m := lineRegex.FindStringSubmatch(line)
	if m == nil {
		return Record{}, LineSkip, nil
	}

	codePoints := strings.Fields(m[codePointsIdx])
	for _, cp := range codePoints {
		if _, err := strconv.ParseUint(cp, 16, 32); err != nil {
			return Record{}, LineSkip, &ParseError{
				Text: line,
				Err:  fmt.Errorf("invalid code point %q", cp),
			}
		}
	}

	status, err := ParseStatus(m[statusIdx])
	if err != nil {
		return Record{}, LineSkip, &ParseError{Text: line, Err: err}
	}

	return Record{
		CodePoints:            codePoints,
		Status:                status,
		Emoji:                 m[emojiIdx],
		EmojiVersion:          m[versionIdx],
		Name:                  m[nameIdx],
		ShortnameAlternatives: []string{},
	}, LineRecord, nil
}

// ParseRegistry parses the whole registry and returns the records in order of appearance.
// It stops at the first *ParseError.
func ParseRegistry(text string) ([]Record, error) {
	var records []Record

	err := eachRecord(text, func(rec Record) error {
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// eachRecord calls fn for every record of the registry text.
func eachRecord(text string, fn func(Record) error) error {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for n := 1; scanner.Scan(); n++ {
		rec, kind, err := ParseLine(scanner.Text())
		if err != nil {
			if perr, ok := err.(*ParseError); ok {
				perr.Line = n
			}
			return err
		}
		if kind == LineSkip {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return scanner.Err()
}
