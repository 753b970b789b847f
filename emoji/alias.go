package emoji

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrAliasNotFound is returned when the alias dataset has no entry for a key.
var ErrAliasNotFound = errors.New("alias not found")

// AliasEntry holds the short names of an emoji, as found in the JoyPixels dataset.
type AliasEntry struct {
	Shortname  string   `json:"shortname"`
	Alternates []string `json:"shortname_alternates"`
}

// AliasTable maps a normalized code point key to its raw alias entry.
// Entries are decoded on lookup, so a single malformed entry
// does not prevent the rest of the dataset from being used.
type AliasTable map[string]json.RawMessage

// ParseAliasTable decodes the top level object of the alias dataset.
func ParseAliasTable(r io.Reader) (AliasTable, error) {
	var table AliasTable

	if err := json.NewDecoder(r).Decode(&table); err != nil {
		return nil, fmt.Errorf("unable to decode the alias dataset: %w", err)
	}
	if table == nil {
		return nil, errors.New("the alias dataset is empty")
	}
	return table, nil
}

// Lookup returns the alias entry stored under key. A missing key or a null
// entry is reported with ErrAliasNotFound, every other failure is a decoding error.
func (t AliasTable) Lookup(key string) (AliasEntry, error) {
	raw, ok := t[key]
	if !ok {
		return AliasEntry{}, fmt.Errorf("the code point '%s' was not found in the alias dataset: %w", key, ErrAliasNotFound)
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return AliasEntry{}, fmt.Errorf("the alias entry for '%s' is null: %w", key, ErrAliasNotFound)
	}

	var entry AliasEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return AliasEntry{}, fmt.Errorf("unable to decode the alias entry for '%s': %w", key, err)
	}
	if entry.Alternates == nil {
		entry.Alternates = []string{}
	}
	return entry, nil
}
