package emoji

import (
	"fmt"
	"strings"
)

// Status is the qualification status of an emoji sequence.
type Status string

// The qualification statuses known by the registry.
const (
	FullyQualified     Status = "fully-qualified"
	MinimallyQualified Status = "minimally-qualified"
	Unqualified        Status = "unqualified"
	Component          Status = "component"
)

// Statuses lists every known status in registry order.
var Statuses = []Status{FullyQualified, MinimallyQualified, Unqualified, Component}

// ParseStatus converts a registry token into a Status.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown qualification status %q", s)
}

// Code points removed from a sequence when building the alias key.
const (
	zeroWidthJoiner     = "200D"
	variationSelector16 = "FE0F"
)

// ImageExtension is the extension of the rendered emoji images.
const ImageExtension = ".png"

// Record describes a single emoji of the registry.
type Record struct {
	ImagePath             *string  `json:"imagePath"`
	CodePoints            []string `json:"codePoints"`
	Status                Status   `json:"status"`
	Emoji                 string   `json:"emoji"`
	EmojiVersion          string   `json:"emojiVersion"`
	Name                  string   `json:"name"`
	Shortname             *string  `json:"shortname"`
	ShortnameAlternatives []string `json:"shortnameAlternatives"`
}

// AliasKey returns the normalized key used by the alias dataset.
func (r *Record) AliasKey() string {
	return NormalizeKey(r.CodePoints)
}

// ImageFileName returns the file name of the image rendered for the record.
// Unlike the alias key, it keeps every code point of the sequence.
func (r *Record) ImageFileName() string {
	return strings.ToLower(strings.Join(r.CodePoints, "-")) + ImageExtension
}

// SetAlias fills in the short name and its alternatives.
func (r *Record) SetAlias(a AliasEntry) {
	name := a.Shortname
	r.Shortname = &name
	r.ShortnameAlternatives = append([]string{}, a.Alternates...)
}

// NormalizeKey joins the code points with a hyphen in lowercase,
// leaving out the zero width joiner and the variation selector 16.
func NormalizeKey(codePoints []string) string {
	keep := make([]string, 0, len(codePoints))
	for _, cp := range codePoints {
		if strings.EqualFold(cp, zeroWidthJoiner) || strings.EqualFold(cp, variationSelector16) {
			continue
		}
		keep = append(keep, cp)
	}
	return strings.ToLower(strings.Join(keep, "-"))
}
