/*
Package emoji parses the Unicode emoji-test registry, joins it with the
JoyPixels short name dataset and produces a catalog that can be persisted as JSON.

A registry line has the following shape:

	1F600 ; fully-qualified # 😀 E1.0 grinning face

Lines which do not have this shape (comments, group headers, blank lines)
are skipped. A line which has the shape but carries invalid content, like an
unknown qualification status, is reported as a *ParseError.
*/
package emoji
