package youdao

import (
	"strings"
	"unicode/utf8"
)

const (
	// Separator delimits the senses of a definition.
	Separator = "；"
	// MaxSegmentLen bounds a title or subtitle segment, in code points.
	MaxSegmentLen = 27
)

// Regroup packs the Separator-delimited parts of s into segments of at most
// max code points, keeping their order. A part is never split, so a single
// part longer than max becomes its own oversized segment. Joining the
// result with Separator reproduces s.
func Regroup(s string, max int) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, Separator)
	segments := make([]string, 0, len(parts))

	current := parts[0]
	currentLen := utf8.RuneCountInString(current)
	for _, part := range parts[1:] {
		n := utf8.RuneCountInString(part)
		if currentLen+1+n <= max {
			current += Separator + part
			currentLen += 1 + n
			continue
		}
		segments = append(segments, current)
		current, currentLen = part, n
	}

	return append(segments, current)
}
