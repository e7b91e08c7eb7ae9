// Package htmlutil provides text helpers for scraping HTML pages.
package htmlutil

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var digitsPattern = regexp.MustCompile(`\d+`)

// DecodeHTMLEntities decodes HTML entities in a string.
func DecodeHTMLEntities(s string) string {
	return html.UnescapeString(s)
}

// NormalizeSpace collapses whitespace runs to single spaces and trims the ends.
// Unicode spaces such as U+00A0, common in French typography, count as whitespace.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n runes and appends marker when it had to cut.
func Truncate(s string, n int, marker string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + marker
}

// FirstInt returns the first run of ASCII digits in s.
func FirstInt(s string) (int, bool) {
	m := digitsPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}
