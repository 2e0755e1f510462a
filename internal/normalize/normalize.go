// Package normalize canonicalizes free-text names and titles into
// matchable forms. Source systems disagree on case, accents, markup and
// punctuation, so everything is folded down to plain ASCII before any
// comparison is attempted.
package normalize

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Options selects which normalization steps to apply. Each step can be
// toggled independently; DefaultOptions enables all of them.
type Options struct {
	StripControl   bool   // remove control characters
	Trim           bool   // trim leading/trailing whitespace
	Lower          bool   // lower-case
	UnescapeMarkup bool   // decode HTML character references (&amp; etc.)
	StripTags      bool   // remove markup tags (<i>, <sup>, ...)
	StripPunct     bool   // remove punctuation and symbols
	FoldAccents    bool   // fold diacritics to their ASCII equivalent
	CollapseSpace  bool   // collapse runs of whitespace to a single space
	Preserve       string // runes exempt from punctuation removal
}

// DefaultOptions enables every step with no preserved punctuation.
// Suitable for titles.
func DefaultOptions() Options {
	return Options{
		StripControl:   true,
		Trim:           true,
		Lower:          true,
		UnescapeMarkup: true,
		StripTags:      true,
		StripPunct:     true,
		FoldAccents:    true,
		CollapseSpace:  true,
	}
}

// NameOptions enables every step but preserves hyphens and apostrophes,
// which are structural in surnames.
func NameOptions() Options {
	opts := DefaultOptions()
	opts.Preserve = "-'"
	return opts
}

var tagRe = regexp.MustCompile(`<[^<>]+>`)

// accentFolder decomposes characters and strips combining marks,
// turning e.g. "é" into "e".
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize applies the configured pipeline to s. It is deterministic
// and never fails: characters that cannot be represented in the target
// alphabet are dropped rather than rejected.
func Normalize(s string, opts Options) string {
	if opts.StripControl {
		s = strings.Map(func(r rune) rune {
			if unicode.IsControl(r) {
				return -1
			}
			return r
		}, s)
	}
	if opts.Lower {
		s = strings.ToLower(s)
	}
	if opts.UnescapeMarkup {
		s = html.UnescapeString(s)
	}
	if opts.StripTags {
		s = tagRe.ReplaceAllString(s, "")
	}
	if opts.FoldAccents {
		if folded, _, err := transform.String(accentFolder, s); err == nil {
			s = folded
		}
		// anything still outside ASCII has no close equivalent; drop it
		s = strings.Map(func(r rune) rune {
			if r > unicode.MaxASCII {
				return -1
			}
			return r
		}, s)
	}
	if opts.StripPunct {
		s = strings.Map(func(r rune) rune {
			if strings.ContainsRune(opts.Preserve, r) {
				return r
			}
			if unicode.IsPunct(r) || unicode.IsSymbol(r) {
				return -1
			}
			return r
		}, s)
	}
	if opts.CollapseSpace {
		s = strings.Join(strings.Fields(s), " ")
	}
	if opts.Trim {
		s = strings.TrimSpace(s)
	}
	return s
}
