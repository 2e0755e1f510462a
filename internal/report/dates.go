package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/embo-press/matchpub/internal/search"
)

// betweenRe extracts the two date fragments from the time_window
// metadata statement.
var betweenRe = regexp.MustCompile(`(?i)between(.*)\band\b(.*)`)

// ParseTimeWindow parses the mandatory "between <date> and <date>"
// statement out of the time-window metadata value. Both dates must
// parse or the report is unusable.
func ParseTimeWindow(text string) (search.Window, error) {
	m := betweenRe.FindStringSubmatch(text)
	if m == nil {
		return search.Window{}, fmt.Errorf("%w: no 'between <date> and <date>' statement in %q", ErrTimeWindow, text)
	}

	start, err := ParseFuzzyDate(m[1])
	if err != nil {
		return search.Window{}, fmt.Errorf("%w: start date %q: %v", ErrTimeWindow, strings.TrimSpace(m[1]), err)
	}
	end, err := ParseFuzzyDate(m[2])
	if err != nil {
		return search.Window{}, fmt.Errorf("%w: end date %q: %v", ErrTimeWindow, strings.TrimSpace(m[2]), err)
	}

	return search.Window{Start: start, End: end}, nil
}

// ordinalRe strips English ordinal suffixes ("1st", "22nd").
var ordinalRe = regexp.MustCompile(`\b(\d{1,2})(st|nd|rd|th)\b`)

// timeOfDayRe drops clock fragments appended by the export tool.
var timeOfDayRe = regexp.MustCompile(`\b\d{1,2}:\d{2}(:\d{2})?\b`)

// dateLayouts are tried in order against the cleaned fragment.
// Day-first layouts come before month-first ones: the source system
// emits European-style dates.
var dateLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
	"2 January 06",
	"2 Jan 06",
	"January 2 2006",
	"Jan 2 2006",
	"2006-01-02",
	"2.1.2006",
	"2/1/2006",
	"02/01/2006",
	"2-1-2006",
}

// ParseFuzzyDate extracts a calendar date from a fragment that may
// carry surrounding words, ordinals, commas and clock times.
func ParseFuzzyDate(fragment string) (time.Time, error) {
	cleaned := timeOfDayRe.ReplaceAllString(fragment, "")
	cleaned = ordinalRe.ReplaceAllString(cleaned, "$1")
	cleaned = strings.ReplaceAll(cleaned, ",", " ")
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty date fragment")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}

	// Retry dropping leading tokens; fragments like "a final decision
	// between 1 Jan 2020" carry prose before the date.
	tokens := strings.Fields(cleaned)
	for i := 1; i < len(tokens); i++ {
		candidate := strings.Join(tokens[i:], " ")
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t, nil
			}
		}
	}

	return time.Time{}, fmt.Errorf("cannot parse %q as a date", strings.TrimSpace(fragment))
}
