// Package decision classifies free-text editorial decision strings into
// the fixed outcome taxonomy.
package decision

import "regexp"

// Outcome is a canonical editorial decision.
type Outcome string

const (
	Accepted             Outcome = "accepted"
	RejectedBeforeReview Outcome = "rejected before review"
	RejectedAfterReview  Outcome = "rejected after review"
	Unknown              Outcome = "unknown"
)

// Rule pairs an outcome with the pattern that recognizes it.
type Rule struct {
	Outcome Outcome
	Pattern *regexp.Regexp
}

// rules are evaluated in order, first match wins. Before-review
// patterns come first: many of them contain the substring "reject",
// which the looser after-review patterns would otherwise capture.
var rules = []Rule{
	{
		// "reject and refer", "reject before review", "reject with board
		// advice & refer", "editorial rejection (EBA)"
		Outcome: RejectedBeforeReview,
		Pattern: regexp.MustCompile(`(?i)(reject before)|(reject and refer)|(reject with)|(editorial reject)`),
	},
	{
		// "reject post review - 2 reviewer", bare "reject"/"rejection"
		// (anchored so compound phrases fall through to other rules),
		// "Revise and Re-Review - Border Line Reject", "reject open"
		Outcome: RejectedAfterReview,
		Pattern: regexp.MustCompile(`(?i)(reject post)|(^reject(ion)?$)|(border line reject)|(reject and encourage resubmission)|(reject open)`),
	},
	{
		// "accepted", "RC - Accept", "suggest posting of reviews"
		Outcome: Accepted,
		Pattern: regexp.MustCompile(`(?i)(accept)|(suggest posting of reviews)`),
	},
}

// Classify maps a raw decision string onto exactly one outcome.
// Strings matched by no rule classify as Unknown.
func Classify(raw string) Outcome {
	for _, rule := range rules {
		if rule.Pattern.MatchString(raw) {
			return rule.Outcome
		}
	}
	return Unknown
}

// Rules exposes the ordered rule set, mainly for tests and diagnostics.
func Rules() []Rule {
	return rules
}
