package normalize

import "strings"

// particles are nobiliary/locative name particles that belong with the
// last name ("John van der Putten" -> "van der Putten"). Longer
// particles are listed first so the greedy tail match prefers them.
var particles = []string{
	"van der", "van den", "van de", "von der", "de la", "de los",
	"van", "von", "de", "del", "della", "da", "di", "dos",
	"mac", "mc", "st", "saint", "ter", "la", "le",
}

// LastName extracts the last name from a "first-name(s) last-name"
// string, keeping any recognized particle immediately preceding the
// final token. Unrecognized text defaults to the final
// whitespace-delimited token.
func LastName(fullName string) string {
	tokens := strings.Fields(fullName)
	if len(tokens) == 0 {
		return ""
	}

	last := tokens[len(tokens)-1]
	rest := tokens[:len(tokens)-1]

	// Greedily pull particles off the tail of the remaining tokens.
	for {
		matched := ""
		for _, p := range particles {
			pTokens := strings.Fields(p)
			if len(pTokens) > len(rest) {
				continue
			}
			tail := rest[len(rest)-len(pTokens):]
			if strings.EqualFold(strings.Join(tail, " "), p) {
				matched = strings.Join(tail, " ")
				rest = rest[:len(rest)-len(pTokens)]
				break
			}
		}
		if matched == "" {
			break
		}
		last = matched + " " + last
	}

	return last
}
