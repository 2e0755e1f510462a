package normalize

import "strings"

// minComponentLen is the minimum length of a hyphen-separated name
// component to be used as a stand-alone alternative. Shorter fragments
// ("al" in "al-Din") generate too many spurious matches.
const minComponentLen = 2

// ExpandAlternatives produces, for each last name, the list of spelling
// variants accepted during matching: the normalized name itself, each
// sufficiently long hyphen component, and — when exactly two components
// qualify — the components rejoined in reverse order. Compound surnames
// are recorded inconsistently across sources ("Villanueva-Meyer",
// "Meyer-Villanueva", plain "Meyer"), and the expansion absorbs that.
//
// Every returned list contains at least the normalized original name.
func ExpandAlternatives(lastNames []string) [][]string {
	expanded := make([][]string, 0, len(lastNames))
	for _, name := range lastNames {
		expanded = append(expanded, expandOne(name))
	}
	return expanded
}

func expandOne(name string) []string {
	name = Normalize(name, NameOptions())
	alternatives := []string{name}

	if !strings.Contains(name, "-") {
		return alternatives
	}

	var qualifying []string
	for _, component := range strings.Split(name, "-") {
		if len(component) > minComponentLen {
			qualifying = append(qualifying, component)
		}
	}

	for _, component := range qualifying {
		alternatives = appendUnique(alternatives, component)
	}
	if len(qualifying) == 2 {
		alternatives = appendUnique(alternatives, qualifying[1]+"-"+qualifying[0])
	}

	return alternatives
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
