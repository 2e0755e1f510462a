package epmc

import (
	"fmt"
	"strings"

	"github.com/embo-press/matchpub/internal/search"
)

// BuildAuthorQuery ANDs together one OR-group per distinct author (OR
// over that author's spelling alternatives) with the publication-year
// window and the preprint inclusion term.
//
//	(AUTH:"smith") AND (AUTH:"villanueva-meyer" OR AUTH:"villanueva" ...) AND PUB_YEAR:[2019 TO 2021]
func BuildAuthorQuery(alternatives [][]string, window search.Window, policy search.PreprintPolicy) string {
	if len(alternatives) == 0 {
		return ""
	}

	orGroups := make([]string, 0, len(alternatives))
	for _, alts := range alternatives {
		terms := make([]string, 0, len(alts))
		for _, name := range alts {
			terms = append(terms, fmt.Sprintf("AUTH:%q", name))
		}
		if len(terms) == 0 {
			continue
		}
		orGroups = append(orGroups, "("+strings.Join(terms, " OR ")+")")
	}
	if len(orGroups) == 0 {
		return ""
	}

	query := strings.Join(orGroups, " AND ") + yearClause(window)
	return query + policyClause(policy)
}

// BuildTitleQuery matches a normalized title bounded by the
// publication-year window and the preprint inclusion term.
func BuildTitleQuery(title string, window search.Window, policy search.PreprintPolicy) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}
	query := fmt.Sprintf("TITLE:%q", title) + yearClause(window)
	return query + policyClause(policy)
}

func yearClause(window search.Window) string {
	return fmt.Sprintf(" AND PUB_YEAR:[%d TO %d]", window.StartYear(), window.EndYear())
}

// policyClause appends the preprint filter. Europe PMC tags preprint
// records with SRC:"PPR".
func policyClause(policy search.PreprintPolicy) string {
	switch policy {
	case search.ExcludePreprints:
		return ` AND NOT SRC:"PPR"`
	case search.OnlyPreprints:
		return ` AND SRC:"PPR"`
	default:
		return ""
	}
}
