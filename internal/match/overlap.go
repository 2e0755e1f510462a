package match

// AuthorOverlap scores how well a candidate's author set covers the
// submitting authors. For each submitting author, a hit is recorded
// when any of that author's spelling alternatives appears among the
// candidate's flattened alternatives; the score is hits divided by the
// number of distinct submitting authors. The denominator deliberately
// counts authors, not expanded alternatives, so the score stays in
// [0,1] and is invariant to the order of the author list.
func AuthorOverlap(submitting [][]string, candidate [][]string) float64 {
	if len(submitting) == 0 {
		return 0
	}

	candidateSet := flatten(candidate)
	hits := 0
	for _, alternatives := range submitting {
		for _, name := range alternatives {
			if candidateSet[name] {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(submitting))
}

func flatten(alternatives [][]string) map[string]bool {
	set := make(map[string]bool)
	for _, alts := range alternatives {
		for _, name := range alts {
			set[name] = true
		}
	}
	return set
}
