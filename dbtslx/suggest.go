package dbtslx

import "sort"

// editDistance is a plain Levenshtein distance, used only to build
// did-you-mean hints for unknown identifiers.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// suggestNames returns up to topK candidates within a small edit distance
// of target, closest first.
func suggestNames(target string, candidates []string, topK int) []string {
	type scored struct {
		name string
		dist int
	}

	var matches []scored
	for _, candidate := range candidates {
		dist := editDistance(target, candidate)
		if dist <= 2 {
			matches = append(matches, scored{candidate, dist})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}

	names := make([]string, len(matches))
	for i, match := range matches {
		names[i] = match.name
	}
	return names
}
