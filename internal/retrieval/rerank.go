package retrieval

import (
	"sort"
	"strings"
)

// rerankKeepTop bounds how many snippets survive a rerank pass.
const rerankKeepTop = 3

// Rerank reorders snippets by the original score plus a bonus of 0.1
// per query term found in the snippet text, keeping the top entries.
// Snippet scores are returned unchanged; only the order and the cut
// reflect the rerank.
func Rerank(query string, snippets []Snippet) []Snippet {
	if len(snippets) == 0 {
		return nil
	}

	terms := queryTerms(strings.ToLower(query))

	type ranked struct {
		snippet Snippet
		score   float64
	}
	rankedAll := make([]ranked, len(snippets))
	for i, s := range snippets {
		bonus := 0.0
		lower := strings.ToLower(s.Text)
		for _, t := range terms {
			if strings.Contains(lower, t) {
				bonus += 0.1
			}
		}
		rankedAll[i] = ranked{snippet: s, score: s.Score + bonus}
	}

	sort.SliceStable(rankedAll, func(i, j int) bool {
		return rankedAll[i].score > rankedAll[j].score
	})

	keep := rerankKeepTop
	if len(rankedAll) < keep {
		keep = len(rankedAll)
	}
	out := make([]Snippet, keep)
	for i := 0; i < keep; i++ {
		out[i] = rankedAll[i].snippet
	}
	return out
}
