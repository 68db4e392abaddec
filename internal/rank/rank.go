// Package rank scores candidate articles against claim keywords, orders
// them by relevance, and drops duplicate or near-empty headlines.
package rank

import (
	"sort"
	"strings"

	"github.com/andrianta/hoaxcheck/internal/search"
)

// Titles at or below this length carry too little signal to count as
// evidence and are dropped outright.
const minDedupTitleLen = 16

const phraseBonus = 2

// Score computes keyword overlap between a headline and the claim
// keywords: one point per keyword appearing in the lowered title, plus a
// bonus when the leading three-keyword phrase appears verbatim.
func Score(title string, keywords []string) float64 {
	titleLower := strings.ToLower(title)

	var score float64
	for _, kw := range keywords {
		if kw != "" && strings.Contains(titleLower, strings.ToLower(kw)) {
			score++
		}
	}

	phraseEnd := len(keywords)
	if phraseEnd > 3 {
		phraseEnd = 3
	}
	phrase := strings.ToLower(strings.Join(keywords[:phraseEnd], " "))
	if phrase != "" && strings.Contains(titleLower, phrase) {
		score += phraseBonus
	}
	return score
}

// Rank assigns relevance scores, sorts descending (stable, preserving
// discovery order on ties), and deduplicates by normalized title. The
// input slice is not modified.
func Rank(articles []search.Article, keywords []string) []search.Article {
	scored := make([]search.Article, len(articles))
	copy(scored, articles)
	for i := range scored {
		scored[i].Relevance = Score(scored[i].Title, keywords)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Relevance > scored[j].Relevance
	})

	seen := make(map[string]struct{}, len(scored))
	out := scored[:0]
	for _, a := range scored {
		title := normalizeTitle(a.Title)
		if len(title) < minDedupTitleLen {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		out = append(out, a)
	}
	return out
}

func normalizeTitle(title string) string {
	return strings.TrimSpace(strings.ToLower(title))
}
