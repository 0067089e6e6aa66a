package nlp

import (
	"sort"
	"strings"

	"github.com/markdave123-py/newsprint/internal/core"
)

type termCount struct {
	count   int
	surface string
}

// TopTerms ranks alphabetic, non-stop tokens by the frequency of their lemma
// and returns at most n terms. Each term is spelled as the shortest lowercase
// form seen for its lemma ("floods", "flood" -> "flood"). Ties keep
// first-appearance order.
func TopTerms(tokens []core.Token, n int) []string {
	terms := map[string]*termCount{}
	var order []string
	for _, t := range tokens {
		if t.IsStop || !t.IsAlpha {
			continue
		}
		surface := strings.ToLower(t.Text)
		lemma := strings.ToLower(t.Lemma)
		if lemma == "" || IsStopWord(surface) {
			continue
		}
		tc, ok := terms[lemma]
		if !ok {
			tc = &termCount{surface: surface}
			terms[lemma] = tc
			order = append(order, lemma)
		}
		tc.count++
		if len(surface) < len(tc.surface) {
			tc.surface = surface
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return terms[order[i]].count > terms[order[j]].count })
	if len(order) > n {
		order = order[:n]
	}
	out := make([]string, len(order))
	for i, lemma := range order {
		out[i] = terms[lemma].surface
	}
	return out
}
