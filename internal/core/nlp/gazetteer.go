package nlp

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/core/heuristics"
)

var _ core.EntityRecognizer = (*GazetteerRecognizer)(nil)

var (
	dayMonthYear = regexp.MustCompile(`\b\d{1,2} (?:January|February|March|April|May|June|July|August|September|October|November|December) \d{4}\b`)
	monthDayYear = regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December) \d{1,2}, \d{4}\b`)
	// Two or more capitalized words, e.g. "Narendra Modi"; lowercase joiners break the run.
	properNoun = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)+\b`)
)

// GazetteerRecognizer finds entities by lookup in the heuristics tables:
// newspapers are ORG, edition and content cities are GPE. Dates are matched
// by pattern and remaining capitalized runs are labelled PERSON.
type GazetteerRecognizer struct {
	terms []gazetteerTerm
}

type gazetteerTerm struct {
	re    *regexp.Regexp
	label string
}

func NewGazetteerRecognizer(t *heuristics.Tables) *GazetteerRecognizer {
	if t == nil {
		t = heuristics.DefaultTables()
	}
	g := &GazetteerRecognizer{}
	seen := map[string]bool{}
	add := func(term, label string) {
		key := strings.ToLower(term)
		if term == "" || seen[key] {
			return
		}
		seen[key] = true
		g.terms = append(g.terms, gazetteerTerm{
			re:    regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`),
			label: label,
		})
	}
	for _, p := range t.Newspapers {
		add(p.Value, core.LabelOrg)
	}
	add(t.ContentNewspaper, core.LabelOrg)
	for _, c := range t.Editions {
		add(c, core.LabelGPE)
	}
	for _, c := range t.ContentCities {
		add(c, core.LabelGPE)
	}
	return g
}

type span struct {
	start, end int
	ent        core.Entity
}

// spanSet collects non-overlapping entity spans; the first claim on a range wins.
type spanSet struct {
	text  string
	spans []span
}

func (ss *spanSet) taken(s, e int) bool {
	for _, sp := range ss.spans {
		if s < sp.end && e > sp.start {
			return true
		}
	}
	return false
}

func (ss *spanSet) add(s, e int, label string) {
	if s < 0 || e > len(ss.text) || s >= e || ss.taken(s, e) {
		return
	}
	ss.spans = append(ss.spans, span{s, e, core.Entity{Text: ss.text[s:e], Label: label}})
}

func (ss *spanSet) collect(re *regexp.Regexp, label string) {
	for _, loc := range re.FindAllStringIndex(ss.text, -1) {
		ss.add(loc[0], loc[1], label)
	}
}

// entities returns the spans in order of first appearance.
func (ss *spanSet) entities() []core.Entity {
	sort.SliceStable(ss.spans, func(i, j int) bool { return ss.spans[i].start < ss.spans[j].start })
	out := make([]core.Entity, len(ss.spans))
	for i, sp := range ss.spans {
		out[i] = sp.ent
	}
	return out
}

// tableSpans claims table terms first, then date patterns.
func (g *GazetteerRecognizer) tableSpans(text string) *spanSet {
	ss := &spanSet{text: text}
	for _, term := range g.terms {
		ss.collect(term.re, term.label)
	}
	ss.collect(dayMonthYear, core.LabelDate)
	ss.collect(monthDayYear, core.LabelDate)
	return ss
}

// Recognize returns entities in order of first appearance. Overlapping
// matches keep the earlier-registered term.
func (g *GazetteerRecognizer) Recognize(ctx context.Context, text string) ([]core.Entity, error) {
	ss := g.tableSpans(text)
	ss.collect(properNoun, core.LabelPerson)
	return ss.entities(), nil
}
