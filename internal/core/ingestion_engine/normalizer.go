package ingestion_engine

import (
	"regexp"
	"strings"
)

// Sentinel is the article boundary line written between blank-line separated blocks.
const Sentinel = "-----"

// Replacement is one literal substitution of an ordered fix-up table.
type Replacement struct {
	From string
	To   string
}

// OCRFixes is applied in order; later entries see the output of earlier ones.
var OCRFixes = []Replacement{
	{"fve", "five"},
	{"frst", "first"},
	{"cofict", "conflict"},
	{"fnanciers", "financiers"},
	{"ofcial", "official"},
	{"Afairs", "Affairs"},
	{"fghting", "fighting"},
	{"afected", "affected"},
	{"fagged of", "flagged off"},
	{"safron ag", "saffron flag"},
	{"ash oods", "flash floods"},
	{"signi cant", "significant"},
	{"multipolar", "multipolar"},
	{"advantagevance", "advance"},
	{"To-ophobicbago", "Trinidad and Tobago"},
	{"Na-ophobicmibia", "Namibia"},
}

var (
	wrappedHyphen = regexp.MustCompile(`(\w+)-\s*\n\s*(\w+)`)
	inlineHyphen  = regexp.MustCompile(`(\w+)-\s+(\w+)`)
	nonASCII      = regexp.MustCompile(`[^\x00-\x7F]+`)
	boilerplate   = regexp.MustCompile(`(?m)^\s*(A IN-X|YK|INSIDE|PAGE \d+|NEW DELHI|SRINAGAR|CHENNAI|KOLKATA)\s*$`)
	hspaceRun     = regexp.MustCompile(`[ \t]{2,}`)
	dashLine      = regexp.MustCompile(`^-{3,}$`)
)

// ApplyReplacements runs every entry of table over text, in order.
func ApplyReplacements(text string, table []Replacement) string {
	for _, r := range table {
		text = strings.ReplaceAll(text, r.From, r.To)
	}
	return text
}

// Normalize cleans raw page text and marks block boundaries with Sentinel.
// Running it on its own output usually returns the same text. It does not when
// an OCRFixes entry creates a new match, when a page-number line only matches
// after spaces collapse ("PAGE  4"), or when stripping non-ASCII exposes a
// hyphen join ("well- — known" becomes "well- known", then "wellknown").
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = wrappedHyphen.ReplaceAllString(text, "$1$2")
	text = inlineHyphen.ReplaceAllString(text, "$1$2")
	text = ApplyReplacements(text, OCRFixes)
	text = nonASCII.ReplaceAllString(text, " ")
	text = boilerplate.ReplaceAllString(text, "")
	text = hspaceRun.ReplaceAllString(text, " ")

	return insertSentinels(text)
}

// insertSentinels collapses every run of blank or dash-only lines into a single
// sentinel block. Runs at the start or end of the text are dropped.
func insertSentinels(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	pending := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || dashLine.MatchString(trimmed) {
			if len(out) > 0 {
				pending = true
			}
			continue
		}
		if pending {
			out = append(out, "", Sentinel, "")
			pending = false
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
