package summarizer

import (
	"regexp"
	"strings"

	"github.com/markdave123-py/newsprint/internal/core/ingestion_engine"
)

// ArticleFixes is the second ordered fix-up table, applied to article text.
var ArticleFixes = []ingestion_engine.Replacement{
	{From: "no-fy", To: "no-fly"},
	{From: "kick of", To: "kick off"},
	{From: "fowers", To: "flowers"},
	{From: "s Ganderbal", To: "’s Ganderbal"},
	{From: "oors", To: "floors"},
	{From: "oicials", To: "officials"},
	{From: "overthe", To: "over the"},
	{From: "arrangement,which", To: "arrangement, which"},
}

var (
	junkPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^follow us.*`),
		regexp.MustCompile(`https?://\S+`),
		regexp.MustCompile(`(?i)vol\.\s*\d+\s*no\.\s*\d+`),
		regexp.MustCompile(`(?im)^page\s+\d+`),
	}
	newlineRun = regexp.MustCompile(`\n{2,}`)
	hspaceRun  = regexp.MustCompile(`[ \t]{2,}`)

	trailingStopword = regexp.MustCompile(`(?i)\b(?:in|of|at|for|by|on|with|during|and|to)\b$`)
	trailingShort    = regexp.MustCompile(`\b\w{1,3}$`)
	looseS           = regexp.MustCompile(`\bs\b`)
)

// CleanArticle strips social/URL/issue-number/page-label junk, squeezes
// whitespace and applies ArticleFixes.
func CleanArticle(text string) string {
	for _, re := range junkPatterns {
		text = re.ReplaceAllString(text, "")
	}
	text = newlineRun.ReplaceAllString(text, "\n")
	text = hspaceRun.ReplaceAllString(text, " ")
	text = ingestion_engine.ApplyReplacements(text, ArticleFixes)
	return strings.TrimSpace(text)
}

// CleanHeading removes a dangling preposition or conjunction, then any trailing
// word of three letters or fewer, and restores a detached possessive "s".
func CleanHeading(h string) string {
	h = trailingStopword.ReplaceAllString(strings.TrimSpace(h), "")
	h = strings.TrimSpace(trailingShort.ReplaceAllString(h, ""))
	return looseS.ReplaceAllString(h, "'s")
}
