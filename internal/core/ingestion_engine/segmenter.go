package ingestion_engine

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MinArticleLen is the trimmed length a fragment must exceed to count as an article.
	MinArticleLen = 100

	// PageMarkerPrefix starts fragments that are page labels, not articles.
	PageMarkerPrefix = "PAGE "
)

// boundaryLine matches sentinel lines and the page marker lines of chunk files.
var boundaryLine = regexp.MustCompile(`(?m)^[ \t]*(?:-{3,}|-{5} PAGE \d+ -{5})[ \t]*$`)

// PageMarker is the line written above each page in chunk and cleaned-text files.
func PageMarker(n int) string {
	return fmt.Sprintf("----- PAGE %d -----", n)
}

// Segment splits normalized text into article candidates in document order.
func Segment(text string) []string {
	var articles []string
	for _, frag := range boundaryLine.Split(strings.TrimSpace(text), -1) {
		frag = strings.TrimSpace(frag)
		if len(frag) <= MinArticleLen || strings.HasPrefix(frag, PageMarkerPrefix) {
			continue
		}
		articles = append(articles, frag)
	}
	return articles
}
