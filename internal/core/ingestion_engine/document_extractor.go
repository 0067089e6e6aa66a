package ingestion_engine

import (
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/models"
	"github.com/sirupsen/logrus"
)

var _ core.PageExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor implements core.PageExtractor using sajari/docconv.
// docconv shells out to pdftotext, which separates pages with form feeds.
type DocconvExtractor struct {
	log logrus.FieldLogger
}

func NewDocconvExtractor(log logrus.FieldLogger) *DocconvExtractor {
	return &DocconvExtractor{log: log}
}

// ExtractPages converts the whole file and splits the body on form feeds.
func (e *DocconvExtractor) ExtractPages(ctx context.Context, path string) ([]models.RawPage, error) {
	if err := CheckPDF(path); err != nil {
		return nil, err
	}

	res, err := docconv.ConvertPath(path)
	if err != nil {
		return nil, fmt.Errorf("docconv: convert %s: %w", path, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages := splitFormFeeds(res.Body)
	if len(pages) == 0 {
		e.log.WithField("file", path).Warn("docconv: extracted empty text")
		return nil, core.ErrNoPages
	}
	return pages, nil
}

func splitFormFeeds(body string) []models.RawPage {
	body = strings.TrimRight(body, "\f\n ")
	if strings.TrimSpace(body) == "" {
		return nil
	}
	parts := strings.Split(body, "\f")
	pages := make([]models.RawPage, len(parts))
	for i, text := range parts {
		pages[i] = models.RawPage{Number: i + 1, Text: text}
	}
	return pages
}
