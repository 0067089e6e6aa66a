package core

import (
	"context"

	"github.com/markdave123-py/newsprint/internal/models"
)

// ArticleSummarizer builds a record from one article candidate. ok is false when
// the candidate produced no summary points and should not be emitted.
type ArticleSummarizer interface {
	Article(ctx context.Context, text string) (rec *models.ArticleRecord, ok bool)
}

// SummarySaver persists summarized records for one source file. Store failures
// are reported in the returned SaveReport, never as an error.
type SummarySaver interface {
	SaveSummaries(ctx context.Context, records []models.ArticleRecord, sourceFile string) models.SaveReport
}

// OutputWriter puts pipeline artifacts on disk and, when configured, in object storage.
type OutputWriter interface {
	WriteChunk(ctx context.Context, pdfPath string, chunk models.PageChunk) (path string, err error)
	WriteDocument(ctx context.Context, pdfPath string, pages []models.RawPage, cleaned string) error
}
