package core

import (
	"context"
	"errors"

	"github.com/markdave123-py/newsprint/internal/models"
)

// Input errors reported by page extractors.
var (
	ErrNoPages = errors.New("pdf has no pages")
	ErrNotPDF  = errors.New("not a pdf file")
)

// PageExtractor turns a PDF on disk into raw per-page text.
type PageExtractor interface {
	ExtractPages(ctx context.Context, path string) ([]models.RawPage, error)
}
