package ingestion_engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/models"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sirupsen/logrus"
)

var _ core.PageExtractor = (*PDFPageExtractor)(nil)

// PDFPageExtractor reads the text layer page by page with ledongthuc/pdf.
type PDFPageExtractor struct {
	log logrus.FieldLogger
}

func NewPDFPageExtractor(log logrus.FieldLogger) *PDFPageExtractor {
	return &PDFPageExtractor{log: log}
}

// CheckPDF reports a missing file or a path without a .pdf extension.
func CheckPDF(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("%w: %s", core.ErrNotPDF, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", core.ErrNotPDF, path)
	}
	return nil
}

// CountPages reads the page tree with pdfcpu without touching page content.
func CountPages(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("count pages of %s: %w", path, err)
	}
	return n, nil
}

// ExtractPages returns one RawPage per page, numbered from 1. Pages whose
// content cannot be decoded come back empty rather than failing the document.
func (e *PDFPageExtractor) ExtractPages(ctx context.Context, path string) ([]models.RawPage, error) {
	if err := CheckPDF(path); err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	if total == 0 {
		return nil, core.ErrNoPages
	}

	pages := make([]models.RawPage, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := models.RawPage{Number: i}
		p := r.Page(i)
		if !p.V.IsNull() {
			text, err := p.GetPlainText(nil)
			if err != nil {
				e.log.WithError(err).WithField("page", i).Warn("page text extraction failed")
			} else {
				page.Text = text
			}
		}
		pages = append(pages, page)
	}

	return pages, nil
}
