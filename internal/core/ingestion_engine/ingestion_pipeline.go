package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var _ Ingestor = (*DocumentIngestor)(nil)

// NewDocumentIngestor constructs the ingestor with a bounded job queue.
func NewDocumentIngestor(
	extractor core.PageExtractor,
	summarizer core.ArticleSummarizer,
	saver core.SummarySaver,
	out core.OutputWriter,
	cfg *IngestConfig,
	log logrus.FieldLogger,
) *DocumentIngestor {
	if cfg.PagesPerChunk < 1 {
		cfg.PagesPerChunk = 2
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 64
	}
	return &DocumentIngestor{
		extractor: extractor, summarizer: summarizer, saver: saver, out: out,
		cfg: cfg, log: log,
		jobs: make(chan string, cfg.QueueSize),
	}
}

// Run takes one PDF through extract -> normalize -> chunk -> summarize -> persist.
// Stages are connected by channels and share one errgroup; any stage error
// cancels the rest. Store outages do not fail the run.
func (i *DocumentIngestor) Run(ctx context.Context, pdfPath string) (*models.RunReport, error) {
	report := &models.RunReport{JobID: uuid.NewString(), SourceFile: pdfPath}
	log := i.log.WithFields(logrus.Fields{"job": report.JobID, "file": pdfPath})

	if err := CheckPDF(pdfPath); err != nil {
		return report, err
	}

	unlock := i.lockDocument(pdfPath)
	defer unlock()
	if n, err := CountPages(pdfPath); err != nil {
		log.WithError(err).Debug("page count pre-flight failed")
	} else {
		log.WithField("pages", n).Info("processing pdf")
	}

	pages, err := i.extractor.ExtractPages(ctx, pdfPath)
	if err != nil {
		return report, fmt.Errorf("extract pages: %w", err)
	}
	if len(pages) == 0 {
		return report, core.ErrNoPages
	}
	report.Pages = len(pages)

	g, gctx := errgroup.WithContext(ctx)

	var cleaned []models.RawPage

	// pages -> normalized pages (receive-only channel).
	pageCh := i.streamNormalize(gctx, g, pages, &cleaned)

	// normalized pages -> page chunks (receive-only channel).
	chunkCh := i.streamChunk(gctx, g, pageCh, i.cfg.PagesPerChunk)

	// page chunks -> chunk files, article records, store.
	g.Go(func() error {
		return i.summarizeAndPersist(gctx, chunkCh, report)
	})

	// Wait for all stages. Any error cancels the rest.
	if err := g.Wait(); err != nil {
		return report, err
	}

	if err := i.out.WriteDocument(ctx, pdfPath, pages, JoinPages(cleaned)); err != nil {
		return report, fmt.Errorf("write document outputs: %w", err)
	}

	log.WithFields(logrus.Fields{
		"chunks":     len(report.ChunkFiles),
		"candidates": report.Candidates,
		"articles":   report.Articles,
		"saved":      report.Saved,
	}).Info("pdf processed")
	return report, nil
}

// lockDocument serializes runs whose PDFs share an output directory name.
func (i *DocumentIngestor) lockDocument(pdfPath string) (unlock func()) {
	name := filepath.Base(pdfPath)
	key := strings.TrimSuffix(name, filepath.Ext(name))
	mu, _ := i.docLocks.LoadOrStore(key, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// SummarizeFile runs segmentation, summarization and persistence over an
// already-normalized text file such as chunk_<n>.txt.
func (i *DocumentIngestor) SummarizeFile(ctx context.Context, textPath string) (*models.RunReport, error) {
	report := &models.RunReport{JobID: uuid.NewString(), SourceFile: textPath}

	data, err := os.ReadFile(textPath)
	if err != nil {
		return report, fmt.Errorf("read %s: %w", textPath, err)
	}

	records, candidates := i.summarizeText(ctx, string(data))
	report.Candidates = candidates
	report.Articles = len(records)

	saved := i.saver.SaveSummaries(ctx, records, textPath)
	report.Saved = saved.Saved

	i.log.WithFields(logrus.Fields{
		"file":       textPath,
		"candidates": candidates,
		"articles":   len(records),
		"saved":      saved.Saved,
	}).Info("text file summarized")
	return report, nil
}

// streamNormalize emits normalized pages in page order and records them in *cleaned.
func (i *DocumentIngestor) streamNormalize(
	ctx context.Context,
	g *errgroup.Group,
	pages []models.RawPage,
	cleaned *[]models.RawPage,
) <-chan models.RawPage {
	out := make(chan models.RawPage, 4)

	g.Go(func() error {
		defer close(out)
		for _, p := range pages {
			np := models.RawPage{Number: p.Number, Text: Normalize(p.Text)}
			*cleaned = append(*cleaned, np)
			select {
			case out <- np:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	return out
}

// summarizeAndPersist consumes chunks, writes each to its file, and saves the
// records built from its article candidates under that file's path.
func (i *DocumentIngestor) summarizeAndPersist(ctx context.Context, in <-chan models.PageChunk, report *models.RunReport) error {
	for c := range in {
		path, err := i.out.WriteChunk(ctx, report.SourceFile, c)
		if err != nil {
			return fmt.Errorf("write chunk %d: %w", c.Index, err)
		}
		report.ChunkFiles = append(report.ChunkFiles, path)

		records, candidates := i.summarizeText(ctx, c.Text)
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Candidates += candidates
		report.Articles += len(records)

		saved := i.saver.SaveSummaries(ctx, records, path)
		report.Saved += saved.Saved
	}
	return nil
}

// summarizeText segments text and summarizes every candidate. Candidates
// without summary points are dropped.
func (i *DocumentIngestor) summarizeText(ctx context.Context, text string) ([]models.ArticleRecord, int) {
	candidates := Segment(text)
	records := make([]models.ArticleRecord, 0, len(candidates))
	for _, cand := range candidates {
		if ctx.Err() != nil {
			break
		}
		rec, ok := i.summarizer.Article(ctx, cand)
		if !ok {
			continue
		}
		records = append(records, *rec)
	}
	return records, len(candidates)
}

// IsInputError reports whether err means the input itself was unusable.
func IsInputError(err error) bool {
	return errors.Is(err, core.ErrNotPDF) || errors.Is(err, core.ErrNoPages) || errors.Is(err, os.ErrNotExist)
}
