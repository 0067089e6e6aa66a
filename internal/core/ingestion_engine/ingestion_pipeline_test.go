package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/core/heuristics"
	"github.com/markdave123-py/newsprint/internal/logger"
	"github.com/markdave123-py/newsprint/internal/models"
	"github.com/markdave123-py/newsprint/internal/services"
)

type fakeExtractor struct {
	pages []models.RawPage
	err   error
}

func (f *fakeExtractor) ExtractPages(ctx context.Context, path string) ([]models.RawPage, error) {
	return f.pages, f.err
}

// fakeSummarizer turns every candidate into a record unless it contains "skip".
type fakeSummarizer struct{}

func (fakeSummarizer) Article(ctx context.Context, text string) (*models.ArticleRecord, bool) {
	if strings.Contains(text, "skip") {
		return nil, false
	}
	return &models.ArticleRecord{
		Heading:       text[:10],
		SummaryPoints: []string{"point"},
		ArticleText:   text,
	}, true
}

type fakeSaver struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeSaver) SaveSummaries(ctx context.Context, recs []models.ArticleRecord, source string) models.SaveReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[source] += len(recs)
	return models.SaveReport{Attempted: len(recs), Saved: len(recs)}
}

type fakeOutput struct {
	chunks  []models.PageChunk
	cleaned string
	failAt  int
}

func (f *fakeOutput) WriteChunk(ctx context.Context, pdfPath string, c models.PageChunk) (string, error) {
	if f.failAt > 0 && c.Index == f.failAt {
		return "", errors.New("disk full")
	}
	f.chunks = append(f.chunks, c)
	return fmt.Sprintf("chunks/chunk_%d.txt", c.Index), nil
}

func (f *fakeOutput) WriteDocument(ctx context.Context, pdfPath string, pages []models.RawPage, cleaned string) error {
	f.cleaned = cleaned
	return nil
}

func touchPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "HT_Delhi_2025-06-14.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func article(word string) string {
	return strings.TrimSpace(strings.Repeat(word+" ", 30))
}

func newTestIngestor(ex core.PageExtractor, saver *fakeSaver, out *fakeOutput) *DocumentIngestor {
	return NewDocumentIngestor(ex, fakeSummarizer{}, saver, out, &IngestConfig{PagesPerChunk: 2}, logger.Discard())
}

func TestRun_StagesInOrder(t *testing.T) {
	pages := pagesOf(
		article("alpha")+"\n\n"+article("bravo"),
		article("charlie"),
		article("skip"),
	)
	saver := &fakeSaver{}
	out := &fakeOutput{}
	ing := newTestIngestor(&fakeExtractor{pages: pages}, saver, out)

	report, err := ing.Run(context.Background(), touchPDF(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Pages != 3 {
		t.Errorf("Pages = %d, want 3", report.Pages)
	}
	if len(out.chunks) != 2 || out.chunks[0].FirstPage != 1 || out.chunks[1].FirstPage != 3 {
		t.Fatalf("chunks = %+v", out.chunks)
	}
	if report.Candidates != 4 || report.Articles != 3 || report.Saved != 3 {
		t.Errorf("report = %+v, want 4 candidates, 3 articles, 3 saved", report)
	}
	if saver.calls["chunks/chunk_1.txt"] != 3 {
		t.Errorf("chunk_1 saved %d records, want 3", saver.calls["chunks/chunk_1.txt"])
	}
	if !strings.HasPrefix(out.cleaned, PageMarker(1)) || !strings.Contains(out.cleaned, PageMarker(3)) {
		t.Errorf("cleaned document missing page markers: %q", out.cleaned[:40])
	}
	if report.JobID == "" {
		t.Error("JobID not set")
	}
}

// pagesByFile serves different pages per PDF name.
type pagesByFile map[string][]models.RawPage

func (f pagesByFile) ExtractPages(ctx context.Context, path string) ([]models.RawPage, error) {
	return f[filepath.Base(path)], nil
}

func TestRun_ConcurrentPDFsKeepTheirOutputs(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	words := []string{"alpha", "bravo", "charlie", "delta"}
	pages := pagesByFile{}
	var pdfs []string
	for _, w := range words {
		name := w + ".pdf"
		path := filepath.Join(in, name)
		if err := os.WriteFile(path, []byte("%PDF-1.4\n"), 0644); err != nil {
			t.Fatal(err)
		}
		pages[name] = pagesOf(article(w), article(w+"x"))
		pdfs = append(pdfs, path)
	}
	// the same base name under another directory shares alpha's outputs
	dup := filepath.Join(t.TempDir(), "alpha.pdf")
	if err := os.WriteFile(dup, []byte("%PDF-1.4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	pdfs = append(pdfs, dup)

	writer := services.NewDocumentService(out, "chunks", heuristics.New(nil), nil, nil, logger.Discard())
	ing := NewDocumentIngestor(pages, fakeSummarizer{}, &fakeSaver{}, writer, &IngestConfig{PagesPerChunk: 1}, logger.Discard())

	var wg sync.WaitGroup
	errs := make(chan error, len(pdfs))
	for _, pdf := range pdfs {
		wg.Add(1)
		go func(pdf string) {
			defer wg.Done()
			if _, err := ing.Run(context.Background(), pdf); err != nil {
				errs <- err
			}
		}(pdf)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Run: %v", err)
	}

	for _, w := range words {
		chunk, err := os.ReadFile(writer.ChunkPath(w+".pdf", 2))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(chunk), w+"x") || strings.Count(string(chunk), PageMarker(2)) != 1 {
			t.Errorf("%s chunk_2 = %q", w, chunk)
		}
		cleaned, err := os.ReadFile(filepath.Join(writer.DocumentDir(w+".pdf"), services.CleanedFile))
		if err != nil {
			t.Fatal(err)
		}
		for _, other := range words {
			if other != w && strings.Contains(string(cleaned), other) {
				t.Errorf("%s cleaned text holds %s", w, other)
			}
		}
	}
}

func TestRun_ChunkWriteErrorStopsPipeline(t *testing.T) {
	pages := pagesOf(article("a"), article("b"), article("c"), article("d"), article("e"))
	out := &fakeOutput{failAt: 2}
	ing := newTestIngestor(&fakeExtractor{pages: pages}, &fakeSaver{}, out)

	_, err := ing.Run(context.Background(), touchPDF(t))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v, want disk full", err)
	}
	if out.cleaned != "" {
		t.Error("document outputs written after a failed stage")
	}
}

func TestRun_InputErrors(t *testing.T) {
	ing := newTestIngestor(&fakeExtractor{}, &fakeSaver{}, &fakeOutput{})

	_, err := ing.Run(context.Background(), "notes.txt")
	if !errors.Is(err, core.ErrNotPDF) || !IsInputError(err) {
		t.Errorf("non-pdf: err = %v", err)
	}

	_, err = ing.Run(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if !IsInputError(err) {
		t.Errorf("missing file: err = %v", err)
	}

	_, err = ing.Run(context.Background(), touchPDF(t))
	if !errors.Is(err, core.ErrNoPages) {
		t.Errorf("no pages: err = %v, want ErrNoPages", err)
	}
}

func TestSummarizeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunk_1.txt")
	text := PageMarker(1) + "\n\n" + article("delta") + "\n\n-----\n\n" + article("echo") + "\n\n-----\n\nshort"
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	saver := &fakeSaver{}
	ing := newTestIngestor(&fakeExtractor{}, saver, &fakeOutput{})

	report, err := ing.SummarizeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("SummarizeFile: %v", err)
	}
	if report.Candidates != 2 || report.Saved != 2 || saver.calls[path] != 2 {
		t.Errorf("report = %+v, saver = %v", report, saver.calls)
	}
}
