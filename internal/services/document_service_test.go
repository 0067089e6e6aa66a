package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/core/heuristics"
	"github.com/markdave123-py/newsprint/internal/logger"
	"github.com/markdave123-py/newsprint/internal/models"
)

type fakeNER struct {
	ents []core.Entity
	err  error
}

func (f fakeNER) Recognize(ctx context.Context, text string) ([]core.Entity, error) {
	return f.ents, f.err
}

type fakeObjects struct {
	uploaded map[string]string
	err      error
}

func (f *fakeObjects) UploadFile(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(data)
	if f.uploaded == nil {
		f.uploaded = map[string]string{}
	}
	f.uploaded[key] = string(b)
	return "mem://" + key, nil
}

func (f *fakeObjects) GetFile(ctx context.Context, key string) ([]byte, error) {
	return []byte(f.uploaded[key]), nil
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestWriteChunk(t *testing.T) {
	dir := t.TempDir()
	svc := NewDocumentService(dir, "chunks", heuristics.New(nil), nil, nil, logger.Discard())

	path, err := svc.WriteChunk(context.Background(), "/in/a.pdf", models.PageChunk{Index: 3, FirstPage: 5, LastPage: 6, Text: "----- PAGE 5 -----\n\nbody"})
	if err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	if want := filepath.Join(dir, "a", "chunks", "chunk_3.txt"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}
	if got := readFile(t, path); got != "----- PAGE 5 -----\n\nbody" {
		t.Errorf("content = %q", got)
	}
}

func TestChunkPath(t *testing.T) {
	abs := t.TempDir()
	tests := []struct {
		name      string
		chunksDir string
		want      string
	}{
		{"relative", "chunks", filepath.Join("out", "a", "chunks", "chunk_2.txt")},
		{"default", "", filepath.Join("out", "a", "chunks", "chunk_2.txt")},
		{"absolute", abs, filepath.Join(abs, "a", "chunk_2.txt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewDocumentService("out", tt.chunksDir, heuristics.New(nil), nil, nil, logger.Discard())
			if got := svc.ChunkPath("/in/a.pdf", 2); got != tt.want {
				t.Errorf("ChunkPath = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFileMetadataName(t *testing.T) {
	tests := []struct {
		base, want string
	}{
		{"HT_Delhi_2025-06-14", "HT_Delhi_2025-06-14_metadata.txt"},
		{"extracted", "extracted_pdf_metadata.txt"},
		{"metadata", "metadata_metadata.txt"},
		{"extracted_pdf", "extracted_pdf_metadata.txt"},
	}
	for _, tt := range tests {
		if got := FileMetadataName(tt.base); got != tt.want {
			t.Errorf("FileMetadataName(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestWriteDocument_NameClash(t *testing.T) {
	dir := t.TempDir()
	ner := fakeNER{ents: []core.Entity{{Text: "The Hindu", Label: core.LabelOrg}}}
	svc := NewDocumentService(dir, "", heuristics.New(nil), ner, nil, logger.Discard())

	if err := svc.WriteDocument(context.Background(), "/in/extracted.pdf", nil, "text"); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}

	docDir := filepath.Join(dir, "extracted")
	if got := readFile(t, filepath.Join(docDir, EntityMetaFile)); !strings.HasPrefix(got, "newspaper_name: The Hindu\n") {
		t.Errorf("%s = %q", EntityMetaFile, got)
	}
	if got := readFile(t, filepath.Join(docDir, "extracted_pdf_metadata.txt")); !strings.HasPrefix(got, "Newspaper: ") {
		t.Errorf("file metadata = %q", got)
	}
}

func TestWriteDocument_ConcurrentDocuments(t *testing.T) {
	dir := t.TempDir()
	svc := NewDocumentService(dir, "chunks", heuristics.New(nil), nil, nil, logger.Discard())

	names := []string{"a", "b", "c", "d"}
	var wg sync.WaitGroup
	errs := make(chan error, len(names)*2)
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			pdf := "/in/" + name + ".pdf"
			if _, err := svc.WriteChunk(context.Background(), pdf, models.PageChunk{Index: 1, Text: "chunk of " + name}); err != nil {
				errs <- err
			}
			if err := svc.WriteDocument(context.Background(), pdf, nil, "cleaned "+name); err != nil {
				errs <- err
			}
		}(name)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	for _, name := range names {
		if got := readFile(t, filepath.Join(dir, name, CleanedFile)); got != "cleaned "+name {
			t.Errorf("%s/%s = %q", name, CleanedFile, got)
		}
		if got := readFile(t, filepath.Join(dir, name, "chunks", "chunk_1.txt")); got != "chunk of "+name {
			t.Errorf("%s chunk_1 = %q", name, got)
		}
	}
}

func TestWriteDocument(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "HT_Delhi_2025-06-14")
	ner := fakeNER{ents: []core.Entity{
		{Text: "Hindustan Times", Label: core.LabelOrg},
		{Text: "New Delhi", Label: core.LabelGPE},
		{Text: "14 June 2025", Label: core.LabelDate},
	}}
	objects := &fakeObjects{}
	svc := NewDocumentService(root, "chunks", heuristics.New(nil), ner, objects, logger.Discard())

	pages := []models.RawPage{
		{Number: 1, Text: "HINDUSTAN TIMES\nNew Delhi edition\n"},
		{Number: 2, Text: "second page"},
	}
	err := svc.WriteDocument(context.Background(), "/in/HT_Delhi_2025-06-14.pdf", pages, "cleaned text")
	if err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}

	if got := readFile(t, filepath.Join(dir, CleanedFile)); got != "cleaned text" {
		t.Errorf("%s = %q", CleanedFile, got)
	}
	if got := readFile(t, filepath.Join(dir, RawMetaFile)); got != pages[0].Text {
		t.Errorf("%s = %q", RawMetaFile, got)
	}

	wantMeta := "Newspaper: Hindustan Times\nDate: June 14, 2025\nEdition: Delhi Edition\n"
	if got := readFile(t, filepath.Join(dir, "HT_Delhi_2025-06-14_metadata.txt")); got != wantMeta {
		t.Errorf("file metadata = %q, want %q", got, wantMeta)
	}

	wantEnt := "newspaper_name: Hindustan Times\nedition: New Delhi\ndate: 14 June 2025\n"
	if got := readFile(t, filepath.Join(dir, EntityMetaFile)); got != wantEnt {
		t.Errorf("entity metadata = %q, want %q", got, wantEnt)
	}

	if len(objects.uploaded) != 4 {
		t.Errorf("archived %d files, want 4", len(objects.uploaded))
	}
	if got := objects.uploaded["runs/HT_Delhi_2025-06-14/"+CleanedFile]; got != "cleaned text" {
		t.Errorf("archived cleaned text = %q", got)
	}
}

func TestWriteDocument_DegradedMetadata(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "scan")
	svc := NewDocumentService(root, "", heuristics.New(nil), fakeNER{err: errors.New("model offline")},
		&fakeObjects{err: errors.New("bucket gone")}, logger.Discard())

	if err := svc.WriteDocument(context.Background(), "scan.pdf", nil, ""); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}

	got := readFile(t, filepath.Join(dir, EntityMetaFile))
	if strings.Count(got, "Unknown") != 3 {
		t.Errorf("entity metadata = %q, want Unknown placeholders", got)
	}
	got = readFile(t, filepath.Join(dir, "scan_metadata.txt"))
	if !strings.HasPrefix(got, "Newspaper: "+heuristics.UnknownNewspaper+"\n") {
		t.Errorf("file metadata = %q", got)
	}
}
