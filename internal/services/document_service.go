package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/core/heuristics"
	objectclient "github.com/markdave123-py/newsprint/internal/core/object-client"
	"github.com/markdave123-py/newsprint/internal/models"
)

// Output file names written for every processed PDF.
const (
	CleanedFile    = "all_pages_cleaned.txt"
	EntityMetaFile = "extracted_metadata.txt"
	RawMetaFile    = "metadata_raw.txt"
	metaSuffix     = "_metadata.txt"
)

var _ core.OutputWriter = (*DocumentService)(nil)

// DocumentService writes pipeline artifacts under an output directory and
// optionally copies the document-level files to object storage.
type DocumentService struct {
	outDir    string
	chunksDir string
	meta      *heuristics.Extractor
	ner       core.EntityRecognizer
	storage   core.ObjectClient
	log       logrus.FieldLogger
}

// NewDocumentService writes each PDF's files under outDir/<pdf base>/. A
// relative chunksDir is taken inside that directory, an absolute one gets a
// <pdf base> subdirectory. ner and storage may be nil.
func NewDocumentService(
	outDir, chunksDir string,
	meta *heuristics.Extractor,
	ner core.EntityRecognizer,
	storage core.ObjectClient,
	log logrus.FieldLogger,
) *DocumentService {
	if outDir == "" {
		outDir = "."
	}
	if chunksDir == "" {
		chunksDir = "chunks"
	}
	return &DocumentService{
		outDir: outDir, chunksDir: chunksDir,
		meta: meta, ner: ner, storage: storage, log: log,
	}
}

// DocBase is the output directory name of pdfPath: its file name without extension.
func DocBase(pdfPath string) string {
	name := filepath.Base(pdfPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// DocumentDir is where the document-level files of pdfPath go.
func (s *DocumentService) DocumentDir(pdfPath string) string {
	return filepath.Join(s.outDir, DocBase(pdfPath))
}

func (s *DocumentService) chunkDir(pdfPath string) string {
	if filepath.IsAbs(s.chunksDir) {
		return filepath.Join(s.chunksDir, DocBase(pdfPath))
	}
	return filepath.Join(s.DocumentDir(pdfPath), s.chunksDir)
}

// ChunkPath is where WriteChunk puts chunk n of pdfPath.
func (s *DocumentService) ChunkPath(pdfPath string, n int) string {
	return filepath.Join(s.chunkDir(pdfPath), fmt.Sprintf("chunk_%d.txt", n))
}

func (s *DocumentService) WriteChunk(ctx context.Context, pdfPath string, chunk models.PageChunk) (string, error) {
	dir := s.chunkDir(pdfPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create chunks dir: %w", err)
	}
	path := s.ChunkPath(pdfPath, chunk.Index)
	if err := os.WriteFile(path, []byte(chunk.Text), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	s.log.WithFields(logrus.Fields{
		"chunk": chunk.Index,
		"pages": fmt.Sprintf("%d-%d", chunk.FirstPage, chunk.LastPage),
	}).Debug("chunk written")
	return path, nil
}

// FileMetadataName is the name of the filename-heuristics file of a PDF:
// <base>_metadata.txt, or <base>_pdf_metadata.txt when that would clash with
// another output file.
func FileMetadataName(base string) string {
	name := base + metaSuffix
	switch name {
	case CleanedFile, EntityMetaFile, RawMetaFile:
		return base + "_pdf" + metaSuffix
	}
	return name
}

type outputFile struct {
	name, body string
}

// WriteDocument writes the cleaned text and the metadata files of one PDF.
// Metadata comes from the filename and the raw text of the first page.
func (s *DocumentService) WriteDocument(ctx context.Context, pdfPath string, pages []models.RawPage, cleaned string) error {
	dir := s.DocumentDir(pdfPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var firstPage string
	if len(pages) > 0 {
		firstPage = pages[0].Text
	}

	filename := filepath.Base(pdfPath)
	base := DocBase(pdfPath)

	files := []outputFile{
		{CleanedFile, cleaned},
		{RawMetaFile, firstPage},
		{FileMetadataName(base), FormatFileMetadata(s.meta.FileMetadata(filename, firstPage))},
		{EntityMetaFile, FormatEntityMetadata(s.EntityMetadata(ctx, firstPage))},
	}

	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.body), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	s.log.WithFields(logrus.Fields{"file": filename, "dir": dir}).Info("document outputs written")

	if s.storage != nil {
		s.archive(ctx, base, files)
	}
	return nil
}

// EntityMetadata runs the recognizer over text. Recognizer failures degrade to
// the "Unknown" placeholders.
func (s *DocumentService) EntityMetadata(ctx context.Context, text string) models.EntityMetadata {
	if s.ner == nil {
		return heuristics.EntityMetadata(nil)
	}
	ents, err := s.ner.Recognize(ctx, text)
	if err != nil {
		s.log.WithError(err).Warn("entity recognition failed, metadata left unknown")
		return heuristics.EntityMetadata(nil)
	}
	return heuristics.EntityMetadata(ents)
}

// archive uploads are best effort; local files are already written.
func (s *DocumentService) archive(ctx context.Context, run string, files []outputFile) {
	for _, f := range files {
		key := objectclient.ArchiveKey(run, f.name)
		url, err := s.storage.UploadFile(ctx, key, bytes.NewReader([]byte(f.body)), "text/plain; charset=utf-8")
		if err != nil {
			s.log.WithError(err).WithField("key", key).Warn("archive upload failed")
			continue
		}
		s.log.WithField("url", url).Debug("archived")
	}
}

// FormatFileMetadata renders the three labeled lines of <basename>_metadata.txt.
func FormatFileMetadata(md models.FileMetadata) string {
	return fmt.Sprintf("Newspaper: %s\nDate: %s\nEdition: %s\n", md.Newspaper, md.Date, md.Edition)
}

// FormatEntityMetadata renders the key: value lines of extracted_metadata.txt.
func FormatEntityMetadata(md models.EntityMetadata) string {
	return fmt.Sprintf("newspaper_name: %s\nedition: %s\ndate: %s\n", md.NewspaperName, md.Edition, md.Date)
}
