package ingestion_engine

import (
	"sync"
	"time"

	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/sirupsen/logrus"
)

// IngestConfig tunes the staged pipeline.
//
// PagesPerChunk: consecutive pages grouped into one chunk file (e.g., 2).
// QueueSize:     capacity of the upload job queue (e.g., 64).
// JobTimeout:    upper bound for one queued document (e.g., 5m).
type IngestConfig struct {
	PagesPerChunk int
	QueueSize     int
	JobTimeout    time.Duration
}

// DocumentIngestor orchestrates the ingestion pipeline:
//
// extractor:  PDF page text (service A).
// summarizer: article records from candidates (services B and C).
// saver:      document store persistence (service D).
// out:        chunk files, cleaned text, metadata files and archive.
// jobs:       in-memory queue of PDF paths waiting for a worker.
// docLocks:   one mutex per output directory name; runs of PDFs that share a
//             base name write the same files and must not overlap.
type DocumentIngestor struct {
	extractor  core.PageExtractor
	summarizer core.ArticleSummarizer
	saver      core.SummarySaver
	out        core.OutputWriter
	cfg        *IngestConfig
	log        logrus.FieldLogger
	jobs       chan string
	docLocks   sync.Map
}
