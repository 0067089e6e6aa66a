package ingestion_engine

import (
	"context"
	"time"

	"github.com/markdave123-py/newsprint/internal/models"
)

type Ingestor interface {
	Start(ctx context.Context, numWorkers int)
	Enqueue(pdfPath string)
	ProcessOne(ctx context.Context, pdfPath string) error
	Run(ctx context.Context, pdfPath string) (*models.RunReport, error)
	SummarizeFile(ctx context.Context, textPath string) (*models.RunReport, error)
}

// Start runs numWorkers goroutines reading from the jobs channel.
// Each worker takes one document at a time through the whole pipeline.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			log := i.log.WithField("worker", w)
			for {
				select {
				case <-ctx.Done():
					log.Info("ingestor worker shutting down")
					return
				case path := <-i.jobs:
					log.WithField("file", path).Info("processing queued document")
					if err := i.ProcessOne(ctx, path); err != nil {
						log.WithError(err).WithField("file", path).Error("queued document failed")
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a PDF path for ingestion.
// If the queue is full, this call will block until space frees up.
func (i *DocumentIngestor) Enqueue(pdfPath string) {
	i.jobs <- pdfPath
}

// ProcessOne runs a queued document under the job timeout.
func (i *DocumentIngestor) ProcessOne(ctx context.Context, pdfPath string) error {
	timeout := i.cfg.JobTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	proctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := i.Run(proctx, pdfPath)
	return err
}
