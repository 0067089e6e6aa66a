package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/newsprint/internal/core/ingestion_engine"
	"github.com/markdave123-py/newsprint/internal/models"
)

// Processed PDFs are moved into these inbox subdirectories.
const (
	doneDir   = "done"
	failedDir = "failed"
)

type pdfRunner interface {
	Run(ctx context.Context, pdfPath string) (*models.RunReport, error)
}

// watcher drains the top level of an inbox directory, one PDF at a time.
type watcher struct {
	inbox  string
	runner pdfRunner
	log    logrus.FieldLogger
}

func newWatcher(inbox string, runner pdfRunner, log logrus.FieldLogger) *watcher {
	return &watcher{inbox: inbox, runner: runner, log: log}
}

// run scans once immediately and then on every tick of schedule until ctx is
// done. Overlapping ticks are skipped.
func (w *watcher) run(ctx context.Context, schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() { w.scan(ctx) }); err != nil {
		return fmt.Errorf("watch schedule %q: %w", schedule, err)
	}

	w.log.WithFields(logrus.Fields{"inbox": w.inbox, "schedule": schedule}).Info("watching inbox")
	w.scan(ctx)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// scan processes every pending PDF and reports how many succeeded.
func (w *watcher) scan(ctx context.Context) int {
	pending, err := pendingPDFs(w.inbox)
	if err != nil {
		w.log.WithError(err).Error("list inbox")
		return 0
	}

	ok := 0
	for _, path := range pending {
		if ctx.Err() != nil {
			break
		}
		log := w.log.WithField("file", filepath.Base(path))

		r, err := w.runner.Run(ctx, path)
		dest := doneDir
		switch {
		case err == nil:
			ok++
			log.WithFields(logrus.Fields{"articles": r.Articles, "saved": r.Saved}).Info("inbox document processed")
		case ctx.Err() != nil:
			// leave it in place for the next scan
			return ok
		case ingestion_engine.IsInputError(err):
			dest = failedDir
			log.WithError(err).Warn("inbox document skipped")
		default:
			dest = failedDir
			log.WithError(err).Error("inbox document failed")
		}

		if err := moveTo(path, filepath.Join(w.inbox, dest)); err != nil {
			log.WithError(err).Error("move processed document")
		}
	}
	return ok
}

// pendingPDFs lists *.pdf files directly inside dir in name order.
func pendingPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func moveTo(path, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.Rename(path, filepath.Join(dir, filepath.Base(path)))
}
