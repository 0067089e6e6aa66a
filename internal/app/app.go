package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/newsprint/internal/config"
)

// App is the API process: the pipeline, its upload workers and the HTTP server.
type App struct {
	Pipeline *Pipeline
	Server   *Server
	log      logrus.FieldLogger
}

func NewApp(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	p, err := NewPipeline(appCtx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.WithField("store", cfg.StoreBackend).Info("pipeline initialized")

	server := NewServer(cfg, Deps{
		Store:    p.Store,
		Searcher: p.Searcher(),
		Embedder: p.QueryEmbedder,
		LLM:      p.LLM,
		Queue:    p.Ingestor,
	}, log)

	return &App{Pipeline: p, Server: server, log: log}, nil
}

// Run starts numWorkers ingest workers and serves HTTP until ctx is done.
func (a *App) Run(ctx context.Context, numWorkers int) error {
	if numWorkers < 1 {
		numWorkers = 1
	}
	a.Pipeline.Ingestor.Start(ctx, numWorkers)

	errCh := make(chan error, 1)
	go func() { errCh <- a.Server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return a.Server.Shutdown(shutdownCtx)
}

func (a *App) Close() {
	if a.Pipeline != nil {
		a.Pipeline.Close()
	}
}
