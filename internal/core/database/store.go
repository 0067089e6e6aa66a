package db

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/newsprint/internal/config"
	"github.com/markdave123-py/newsprint/internal/core"
)

// NewArticleStore builds the store named by cfg.StoreBackend.
func NewArticleStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (core.ArticleStore, error) {
	log = log.WithField("store", cfg.StoreBackend)

	switch cfg.StoreBackend {
	case config.StoreMongo:
		return NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, log)
	case config.StorePostgres:
		return NewDatabaseClient(cfg, log)
	case config.StoreSQLite:
		return NewSQLiteClient(cfg.SQLitePath, log)
	default:
		return nil, fmt.Errorf("%w: got %q", config.ErrUnknownStore, cfg.StoreBackend)
	}
}
