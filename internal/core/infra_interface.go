package core

import (
	"context"
	"errors"
	"io"

	"github.com/markdave123-py/newsprint/internal/models"
)

var (
	// ErrArticleNotFound is returned by GetArticle when no document has the id.
	ErrArticleNotFound = errors.New("article not found")

	// ErrStoreUnavailable wraps a failed pre-flight ping.
	ErrStoreUnavailable = errors.New("document store unavailable")
)

// ArticleStore defines all persistence operations the pipeline and API need.
// It abstracts Mongo/Postgres/SQLite so higher layers never depend on a specific DB.
type ArticleStore interface {
	Ping(ctx context.Context) error
	UpsertArticle(ctx context.Context, doc *models.StoredDocument) error
	GetArticle(ctx context.Context, id string) (*models.StoredDocument, error)
	ListArticles(ctx context.Context, filter models.ArticleFilter) ([]models.StoredDocument, error)
	Close() error
}

// VectorSearcher is implemented by stores that keep article embeddings.
type VectorSearcher interface {
	SearchArticles(ctx context.Context, queryVec []float32, limit int) ([]models.StoredDocument, error)
}

// ObjectClient stores finished output files in S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, data io.Reader, contentType string) (url string, err error)
	GetFile(ctx context.Context, key string) ([]byte, error)
}
