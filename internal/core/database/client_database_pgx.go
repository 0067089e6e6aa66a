package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/newsprint/internal/config"
	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/models"
)

// DefaultEmbedDim matches the vector(768) column of scripts/initdb.sql.
const DefaultEmbedDim = 768

var (
	_ core.ArticleStore   = (*DatabaseClient)(nil)
	_ core.VectorSearcher = (*DatabaseClient)(nil)
)

// DatabaseClient stores articles in Postgres with a pgvector embedding column.
type DatabaseClient struct {
	db  *sql.DB
	dim int
	log logrus.FieldLogger

	mu           sync.Mutex
	bootstrapped bool
}

// NewDatabaseClient opens the pool without dialing. The first successful Ping
// bootstraps the schema, so an unreachable server only fails the save step.
func NewDatabaseClient(cfg *config.Config, log logrus.FieldLogger) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, config.ErrMissingDatabaseURL
	}

	dsn := cfg.DatabaseURL
	if cfg.SslCertPath != "" {
		if _, err := os.Stat(cfg.SslCertPath); err != nil {
			return nil, fmt.Errorf("ssl cert not accessible at %q: %w", cfg.SslCertPath, err)
		}
		u, err := url.Parse(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set("sslmode", "verify-ca")
		q.Set("sslrootcert", cfg.SslCertPath)
		u.RawQuery = q.Encode()
		dsn = u.String()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	dim := cfg.EmbedDim
	if dim <= 0 {
		dim = DefaultEmbedDim
	}
	return &DatabaseClient{db: db, dim: dim, log: log}, nil
}

func (c *DatabaseClient) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bootstrapped {
		return nil
	}
	if err := EnsureBootstrapped(ctx, c.db); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	c.bootstrapped = true
	c.log.Debug("postgres schema ready")
	return nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// UpsertArticle replaces the row with the same id, embedding included.
func (c *DatabaseClient) UpsertArticle(ctx context.Context, doc *models.StoredDocument) error {
	if doc == nil {
		return errors.New("nil document")
	}
	points, hashtags, err := encodeLists(doc.ArticleRecord)
	if err != nil {
		return fmt.Errorf("encode article %s: %w", doc.ID, err)
	}

	var vec any
	switch n := len(doc.Embedding); {
	case n == c.dim:
		vec = pgvector.NewVector(doc.Embedding)
	case n > 0:
		c.log.WithFields(logrus.Fields{"id": doc.ID, "got": n, "want": c.dim}).
			Warn("embedding dimension mismatch, storing without vector")
	}

	const q = `
		INSERT INTO articles
			(id, source_file, timestamp, heading, summary_points, summary_paragraph,
			 hashtags, article_text, newspaper, date, city, embedding)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7::jsonb, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			source_file       = EXCLUDED.source_file,
			timestamp         = EXCLUDED.timestamp,
			heading           = EXCLUDED.heading,
			summary_points    = EXCLUDED.summary_points,
			summary_paragraph = EXCLUDED.summary_paragraph,
			hashtags          = EXCLUDED.hashtags,
			article_text      = EXCLUDED.article_text,
			newspaper         = EXCLUDED.newspaper,
			date              = EXCLUDED.date,
			city              = EXCLUDED.city,
			embedding         = EXCLUDED.embedding
	`
	_, err = c.db.ExecContext(ctx, q,
		doc.ID, doc.SourceFile, doc.Timestamp, doc.Heading, points, ptrToNull(doc.SummaryParagraph),
		hashtags, doc.ArticleText, ptrToNull(doc.Newspaper), ptrToNull(doc.Date), ptrToNull(doc.City), vec)
	if err != nil {
		return fmt.Errorf("upsert article %s: %w", doc.ID, err)
	}
	return nil
}

const pgSelect = `
	SELECT id, source_file, timestamp, heading, summary_points, summary_paragraph,
	       hashtags, article_text, newspaper, date, city
	FROM articles`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPG(s rowScanner) (*models.StoredDocument, error) {
	var (
		d models.StoredDocument
		r articleRow
	)
	if err := s.Scan(&d.ID, &d.SourceFile, &d.Timestamp, &d.Heading, &r.points, &r.paragraph,
		&r.hashtags, &d.ArticleText, &r.newspaper, &r.date, &r.city); err != nil {
		return nil, err
	}
	if err := r.fill(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) GetArticle(ctx context.Context, id string) (*models.StoredDocument, error) {
	d, err := scanPG(c.db.QueryRowContext(ctx, pgSelect+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article %s: %w", id, err)
	}
	return d, nil
}

// ListArticles returns the newest articles matching every non-empty filter field.
func (c *DatabaseClient) ListArticles(ctx context.Context, f models.ArticleFilter) ([]models.StoredDocument, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Newspaper != "" {
		add("newspaper = $%d", f.Newspaper)
	}
	if f.City != "" {
		add("city = $%d", f.City)
	}
	if f.Date != "" {
		add("date = $%d", f.Date)
	}
	if f.Hashtag != "" {
		add("hashtags ? $%d", f.Hashtag)
	}

	q := pgSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, listLimit(f))
	q += fmt.Sprintf(" ORDER BY timestamp DESC, id LIMIT $%d", len(args))

	return c.query(ctx, q, args...)
}

// SearchArticles finds the articles whose embedding is nearest to queryVec.
func (c *DatabaseClient) SearchArticles(ctx context.Context, queryVec []float32, limit int) ([]models.StoredDocument, error) {
	if limit <= 0 {
		limit = 5
	}
	q := pgSelect + `
		WHERE embedding IS NOT NULL
		ORDER BY embedding <-> $1
		LIMIT $2`
	return c.query(ctx, q, pgvector.NewVector(queryVec), limit)
}

func (c *DatabaseClient) query(ctx context.Context, q string, args ...any) ([]models.StoredDocument, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var out []models.StoredDocument
	for rows.Next() {
		d, err := scanPG(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
