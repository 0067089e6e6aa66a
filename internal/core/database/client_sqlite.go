package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"

	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/models"
)

var _ core.ArticleStore = (*SQLiteClient)(nil)

// sqliteTime has fixed width so timestamps sort as text.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS articles (
    id                TEXT PRIMARY KEY,
    source_file       TEXT NOT NULL,
    timestamp         TEXT NOT NULL,
    heading           TEXT NOT NULL,
    summary_points    TEXT NOT NULL DEFAULT '[]',
    summary_paragraph TEXT,
    hashtags          TEXT NOT NULL DEFAULT '[]',
    article_text      TEXT NOT NULL,
    newspaper         TEXT,
    date              TEXT,
    city              TEXT
);
CREATE INDEX IF NOT EXISTS articles_timestamp_idx ON articles (timestamp DESC);
`

// SQLiteClient is a single-file article store for local runs and tests.
type SQLiteClient struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// NewSQLiteClient opens path (":memory:" is accepted) and creates the schema.
func NewSQLiteClient(path string, log logrus.FieldLogger) (*SQLiteClient, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// every connection to :memory: is a separate database
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}

	log.WithField("path", path).Debug("sqlite store ready")
	return &SQLiteClient{db: db, log: log}, nil
}

func (c *SQLiteClient) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

func (c *SQLiteClient) UpsertArticle(ctx context.Context, doc *models.StoredDocument) error {
	if doc == nil {
		return errors.New("nil document")
	}
	points, hashtags, err := encodeLists(doc.ArticleRecord)
	if err != nil {
		return fmt.Errorf("encode article %s: %w", doc.ID, err)
	}

	const q = `
		INSERT INTO articles
			(id, source_file, timestamp, heading, summary_points, summary_paragraph,
			 hashtags, article_text, newspaper, date, city)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			source_file       = excluded.source_file,
			timestamp         = excluded.timestamp,
			heading           = excluded.heading,
			summary_points    = excluded.summary_points,
			summary_paragraph = excluded.summary_paragraph,
			hashtags          = excluded.hashtags,
			article_text      = excluded.article_text,
			newspaper         = excluded.newspaper,
			date              = excluded.date,
			city              = excluded.city
	`
	_, err = c.db.ExecContext(ctx, q,
		doc.ID, doc.SourceFile, doc.Timestamp.UTC().Format(sqliteTime), doc.Heading, points,
		ptrToNull(doc.SummaryParagraph), hashtags, doc.ArticleText,
		ptrToNull(doc.Newspaper), ptrToNull(doc.Date), ptrToNull(doc.City))
	if err != nil {
		return fmt.Errorf("upsert article %s: %w", doc.ID, err)
	}
	return nil
}

const sqliteSelect = `
	SELECT id, source_file, timestamp, heading, summary_points, summary_paragraph,
	       hashtags, article_text, newspaper, date, city
	FROM articles`

func scanSQLite(s rowScanner) (*models.StoredDocument, error) {
	var (
		d  models.StoredDocument
		r  articleRow
		ts string
	)
	if err := s.Scan(&d.ID, &d.SourceFile, &ts, &d.Heading, &r.points, &r.paragraph,
		&r.hashtags, &d.ArticleText, &r.newspaper, &r.date, &r.city); err != nil {
		return nil, err
	}
	t, err := time.Parse(sqliteTime, ts)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp of %s: %w", d.ID, err)
	}
	d.Timestamp = t
	if err := r.fill(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *SQLiteClient) GetArticle(ctx context.Context, id string) (*models.StoredDocument, error) {
	d, err := scanSQLite(c.db.QueryRowContext(ctx, sqliteSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article %s: %w", id, err)
	}
	return d, nil
}

func (c *SQLiteClient) ListArticles(ctx context.Context, f models.ArticleFilter) ([]models.StoredDocument, error) {
	var (
		where []string
		args  []any
	)
	if f.Newspaper != "" {
		where = append(where, "newspaper = ?")
		args = append(args, f.Newspaper)
	}
	if f.City != "" {
		where = append(where, "city = ?")
		args = append(args, f.City)
	}
	if f.Date != "" {
		where = append(where, "date = ?")
		args = append(args, f.Date)
	}
	if f.Hashtag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(articles.hashtags) WHERE json_each.value = ?)")
		args = append(args, f.Hashtag)
	}

	q := sqliteSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY timestamp DESC, id LIMIT ?"
	args = append(args, listLimit(f))

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var out []models.StoredDocument
	for rows.Next() {
		d, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
