package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/markdave123-py/newsprint/internal/models"
)

// DefaultListLimit caps ListArticles when the filter sets no limit.
const DefaultListLimit = 50

// articleRow holds the nullable and JSON columns shared by the SQL stores.
type articleRow struct {
	points    []byte
	hashtags  []byte
	paragraph sql.NullString
	newspaper sql.NullString
	date      sql.NullString
	city      sql.NullString
}

func (r *articleRow) fill(doc *models.StoredDocument) error {
	doc.SummaryPoints = nil
	doc.Hashtags = nil
	if len(r.points) > 0 {
		if err := json.Unmarshal(r.points, &doc.SummaryPoints); err != nil {
			return fmt.Errorf("decode summary_points of %s: %w", doc.ID, err)
		}
	}
	if len(r.hashtags) > 0 {
		if err := json.Unmarshal(r.hashtags, &doc.Hashtags); err != nil {
			return fmt.Errorf("decode hashtags of %s: %w", doc.ID, err)
		}
	}
	doc.SummaryParagraph = nullToPtr(r.paragraph)
	doc.Newspaper = nullToPtr(r.newspaper)
	doc.Date = nullToPtr(r.date)
	doc.City = nullToPtr(r.city)
	return nil
}

func nullToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func ptrToNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// encodeLists marshals nil slices as empty arrays so the NOT NULL columns hold.
func encodeLists(rec models.ArticleRecord) (points, hashtags string, err error) {
	p := rec.SummaryPoints
	if p == nil {
		p = []string{}
	}
	h := rec.Hashtags
	if h == nil {
		h = []string{}
	}
	pb, err := json.Marshal(p)
	if err != nil {
		return "", "", err
	}
	hb, err := json.Marshal(h)
	if err != nil {
		return "", "", err
	}
	return string(pb), string(hb), nil
}

func listLimit(f models.ArticleFilter) int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}
