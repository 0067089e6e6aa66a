package models

import (
	"time"
)

// RawPage is the untouched text of one PDF page as returned by the extractor.
type RawPage struct {
	Number int    `json:"number"` // 1-based
	Text   string `json:"text"`
}

// ArticleRecord is one summarized article built from a segmented candidate.
//
// The content metadata fields are pointers so that "not found" is stored as an
// explicit null instead of disappearing from the document.
type ArticleRecord struct {
	Heading          string   `json:"heading" bson:"heading"`
	SummaryPoints    []string `json:"summary_points" bson:"summary_points"`
	SummaryParagraph *string  `json:"summary_paragraph" bson:"summary_paragraph"`
	Hashtags         []string `json:"hashtags" bson:"hashtags"`
	ArticleText      string   `json:"article_text" bson:"article_text"`
	Newspaper        *string  `json:"newspaper" bson:"newspaper"`
	Date             *string  `json:"date" bson:"date"` // YYYY-MM-DD
	City             *string  `json:"city" bson:"city"`
}

// StoredDocument is an ArticleRecord as persisted in the document store.
type StoredDocument struct {
	ID         string    `json:"id" bson:"_id"`
	SourceFile string    `json:"source_file" bson:"source_file"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
	Embedding  []float32 `json:"-" bson:"-"` // vector stores only

	ArticleRecord `bson:",inline"`
}

// ArticleFilter narrows ListArticles. Zero values mean "any".
type ArticleFilter struct {
	Newspaper string
	City      string
	Date      string
	Hashtag   string
	Limit     int
}

// FileMetadata is what the filename (plus first page) heuristics produce.
// Every field carries a placeholder when nothing matched.
type FileMetadata struct {
	Newspaper string `json:"newspaper"`
	Date      string `json:"date"`
	Edition   string `json:"edition"`
}

// EntityMetadata is derived from named entities on the first page.
type EntityMetadata struct {
	NewspaperName string `json:"newspaper_name"`
	Edition       string `json:"edition"`
	Date          string `json:"date"`
}

// SaveReport summarizes one persistence step.
type SaveReport struct {
	Attempted int      `json:"attempted"`
	Saved     int      `json:"saved"`
	IDs       []string `json:"ids"`
	Aborted   bool     `json:"aborted"`
	Reason    string   `json:"reason,omitempty"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// PageChunk is a fixed-size group of consecutive normalized pages.
type PageChunk struct {
	Index     int    `json:"index"` // 1-based, matches chunk_<index>.txt
	FirstPage int    `json:"first_page"`
	LastPage  int    `json:"last_page"`
	Text      string `json:"text"`
}

// RunReport describes one pass of the pipeline over a PDF or a text file.
type RunReport struct {
	JobID      string   `json:"job_id"`
	SourceFile string   `json:"source_file"`
	Pages      int      `json:"pages"`
	ChunkFiles []string `json:"chunk_files"`
	Candidates int      `json:"candidates"`
	Articles   int      `json:"articles"`
	Saved      int      `json:"saved"`
}
