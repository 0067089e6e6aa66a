package services

import (
	"context"
	"errors"
	"testing"
	"time"

	db "github.com/markdave123-py/newsprint/internal/core/database"
	"github.com/markdave123-py/newsprint/internal/logger"
	"github.com/markdave123-py/newsprint/internal/models"
)

type fakeStore struct {
	pingErr   error
	upsertErr map[string]error
	docs      map[string]*models.StoredDocument
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) UpsertArticle(ctx context.Context, doc *models.StoredDocument) error {
	if err := f.upsertErr[doc.Heading]; err != nil {
		return err
	}
	if f.docs == nil {
		f.docs = map[string]*models.StoredDocument{}
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeStore) GetArticle(ctx context.Context, id string) (*models.StoredDocument, error) {
	return f.docs[id], nil
}

func (f *fakeStore) ListArticles(ctx context.Context, _ models.ArticleFilter) ([]models.StoredDocument, error) {
	return nil, nil
}

func (f *fakeStore) Close() error { return nil }

// fakeVectorStore adds SearchArticles so the service embeds before saving.
type fakeVectorStore struct{ fakeStore }

func (f *fakeVectorStore) SearchArticles(ctx context.Context, vec []float32, limit int) ([]models.StoredDocument, error) {
	return nil, nil
}

type fakeEmbedder struct {
	err   error
	texts []string
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.texts = texts
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func record(heading string, points ...string) models.ArticleRecord {
	return models.ArticleRecord{Heading: heading, SummaryPoints: points, ArticleText: heading + " text"}
}

func TestContentID(t *testing.T) {
	got := ContentID("Floods hit Chennai", []string{"Rain lashed the city.", "Schools shut."})
	if got != "18b4549e14b3da02248848256c5b6fd8" {
		t.Errorf("ContentID = %s", got)
	}
	if ContentID("", nil) != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Error("empty content should hash the empty string")
	}
	// heading and points are concatenated without a separator
	if ContentID("AB", []string{"C", "D"}) != ContentID("A", []string{"BC D"}) {
		t.Error("expected the concatenation to collide")
	}
}

func TestSaveSummaries(t *testing.T) {
	ctx := context.Background()
	recs := []models.ArticleRecord{record("One", "a."), record("Two", "b."), record("Three", "c.")}

	tests := []struct {
		name        string
		store       *fakeStore
		wantSaved   int
		wantAborted bool
	}{
		{"all saved", &fakeStore{}, 3, false},
		{"store down", &fakeStore{pingErr: errors.New("connection refused")}, 0, true},
		{"one upsert fails", &fakeStore{upsertErr: map[string]error{"Two": errors.New("write conflict")}}, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSummaryService(tt.store, nil, time.Second, logger.Discard())
			rep := svc.SaveSummaries(ctx, recs, "chunks/chunk_1.txt")

			if rep.Attempted != 3 {
				t.Errorf("Attempted = %d", rep.Attempted)
			}
			if rep.Saved != tt.wantSaved || len(rep.IDs) != tt.wantSaved {
				t.Errorf("Saved = %d, IDs = %v, want %d", rep.Saved, rep.IDs, tt.wantSaved)
			}
			if rep.Aborted != tt.wantAborted {
				t.Errorf("Aborted = %v, want %v", rep.Aborted, tt.wantAborted)
			}
			if tt.wantAborted && rep.Reason == "" {
				t.Error("aborted report should carry a reason")
			}
		})
	}
}

func TestSaveSummaries_StoredFields(t *testing.T) {
	store := &fakeStore{}
	svc := NewSummaryService(store, nil, 0, logger.Discard())
	fixed := time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	rec := record("Heading", "Point one.")
	rep := svc.SaveSummaries(context.Background(), []models.ArticleRecord{rec}, "chunks/chunk_2.txt")
	if rep.Saved != 1 {
		t.Fatalf("Saved = %d", rep.Saved)
	}

	doc := store.docs[ContentID("Heading", []string{"Point one."})]
	if doc == nil {
		t.Fatal("document not stored under its content id")
	}
	if doc.SourceFile != "chunks/chunk_2.txt" || !doc.Timestamp.Equal(fixed) {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Embedding != nil {
		t.Error("plain stores should not get embeddings")
	}
}

func TestSaveSummaries_NoRecordsOrStore(t *testing.T) {
	svc := NewSummaryService(&fakeStore{pingErr: errors.New("down")}, nil, 0, logger.Discard())
	if rep := svc.SaveSummaries(context.Background(), nil, "x"); rep.Aborted || rep.Attempted != 0 {
		t.Errorf("empty batch should be a no-op, got %+v", rep)
	}

	svc = NewSummaryService(nil, nil, 0, logger.Discard())
	if rep := svc.SaveSummaries(context.Background(), []models.ArticleRecord{record("H", "p")}, "x"); !rep.Aborted {
		t.Errorf("missing store should abort, got %+v", rep)
	}
}

func TestSaveSummaries_Embeddings(t *testing.T) {
	ctx := context.Background()
	para := "The paragraph."
	recs := []models.ArticleRecord{record("One", "a.", "b."), record("Two", "c.")}
	recs[1].SummaryParagraph = &para

	store := &fakeVectorStore{}
	emb := &fakeEmbedder{}
	svc := NewSummaryService(store, emb, 0, logger.Discard())
	if rep := svc.SaveSummaries(ctx, recs, "f"); rep.Saved != 2 {
		t.Fatalf("Saved = %d", rep.Saved)
	}
	if emb.texts[0] != "One\na. b." || emb.texts[1] != "Two\nThe paragraph." {
		t.Errorf("embedding texts = %q", emb.texts)
	}
	doc := store.docs[ContentID("Two", []string{"c."})]
	if len(doc.Embedding) != 2 || doc.Embedding[0] != 1 {
		t.Errorf("Embedding = %v", doc.Embedding)
	}

	// a failing embedder still saves the records
	store = &fakeVectorStore{}
	svc = NewSummaryService(store, &fakeEmbedder{err: errors.New("quota")}, 0, logger.Discard())
	if rep := svc.SaveSummaries(ctx, recs, "f"); rep.Saved != 2 {
		t.Fatalf("Saved = %d after embed failure", rep.Saved)
	}

	// embedders are ignored for stores without vector search
	emb = &fakeEmbedder{}
	svc = NewSummaryService(&fakeStore{}, emb, 0, logger.Discard())
	svc.SaveSummaries(ctx, recs, "f")
	if emb.texts != nil {
		t.Error("embedder should not be called for a plain store")
	}
}

func TestSaveSummaries_IdempotentOnSQLite(t *testing.T) {
	ctx := context.Background()
	store, err := db.NewSQLiteClient(":memory:", logger.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	svc := NewSummaryService(store, nil, 0, logger.Discard())
	recs := []models.ArticleRecord{record("Same heading", "Same point.")}

	first := svc.SaveSummaries(ctx, recs, "chunk_1.txt")
	second := svc.SaveSummaries(ctx, recs, "chunk_1.txt")
	if first.IDs[0] != second.IDs[0] {
		t.Fatalf("ids differ: %s vs %s", first.IDs[0], second.IDs[0])
	}

	all, err := store.ListArticles(ctx, models.ArticleFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("got %d stored documents, want 1", len(all))
	}
}
