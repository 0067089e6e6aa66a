package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/models"
)

var _ core.SummarySaver = (*SummaryService)(nil)

// DefaultPingTimeout bounds the pre-flight store check.
const DefaultPingTimeout = 3 * time.Second

// SummaryService persists article records under their content id.
type SummaryService struct {
	store       core.ArticleStore
	embedder    core.EmbeddingProvider
	pingTimeout time.Duration
	log         logrus.FieldLogger
	now         func() time.Time
}

// NewSummaryService wires the store. embedder is only used when the store
// implements core.VectorSearcher; pass nil to skip embeddings.
func NewSummaryService(store core.ArticleStore, embedder core.EmbeddingProvider, pingTimeout time.Duration, log logrus.FieldLogger) *SummaryService {
	if pingTimeout <= 0 {
		pingTimeout = DefaultPingTimeout
	}
	if _, ok := store.(core.VectorSearcher); !ok {
		embedder = nil
	}
	return &SummaryService{
		store: store, embedder: embedder, pingTimeout: pingTimeout,
		log: log, now: time.Now,
	}
}

// ContentID is the hex md5 of the heading followed directly by the points
// joined with single spaces. Identical content always maps to the same id.
func ContentID(heading string, points []string) string {
	sum := md5.Sum([]byte(heading + strings.Join(points, " ")))
	return hex.EncodeToString(sum[:])
}

// SaveSummaries upserts every record. An unreachable store aborts the whole
// step and is reported in the result; single upsert failures are logged and
// skipped.
func (s *SummaryService) SaveSummaries(ctx context.Context, records []models.ArticleRecord, sourceFile string) models.SaveReport {
	report := models.SaveReport{Attempted: len(records)}
	if len(records) == 0 {
		return report
	}
	log := s.log.WithFields(logrus.Fields{"source": sourceFile, "records": len(records)})

	if s.store == nil {
		report.Aborted = true
		report.Reason = "no document store configured"
		log.Warn("summaries not saved: " + report.Reason)
		return report
	}

	pctx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	err := s.store.Ping(pctx)
	cancel()
	if err != nil {
		err = fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
		report.Aborted = true
		report.Reason = err.Error()
		log.WithError(err).Error("summaries not saved")
		return report
	}

	vectors := s.embed(ctx, records, log)
	ts := s.now().UTC()

	for idx, rec := range records {
		doc := &models.StoredDocument{
			ID:            ContentID(rec.Heading, rec.SummaryPoints),
			SourceFile:    sourceFile,
			Timestamp:     ts,
			ArticleRecord: rec,
		}
		if vectors != nil {
			doc.Embedding = vectors[idx]
		}
		if err := s.store.UpsertArticle(ctx, doc); err != nil {
			log.WithError(err).WithField("id", doc.ID).Error("upsert failed")
			continue
		}
		report.Saved++
		report.IDs = append(report.IDs, doc.ID)
	}

	log.WithField("saved", report.Saved).Info("summaries saved")
	return report
}

// embed returns one vector per record, or nil when embeddings are off or fail.
func (s *SummaryService) embed(ctx context.Context, records []models.ArticleRecord, log logrus.FieldLogger) [][]float32 {
	if s.embedder == nil {
		return nil
	}
	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = EmbeddingText(rec)
	}
	vecs, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		log.WithError(err).Warn("embedding failed, saving without vectors")
		return nil
	}
	if len(vecs) != len(records) {
		log.WithField("vectors", len(vecs)).Warn("embedding count mismatch, saving without vectors")
		return nil
	}
	return vecs
}

// EmbeddingText is the heading plus the paragraph, or the points when there
// is no paragraph.
func EmbeddingText(rec models.ArticleRecord) string {
	body := strings.Join(rec.SummaryPoints, " ")
	if rec.SummaryParagraph != nil {
		body = *rec.SummaryParagraph
	}
	return rec.Heading + "\n" + body
}
