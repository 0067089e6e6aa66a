// Package summarizer turns article candidates into ArticleRecords: heading,
// summary points, paragraph, hashtags and content metadata.
package summarizer

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/core/heuristics"
	"github.com/markdave123-py/newsprint/internal/core/nlp"
	"github.com/markdave123-py/newsprint/internal/models"
)

// Caps on the summary points and hashtags of one record.
const (
	MaxPoints       = 5
	MaxHashtags     = 5
	pointWindow     = 6  // sentences per point chunk
	minChunkTokens  = 40 // chunks below this are not summarized
	minParaTokens   = 40 // paragraph only above this
	keywordPool     = MaxHashtags * 3
	previewSentence = 4
	minPointLen     = 10
	untitled        = "Untitled"
)

// tagDenylist holds words too generic to be useful as hashtags.
var tagDenylist = map[string]bool{
	"news": true, "centre": true, "government": true, "ajith": true, "home": true,
	"factory": true, "kill": true, "day": true, "body": true, "cooperation": true,
	"halt": true, "facility": true, "france": true, "batch": true, "expand": true, "lead": true,
}

var tagLabels = map[string]bool{
	core.LabelGPE: true, core.LabelOrg: true, core.LabelEvent: true, core.LabelPerson: true,
}

var _ core.ArticleSummarizer = (*Summarizer)(nil)

// Summarizer builds records. Model or analyzer failures never escape Article.
type Summarizer struct {
	model    core.SummaryModel
	analyzer core.TextAnalyzer
	meta     *heuristics.Extractor
	log      logrus.FieldLogger

	countTokens func(string) int
}

// New builds a Summarizer. A nil model leaves every summary on its local
// fallback and budgets are counted in words.
func New(model core.SummaryModel, analyzer core.TextAnalyzer, meta *heuristics.Extractor, log logrus.FieldLogger) *Summarizer {
	if meta == nil {
		meta = heuristics.New(nil)
	}
	countTokens := wordCount
	if model != nil {
		countTokens = model.CountTokens
	}
	return &Summarizer{model: model, analyzer: analyzer, meta: meta, log: log, countTokens: countTokens}
}

func wordCount(text string) int { return len(strings.Fields(text)) }

// Article summarizes one candidate. ok is false when no summary point survived.
func (s *Summarizer) Article(ctx context.Context, text string) (*models.ArticleRecord, bool) {
	cleaned := CleanArticle(text)
	analysis := s.analyze(ctx, cleaned)

	heading := s.Heading(ctx, analysis.Sentences)
	points := s.Points(ctx, analysis.Sentences)
	if len(points) == 0 {
		return nil, false
	}

	newspaper, date, city := s.meta.ContentMetadata(cleaned)
	return &models.ArticleRecord{
		Heading:          heading,
		SummaryPoints:    points,
		SummaryParagraph: s.Paragraph(ctx, cleaned),
		Hashtags:         Hashtags(analysis, MaxHashtags),
		ArticleText:      cleaned,
		Newspaper:        models.StringPtr(newspaper),
		Date:             date,
		City:             city,
	}, true
}

// analyze falls back to local segmentation without entities.
func (s *Summarizer) analyze(ctx context.Context, text string) *core.Analysis {
	a, err := s.analyzer.Analyze(ctx, text)
	if err == nil && a != nil {
		return a
	}
	s.log.WithError(err).Warn("text analysis failed, using local segmentation")
	return &core.Analysis{Sentences: nlp.Sentences(text), Tokens: nlp.Tokenize(text)}
}

// summarize wraps the model call in an Outcome.
func (s *Summarizer) summarize(ctx context.Context, text string, minTokens, maxTokens int) Outcome {
	if s.model == nil {
		return Fallback("no summary model configured")
	}
	out, err := s.model.Summarize(ctx, text, minTokens, maxTokens)
	if err != nil {
		return Fallback(err.Error())
	}
	return Success(out)
}

// Heading summarizes the first two sentences into a short title.
func (s *Summarizer) Heading(ctx context.Context, sentences []string) string {
	if len(sentences) == 0 {
		return untitled
	}
	intro := strings.Join(sentences[:min(2, len(sentences))], " ")
	maxTokens := min(20, max(5, s.countTokens(intro)/2))

	res := s.summarize(ctx, intro, 4, maxTokens)
	if !res.OK() {
		s.log.WithField("reason", res.Reason()).Debug("heading fallback")
		return sentences[0]
	}
	return CleanHeading(strings.TrimSpace(strings.ReplaceAll(res.Text(), ".", "")))
}

// Points summarizes every window of six sentences and keeps the resulting
// sentences longer than ten characters, up to MaxPoints.
func (s *Summarizer) Points(ctx context.Context, sentences []string) []string {
	var points []string
	for i := 0; i < len(sentences) && len(points) < MaxPoints; i += pointWindow {
		chunk := strings.Join(sentences[i:min(i+pointWindow, len(sentences))], " ")
		tokens := s.countTokens(chunk)
		if tokens < minChunkTokens {
			continue
		}
		maxTokens := min(100, max(30, tokens/2))

		res := s.summarize(ctx, chunk, 20, maxTokens)
		if !res.OK() {
			s.log.WithFields(logrus.Fields{"window": i / pointWindow, "reason": res.Reason()}).Debug("point chunk skipped")
			continue
		}
		for _, p := range nlp.Sentences(res.Text()) {
			if p = strings.TrimSpace(p); len(p) > minPointLen {
				points = append(points, p)
			}
		}
	}
	if len(points) > MaxPoints {
		points = points[:MaxPoints]
	}
	return points
}

// Paragraph returns a paragraph summary, or nil for short text or a failed call.
func (s *Summarizer) Paragraph(ctx context.Context, text string) *string {
	if s.countTokens(text) <= minParaTokens {
		return nil
	}
	res := s.summarize(ctx, text, 40, 150)
	if !res.OK() {
		s.log.WithField("reason", res.Reason()).Debug("paragraph fallback")
		return nil
	}
	return models.StringPtr(strings.TrimSpace(res.Text()))
}

// Hashtags combines frequent lemmas with entities named in the opening
// sentences. Tags are lowercase without spaces, sorted, "#"-prefixed.
func Hashtags(a *core.Analysis, limit int) []string {
	set := map[string]bool{}

	for _, kw := range nlp.TopTerms(a.Tokens, keywordPool) {
		kw = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(kw)), " ", "")
		if !tagDenylist[kw] && len(kw) > 2 && len(kw) < 25 {
			set[kw] = true
		}
	}

	preview := compact(strings.Join(a.Sentences[:min(previewSentence, len(a.Sentences))], " "))
	for _, ent := range a.Entities {
		if !tagLabels[ent.Label] {
			continue
		}
		tag := compact(ent.Text)
		if tag != "" && !tagDenylist[tag] && strings.Contains(preview, tag) {
			set[tag] = true
		}
	}

	tags := make([]string, 0, len(set))
	for k := range set {
		tags = append(tags, k)
	}
	sort.Strings(tags)
	if len(tags) > limit {
		tags = tags[:limit]
	}
	for i := range tags {
		tags[i] = "#" + tags[i]
	}
	return tags
}

func compact(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "")
}
