package nlp

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/core/heuristics"
)

var _ core.EntityRecognizer = (*ProseRecognizer)(nil)

// proseLabels are the prose model labels kept; the rest are dropped.
var proseLabels = map[string]string{
	"PERSON": core.LabelPerson,
	"GPE":    core.LabelGPE,
	"ORG":    core.LabelOrg,
	"LOC":    core.LabelLoc,
	"EVENT":  core.LabelEvent,
}

// ProseRecognizer tags entities with the prose statistical model. Gazetteer
// table terms and date patterns are matched first and win on overlap, so known
// newspapers stay ORG and known cities stay GPE.
type ProseRecognizer struct {
	tables *GazetteerRecognizer
}

func NewProseRecognizer(t *heuristics.Tables) *ProseRecognizer {
	return &ProseRecognizer{tables: NewGazetteerRecognizer(t)}
}

func (r *ProseRecognizer) Recognize(ctx context.Context, text string) ([]core.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ss := r.tables.tableSpans(text)

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("prose document: %w", err)
	}

	cursor := 0
	for _, ent := range doc.Entities() {
		label, ok := proseLabels[ent.Label]
		if !ok || strings.TrimSpace(ent.Text) == "" {
			continue
		}
		// prose reports text only; entities arrive in document order.
		at := strings.Index(text[cursor:], ent.Text)
		if at >= 0 {
			at += cursor
		} else if at = strings.Index(text, ent.Text); at < 0 {
			continue
		}
		ss.add(at, at+len(ent.Text), label)
		cursor = at + len(ent.Text)
	}
	return ss.entities(), nil
}
