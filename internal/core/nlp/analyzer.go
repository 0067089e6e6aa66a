// Package nlp provides the text analysis service: sentence splitting, token
// tagging and entity recognition.
package nlp

import (
	"context"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/sentences"
	"github.com/clipperhouse/uax29/v2/words"

	"github.com/markdave123-py/newsprint/internal/core"
)

var _ core.TextAnalyzer = (*LocalAnalyzer)(nil)

// LocalAnalyzer segments text with Unicode text segmentation rules and
// delegates entities to a recognizer.
type LocalAnalyzer struct {
	ner core.EntityRecognizer
}

// NewLocalAnalyzer builds an analyzer; a nil recognizer yields no entities.
func NewLocalAnalyzer(ner core.EntityRecognizer) *LocalAnalyzer {
	return &LocalAnalyzer{ner: ner}
}

func (a *LocalAnalyzer) Analyze(ctx context.Context, text string) (*core.Analysis, error) {
	out := &core.Analysis{
		Sentences: Sentences(text),
		Tokens:    Tokenize(text),
	}
	if a.ner == nil {
		return out, nil
	}
	ents, err := a.ner.Recognize(ctx, text)
	if err != nil {
		return nil, err
	}
	out.Entities = ents
	return out, nil
}

// Sentences returns the trimmed, non-empty sentences of text.
func Sentences(text string) []string {
	var out []string
	seg := sentences.FromString(text)
	for seg.Next() {
		s := strings.TrimSpace(seg.Value())
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Tokenize returns every word-like token with lemma and stop-word flags.
// Whitespace and punctuation segments are skipped.
func Tokenize(text string) []core.Token {
	var out []core.Token
	seg := words.FromString(text)
	for seg.Next() {
		w := seg.Value()
		if !hasLetterOrDigit(w) {
			continue
		}
		lower := strings.ToLower(w)
		out = append(out, core.Token{
			Text:    w,
			Lemma:   Lemma(lower),
			IsStop:  IsStopWord(lower),
			IsAlpha: isAlpha(w),
		})
	}
	return out
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
