package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/markdave123-py/newsprint/internal/core"
)

var _ core.EntityRecognizer = (*LLMEntityRecognizer)(nil)

const nerSystemPrompt = `You are a named entity recognizer for newspaper text.
Return ONLY a JSON array, no markdown fences. Each element is
{"text": "<exact span from the input>", "label": "<ORG|GPE|LOC|DATE|PERSON|EVENT>"}.
List entities in order of appearance. Copy spans exactly as written.`

var allowedLabels = map[string]bool{
	core.LabelOrg: true, core.LabelGPE: true, core.LabelLoc: true,
	core.LabelDate: true, core.LabelPerson: true, core.LabelEvent: true,
}

// LLMEntityRecognizer asks a language model to tag entities.
type LLMEntityRecognizer struct {
	llm      core.LLMProvider
	maxInput int
}

// NewLLMEntityRecognizer caps the text sent per call at maxInput runes (0 = 8000).
func NewLLMEntityRecognizer(llm core.LLMProvider, maxInput int) *LLMEntityRecognizer {
	if maxInput <= 0 {
		maxInput = 8000
	}
	return &LLMEntityRecognizer{llm: llm, maxInput: maxInput}
}

func (r *LLMEntityRecognizer) Recognize(ctx context.Context, text string) ([]core.Entity, error) {
	if runes := []rune(text); len(runes) > r.maxInput {
		text = string(runes[:r.maxInput])
	}
	body, err := r.llm.Generate(ctx, nerSystemPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("ner generate: %w", err)
	}
	return parseEntities(body, text)
}

// parseEntities decodes the model's JSON and drops unknown labels and spans
// that do not occur in the source text.
func parseEntities(body, source string) ([]core.Entity, error) {
	body = strings.TrimSpace(body)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	var raw []core.Entity
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("ner: failed to parse LLM JSON: %w", err)
	}

	out := make([]core.Entity, 0, len(raw))
	for _, e := range raw {
		e.Label = strings.ToUpper(strings.TrimSpace(e.Label))
		e.Text = strings.TrimSpace(e.Text)
		if !allowedLabels[e.Label] || e.Text == "" || !strings.Contains(source, e.Text) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
