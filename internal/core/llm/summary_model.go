package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/markdave123-py/newsprint/internal/core"
)

const summarySystemPrompt = `You condense newspaper text. Reply with the summary only: no preamble, no
bullet markers, no quotation marks. Use plain English sentences and keep names,
places and numbers exactly as written in the source.`

// ErrEmptySummary is returned when the model answers with nothing usable.
var ErrEmptySummary = errors.New("model returned an empty summary")

// LLMSummaryModel implements core.SummaryModel on top of any LLMProvider.
// Token budgets are measured with ApproxTokens.
type LLMSummaryModel struct {
	llm core.LLMProvider
}

func NewLLMSummaryModel(llm core.LLMProvider) *LLMSummaryModel {
	return &LLMSummaryModel{llm: llm}
}

func (m *LLMSummaryModel) CountTokens(text string) int {
	return ApproxTokens(text)
}

// Summarize asks for a summary within [minTokens, maxTokens] and truncates
// answers that overshoot the upper bound.
func (m *LLMSummaryModel) Summarize(ctx context.Context, text string, minTokens, maxTokens int) (string, error) {
	prompt := fmt.Sprintf(
		"Summarize the following text in roughly %d to %d words.\n\nTEXT:\n%s",
		wordsFor(minTokens), wordsFor(maxTokens), text,
	)

	out, err := m.llm.Generate(ctx, summarySystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptySummary
	}
	return TruncateTokens(out, maxTokens), nil
}

// wordsFor converts a token budget into the word count quoted in prompts.
func wordsFor(tokens int) int {
	w := tokens * 3 / 4
	if w < 1 {
		w = 1
	}
	return w
}

// ApproxTokens is a cheap token estimator (~4 chars ≈ 1 token).
func ApproxTokens(s string) int {
	n := len([]rune(s))
	if n <= 0 {
		return 0
	}
	return (n + 3) / 4
}

// TruncateTokens cuts s at a word boundary so that ApproxTokens(s) <= maxTokens.
func TruncateTokens(s string, maxTokens int) string {
	if maxTokens <= 0 || ApproxTokens(s) <= maxTokens {
		return s
	}
	limit := maxTokens * 4
	runes := []rune(s)
	cut := string(runes[:limit])
	if i := strings.LastIndexAny(cut, " \n\t"); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}

var _ core.SummaryModel = (*LLMSummaryModel)(nil)
