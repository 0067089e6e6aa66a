package core

import "context"

type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// SummaryModel shortens text to a token budget. CountTokens is the tokenizer the
// budgets are measured with.
type SummaryModel interface {
	Summarize(ctx context.Context, text string, minTokens, maxTokens int) (string, error)
	CountTokens(text string) int
}

// Entity labels produced by a TextAnalyzer.
const (
	LabelOrg    = "ORG"
	LabelGPE    = "GPE"
	LabelLoc    = "LOC"
	LabelDate   = "DATE"
	LabelPerson = "PERSON"
	LabelEvent  = "EVENT"
)

// Token is one word-like unit of analyzed text.
type Token struct {
	Text    string
	Lemma   string
	IsStop  bool
	IsAlpha bool
}

// Entity is a labelled span of analyzed text.
type Entity struct {
	Text  string
	Label string
}

// Analysis is what a TextAnalyzer returns for one input.
type Analysis struct {
	Sentences []string
	Tokens    []Token
	Entities  []Entity
}

// TextAnalyzer splits sentences, tags tokens and recognizes entities.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string) (*Analysis, error)
}

// EntityRecognizer finds entities only; analyzers delegate to one.
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
}
