package nlp

import (
	"github.com/kljensen/snowball/english"
)

// newsStopWords extends the snowball list with words that are frequent in
// news copy but never useful as keywords.
var newsStopWords = map[string]bool{
	"said": true, "says": true, "also": true, "mr": true, "ms": true, "per": true,
	"via": true, "one": true, "two": true, "three": true, "however": true, "since": true,
	"yet": true, "still": true, "ever": true, "even": true, "many": true, "much": true,
	"may": true, "might": true, "must": true, "shall": true, "us": true, "among": true,
	"within": true, "without": true, "upon": true,
}

// IsStopWord reports whether the lowercase word is an English function word.
func IsStopWord(lower string) bool {
	return english.IsStopWord(lower) || newsStopWords[lower]
}

// irregular maps inflections the snowball stemmer cannot reduce.
var irregular = map[string]string{
	"was": "be", "were": "be", "is": "be", "are": "be", "been": "be",
	"has": "have", "had": "have", "did": "do", "does": "do",
	"said": "say", "says": "say", "made": "make", "took": "take", "taken": "take",
	"went": "go", "gone": "go", "came": "come", "gave": "give", "given": "give",
	"held": "hold", "met": "meet", "led": "lead", "won": "win", "left": "leave",
	"children": "child", "men": "man", "women": "woman",
}

// Lemma returns the grouping key of a lowercase word: the irregular base form
// when known, otherwise its snowball (Porter2) stem. Stop words are kept whole.
func Lemma(lower string) string {
	if base, ok := irregular[lower]; ok {
		return base
	}
	return english.Stem(lower, false)
}
