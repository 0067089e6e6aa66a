package summarizer

// Outcome is the result of one summarization call: either Success with text
// or Fallback with the reason the caller must use its local fallback.
type Outcome struct {
	text   string
	reason string
	ok     bool
}

func Success(text string) Outcome { return Outcome{text: text, ok: true} }

func Fallback(reason string) Outcome { return Outcome{reason: reason} }

func (o Outcome) OK() bool { return o.ok }

func (o Outcome) Text() string { return o.text }

func (o Outcome) Reason() string { return o.reason }
