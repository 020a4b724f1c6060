package pii

// Redactor runs the full five-layer pipeline over one text field: regex
// structured-PII sweep, NER, secret/entropy sweep, money/number sweep,
// mixed-token sweep, then whitespace normalization. The order is fixed and
// matches the layer numbering used throughout this package's doc comments.
type Redactor struct {
	ner NERTagger
}

// New builds a Redactor using the given NER tagger. Pass pii.NewHeuristicTagger()
// when no model-backed tagger is configured.
func New(ner NERTagger) *Redactor {
	return &Redactor{ner: ner}
}

// Result is one field's full redaction outcome.
type Result struct {
	Text   string
	Counts Counts
}

// Redact runs all five layers over text in order and returns the final
// text plus merged per-category counts.
func (r *Redactor) Redact(text string) Result {
	final := Counts{}

	text, c1 := RedactLayerOne(text)
	merge(final, c1)

	text, nerResult := r.ner.Redact(text)
	for k, v := range nerResult.Categories {
		final.add(k, v)
	}

	text, c3 := RedactSecrets(text)
	merge(final, c3)

	text, c4 := RedactMoneyAndNumbers(text)
	merge(final, c4)

	text, c5 := RedactMixedTokens(text)
	merge(final, c5)

	text = NormalizeWhitespace(text)

	return Result{Text: text, Counts: final}
}

// RedactFields runs Redact over a subject and body pair and returns their
// merged counts, matching the Relevance stage's per-message call shape.
func (r *Redactor) RedactFields(subject, body string) (subjectOut, bodyOut string, counts Counts) {
	subjectResult := r.Redact(subject)
	bodyResult := r.Redact(body)

	counts = Counts{}
	merge(counts, subjectResult.Counts)
	merge(counts, bodyResult.Counts)

	return subjectResult.Text, bodyResult.Text, counts
}

func merge(dst, src Counts) {
	for k, v := range src {
		dst.add(k, v)
	}
}
