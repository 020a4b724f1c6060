package pii

import "regexp"

// NERResult is the minimal named-entity-recognition output this pipeline
// needs: how many entities of each target category were found and
// redacted. Span-level detail isn't exposed because this layer always
// redacts in place and reports counts only.
type NERResult struct {
	Categories map[string]int
}

// NERTagger finds and redacts PERSON/ORG/LOCATION-style entities in text,
// returning the redacted text and per-category counts. The model-backed
// implementation lives in internal/model; HeuristicTagger below is the
// dependency-free fallback used when no NER endpoint is configured.
type NERTagger interface {
	Redact(text string) (string, NERResult)
}

var capitalizedRun = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2})\b`)

// commonCapitalizedWords are words that are capitalized for reasons other
// than being a name (sentence starts, days, months) and shouldn't be
// treated as PERSON/ORG entities by the heuristic tagger.
var commonCapitalizedWords = map[string]bool{
	"The": true, "A": true, "An": true, "This": true, "That": true, "We": true,
	"I": true, "You": true, "Thank": true, "Thanks": true, "Dear": true, "Hi": true, "Hello": true,
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
}

// HeuristicTagger redacts runs of 1-3 capitalized words as [PERSON], a
// crude but dependency-free stand-in for a real NER model. It never
// touches text already inside a bracketed placeholder.
type HeuristicTagger struct{}

// NewHeuristicTagger builds the regex-based fallback NER tagger.
func NewHeuristicTagger() *HeuristicTagger { return &HeuristicTagger{} }

func (HeuristicTagger) Redact(text string) (string, NERResult) {
	result := NERResult{Categories: map[string]int{"PERSON": 0}}
	protected := protectedRanges(text)
	matches := capitalizedRun.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, result
	}

	var b []byte
	last := 0
	for _, m := range matches {
		start, end := m[2], m[3]
		word := text[start:end]
		firstWord := word
		if sp := indexByte(word, ' '); sp >= 0 {
			firstWord = word[:sp]
		}
		if commonCapitalizedWords[firstWord] {
			continue
		}
		if overlaps(start, end, protected) {
			continue
		}
		b = append(b, text[last:start]...)
		b = append(b, PlaceholderPerson...)
		last = end
		result.Categories["PERSON"]++
	}
	b = append(b, text[last:]...)
	return string(b), result
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}
