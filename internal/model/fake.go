package model

import (
	"context"
	"strings"

	"github.com/ignite/careertrack/internal/pii"
)

// FakeRelevanceScorer returns a fixed score, or a per-keyword override when
// the subject or body contains one of Overrides's keys, for worker-stage
// tests that need deterministic relevance decisions without a live model.
type FakeRelevanceScorer struct {
	Default   float64
	Overrides map[string]float64
}

// NewFakeRelevanceScorer builds a fake scorer returning Default for
// anything not matched by Overrides.
func NewFakeRelevanceScorer(defaultScore float64) *FakeRelevanceScorer {
	return &FakeRelevanceScorer{Default: defaultScore, Overrides: map[string]float64{}}
}

func (f *FakeRelevanceScorer) Score(_ context.Context, subject, body string) (float64, error) {
	haystack := strings.ToLower(subject + " " + body)
	for keyword, score := range f.Overrides {
		if strings.Contains(haystack, strings.ToLower(keyword)) {
			return score, nil
		}
	}
	return f.Default, nil
}

// FakeClassifier returns a fixed winning label (with the rest of the
// taxonomy at near-zero confidence) unless a keyword override matches.
type FakeClassifier struct {
	DefaultLabel ClassificationLabel
	Overrides    map[string]ClassificationLabel
}

// NewFakeClassifier builds a fake classifier defaulting to DefaultLabel.
func NewFakeClassifier(defaultLabel ClassificationLabel) *FakeClassifier {
	return &FakeClassifier{DefaultLabel: defaultLabel, Overrides: map[string]ClassificationLabel{}}
}

func (f *FakeClassifier) Classify(_ context.Context, text string) ([]LabelScore, error) {
	winner := f.DefaultLabel
	lower := strings.ToLower(text)
	for keyword, label := range f.Overrides {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			winner = label
			break
		}
	}

	out := make([]LabelScore, 0, len(AllLabels))
	for _, label := range AllLabels {
		confidence := 0.02
		if label == winner {
			confidence = 0.9
		}
		out = append(out, LabelScore{Label: label, Confidence: confidence})
	}
	sortByConfidenceDesc(out)
	return out, nil
}

// FakeNERTagger implements pii.NERTagger by delegating to the
// dependency-free heuristic tagger, giving tests the same interface shape
// as a model-backed tagger without a live model call.
type FakeNERTagger struct {
	inner *pii.HeuristicTagger
}

// NewFakeNERTagger builds a fake NER tagger backed by the heuristic tagger.
func NewFakeNERTagger() *FakeNERTagger {
	return &FakeNERTagger{inner: pii.NewHeuristicTagger()}
}

func (f *FakeNERTagger) Redact(text string) (string, pii.NERResult) {
	return f.inner.Redact(text)
}
