// Package model defines the pluggable inference interfaces the Relevance
// and Classifier stages depend on (spec §4.3, §4.5, §9): a relevance
// scorer and a zero-shot stage classifier, plus implementations of
// pii.NERTagger. The scorer and the classifier each have a Bedrock-backed
// implementation (grounded in internal/agent/bedrock_agent.go's
// bedrockruntime.InvokeModel usage), an HTTP-bridge implementation for a
// standalone inference sidecar, and a deterministic fake for tests. The NER
// tagger has a Bedrock-backed implementation and a fake only; the "http"
// backend uses pii.HeuristicTagger for NER.
// Selection is driven by config.ModelConfig.Backend.
package model

import "context"

// RelevanceScorer returns a 0..1 confidence that an email is job-application
// related, given its (already PII-redacted) subject and body.
type RelevanceScorer interface {
	Score(ctx context.Context, subject, body string) (float64, error)
}

// ClassificationLabel is one of the fixed five application stages the
// Classifier can assign.
type ClassificationLabel string

const (
	LabelApplied   ClassificationLabel = "applied"
	LabelInterview ClassificationLabel = "interview"
	LabelOffer     ClassificationLabel = "offer"
	LabelAccepted  ClassificationLabel = "accepted"
	LabelRejected  ClassificationLabel = "rejected"
)

// AllLabels is the fixed taxonomy the zero-shot classifier is constrained
// to, in the order candidate labels are presented to the model.
var AllLabels = []ClassificationLabel{
	LabelApplied, LabelInterview, LabelOffer, LabelAccepted, LabelRejected,
}

// LabelScore pairs a candidate label with the model's confidence in it.
type LabelScore struct {
	Label      ClassificationLabel
	Confidence float64
}

// ZeroShotClassifier scores normalized text against the fixed label
// taxonomy and returns every label's score, sorted by confidence descending.
type ZeroShotClassifier interface {
	Classify(ctx context.Context, text string) ([]LabelScore, error)
}
