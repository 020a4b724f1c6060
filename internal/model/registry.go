package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/ignite/careertrack/internal/config"
	"github.com/ignite/careertrack/internal/pii"
)

// Registry resolves the configured backend ("bedrock" | "http" | "fake")
// into concrete RelevanceScorer, ZeroShotClassifier, and pii.NERTagger
// instances exactly once per process, mirroring the singleton client
// pattern the platform uses for its other shared SDK clients.
type Registry struct {
	relevance  RelevanceScorer
	classifier ZeroShotClassifier
	ner        pii.NERTagger
}

var (
	registryOnce sync.Once
	registry     *Registry
	registryErr  error
)

// NewRegistry builds (or returns the already-built) process-wide Registry
// for the given model configuration.
func NewRegistry(ctx context.Context, cfg appconfig.ModelConfig) (*Registry, error) {
	registryOnce.Do(func() {
		registry, registryErr = buildRegistry(ctx, cfg)
	})
	return registry, registryErr
}

func buildRegistry(ctx context.Context, cfg appconfig.ModelConfig) (*Registry, error) {
	switch cfg.Backend {
	case "bedrock":
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("model: load aws config: %w", err)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		return &Registry{
			relevance:  NewBedrockRelevanceScorer(client, cfg.RelevanceModelID),
			classifier: NewBedrockClassifier(client, cfg.ClassificationModelID),
			ner:        NewBedrockNERTagger(client, cfg.RelevanceModelID),
		}, nil

	case "http":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("model: http backend requires an endpoint")
		}
		return &Registry{
			relevance:  NewHTTPRelevanceScorer(cfg.Endpoint + "/relevance"),
			classifier: NewHTTPClassifier(cfg.Endpoint + "/classify"),
			ner:        pii.NewHeuristicTagger(),
		}, nil

	case "fake", "":
		return &Registry{
			relevance:  NewFakeRelevanceScorer(0.5),
			classifier: NewFakeClassifier(LabelApplied),
			ner:        NewFakeNERTagger(),
		}, nil

	default:
		return nil, fmt.Errorf("model: unknown backend %q", cfg.Backend)
	}
}

// Relevance returns the registry's configured relevance scorer.
func (r *Registry) Relevance() RelevanceScorer { return r.relevance }

// Classifier returns the registry's configured zero-shot classifier.
func (r *Registry) Classifier() ZeroShotClassifier { return r.classifier }

// NER returns the registry's configured NER tagger.
func (r *Registry) NER() pii.NERTagger { return r.ner }
