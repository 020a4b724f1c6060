package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ignite/careertrack/internal/domain"
	"github.com/ignite/careertrack/internal/pkg/httpretry"
)

// HTTPRelevanceScorer calls out to a small JSON HTTP inference sidecar:
// POST {subject, body} -> {"score": float}. This is the concrete
// idiomatic-Go way to treat the model as the black box the pipeline's
// Relevance stage assumes it to be, without binding to a specific ML
// runtime.
type HTTPRelevanceScorer struct {
	endpoint string
	client   *httpretry.RetryClient
}

// NewHTTPRelevanceScorer builds a relevance scorer calling the given
// sidecar endpoint.
func NewHTTPRelevanceScorer(endpoint string) *HTTPRelevanceScorer {
	return &HTTPRelevanceScorer{
		endpoint: endpoint,
		client:   httpretry.NewRetryClient(&http.Client{Timeout: 10 * time.Second}, domain.MaxRetries),
	}
}

type relevanceRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type relevanceResponse struct {
	Score float64 `json:"score"`
}

func (s *HTTPRelevanceScorer) Score(ctx context.Context, subject, body string) (float64, error) {
	payload, err := json.Marshal(relevanceRequest{Subject: subject, Body: body})
	if err != nil {
		return 0, fmt.Errorf("model: marshal relevance request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("model: build relevance request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("model: relevance sidecar call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("model: relevance sidecar returned status %d", resp.StatusCode)
	}

	var parsed relevanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("model: decode relevance response: %w", err)
	}
	return parsed.Score, nil
}

// HTTPClassifier calls a zero-shot classification sidecar:
// POST {text, labels} -> {"scores": {label: confidence}}.
type HTTPClassifier struct {
	endpoint string
	client   *httpretry.RetryClient
}

// NewHTTPClassifier builds a classifier calling the given sidecar endpoint.
func NewHTTPClassifier(endpoint string) *HTTPClassifier {
	return &HTTPClassifier{
		endpoint: endpoint,
		client:   httpretry.NewRetryClient(&http.Client{Timeout: 10 * time.Second}, domain.MaxRetries),
	}
}

type classifyRequest struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels"`
}

type classifyResponse struct {
	Scores map[string]float64 `json:"scores"`
}

func (c *HTTPClassifier) Classify(ctx context.Context, text string) ([]LabelScore, error) {
	labels := make([]string, len(AllLabels))
	for i, l := range AllLabels {
		labels[i] = string(l)
	}

	payload, err := json.Marshal(classifyRequest{Text: text, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("model: marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("model: build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model: classify sidecar call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model: classify sidecar returned status %d", resp.StatusCode)
	}

	var parsed classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("model: decode classify response: %w", err)
	}

	out := make([]LabelScore, 0, len(AllLabels))
	for _, label := range AllLabels {
		out = append(out, LabelScore{Label: label, Confidence: parsed.Scores[string(label)]})
	}
	sortByConfidenceDesc(out)
	return out, nil
}
