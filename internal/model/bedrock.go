package model

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// bedrockMessage and bedrockRequest/Response mirror the Converse-style
// Anthropic-on-Bedrock wire format used elsewhere in the platform
// (internal/agent/bedrock_agent.go), reused here for structured
// relevance/classification prompts instead of open-ended chat.
type bedrockMessage struct {
	Role    string                 `json:"role"`
	Content []bedrockContentBlock `json:"content"`
}

type bedrockContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	System           string           `json:"system,omitempty"`
	Messages         []bedrockMessage `json:"messages"`
	Temperature      float64          `json:"temperature,omitempty"`
}

type bedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// BedrockClient is the subset of *bedrockruntime.Client this package calls,
// narrowed to ease testing with a stub.
type BedrockClient interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

func invoke(ctx context.Context, client BedrockClient, modelID, system, userMessage string) (string, error) {
	req := bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        256,
		System:           system,
		Temperature:      0,
		Messages: []bedrockMessage{
			{Role: "user", Content: []bedrockContentBlock{{Type: "text", Text: userMessage}}},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("model: marshal bedrock request: %w", err)
	}

	out, err := client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("model: bedrock invoke: %w", err)
	}

	var resp bedrockResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("model: parse bedrock response: %w", err)
	}

	var text strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	return text.String(), nil
}

// BedrockRelevanceScorer asks the configured model for a single 0..1
// relevance confidence, parsed from a plain numeric response.
type BedrockRelevanceScorer struct {
	client  BedrockClient
	modelID string
}

// NewBedrockRelevanceScorer builds a relevance scorer backed by Bedrock.
func NewBedrockRelevanceScorer(client BedrockClient, modelID string) *BedrockRelevanceScorer {
	return &BedrockRelevanceScorer{client: client, modelID: modelID}
}

const relevanceSystemPrompt = `You score whether an email is about a job application (received after applying for a job, an interview invitation, an offer, a rejection, or an acceptance confirmation). Respond with ONLY a number between 0 and 1, nothing else.`

func (s *BedrockRelevanceScorer) Score(ctx context.Context, subject, body string) (float64, error) {
	prompt := fmt.Sprintf("Subject: %s\n\nBody: %s", subject, truncate(body, 4000))
	text, err := invoke(ctx, s.client, s.modelID, relevanceSystemPrompt, prompt)
	if err != nil {
		return 0, err
	}
	return parseFloat(text)
}

// BedrockClassifier asks the configured model to score the email against
// the fixed five-label taxonomy, parsed from a JSON object response.
type BedrockClassifier struct {
	client  BedrockClient
	modelID string
}

// NewBedrockClassifier builds a zero-shot classifier backed by Bedrock.
func NewBedrockClassifier(client BedrockClient, modelID string) *BedrockClassifier {
	return &BedrockClassifier{client: client, modelID: modelID}
}

const classifierSystemPrompt = `You classify a job-application-related email into exactly these stages: applied, interview, offer, accepted, rejected. Respond with ONLY a JSON object mapping each of those five keys to a confidence between 0 and 1, summing to roughly 1. Example: {"applied":0.1,"interview":0.7,"offer":0.1,"accepted":0.05,"rejected":0.05}`

func (c *BedrockClassifier) Classify(ctx context.Context, text string) ([]LabelScore, error) {
	response, err := invoke(ctx, c.client, c.modelID, classifierSystemPrompt, truncate(text, 4000))
	if err != nil {
		return nil, err
	}

	var scores map[string]float64
	if err := json.Unmarshal([]byte(extractJSON(response)), &scores); err != nil {
		return nil, fmt.Errorf("model: parse classifier response: %w", err)
	}

	out := make([]LabelScore, 0, len(AllLabels))
	for _, label := range AllLabels {
		out = append(out, LabelScore{Label: label, Confidence: scores[string(label)]})
	}
	sortByConfidenceDesc(out)
	return out, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("model: non-numeric relevance response %q: %w", s, err)
	}
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return f, nil
}

func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

func sortByConfidenceDesc(scores []LabelScore) {
	for i := 1; i < len(scores); i++ {
		for j := i; j > 0 && scores[j].Confidence > scores[j-1].Confidence; j-- {
			scores[j], scores[j-1] = scores[j-1], scores[j]
		}
	}
}
