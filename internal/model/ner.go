package model

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ignite/careertrack/internal/pii"
)

// BedrockNERTagger implements pii.NERTagger against a Bedrock model,
// asking it to return every PERSON/ORG/LOCATION span it finds so they
// can be substituted with the matching bracket placeholder before the
// secret, number and mixed-token layers run. Used instead of pii.HeuristicTagger when the
// pipeline is configured with an NER-capable backend.
type BedrockNERTagger struct {
	client  BedrockClient
	modelID string
}

// NewBedrockNERTagger builds an NER tagger backed by Bedrock.
func NewBedrockNERTagger(client BedrockClient, modelID string) *BedrockNERTagger {
	return &BedrockNERTagger{client: client, modelID: modelID}
}

const nerSystemPrompt = `You find named entities in text: people's names, organization names, and locations. Respond with ONLY a JSON object: {"entities": [{"text": "...", "category": "PERSON"|"ORG"|"LOCATION"}]}. List each distinct entity once.`

type nerEntity struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type nerEnvelope struct {
	Entities []nerEntity `json:"entities"`
}

func (t *BedrockNERTagger) Redact(text string) (string, pii.NERResult) {
	result := pii.NERResult{Categories: map[string]int{}}
	if strings.TrimSpace(text) == "" {
		return text, result
	}

	response, err := invoke(context.Background(), t.client, t.modelID, nerSystemPrompt, truncate(text, 4000))
	if err != nil {
		// Model calls are best-effort for this layer: a failed NER pass
		// falls through to the remaining regex layers untouched rather
		// than failing the whole redaction pipeline.
		return text, result
	}

	var envelope nerEnvelope
	if err := json.Unmarshal([]byte(extractJSON(response)), &envelope); err != nil {
		return text, result
	}

	out := text
	for _, e := range envelope.Entities {
		if e.Text == "" {
			continue
		}
		placeholder := placeholderFor(e.Category)
		if placeholder == "" {
			continue
		}
		replaced := strings.Count(out, e.Text)
		if replaced == 0 {
			continue
		}
		out = strings.ReplaceAll(out, e.Text, placeholder)
		result.Categories[categoryFor(e.Category)] += replaced
	}
	return out, result
}

func placeholderFor(category string) string {
	switch strings.ToUpper(category) {
	case "PERSON":
		return string(pii.PlaceholderPerson)
	case "ORG", "ORGANIZATION":
		return string(pii.PlaceholderOrg)
	case "LOCATION", "GPE":
		return string(pii.PlaceholderLocation)
	default:
		return ""
	}
}

func categoryFor(category string) string {
	switch strings.ToUpper(category) {
	case "ORGANIZATION":
		return "ORG"
	case "GPE":
		return "LOCATION"
	default:
		return strings.ToUpper(category)
	}
}
