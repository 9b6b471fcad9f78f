// Package llm implements the semantic-classifier collaborator on top of
// Google Gemini. It is a last-resort fallback: the extraction core calls
// it only when keyword matching or the selector cascade came up empty, and
// it absorbs every failure into an error return — never a panic.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"airbnb-harvester/models"
)

const amenityPromptTemplate = `You are classifying vacation-rental amenity text.
Given the amenity list below, answer with a JSON object mapping each of
these exact keys to true or false: %s.
Mark a key true only when the text clearly indicates that amenity.
"Pool" means a swimming pool; a pool table or billiards room is
"Billiards Table", not "Pool".

Amenity text:
%s`

const fieldPromptTemplate = `You are extracting listing attributes from the text of a
vacation-rental page. Answer with a JSON object mapping each of these
exact keys to a string value: %s.
Use the empty string for anything the text does not state. Numbers should
be plain digits (e.g. "2", "4.93", "1200").

Page text:
%s`

// maxPromptText bounds how much page text is sent per request.
const maxPromptText = 12000

// GeminiClassifier implements the services.SemanticClassifier contract
// using Gemini's JSON response mode.
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

// NewGeminiClassifier creates a classifier. The API key is required; the
// caller decides whether to run without a semantic fallback at all.
func NewGeminiClassifier(ctx context.Context, apiKey, model string) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}

	return &GeminiClassifier{client: client, model: model}, nil
}

// ClassifyAmenities maps free amenity text onto the fixed vocabulary.
// Keys the model omits are simply absent from the result ("not
// determined").
func (g *GeminiClassifier) ClassifyAmenities(ctx context.Context, text string, vocab []models.Amenity) (map[models.Amenity]bool, error) {
	keys := make([]string, len(vocab))
	for i, am := range vocab {
		keys[i] = string(am)
	}

	prompt := fmt.Sprintf(amenityPromptTemplate, strings.Join(keys, ", "), clip(text))
	raw, err := g.generateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed map[string]bool
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("llm: parse amenity response: %w", err)
	}

	out := make(map[models.Amenity]bool, len(vocab))
	for _, am := range vocab {
		if v, ok := parsed[string(am)]; ok {
			out[am] = v
		}
	}
	return out, nil
}

// ExtractFields asks the model for the still-unknown fields by name.
// Empty strings mean "not determined" and are dropped.
func (g *GeminiClassifier) ExtractFields(ctx context.Context, text string, fields []models.FieldKey) (map[models.FieldKey]string, error) {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = string(f)
	}

	prompt := fmt.Sprintf(fieldPromptTemplate, strings.Join(keys, ", "), clip(text))
	raw, err := g.generateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("llm: parse field response: %w", err)
	}

	out := make(map[models.FieldKey]string, len(fields))
	for _, f := range fields {
		if v, ok := parsed[string(f)]; ok && strings.TrimSpace(v) != "" {
			out[f] = strings.TrimSpace(v)
		}
	}
	return out, nil
}

func (g *GeminiClassifier) generateJSON(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("llm: generate content: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return "", err
	}
	return cleanJSONBlock(text), nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("llm: no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("llm: no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("llm: no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

// cleanJSONBlock strips markdown fences some models wrap around JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func clip(s string) string {
	if len(s) > maxPromptText {
		return s[:maxPromptText]
	}
	return s
}

// Close releases the underlying client.
func (g *GeminiClassifier) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
