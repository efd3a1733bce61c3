// README: Gemini-backed predictor scoring a partner feature vector in JSON mode.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"wastagram/internal/modules/recommendation"
)

// GeminiScorer implements recommendation.Predictor using Google's Gemini models.
type GeminiScorer struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

var _ recommendation.Predictor = (*GeminiScorer)(nil)

// NewGeminiScorer initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiScorer(ctx context.Context, apiKey, modelName string) (*GeminiScorer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"

	// Scores must be repeatable for the same features.
	model.SetTemperature(0)

	return &GeminiScorer{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (s *GeminiScorer) Close() {
	s.client.Close()
}

// Predict asks the model for a recommendation score for one facility.
func (s *GeminiScorer) Predict(ctx context.Context, f recommendation.FeatureVector) (float64, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(buildScoringPrompt(f)))
	if err != nil {
		return 0, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return 0, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}
	return parseScore(responseText.String())
}

// buildScoringPrompt lists the features in canonical order so the prompt is
// stable for identical inputs.
func buildScoringPrompt(f recommendation.FeatureVector) string {
	features := f.Map()
	names := f.Names()
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("- %s: %g", name, features[name]))
	}

	return fmt.Sprintf(`Role: You score waste banks (bank sampah) for a household that wants to hand over sorted waste.

Features of one waste bank, relative to the household:
%s

Feature notes:
- distance_km is the straight-line distance; distance_score = exp(-distance_km/10).
- accepts_* are 1 when the bank takes that material.
- price_* are IDR paid per kg, 0 meaning the material is not bought.
- capacity is kg per day.

RULES:
1. Prefer close, well-rated banks that pay more and take more materials.
2. Output a score between 0 and 100. Higher is better.
3. Judge only from the features above.

Output JSON Schema:
{
  "recommendation_score": number,
  "reason": "string (one short sentence)"
}
`, strings.Join(lines, "\n"))
}

// parseScore extracts the score from the model's JSON reply.
func parseScore(raw string) (float64, error) {
	cleanJSON := cleanJSONString(raw)

	var result ScoreResult
	if err := json.Unmarshal([]byte(cleanJSON), &result); err != nil {
		return 0, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}
	if result.Score == nil {
		return 0, fmt.Errorf("response has no recommendation_score. Raw: %s", cleanJSON)
	}
	return *result.Score, nil
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
