// README: Structured Gemini scoring output.
package ai

// ScoreResult captures the structured output from the AI model.
type ScoreResult struct {
	// Score is the recommendation score on the same 0-100 scale as the trained model.
	Score *float64 `json:"recommendation_score"`

	// Reason is a one-line justification, logged for review and never shown to users.
	Reason string `json:"reason,omitempty"`
}
