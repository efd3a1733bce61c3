package ai

import (
	"strings"
	"testing"

	"wastagram/internal/modules/recommendation"
	"wastagram/internal/types"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{name: "plain", raw: `{"recommendation_score": 72.5, "reason": "close"}`, want: 72.5},
		{name: "fenced", raw: "```json\n{\"recommendation_score\": 40}\n```", want: 40},
		{name: "zero is a score", raw: `{"recommendation_score": 0}`, want: 0},
		{name: "missing score", raw: `{"reason": "no idea"}`, wantErr: true},
		{name: "not json", raw: `seventy`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScore(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %f", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseScore: %v", err)
			}
			if got != tt.want {
				t.Fatalf("parseScore = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestBuildScoringPrompt_ListsEveryFeature(t *testing.T) {
	f := recommendation.BuildFeatures(types.Point{Lat: -7.2575, Lng: 112.7521}, recommendation.SeedPartners()[0])
	prompt := buildScoringPrompt(f)
	for _, name := range f.Names() {
		if !strings.Contains(prompt, "- "+name+": ") {
			t.Errorf("prompt is missing feature %s", name)
		}
	}
	if prompt != buildScoringPrompt(f) {
		t.Error("prompt is not stable for identical features")
	}
}
