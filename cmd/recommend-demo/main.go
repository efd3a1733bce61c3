// README: Demo; ranks the seed waste-bank catalog for a coordinate given by flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"wastagram/internal/ai"
	"wastagram/internal/modules/recommendation"
	"wastagram/internal/types"
)

func main() {
	lat := flag.Float64("lat", -7.2575, "requester latitude")
	lng := flag.Float64("lng", 112.7521, "requester longitude")
	useGemini := flag.Bool("gemini", false, "score with Gemini (requires GEMINI_API_KEY)")
	model := flag.String("model", "gemini-2.0-flash", "Gemini model name")
	flag.Parse()

	origin := types.Point{Lat: *lat, Lng: *lng}
	if err := origin.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	var predictor recommendation.Predictor
	if *useGemini {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			log.Fatal("GEMINI_API_KEY environment variable not set")
		}
		scorer, err := ai.NewGeminiScorer(ctx, apiKey, *model)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini scorer: %v", err)
		}
		defer scorer.Close()
		predictor = scorer
	}

	engine := recommendation.NewEngine(predictor, 15*time.Second)
	ranking := engine.Rank(ctx, origin, recommendation.SeedPartners())

	fmt.Printf("Origin: %.5f, %.5f  scorer: %s\n\n", origin.Lat, origin.Lng, ranking.Scorer)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPARTNER\tDISTANCE\tRATING\tSCORE")
	for i, p := range ranking.Partners {
		fmt.Fprintf(w, "%d\t%s\t%.2f km\t%.1f\t%.2f\n", i+1, p.Name, p.DistanceKm, p.Rating, p.PredictedScore)
	}
	w.Flush()
}
