// README: Scoring engine ranks partners with a predictive model and falls back to a deterministic heuristic.
package recommendation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"wastagram/internal/types"
)

var (
	ErrModelUnavailable = errors.New("predictive model unavailable")
	ErrPredictionFailed = errors.New("prediction failed")
)

// Predictor scores one feature vector. Implementations must honour ctx.
type Predictor interface {
	Predict(ctx context.Context, f FeatureVector) (float64, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, f FeatureVector) (float64, error)

func (fn PredictorFunc) Predict(ctx context.Context, f FeatureVector) (float64, error) {
	return fn(ctx, f)
}

const (
	ratingWeight    = 20.0
	priceDivisor    = 500.0
	distancePenalty = 5.0
)

// DefaultPredictTimeout bounds one batch of predictions.
const DefaultPredictTimeout = 2 * time.Second

// HeuristicScore rewards rating and price and penalises distance.
func HeuristicScore(rating, distanceKm, avgPrice float64) float64 {
	return rating*ratingWeight + avgPrice/priceDivisor - distanceKm*distancePenalty
}

type Engine struct {
	predictor Predictor
	timeout   time.Duration
}

// NewEngine builds an engine. A nil predictor always ranks with the heuristic.
func NewEngine(predictor Predictor, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultPredictTimeout
	}
	return &Engine{predictor: predictor, timeout: timeout}
}

// Rank scores every valid partner that accepts intake and returns copies sorted by
// descending PredictedScore, ties in catalog order. Predictor failures are
// logged and switch the whole ranking to the heuristic.
func (e *Engine) Rank(ctx context.Context, origin types.Point, partners []PartnerFacility) Ranking {
	eligible := make([]PartnerFacility, 0, len(partners))
	for _, p := range partners {
		if !p.AcceptsIntake {
			continue
		}
		if err := p.Validate(); err != nil {
			log.Printf("recommendation: skipping partner %s: %v", p.ID, err)
			continue
		}
		eligible = append(eligible, p)
	}
	if len(eligible) == 0 {
		return Ranking{Partners: []PartnerFacility{}, Scorer: ScorerHeuristic}
	}

	features := make([]FeatureVector, len(eligible))
	for i, p := range eligible {
		features[i] = BuildFeatures(origin, p)
	}

	scorer := ScorerPredictive
	scores, err := e.predictAll(ctx, features)
	if err != nil {
		log.Printf("recommendation: using heuristic for %d partners: %v", len(eligible), err)
		scorer = ScorerHeuristic
		scores = make([]float64, len(features))
		for i, f := range features {
			scores[i] = HeuristicScore(f.Rating, f.DistanceKm, f.AvgPrice)
		}
	}

	for i := range eligible {
		eligible[i].PredictedScore = scores[i]
		eligible[i].DistanceKm = features[i].DistanceKm
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].PredictedScore > eligible[j].PredictedScore
	})
	return Ranking{Partners: eligible, Scorer: scorer}
}

// predictAll runs one prediction per vector concurrently, without retries.
// Any single failure fails the batch.
func (e *Engine) predictAll(ctx context.Context, features []FeatureVector) ([]float64, error) {
	if e.predictor == nil {
		return nil, ErrModelUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	scores := make([]float64, len(features))
	g, gctx := errgroup.WithContext(ctx)
	for i := range features {
		i := i
		g.Go(func() error {
			score, err := e.predictOne(gctx, features[i])
			if err != nil {
				return err
			}
			scores[i] = score
			return nil
		})
	}

	// A predictor that ignores ctx must not hold the ranking past the deadline.
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		return scores, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, ctx.Err())
	}
}

func (e *Engine) predictOne(ctx context.Context, f FeatureVector) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: predictor panic: %v", ErrPredictionFailed, r)
		}
	}()
	if !f.Finite() {
		return 0, fmt.Errorf("%w: non-finite feature", ErrPredictionFailed)
	}
	score, err = e.predictor.Predict(ctx, f)
	if err != nil {
		if errors.Is(err, ErrModelUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, fmt.Errorf("%w: %v", ErrPredictionFailed, ctxErr)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("%w: non-finite score", ErrPredictionFailed)
	}
	return score, nil
}
