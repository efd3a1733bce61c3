// README: Recommendation service resolves the caller's coordinate, loads the catalog and ranks it.
package recommendation

import (
	"context"
	"fmt"
	"math"

	"wastagram/internal/modules/location"
	"wastagram/internal/types"
)

// Resolver turns a partial location query into a coordinate.
type Resolver interface {
	Resolve(ctx context.Context, q location.Query) (location.Resolved, error)
}

type Query struct {
	Location location.Query
	Category types.WasteCategory
	WeightKg float64
}

type Result struct {
	Origin   location.Resolved   `json:"origin"`
	Category types.WasteCategory `json:"waste_category"`
	WeightKg float64             `json:"weight_kg"`
	Ranking
}

type Service struct {
	resolver Resolver
	catalog  Catalog
	engine   *Engine
}

func NewService(resolver Resolver, catalog Catalog, engine *Engine) *Service {
	return &Service{resolver: resolver, catalog: catalog, engine: engine}
}

func (s *Service) Recommend(ctx context.Context, q Query) (Result, error) {
	category, err := types.ParseWasteCategory(string(q.Category))
	if err != nil {
		return Result{}, err
	}
	if math.IsNaN(q.WeightKg) || math.IsInf(q.WeightKg, 0) || q.WeightKg < 0 {
		return Result{}, fmt.Errorf("%w: weight must be a non-negative number of kg", types.ErrInvalidInput)
	}

	origin, err := s.resolver.Resolve(ctx, q.Location)
	if err != nil {
		return Result{}, err
	}
	partners, err := s.catalog.Partners(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load partner catalog: %w", err)
	}

	return Result{
		Origin:   origin,
		Category: category,
		WeightKg: q.WeightKg,
		Ranking:  s.engine.Rank(ctx, origin.Point, partners),
	}, nil
}
