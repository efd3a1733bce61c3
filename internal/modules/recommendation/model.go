// README: Partner facilities (waste banks), their materials and the feature vector fed to scorers.
package recommendation

import (
	"fmt"
	"math"

	"wastagram/internal/types"
)

type Material string

const (
	MaterialPlastic    Material = "plastic"
	MaterialPaper      Material = "paper"
	MaterialMetal      Material = "metal"
	MaterialGlass      Material = "glass"
	MaterialElectronic Material = "electronic"
	MaterialOrganic    Material = "organic"
)

// AcceptedMaterials lists every material a facility can take, in feature order.
var AcceptedMaterials = []Material{MaterialPlastic, MaterialPaper, MaterialMetal, MaterialGlass, MaterialElectronic, MaterialOrganic}

// PricedMaterials lists the materials that carry a unit price, in feature order.
var PricedMaterials = []Material{MaterialPlastic, MaterialPaper, MaterialMetal}

// PartnerFacility is a waste bank a requester can deliver to. PredictedScore
// and DistanceKm are written by the engine on each ranking and are not part of
// its identity.
type PartnerFacility struct {
	ID             types.ID                 `json:"id"`
	Name           string                   `json:"name"`
	Address        string                   `json:"address"`
	Location       types.Point              `json:"location"`
	Rating         float64                  `json:"rating"`
	AcceptsIntake  bool                     `json:"accepts_intake"`
	HoursPerDay    float64                  `json:"operating_hours"`
	DaysPerWeek    float64                  `json:"operating_days"`
	CapacityKg     float64                  `json:"capacity_kg_per_day"`
	Prices         map[Material]types.Money `json:"prices"`
	Accepts        map[Material]bool        `json:"accepts"`
	PredictedScore float64                  `json:"predicted_score"`
	DistanceKm     float64                  `json:"distance_km"`
}

// MaxRating is the top of the catalog's star scale.
const MaxRating = 5.0

// Validate rejects catalog rows the engine cannot score: a bad coordinate, a
// rating outside [0, MaxRating], or a negative or non-finite attribute.
func (p PartnerFacility) Validate() error {
	if err := p.Location.Validate(); err != nil {
		return err
	}
	if !finite(p.Rating) || p.Rating < 0 || p.Rating > MaxRating {
		return fmt.Errorf("%w: rating %v out of range [0, %v]", types.ErrInvalidInput, p.Rating, MaxRating)
	}
	for name, v := range map[string]float64{
		"operating hours": p.HoursPerDay,
		"operating days":  p.DaysPerWeek,
		"capacity":        p.CapacityKg,
	} {
		if !finite(v) || v < 0 {
			return fmt.Errorf("%w: %s %v must be a non-negative number", types.ErrInvalidInput, name, v)
		}
	}
	for m, price := range p.Prices {
		if price.Amount < 0 {
			return fmt.Errorf("%w: %s price %d is negative", types.ErrInvalidInput, m, price.Amount)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (p PartnerFacility) price(m Material) float64 {
	if p.Prices == nil {
		return 0
	}
	return p.Prices[m].Float()
}

func (p PartnerFacility) accepts(m Material) bool {
	return p.Accepts != nil && p.Accepts[m]
}

type Scorer string

const (
	ScorerPredictive Scorer = "predictive"
	ScorerHeuristic  Scorer = "heuristic"
)

// Ranking is the ordered output of Engine.Rank.
type Ranking struct {
	Partners []PartnerFacility `json:"partners"`
	Scorer   Scorer            `json:"scorer"`
}
