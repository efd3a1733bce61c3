// README: Feature builder turning a partner and an origin into a fixed-order vector.
package recommendation

import (
	"math"

	"wastagram/internal/geo"
	"wastagram/internal/types"
)

// distanceDecayKm is the e-folding distance of distance_score.
const distanceDecayKm = 10.0

// FeatureVector is the fixed model input for one (origin, partner) pair.
// Field order matches Names(). Accepts follows AcceptedMaterials (1 when
// accepted) and Prices follows PricedMaterials in IDR per kg.
type FeatureVector struct {
	DistanceKm     float64
	DistanceScore  float64
	Rating         float64
	OperatingHours float64
	OperatingDays  float64
	Accepts        [6]float64
	CategoryCount  float64
	Prices         [3]float64
	AvgPrice       float64
	MaxPrice       float64
	OffersPricing  float64
	CapacityKg     float64
}

var featureNames = []string{
	"distance_km",
	"distance_score",
	"rating",
	"operating_hours",
	"operating_days",
	"accepts_plastic",
	"accepts_paper",
	"accepts_metal",
	"accepts_glass",
	"accepts_electronic",
	"accepts_organic",
	"category_count",
	"price_plastic",
	"price_paper",
	"price_metal",
	"avg_price",
	"max_price",
	"offers_pricing",
	"capacity",
}

// Names returns the canonical feature order.
func (FeatureVector) Names() []string {
	out := make([]string, len(featureNames))
	copy(out, featureNames)
	return out
}

// Values returns the features in Names() order.
func (f FeatureVector) Values() []float64 {
	out := make([]float64, 0, len(featureNames))
	out = append(out, f.DistanceKm, f.DistanceScore, f.Rating, f.OperatingHours, f.OperatingDays)
	out = append(out, f.Accepts[:]...)
	out = append(out, f.CategoryCount)
	out = append(out, f.Prices[:]...)
	out = append(out, f.AvgPrice, f.MaxPrice, f.OffersPricing, f.CapacityKg)
	return out
}

// Map keys Values() by name for model wire payloads.
func (f FeatureVector) Map() map[string]float64 {
	vals := f.Values()
	out := make(map[string]float64, len(vals))
	for i, name := range featureNames {
		out[name] = vals[i]
	}
	return out
}

// Finite reports whether every feature is a finite number.
func (f FeatureVector) Finite() bool {
	for _, v := range f.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// BuildFeatures derives the feature vector for partner as seen from origin.
func BuildFeatures(origin types.Point, partner PartnerFacility) FeatureVector {
	distanceKm := geo.DistanceKm(origin, partner.Location)
	f := FeatureVector{
		DistanceKm:     distanceKm,
		DistanceScore:  math.Exp(-distanceKm / distanceDecayKm),
		Rating:         partner.Rating,
		OperatingHours: partner.HoursPerDay,
		OperatingDays:  partner.DaysPerWeek,
		CapacityKg:     partner.CapacityKg,
	}

	for i, m := range AcceptedMaterials {
		if partner.accepts(m) {
			f.Accepts[i] = 1
			f.CategoryCount++
		}
	}

	var sum float64
	var offered int
	for i, m := range PricedMaterials {
		p := partner.price(m)
		f.Prices[i] = p
		if p > 0 {
			sum += p
			offered++
			if p > f.MaxPrice {
				f.MaxPrice = p
			}
		}
	}
	if offered > 0 {
		f.AvgPrice = sum / float64(offered)
		f.OffersPricing = 1
	}
	return f
}
