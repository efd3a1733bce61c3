// README: Partner catalogs: the Surabaya seed list and a lookup interface for stored catalogs.
package recommendation

import (
	"context"

	"wastagram/internal/types"
)

// Catalog lists partner facilities in a stable order. It is read on every ranking.
type Catalog interface {
	Partners(ctx context.Context) ([]PartnerFacility, error)
}

// StaticCatalog serves a fixed partner list.
type StaticCatalog struct {
	partners []PartnerFacility
}

func NewStaticCatalog(partners []PartnerFacility) *StaticCatalog {
	return &StaticCatalog{partners: partners}
}

// Partners returns a copy so callers cannot mutate the seed list.
func (c *StaticCatalog) Partners(_ context.Context) ([]PartnerFacility, error) {
	out := make([]PartnerFacility, len(c.partners))
	copy(out, c.partners)
	return out, nil
}

func acceptsSet(ms ...Material) map[Material]bool {
	out := make(map[Material]bool, len(ms))
	for _, m := range ms {
		out[m] = true
	}
	return out
}

func priceList(plastic, paper, metal int64) map[Material]types.Money {
	out := make(map[Material]types.Money, 3)
	if plastic > 0 {
		out[MaterialPlastic] = types.Rupiah(plastic)
	}
	if paper > 0 {
		out[MaterialPaper] = types.Rupiah(paper)
	}
	if metal > 0 {
		out[MaterialMetal] = types.Rupiah(metal)
	}
	return out
}

// SeedPartners returns the Surabaya waste banks the mobile app ships with.
func SeedPartners() []PartnerFacility {
	return []PartnerFacility{
		{
			ID:            "bank-induk-surabaya",
			Name:          "Bank Sampah Induk Surabaya",
			Address:       "Jl. Ngagel No. 10",
			Location:      types.Point{Lat: -7.29, Lng: 112.74},
			Rating:        4.8,
			AcceptsIntake: true,
			HoursPerDay:   8,
			DaysPerWeek:   6,
			CapacityKg:    1000,
			Prices:        priceList(3700, 1400, 3400),
			Accepts:       acceptsSet(MaterialPlastic, MaterialPaper, MaterialMetal, MaterialOrganic),
		},
		{
			ID:            "bank-bintang-mangrove",
			Name:          "Bank Sampah Bintang Mangrove",
			Address:       "Jl. Rungkut Asri",
			Location:      types.Point{Lat: -7.33, Lng: 112.78},
			Rating:        4.5,
			AcceptsIntake: true,
			HoursPerDay:   6,
			DaysPerWeek:   5,
			CapacityKg:    500,
			Prices:        priceList(2900, 1200, 3000),
			Accepts:       acceptsSet(MaterialPlastic, MaterialPaper, MaterialMetal),
		},
		{
			ID:            "bank-lestari",
			Name:          "Bank Sampah Lestari",
			Address:       "Jl. Ketintang",
			Location:      types.Point{Lat: -7.31, Lng: 112.72},
			Rating:        4.2,
			AcceptsIntake: true,
			HoursPerDay:   7,
			DaysPerWeek:   6,
			CapacityKg:    300,
			Prices:        priceList(3000, 1000, 0),
			Accepts:       acceptsSet(MaterialPlastic, MaterialPaper, MaterialGlass),
		},
		{
			ID:            "bank-sejahtera",
			Name:          "Bank Sampah Sejahtera",
			Address:       "Jl. Kenjeran",
			Location:      types.Point{Lat: -7.25, Lng: 112.76},
			Rating:        3.9,
			AcceptsIntake: false,
			HoursPerDay:   5,
			DaysPerWeek:   5,
			CapacityKg:    200,
			Prices:        priceList(2000, 500, 2000),
			Accepts:       acceptsSet(MaterialPlastic, MaterialPaper, MaterialMetal),
		},
	}
}
