// README: Partner catalog backed by PostgreSQL (partners table, see migrations/0001_partners.sql).
package recommendation

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"wastagram/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Partners loads the catalog in its configured order.
func (s *Store) Partners(ctx context.Context) ([]PartnerFacility, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, address, lat, lng, rating, accepts_intake,
		       operating_hours, operating_days, capacity_kg,
		       price_plastic, price_paper, price_metal,
		       accepts_plastic, accepts_paper, accepts_metal,
		       accepts_glass, accepts_electronic, accepts_organic
		FROM partners
		ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PartnerFacility
	for rows.Next() {
		var p PartnerFacility
		var id string
		var plastic, paper, metal int64
		var accPlastic, accPaper, accMetal, accGlass, accElectronic, accOrganic bool
		if err := rows.Scan(
			&id, &p.Name, &p.Address, &p.Location.Lat, &p.Location.Lng, &p.Rating, &p.AcceptsIntake,
			&p.HoursPerDay, &p.DaysPerWeek, &p.CapacityKg,
			&plastic, &paper, &metal,
			&accPlastic, &accPaper, &accMetal,
			&accGlass, &accElectronic, &accOrganic,
		); err != nil {
			return nil, err
		}
		p.ID = types.ID(id)
		p.Prices = priceList(plastic, paper, metal)
		p.Accepts = map[Material]bool{
			MaterialPlastic:    accPlastic,
			MaterialPaper:      accPaper,
			MaterialMetal:      accMetal,
			MaterialGlass:      accGlass,
			MaterialElectronic: accElectronic,
			MaterialOrganic:    accOrganic,
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert writes p at position order. Used for seeding.
func (s *Store) Upsert(ctx context.Context, p PartnerFacility, order int) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO partners (
			id, name, address, lat, lng, rating, accepts_intake,
			operating_hours, operating_days, capacity_kg,
			price_plastic, price_paper, price_metal,
			accepts_plastic, accepts_paper, accepts_metal,
			accepts_glass, accepts_electronic, accepts_organic, sort_order
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10,
			$11, $12, $13,
			$14, $15, $16,
			$17, $18, $19, $20
		)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			rating = EXCLUDED.rating,
			accepts_intake = EXCLUDED.accepts_intake,
			operating_hours = EXCLUDED.operating_hours,
			operating_days = EXCLUDED.operating_days,
			capacity_kg = EXCLUDED.capacity_kg,
			price_plastic = EXCLUDED.price_plastic,
			price_paper = EXCLUDED.price_paper,
			price_metal = EXCLUDED.price_metal,
			accepts_plastic = EXCLUDED.accepts_plastic,
			accepts_paper = EXCLUDED.accepts_paper,
			accepts_metal = EXCLUDED.accepts_metal,
			accepts_glass = EXCLUDED.accepts_glass,
			accepts_electronic = EXCLUDED.accepts_electronic,
			accepts_organic = EXCLUDED.accepts_organic,
			sort_order = EXCLUDED.sort_order`,
		string(p.ID), p.Name, p.Address, p.Location.Lat, p.Location.Lng, p.Rating, p.AcceptsIntake,
		p.HoursPerDay, p.DaysPerWeek, p.CapacityKg,
		p.Prices[MaterialPlastic].Amount, p.Prices[MaterialPaper].Amount, p.Prices[MaterialMetal].Amount,
		p.accepts(MaterialPlastic), p.accepts(MaterialPaper), p.accepts(MaterialMetal),
		p.accepts(MaterialGlass), p.accepts(MaterialElectronic), p.accepts(MaterialOrganic), order,
	)
	return err
}
