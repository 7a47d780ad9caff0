package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/soukfinder/searchcore/catalog"
)

// MatchCityTrigram implements spec §4.3.2 step 2: trigram similarity > 0.4
// against city name or province name, or substring containment.
func (s *Store) MatchCityTrigram(ctx context.Context, token string, language string) (*catalog.City, float64, error) {
	nameCol, provCol := "name_en", "province_en"
	if language == "ar" {
		nameCol, provCol = "name_ar", "province_ar"
	}

	sql := fmt.Sprintf(`
		SELECT id, name_ar, name_en, province_ar, province_en,
		       coalesce(lat, 0), coalesce(lon, 0), (lat IS NOT NULL),
		       greatest(similarity(%s, @token), similarity(%s, @token))::float8 AS sim
		FROM %s
		WHERE active
		  AND (
		    greatest(similarity(%s, @token), similarity(%s, @token)) > 0.4
		    OR %s ILIKE '%%' || @token || '%%'
		    OR @token ILIKE '%%' || %s || '%%'
		  )
		ORDER BY sim DESC
		LIMIT 1
	`, nameCol, provCol, s.table("cities"), nameCol, provCol, nameCol, nameCol)

	row := s.pool.QueryRow(ctx, sql, pgx.NamedArgs{"token": token})
	var c catalog.City
	var sim float64
	if err := row.Scan(&c.ID, &c.NameAr, &c.NameEn, &c.ProvinceAr, &c.ProvinceEn, &c.Lat, &c.Lon, &c.HasCoords, &sim); err != nil {
		if err == pgx.ErrNoRows {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("pgstore: match city trigram: %w", err)
	}
	return &c, sim, nil
}

// MatchNeighborhoodTrigram implements spec §4.3.2 step 3: trigram
// similarity > 0.4 against neighborhood name, returned with its parent city.
func (s *Store) MatchNeighborhoodTrigram(ctx context.Context, token string, language string) (*catalog.Neighborhood, float64, error) {
	nameCol := "name_en"
	if language == "ar" {
		nameCol = "name_ar"
	}

	sql := fmt.Sprintf(`
		SELECT id, name_ar, name_en, city_id, similarity(%s, @token)::float8 AS sim
		FROM %s
		WHERE active AND similarity(%s, @token) > 0.4
		ORDER BY sim DESC
		LIMIT 1
	`, nameCol, s.table("neighborhoods"), nameCol)

	row := s.pool.QueryRow(ctx, sql, pgx.NamedArgs{"token": token})
	var n catalog.Neighborhood
	var sim float64
	if err := row.Scan(&n.ID, &n.NameAr, &n.NameEn, &n.CityID, &sim); err != nil {
		if err == pgx.ErrNoRows {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("pgstore: match neighborhood trigram: %w", err)
	}
	return &n, sim, nil
}

// NeighborhoodCityID resolves the parent city id of a neighborhood, used by
// the orchestrator's location proximity re-ranking (spec §4.9 step 7) to
// turn a neighborhood-kind LocationRef into a city id.
func (s *Store) NeighborhoodCityID(ctx context.Context, neighborhoodID int64) (int64, error) {
	sql := fmt.Sprintf(`SELECT city_id FROM %s WHERE id = @id`, s.table("neighborhoods"))
	row := s.pool.QueryRow(ctx, sql, pgx.NamedArgs{"id": neighborhoodID})
	var cityID int64
	if err := row.Scan(&cityID); err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("pgstore: neighborhood city id: %w", err)
	}
	return cityID, nil
}

// CityProvince returns the province name (in language) for cityID, used by
// the orchestrator's location proximity re-ranking (spec §4.9 step 7).
func (s *Store) CityProvince(ctx context.Context, cityID int64, language string) (string, error) {
	provCol := "province_en"
	if language == "ar" {
		provCol = "province_ar"
	}
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE id = @id`, provCol, s.table("cities"))
	row := s.pool.QueryRow(ctx, sql, pgx.NamedArgs{"id": cityID})
	var province string
	if err := row.Scan(&province); err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("pgstore: city province: %w", err)
	}
	return province, nil
}
