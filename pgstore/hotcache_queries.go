package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/soukfinder/searchcore/catalog"
)

// LoadTopCategories returns up to topN active categories ordered by
// (level DESC, sort_order ASC), matching spec §4.2's HotCache contract.
func (s *Store) LoadTopCategories(ctx context.Context, topN int) ([]catalog.Category, error) {
	sql := fmt.Sprintf(`
		SELECT c.id, c.slug, c.name_ar, c.name_en, c.level, c.parent_id, c.path,
		       c.active, c.sort_order,
		       coalesce(ck.keywords_ar, '{}'), coalesce(ck.keywords_en, '{}'),
		       coalesce(ck.meta_keywords_ar, ''), coalesce(ck.meta_keywords_en, '')
		FROM %s c
		LEFT JOIN %s ck ON ck.category_id = c.id
		WHERE c.active
		ORDER BY c.level DESC, c.sort_order ASC
		LIMIT @top_n
	`, s.table("categories"), s.table("category_keywords"))

	rows, err := s.pool.Query(ctx, sql, pgx.NamedArgs{"top_n": topN})
	if err != nil {
		return nil, fmt.Errorf("pgstore: load top categories: %w", err)
	}
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.NameAr, &c.NameEn, &c.Level, &c.ParentID, &c.Path,
			&c.Active, &c.SortOrder, &c.KeywordsAr, &c.KeywordsEn, &c.MetaAr, &c.MetaEn); err != nil {
			return nil, fmt.Errorf("pgstore: scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LoadCities returns every active city.
func (s *Store) LoadCities(ctx context.Context) ([]catalog.City, error) {
	sql := fmt.Sprintf(`
		SELECT id, name_ar, name_en, province_ar, province_en,
		       coalesce(lat, 0), coalesce(lon, 0), (lat IS NOT NULL)
		FROM %s
		WHERE active
	`, s.table("cities"))

	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("pgstore: load cities: %w", err)
	}
	defer rows.Close()

	var out []catalog.City
	for rows.Next() {
		var c catalog.City
		if err := rows.Scan(&c.ID, &c.NameAr, &c.NameEn, &c.ProvinceAr, &c.ProvinceEn, &c.Lat, &c.Lon, &c.HasCoords); err != nil {
			return nil, fmt.Errorf("pgstore: scan city: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LoadTransactionTypes returns the full closed set of transaction types.
func (s *Store) LoadTransactionTypes(ctx context.Context) ([]catalog.TransactionType, error) {
	sql := fmt.Sprintf(`SELECT id, slug, name_ar, name_en FROM %s ORDER BY id`, s.table("transaction_types"))

	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("pgstore: load transaction types: %w", err)
	}
	defer rows.Close()

	var out []catalog.TransactionType
	for rows.Next() {
		var t catalog.TransactionType
		if err := rows.Scan(&t.ID, &t.Slug, &t.NameAr, &t.NameEn); err != nil {
			return nil, fmt.Errorf("pgstore: scan transaction type: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
