package pgstore

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/soukfinder/searchcore/catalog"
)

// listingSelectList is the column list shared by every listing query,
// enriched with the commonly needed attributes spec §4.8 names (price/
// currency, area, rooms, bathrooms, year, mileage, brand, model).
func listingSelectList(alias string) string {
	// Nullable text columns are coalesced so they scan into plain strings;
	// nullable numerics scan into pointer fields instead.
	cols := []string{
		"id", "title", "coalesce(description, '')", "category_id", "city_id", "neighborhood_id",
		"transaction_type_slug", "boosted", "priority", "created_at",
		"price", "coalesce(currency, '')", "area", "rooms", "bathrooms", "year", "mileage",
		"coalesce(brand, '')", "coalesce(model, '')",
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = qualify(alias, c)
	}
	return joinColumns(out)
}

// qualify prefixes a bare column name with the table alias, reaching inside a
// coalesce() wrapper when present.
func qualify(alias, col string) string {
	if inner, ok := strings.CutPrefix(col, "coalesce("); ok {
		return "coalesce(" + alias + "." + inner
	}
	return alias + "." + col
}

func joinColumns(cols []string) string {
	s := ""
	for i, c := range cols {
		if i > 0 {
			s += ", "
		}
		s += c
	}
	return s
}

func scanListings(rows pgx.Rows) ([]catalog.Listing, error) {
	var out []catalog.Listing
	for rows.Next() {
		var l catalog.Listing
		if err := rows.Scan(
			&l.ID, &l.Title, &l.Description, &l.CategoryID, &l.CityID, &l.NeighborhoodID,
			&l.TransactionSlug, &l.Boosted, &l.Priority, &l.CreatedAt,
			&l.Price, &l.Currency, &l.Area, &l.Rooms, &l.Bathrooms, &l.Year, &l.Mileage, &l.Brand, &l.Model,
		); err != nil {
			return nil, fmt.Errorf("pgstore: scan listing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// scanListingsWithSimilarity is scanListings plus a trailing cosine
// similarity column, used by VectorSearchListings for re-ranking.
func scanListingsWithSimilarity(rows pgx.Rows) ([]catalog.Listing, error) {
	var out []catalog.Listing
	for rows.Next() {
		var l catalog.Listing
		if err := rows.Scan(
			&l.ID, &l.Title, &l.Description, &l.CategoryID, &l.CityID, &l.NeighborhoodID,
			&l.TransactionSlug, &l.Boosted, &l.Priority, &l.CreatedAt,
			&l.Price, &l.Currency, &l.Area, &l.Rooms, &l.Bathrooms, &l.Year, &l.Mileage, &l.Brand, &l.Model,
			&l.SimilarityScore,
		); err != nil {
			return nil, fmt.Errorf("pgstore: scan listing with similarity: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
