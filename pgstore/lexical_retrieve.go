package pgstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/soukfinder/searchcore/catalog"
	"github.com/soukfinder/searchcore/filterbuilder"
	"github.com/soukfinder/searchcore/internal/normalize"
)

// LexicalSearchListings implements spec §4.8's LexicalRetriever primary
// path: a tsquery over the tokens against search_vector with rank scoring,
// falling back from websearch_to_tsquery to plainto_tsquery the way the
// teacher's search/fts.go does. Both match whole lexemes; no prefix (:*)
// matching is applied.
func (s *Store) LexicalSearchListings(ctx context.Context, tokens []string, language string, pred filterbuilder.Predicate, k int) ([]catalog.Listing, error) {
	if k <= 0 || len(tokens) == 0 {
		return nil, nil
	}
	query := strings.Join(tokens, " ")
	regconfig := regconfigForLanguage(language)

	run := func(fn string) ([]catalog.Listing, error) {
		sql := fmt.Sprintf(`
			WITH q AS (SELECT %s(%s::regconfig, @query) AS tsq)
			SELECT %s, ts_rank_cd(l.search_vector, q.tsq)::float8 AS rank
			FROM q, %s l
			WHERE %s AND q.tsq IS NOT NULL AND l.search_vector @@ q.tsq
			ORDER BY rank DESC, l.boosted DESC, l.priority DESC, l.created_at DESC
			LIMIT @limit
		`, fn, quoteLiteral(regconfig), listingSelectList("l"), s.table("listings"), pred.WhereSQL)

		args := pgx.NamedArgs{"query": query, "limit": k}
		for k2, v := range pred.Args {
			args[k2] = v
		}
		rows, err := s.pool.Query(ctx, sql, args)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return scanListingsWithRank(rows)
	}

	out, err := run("websearch_to_tsquery")
	if err != nil {
		out, err = run("plainto_tsquery")
	}
	if err != nil {
		return nil, fmt.Errorf("pgstore: lexical search listings: %w", err)
	}
	return out, nil
}

// TitleOnlySearch implements the first lexical fallback: ILIKE on title
// only, expanding each token with its ta-marbuta-swapped variant.
func (s *Store) TitleOnlySearch(ctx context.Context, tokens []string, pred filterbuilder.Predicate, k int) ([]catalog.Listing, error) {
	return s.ilikeSearch(ctx, tokens, []string{"l.title"}, pred, k)
}

// FallbackSearch implements the second lexical fallback: ILIKE on title and
// description, same token expansion.
func (s *Store) FallbackSearch(ctx context.Context, tokens []string, pred filterbuilder.Predicate, k int) ([]catalog.Listing, error) {
	return s.ilikeSearch(ctx, tokens, []string{"l.title", "l.description"}, pred, k)
}

func (s *Store) ilikeSearch(ctx context.Context, tokens []string, columns []string, pred filterbuilder.Predicate, k int) ([]catalog.Listing, error) {
	if k <= 0 || len(tokens) == 0 {
		return nil, nil
	}

	patterns := make([]string, 0, len(tokens)*2)
	for _, t := range tokens {
		patterns = append(patterns, "%"+t+"%")
		if variant := normalize.TaMarbutaVariant(t); variant != t {
			patterns = append(patterns, "%"+variant+"%")
		}
	}

	var orClauses []string
	for _, col := range columns {
		orClauses = append(orClauses, col+" ILIKE ANY(@patterns::text[])")
	}

	where := pred.WhereSQL
	if where != "" {
		where += " AND "
	}
	where += "(" + strings.Join(orClauses, " OR ") + ")"

	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s l
		WHERE %s
		ORDER BY l.boosted DESC, l.priority DESC, l.created_at DESC
		LIMIT @limit
	`, listingSelectList("l"), s.table("listings"), where)

	args := pgx.NamedArgs{"patterns": patterns, "limit": k}
	for k2, v := range pred.Args {
		args[k2] = v
	}

	rows, err := s.pool.Query(ctx, sql, args)
	if err != nil {
		return nil, fmt.Errorf("pgstore: ilike search listings: %w", err)
	}
	defer rows.Close()
	return scanListings(rows)
}

func scanListingsWithRank(rows pgx.Rows) ([]catalog.Listing, error) {
	var out []catalog.Listing
	for rows.Next() {
		var l catalog.Listing
		if err := rows.Scan(
			&l.ID, &l.Title, &l.Description, &l.CategoryID, &l.CityID, &l.NeighborhoodID,
			&l.TransactionSlug, &l.Boosted, &l.Priority, &l.CreatedAt,
			&l.Price, &l.Currency, &l.Area, &l.Rooms, &l.Bathrooms, &l.Year, &l.Mileage, &l.Brand, &l.Model,
			&l.RankScore,
		); err != nil {
			return nil, fmt.Errorf("pgstore: scan ranked listing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// VectorAvailable reports whether at least one embedded listing exists for
// language, the availability probe spec §4.8 requires.
func (s *Store) VectorAvailable(ctx context.Context, language string) (bool, error) {
	col := "embedding_en"
	if language == "ar" {
		col = "embedding_ar"
	}
	sql := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s IS NOT NULL LIMIT 1)`, s.table("listings"), col)
	var ok bool
	if err := s.pool.QueryRow(ctx, sql).Scan(&ok); err != nil {
		return false, fmt.Errorf("pgstore: vector available: %w", err)
	}
	return ok, nil
}

// LexicalAvailable reports whether the search_vector column is populated.
func (s *Store) LexicalAvailable(ctx context.Context) (bool, error) {
	sql := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE search_vector IS NOT NULL LIMIT 1)`, s.table("listings"))
	var ok bool
	if err := s.pool.QueryRow(ctx, sql).Scan(&ok); err != nil {
		return false, fmt.Errorf("pgstore: lexical available: %w", err)
	}
	return ok, nil
}
