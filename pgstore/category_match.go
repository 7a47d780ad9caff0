package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/soukfinder/searchcore/catalog"
)

// CandidateCategoriesByKeyword returns every active category whose keyword
// array for language overlaps tokens, or contains a keyword that is an
// ILIKE substring of (or superstring of) any token. This is a candidate
// generation step: spec §4.3.1 step 2's precise "count of distinct tokens
// matched, overlap >= 80%" scoring is then applied in Go by
// matcher.MatchCategory over this candidate set, using the same rule HotCache matching uses.
func (s *Store) CandidateCategoriesByKeyword(ctx context.Context, tokens []string, language string) ([]catalog.Category, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	keywordCol := "keywords_ar"
	if language != "ar" {
		keywordCol = "keywords_en"
	}

	patterns := make([]string, len(tokens))
	for i, t := range tokens {
		patterns[i] = "%" + t + "%"
	}

	sql := fmt.Sprintf(`
		SELECT DISTINCT c.id, c.slug, c.name_ar, c.name_en, c.level, c.parent_id, c.path,
		       c.active, c.sort_order,
		       coalesce(ck.keywords_ar, '{}'), coalesce(ck.keywords_en, '{}'),
		       coalesce(ck.meta_keywords_ar, ''), coalesce(ck.meta_keywords_en, '')
		FROM %s c
		JOIN %s ck ON ck.category_id = c.id
		WHERE c.active
		  AND (
		    ck.%s && @tokens::text[]
		    OR EXISTS (
		      SELECT 1 FROM unnest(ck.%s) kw
		      WHERE kw ILIKE ANY(@patterns::text[])
		    )
		  )
		ORDER BY c.level DESC, c.sort_order ASC
	`, s.table("categories"), s.table("category_keywords"), keywordCol, keywordCol)

	rows, err := s.pool.Query(ctx, sql, pgx.NamedArgs{"tokens": tokens, "patterns": patterns})
	if err != nil {
		return nil, fmt.Errorf("pgstore: candidate categories by keyword: %w", err)
	}
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.NameAr, &c.NameEn, &c.Level, &c.ParentID, &c.Path,
			&c.Active, &c.SortOrder, &c.KeywordsAr, &c.KeywordsEn, &c.MetaAr, &c.MetaEn); err != nil {
			return nil, fmt.Errorf("pgstore: scan candidate category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MatchCategoryMetaKeyword implements spec §4.3.1 step 3: ILIKE any
// meaningful token against meta_keywords_<lang>, ordered the same way as
// step 2.
func (s *Store) MatchCategoryMetaKeyword(ctx context.Context, tokens []string, language string) (*catalog.Category, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	metaCol := "meta_keywords_ar"
	if language != "ar" {
		metaCol = "meta_keywords_en"
	}
	patterns := make([]string, len(tokens))
	for i, t := range tokens {
		patterns[i] = "%" + t + "%"
	}

	sql := fmt.Sprintf(`
		SELECT c.id, c.slug, c.name_ar, c.name_en, c.level, c.parent_id, c.path,
		       c.active, c.sort_order,
		       coalesce(ck.keywords_ar, '{}'), coalesce(ck.keywords_en, '{}'),
		       coalesce(ck.meta_keywords_ar, ''), coalesce(ck.meta_keywords_en, '')
		FROM %s c
		JOIN %s ck ON ck.category_id = c.id
		WHERE c.active AND ck.%s ILIKE ANY(@patterns::text[])
		ORDER BY c.level DESC, c.sort_order ASC
		LIMIT 1
	`, s.table("categories"), s.table("category_keywords"), metaCol)

	row := s.pool.QueryRow(ctx, sql, pgx.NamedArgs{"patterns": patterns})
	var c catalog.Category
	if err := row.Scan(&c.ID, &c.Slug, &c.NameAr, &c.NameEn, &c.Level, &c.ParentID, &c.Path,
		&c.Active, &c.SortOrder, &c.KeywordsAr, &c.KeywordsEn, &c.MetaAr, &c.MetaEn); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("pgstore: match category meta keyword: %w", err)
	}
	return &c, nil
}

// MatchCategoryFullText implements spec §4.3.1 step 4: a language-specific
// full-text query against name || description, falling back from
// websearch_to_tsquery to plainto_tsquery the way the teacher's
// search/fts.go does.
func (s *Store) MatchCategoryFullText(ctx context.Context, query string, language string) (*catalog.Category, error) {
	regconfig := regconfigForLanguage(language)
	nameCol := "name_en"
	descCol := "description_en"
	if language == "ar" {
		nameCol = "name_ar"
		descCol = "description_ar"
	}

	run := func(fn string) (*catalog.Category, error) {
		sql := fmt.Sprintf(`
			WITH q AS (SELECT %s(%s::regconfig, @query) AS tsq)
			SELECT c.id, c.slug, c.name_ar, c.name_en, c.level, c.parent_id, c.path,
			       c.active, c.sort_order,
			       coalesce(ck.keywords_ar, '{}'), coalesce(ck.keywords_en, '{}'),
			       coalesce(ck.meta_keywords_ar, ''), coalesce(ck.meta_keywords_en, '')
			FROM q, %s c
			LEFT JOIN %s ck ON ck.category_id = c.id
			WHERE c.active AND q.tsq IS NOT NULL
			  AND to_tsvector(%s::regconfig, coalesce(c.%s, '') || ' ' || coalesce(c.%s, '')) @@ q.tsq
			ORDER BY ts_rank_cd(to_tsvector(%s::regconfig, coalesce(c.%s, '') || ' ' || coalesce(c.%s, '')), q.tsq) DESC,
			         c.level DESC
			LIMIT 1
		`, fn, quoteLiteral(regconfig), s.table("categories"), s.table("category_keywords"),
			quoteLiteral(regconfig), nameCol, descCol, quoteLiteral(regconfig), nameCol, descCol)

		row := s.pool.QueryRow(ctx, sql, pgx.NamedArgs{"query": query})
		var c catalog.Category
		if err := row.Scan(&c.ID, &c.Slug, &c.NameAr, &c.NameEn, &c.Level, &c.ParentID, &c.Path,
			&c.Active, &c.SortOrder, &c.KeywordsAr, &c.KeywordsEn, &c.MetaAr, &c.MetaEn); err != nil {
			if err == pgx.ErrNoRows {
				return nil, nil
			}
			return nil, err
		}
		return &c, nil
	}

	c, err := run("websearch_to_tsquery")
	if err != nil {
		c, err = run("plainto_tsquery")
	}
	if err != nil {
		return nil, fmt.Errorf("pgstore: match category full text: %w", err)
	}
	return c, nil
}

// MatchCategoryTrigram implements spec §4.3.1 step 5: trigram similarity of
// the first token against name and slug, requiring similarity > 0.3.
func (s *Store) MatchCategoryTrigram(ctx context.Context, firstToken string, language string) (*catalog.Category, float64, error) {
	nameCol := "name_en"
	if language == "ar" {
		nameCol = "name_ar"
	}

	sql := fmt.Sprintf(`
		SELECT c.id, c.slug, c.name_ar, c.name_en, c.level, c.parent_id, c.path,
		       c.active, c.sort_order,
		       coalesce(ck.keywords_ar, '{}'), coalesce(ck.keywords_en, '{}'),
		       coalesce(ck.meta_keywords_ar, ''), coalesce(ck.meta_keywords_en, ''),
		       greatest(similarity(c.%s, @token), similarity(c.slug, @token))::float8 AS sim
		FROM %s c
		LEFT JOIN %s ck ON ck.category_id = c.id
		WHERE c.active AND greatest(similarity(c.%s, @token), similarity(c.slug, @token)) > 0.3
		ORDER BY sim DESC
		LIMIT 1
	`, nameCol, s.table("categories"), s.table("category_keywords"), nameCol)

	row := s.pool.QueryRow(ctx, sql, pgx.NamedArgs{"token": firstToken})
	var c catalog.Category
	var sim float64
	if err := row.Scan(&c.ID, &c.Slug, &c.NameAr, &c.NameEn, &c.Level, &c.ParentID, &c.Path,
		&c.Active, &c.SortOrder, &c.KeywordsAr, &c.KeywordsEn, &c.MetaAr, &c.MetaEn, &sim); err != nil {
		if err == pgx.ErrNoRows {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("pgstore: match category trigram: %w", err)
	}
	return &c, sim, nil
}

func quoteLiteral(s string) string {
	return "'" + escapeQuotes(s) + "'"
}

func escapeQuotes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'', '\'')
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
