package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/soukfinder/searchcore/catalog"
)

// ActiveDescendants walks every active descendant of parentID via a
// recursive CTE (spec §6: "Recursive CTE for descendant walks").
func (s *Store) ActiveDescendants(ctx context.Context, parentID int64) ([]catalog.Category, error) {
	sql := fmt.Sprintf(`
		WITH RECURSIVE descendants AS (
			SELECT c.id, c.slug, c.name_ar, c.name_en, c.level, c.parent_id, c.path, c.active, c.sort_order
			FROM %s c
			WHERE c.parent_id = @parent_id AND c.active
			UNION ALL
			SELECT c.id, c.slug, c.name_ar, c.name_en, c.level, c.parent_id, c.path, c.active, c.sort_order
			FROM %s c
			JOIN descendants d ON c.parent_id = d.id
			WHERE c.active
		)
		SELECT d.id, d.slug, d.name_ar, d.name_en, d.level, d.parent_id, d.path, d.active, d.sort_order,
		       coalesce(ck.keywords_ar, '{}'), coalesce(ck.keywords_en, '{}'),
		       coalesce(ck.meta_keywords_ar, ''), coalesce(ck.meta_keywords_en, ''),
		       NOT EXISTS (
		         SELECT 1 FROM %s child WHERE child.parent_id = d.id AND child.active
		       ) AS is_leaf
		FROM descendants d
		LEFT JOIN %s ck ON ck.category_id = d.id
	`, s.table("categories"), s.table("categories"), s.table("categories"), s.table("category_keywords"))

	rows, err := s.pool.Query(ctx, sql, pgx.NamedArgs{"parent_id": parentID})
	if err != nil {
		return nil, fmt.Errorf("pgstore: active descendants: %w", err)
	}
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		var c catalog.Category
		var isLeaf bool
		if err := rows.Scan(&c.ID, &c.Slug, &c.NameAr, &c.NameEn, &c.Level, &c.ParentID, &c.Path, &c.Active, &c.SortOrder,
			&c.KeywordsAr, &c.KeywordsEn, &c.MetaAr, &c.MetaEn, &isLeaf); err != nil {
			return nil, fmt.Errorf("pgstore: scan descendant: %w", err)
		}
		if isLeaf {
			out = append(out, c)
		}
	}
	return out, rows.Err()
}

// ParentCategory resolves a category's parent by id, used by the
// orchestrator's recursive parent-category fallback (spec §4.9 step 6) and
// by §9's "parent resolution is a lookup, not an owning reference" design
// note.
func (s *Store) ParentCategory(ctx context.Context, categoryID int64) (*catalog.Category, error) {
	sql := fmt.Sprintf(`
		SELECT p.id, p.slug, p.name_ar, p.name_en, p.level, p.parent_id, p.path, p.active, p.sort_order,
		       coalesce(ck.keywords_ar, '{}'), coalesce(ck.keywords_en, '{}'),
		       coalesce(ck.meta_keywords_ar, ''), coalesce(ck.meta_keywords_en, '')
		FROM %s c
		JOIN %s p ON p.id = c.parent_id
		LEFT JOIN %s ck ON ck.category_id = p.id
		WHERE c.id = @id
	`, s.table("categories"), s.table("categories"), s.table("category_keywords"))

	row := s.pool.QueryRow(ctx, sql, pgx.NamedArgs{"id": categoryID})
	var c catalog.Category
	if err := row.Scan(&c.ID, &c.Slug, &c.NameAr, &c.NameEn, &c.Level, &c.ParentID, &c.Path, &c.Active, &c.SortOrder,
		&c.KeywordsAr, &c.KeywordsEn, &c.MetaAr, &c.MetaEn); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("pgstore: parent category: %w", err)
	}
	return &c, nil
}
