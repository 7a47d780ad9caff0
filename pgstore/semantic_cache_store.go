package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/soukfinder/searchcore/catalog"
)

// SemanticCacheLookup implements spec §4.5's SemanticCache.lookup: nearest
// cached intent by cosine similarity, returning nil when the best match is
// below threshold. Exactly threshold is a hit (spec §8 boundary case).
func (s *Store) SemanticCacheLookup(ctx context.Context, queryVec []float32, threshold float64) (*catalog.Intent, error) {
	if len(queryVec) == 0 {
		return nil, nil
	}
	dim := len(queryVec)
	half := halfvecType(dim)

	sql := fmt.Sprintf(`
		SELECT query_text, parsed_result, hit_count, created_at, updated_at,
		       (1 - (query_embedding::%s <=> (@qvec::%s)))::float8 AS sim
		FROM %s
		ORDER BY query_embedding::%s <=> (@qvec::%s)
		LIMIT 1
	`, half, half, s.table("parsed_result_cache"), half, half)

	row := s.pool.QueryRow(ctx, sql, pgx.NamedArgs{"qvec": queryVector(queryVec)})
	var rec catalog.ParsedResultRecord
	var raw []byte
	var sim float64
	if err := row.Scan(&rec.NormalizedText, &raw, &rec.HitCount, &rec.CreatedAt, &rec.UpdatedAt, &sim); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("pgstore: semantic cache lookup: %w", err)
	}
	if sim < threshold {
		return nil, nil
	}

	if err := json.Unmarshal(raw, &rec.Intent); err != nil {
		return nil, fmt.Errorf("pgstore: decode cached intent: %w", err)
	}
	return &rec.Intent, nil
}

// SemanticCacheStore implements spec §4.5's SemanticCache.store: upsert by
// normalized text, incrementing hit_count on conflict.
func (s *Store) SemanticCacheStore(ctx context.Context, normalizedText string, queryVec []float32, intent catalog.Intent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("pgstore: encode intent: %w", err)
	}

	sql := fmt.Sprintf(`
		INSERT INTO %s AS prc (query_text, query_embedding, parsed_result, hit_count, created_at, updated_at)
		VALUES (@text, @vec, @result, 1, now(), now())
		ON CONFLICT (query_text) DO UPDATE SET
			parsed_result = EXCLUDED.parsed_result,
			hit_count = prc.hit_count + 1,
			updated_at = now()
	`, s.table("parsed_result_cache"))

	_, err = s.pool.Exec(ctx, sql, pgx.NamedArgs{
		"text":   normalizedText,
		"vec":    queryVector(queryVec),
		"result": payload,
	})
	if err != nil {
		return fmt.Errorf("pgstore: semantic cache store: %w", err)
	}
	return nil
}

// SemanticCacheEvictionCandidates returns the ids of cache rows matching
// spec §9's eviction policy: hit_count < 2 AND age > 7 days, OR age > 30
// days. Used by eviction.Runner.
func (s *Store) SemanticCacheEvictionCandidates(ctx context.Context, limit int) ([]int64, error) {
	sql := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE (hit_count < 2 AND created_at < now() - interval '7 days')
		   OR created_at < now() - interval '30 days'
		ORDER BY created_at ASC
		LIMIT @limit
	`, s.table("parsed_result_cache"))

	rows, err := s.pool.Query(ctx, sql, pgx.NamedArgs{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("pgstore: eviction candidates: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgstore: scan eviction candidate: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteSemanticCacheRows deletes the given cache rows by id.
func (s *Store) DeleteSemanticCacheRows(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	sql := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY(@ids::bigint[])`, s.table("parsed_result_cache"))
	tag, err := s.pool.Exec(ctx, sql, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return 0, fmt.Errorf("pgstore: delete eviction rows: %w", err)
	}
	return tag.RowsAffected(), nil
}
