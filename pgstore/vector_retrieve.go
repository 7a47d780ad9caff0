package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/soukfinder/searchcore/catalog"
	"github.com/soukfinder/searchcore/filterbuilder"
)

// VectorSearchListings implements spec §4.8's VectorRetriever: a cosine KNN
// query against listing embeddings, filtered by pred, ordered by
// (cosine_similarity DESC, is_boosted DESC, priority DESC, created_at DESC).
// It follows the teacher's search.SearchVectors halfvec-cast shape.
func (s *Store) VectorSearchListings(ctx context.Context, queryVec []float32, language string, pred filterbuilder.Predicate, k int) ([]catalog.Listing, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(queryVec) == 0 {
		return nil, nil
	}
	dim := len(queryVec)
	half := halfvecType(dim)
	embeddingCol := "embedding_en"
	if language == "ar" {
		embeddingCol = "embedding_ar"
	}

	args := pgx.NamedArgs{"qvec": queryVector(queryVec), "limit": k}
	for k2, v := range pred.Args {
		args[k2] = v
	}

	sql := fmt.Sprintf(`
		SELECT %s, (1 - (l.%s::%s <=> (@qvec::%s)))::float8 AS similarity
		FROM %s l
		WHERE %s AND l.%s IS NOT NULL
		ORDER BY
		  l.%s::%s <=> (@qvec::%s),
		  l.boosted DESC,
		  l.priority DESC,
		  l.created_at DESC
		LIMIT @limit
	`, listingSelectList("l"), embeddingCol, half, half, s.table("listings"), pred.WhereSQL, embeddingCol, embeddingCol, half, half)

	rows, err := s.pool.Query(ctx, sql, args)
	if err != nil {
		return nil, fmt.Errorf("pgstore: vector search listings: %w", err)
	}
	defer rows.Close()
	return scanListingsWithSimilarity(rows)
}
