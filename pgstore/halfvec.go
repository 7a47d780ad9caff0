package pgstore

import (
	"fmt"

	pgvector "github.com/pgvector/pgvector-go"
)

// halfvecType returns the SQL type name for a halfvec of the given
// dimension, matching the teacher's pg/halfvec.go.
func halfvecType(dim int) string {
	return fmt.Sprintf("halfvec(%d)", dim)
}

// queryVector wraps a []float32 for parameter binding via pgvector-go.
func queryVector(vec []float32) pgvector.HalfVector {
	return pgvector.NewHalfVector(vec)
}
