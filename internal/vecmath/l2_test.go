package vecmath

import (
	"math"
	"testing"
)

func TestL2NormalizeInPlace(t *testing.T) {
	vec := []float32{3, 4}
	L2NormalizeInPlace(vec)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1.0) > 1e-6 {
		t.Fatalf("expected unit norm, got %v (vec %v)", norm, vec)
	}
}

func TestL2NormalizeInPlaceZeroVector(t *testing.T) {
	vec := []float32{0, 0, 0}
	L2NormalizeInPlace(vec)
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("expected zero vector unchanged, got vec[%d] = %v", i, v)
		}
	}
}

func TestL2NormalizeInPlaceEmpty(t *testing.T) {
	L2NormalizeInPlace(nil) // must not panic
}
