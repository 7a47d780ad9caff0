package matcher

import "testing"

func TestKeywordMatchesExact(t *testing.T) {
	if !keywordMatches("سيارة", "سيارة") {
		t.Error("expected exact match")
	}
}

func TestKeywordMatchesTaMarbuta(t *testing.T) {
	if !keywordMatches("سيارة", "سياره") {
		t.Error("expected ta-marbuta-folded match")
	}
}

func TestKeywordMatchesRejectsShortSubstring(t *testing.T) {
	if keywordMatches("سيارة فاخرة جدا جدا", "جدا") {
		t.Error("expected short low-overlap substring to not match")
	}
}

func TestKeywordMatchesSubstringWithHighOverlap(t *testing.T) {
	if !keywordMatches("toyota", "toyot") {
		t.Error("expected high-overlap substring to match")
	}
}

func TestCountMatchesDistinctTokens(t *testing.T) {
	n := countMatches([]string{"سيارة", "تويوتا"}, []string{"سيارة", "تويوتا", "غير_ذلك"})
	if n != 2 {
		t.Fatalf("countMatches = %d, want 2", n)
	}
}
