package normalize

import "testing"

func TestNormalizeIdempotent(t *testing.T) {
	samples := []string{
		"سيارة تويوتا للبيع في دمشق",
		"شُقّة للإيجار",
		"Toyota for sale in Damascus",
		"",
		"   spaced   out   ",
	}
	for _, s := range samples {
		once := Normalize(s)
		twice := Normalize(string(once))
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}

func TestNormalizeFoldsHamzaAlef(t *testing.T) {
	got := Normalize("أحمد إبراهيم آمن ٱلرجل")
	if string(got) == "" {
		t.Fatal("expected non-empty normalization")
	}
	for _, r := range string(got) {
		switch r {
		case 'أ', 'إ', 'آ', 'ٱ':
			t.Fatalf("expected hamza/alef forms folded, got rune %q in %q", r, got)
		}
	}
}

func TestNormalizeFoldsYaAndTaMarbuta(t *testing.T) {
	got := Normalize("مدينة القرى")
	for _, r := range string(got) {
		if r == 'ى' || r == 'ة' {
			t.Fatalf("expected ya/ta-marbuta folded, got rune %q in %q", r, got)
		}
	}
}

func TestNormalizeStripsDiacritics(t *testing.T) {
	got := Normalize("مُحَمَّد")
	want := Normalize("محمد")
	if got != want {
		t.Errorf("Normalize(%q) = %q, want %q", "مُحَمَّد", got, want)
	}
}

func TestNormalizeStripsDefiniteArticle(t *testing.T) {
	got := Normalize("السيارة")
	if got == "السياره" {
		t.Fatal("expected leading definite article to be stripped")
	}
}

func TestTaMarbutaEquivalent(t *testing.T) {
	if !TaMarbutaEquivalent("شقة", "شقه") {
		t.Error("expected ta-marbuta variants to be equivalent")
	}
	if TaMarbutaEquivalent("شقة", "بيت") {
		t.Error("expected unrelated words to not be equivalent")
	}
}

func TestTokenizeDropsShortTokensAndStopwords(t *testing.T) {
	toks := Tokenize("و في سيارة من حلب إلى دمشق على الطريق أو شاحنة", Arabic)
	for _, tok := range toks {
		if len([]rune(tok)) <= 1 {
			t.Fatalf("token %q should have been dropped (length <= 1)", tok)
		}
	}
	// Includes the stopwords normalization rewrites (إلى→الي, على→علي,
	// أو→او): they must be dropped by their normalized form, not leak
	// through as keywords.
	for _, stop := range []string{"في", "من", "إلى", "على", "أو", "و"} {
		folded := string(Normalize(stop))
		for _, tok := range toks {
			if tok == stop || tok == folded {
				t.Fatalf("stopword %q (normalized %q) should have been dropped, got tokens %v", stop, folded, toks)
			}
		}
	}
}

func TestTokenizeEnglishStopwords(t *testing.T) {
	toks := Tokenize("a car for sale in Damascus", English)
	for _, tok := range toks {
		switch tok {
		case "a", "for", "in":
			t.Fatalf("stopword %q should have been dropped", tok)
		}
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	a := Tokenize("سيارة تويوتا للبيع في دمشق", Arabic)
	b := Tokenize("سيارة تويوتا للبيع في دمشق", Arabic)
	if len(a) != len(b) {
		t.Fatalf("non-deterministic tokenization: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic tokenization at %d: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestMeaningfulTokensMinLength(t *testing.T) {
	in := Tokens{"ab", "abc", "a"}
	out := MeaningfulTokens(in)
	if len(out) != 1 || out[0] != "abc" {
		t.Fatalf("expected only tokens of length >= 3, got %v", out)
	}
}
