package searchcore

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateUtterance_LengthBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		runes   int
		wantErr bool
	}{
		{"empty", 0, true},
		{"single char", 1, true},
		{"exactly 500", 500, false},
		{"501 chars", 501, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			utterance := strings.Repeat("a", tc.runes)
			err := validateUtterance(utterance, "en")
			if tc.wantErr && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("utterance of length %d: expected ErrInvalidInput, got %v", tc.runes, err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("utterance of length %d: expected no error, got %v", tc.runes, err)
			}
		})
	}
}

func TestValidateUtterance_UnknownLanguage(t *testing.T) {
	err := validateUtterance("سيارة للبيع", "fr")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown language, got %v", err)
	}
}

func TestValidateUtterance_KnownLanguages(t *testing.T) {
	for _, lang := range []string{"ar", "en"} {
		if err := validateUtterance("سيارة تويوتا للبيع", lang); err != nil {
			t.Fatalf("language %q: expected no error, got %v", lang, err)
		}
	}
}
