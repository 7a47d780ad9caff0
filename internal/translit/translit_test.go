package translit

import "testing"

func TestASCII(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Damascus!", "damascus"},
		{"  Aleppo,  Syria ", "aleppo syria"},
	}
	for _, c := range cases {
		if got := ASCII(c.in); got != c.want {
			t.Errorf("ASCII(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsLatinQuery(t *testing.T) {
	if IsLatinQuery("دمشق") {
		t.Error("expected Arabic-script text to not be a latin query")
	}
	if !IsLatinQuery("Dimashq") {
		t.Error("expected ASCII text to be a latin query")
	}
	if IsLatinQuery("") {
		t.Error("expected empty string to not be a latin query")
	}
}
