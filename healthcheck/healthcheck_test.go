package healthcheck

import (
	"context"
	"errors"
	"testing"
)

func TestRun_AllPass(t *testing.T) {
	report := Run(context.Background(),
		Checker{Name: "store", Check: func(ctx context.Context) error { return nil }},
		Checker{Name: "hotcache", Check: func(ctx context.Context) error { return nil }},
	)
	if report.Status != "ok" {
		t.Fatalf("expected ok, got %q", report.Status)
	}
	if len(report.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(report.Components))
	}
}

func TestRun_OneFails(t *testing.T) {
	report := Run(context.Background(),
		Checker{Name: "store", Check: func(ctx context.Context) error { return nil }},
		Checker{Name: "llm", Check: func(ctx context.Context) error { return errors.New("unreachable") }},
	)
	if report.Status != "fail" {
		t.Fatalf("expected fail, got %q", report.Status)
	}
	var sawFailure bool
	for _, c := range report.Components {
		if c.Name == "llm" {
			if c.Status != "fail" || c.Error == "" {
				t.Fatalf("expected llm component to report its error, got %+v", c)
			}
			sawFailure = true
		}
	}
	if !sawFailure {
		t.Fatal("expected an llm component in the report")
	}
}

func TestRun_NoCheckers(t *testing.T) {
	report := Run(context.Background())
	if report.Status != "ok" {
		t.Fatalf("expected ok with no checkers, got %q", report.Status)
	}
}
