// Package healthcheck implements spec §6's healthCheck() → {status,
// components} shape. Modeled on MrWong99-glyphoxa's internal/health/health.go
// Checker-list pattern, minus its net/http handler: transport is out of
// scope for this core (spec §1), so Run executes named checks concurrently
// and returns a structured Report rather than writing an HTTP response.
package healthcheck

import (
	"context"
	"sync"
	"time"
)

// checkTimeout bounds how long any single Checker may run before its
// context is cancelled.
const checkTimeout = 5 * time.Second

// Checker is a named health check, mirroring glyphoxa's health.Checker.
type Checker struct {
	// Name labels this check in the report (e.g. "store", "hotcache",
	// "llm", "embedder").
	Name string
	// Check probes the dependency; nil means healthy.
	Check func(ctx context.Context) error
}

// ComponentStatus is one component's result in a Report.
type ComponentStatus struct {
	Name   string
	Status string // "ok" | "fail"
	Error  string `json:"error,omitempty"`
}

// Report is spec §6's {status, components} shape.
type Report struct {
	Status     string // "ok" | "fail"
	Components []ComponentStatus
}

// Run evaluates every checker concurrently and aggregates the results. The
// overall status is "fail" if any component fails.
func Run(ctx context.Context, checkers ...Checker) Report {
	components := make([]ComponentStatus, len(checkers))

	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			err := c.Check(cctx)
			if err != nil {
				components[i] = ComponentStatus{Name: c.Name, Status: "fail", Error: err.Error()}
				return
			}
			components[i] = ComponentStatus{Name: c.Name, Status: "ok"}
		}(i, c)
	}
	wg.Wait()

	status := "ok"
	for _, c := range components {
		if c.Status != "ok" {
			status = "fail"
			break
		}
	}
	return Report{Status: status, Components: components}
}
