package usecase

import (
	"context"
	"sort"
	"sync"
	"time"
)

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

type HealthUsecase interface {
	// Check runs every probe and reports per-dependency status. ok is false
	// when any required probe fails.
	Check(ctx context.Context) (status map[string]string, ok bool)
}

type healthUsecase struct {
	required map[string]HealthCheck
	optional map[string]HealthCheck
	timeout  time.Duration
}

// NewHealthUsecase builds a checker. Optional probes are reported but never
// make the service unhealthy; Redis is optional because rate limiting falls
// back to memory.
func NewHealthUsecase(required, optional map[string]HealthCheck, timeout time.Duration) HealthUsecase {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &healthUsecase{required: required, optional: optional, timeout: timeout}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	type result struct {
		name     string
		err      error
		required bool
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []result
	)
	run := func(name string, check HealthCheck, required bool) {
		defer wg.Done()
		err := check(ctx)
		mu.Lock()
		results = append(results, result{name: name, err: err, required: required})
		mu.Unlock()
	}
	for name, check := range u.required {
		wg.Add(1)
		go run(name, check, true)
	}
	for name, check := range u.optional {
		wg.Add(1)
		go run(name, check, false)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].name < results[j].name })

	status := map[string]string{}
	ok := true
	for _, r := range results {
		switch {
		case r.err == nil:
			status[r.name] = "ok"
		case r.required:
			status[r.name] = "down"
			ok = false
		default:
			status[r.name] = "degraded"
		}
	}
	if ok {
		status["status"] = "ok"
	} else {
		status["status"] = "unavailable"
	}
	return status, ok
}
