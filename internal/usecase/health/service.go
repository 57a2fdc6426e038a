package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means answers may be poorer: a model provider is down or the index is missing.
	Degraded Status = "degraded"
	// Unhealthy means Redis is unreachable; nothing can be served.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckMissing indicates the product index does not exist yet.
	CheckMissing CheckResult = "missing"
)

// Component names in Report.Checks.
const (
	ComponentDatabase  = "database"
	ComponentIndex     = "index"
	ComponentEmbedding = "embedding"
	ComponentChat      = "chat"
)

// DefaultTimeout bounds each component check.
const DefaultTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	index     IndexChecker
	embedding ModelChecker
	chat      ModelChecker
	timeout   time.Duration
}

// New creates a Service. index, embedding and chat can be nil.
func New(db DBPinger, index IndexChecker, embedding, chat ModelChecker) *Service {
	return &Service{db: db, index: index, embedding: embedding, chat: chat, timeout: DefaultTimeout}
}

// Check runs all component checks concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, 4)
	)
	run := func(name string, fn func(context.Context) CheckResult) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			r := fn(cctx)
			mu.Lock()
			checks[name] = r
			mu.Unlock()
		}()
	}

	run(ComponentDatabase, func(ctx context.Context) CheckResult { return result(s.db.Ping(ctx)) })
	if s.index != nil {
		run(ComponentIndex, func(ctx context.Context) CheckResult {
			ok, err := s.index.IndexReady(ctx)
			switch {
			case err != nil:
				return CheckError
			case !ok:
				return CheckMissing
			}
			return CheckOK
		})
	}
	if s.embedding != nil {
		run(ComponentEmbedding, func(ctx context.Context) CheckResult { return result(s.embedding.HealthCheck(ctx)) })
	}
	if s.chat != nil {
		run(ComponentChat, func(ctx context.Context) CheckResult { return result(s.chat.HealthCheck(ctx)) })
	}
	wg.Wait()

	status := Healthy
	for _, v := range checks {
		if v != CheckOK {
			status = Degraded
			break
		}
	}
	if checks[ComponentDatabase] != CheckOK {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
