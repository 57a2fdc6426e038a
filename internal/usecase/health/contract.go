package health

import "context"

// DBPinger checks Redis availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports whether the product index has been created.
type IndexChecker interface {
	IndexReady(ctx context.Context) (bool, error)
}

// ModelChecker checks a model provider (chat or embedding).
type ModelChecker interface {
	HealthCheck(ctx context.Context) error
}
