package health

import "context"

// IndexPinger checks full-text index store availability.
type IndexPinger interface {
	Ping(ctx context.Context) error
}

// CachePinger checks result cache store availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
