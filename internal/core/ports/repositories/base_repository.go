package repositories

import "context"

// HealthChecker is implemented by storage backends that can report whether they are usable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
