package valuation

import "context"

// Repository appends history records. Records are never updated or deleted.
type Repository interface {
	Append(ctx context.Context, record Record) error
	ListByPlayer(ctx context.Context, playerID string) ([]Record, error)
}
