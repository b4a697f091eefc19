package storage

import (
	"context"

	"flyer-deals/models"
)

// DealStore is the interface any persistence backend must satisfy.
type DealStore interface {
	// LoadStores returns every row of the stores collection.
	LoadStores(ctx context.Context) ([]models.Store, error)
	// DeleteExpired removes deals whose valid_to is strictly before the
	// given ISO date and reports how many were removed when known.
	DeleteExpired(ctx context.Context, before string) (int64, error)
	// UpsertDeals inserts the batch, replacing rows that share conflictKey.
	UpsertDeals(ctx context.Context, deals []*models.Deal, conflictKey []string) error
	Close() error
}

// DealSnapshotWriter is the interface for exporting a fetched snapshot.
type DealSnapshotWriter interface {
	WriteDeals(deals []*models.Deal) error
	Close() error
}
