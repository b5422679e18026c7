package storage

import (
	"context"

	"propwatch/models"
)

// Sink is the persisted record set: a flat table with one row per
// PropertyRecord. Save must be all-or-nothing relative to the prior state;
// callers serialize the read-merge-write cycle around it.
type Sink interface {
	Load(ctx context.Context) ([]models.PropertyRecord, error)
	Save(ctx context.Context, records []models.PropertyRecord) error
}
