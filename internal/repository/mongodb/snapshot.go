package mongodb

import (
	"context"
	"fmt"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

// SnapshotRepository archives weekly balance reports.
type SnapshotRepository interface {
	SaveBalanceSnapshot(ctx context.Context, snapshot models.BalanceSnapshot) error
}

// SaveBalanceSnapshot saves a balance snapshot to the database.
func (r *MongoDBRepository) SaveBalanceSnapshot(ctx context.Context, snapshot models.BalanceSnapshot) error {
	_, err := r.db.Collection(balanceSnapshotsCollection).InsertOne(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("failed to insert balance snapshot: %w", err)
	}
	return nil
}
