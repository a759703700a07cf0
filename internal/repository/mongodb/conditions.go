package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

// ConditionsRepository stores one LocationConditions record per parcel.
type ConditionsRepository interface {
	GetConditions(ctx context.Context, parcelID string) (models.LocationConditions, error)
	SaveConditions(ctx context.Context, conditions models.LocationConditions) error
	ListConditions(ctx context.Context) ([]models.LocationConditions, error)
}

// GetConditions loads the conditions of a parcel.
func (r *MongoDBRepository) GetConditions(ctx context.Context, parcelID string) (models.LocationConditions, error) {
	var c models.LocationConditions
	err := r.db.Collection(locationConditionsCollection).FindOne(ctx, bson.M{"_id": parcelID}).Decode(&c)
	if err != nil {
		return models.LocationConditions{}, fmt.Errorf("find conditions for parcel %s: %w", parcelID, notFound(err))
	}
	return c, nil
}

// SaveConditions replaces (or creates) the conditions of a parcel.
func (r *MongoDBRepository) SaveConditions(ctx context.Context, conditions models.LocationConditions) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.db.Collection(locationConditionsCollection).ReplaceOne(ctx, bson.M{"_id": conditions.ParcelID}, conditions, opts)
	if err != nil {
		return fmt.Errorf("save conditions for parcel %s: %w", conditions.ParcelID, err)
	}
	return nil
}

// ListConditions returns every stored parcel record.
func (r *MongoDBRepository) ListConditions(ctx context.Context) ([]models.LocationConditions, error) {
	cursor, err := r.db.Collection(locationConditionsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list conditions: %w", err)
	}

	var out []models.LocationConditions
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode conditions: %w", err)
	}
	return out, nil
}
