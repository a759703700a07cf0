package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when the requested document does not exist.
var ErrNotFound = errors.New("document not found")

const (
	soilAnalysesCollection       = "soil_analyses"
	locationConditionsCollection = "location_conditions"
	animalsCollection            = "animals"
	consumptionRatesCollection   = "consumption_rates"
	feedingPeriodsCollection     = "feeding_periods"
	productionPlansCollection    = "production_plans"
	balanceSnapshotsCollection   = "balance_snapshots"
)

// MongoDBRepository is the persistence collaborator of the decision engine.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
	}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	indexes := map[string]mongo.IndexModel{
		soilAnalysesCollection: {
			Keys: bson.D{{Key: "parcel_id", Value: 1}, {Key: "date", Value: -1}},
		},
		consumptionRatesCollection: {
			Keys:    bson.D{{Key: "species", Value: 1}, {Key: "food_type", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		animalsCollection: {
			Keys: bson.D{{Key: "species", Value: 1}},
		},
	}

	for coll, model := range indexes {
		if _, err := r.db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", coll, err)
		}
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
