package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

// FeedRepository covers animal counts, rations, feeding periods and
// production plans.
type FeedRepository interface {
	CountAnimalsBySpecies(ctx context.Context) (models.Inventory, error)

	ListRates(ctx context.Context) ([]models.ConsumptionRate, error)
	UpsertRate(ctx context.Context, rate models.ConsumptionRate) error
	ResetRates(ctx context.Context, species models.Species) error

	ListPeriods(ctx context.Context) ([]models.FeedingPeriod, error)
	UpsertPeriod(ctx context.Context, period models.FeedingPeriod) error

	ListPlans(ctx context.Context) ([]models.ProductionPlan, error)
	GetPlan(ctx context.Context, id string) (models.ProductionPlan, error)
	CreatePlan(ctx context.Context, plan models.ProductionPlan) error
	UpdatePlan(ctx context.Context, plan models.ProductionPlan) error
	DeletePlan(ctx context.Context, id string) error
}

// CountAnimalsBySpecies groups the animal records owned by the dashboard.
func (r *MongoDBRepository) CountAnimalsBySpecies(ctx context.Context) (models.Inventory, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$species"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.db.Collection(animalsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count animals: %w", err)
	}

	var rows []struct {
		Species models.Species `bson:"_id"`
		Count   int            `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode animal counts: %w", err)
	}

	inventory := make(models.Inventory, len(rows))
	for _, row := range rows {
		inventory[row.Species] = row.Count
	}
	return inventory, nil
}

// ListRates returns every configured ration.
func (r *MongoDBRepository) ListRates(ctx context.Context) ([]models.ConsumptionRate, error) {
	cursor, err := r.db.Collection(consumptionRatesCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list consumption rates: %w", err)
	}

	rates := []models.ConsumptionRate{}
	if err := cursor.All(ctx, &rates); err != nil {
		return nil, fmt.Errorf("decode consumption rates: %w", err)
	}
	return rates, nil
}

// UpsertRate stores the ration of one species for one food type.
func (r *MongoDBRepository) UpsertRate(ctx context.Context, rate models.ConsumptionRate) error {
	filter := bson.M{"species": rate.Species, "food_type": rate.FoodType}
	update := bson.M{"$set": bson.M{"kg_per_animal_per_day": rate.KgPerAnimalPerDay}}

	_, err := r.db.Collection(consumptionRatesCollection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert consumption rate: %w", err)
	}
	return nil
}

// ResetRates sets every ration of a species to zero in one statement.
func (r *MongoDBRepository) ResetRates(ctx context.Context, species models.Species) error {
	filter := bson.M{"species": species}
	update := bson.M{"$set": bson.M{"kg_per_animal_per_day": 0.0}}

	if _, err := r.db.Collection(consumptionRatesCollection).UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("reset consumption rates for %s: %w", species, err)
	}
	return nil
}

// ListPeriods returns the configured feeding periods.
func (r *MongoDBRepository) ListPeriods(ctx context.Context) ([]models.FeedingPeriod, error) {
	cursor, err := r.db.Collection(feedingPeriodsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list feeding periods: %w", err)
	}

	periods := []models.FeedingPeriod{}
	if err := cursor.All(ctx, &periods); err != nil {
		return nil, fmt.Errorf("decode feeding periods: %w", err)
	}
	return periods, nil
}

// UpsertPeriod stores the feeding period of a food type.
func (r *MongoDBRepository) UpsertPeriod(ctx context.Context, period models.FeedingPeriod) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.db.Collection(feedingPeriodsCollection).ReplaceOne(ctx, bson.M{"_id": period.FoodType}, period, opts); err != nil {
		return fmt.Errorf("upsert feeding period: %w", err)
	}
	return nil
}

// ListPlans returns all production plans ordered by creation.
func (r *MongoDBRepository) ListPlans(ctx context.Context) ([]models.ProductionPlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.db.Collection(productionPlansCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list production plans: %w", err)
	}

	plans := []models.ProductionPlan{}
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("decode production plans: %w", err)
	}
	return plans, nil
}

// GetPlan loads one production plan.
func (r *MongoDBRepository) GetPlan(ctx context.Context, id string) (models.ProductionPlan, error) {
	var plan models.ProductionPlan
	if err := r.db.Collection(productionPlansCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&plan); err != nil {
		return models.ProductionPlan{}, fmt.Errorf("find production plan %s: %w", id, notFound(err))
	}
	return plan, nil
}

// CreatePlan inserts a production plan.
func (r *MongoDBRepository) CreatePlan(ctx context.Context, plan models.ProductionPlan) error {
	if _, err := r.db.Collection(productionPlansCollection).InsertOne(ctx, plan); err != nil {
		return fmt.Errorf("failed to insert production plan: %w", err)
	}
	return nil
}

// UpdatePlan replaces an existing production plan.
func (r *MongoDBRepository) UpdatePlan(ctx context.Context, plan models.ProductionPlan) error {
	res, err := r.db.Collection(productionPlansCollection).ReplaceOne(ctx, bson.M{"_id": plan.ID}, plan)
	if err != nil {
		return fmt.Errorf("update production plan: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update production plan %s: %w", plan.ID, ErrNotFound)
	}
	return nil
}

// DeletePlan removes a production plan.
func (r *MongoDBRepository) DeletePlan(ctx context.Context, id string) error {
	res, err := r.db.Collection(productionPlansCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete production plan: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete production plan %s: %w", id, ErrNotFound)
	}
	return nil
}
