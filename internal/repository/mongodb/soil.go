package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

// SoilRepository stores soil analyses together with their samples.
type SoilRepository interface {
	CreateAnalysis(ctx context.Context, analysis models.SoilAnalysis) error
	GetAnalysis(ctx context.Context, id string) (models.SoilAnalysis, error)
	ListAnalyses(ctx context.Context, parcelID string) ([]models.SoilAnalysis, error)
	AppendSamples(ctx context.Context, id string, samples []models.SoilSample, updatedAt time.Time) error
	UpdateAnalysisMetadata(ctx context.Context, id, notes, laboratoryName string, updatedAt time.Time) error
}

// CreateAnalysis inserts a new soil analysis.
func (r *MongoDBRepository) CreateAnalysis(ctx context.Context, analysis models.SoilAnalysis) error {
	if analysis.Samples == nil {
		analysis.Samples = []models.SoilSample{}
	}
	if _, err := r.db.Collection(soilAnalysesCollection).InsertOne(ctx, analysis); err != nil {
		return fmt.Errorf("failed to insert soil analysis: %w", err)
	}
	return nil
}

// GetAnalysis loads one soil analysis.
func (r *MongoDBRepository) GetAnalysis(ctx context.Context, id string) (models.SoilAnalysis, error) {
	var analysis models.SoilAnalysis
	err := r.db.Collection(soilAnalysesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&analysis)
	if err != nil {
		return models.SoilAnalysis{}, fmt.Errorf("find soil analysis %s: %w", id, notFound(err))
	}
	return analysis, nil
}

// ListAnalyses returns the analyses of a parcel, newest first.
func (r *MongoDBRepository) ListAnalyses(ctx context.Context, parcelID string) ([]models.SoilAnalysis, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.db.Collection(soilAnalysesCollection).Find(ctx, bson.M{"parcel_id": parcelID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list soil analyses: %w", err)
	}

	analyses := []models.SoilAnalysis{}
	if err := cursor.All(ctx, &analyses); err != nil {
		return nil, fmt.Errorf("decode soil analyses: %w", err)
	}
	return analyses, nil
}

// AppendSamples pushes new samples onto an existing analysis. The update only
// matches while none of the new sample numbers is stored yet, so concurrent
// appends cannot both persist the same number.
func (r *MongoDBRepository) AppendSamples(ctx context.Context, id string, samples []models.SoilSample, updatedAt time.Time) error {
	coll := r.db.Collection(soilAnalysesCollection)
	update := bson.M{
		"$push": bson.M{"samples": bson.M{"$each": samples}},
		"$set":  bson.M{"updated_at": updatedAt},
	}
	res, err := coll.UpdateOne(ctx, appendSamplesFilter(id, samples), update)
	if err != nil {
		return fmt.Errorf("append soil samples: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("append soil samples: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("append soil samples to %s: %w", id, ErrNotFound)
	}
	return models.NewValidationError("samples.sampleNumber", sampleNumbers(samples), "duplicated within the analysis")
}

func appendSamplesFilter(id string, samples []models.SoilSample) bson.M {
	return bson.M{
		"_id":                   id,
		"samples.sample_number": bson.M{"$nin": sampleNumbers(samples)},
	}
}

func sampleNumbers(samples []models.SoilSample) []int {
	numbers := make([]int, len(samples))
	for i, s := range samples {
		numbers[i] = s.SampleNumber
	}
	return numbers
}

// UpdateAnalysisMetadata changes the only mutable fields of an analysis.
func (r *MongoDBRepository) UpdateAnalysisMetadata(ctx context.Context, id, notes, laboratoryName string, updatedAt time.Time) error {
	update := bson.M{"$set": bson.M{
		"notes":           notes,
		"laboratory_name": laboratoryName,
		"updated_at":      updatedAt,
	}}
	res, err := r.db.Collection(soilAnalysesCollection).UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("update soil analysis: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update soil analysis %s: %w", id, ErrNotFound)
	}
	return nil
}
