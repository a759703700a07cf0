package soil

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
	"github.com/bondastefana/farm-management-app/internal/domain/soilstats"
	"github.com/bondastefana/farm-management-app/internal/repository/mongodb"
)

// ConditionsApplier writes soil statistics into a parcel's conditions.
type ConditionsApplier interface {
	ApplySoilStatistics(ctx context.Context, parcelID string, stats models.SoilStatistics) (models.LocationConditions, error)
}

// CreateAnalysisInput carries the fields of a new analysis.
type CreateAnalysisInput struct {
	ParcelID       string              `json:"parcelId"`
	Date           time.Time           `json:"date"`
	Notes          string              `json:"notes"`
	LaboratoryName string              `json:"laboratoryName"`
	Samples        []models.SoilSample `json:"samples"`
}

// Service handles soil analyses and their statistics.
type Service struct {
	repo       mongodb.SoilRepository
	conditions ConditionsApplier
	now        func() time.Time
	logger     *zap.Logger
}

// NewService wires a soil service.
func NewService(repo mongodb.SoilRepository, conditions ConditionsApplier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:       repo,
		conditions: conditions,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

// CreateAnalysis stores a new analysis. Samples are optional but must be
// valid when present.
func (s *Service) CreateAnalysis(ctx context.Context, in CreateAnalysisInput) (models.SoilAnalysis, error) {
	parcelID := strings.TrimSpace(in.ParcelID)
	if parcelID == "" {
		return models.SoilAnalysis{}, models.NewValidationError("parcelId", in.ParcelID, "is required")
	}
	if in.Date.IsZero() {
		return models.SoilAnalysis{}, models.NewValidationError("date", in.Date, "is required")
	}
	if err := soilstats.Validate(in.Samples); err != nil {
		return models.SoilAnalysis{}, err
	}

	now := s.now()
	analysis := models.SoilAnalysis{
		ID:             uuid.NewString(),
		ParcelID:       parcelID,
		Date:           in.Date,
		Notes:          in.Notes,
		LaboratoryName: in.LaboratoryName,
		Samples:        in.Samples,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if analysis.Samples == nil {
		analysis.Samples = []models.SoilSample{}
	}

	if err := s.repo.CreateAnalysis(ctx, analysis); err != nil {
		return models.SoilAnalysis{}, err
	}

	s.logger.Info("soil analysis created",
		zap.String("analysis_id", analysis.ID),
		zap.String("parcel_id", analysis.ParcelID),
		zap.Int("samples", len(analysis.Samples)))
	return analysis, nil
}

// Get returns one analysis.
func (s *Service) Get(ctx context.Context, id string) (models.SoilAnalysis, error) {
	return s.repo.GetAnalysis(ctx, id)
}

// List returns a parcel's analyses, newest first.
func (s *Service) List(ctx context.Context, parcelID string) ([]models.SoilAnalysis, error) {
	return s.repo.ListAnalyses(ctx, parcelID)
}

// AppendSamples adds samples to an analysis. The whole resulting sample set
// is validated so sample numbers stay unique; the repository rejects numbers
// stored by a concurrent append after the read.
func (s *Service) AppendSamples(ctx context.Context, id string, samples []models.SoilSample) (models.SoilAnalysis, error) {
	if len(samples) == 0 {
		return models.SoilAnalysis{}, models.NewValidationError("samples", samples, "at least one sample is required")
	}

	analysis, err := s.repo.GetAnalysis(ctx, id)
	if err != nil {
		return models.SoilAnalysis{}, err
	}

	merged := make([]models.SoilSample, 0, len(analysis.Samples)+len(samples))
	merged = append(merged, analysis.Samples...)
	merged = append(merged, samples...)
	if err := soilstats.Validate(merged); err != nil {
		return models.SoilAnalysis{}, err
	}

	if err := s.repo.AppendSamples(ctx, id, samples, s.now()); err != nil {
		return models.SoilAnalysis{}, err
	}

	return s.repo.GetAnalysis(ctx, id)
}

// UpdateMetadata changes the notes and laboratory of an analysis. Samples are
// immutable through this path.
func (s *Service) UpdateMetadata(ctx context.Context, id, notes, laboratoryName string) (models.SoilAnalysis, error) {
	analysis, err := s.repo.GetAnalysis(ctx, id)
	if err != nil {
		return models.SoilAnalysis{}, err
	}

	now := s.now()
	if err := s.repo.UpdateAnalysisMetadata(ctx, id, notes, laboratoryName, now); err != nil {
		return models.SoilAnalysis{}, err
	}

	analysis.Notes = notes
	analysis.LaboratoryName = laboratoryName
	analysis.UpdatedAt = now
	return analysis, nil
}

// Statistics aggregates the samples of an analysis.
func (s *Service) Statistics(ctx context.Context, id string) (models.SoilStatistics, error) {
	analysis, err := s.repo.GetAnalysis(ctx, id)
	if err != nil {
		return models.SoilStatistics{}, err
	}
	return soilstats.Aggregate(analysis.Samples)
}

// Trend compares the two most recent analyses of a parcel. Nil is returned
// when fewer than two analyses exist.
func (s *Service) Trend(ctx context.Context, parcelID string) (*models.SoilTrend, error) {
	analyses, err := s.repo.ListAnalyses(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if len(analyses) < 2 {
		return nil, nil
	}

	current, err := soilstats.Aggregate(analyses[0].Samples)
	if err != nil {
		return nil, err
	}
	previous, err := soilstats.Aggregate(analyses[1].Samples)
	if err != nil {
		return nil, err
	}

	trend := soilstats.Compare(previous, current)
	return &trend, nil
}

// ApplyToConditions copies an analysis' means into its parcel's conditions.
func (s *Service) ApplyToConditions(ctx context.Context, id string) (models.LocationConditions, error) {
	analysis, err := s.repo.GetAnalysis(ctx, id)
	if err != nil {
		return models.LocationConditions{}, err
	}

	stats, err := soilstats.Aggregate(analysis.Samples)
	if err != nil {
		return models.LocationConditions{}, err
	}
	if stats.SampleCount == 0 {
		return models.LocationConditions{}, models.NewValidationError("samples", 0, "analysis has no samples to apply")
	}

	return s.conditions.ApplySoilStatistics(ctx, analysis.ParcelID, stats)
}
