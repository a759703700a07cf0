package location

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/bondastefana/farm-management-app/internal/domain/conditions"
	"github.com/bondastefana/farm-management-app/internal/domain/models"
	"github.com/bondastefana/farm-management-app/internal/domain/suitability"
	"github.com/bondastefana/farm-management-app/internal/metrics"
	"github.com/bondastefana/farm-management-app/internal/repository/mongodb"
	"github.com/bondastefana/farm-management-app/pkg/clients/geodata"
)

// Refresh triggers recorded in metrics.
const (
	TriggerManual    = "manual"
	TriggerRevert    = "revert"
	TriggerScheduled = "scheduled"
)

// RefreshResult is the outcome of an automatic refresh. Errors lists the
// categories the external source could not provide.
type RefreshResult struct {
	Conditions models.LocationConditions `json:"conditions"`
	Errors     []string                  `json:"errors,omitempty"`
}

// Service owns parcel conditions and the crop recommendations derived from
// them.
type Service struct {
	repo    mongodb.ConditionsRepository
	fetcher geodata.Client
	catalog []models.CropProfile
	cache   *cache.Cache
	metrics *metrics.Metrics
	now     func() time.Time
	logger  *zap.Logger

	// generations counts saves per parcel. A recommendation computed from a
	// read is cached only if no save happened since that read.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewService wires a location service.
func NewService(repo mongodb.ConditionsRepository, fetcher geodata.Client, catalog []models.CropProfile, cacheTTL time.Duration, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		fetcher: fetcher,
		catalog: catalog,
		cache:   cache.New(cacheTTL, 2*cacheTTL),
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,

		generations: map[string]uint64{},
	}
}

// Get returns the stored conditions of a parcel.
func (s *Service) Get(ctx context.Context, parcelID string) (models.LocationConditions, error) {
	if err := validateParcelID(parcelID); err != nil {
		return models.LocationConditions{}, err
	}
	return s.repo.GetConditions(ctx, parcelID)
}

// SetLocation records where a parcel is. The rest of the record is kept.
func (s *Service) SetLocation(ctx context.Context, parcelID string, loc models.Location) (models.LocationConditions, error) {
	if err := validateParcelID(parcelID); err != nil {
		return models.LocationConditions{}, err
	}
	if !(loc.Latitude >= -90 && loc.Latitude <= 90) {
		return models.LocationConditions{}, models.NewValidationError("location.latitude", loc.Latitude, "must be between -90 and 90")
	}
	if !(loc.Longitude >= -180 && loc.Longitude <= 180) {
		return models.LocationConditions{}, models.NewValidationError("location.longitude", loc.Longitude, "must be between -180 and 180")
	}

	current, err := s.loadOrNew(ctx, parcelID)
	if err != nil {
		return models.LocationConditions{}, err
	}

	current.Location = loc
	current.LastUpdated = s.now()
	return current, s.save(ctx, current)
}

// Refresh fetches external data and merges it, keeping manual overrides.
func (s *Service) Refresh(ctx context.Context, parcelID string) (RefreshResult, error) {
	return s.refresh(ctx, parcelID, TriggerManual, conditions.MergeAutoUpdate)
}

// Revert fetches external data and replaces every leaf it provides,
// discarding manual overrides on those leaves.
func (s *Service) Revert(ctx context.Context, parcelID string) (RefreshResult, error) {
	return s.refresh(ctx, parcelID, TriggerRevert, conditions.RevertToAuto)
}

type mergeFunc func(current, fetched models.LocationConditions, now time.Time) models.LocationConditions

func (s *Service) refresh(ctx context.Context, parcelID, trigger string, merge mergeFunc) (result RefreshResult, err error) {
	defer func() { s.metrics.RecordRefresh(trigger, err) }()

	if err := validateParcelID(parcelID); err != nil {
		return RefreshResult{}, err
	}

	current, err := s.repo.GetConditions(ctx, parcelID)
	if err != nil {
		return RefreshResult{}, err
	}

	started := time.Now()
	fetched, err := s.fetcher.Fetch(ctx, current.Location)
	s.metrics.RecordFetch(time.Since(started), fetched.Errors)
	switch {
	case errors.Is(err, geodata.ErrNoCoordinates):
		return RefreshResult{}, models.NewValidationError("location", current.Location, "parcel has no coordinates")
	case err != nil:
		return RefreshResult{}, fmt.Errorf("fetch conditions for parcel %s: %w", parcelID, err)
	}

	next := merge(current, fetched.Conditions, s.now())
	if err := s.save(ctx, next); err != nil {
		return RefreshResult{}, err
	}

	if len(fetched.Errors) > 0 {
		s.logger.Warn("partial conditions refresh",
			zap.String("parcel_id", parcelID),
			zap.Strings("failed_categories", fetched.Errors))
	}

	return RefreshResult{Conditions: next, Errors: fetched.Errors}, nil
}

// Edit applies one manual override.
func (s *Service) Edit(ctx context.Context, parcelID, category, field string, value any) (models.LocationConditions, error) {
	if err := validateParcelID(parcelID); err != nil {
		return models.LocationConditions{}, err
	}

	current, err := s.loadOrNew(ctx, parcelID)
	if err != nil {
		return models.LocationConditions{}, err
	}

	next, err := conditions.ApplyManualEdit(current, category, field, value, s.now())
	if err != nil {
		return models.LocationConditions{}, err
	}

	return next, s.save(ctx, next)
}

// ApplySoilStatistics copies laboratory means into the parcel's soil leaves.
func (s *Service) ApplySoilStatistics(ctx context.Context, parcelID string, stats models.SoilStatistics) (models.LocationConditions, error) {
	if err := validateParcelID(parcelID); err != nil {
		return models.LocationConditions{}, err
	}

	current, err := s.loadOrNew(ctx, parcelID)
	if err != nil {
		return models.LocationConditions{}, err
	}

	next, err := conditions.ApplySoilStatistics(current, stats, s.now())
	if err != nil {
		return models.LocationConditions{}, err
	}

	return next, s.save(ctx, next)
}

// Recommendations ranks the catalog for a parcel. A parcel without recorded
// conditions gets an empty list.
func (s *Service) Recommendations(ctx context.Context, parcelID string) ([]models.CropRecommendation, error) {
	if err := validateParcelID(parcelID); err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(parcelID); ok {
		s.metrics.RecordRecommendations(true)
		return cloneRecommendations(cached.([]models.CropRecommendation)), nil
	}

	s.mu.Lock()
	generation := s.generations[parcelID]
	s.mu.Unlock()

	current, err := s.repo.GetConditions(ctx, parcelID)
	if err != nil && !errors.Is(err, mongodb.ErrNotFound) {
		return nil, err
	}

	recs := suitability.Score(current, s.catalog)

	s.mu.Lock()
	if s.generations[parcelID] == generation {
		s.cache.SetDefault(parcelID, recs)
	}
	s.mu.Unlock()

	s.metrics.RecordRecommendations(false)
	return cloneRecommendations(recs), nil
}

func cloneRecommendations(recs []models.CropRecommendation) []models.CropRecommendation {
	out := make([]models.CropRecommendation, len(recs))
	for i, r := range recs {
		r.Explanations = append([]models.ParameterExplanation(nil), r.Explanations...)
		out[i] = r
	}
	return out
}

// RefreshAll refreshes every parcel that has coordinates. A failing parcel
// does not stop the others; the number of failures is returned.
func (s *Service) RefreshAll(ctx context.Context) (refreshed, failed int, err error) {
	all, err := s.repo.ListConditions(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, c := range all {
		if ctx.Err() != nil {
			return refreshed, failed, ctx.Err()
		}
		if !c.Location.HasCoordinates() {
			continue
		}
		if _, err := s.refresh(ctx, c.ParcelID, TriggerScheduled, conditions.MergeAutoUpdate); err != nil {
			failed++
			s.logger.Error("scheduled refresh failed", zap.String("parcel_id", c.ParcelID), zap.Error(err))
			continue
		}
		refreshed++
	}

	return refreshed, failed, nil
}

func (s *Service) loadOrNew(ctx context.Context, parcelID string) (models.LocationConditions, error) {
	current, err := s.repo.GetConditions(ctx, parcelID)
	if errors.Is(err, mongodb.ErrNotFound) {
		return models.LocationConditions{ParcelID: parcelID}, nil
	}
	return current, err
}

func (s *Service) save(ctx context.Context, c models.LocationConditions) error {
	if err := s.repo.SaveConditions(ctx, c); err != nil {
		return err
	}

	s.mu.Lock()
	s.generations[c.ParcelID]++
	s.cache.Delete(c.ParcelID)
	s.mu.Unlock()
	return nil
}

func validateParcelID(id string) error {
	if strings.TrimSpace(id) == "" {
		return models.NewValidationError("parcelId", id, "is required")
	}
	return nil
}
