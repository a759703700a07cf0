package feed

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bondastefana/farm-management-app/internal/domain/balance"
	"github.com/bondastefana/farm-management-app/internal/domain/models"
	"github.com/bondastefana/farm-management-app/internal/repository/mongodb"
)

// Service exposes the feed resource planning use-cases.
type Service struct {
	repo   mongodb.FeedRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewService wires a feed service.
func NewService(repo mongodb.FeedRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// NeededStock computes the yearly need of the current inventory.
func (s *Service) NeededStock(ctx context.Context) (models.NeededStockReport, error) {
	inventory, err := s.repo.CountAnimalsBySpecies(ctx)
	if err != nil {
		return models.NeededStockReport{}, err
	}
	rates, err := s.repo.ListRates(ctx)
	if err != nil {
		return models.NeededStockReport{}, err
	}
	periods, err := s.repo.ListPeriods(ctx)
	if err != nil {
		return models.NeededStockReport{}, err
	}
	return balance.NeededStock(inventory, rates, periods)
}

// Balance compares the production plans with the needed stock.
func (s *Service) Balance(ctx context.Context) (models.ProductionBalanceReport, error) {
	needed, err := s.NeededStock(ctx)
	if err != nil {
		return models.ProductionBalanceReport{}, err
	}
	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return models.ProductionBalanceReport{}, err
	}
	return balance.ProductionBalance(plans, needed)
}

// Rates lists the configured daily rations.
func (s *Service) Rates(ctx context.Context) ([]models.ConsumptionRate, error) {
	return s.repo.ListRates(ctx)
}

// SetRate stores the daily ration of one species for one food type.
func (s *Service) SetRate(ctx context.Context, rate models.ConsumptionRate) error {
	switch {
	case !rate.Species.Valid():
		return models.NewValidationError("species", rate.Species, "unknown species")
	case !rate.FoodType.Valid():
		return models.NewValidationError("foodType", rate.FoodType, "unknown food type")
	case !(rate.KgPerAnimalPerDay >= 0) || math.IsInf(rate.KgPerAnimalPerDay, 1):
		return models.NewValidationError("kgPerAnimalPerDay", rate.KgPerAnimalPerDay, "must be a finite number not below 0")
	}
	return s.repo.UpsertRate(ctx, rate)
}

// ResetRates zeroes every ration of a species and returns the resulting rate
// table.
func (s *Service) ResetRates(ctx context.Context, species models.Species) ([]models.ConsumptionRate, error) {
	if !species.Valid() {
		return nil, models.NewValidationError("species", species, "unknown species")
	}

	rates, err := s.repo.ListRates(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ResetRates(ctx, species); err != nil {
		return nil, err
	}

	s.logger.Info("consumption rates reset", zap.String("species", string(species)))
	return balance.ResetConsumptionRates(rates, species), nil
}

// Periods lists the configured feeding periods.
func (s *Service) Periods(ctx context.Context) ([]models.FeedingPeriod, error) {
	return s.repo.ListPeriods(ctx)
}

// SetPeriod stores how many days per year a food type is fed.
func (s *Service) SetPeriod(ctx context.Context, period models.FeedingPeriod) error {
	if !period.FoodType.Valid() {
		return models.NewValidationError("foodType", period.FoodType, "unknown food type")
	}
	if period.DaysPerYear < 1 || period.DaysPerYear > 365 {
		return models.NewValidationError("daysPerYear", period.DaysPerYear, "must be within [1, 365]")
	}
	return s.repo.UpsertPeriod(ctx, period)
}

// Plans lists the production plans.
func (s *Service) Plans(ctx context.Context) ([]models.ProductionPlan, error) {
	return s.repo.ListPlans(ctx)
}

// CreatePlan validates and stores a new production plan.
func (s *Service) CreatePlan(ctx context.Context, plan models.ProductionPlan) (models.ProductionPlan, error) {
	plan.Culture = strings.TrimSpace(plan.Culture)
	if err := balance.ValidatePlan(plan); err != nil {
		return models.ProductionPlan{}, err
	}

	now := s.now()
	plan.ID = uuid.NewString()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return models.ProductionPlan{}, err
	}

	s.logger.Info("production plan created",
		zap.String("plan_id", plan.ID),
		zap.String("crop_type", string(plan.CropType)),
		zap.Float64("surface_ha", plan.SurfaceHectares))
	return plan, nil
}

// UpdatePlan replaces the editable fields of a plan.
func (s *Service) UpdatePlan(ctx context.Context, id string, plan models.ProductionPlan) (models.ProductionPlan, error) {
	current, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return models.ProductionPlan{}, err
	}

	plan.ID = current.ID
	plan.Culture = strings.TrimSpace(plan.Culture)
	plan.CreatedAt = current.CreatedAt
	plan.UpdatedAt = s.now()
	if err := balance.ValidatePlan(plan); err != nil {
		return models.ProductionPlan{}, err
	}

	if err := s.repo.UpdatePlan(ctx, plan); err != nil {
		return models.ProductionPlan{}, err
	}
	return plan, nil
}

// DeletePlan removes a plan.
func (s *Service) DeletePlan(ctx context.Context, id string) error {
	return s.repo.DeletePlan(ctx, id)
}
