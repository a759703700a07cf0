package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
)

// FeedService is the feed planning use-case surface.
type FeedService interface {
	NeededStock(ctx context.Context) (models.NeededStockReport, error)
	Balance(ctx context.Context) (models.ProductionBalanceReport, error)
	Rates(ctx context.Context) ([]models.ConsumptionRate, error)
	SetRate(ctx context.Context, rate models.ConsumptionRate) error
	ResetRates(ctx context.Context, species models.Species) ([]models.ConsumptionRate, error)
	Periods(ctx context.Context) ([]models.FeedingPeriod, error)
	SetPeriod(ctx context.Context, period models.FeedingPeriod) error
	Plans(ctx context.Context) ([]models.ProductionPlan, error)
	CreatePlan(ctx context.Context, plan models.ProductionPlan) (models.ProductionPlan, error)
	UpdatePlan(ctx context.Context, id string, plan models.ProductionPlan) (models.ProductionPlan, error)
	DeletePlan(ctx context.Context, id string) error
}

// BalanceReporter renders the current balance as a snapshot.
type BalanceReporter interface {
	Snapshot(ctx context.Context, now time.Time) (models.BalanceSnapshot, error)
}

// FeedHandler serves rations, feeding periods, production plans and the
// feed balance.
type FeedHandler struct {
	svc      FeedService
	reporter BalanceReporter
	logger   *zap.Logger
}

// NewFeedHandler constructs the HTTP handler adapter.
func NewFeedHandler(svc FeedService, reporter BalanceReporter, logger *zap.Logger) *FeedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedHandler{svc: svc, reporter: reporter, logger: logger}
}

// NeededStock returns the yearly need of the inventory.
func (h *FeedHandler) NeededStock(c *gin.Context) {
	report, err := h.svc.NeededStock(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Balance compares production plans with the needed stock.
func (h *FeedHandler) Balance(c *gin.Context) {
	report, err := h.svc.Balance(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// BalanceSnapshot returns needed stock and balance computed together.
func (h *FeedHandler) BalanceSnapshot(c *gin.Context) {
	snapshot, err := h.reporter.Snapshot(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Rates lists daily rations.
func (h *FeedHandler) Rates(c *gin.Context) {
	rates, err := h.svc.Rates(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, rates)
}

// SetRate stores one daily ration.
func (h *FeedHandler) SetRate(c *gin.Context) {
	var rate models.ConsumptionRate
	if err := c.ShouldBindJSON(&rate); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	if err := h.svc.SetRate(c.Request.Context(), rate); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, rate)
}

// ResetRates zeroes every ration of a species.
func (h *FeedHandler) ResetRates(c *gin.Context) {
	rates, err := h.svc.ResetRates(c.Request.Context(), models.Species(c.Param("species")))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, rates)
}

// Periods lists feeding periods.
func (h *FeedHandler) Periods(c *gin.Context) {
	periods, err := h.svc.Periods(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, periods)
}

type periodRequest struct {
	DaysPerYear int `json:"daysPerYear"`
}

// SetPeriod stores the feeding period of a food type.
func (h *FeedHandler) SetPeriod(c *gin.Context) {
	var req periodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	period := models.FeedingPeriod{FoodType: models.FoodType(c.Param("foodType")), DaysPerYear: req.DaysPerYear}
	if err := h.svc.SetPeriod(c.Request.Context(), period); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, period)
}

// Plans lists production plans.
func (h *FeedHandler) Plans(c *gin.Context) {
	plans, err := h.svc.Plans(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// CreatePlan stores a production plan.
func (h *FeedHandler) CreatePlan(c *gin.Context) {
	var plan models.ProductionPlan
	if err := c.ShouldBindJSON(&plan); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	created, err := h.svc.CreatePlan(c.Request.Context(), plan)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdatePlan replaces a production plan.
func (h *FeedHandler) UpdatePlan(c *gin.Context) {
	var plan models.ProductionPlan
	if err := c.ShouldBindJSON(&plan); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	updated, err := h.svc.UpdatePlan(c.Request.Context(), c.Param("id"), plan)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeletePlan removes a production plan.
func (h *FeedHandler) DeletePlan(c *gin.Context) {
	if err := h.svc.DeletePlan(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
