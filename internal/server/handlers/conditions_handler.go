package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
	"github.com/bondastefana/farm-management-app/internal/service/location"
)

// ConditionsService is the parcel conditions use-case surface.
type ConditionsService interface {
	Get(ctx context.Context, parcelID string) (models.LocationConditions, error)
	SetLocation(ctx context.Context, parcelID string, loc models.Location) (models.LocationConditions, error)
	Refresh(ctx context.Context, parcelID string) (location.RefreshResult, error)
	Revert(ctx context.Context, parcelID string) (location.RefreshResult, error)
	Edit(ctx context.Context, parcelID, category, field string, value any) (models.LocationConditions, error)
	Recommendations(ctx context.Context, parcelID string) ([]models.CropRecommendation, error)
}

// ConditionsHandler serves parcel conditions and crop recommendations.
type ConditionsHandler struct {
	svc    ConditionsService
	logger *zap.Logger
}

// NewConditionsHandler constructs the HTTP handler adapter.
func NewConditionsHandler(svc ConditionsService, logger *zap.Logger) *ConditionsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConditionsHandler{svc: svc, logger: logger}
}

// Get returns the conditions of a parcel.
func (h *ConditionsHandler) Get(c *gin.Context) {
	conditions, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, conditions)
}

// SetLocation records the coordinates of a parcel.
func (h *ConditionsHandler) SetLocation(c *gin.Context) {
	var loc models.Location
	if err := c.ShouldBindJSON(&loc); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	conditions, err := h.svc.SetLocation(c.Request.Context(), c.Param("id"), loc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, conditions)
}

// Refresh pulls external data, keeping manual overrides.
func (h *ConditionsHandler) Refresh(c *gin.Context) {
	result, err := h.svc.Refresh(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Revert pulls external data and drops manual overrides it can replace.
func (h *ConditionsHandler) Revert(c *gin.Context) {
	result, err := h.svc.Revert(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type editRequest struct {
	Category string `json:"category" binding:"required"`
	Field    string `json:"field" binding:"required"`
	Value    any    `json:"value"`
}

// Edit applies one manual override.
func (h *ConditionsHandler) Edit(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	conditions, err := h.svc.Edit(c.Request.Context(), c.Param("id"), req.Category, req.Field, req.Value)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, conditions)
}

// Recommendations ranks the crop catalog for a parcel.
func (h *ConditionsHandler) Recommendations(c *gin.Context) {
	recs, err := h.svc.Recommendations(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}
