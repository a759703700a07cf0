package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bondastefana/farm-management-app/internal/domain/models"
	"github.com/bondastefana/farm-management-app/internal/service/soil"
)

// SoilService is the soil analysis use-case surface.
type SoilService interface {
	CreateAnalysis(ctx context.Context, in soil.CreateAnalysisInput) (models.SoilAnalysis, error)
	Get(ctx context.Context, id string) (models.SoilAnalysis, error)
	List(ctx context.Context, parcelID string) ([]models.SoilAnalysis, error)
	AppendSamples(ctx context.Context, id string, samples []models.SoilSample) (models.SoilAnalysis, error)
	UpdateMetadata(ctx context.Context, id, notes, laboratoryName string) (models.SoilAnalysis, error)
	Statistics(ctx context.Context, id string) (models.SoilStatistics, error)
	Trend(ctx context.Context, parcelID string) (*models.SoilTrend, error)
	ApplyToConditions(ctx context.Context, id string) (models.LocationConditions, error)
}

// SoilHandler serves soil analyses.
type SoilHandler struct {
	svc    SoilService
	logger *zap.Logger
}

// NewSoilHandler constructs the HTTP handler adapter.
func NewSoilHandler(svc SoilService, logger *zap.Logger) *SoilHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SoilHandler{svc: svc, logger: logger}
}

// Create stores a new analysis.
func (h *SoilHandler) Create(c *gin.Context) {
	var in soil.CreateAnalysisInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	analysis, err := h.svc.CreateAnalysis(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, analysis)
}

// Get returns one analysis.
func (h *SoilHandler) Get(c *gin.Context) {
	analysis, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// ListByParcel returns the analyses of a parcel.
func (h *SoilHandler) ListByParcel(c *gin.Context) {
	analyses, err := h.svc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, analyses)
}

type appendSamplesRequest struct {
	Samples []models.SoilSample `json:"samples"`
}

// AppendSamples adds samples to an analysis.
func (h *SoilHandler) AppendSamples(c *gin.Context) {
	var req appendSamplesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	analysis, err := h.svc.AppendSamples(c.Request.Context(), c.Param("id"), req.Samples)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

type updateMetadataRequest struct {
	Notes          string `json:"notes"`
	LaboratoryName string `json:"laboratoryName"`
}

// UpdateMetadata edits notes and laboratory of an analysis.
func (h *SoilHandler) UpdateMetadata(c *gin.Context) {
	var req updateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	analysis, err := h.svc.UpdateMetadata(c.Request.Context(), c.Param("id"), req.Notes, req.LaboratoryName)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// Statistics returns the aggregated means of an analysis.
func (h *SoilHandler) Statistics(c *gin.Context) {
	stats, err := h.svc.Statistics(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Trend compares the two latest analyses of a parcel.
func (h *SoilHandler) Trend(c *gin.Context) {
	trend, err := h.svc.Trend(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trend": trend})
}

// Apply copies the analysis means into the parcel's conditions.
func (h *SoilHandler) Apply(c *gin.Context) {
	conditions, err := h.svc.ApplyToConditions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, conditions)
}
