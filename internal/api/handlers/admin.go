package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/futscout/scout-engine/internal/provider"
	"github.com/futscout/scout-engine/internal/scheduler"
	"github.com/futscout/scout-engine/internal/scout"
	"github.com/futscout/scout-engine/internal/utils"
)

// AdminHandler serves operational endpoints: engine rebuilds, scheduled job
// control and provider diagnostics.
type AdminHandler struct {
	engine  *scout.Engine
	refresh *scheduler.RefreshService // nil when background jobs are disabled
	client  *provider.Client          // nil when upstream sync is disabled
	breaker *provider.CircuitBreakerService
	logger  *logrus.Logger
}

// NewAdminHandler creates a new admin handler. refresh, client and breaker
// may be nil when the matching subsystem is disabled.
func NewAdminHandler(
	engine *scout.Engine,
	refresh *scheduler.RefreshService,
	client *provider.Client,
	breaker *provider.CircuitBreakerService,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		engine:  engine,
		refresh: refresh,
		client:  client,
		breaker: breaker,
		logger:  logger,
	}
}

// RebuildEngine reloads stored data and swaps in a fresh snapshot
func (h *AdminHandler) RebuildEngine(c *gin.Context) {
	h.logger.Info("Manual engine rebuild requested")

	if err := h.engine.Rebuild(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Manual engine rebuild failed")
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccessWithMessage(c, h.engine.Status(), "engine rebuilt")
}

// GetEngineStatus returns the engine build state and pool sizes
func (h *AdminHandler) GetEngineStatus(c *gin.Context) {
	utils.SendSuccess(c, h.engine.Status())
}

// GetJobs returns all scheduled jobs and their run history
func (h *AdminHandler) GetJobs(c *gin.Context) {
	if h.refresh == nil {
		utils.SendConflict(c, "background jobs are disabled")
		return
	}

	utils.SendSuccess(c, h.refresh.GetJobs())
}

// TriggerJob runs a scheduled job immediately
func (h *AdminHandler) TriggerJob(c *gin.Context) {
	if h.refresh == nil {
		utils.SendConflict(c, "background jobs are disabled")
		return
	}

	jobID := c.Param("id")
	if err := h.refresh.TriggerJob(jobID); err != nil {
		utils.SendNotFound(c, err.Error())
		return
	}

	utils.SendAccepted(c, gin.H{"job_id": jobID}, "job triggered")
}

// EnableJob re-enables a scheduled job
func (h *AdminHandler) EnableJob(c *gin.Context) {
	if h.refresh == nil {
		utils.SendConflict(c, "background jobs are disabled")
		return
	}

	jobID := c.Param("id")
	if err := h.refresh.EnableJob(jobID); err != nil {
		utils.SendNotFound(c, err.Error())
		return
	}

	utils.SendSuccessWithMessage(c, gin.H{"job_id": jobID}, "job enabled")
}

// DisableJob pauses a scheduled job
func (h *AdminHandler) DisableJob(c *gin.Context) {
	if h.refresh == nil {
		utils.SendConflict(c, "background jobs are disabled")
		return
	}

	jobID := c.Param("id")
	if err := h.refresh.DisableJob(jobID); err != nil {
		utils.SendNotFound(c, err.Error())
		return
	}

	utils.SendSuccessWithMessage(c, gin.H{"job_id": jobID}, "job disabled")
}

// GetCatalog returns the metric and position configuration the engine runs on
func (h *AdminHandler) GetCatalog(c *gin.Context) {
	catalog := h.engine.Catalog()

	utils.SendSuccess(c, gin.H{
		"normalized_features":   catalog.NormalizedFeatures,
		"position_features":     catalog.PositionFeatures,
		"profile_groups":        catalog.ProfileGroups,
		"dimensions":            catalog.Dimensions,
		"dimension_metrics":     catalog.DimensionMetrics,
		"position_mapping":      catalog.PositionMapping,
		"position_requirements": catalog.PositionRequirements,
	})
}

// GetProviderUsage returns upstream API usage and circuit breaker state
func (h *AdminHandler) GetProviderUsage(c *gin.Context) {
	if h.client == nil {
		utils.SendConflict(c, "upstream sync is disabled")
		return
	}

	usage := gin.H{
		"requests_today": h.client.RequestCount(),
	}
	if h.breaker != nil {
		usage["breaker_state"] = h.breaker.GetState(provider.BreakerStatsAPI).String()
		usage["breaker_counts"] = h.breaker.GetCounts(provider.BreakerStatsAPI)
	}

	utils.SendSuccess(c, usage)
}
