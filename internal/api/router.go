// Package api wires the HTTP surface: middleware, handlers and routes.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/futscout/scout-engine/internal/api/handlers"
	"github.com/futscout/scout-engine/internal/config"
	"github.com/futscout/scout-engine/internal/middleware"
	"github.com/futscout/scout-engine/internal/provider"
	"github.com/futscout/scout-engine/internal/scheduler"
	"github.com/futscout/scout-engine/internal/scout"
)

// Deps carries everything the router needs. Refresh, Client and Breaker may
// be nil when the matching subsystem is disabled.
type Deps struct {
	Config  *config.Config
	Engine  *scout.Engine
	Store   handlers.DataStore
	Cache   handlers.CacheChecker
	Refresh *scheduler.RefreshService
	Client  *provider.Client
	Breaker *provider.CircuitBreakerService
	Logger  *logrus.Logger
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(deps.Logger), gin.Recovery())
	router.Use(middleware.CORS(deps.Config.CorsOrigins))

	healthHandler := handlers.NewHealthHandler(deps.Store, deps.Cache, deps.Engine, deps.Logger)
	teamHandler := handlers.NewTeamHandler(deps.Engine, deps.Logger)
	playerHandler := handlers.NewPlayerHandler(deps.Engine, deps.Logger)
	recruitHandler := handlers.NewRecruitHandler(deps.Engine, deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.Engine, deps.Refresh, deps.Client, deps.Breaker, deps.Logger)

	apiV1 := router.Group("/api/v1")
	{
		// Reference team endpoints
		apiV1.GET("/team/profile", teamHandler.GetTeamProfile)
		apiV1.GET("/team/squad", teamHandler.GetCurrentSquad)
		apiV1.GET("/team/needs", teamHandler.GetSquadNeeds)
		apiV1.GET("/team/report", teamHandler.GetRecruitmentReport)
		apiV1.POST("/team/export", teamHandler.ExportResults)

		// Player analysis endpoints
		apiV1.GET("/players/:name/fit", playerHandler.AnalyzePlayer)
		apiV1.GET("/players/:name/similar", playerHandler.FindSimilar)
		apiV1.GET("/players/:name/replacements", playerHandler.FindReplacements)
		apiV1.GET("/players/:name/importance", playerHandler.GetFeatureImportance)
		apiV1.GET("/players/:name/compare/:other", playerHandler.ComparePlayers)

		// Recruitment endpoints
		apiV1.GET("/recruit/positions/:position", recruitHandler.RecommendForPosition)
		apiV1.GET("/recruit/positions/:position/profile", recruitHandler.RecommendByProfile)
		apiV1.GET("/recruit/positions/:position/requirements", recruitHandler.GetPositionRequirements)

		// Operational endpoints
		admin := apiV1.Group("/admin")
		{
			admin.POST("/engine/rebuild", adminHandler.RebuildEngine)
			admin.GET("/engine/status", adminHandler.GetEngineStatus)
			admin.GET("/jobs", adminHandler.GetJobs)
			admin.POST("/jobs/:id/trigger", adminHandler.TriggerJob)
			admin.POST("/jobs/:id/enable", adminHandler.EnableJob)
			admin.POST("/jobs/:id/disable", adminHandler.DisableJob)
			admin.GET("/catalog", adminHandler.GetCatalog)
			admin.GET("/provider/usage", adminHandler.GetProviderUsage)
		}
	}

	// Health check endpoints (support both GET and HEAD)
	router.GET("/health", healthHandler.GetHealth)
	router.HEAD("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.HEAD("/ready", healthHandler.GetReady)
	router.GET("/metrics", healthHandler.GetMetrics)

	return router
}
