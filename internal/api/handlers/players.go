package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/futscout/scout-engine/internal/scout"
	"github.com/futscout/scout-engine/internal/similarity"
	"github.com/futscout/scout-engine/internal/utils"
)

// PlayerHandler serves per-player analysis: fit breakdowns, comparisons,
// similarity searches and feature importance.
type PlayerHandler struct {
	engine *scout.Engine
	logger *logrus.Logger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(engine *scout.Engine, logger *logrus.Logger) *PlayerHandler {
	return &PlayerHandler{
		engine: engine,
		logger: logger,
	}
}

// AnalyzePlayer returns the full fit breakdown for one player
func (h *PlayerHandler) AnalyzePlayer(c *gin.Context) {
	playerName := c.Param("name")

	result, err := h.engine.AnalyzePlayer(playerName)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, result)
}

// ComparePlayers returns both players' fit breakdowns side by side
func (h *PlayerHandler) ComparePlayers(c *gin.Context) {
	name := c.Param("name")
	other := c.Param("other")

	comparison, err := h.engine.ComparePlayers(name, other)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, comparison)
}

// FindSimilar returns the players statistically closest to the named one
func (h *PlayerHandler) FindSimilar(c *gin.Context) {
	opts := similarity.NewSearchOptions(c.Param("name"))

	if topN, err := strconv.Atoi(c.DefaultQuery("top_n", "0")); err == nil && topN > 0 {
		opts.TopN = topN
	}
	if minSim, err := strconv.ParseFloat(c.DefaultQuery("min_similarity", "0"), 64); err == nil && minSim > 0 {
		opts.MinSimilarity = minSim
	}
	if c.Query("any_position") == "true" {
		opts.SamePositionOnly = false
	}
	if c.Query("include_own_team") == "true" {
		opts.ExcludeSameTeam = false
	}

	players, err := h.engine.FindSimilar(opts)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, players)
}

// FindReplacements returns like-for-like replacement candidates from outside
// the reference team.
func (h *PlayerHandler) FindReplacements(c *gin.Context) {
	playerName := c.Param("name")
	topN, _ := strconv.Atoi(c.DefaultQuery("top_n", "0"))

	players, err := h.engine.FindReplacements(playerName, topN)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, players)
}

// GetFeatureImportance returns the features that most separate the player
// from the positional average.
func (h *PlayerHandler) GetFeatureImportance(c *gin.Context) {
	playerName := c.Param("name")
	topN, _ := strconv.Atoi(c.DefaultQuery("top_n", "0"))

	features, err := h.engine.FeatureImportance(playerName, topN)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, features)
}
