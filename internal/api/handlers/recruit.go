package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/futscout/scout-engine/internal/features"
	"github.com/futscout/scout-engine/internal/fit"
	"github.com/futscout/scout-engine/internal/scout"
	"github.com/futscout/scout-engine/internal/similarity"
	"github.com/futscout/scout-engine/internal/utils"
)

// RecruitHandler serves position-driven recruitment queries.
type RecruitHandler struct {
	engine *scout.Engine
	logger *logrus.Logger
}

// NewRecruitHandler creates a new recruitment handler
func NewRecruitHandler(engine *scout.Engine, logger *logrus.Logger) *RecruitHandler {
	return &RecruitHandler{
		engine: engine,
		logger: logger,
	}
}

func normalizePosition(raw string) (string, bool) {
	position := strings.ToUpper(strings.TrimSpace(raw))
	switch position {
	case features.PositionGoalkeeper, features.PositionDefender,
		features.PositionMidfielder, features.PositionForward:
		return position, true
	}
	return "", false
}

// RecommendForPosition returns the best-fitting external players for one
// position category.
func (h *RecruitHandler) RecommendForPosition(c *gin.Context) {
	position, ok := normalizePosition(c.Param("position"))
	if !ok {
		utils.SendBadRequest(c, "unknown position category, expected one of GK, DEF, MED, FWD")
		return
	}

	opts := fit.RecommendOptions{}
	opts.TopN, _ = strconv.Atoi(c.DefaultQuery("top_n", "0"))
	opts.MinFit, _ = strconv.ParseFloat(c.DefaultQuery("min_fit", "0"), 64)
	if exclude := c.Query("exclude"); exclude != "" {
		opts.ExcludeTeams = strings.Split(exclude, ",")
	}

	results, err := h.engine.RecommendForPosition(position, opts)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, results)
}

// RecommendByProfile ranks players for a position against a weighted blend of
// the attacking, defensive and passing profile groups.
func (h *RecruitHandler) RecommendByProfile(c *gin.Context) {
	position, ok := normalizePosition(c.Param("position"))
	if !ok {
		utils.SendBadRequest(c, "unknown position category, expected one of GK, DEF, MED, FWD")
		return
	}

	weights := similarity.ProfileWeights{}
	weights.Attacking, _ = strconv.ParseFloat(c.DefaultQuery("attacking", "0"), 64)
	weights.Defensive, _ = strconv.ParseFloat(c.DefaultQuery("defensive", "0"), 64)
	weights.Passing, _ = strconv.ParseFloat(c.DefaultQuery("passing", "0"), 64)

	topN, _ := strconv.Atoi(c.DefaultQuery("top_n", "0"))
	minMinutes, _ := strconv.ParseFloat(c.DefaultQuery("min_minutes", "0"), 64)

	scores, err := h.engine.RecommendByProfile(position, weights, topN, minMinutes)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, scores)
}

// GetPositionRequirements returns the profile-group weighting used for a
// position category.
func (h *RecruitHandler) GetPositionRequirements(c *gin.Context) {
	position, ok := normalizePosition(c.Param("position"))
	if !ok {
		utils.SendBadRequest(c, "unknown position category, expected one of GK, DEF, MED, FWD")
		return
	}

	utils.SendSuccess(c, h.engine.PositionRequirements(position))
}
