package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/futscout/scout-engine/internal/scout"
	"github.com/futscout/scout-engine/internal/utils"
)

// TeamHandler serves the reference team surface: the style profile, the
// current squad and the recruitment report built from both.
type TeamHandler struct {
	engine *scout.Engine
	logger *logrus.Logger
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(engine *scout.Engine, logger *logrus.Logger) *TeamHandler {
	return &TeamHandler{
		engine: engine,
		logger: logger,
	}
}

// GetTeamProfile returns the reference team's playing style profile
func (h *TeamHandler) GetTeamProfile(c *gin.Context) {
	profile, err := h.engine.Profile()
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, profile)
}

// GetCurrentSquad returns the reference team's latest-season squad
func (h *TeamHandler) GetCurrentSquad(c *gin.Context) {
	squad, err := h.engine.CurrentSquad()
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, squad)
}

// GetSquadNeeds returns per-position depth and impact flags
func (h *TeamHandler) GetSquadNeeds(c *gin.Context) {
	needs, err := h.engine.SquadNeeds()
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, needs)
}

// GetRecruitmentReport returns squad needs plus fit-ranked targets per position
func (h *TeamHandler) GetRecruitmentReport(c *gin.Context) {
	topN, _ := strconv.Atoi(c.DefaultQuery("top_n", "0"))
	minFit, _ := strconv.ParseFloat(c.DefaultQuery("min_fit", "0"), 64)

	report, err := h.engine.RecruitmentReport(topN, minFit)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, report)
}

// ExportResults writes the profile, report and squad to the export directory
// and returns the file paths.
func (h *TeamHandler) ExportResults(c *gin.Context) {
	paths, err := h.engine.ExportResults()
	if err != nil {
		h.logger.WithError(err).Error("Failed to export analysis results")
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccessWithMessage(c, paths, "analysis results exported")
}
