package scout

import (
	"fmt"

	"github.com/futscout/scout-engine/internal/features"
	"github.com/futscout/scout-engine/internal/fit"
	"github.com/futscout/scout-engine/internal/models"
)

// positionOrder is the reporting order for position categories.
var positionOrder = []string{
	features.PositionGoalkeeper,
	features.PositionDefender,
	features.PositionMidfielder,
	features.PositionForward,
}

// CurrentSquad returns the reference team's squad in its most recent season.
func (e *Engine) CurrentSquad() (*models.SquadOverview, error) {
	snap, err := e.current()
	if err != nil {
		return nil, err
	}

	latest := ""
	found := false
	for i := range snap.records {
		rec := &snap.records[i]
		if !e.isReferenceTeam(rec.TeamName) {
			continue
		}
		found = true
		if rec.SeasonName > latest {
			latest = rec.SeasonName
		}
	}
	if !found {
		return nil, &models.InsufficientDataError{
			Operation: "current squad",
			Reason:    fmt.Sprintf("no player seasons for %s in the dataset", e.cfg.ReferenceTeam),
		}
	}

	var players []models.PlayerSeasonRecord
	counts := make(map[string]int)
	for i := range snap.records {
		rec := &snap.records[i]
		if !e.isReferenceTeam(rec.TeamName) || rec.SeasonName != latest {
			continue
		}
		players = append(players, *rec)
		counts[rec.PositionCategory]++
	}
	sortPlayersByName(players)

	return &models.SquadOverview{
		TeamName:       e.cfg.ReferenceTeam,
		SeasonName:     latest,
		Players:        players,
		PositionCounts: counts,
	}, nil
}

// SquadNeeds flags depth, impact and workload gaps per position in the current
// squad. Positions with no players at all are omitted.
func (e *Engine) SquadNeeds() (map[string]models.PositionNeeds, error) {
	squad, err := e.CurrentSquad()
	if err != nil {
		return nil, err
	}

	needs := make(map[string]models.PositionNeeds)
	for _, position := range positionOrder {
		var minutes, obv float64
		count := 0
		for i := range squad.Players {
			p := &squad.Players[i]
			if p.PositionCategory != position {
				continue
			}
			minutes += p.Minutes
			obv += p.OBV90
			count++
		}
		if count == 0 {
			continue
		}

		avgMinutes := minutes / float64(count)
		avgOBV := obv / float64(count)

		var flags []string
		if avgOBV < lowImpactOBV {
			flags = append(flags, fmt.Sprintf("Low average offensive impact (OBV %.2f)", avgOBV))
		}
		if count < minPositionDepth {
			flags = append(flags, fmt.Sprintf("Limited depth: only %d players", count))
		}
		if avgMinutes > heavyMinutesLoad {
			flags = append(flags, fmt.Sprintf("High minute load on key players (avg %.0f minutes)", avgMinutes))
		}

		needs[position] = models.PositionNeeds{
			PlayersCount: count,
			AvgMinutes:   avgMinutes,
			AvgOBV:       avgOBV,
			Needs:        flags,
		}
	}
	return needs, nil
}

// RecruitmentReport bundles the team profile, the squad needs and the top
// recommendations per position. A position with no viable candidates gets an
// empty list instead of failing the whole report. Reports are cached per
// parameter combination until the next rebuild.
func (e *Engine) RecruitmentReport(topN int, minFit float64) (*models.RecruitmentReport, error) {
	snap, err := e.current()
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = fit.DefaultTopN
	}
	if minFit <= 0 {
		minFit = fit.DefaultMinFit
	}

	if e.cache != nil {
		var cached models.RecruitmentReport
		if err := e.cache.GetRecruitmentReport(e.cfg.ReferenceTeam, topN, minFit, &cached); err == nil {
			e.logger.Debug("Serving recruitment report from cache")
			return &cached, nil
		}
	}

	needs, err := e.SquadNeeds()
	if err != nil {
		return nil, err
	}

	recommendations := make(map[string][]models.FitResult, len(positionOrder))
	for _, position := range positionOrder {
		results, err := snap.scorer.RecommendForPosition(position, fit.RecommendOptions{
			TopN:   topN,
			MinFit: minFit,
		})
		if err != nil {
			e.logger.WithError(err).WithField("position", position).
				Warn("No recommendations for position")
		}
		if results == nil {
			results = []models.FitResult{}
		}
		recommendations[position] = results
	}

	report := &models.RecruitmentReport{
		TeamProfile:     snap.profile,
		SquadNeeds:      needs,
		Recommendations: recommendations,
	}

	if e.cache != nil {
		if err := e.cache.SetRecruitmentReport(e.cfg.ReferenceTeam, topN, minFit, report); err != nil {
			e.logger.WithError(err).Warn("Failed to cache recruitment report")
		}
	}
	return report, nil
}
