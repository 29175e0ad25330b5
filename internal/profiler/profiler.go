// Package profiler builds multi-season team playing-style profiles from team
// season statistics and match results.
package profiler

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/futscout/scout-engine/internal/features"
	"github.com/futscout/scout-engine/internal/models"
	"github.com/futscout/scout-engine/pkg/logger"
)

// StatsSource supplies the season-level inputs a profile is built from.
type StatsSource interface {
	TeamSeasonStats(ctx context.Context, ref models.SeasonRef) ([]models.TeamSeasonRecord, error)
	SeasonMatches(ctx context.Context, ref models.SeasonRef) ([]models.MatchRecord, error)
}

// Profiler computes team profiles across the configured seasons.
type Profiler struct {
	source  StatsSource
	catalog *features.Catalog
	logger  *logrus.Logger
}

// New creates a team profiler reading from source.
func New(source StatsSource, catalog *features.Catalog) *Profiler {
	return &Profiler{
		source:  source,
		catalog: catalog,
		logger:  logger.GetLogger(),
	}
}

// BuildProfile assembles the profile of the team whose name contains teamName
// (case-insensitive) across the given seasons. Name variants widen the match
// and win-rate attribution for clubs that appear under several spellings; an
// empty variants list falls back to the query name alone.
//
// Seasons that fail to load are skipped with a warning. No season data at all
// yields an InsufficientDataError; seasons without the requested team yield a
// NotFoundError.
func (p *Profiler) BuildProfile(ctx context.Context, teamName string, variants []string, seasons []models.SeasonRef) (*models.TeamProfile, error) {
	if len(variants) == 0 {
		variants = []string{teamName}
	}

	var (
		teamRows    []models.TeamSeasonRecord
		allRows     []models.TeamSeasonRecord
		teamMatches []models.MatchRecord
	)

	for _, ref := range seasons {
		stats, err := p.source.TeamSeasonStats(ctx, ref)
		if err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"competition_id": ref.CompetitionID,
				"season_id":      ref.SeasonID,
			}).Warn("Skipping season, team stats unavailable")
			continue
		}
		allRows = append(allRows, stats...)

		for i := range stats {
			if containsFold(stats[i].TeamName, teamName) {
				teamRows = append(teamRows, stats[i])
				break
			}
		}

		matches, err := p.source.SeasonMatches(ctx, ref)
		if err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"competition_id": ref.CompetitionID,
				"season_id":      ref.SeasonID,
			}).Warn("Skipping season matches, fixture data unavailable")
			continue
		}
		for i := range matches {
			if matchesAnyVariant(matches[i].HomeTeam, variants) || matchesAnyVariant(matches[i].AwayTeam, variants) {
				teamMatches = append(teamMatches, matches[i])
			}
		}
	}

	if len(allRows) == 0 {
		return nil, &models.InsufficientDataError{
			Operation: "build team profile",
			Reason:    "no team season data available for the requested seasons",
		}
	}
	if len(teamRows) == 0 {
		return nil, &models.NotFoundError{Resource: "team", Query: teamName}
	}

	// Earliest season first so trends read chronologically.
	sort.Slice(teamRows, func(i, j int) bool { return teamRows[i].SeasonID < teamRows[j].SeasonID })

	profile := &models.TeamProfile{
		Metadata: models.ProfileMetadata{
			TeamName: teamName,
			Seasons:  len(teamRows),
			Matches:  len(teamMatches),
			WinRate:  p.winRate(teamMatches, variants),
		},
		Averages:    p.dimensionAverages(teamRows),
		Trends:      p.dimensionTrends(teamRows),
		Consistency: p.dimensionConsistency(teamRows),
		Rankings:    p.dimensionRankings(teamRows, allRows),
	}

	profile.Dimensions = make(map[string]float64, len(p.catalog.Dimensions))
	for _, dim := range p.catalog.Dimensions {
		if rank, ok := profile.Rankings[dim]; ok {
			profile.Dimensions[dim] = rank
		} else {
			profile.Dimensions[dim] = 50.0
		}
	}

	logger.WithTeamContext(teamName, len(teamRows)).WithFields(logrus.Fields{
		"matches":  len(teamMatches),
		"win_rate": profile.Metadata.WinRate,
	}).Info("Built team profile")

	return profile, nil
}

// PositionRequirements returns the recruitment weights for a position,
// falling back to the midfielder requirement for unknown positions.
func (p *Profiler) PositionRequirements(position string) features.PositionRequirement {
	return p.catalog.RequirementsFor(position)
}

// dimensionAverages computes, per dimension, the mean over its metrics of
// each metric's mean across the profiled seasons.
func (p *Profiler) dimensionAverages(teamRows []models.TeamSeasonRecord) map[string]float64 {
	out := make(map[string]float64, len(p.catalog.Dimensions))
	for _, dim := range p.catalog.Dimensions {
		var metricMeans []float64
		for _, metric := range p.catalog.DimensionMetrics[dim] {
			if vals := metricValues(teamRows, metric); len(vals) > 0 {
				metricMeans = append(metricMeans, stat.Mean(vals, nil))
			}
		}
		if len(metricMeans) > 0 {
			out[dim] = stat.Mean(metricMeans, nil)
		} else {
			out[dim] = 0.0
		}
	}
	return out
}

// dimensionTrends compares the most recent profiled season against the
// earliest one. Fewer than two seasons yield no trends.
func (p *Profiler) dimensionTrends(teamRows []models.TeamSeasonRecord) map[string]models.Trend {
	out := make(map[string]models.Trend)
	if len(teamRows) < 2 {
		return out
	}
	earliest := &teamRows[0]
	latest := &teamRows[len(teamRows)-1]

	for _, dim := range p.catalog.Dimensions {
		var earliestVals, latestVals []float64
		for _, metric := range p.catalog.DimensionMetrics[dim] {
			ev, eok := earliest.Metric(metric)
			lv, lok := latest.Metric(metric)
			if eok && lok {
				earliestVals = append(earliestVals, ev)
				latestVals = append(latestVals, lv)
			}
		}
		if len(earliestVals) == 0 {
			continue
		}
		delta := stat.Mean(latestVals, nil) - stat.Mean(earliestVals, nil)
		direction := models.TrendStable
		switch {
		case delta > 0:
			direction = models.TrendImproving
		case delta < 0:
			direction = models.TrendDeclining
		}
		out[dim] = models.Trend{Delta: delta, Direction: direction}
	}
	return out
}

// dimensionConsistency is the mean of the constituent metrics' standard
// deviations across seasons; low values mean a stable identity. A single
// season has no spread and reports 0.
func (p *Profiler) dimensionConsistency(teamRows []models.TeamSeasonRecord) map[string]float64 {
	out := make(map[string]float64, len(p.catalog.Dimensions))
	for _, dim := range p.catalog.Dimensions {
		var stds []float64
		for _, metric := range p.catalog.DimensionMetrics[dim] {
			if vals := metricValues(teamRows, metric); len(vals) >= 2 {
				stds = append(stds, stat.StdDev(vals, nil))
			}
		}
		if len(stds) > 0 {
			out[dim] = stat.Mean(stds, nil)
		} else {
			out[dim] = 0.0
		}
	}
	return out
}

// dimensionRankings places the team's per-metric season averages on the
// empirical distribution of every team season in the source data, as the
// percentage of values at or below the team's. Dimensions without any
// comparable metric sit at the 50th percentile.
func (p *Profiler) dimensionRankings(teamRows, allRows []models.TeamSeasonRecord) map[string]float64 {
	out := make(map[string]float64, len(p.catalog.Dimensions))
	for _, dim := range p.catalog.Dimensions {
		var percentiles []float64
		for _, metric := range p.catalog.DimensionMetrics[dim] {
			teamVals := metricValues(teamRows, metric)
			population := metricValues(allRows, metric)
			if len(teamVals) == 0 || len(population) == 0 {
				continue
			}
			teamAvg := stat.Mean(teamVals, nil)
			sort.Float64s(population)
			percentiles = append(percentiles, stat.CDF(teamAvg, stat.Empirical, population, nil)*100)
		}
		if len(percentiles) > 0 {
			out[dim] = stat.Mean(percentiles, nil)
		} else {
			out[dim] = 50.0
		}
	}
	return out
}

// winRate computes the percentage of matched fixtures the team won. Home or
// away is attributed by name variant; draws and losses count against.
func (p *Profiler) winRate(matches []models.MatchRecord, variants []string) float64 {
	if len(matches) == 0 {
		return 0.0
	}
	wins := 0
	for i := range matches {
		m := &matches[i]
		switch {
		case matchesAnyVariant(m.HomeTeam, variants):
			if m.HomeScore > m.AwayScore {
				wins++
			}
		case matchesAnyVariant(m.AwayTeam, variants):
			if m.AwayScore > m.HomeScore {
				wins++
			}
		}
	}
	return float64(wins) / float64(len(matches)) * 100
}

func metricValues(rows []models.TeamSeasonRecord, metric string) []float64 {
	vals := make([]float64, 0, len(rows))
	for i := range rows {
		if v, ok := rows[i].Metric(metric); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

func matchesAnyVariant(name string, variants []string) bool {
	for _, v := range variants {
		if containsFold(name, v) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
