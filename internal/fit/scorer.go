// Package fit scores how well individual players match a team's playing
// profile, combining technical, tactical and impact components into a single
// 0-100 fit score.
package fit

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/futscout/scout-engine/internal/features"
	"github.com/futscout/scout-engine/internal/models"
	"github.com/futscout/scout-engine/pkg/logger"
)

// Component weights of the overall fit score.
const (
	technicalWeight = 0.35
	tacticalWeight  = 0.30
	impactWeight    = 0.35
)

// Defaults for batch recommendations.
const (
	DefaultTopN   = 3
	DefaultMinFit = 60.0
)

// Params tune the sigmoid that compresses raw normalized scores onto the
// 0-100 scale. Center is the raw score mapped to 50; steepness controls how
// fast scores saturate around it.
type Params struct {
	SigmoidCenter    float64
	SigmoidSteepness float64
}

// DefaultParams returns the standard sigmoid shape.
func DefaultParams() Params {
	return Params{SigmoidCenter: 0.5, SigmoidSteepness: 6.0}
}

// RecommendOptions filter a batch recommendation.
type RecommendOptions struct {
	TopN         int
	MinFit       float64
	ExcludeTeams []string
}

// Scorer evaluates players against one team profile. Fit must be called with
// the player dataset and the profile before any scoring.
type Scorer struct {
	catalog           *features.Catalog
	params            Params
	referenceVariants []string

	records []models.PlayerSeasonRecord
	profile *models.TeamProfile
	fitted  bool

	logger *logrus.Logger
}

// NewScorer creates a fit scorer. referenceVariants name the team being
// recruited for; batch recommendations never propose its own players.
func NewScorer(catalog *features.Catalog, referenceVariants []string, params Params) *Scorer {
	return &Scorer{
		catalog:           catalog,
		params:            params,
		referenceVariants: referenceVariants,
		logger:            logger.GetLogger(),
	}
}

// Fit binds the scorer to a player dataset and a team profile.
func (s *Scorer) Fit(records []models.PlayerSeasonRecord, profile *models.TeamProfile) error {
	if profile == nil {
		return &models.InvalidStateError{
			Operation: "fit scorer",
			Reason:    "team profile required before scoring",
		}
	}
	s.records = records
	s.profile = profile
	s.fitted = true

	s.logger.WithFields(logrus.Fields{
		"players": len(records),
		"team":    profile.Metadata.TeamName,
	}).Info("Fit scorer ready")
	return nil
}

// Resolve finds the record a name query scores: the first player whose name
// contains the query, case-insensitively, ordered by name then most recent
// season.
func (s *Scorer) Resolve(playerName string) (*models.PlayerSeasonRecord, error) {
	if !s.fitted {
		return nil, &models.InvalidStateError{
			Operation: "analyze player fit",
			Reason:    "scorer not fitted, call Fit first",
		}
	}

	var match *models.PlayerSeasonRecord
	for i := range s.records {
		rec := &s.records[i]
		if !containsFold(rec.PlayerName, playerName) {
			continue
		}
		if match == nil || rec.PlayerName < match.PlayerName ||
			(rec.PlayerName == match.PlayerName && rec.SeasonID > match.SeasonID) {
			match = rec
		}
	}
	if match == nil {
		return nil, &models.NotFoundError{
			Resource:    "player",
			Query:       playerName,
			Suggestions: s.suggestNames(playerName),
		}
	}
	return match, nil
}

// suggestNames collects up to five names sharing the query's first token.
func (s *Scorer) suggestNames(query string) []string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return nil
	}

	token := fields[0]
	seen := make(map[string]bool)
	var suggestions []string
	for i := range s.records {
		name := s.records[i].PlayerName
		if containsFold(name, token) && !seen[name] {
			seen[name] = true
			suggestions = append(suggestions, name)
		}
	}
	sort.Strings(suggestions)
	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}
	return suggestions
}

// AnalyzePlayer scores the first player whose name contains the query.
func (s *Scorer) AnalyzePlayer(playerName string) (*models.FitResult, error) {
	match, err := s.Resolve(playerName)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeRecord(match)
}

// AnalyzeRecord scores a single player season against the fitted profile.
func (s *Scorer) AnalyzeRecord(rec *models.PlayerSeasonRecord) (*models.FitResult, error) {
	if !s.fitted {
		return nil, &models.InvalidStateError{
			Operation: "analyze player fit",
			Reason:    "scorer not fitted, call Fit first",
		}
	}

	technical := s.technicalFit(rec)
	tactical := s.tacticalFit(rec)
	impact := s.impactScore(rec)

	overall := technicalWeight*technical + tacticalWeight*tactical + impactWeight*impact
	overall = clamp(overall, 0, 100)

	result := &models.FitResult{
		PlayerName:       rec.PlayerName,
		TeamName:         rec.TeamName,
		PositionCategory: rec.PositionCategory,
		PrimaryPosition:  rec.PrimaryPosition,
		Minutes:          rec.Minutes,
		TechnicalFit:     technical,
		TacticalFit:      tactical,
		ImpactScore:      impact,
		OverallFit:       overall,
		KeyMetrics: map[string]float64{
			"minutes":      rec.Minutes,
			"goals_90":     rec.Goals90,
			"assists_90":   rec.Assists90,
			"xg_90":        rec.NPxG90,
			"obv_90":       rec.OBV90,
			"pressures_90": rec.Pressures90,
		},
	}
	result.Strengths, result.Concerns = s.qualitative(result)
	return result, nil
}

// RecommendForPosition scores every eligible candidate at a position and
// returns the best fits in descending order. The reference team's own players
// and any explicitly excluded teams never appear.
func (s *Scorer) RecommendForPosition(position string, opts RecommendOptions) ([]models.FitResult, error) {
	if !s.fitted {
		return nil, &models.InvalidStateError{
			Operation: "recommend players",
			Reason:    "scorer not fitted, call Fit first",
		}
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}

	category := features.CanonicalCategory(position)
	var candidates []*models.PlayerSeasonRecord
	for i := range s.records {
		rec := &s.records[i]
		if rec.PositionCategory != category {
			continue
		}
		if s.isReferenceTeam(rec.TeamName) || teamExcluded(rec.TeamName, opts.ExcludeTeams) {
			continue
		}
		candidates = append(candidates, rec)
	}
	if len(candidates) == 0 {
		return nil, &models.InsufficientDataError{
			Operation: "recommend players",
			Reason:    fmt.Sprintf("no candidates available for position %s", position),
		}
	}

	results := make([]models.FitResult, 0, len(candidates))
	for _, rec := range candidates {
		res, err := s.AnalyzeRecord(rec)
		if err != nil {
			s.logger.WithError(err).WithField("player_name", rec.PlayerName).
				Warn("Skipping candidate, fit scoring failed")
			continue
		}
		if res.OverallFit >= opts.MinFit {
			results = append(results, *res)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].OverallFit > results[j].OverallFit
	})
	if len(results) > opts.TopN {
		results = results[:opts.TopN]
	}

	s.logger.WithFields(logrus.Fields{
		"position":   position,
		"candidates": len(candidates),
		"returned":   len(results),
	}).Info("Recommended best fits")
	return results, nil
}

// technicalFit averages the position's technical features and compresses the
// result. Players with none of the expected features score a neutral 50.
func (s *Scorer) technicalFit(rec *models.PlayerSeasonRecord) float64 {
	var vals []float64
	for _, feature := range s.catalog.TechnicalFeaturesFor(rec.PositionCategory) {
		if v, ok := rec.NormalizedFeature(feature); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 50.0
	}
	return s.sigmoid(mean(vals))
}

// tacticalFit averages the generic tactical metrics, with a small bonus for
// high pressers joining a high-pressing team.
func (s *Scorer) tacticalFit(rec *models.PlayerSeasonRecord) float64 {
	var vals []float64
	for _, metric := range s.catalog.TacticalMetrics {
		if v, ok := rec.NormalizedFeature(metric); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 50.0
	}
	score := s.sigmoid(mean(vals))

	pressures := 0.5
	if v, ok := rec.NormalizedFeature(features.FeaturePressures); ok {
		pressures = v
	}
	if s.profile != nil && s.profile.Rankings["pressing_intensity"] > 60 && pressures > 0.7 {
		score += 3.0
	}
	return math.Min(score, 100)
}

// impactScore compresses the overall on-ball value and discounts it by how
// much the player actually played. A full season (2500+ minutes) carries full
// weight; short seasons are dampened toward 80%.
func (s *Scorer) impactScore(rec *models.PlayerSeasonRecord) float64 {
	obvNorm := 0.5
	if v, ok := rec.NormalizedFeature(features.FeatureOBV); ok {
		obvNorm = v
	}
	score := s.sigmoid(obvNorm)
	reliability := 0.8 + 0.2*math.Min(rec.Minutes/2500.0, 1.0)
	return math.Min(score*reliability, 100)
}

func (s *Scorer) qualitative(res *models.FitResult) (strengths, concerns []string) {
	if res.TechnicalFit >= 75 {
		strengths = append(strengths, "Excellent technical ability for the position")
	} else if res.TechnicalFit < 60 {
		concerns = append(concerns, "Technical level below the team standard")
	}
	if res.TacticalFit >= 75 {
		strengths = append(strengths, "Strong tactical fit with the playing style")
	}
	if res.ImpactScore >= 70 {
		strengths = append(strengths, "High impact on matches")
	} else if res.ImpactScore < 55 {
		concerns = append(concerns, "Limited match impact")
	}
	if res.Minutes >= 2000 {
		strengths = append(strengths, fmt.Sprintf("Heavily involved (%.0f minutes)", res.Minutes))
	} else if res.Minutes < 1000 {
		concerns = append(concerns, "Few minutes played")
	}
	return strengths, concerns
}

func (s *Scorer) sigmoid(raw float64) float64 {
	return 100 / (1 + math.Exp(-s.params.SigmoidSteepness*(raw-s.params.SigmoidCenter)))
}

func (s *Scorer) isReferenceTeam(teamName string) bool {
	for _, v := range s.referenceVariants {
		if containsFold(teamName, v) {
			return true
		}
	}
	return false
}

func teamExcluded(teamName string, excluded []string) bool {
	for _, t := range excluded {
		if teamName == t {
			return true
		}
	}
	return false
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
