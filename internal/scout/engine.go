// Package scout wires the data store, position normalizer, team profiler and
// the two recommenders into one queryable engine. The engine computes
// everything against an immutable snapshot that a rebuild swaps atomically, so
// queries keep working while a refresh runs.
package scout

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/futscout/scout-engine/internal/cache"
	"github.com/futscout/scout-engine/internal/config"
	"github.com/futscout/scout-engine/internal/features"
	"github.com/futscout/scout-engine/internal/fit"
	"github.com/futscout/scout-engine/internal/models"
	"github.com/futscout/scout-engine/internal/normalizer"
	"github.com/futscout/scout-engine/internal/profiler"
	"github.com/futscout/scout-engine/internal/similarity"
	"github.com/futscout/scout-engine/pkg/logger"
)

// Squad need thresholds.
const (
	minPositionDepth = 3
	lowImpactOBV     = 0.3
	heavyMinutesLoad = 2500.0
)

// DataSource provides the season data the engine builds from. The store
// satisfies it; tests substitute an in-memory source.
type DataSource interface {
	EligiblePlayerSeasons(ctx context.Context, minMinutes float64, seasons []models.SeasonRef) ([]models.PlayerSeasonRecord, error)
	TeamSeasonStats(ctx context.Context, ref models.SeasonRef) ([]models.TeamSeasonRecord, error)
	SeasonMatches(ctx context.Context, ref models.SeasonRef) ([]models.MatchRecord, error)
}

// snapshot is one fully-built analysis state. Snapshots are never mutated
// after the swap.
type snapshot struct {
	records     []models.PlayerSeasonRecord
	profile     *models.TeamProfile
	scorer      *fit.Scorer
	recommender *similarity.Recommender
	builtAt     time.Time
}

// Engine is the scouting engine facade. Every query runs against the last
// built snapshot; Rebuild replaces it wholesale.
type Engine struct {
	cfg     *config.Config
	source  DataSource
	cache   *cache.CacheService
	catalog *features.Catalog

	normalizer *normalizer.Normalizer
	profiler   *profiler.Profiler
	logger     *logrus.Logger

	mu   sync.RWMutex
	snap *snapshot
}

// NewEngine creates an engine. cacheSvc may be nil, in which case profiles and
// reports are always computed fresh.
func NewEngine(cfg *config.Config, source DataSource, cacheSvc *cache.CacheService) *Engine {
	catalog := features.DefaultCatalog()
	return &Engine{
		cfg:        cfg,
		source:     source,
		cache:      cacheSvc,
		catalog:    catalog,
		normalizer: normalizer.New(catalog),
		profiler:   profiler.New(source, catalog),
		logger:     logger.GetLogger(),
	}
}

// Rebuild loads the eligible player seasons, normalizes them per position,
// rebuilds the reference team profile and refits both recommenders, then swaps
// the new snapshot in.
func (e *Engine) Rebuild(ctx context.Context) error {
	start := time.Now()

	records, err := e.source.EligiblePlayerSeasons(ctx, e.cfg.MinMinutesExtract, e.cfg.ProfileSeasons)
	if err != nil {
		return fmt.Errorf("loading player seasons: %w", err)
	}
	if len(records) == 0 {
		return &models.InsufficientDataError{
			Operation: "rebuild engine",
			Reason:    "no eligible player seasons in the store",
		}
	}

	for i := range records {
		if records[i].PositionCategory == "" {
			records[i].PositionCategory = e.catalog.PositionCategory(records[i].PrimaryPosition)
		}
	}

	e.normalizer.Normalize(records)

	profile, err := e.profiler.BuildProfile(ctx, e.cfg.ReferenceTeam, e.cfg.TeamNameVariants, e.cfg.ProfileSeasons)
	if err != nil {
		return fmt.Errorf("building team profile: %w", err)
	}

	scorer := fit.NewScorer(e.catalog, e.cfg.TeamNameVariants, fit.Params{
		SigmoidCenter:    e.cfg.FitSigmoidCenter,
		SigmoidSteepness: e.cfg.FitSigmoidSteepness,
	})
	if err := scorer.Fit(records, profile); err != nil {
		return fmt.Errorf("fitting scorer: %w", err)
	}

	recommender := similarity.NewRecommender(e.catalog, e.cfg.PCAComponents)
	if err := recommender.Fit(records, e.cfg.MinMinutesFit); err != nil {
		return fmt.Errorf("fitting recommender: %w", err)
	}

	e.mu.Lock()
	e.snap = &snapshot{
		records:     records,
		profile:     profile,
		scorer:      scorer,
		recommender: recommender,
		builtAt:     time.Now(),
	}
	e.mu.Unlock()

	if e.cache != nil {
		if err := e.cache.InvalidateTeam(e.cfg.ReferenceTeam); err != nil {
			e.logger.WithError(err).Warn("Failed to invalidate cached team data")
		}
		if err := e.cache.SetTeamProfile(e.cfg.ReferenceTeam, profile); err != nil {
			e.logger.WithError(err).Warn("Failed to cache team profile")
		}
	}

	e.logger.WithFields(logrus.Fields{
		"player_seasons": len(records),
		"team":           profile.Metadata.TeamName,
		"pool":           recommender.Size(),
		"duration":       time.Since(start).String(),
	}).Info("Engine rebuilt")
	return nil
}

// current returns the active snapshot, or an invalid-state error before the
// first successful rebuild.
func (e *Engine) current() (*snapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snap == nil {
		return nil, &models.InvalidStateError{
			Operation: "query engine",
			Reason:    "engine not built yet, trigger a rebuild first",
		}
	}
	return e.snap, nil
}

// Ready reports whether a snapshot has been built.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap != nil
}

// Status describes the active snapshot for health and admin endpoints.
func (e *Engine) Status() map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()

	status := map[string]interface{}{
		"built":          e.snap != nil,
		"reference_team": e.cfg.ReferenceTeam,
	}
	if e.snap != nil {
		status["built_at"] = e.snap.builtAt
		status["player_seasons"] = len(e.snap.records)
		status["similarity_pool"] = e.snap.recommender.Size()
		if proj := e.snap.recommender.Projection(); proj != nil {
			_, cols := proj.Dims()
			status["projection_components"] = cols
		}
	}
	return status
}

// Profile returns the reference team's playing-style profile, preferring the
// cached copy written at the last rebuild.
func (e *Engine) Profile() (*models.TeamProfile, error) {
	snap, err := e.current()
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		var cached models.TeamProfile
		if err := e.cache.GetTeamProfile(e.cfg.ReferenceTeam, &cached); err == nil {
			return &cached, nil
		}
	}
	return snap.profile, nil
}

// AnalyzePlayer scores one player against the reference team profile.
func (e *Engine) AnalyzePlayer(playerName string) (*models.FitResult, error) {
	snap, err := e.current()
	if err != nil {
		return nil, err
	}
	return snap.scorer.AnalyzePlayer(playerName)
}

// RecommendForPosition returns the best external fits for a position.
func (e *Engine) RecommendForPosition(position string, opts fit.RecommendOptions) ([]models.FitResult, error) {
	snap, err := e.current()
	if err != nil {
		return nil, err
	}
	return snap.scorer.RecommendForPosition(position, opts)
}

// FindSimilar returns the players most similar to the queried player.
func (e *Engine) FindSimilar(opts similarity.SearchOptions) ([]models.SimilarPlayer, error) {
	snap, err := e.current()
	if err != nil {
		return nil, err
	}
	return snap.recommender.FindSimilar(opts)
}

// FindReplacements returns same-position replacement candidates for a player.
func (e *Engine) FindReplacements(playerName string, topN int) ([]models.SimilarPlayer, error) {
	snap, err := e.current()
	if err != nil {
		return nil, err
	}
	return snap.recommender.FindReplacements(playerName, topN)
}

// RecommendByProfile ranks players at a position by weighted attacking,
// defensive and passing profile groups. Zero weights fall back to the default
// blend, a zero minutes floor to the profile search default.
func (e *Engine) RecommendByProfile(position string, weights similarity.ProfileWeights, topN int, minMinutes float64) ([]models.ProfileScore, error) {
	snap, err := e.current()
	if err != nil {
		return nil, err
	}
	if weights == (similarity.ProfileWeights{}) {
		weights = similarity.DefaultProfileWeights()
	}
	if minMinutes <= 0 {
		minMinutes = similarity.ProfileMinMinutes
	}
	return snap.recommender.RecommendByProfile(position, weights, topN, minMinutes)
}

// FeatureImportance reports the features separating a player most from their
// position average.
func (e *Engine) FeatureImportance(playerName string, topN int) ([]models.FeatureImportance, error) {
	snap, err := e.current()
	if err != nil {
		return nil, err
	}
	return snap.recommender.FeatureImportance(playerName, topN)
}

// PositionRequirements exposes the recruitment weights for a position.
func (e *Engine) PositionRequirements(position string) features.PositionRequirement {
	return e.catalog.RequirementsFor(position)
}

// Catalog exposes the feature catalog for introspection endpoints.
func (e *Engine) Catalog() *features.Catalog {
	return e.catalog
}

// ComparePlayers scores two players head to head. Component winners are
// decided by strict comparison; ties go to the second player.
func (e *Engine) ComparePlayers(name1, name2 string) (*models.PlayerComparison, error) {
	snap, err := e.current()
	if err != nil {
		return nil, err
	}

	rec1, err := snap.scorer.Resolve(name1)
	if err != nil {
		return nil, err
	}
	rec2, err := snap.scorer.Resolve(name2)
	if err != nil {
		return nil, err
	}

	fit1, err := snap.scorer.AnalyzeRecord(rec1)
	if err != nil {
		return nil, err
	}
	fit2, err := snap.scorer.AnalyzeRecord(rec2)
	if err != nil {
		return nil, err
	}

	return &models.PlayerComparison{
		Player1: models.ComparisonSide{Name: fit1.PlayerName, Fit: fit1, Record: rec1},
		Player2: models.ComparisonSide{Name: fit2.PlayerName, Fit: fit2, Record: rec2},
		Summary: models.ComparisonSummary{
			BetterOverallFit: pickBetter(fit1.PlayerName, fit2.PlayerName, fit1.OverallFit, fit2.OverallFit),
			BetterTechnical:  pickBetter(fit1.PlayerName, fit2.PlayerName, fit1.TechnicalFit, fit2.TechnicalFit),
			BetterTactical:   pickBetter(fit1.PlayerName, fit2.PlayerName, fit1.TacticalFit, fit2.TacticalFit),
			BetterImpact:     pickBetter(fit1.PlayerName, fit2.PlayerName, fit1.ImpactScore, fit2.ImpactScore),
		},
	}, nil
}

func pickBetter(name1, name2 string, v1, v2 float64) string {
	if v1 > v2 {
		return name1
	}
	return name2
}

func (e *Engine) isReferenceTeam(teamName string) bool {
	for _, v := range e.cfg.TeamNameVariants {
		if containsFold(teamName, v) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func sortPlayersByName(players []models.PlayerSeasonRecord) {
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].PlayerName < players[j].PlayerName
	})
}
