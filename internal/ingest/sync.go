package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/futscout/scout-engine/internal/features"
	"github.com/futscout/scout-engine/internal/models"
	"github.com/futscout/scout-engine/internal/provider"
	"github.com/futscout/scout-engine/internal/store"
)

// typedPlayerMetrics are the stat keys stored as typed columns on
// PlayerSeasonRecord. Any other numeric player_season_* key lands in Extra.
var typedPlayerMetrics = map[string]struct{}{
	"player_season_minutes":                 {},
	"player_season_goals_90":                {},
	"player_season_assists_90":              {},
	"player_season_np_xg_90":                {},
	"player_season_np_shots_90":             {},
	"player_season_shot_touch_ratio":        {},
	"player_season_dribbles_90":             {},
	"player_season_dribble_ratio":           {},
	"player_season_passes_into_box_90":      {},
	"player_season_deep_completions_90":     {},
	"player_season_key_passes_90":           {},
	"player_season_obv_pass_90":             {},
	"player_season_pressures_90":            {},
	"player_season_pressure_regains_90":     {},
	"player_season_tackles_90":              {},
	"player_season_interceptions_90":        {},
	"player_season_defensive_actions_90":    {},
	"player_season_aerial_ratio":            {},
	"player_season_obv_90":                  {},
	"player_season_obv_dribble_carry_90":    {},
	"player_season_obv_defensive_action_90": {},
	"player_season_obv_shot_90":             {},
}

// typedTeamMetrics are the stat keys stored as typed columns on
// TeamSeasonRecord.
var typedTeamMetrics = map[string]struct{}{
	"team_season_goals_pg":            {},
	"team_season_np_xg_pg":            {},
	"team_season_np_xg_per_shot":      {},
	"team_season_goals_conceded_pg":   {},
	"team_season_np_xg_conceded_pg":   {},
	"team_season_tackles_pg":          {},
	"team_season_interceptions_pg":    {},
	"team_season_sp_xg_pg":            {},
	"team_season_corner_xg_pg":        {},
	"team_season_pressures_pg":        {},
	"team_season_counterpressures_pg": {},
	"team_season_possession":          {},
	"team_season_passing_ratio":       {},
	"team_season_np_shots_pg":         {},
}

// SyncSummary reports what one sync run persisted.
type SyncSummary struct {
	Seasons int `json:"seasons"`
	Players int `json:"players"`
	Teams   int `json:"teams"`
	Matches int `json:"matches"`
	Skipped int `json:"skipped"`
}

// SyncService pulls season statistics from the stats API and upserts them into
// the local store. Every upstream call goes through the circuit breaker.
type SyncService struct {
	client  *provider.Client
	breaker *provider.CircuitBreakerService
	store   *store.Store
	catalog *features.Catalog
	logger  *logrus.Logger
}

// NewSyncService creates a sync service
func NewSyncService(client *provider.Client, breaker *provider.CircuitBreakerService, st *store.Store, catalog *features.Catalog, logger *logrus.Logger) *SyncService {
	return &SyncService{
		client:  client,
		breaker: breaker,
		store:   st,
		catalog: catalog,
		logger:  logger,
	}
}

// SyncSeasons syncs every referenced season. A failing season is logged and
// skipped so one bad upstream response cannot sink a whole refresh; the run
// fails only when no season could be synced at all.
func (s *SyncService) SyncSeasons(ctx context.Context, refs []models.SeasonRef) (*SyncSummary, error) {
	total := &SyncSummary{}

	for _, ref := range refs {
		summary, err := s.SyncSeason(ctx, ref)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"competition_id": ref.CompetitionID,
				"season_id":      ref.SeasonID,
			}).Warn("Season sync failed, continuing with remaining seasons")
			continue
		}
		total.Seasons++
		total.Players += summary.Players
		total.Teams += summary.Teams
		total.Matches += summary.Matches
		total.Skipped += summary.Skipped
	}

	if total.Seasons == 0 && len(refs) > 0 {
		return total, fmt.Errorf("all %d season syncs failed", len(refs))
	}
	return total, nil
}

// SyncSeason syncs player stats, team stats and matches for one season.
func (s *SyncService) SyncSeason(ctx context.Context, ref models.SeasonRef) (*SyncSummary, error) {
	start := time.Now()
	summary := &SyncSummary{}

	playerRows, err := s.fetchStatRows(func() (interface{}, error) {
		return s.client.PlayerSeasonStats(ctx, ref)
	})
	if err != nil {
		return nil, fmt.Errorf("player stats: %w", err)
	}
	for _, row := range playerRows {
		rec := s.playerRecord(ref, row)
		if rec.PlayerID == 0 || rec.PlayerName == "" {
			summary.Skipped++
			continue
		}
		if err := s.store.SavePlayerSeason(ctx, rec); err != nil {
			s.logger.WithError(err).WithField("player_name", rec.PlayerName).Warn("Failed to save player season")
			summary.Skipped++
			continue
		}
		summary.Players++
	}

	teamRows, err := s.fetchStatRows(func() (interface{}, error) {
		return s.client.TeamSeasonStats(ctx, ref)
	})
	if err != nil {
		return nil, fmt.Errorf("team stats: %w", err)
	}
	for _, row := range teamRows {
		rec := s.teamRecord(ref, row)
		if rec.TeamID == 0 || rec.TeamName == "" {
			summary.Skipped++
			continue
		}
		if err := s.store.SaveTeamSeason(ctx, rec); err != nil {
			s.logger.WithError(err).WithField("team_name", rec.TeamName).Warn("Failed to save team season")
			summary.Skipped++
			continue
		}
		summary.Teams++
	}

	matches, err := s.fetchMatches(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("matches: %w", err)
	}
	for _, payload := range matches {
		rec := s.matchRecord(ref, payload)
		if rec.MatchID == 0 {
			summary.Skipped++
			continue
		}
		if err := s.store.SaveMatch(ctx, rec); err != nil {
			s.logger.WithError(err).WithField("match_id", rec.MatchID).Warn("Failed to save match")
			summary.Skipped++
			continue
		}
		summary.Matches++
	}

	s.logger.WithFields(logrus.Fields{
		"competition_id": ref.CompetitionID,
		"season_id":      ref.SeasonID,
		"players":        summary.Players,
		"teams":          summary.Teams,
		"matches":        summary.Matches,
		"skipped":        summary.Skipped,
		"duration":       time.Since(start).String(),
	}).Info("Season sync complete")

	return summary, nil
}

func (s *SyncService) fetchStatRows(fetch func() (interface{}, error)) ([]provider.StatRow, error) {
	result, err := s.breaker.Execute(provider.BreakerStatsAPI, fetch)
	if err != nil {
		return nil, err
	}
	rows, ok := result.([]provider.StatRow)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", result)
	}
	return rows, nil
}

func (s *SyncService) fetchMatches(ctx context.Context, ref models.SeasonRef) ([]provider.MatchPayload, error) {
	result, err := s.breaker.Execute(provider.BreakerStatsAPI, func() (interface{}, error) {
		return s.client.Matches(ctx, ref)
	})
	if err != nil {
		return nil, err
	}
	matches, ok := result.([]provider.MatchPayload)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", result)
	}
	return matches, nil
}

// playerRecord maps one raw stats row onto a PlayerSeasonRecord. Missing
// metrics default to zero; unrecognized player_season_* metrics are kept in
// Extra so sparse goalkeeper and extended passing stats survive ingestion.
func (s *SyncService) playerRecord(ref models.SeasonRef, row provider.StatRow) *models.PlayerSeasonRecord {
	rec := &models.PlayerSeasonRecord{
		AccountID:         intVal(row, "account_id"),
		PlayerID:          intVal(row, "player_id"),
		PlayerName:        strVal(row, "player_name"),
		TeamID:            intVal(row, "team_id"),
		TeamName:          strVal(row, "team_name"),
		CompetitionID:     ref.CompetitionID,
		SeasonID:          ref.SeasonID,
		SeasonName:        strVal(row, "season_name"),
		CountryID:         intVal(row, "country_id"),
		PrimaryPositionID: intVal(row, "primary_position_id"),
		PrimaryPosition:   strVal(row, "primary_position"),

		Minutes:            floatVal(row, "player_season_minutes"),
		Goals90:            floatVal(row, "player_season_goals_90"),
		Assists90:          floatVal(row, "player_season_assists_90"),
		NPxG90:             floatVal(row, "player_season_np_xg_90"),
		NPShots90:          floatVal(row, "player_season_np_shots_90"),
		ShotTouchRatio:     floatVal(row, "player_season_shot_touch_ratio"),
		Dribbles90:         floatVal(row, "player_season_dribbles_90"),
		DribbleRatio:       floatVal(row, "player_season_dribble_ratio"),
		PassesIntoBox90:    floatVal(row, "player_season_passes_into_box_90"),
		DeepCompletions90:  floatVal(row, "player_season_deep_completions_90"),
		KeyPasses90:        floatVal(row, "player_season_key_passes_90"),
		OBVPass90:          floatVal(row, "player_season_obv_pass_90"),
		Pressures90:        floatVal(row, "player_season_pressures_90"),
		PressureRegains90:  floatVal(row, "player_season_pressure_regains_90"),
		Tackles90:          floatVal(row, "player_season_tackles_90"),
		Interceptions90:    floatVal(row, "player_season_interceptions_90"),
		DefensiveActions90: floatVal(row, "player_season_defensive_actions_90"),
		AerialRatio:        floatVal(row, "player_season_aerial_ratio"),
		OBV90:              floatVal(row, "player_season_obv_90"),
		OBVDribbleCarry90:  floatVal(row, "player_season_obv_dribble_carry_90"),
		OBVDefensive90:     floatVal(row, "player_season_obv_defensive_action_90"),
		OBVShot90:          floatVal(row, "player_season_obv_shot_90"),
	}
	rec.PositionCategory = s.catalog.PositionCategory(rec.PrimaryPosition)

	for key, raw := range row {
		if _, typed := typedPlayerMetrics[key]; typed {
			continue
		}
		if len(key) < len("player_season_") || key[:len("player_season_")] != "player_season_" {
			continue
		}
		if v, ok := numeric(raw); ok {
			if rec.Extra == nil {
				rec.Extra = models.MetricMap{}
			}
			rec.Extra[key] = v
		}
	}

	return rec
}

// teamRecord maps one raw stats row onto a TeamSeasonRecord.
func (s *SyncService) teamRecord(ref models.SeasonRef, row provider.StatRow) *models.TeamSeasonRecord {
	rec := &models.TeamSeasonRecord{
		TeamID:        intVal(row, "team_id"),
		TeamName:      strVal(row, "team_name"),
		CompetitionID: ref.CompetitionID,
		SeasonID:      ref.SeasonID,
		SeasonName:    strVal(row, "season_name"),

		GoalsPG:            floatVal(row, "team_season_goals_pg"),
		NPxGPG:             floatVal(row, "team_season_np_xg_pg"),
		NPxGPerShot:        floatVal(row, "team_season_np_xg_per_shot"),
		GoalsConcededPG:    floatVal(row, "team_season_goals_conceded_pg"),
		NPxGConcededPG:     floatVal(row, "team_season_np_xg_conceded_pg"),
		TacklesPG:          floatVal(row, "team_season_tackles_pg"),
		InterceptionsPG:    floatVal(row, "team_season_interceptions_pg"),
		SetPieceXGPG:       floatVal(row, "team_season_sp_xg_pg"),
		CornerXGPG:         floatVal(row, "team_season_corner_xg_pg"),
		PressuresPG:        floatVal(row, "team_season_pressures_pg"),
		CounterpressuresPG: floatVal(row, "team_season_counterpressures_pg"),
		Possession:         floatVal(row, "team_season_possession"),
		PassingRatio:       floatVal(row, "team_season_passing_ratio"),
		NPShotsPG:          floatVal(row, "team_season_np_shots_pg"),
	}

	for key, raw := range row {
		if _, typed := typedTeamMetrics[key]; typed {
			continue
		}
		if len(key) < len("team_season_") || key[:len("team_season_")] != "team_season_" {
			continue
		}
		if v, ok := numeric(raw); ok {
			if rec.Extra == nil {
				rec.Extra = models.MetricMap{}
			}
			rec.Extra[key] = v
		}
	}

	return rec
}

func (s *SyncService) matchRecord(ref models.SeasonRef, payload provider.MatchPayload) *models.MatchRecord {
	return &models.MatchRecord{
		MatchID:       payload.MatchID,
		CompetitionID: ref.CompetitionID,
		SeasonID:      ref.SeasonID,
		MatchDate:     parseMatchDate(payload.MatchDate),
		HomeTeam:      payload.HomeTeam,
		AwayTeam:      payload.AwayTeam,
		HomeScore:     payload.HomeScore,
		AwayScore:     payload.AwayScore,
	}
}

func parseMatchDate(raw string) time.Time {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func numeric(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func floatVal(row provider.StatRow, key string) float64 {
	if v, ok := numeric(row[key]); ok {
		return v
	}
	return 0
}

func intVal(row provider.StatRow, key string) int {
	if v, ok := numeric(row[key]); ok {
		return int(v)
	}
	return 0
}

func strVal(row provider.StatRow, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}
