// Package store persists and queries the three source tables the engine is
// built from: player seasons, team seasons and matches.
package store

import (
	"context"
	"fmt"

	"github.com/futscout/scout-engine/internal/models"
)

// Store wraps the database with the queries the engine needs.
type Store struct {
	db *DB
}

// NewStore creates a store over an open connection.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// EligiblePlayerSeasons loads every player season from the given seasons with
// at least minMinutes played. The stable ordering keeps snapshot builds
// reproducible run over run.
func (s *Store) EligiblePlayerSeasons(ctx context.Context, minMinutes float64, seasons []models.SeasonRef) ([]models.PlayerSeasonRecord, error) {
	query := s.db.WithContext(ctx).Where("minutes >= ?", minMinutes)
	if len(seasons) > 0 {
		clause, args := seasonClause(seasons)
		query = query.Where(clause, args...)
	}

	var records []models.PlayerSeasonRecord
	if err := query.Order("player_name ASC, season_id DESC, id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load player seasons: %w", err)
	}
	return records, nil
}

// TeamSeasonStats loads every team's season line for one competition season.
func (s *Store) TeamSeasonStats(ctx context.Context, ref models.SeasonRef) ([]models.TeamSeasonRecord, error) {
	var records []models.TeamSeasonRecord
	err := s.db.WithContext(ctx).
		Where("competition_id = ? AND season_id = ?", ref.CompetitionID, ref.SeasonID).
		Order("team_name ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load team season stats: %w", err)
	}
	return records, nil
}

// SeasonMatches loads every match of one competition season.
func (s *Store) SeasonMatches(ctx context.Context, ref models.SeasonRef) ([]models.MatchRecord, error) {
	var records []models.MatchRecord
	err := s.db.WithContext(ctx).
		Where("competition_id = ? AND season_id = ?", ref.CompetitionID, ref.SeasonID).
		Order("match_date ASC, match_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load season matches: %w", err)
	}
	return records, nil
}

// SavePlayerSeason inserts or updates one player season, keyed by player,
// competition and season.
func (s *Store) SavePlayerSeason(ctx context.Context, rec *models.PlayerSeasonRecord) error {
	var existing models.PlayerSeasonRecord
	err := s.db.WithContext(ctx).
		Where("player_id = ? AND competition_id = ? AND season_id = ?",
			rec.PlayerID, rec.CompetitionID, rec.SeasonID).
		First(&existing).Error
	if err == nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		return s.db.WithContext(ctx).Save(rec).Error
	}
	return s.db.WithContext(ctx).Create(rec).Error
}

// SaveTeamSeason inserts or updates one team season, keyed by team,
// competition and season.
func (s *Store) SaveTeamSeason(ctx context.Context, rec *models.TeamSeasonRecord) error {
	var existing models.TeamSeasonRecord
	err := s.db.WithContext(ctx).
		Where("team_id = ? AND competition_id = ? AND season_id = ?",
			rec.TeamID, rec.CompetitionID, rec.SeasonID).
		First(&existing).Error
	if err == nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		return s.db.WithContext(ctx).Save(rec).Error
	}
	return s.db.WithContext(ctx).Create(rec).Error
}

// SaveMatch inserts or updates one match, keyed by provider match id.
func (s *Store) SaveMatch(ctx context.Context, rec *models.MatchRecord) error {
	var existing models.MatchRecord
	err := s.db.WithContext(ctx).Where("match_id = ?", rec.MatchID).First(&existing).Error
	if err == nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		return s.db.WithContext(ctx).Save(rec).Error
	}
	return s.db.WithContext(ctx).Create(rec).Error
}

// CountPlayerSeasons reports the number of stored player seasons.
func (s *Store) CountPlayerSeasons(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.PlayerSeasonRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count player seasons: %w", err)
	}
	return count, nil
}

// HealthCheck pings the underlying database.
func (s *Store) HealthCheck() error {
	return s.db.HealthCheck()
}

// seasonClause builds an OR filter over (competition_id, season_id) pairs.
func seasonClause(seasons []models.SeasonRef) (string, []interface{}) {
	clause := ""
	args := make([]interface{}, 0, len(seasons)*2)
	for i, ref := range seasons {
		if i > 0 {
			clause += " OR "
		}
		clause += "(competition_id = ? AND season_id = ?)"
		args = append(args, ref.CompetitionID, ref.SeasonID)
	}
	return clause, args
}
