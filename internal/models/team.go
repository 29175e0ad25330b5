package models

import "time"

// TeamSeasonRecord is one team's aggregated statistics for one season. The
// fourteen metrics behind the profile dimensions are typed columns; anything
// else the provider sends lands in Extra.
type TeamSeasonRecord struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	TeamID        int     `gorm:"index:idx_team_comp_season,unique" json:"team_id"`
	TeamName      string  `gorm:"index" json:"team_name"`
	CompetitionID int     `gorm:"index:idx_team_comp_season,unique" json:"competition_id"`
	SeasonID      int     `gorm:"index:idx_team_comp_season,unique" json:"season_id"`
	SeasonName    string  `json:"season_name"`

	GoalsPG            float64 `json:"team_season_goals_pg"`
	NPxGPG             float64 `json:"team_season_np_xg_pg"`
	NPxGPerShot        float64 `json:"team_season_np_xg_per_shot"`
	GoalsConcededPG    float64 `json:"team_season_goals_conceded_pg"`
	NPxGConcededPG     float64 `json:"team_season_np_xg_conceded_pg"`
	TacklesPG          float64 `json:"team_season_tackles_pg"`
	InterceptionsPG    float64 `json:"team_season_interceptions_pg"`
	SetPieceXGPG       float64 `json:"team_season_sp_xg_pg"`
	CornerXGPG         float64 `json:"team_season_corner_xg_pg"`
	PressuresPG        float64 `json:"team_season_pressures_pg"`
	CounterpressuresPG float64 `json:"team_season_counterpressures_pg"`
	Possession         float64 `json:"team_season_possession"`
	PassingRatio       float64 `json:"team_season_passing_ratio"`
	NPShotsPG          float64 `json:"team_season_np_shots_pg"`

	Extra MetricMap `gorm:"type:jsonb" json:"extra,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for the TeamSeasonRecord model
func (TeamSeasonRecord) TableName() string {
	return "team_season_stats"
}

// Metric looks up a team metric by its full provider name, falling back to
// Extra for metrics without a typed column.
func (t *TeamSeasonRecord) Metric(name string) (float64, bool) {
	switch name {
	case "team_season_goals_pg":
		return t.GoalsPG, true
	case "team_season_np_xg_pg":
		return t.NPxGPG, true
	case "team_season_np_xg_per_shot":
		return t.NPxGPerShot, true
	case "team_season_goals_conceded_pg":
		return t.GoalsConcededPG, true
	case "team_season_np_xg_conceded_pg":
		return t.NPxGConcededPG, true
	case "team_season_tackles_pg":
		return t.TacklesPG, true
	case "team_season_interceptions_pg":
		return t.InterceptionsPG, true
	case "team_season_sp_xg_pg":
		return t.SetPieceXGPG, true
	case "team_season_corner_xg_pg":
		return t.CornerXGPG, true
	case "team_season_pressures_pg":
		return t.PressuresPG, true
	case "team_season_counterpressures_pg":
		return t.CounterpressuresPG, true
	case "team_season_possession":
		return t.Possession, true
	case "team_season_passing_ratio":
		return t.PassingRatio, true
	case "team_season_np_shots_pg":
		return t.NPShotsPG, true
	}
	if t.Extra != nil {
		if v, ok := t.Extra[name]; ok {
			return v, true
		}
	}
	return 0, false
}

// MatchRecord is one played match with its final score.
type MatchRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MatchID       int       `gorm:"uniqueIndex" json:"match_id"`
	CompetitionID int       `gorm:"index" json:"competition_id"`
	SeasonID      int       `gorm:"index" json:"season_id"`
	MatchDate     time.Time `json:"match_date"`
	HomeTeam      string    `gorm:"index" json:"home_team"`
	AwayTeam      string    `gorm:"index" json:"away_team"`
	HomeScore     int       `json:"home_score"`
	AwayScore     int       `json:"away_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for the MatchRecord model
func (MatchRecord) TableName() string {
	return "matches"
}

// SeasonRef identifies one competition season in provider id space.
type SeasonRef struct {
	CompetitionID int `json:"competition_id"`
	SeasonID      int `json:"season_id"`
}

// Trend direction labels for team profile dimensions.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// Trend captures how a profile dimension moved between the earliest and most
// recent profiled season.
type Trend struct {
	Delta     float64 `json:"delta"`
	Direction string  `json:"direction"`
}

// ProfileMetadata summarizes the inputs behind a team profile.
type ProfileMetadata struct {
	TeamName string  `json:"team_name"`
	Seasons  int     `json:"n_seasons"`
	Matches  int     `json:"n_matches"`
	WinRate  float64 `json:"win_rate"`
}

// TeamProfile is the multi-season playing-style profile of a team. All maps
// are keyed by dimension name. Rankings are percentiles in [0,100] against
// every team season in the source data.
type TeamProfile struct {
	Metadata    ProfileMetadata    `json:"metadata"`
	Averages    map[string]float64 `json:"averages"`
	Trends      map[string]Trend   `json:"trends"`
	Consistency map[string]float64 `json:"consistency"`
	Rankings    map[string]float64 `json:"rankings"`
	Dimensions  map[string]float64 `json:"dimensions"`
}
