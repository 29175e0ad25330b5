package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// MetricMap stores sparsely-populated metrics as a JSONB column. Keys are the
// full provider metric names, e.g. "player_season_save_ratio".
type MetricMap map[string]float64

// Value implements driver.Valuer for JSONB storage
func (m MetricMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(MetricMap{})
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB retrieval
func (m *MetricMap) Scan(value interface{}) error {
	if value == nil {
		*m = MetricMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for MetricMap scan")
	}
}

// PlayerSeasonRecord is one player's aggregated statistics for one season.
// The core per-90 and ratio metrics are typed columns; rarely-populated
// metrics (goalkeeper ratios, extended passing and defensive counts) live in
// Extra. Normalized holds the per-position z-scores computed by the position
// normalizer and is never persisted.
type PlayerSeasonRecord struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	AccountID         int       `json:"account_id"`
	PlayerID          int       `gorm:"index:idx_player_comp_season,unique" json:"player_id"`
	PlayerName        string    `gorm:"index" json:"player_name"`
	TeamID            int       `json:"team_id"`
	TeamName          string    `gorm:"index" json:"team_name"`
	CompetitionID     int       `gorm:"index:idx_player_comp_season,unique" json:"competition_id"`
	SeasonID          int       `gorm:"index:idx_player_comp_season,unique" json:"season_id"`
	SeasonName        string    `json:"season_name"`
	CountryID         int       `json:"country_id"`
	PrimaryPositionID int       `json:"primary_position_id"`
	PrimaryPosition   string    `json:"primary_position"`
	PositionCategory  string    `gorm:"index" json:"position_category"`
	Minutes           float64   `json:"player_season_minutes"`

	Goals90            float64 `json:"player_season_goals_90"`
	Assists90          float64 `json:"player_season_assists_90"`
	NPxG90             float64 `json:"player_season_np_xg_90"`
	NPShots90          float64 `json:"player_season_np_shots_90"`
	ShotTouchRatio     float64 `json:"player_season_shot_touch_ratio"`
	Dribbles90         float64 `json:"player_season_dribbles_90"`
	DribbleRatio       float64 `json:"player_season_dribble_ratio"`
	PassesIntoBox90    float64 `json:"player_season_passes_into_box_90"`
	DeepCompletions90  float64 `json:"player_season_deep_completions_90"`
	KeyPasses90        float64 `json:"player_season_key_passes_90"`
	OBVPass90          float64 `json:"player_season_obv_pass_90"`
	Pressures90        float64 `json:"player_season_pressures_90"`
	PressureRegains90  float64 `json:"player_season_pressure_regains_90"`
	Tackles90          float64 `json:"player_season_tackles_90"`
	Interceptions90    float64 `json:"player_season_interceptions_90"`
	DefensiveActions90 float64 `json:"player_season_defensive_actions_90"`
	AerialRatio        float64 `json:"player_season_aerial_ratio"`
	OBV90              float64 `json:"player_season_obv_90"`
	OBVDribbleCarry90  float64 `json:"player_season_obv_dribble_carry_90"`
	OBVDefensive90     float64 `json:"player_season_obv_defensive_action_90"`
	OBVShot90          float64 `json:"player_season_obv_shot_90"`

	Extra      MetricMap `gorm:"type:jsonb" json:"extra,omitempty"`
	Normalized MetricMap `gorm:"-" json:"normalized,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for the PlayerSeasonRecord model
func (PlayerSeasonRecord) TableName() string {
	return "player_season_stats"
}

// RawMetric looks up a raw metric by its full provider name. Typed columns
// always report present; metrics from Extra report present only when the
// provider delivered them, so callers can tell a missing value from a zero.
func (r *PlayerSeasonRecord) RawMetric(name string) (float64, bool) {
	switch name {
	case "player_season_minutes":
		return r.Minutes, true
	case "player_season_goals_90":
		return r.Goals90, true
	case "player_season_assists_90":
		return r.Assists90, true
	case "player_season_np_xg_90":
		return r.NPxG90, true
	case "player_season_np_shots_90":
		return r.NPShots90, true
	case "player_season_shot_touch_ratio":
		return r.ShotTouchRatio, true
	case "player_season_dribbles_90":
		return r.Dribbles90, true
	case "player_season_dribble_ratio":
		return r.DribbleRatio, true
	case "player_season_passes_into_box_90":
		return r.PassesIntoBox90, true
	case "player_season_deep_completions_90":
		return r.DeepCompletions90, true
	case "player_season_key_passes_90":
		return r.KeyPasses90, true
	case "player_season_obv_pass_90":
		return r.OBVPass90, true
	case "player_season_pressures_90":
		return r.Pressures90, true
	case "player_season_pressure_regains_90":
		return r.PressureRegains90, true
	case "player_season_tackles_90":
		return r.Tackles90, true
	case "player_season_interceptions_90":
		return r.Interceptions90, true
	case "player_season_defensive_actions_90":
		return r.DefensiveActions90, true
	case "player_season_aerial_ratio":
		return r.AerialRatio, true
	case "player_season_obv_90":
		return r.OBV90, true
	case "player_season_obv_dribble_carry_90":
		return r.OBVDribbleCarry90, true
	case "player_season_obv_defensive_action_90":
		return r.OBVDefensive90, true
	case "player_season_obv_shot_90":
		return r.OBVShot90, true
	}
	if r.Extra != nil {
		if v, ok := r.Extra[name]; ok {
			return v, true
		}
	}
	return 0, false
}

// NormalizedFeature looks up a normalized feature ("..._norm" key) computed by
// the position normalizer.
func (r *PlayerSeasonRecord) NormalizedFeature(name string) (float64, bool) {
	if r.Normalized == nil {
		return 0, false
	}
	v, ok := r.Normalized[name]
	return v, ok
}

// SetNormalized records a normalized feature value on the record.
func (r *PlayerSeasonRecord) SetNormalized(name string, value float64) {
	if r.Normalized == nil {
		r.Normalized = MetricMap{}
	}
	r.Normalized[name] = value
}
