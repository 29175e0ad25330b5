package features

import "strings"

// Position categories used across the engine. Detailed position labels from
// the stats provider collapse into these four buckets.
const (
	PositionGoalkeeper = "GK"
	PositionDefender   = "DEF"
	PositionMidfielder = "MED"
	PositionForward    = "FWD"
)

// Well-known metric keys referenced outside the catalog.
const (
	MetricMinutes   = "player_season_minutes"
	MetricOBV       = "player_season_obv_90"
	MetricGoals     = "player_season_goals_90"
	MetricAssists   = "player_season_assists_90"
	MetricNPxG      = "player_season_np_xg_90"
	MetricPressures = "player_season_pressures_90"

	FeatureOBV       = "player_season_obv_90_norm"
	FeaturePressures = "player_season_pressures_90_norm"
)

// PositionRequirement describes the recommended profile-search weights and the
// team dimensions that matter most when recruiting for a position.
type PositionRequirement struct {
	Attacking     float64  `json:"attacking"`
	Defensive     float64  `json:"defensive"`
	Passing       float64  `json:"passing"`
	KeyDimensions []string `json:"key_dimensions"`
}

// Catalog bundles every metric list, feature set and mapping the engine
// computes with. A catalog is treated as immutable after construction; build a
// new one instead of mutating a shared instance.
type Catalog struct {
	// NormalizableMetrics are the raw per-90 and ratio metrics the position
	// normalizer standardizes within each position group.
	NormalizableMetrics []string `json:"normalizable_metrics"`

	// NormalizedFeatures is the feature vector used for player similarity.
	NormalizedFeatures []string `json:"normalized_features"`

	// PositionFeatures are the headline features per position category, used
	// for feature-importance style summaries and catalog introspection.
	PositionFeatures map[string][]string `json:"position_features"`

	// TechnicalFeatures are the per-position feature sets behind the
	// technical fit score.
	TechnicalFeatures map[string][]string `json:"technical_features"`

	// TacticalMetrics feed the tactical fit score for every position.
	TacticalMetrics []string `json:"tactical_metrics"`

	// ProfileGroups are the attacking/defensive/passing feature groups used
	// by profile-weighted search.
	ProfileGroups map[string][]string `json:"profile_groups"`

	// Dimensions lists the team profile dimensions in stable order;
	// DimensionMetrics maps each dimension to its constituent team metrics.
	Dimensions       []string            `json:"dimensions"`
	DimensionMetrics map[string][]string `json:"dimension_metrics"`

	// PositionMapping collapses detailed position labels into categories.
	PositionMapping map[string]string `json:"position_mapping"`

	// PositionRequirements hold per-position recruitment weights.
	PositionRequirements map[string]PositionRequirement `json:"position_requirements"`
}

// DefaultCatalog returns the standard catalog. Callers get a fresh instance on
// every call so one component cannot poison another's configuration.
func DefaultCatalog() *Catalog {
	return &Catalog{
		NormalizableMetrics: []string{
			"player_season_goals_90",
			"player_season_assists_90",
			"player_season_np_xg_90",
			"player_season_xag_90",
			"player_season_np_shots_90",
			"player_season_shot_touch_ratio",
			"player_season_dribbles_90",
			"player_season_dribble_ratio",
			"player_season_passes_into_box_90",
			"player_season_cross_completion_ratio",
			"player_season_deep_completions_90",
			"player_season_key_passes_90",
			"player_season_pass_completion_ratio",
			"player_season_progressive_passes_90",
			"player_season_obv_pass_90",
			"player_season_pressures_90",
			"player_season_pressure_regains_90",
			"player_season_tackles_90",
			"player_season_interceptions_90",
			"player_season_blocks_90",
			"player_season_clearances_90",
			"player_season_defensive_actions_90",
			"player_season_aerial_ratio",
			"player_season_save_ratio",
			"player_season_clean_sheet_ratio",
			"player_season_obv_90",
			"player_season_obv_dribble_carry_90",
			"player_season_obv_defensive_action_90",
			"player_season_obv_shot_90",
		},
		NormalizedFeatures: []string{
			"player_season_goals_90_norm",
			"player_season_assists_90_norm",
			"player_season_np_xg_90_norm",
			"player_season_np_shots_90_norm",
			"player_season_shot_touch_ratio_norm",
			"player_season_dribbles_90_norm",
			"player_season_dribble_ratio_norm",
			"player_season_passes_into_box_90_norm",
			"player_season_deep_completions_90_norm",
			"player_season_key_passes_90_norm",
			"player_season_obv_pass_90_norm",
			"player_season_pressures_90_norm",
			"player_season_pressure_regains_90_norm",
			"player_season_tackles_90_norm",
			"player_season_interceptions_90_norm",
			"player_season_defensive_actions_90_norm",
			"player_season_aerial_ratio_norm",
			"player_season_obv_90_norm",
			"player_season_obv_dribble_carry_90_norm",
			"player_season_obv_defensive_action_90_norm",
			"player_season_obv_shot_90_norm",
		},
		PositionFeatures: map[string][]string{
			PositionForward: {
				"player_season_goals_90_norm",
				"player_season_np_xg_90_norm",
				"player_season_assists_90_norm",
				"player_season_shot_touch_ratio_norm",
				"player_season_obv_shot_90_norm",
			},
			PositionMidfielder: {
				"player_season_assists_90_norm",
				"player_season_key_passes_90_norm",
				"player_season_obv_pass_90_norm",
				"player_season_pressures_90_norm",
				"player_season_obv_90_norm",
			},
			PositionDefender: {
				"player_season_tackles_90_norm",
				"player_season_interceptions_90_norm",
				"player_season_defensive_actions_90_norm",
				"player_season_obv_defensive_action_90_norm",
				"player_season_aerial_ratio_norm",
			},
			PositionGoalkeeper: {
				"player_season_save_ratio_norm",
				"player_season_obv_90_norm",
			},
		},
		TechnicalFeatures: map[string][]string{
			PositionForward: {
				"player_season_goals_90_norm",
				"player_season_np_xg_90_norm",
				"player_season_shot_touch_ratio_norm",
				"player_season_obv_shot_90_norm",
			},
			PositionMidfielder: {
				"player_season_assists_90_norm",
				"player_season_key_passes_90_norm",
				"player_season_obv_pass_90_norm",
				"player_season_pressures_90_norm",
			},
			PositionDefender: {
				"player_season_tackles_90_norm",
				"player_season_interceptions_90_norm",
				"player_season_defensive_actions_90_norm",
				"player_season_aerial_ratio_norm",
			},
			PositionGoalkeeper: {
				"player_season_save_ratio_norm",
			},
		},
		TacticalMetrics: []string{
			"player_season_pressures_90_norm",
			"player_season_obv_90_norm",
			"player_season_dribbles_90_norm",
			"player_season_passes_into_box_90_norm",
		},
		ProfileGroups: map[string][]string{
			"attacking": {
				"player_season_goals_90_norm",
				"player_season_np_xg_90_norm",
				"player_season_shot_touch_ratio_norm",
				"player_season_obv_shot_90_norm",
			},
			"defensive": {
				"player_season_tackles_90_norm",
				"player_season_interceptions_90_norm",
				"player_season_defensive_actions_90_norm",
				"player_season_obv_defensive_action_90_norm",
			},
			"passing": {
				"player_season_assists_90_norm",
				"player_season_key_passes_90_norm",
				"player_season_passes_into_box_90_norm",
				"player_season_obv_pass_90_norm",
			},
		},
		Dimensions: []string{
			"offensive_quality",
			"defensive_quality",
			"set_pieces",
			"pressing_intensity",
			"possession_control",
			"shot_quality",
		},
		DimensionMetrics: map[string][]string{
			"offensive_quality": {
				"team_season_goals_pg",
				"team_season_np_xg_pg",
				"team_season_np_xg_per_shot",
			},
			"defensive_quality": {
				"team_season_goals_conceded_pg",
				"team_season_np_xg_conceded_pg",
				"team_season_tackles_pg",
				"team_season_interceptions_pg",
			},
			"set_pieces": {
				"team_season_sp_xg_pg",
				"team_season_corner_xg_pg",
			},
			"pressing_intensity": {
				"team_season_pressures_pg",
				"team_season_counterpressures_pg",
			},
			"possession_control": {
				"team_season_possession",
				"team_season_passing_ratio",
			},
			"shot_quality": {
				"team_season_np_shots_pg",
				"team_season_np_xg_per_shot",
			},
		},
		PositionMapping: map[string]string{
			"Goalkeeper":                PositionGoalkeeper,
			"Right Back":                PositionDefender,
			"Left Back":                 PositionDefender,
			"Right Center Back":         PositionDefender,
			"Left Center Back":          PositionDefender,
			"Center Back":               PositionDefender,
			"Right Wing Back":           PositionDefender,
			"Left Wing Back":            PositionDefender,
			"Right Defensive Midfield":  PositionMidfielder,
			"Left Defensive Midfield":   PositionMidfielder,
			"Center Defensive Midfield": PositionMidfielder,
			"Right Center Midfield":     PositionMidfielder,
			"Left Center Midfield":      PositionMidfielder,
			"Center Midfield":           PositionMidfielder,
			"Right Midfield":            PositionMidfielder,
			"Left Midfield":             PositionMidfielder,
			"Right Attacking Midfield":  PositionMidfielder,
			"Left Attacking Midfield":   PositionMidfielder,
			"Center Attacking Midfield": PositionMidfielder,
			"Right Wing":                PositionForward,
			"Left Wing":                 PositionForward,
			"Right Center Forward":      PositionForward,
			"Left Center Forward":       PositionForward,
			"Center Forward":            PositionForward,
			"Secondary Striker":         PositionForward,
		},
		PositionRequirements: map[string]PositionRequirement{
			PositionForward: {
				Attacking:     0.70,
				Defensive:     0.10,
				Passing:       0.20,
				KeyDimensions: []string{"offensive_quality", "shot_quality"},
			},
			PositionMidfielder: {
				Attacking:     0.35,
				Defensive:     0.35,
				Passing:       0.30,
				KeyDimensions: []string{"possession_control", "pressing_intensity"},
			},
			PositionDefender: {
				Attacking:     0.10,
				Defensive:     0.65,
				Passing:       0.25,
				KeyDimensions: []string{"defensive_quality", "pressing_intensity"},
			},
			PositionGoalkeeper: {
				Attacking:     0.00,
				Defensive:     0.85,
				Passing:       0.15,
				KeyDimensions: []string{"defensive_quality"},
			},
		},
	}
}

// CanonicalCategory maps the common spellings of a position category to its
// short code. Both short codes ("FWD") and full names ("Forward") resolve;
// unrecognized input returns the empty string so callers can apply their own
// fallback.
func CanonicalCategory(position string) string {
	switch strings.ToUpper(strings.TrimSpace(position)) {
	case "GK", "GOALKEEPER":
		return PositionGoalkeeper
	case "DEF", "DEFENDER":
		return PositionDefender
	case "MED", "MID", "MIDFIELDER":
		return PositionMidfielder
	case "FWD", "FORWARD", "STRIKER":
		return PositionForward
	}
	return ""
}

// PositionCategory collapses a detailed position label into one of the four
// category codes. Labels missing from the mapping land in the midfielder
// bucket, which keeps odd provider labels usable instead of dropping them.
func (c *Catalog) PositionCategory(label string) string {
	if cat, ok := c.PositionMapping[strings.TrimSpace(label)]; ok {
		return cat
	}
	return PositionMidfielder
}

// TechnicalFeaturesFor returns the technical fit feature set for a position,
// falling back to the midfielder set for unknown positions.
func (c *Catalog) TechnicalFeaturesFor(position string) []string {
	if cat := CanonicalCategory(position); cat != "" {
		if feats, ok := c.TechnicalFeatures[cat]; ok {
			return feats
		}
	}
	return c.TechnicalFeatures[PositionMidfielder]
}

// RequirementsFor returns the recruitment requirement for a position, falling
// back to the midfielder requirement for unknown positions.
func (c *Catalog) RequirementsFor(position string) PositionRequirement {
	if cat := CanonicalCategory(position); cat != "" {
		if req, ok := c.PositionRequirements[cat]; ok {
			return req
		}
	}
	return c.PositionRequirements[PositionMidfielder]
}
