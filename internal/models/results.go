package models

// FitResult is the outcome of scoring one player season against a team
// profile. Scores live on a 0-100 scale.
type FitResult struct {
	PlayerName       string             `json:"player_name"`
	TeamName         string             `json:"team_name"`
	PositionCategory string             `json:"position_category"`
	PrimaryPosition  string             `json:"primary_position"`
	Minutes          float64            `json:"minutes"`
	TechnicalFit     float64            `json:"technical_fit"`
	TacticalFit      float64            `json:"tactical_fit"`
	ImpactScore      float64            `json:"impact_score"`
	OverallFit       float64            `json:"overall_fit"`
	KeyMetrics       map[string]float64 `json:"key_metrics"`
	Strengths        []string           `json:"strengths"`
	Concerns         []string           `json:"concerns"`
}

// SimilarPlayer is one row of a similarity query result.
type SimilarPlayer struct {
	PlayerName       string  `json:"player_name"`
	TeamName         string  `json:"team_name"`
	PositionCategory string  `json:"position_category"`
	PrimaryPosition  string  `json:"primary_position"`
	Minutes          float64 `json:"minutes"`
	FinalScore       float64 `json:"final_score"`
	SimilarityScore  float64 `json:"similarity_score"`
	ContextScore     float64 `json:"context_score"`
	Goals90          float64 `json:"goals_90"`
	Assists90        float64 `json:"assists_90"`
	NPxG90           float64 `json:"np_xg_90"`
	OBV90            float64 `json:"obv_90"`
}

// ProfileScore is one row of a profile-weighted position search.
type ProfileScore struct {
	PlayerName       string  `json:"player_name"`
	TeamName         string  `json:"team_name"`
	PositionCategory string  `json:"position_category"`
	Minutes          float64 `json:"minutes"`
	Score            float64 `json:"profile_score"`
	AttackingScore   float64 `json:"attacking_score"`
	DefensiveScore   float64 `json:"defensive_score"`
	PassingScore     float64 `json:"passing_score"`
}

// FeatureImportance reports how far one player's feature sits from the
// average of their position group.
type FeatureImportance struct {
	Feature         string  `json:"feature"`
	PlayerValue     float64 `json:"player_value"`
	PositionAverage float64 `json:"position_average"`
	Difference      float64 `json:"difference"`
}

// PositionNeeds summarizes squad coverage for one position category.
type PositionNeeds struct {
	PlayersCount int      `json:"players_count"`
	AvgMinutes   float64  `json:"avg_minutes"`
	AvgOBV       float64  `json:"avg_obv"`
	Needs        []string `json:"needs"`
}

// SquadOverview is the reference team's latest-season squad.
type SquadOverview struct {
	TeamName       string               `json:"team_name"`
	SeasonName     string               `json:"season_name"`
	Players        []PlayerSeasonRecord `json:"players"`
	PositionCounts map[string]int       `json:"position_counts"`
}

// RecruitmentReport bundles the team profile, squad needs and the top
// recommendations per position.
type RecruitmentReport struct {
	TeamProfile     *TeamProfile             `json:"team_profile"`
	SquadNeeds      map[string]PositionNeeds `json:"squad_needs"`
	Recommendations map[string][]FitResult   `json:"recommendations"`
}

// ComparisonSide is one player's half of a head-to-head comparison.
type ComparisonSide struct {
	Name   string              `json:"name"`
	Fit    *FitResult          `json:"fit_analysis"`
	Record *PlayerSeasonRecord `json:"record"`
}

// ComparisonSummary names the winner of each fit component. Ties go to the
// second player.
type ComparisonSummary struct {
	BetterOverallFit string `json:"better_overall_fit"`
	BetterTechnical  string `json:"better_technical"`
	BetterTactical   string `json:"better_tactical"`
	BetterImpact     string `json:"better_impact"`
}

// PlayerComparison is a head-to-head fit comparison of two players.
type PlayerComparison struct {
	Player1 ComparisonSide    `json:"player1"`
	Player2 ComparisonSide    `json:"player2"`
	Summary ComparisonSummary `json:"summary"`
}
