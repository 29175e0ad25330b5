package fit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futscout/scout-engine/internal/features"
	"github.com/futscout/scout-engine/internal/models"
)

func fitRecord(name, team, category string, minutes float64, normalized map[string]float64) models.PlayerSeasonRecord {
	rec := models.PlayerSeasonRecord{
		PlayerName:       name,
		TeamName:         team,
		PositionCategory: category,
		PrimaryPosition:  category,
		Minutes:          minutes,
	}
	for k, v := range normalized {
		rec.SetNormalized(k, v)
	}
	return rec
}

// forwardAt sets every feature a forward's fit reads to the same level, so
// all three components move together and ordering follows the level.
func forwardAt(name, team string, minutes, level float64) models.PlayerSeasonRecord {
	return fitRecord(name, team, features.PositionForward, minutes, map[string]float64{
		"player_season_goals_90_norm":        level,
		"player_season_np_xg_90_norm":        level,
		"player_season_shot_touch_ratio_norm": level,
		"player_season_obv_shot_90_norm":     level,
		"player_season_pressures_90_norm":    level,
		"player_season_obv_90_norm":          level,
		"player_season_dribbles_90_norm":     level,
		"player_season_passes_into_box_90_norm": level,
	})
}

func neutralProfile(pressing float64) *models.TeamProfile {
	return &models.TeamProfile{
		Metadata: models.ProfileMetadata{TeamName: "Atlas United"},
		Rankings: map[string]float64{"pressing_intensity": pressing},
	}
}

func fittedScorer(t *testing.T, records []models.PlayerSeasonRecord, profile *models.TeamProfile) *Scorer {
	t.Helper()
	s := NewScorer(features.DefaultCatalog(), []string{"Atlas"}, DefaultParams())
	require.NoError(t, s.Fit(records, profile))
	return s
}

func TestScorerRequiresFit(t *testing.T) {
	s := NewScorer(features.DefaultCatalog(), nil, DefaultParams())

	_, err := s.AnalyzePlayer("anyone")
	var invalid *models.InvalidStateError
	require.ErrorAs(t, err, &invalid)

	_, err = s.RecommendForPosition("FWD", RecommendOptions{})
	require.ErrorAs(t, err, &invalid)

	err = s.Fit(nil, nil)
	require.ErrorAs(t, err, &invalid, "fitting without a profile is rejected")
}

func TestImpactScoreAtNeutralCenter(t *testing.T) {
	rec := fitRecord("Neutral Nine", "Elsewhere FC", features.PositionForward, 2500,
		map[string]float64{"player_season_obv_90_norm": 0.5})
	s := fittedScorer(t, []models.PlayerSeasonRecord{rec}, neutralProfile(50))

	res, err := s.AnalyzePlayer("Neutral Nine")
	require.NoError(t, err)

	// Sigmoid(0.5) is exactly 50 and 2500 minutes carry full reliability.
	assert.Equal(t, 50.0, res.ImpactScore)
}

func TestOverallFitWeightIdentity(t *testing.T) {
	rec := forwardAt("Test Forward", "Elsewhere FC", 1700, 0.63)
	s := fittedScorer(t, []models.PlayerSeasonRecord{rec}, neutralProfile(50))

	res, err := s.AnalyzePlayer("Test Forward")
	require.NoError(t, err)

	want := 0.35*res.TechnicalFit + 0.30*res.TacticalFit + 0.35*res.ImpactScore
	assert.InDelta(t, want, res.OverallFit, 1e-9)
	assert.GreaterOrEqual(t, res.OverallFit, 0.0)
	assert.LessOrEqual(t, res.OverallFit, 100.0)
}

func TestTechnicalFitFallbacks(t *testing.T) {
	t.Run("no features scores neutral", func(t *testing.T) {
		rec := fitRecord("Blank Slate", "Elsewhere FC", features.PositionForward, 900, nil)
		s := fittedScorer(t, []models.PlayerSeasonRecord{rec}, neutralProfile(50))

		res, err := s.AnalyzePlayer("Blank Slate")
		require.NoError(t, err)
		assert.Equal(t, 50.0, res.TechnicalFit)
	})

	t.Run("unknown position uses midfielder features", func(t *testing.T) {
		normalized := map[string]float64{
			"player_season_assists_90_norm":    0.8,
			"player_season_key_passes_90_norm": 0.8,
			"player_season_obv_pass_90_norm":   0.8,
			"player_season_pressures_90_norm":  0.8,
		}
		odd := fitRecord("Odd Role", "Elsewhere FC", "Libero", 900, normalized)
		med := fitRecord("Mid Role", "Elsewhere FC", features.PositionMidfielder, 900, normalized)
		s := fittedScorer(t, []models.PlayerSeasonRecord{odd, med}, neutralProfile(50))

		oddRes, err := s.AnalyzePlayer("Odd Role")
		require.NoError(t, err)
		medRes, err := s.AnalyzePlayer("Mid Role")
		require.NoError(t, err)
		assert.Equal(t, medRes.TechnicalFit, oddRes.TechnicalFit)
	})
}

func TestTacticalPressingBonus(t *testing.T) {
	tacticalBase := map[string]float64{
		"player_season_pressures_90_norm":       0.8,
		"player_season_obv_90_norm":             0.5,
		"player_season_dribbles_90_norm":        0.5,
		"player_season_passes_into_box_90_norm": 0.5,
	}

	t.Run("bonus applies for pressers joining pressing team", func(t *testing.T) {
		rec := fitRecord("Pressing Mid", "Elsewhere FC", features.PositionMidfielder, 1500, tacticalBase)
		with := fittedScorer(t, []models.PlayerSeasonRecord{rec}, neutralProfile(75))
		without := fittedScorer(t, []models.PlayerSeasonRecord{rec}, neutralProfile(40))

		withRes, err := with.AnalyzePlayer("Pressing Mid")
		require.NoError(t, err)
		withoutRes, err := without.AnalyzePlayer("Pressing Mid")
		require.NoError(t, err)

		assert.InDelta(t, withoutRes.TacticalFit+3.0, withRes.TacticalFit, 1e-9)
	})

	t.Run("bonus never pushes past 100", func(t *testing.T) {
		extreme := map[string]float64{
			"player_season_pressures_90_norm":       2.0,
			"player_season_obv_90_norm":             2.0,
			"player_season_dribbles_90_norm":        2.0,
			"player_season_passes_into_box_90_norm": 2.0,
		}
		rec := fitRecord("Extreme Presser", "Elsewhere FC", features.PositionMidfielder, 1500, extreme)
		s := fittedScorer(t, []models.PlayerSeasonRecord{rec}, neutralProfile(90))

		res, err := s.AnalyzePlayer("Extreme Presser")
		require.NoError(t, err)
		assert.LessOrEqual(t, res.TacticalFit, 100.0)
	})
}

func TestAnalyzePlayerResolution(t *testing.T) {
	records := []models.PlayerSeasonRecord{
		forwardAt("Carlos Vela", "Elsewhere FC", 1000, 0.5),
		forwardAt("Carlos Vela", "Elsewhere FC", 2000, 0.5),
		forwardAt("Marco Carlos", "Another FC", 1500, 0.5),
	}
	records[0].SeasonID = 100
	records[1].SeasonID = 200
	records[2].SeasonID = 200
	s := fittedScorer(t, records, neutralProfile(50))

	res, err := s.AnalyzePlayer("carlos")
	require.NoError(t, err)
	assert.Equal(t, "Carlos Vela", res.PlayerName)
	assert.Equal(t, 2000.0, res.Minutes, "most recent season wins for the same name")

	_, err = s.AnalyzePlayer("Nobody At All")
	var notFound *models.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "player", notFound.Resource)
}

func TestRecommendForPosition(t *testing.T) {
	records := []models.PlayerSeasonRecord{
		forwardAt("Own Player", "Atlas United", 2500, 0.95),
		forwardAt("Blocked Player", "Rival FC", 2500, 0.92),
		forwardAt("Elite Forward", "Elsewhere FC", 2500, 0.9),
		forwardAt("Good Forward", "Another FC", 2500, 0.6),
		forwardAt("Weak Forward", "Third FC", 2500, 0.1),
	}
	s := fittedScorer(t, records, neutralProfile(50))

	results, err := s.RecommendForPosition("Forward", RecommendOptions{
		TopN:         5,
		MinFit:       60,
		ExcludeTeams: []string{"Rival FC"},
	})
	require.NoError(t, err)

	require.Len(t, results, 2, "own team, excluded team and sub-threshold players drop out")
	assert.Equal(t, "Elite Forward", results[0].PlayerName)
	assert.Equal(t, "Good Forward", results[1].PlayerName)
	assert.GreaterOrEqual(t, results[0].OverallFit, results[1].OverallFit)
	for _, res := range results {
		assert.GreaterOrEqual(t, res.OverallFit, 60.0)
	}

	top1, err := s.RecommendForPosition("FWD", RecommendOptions{TopN: 1, MinFit: 0})
	require.NoError(t, err)
	require.Len(t, top1, 1)
	assert.Equal(t, "Elite Forward", top1[0].PlayerName)
}

func TestRecommendForPositionNoCandidates(t *testing.T) {
	records := []models.PlayerSeasonRecord{
		forwardAt("Solo Forward", "Elsewhere FC", 2500, 0.5),
	}
	s := fittedScorer(t, records, neutralProfile(50))

	_, err := s.RecommendForPosition("GK", RecommendOptions{})
	var insufficient *models.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
}

func TestQualitativeNotes(t *testing.T) {
	strong := forwardAt("Star Forward", "Elsewhere FC", 2600, 1.2)
	weak := forwardAt("Fringe Forward", "Another FC", 600, -1.0)
	s := fittedScorer(t, []models.PlayerSeasonRecord{strong, weak}, neutralProfile(50))

	strongRes, err := s.AnalyzePlayer("Star Forward")
	require.NoError(t, err)
	assert.NotEmpty(t, strongRes.Strengths)
	assert.Empty(t, strongRes.Concerns)

	weakRes, err := s.AnalyzePlayer("Fringe Forward")
	require.NoError(t, err)
	assert.NotEmpty(t, weakRes.Concerns)
	assert.Contains(t, weakRes.Concerns, "Few minutes played")
}

func TestSigmoidParamsConfigurable(t *testing.T) {
	rec := forwardAt("Custom Center", "Elsewhere FC", 2500, 0.2)
	s := NewScorer(features.DefaultCatalog(), nil, Params{SigmoidCenter: 0.2, SigmoidSteepness: 4.0})
	require.NoError(t, s.Fit([]models.PlayerSeasonRecord{rec}, neutralProfile(50)))

	res, err := s.AnalyzePlayer("Custom Center")
	require.NoError(t, err)
	// The raw level sits exactly on the configured center, so technical
	// compression lands on 50 regardless of steepness.
	assert.InDelta(t, 50.0, res.TechnicalFit, 1e-9)
}

func BenchmarkRecommendForPosition(b *testing.B) {
	records := make([]models.PlayerSeasonRecord, 0, 500)
	for i := 0; i < 500; i++ {
		records = append(records, forwardAt("Player", "Club", 2000, float64(i%100)/100))
	}
	s := NewScorer(features.DefaultCatalog(), []string{"Atlas"}, DefaultParams())
	if err := s.Fit(records, neutralProfile(50)); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.RecommendForPosition("FWD", RecommendOptions{TopN: 10}); err != nil {
			b.Fatal(err)
		}
	}
}
