package similarity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futscout/scout-engine/internal/features"
	"github.com/futscout/scout-engine/internal/models"
)

func simRecord(id int, name, team, category string, minutes float64, normalized map[string]float64) models.PlayerSeasonRecord {
	rec := models.PlayerSeasonRecord{
		PlayerID:         id,
		PlayerName:       name,
		TeamName:         team,
		PositionCategory: category,
		PrimaryPosition:  category,
		Minutes:          minutes,
		SeasonID:         100,
	}
	for k, v := range normalized {
		rec.SetNormalized(k, v)
	}
	return rec
}

// axisPool builds four forwards on orthogonal feature axes, which makes the
// standardized cosine between them exactly 0, -1 or +1.
func axisPool() []models.PlayerSeasonRecord {
	return []models.PlayerSeasonRecord{
		simRecord(1, "Alpha One", "Team One", features.PositionForward, 2000,
			map[string]float64{"player_season_goals_90_norm": 1}),
		simRecord(2, "Beta Two", "Team Two", features.PositionForward, 2500,
			map[string]float64{"player_season_assists_90_norm": 1}),
		simRecord(3, "Gamma Three", "Team Three", features.PositionForward, 1500,
			map[string]float64{"player_season_goals_90_norm": -1}),
		simRecord(4, "Delta Four", "Team Four", features.PositionForward, 1000,
			map[string]float64{"player_season_assists_90_norm": -1}),
	}
}

func fittedRecommender(t *testing.T, records []models.PlayerSeasonRecord, minMinutes float64) *Recommender {
	t.Helper()
	r := NewRecommender(features.DefaultCatalog(), 10)
	require.NoError(t, r.Fit(records, minMinutes))
	return r
}

func TestRecommenderRequiresFit(t *testing.T) {
	r := NewRecommender(features.DefaultCatalog(), 10)

	var invalid *models.InvalidStateError
	_, err := r.FindSimilar(NewSearchOptions("anyone"))
	require.ErrorAs(t, err, &invalid)
	_, err = r.RecommendByProfile("FWD", DefaultProfileWeights(), 5, 0)
	require.ErrorAs(t, err, &invalid)
	_, err = r.FeatureImportance("anyone", 5)
	require.ErrorAs(t, err, &invalid)
}

func TestFitFiltersByMinutes(t *testing.T) {
	records := append(axisPool(),
		simRecord(9, "Bench Warmer", "Team Five", features.PositionForward, 120,
			map[string]float64{"player_season_goals_90_norm": 2}))
	r := fittedRecommender(t, records, 500)

	assert.Equal(t, 4, r.Size(), "sub-threshold players never enter the index")

	err := NewRecommender(features.DefaultCatalog(), 10).Fit(records, 5000)
	var insufficient *models.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
}

func TestSimilarityMatrixProperties(t *testing.T) {
	pool := []models.PlayerSeasonRecord{
		simRecord(1, "Twin A", "Team One", features.PositionForward, 2000,
			map[string]float64{"player_season_goals_90_norm": 1, "player_season_assists_90_norm": 1}),
		simRecord(2, "Twin B", "Team Two", features.PositionForward, 1500,
			map[string]float64{"player_season_goals_90_norm": 1, "player_season_assists_90_norm": 1}),
		simRecord(3, "Odd One", "Team Three", features.PositionForward, 1800,
			map[string]float64{"player_season_goals_90_norm": -2, "player_season_assists_90_norm": 0.5}),
	}
	r := fittedRecommender(t, pool, 500)

	n := r.Size()
	for i := 0; i < n; i++ {
		assert.InDelta(t, 1.0, r.similarity.At(i, i), 1e-9, "self similarity")
		for j := 0; j < n; j++ {
			assert.InDelta(t, r.similarity.At(i, j), r.similarity.At(j, i), 1e-12, "symmetry")
			assert.LessOrEqual(t, r.similarity.At(i, j), 1.0+1e-9)
			assert.GreaterOrEqual(t, r.similarity.At(i, j), -1.0-1e-9)
		}
	}

	res, err := r.FindSimilar(NewSearchOptions("Twin A"))
	require.NoError(t, err)
	require.NotEmpty(t, res)
	assert.Equal(t, "Twin B", res[0].PlayerName)
	assert.InDelta(t, 1.0, res[0].SimilarityScore, 1e-9, "identical profiles are perfectly similar")
}

func TestFindSimilarOrthogonalPool(t *testing.T) {
	r := fittedRecommender(t, axisPool(), 500)

	opts := NewSearchOptions("Alpha")
	opts.MinSimilarity = -2
	res, err := r.FindSimilar(opts)
	require.NoError(t, err)
	require.Len(t, res, 3)

	bySim := make(map[string]float64)
	for _, p := range res {
		bySim[p.PlayerName] = p.SimilarityScore
	}
	assert.InDelta(t, 0.0, bySim["Beta Two"], 1e-9)
	assert.InDelta(t, -1.0, bySim["Gamma Three"], 1e-9)
	assert.InDelta(t, 0.0, bySim["Delta Four"], 1e-9)

	// The default floor of 0 drops the statistical opposite.
	res, err = r.FindSimilar(NewSearchOptions("Alpha"))
	require.NoError(t, err)
	require.Len(t, res, 2)
	for _, p := range res {
		assert.NotEqual(t, "Gamma Three", p.PlayerName)
	}
}

func TestFindSimilarContextAndFinalScore(t *testing.T) {
	r := fittedRecommender(t, axisPool(), 500)

	opts := NewSearchOptions("Alpha")
	opts.MinSimilarity = -2
	res, err := r.FindSimilar(opts)
	require.NoError(t, err)
	require.Len(t, res, 3)

	maxMinutes, maxOBV := 0.0, res[0].OBV90
	for _, p := range res {
		if p.Minutes > maxMinutes {
			maxMinutes = p.Minutes
		}
		if p.OBV90 > maxOBV {
			maxOBV = p.OBV90
		}
	}
	assert.Equal(t, 2500.0, maxMinutes, "Beta Two leads the candidate pool in minutes")

	for _, p := range res {
		want := 0.6 * p.Minutes / maxMinutes
		if maxOBV > 0 {
			want += 0.4 * p.OBV90 / maxOBV
		}
		assert.InDelta(t, want, p.ContextScore, 1e-9, p.PlayerName)
		assert.InDelta(t, 0.7*p.SimilarityScore+0.3*p.ContextScore, p.FinalScore, 1e-9, p.PlayerName)
	}

	for i := 1; i < len(res); i++ {
		assert.GreaterOrEqual(t, res[i-1].FinalScore, res[i].FinalScore, "descending final score")
	}
}

func TestFindSimilarExclusions(t *testing.T) {
	t.Run("reference player and their other seasons", func(t *testing.T) {
		pool := axisPool()
		alphaSecond := simRecord(1, "Alpha One", "Loan Club", features.PositionForward, 900,
			map[string]float64{"player_season_goals_90_norm": 1})
		alphaSecond.SeasonID = 200
		pool = append(pool, alphaSecond)
		r := fittedRecommender(t, pool, 500)

		opts := NewSearchOptions("Alpha One")
		opts.MinSimilarity = -2
		res, err := r.FindSimilar(opts)
		require.NoError(t, err)
		for _, p := range res {
			assert.NotEqual(t, "Alpha One", p.PlayerName, "no season of the reference player may appear")
		}
	})

	t.Run("same team excluded by default", func(t *testing.T) {
		pool := axisPool()
		pool[1].TeamName = "Team One" // same club as Alpha
		r := fittedRecommender(t, pool, 500)

		opts := NewSearchOptions("Alpha")
		opts.MinSimilarity = -2
		res, err := r.FindSimilar(opts)
		require.NoError(t, err)
		for _, p := range res {
			assert.NotEqual(t, "Team One", p.TeamName)
		}

		opts.ExcludeSameTeam = false
		res, err = r.FindSimilar(opts)
		require.NoError(t, err)
		found := false
		for _, p := range res {
			if p.TeamName == "Team One" {
				found = true
			}
		}
		assert.True(t, found, "teammates return once the filter is off")
	})

	t.Run("position override", func(t *testing.T) {
		pool := append(axisPool(),
			simRecord(7, "Solid Back", "Team Six", features.PositionDefender, 2000,
				map[string]float64{"player_season_tackles_90_norm": 1}))
		r := fittedRecommender(t, pool, 500)

		opts := NewSearchOptions("Alpha")
		opts.SamePositionOnly = false
		opts.Position = "Defender"
		opts.MinSimilarity = -2
		res, err := r.FindSimilar(opts)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "Solid Back", res[0].PlayerName)
	})
}

func TestFindSimilarEmptyCandidates(t *testing.T) {
	pool := append(axisPool(),
		simRecord(8, "Solo Keeper", "Team Seven", features.PositionGoalkeeper, 2000,
			map[string]float64{"player_season_save_ratio_norm": 1}))
	r := fittedRecommender(t, pool, 500)

	res, err := r.FindSimilar(NewSearchOptions("Solo Keeper"))
	require.NoError(t, err, "an empty candidate pool is a result, not an error")
	assert.Empty(t, res)
}

func TestResolveSuggestions(t *testing.T) {
	pool := make([]models.PlayerSeasonRecord, 0, 7)
	surnames := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf"}
	for i, surname := range surnames {
		pool = append(pool, simRecord(i+1, "Jon "+surname, fmt.Sprintf("Team %d", i), features.PositionForward, 1500,
			map[string]float64{"player_season_goals_90_norm": float64(i)}))
	}
	r := fittedRecommender(t, pool, 500)

	_, err := r.FindSimilar(NewSearchOptions("Jon Nonexistent"))
	var notFound *models.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Jon Nonexistent", notFound.Query)
	assert.Len(t, notFound.Suggestions, 5, "suggestions cap at five")
	assert.Contains(t, notFound.Suggestions, "Jon Alpha")
	assert.Contains(t, err.Error(), "did you mean")

	_, err = r.FindSimilar(NewSearchOptions("Zlatan"))
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, notFound.Suggestions, "no near-misses, no suggestions")
}

func TestRecommendByProfile(t *testing.T) {
	attacking := func(level float64) map[string]float64 {
		return map[string]float64{
			"player_season_goals_90_norm":         level,
			"player_season_np_xg_90_norm":         level,
			"player_season_shot_touch_ratio_norm": level,
			"player_season_obv_shot_90_norm":      level,
		}
	}
	pool := []models.PlayerSeasonRecord{
		simRecord(1, "Sharp Shooter", "Team One", features.PositionForward, 2000, attacking(0.5)),
		simRecord(2, "Half Shooter", "Team Two", features.PositionForward, 1500, attacking(0.25)),
		simRecord(3, "Rarely Plays", "Team Three", features.PositionForward, 600, attacking(0.9)),
	}
	r := fittedRecommender(t, pool, 500)

	res, err := r.RecommendByProfile("FWD", ProfileWeights{Attacking: 1}, 10, 900)
	require.NoError(t, err)
	require.Len(t, res, 2, "minutes floor removes the fringe player")
	assert.Equal(t, "Sharp Shooter", res[0].PlayerName)
	assert.InDelta(t, 50.0, res[0].Score, 1e-9)
	assert.InDelta(t, 25.0, res[1].Score, 1e-9)

	blended, err := r.RecommendByProfile("Forward", DefaultProfileWeights(), 1, 900)
	require.NoError(t, err)
	require.Len(t, blended, 1)
	// Only the attacking group carries signal here.
	assert.InDelta(t, 25.0, blended[0].Score, 1e-9)

	_, err = r.RecommendByProfile("GK", DefaultProfileWeights(), 10, 900)
	var insufficient *models.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
}

func TestFeatureImportance(t *testing.T) {
	pool := []models.PlayerSeasonRecord{
		simRecord(1, "Goal Machine", "Team One", features.PositionForward, 2000,
			map[string]float64{"player_season_goals_90_norm": 2.0}),
		simRecord(2, "Quiet Forward", "Team Two", features.PositionForward, 1500,
			map[string]float64{"player_season_goals_90_norm": 0}),
		simRecord(3, "Plain Forward", "Team Three", features.PositionForward, 1200,
			map[string]float64{"player_season_goals_90_norm": 0}),
	}
	r := fittedRecommender(t, pool, 500)

	res, err := r.FeatureImportance("Goal Machine", 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "Goals 90", res[0].Feature)
	assert.InDelta(t, 2.0-2.0/3.0, res[0].Difference, 1e-9)
	assert.InDelta(t, 2.0/3.0, res[0].PositionAverage, 1e-9)
}

func TestFindReplacements(t *testing.T) {
	pool := axisPool()
	for i := 0; i < 8; i++ {
		pool = append(pool, simRecord(10+i, fmt.Sprintf("Filler %d", i), fmt.Sprintf("Club %d", i),
			features.PositionForward, 1000+float64(i)*100,
			map[string]float64{"player_season_goals_90_norm": 0.8}))
	}
	r := fittedRecommender(t, pool, 500)

	res, err := r.FindReplacements("Alpha", 2)
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestProjectionRetained(t *testing.T) {
	r := fittedRecommender(t, axisPool(), 500)

	proj := r.Projection()
	require.NotNil(t, proj)
	rows, cols := proj.Dims()
	assert.Equal(t, 4, rows)
	assert.LessOrEqual(t, cols, 10)
}

func BenchmarkFindSimilar(b *testing.B) {
	pool := make([]models.PlayerSeasonRecord, 0, 400)
	for i := 0; i < 400; i++ {
		pool = append(pool, simRecord(i+1, fmt.Sprintf("Player %03d", i), fmt.Sprintf("Club %d", i%40),
			features.PositionForward, 900+float64(i),
			map[string]float64{
				"player_season_goals_90_norm":   float64(i%17) / 17,
				"player_season_assists_90_norm": float64(i%11) / 11,
				"player_season_obv_90_norm":     float64(i%7) / 7,
			}))
	}
	r := NewRecommender(features.DefaultCatalog(), 10)
	if err := r.Fit(pool, 500); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.FindSimilar(NewSearchOptions("Player 200")); err != nil {
			b.Fatal(err)
		}
	}
}
