package ingest

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futscout/scout-engine/internal/features"
	"github.com/futscout/scout-engine/internal/models"
	"github.com/futscout/scout-engine/internal/provider"
)

func testSyncService(t *testing.T) *SyncService {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewSyncService(nil, nil, nil, features.DefaultCatalog(), logger)
}

func TestPlayerRecordMapping(t *testing.T) {
	svc := testSyncService(t)
	ref := models.SeasonRef{CompetitionID: 73, SeasonID: 317}

	row := provider.StatRow{
		"player_id":                float64(9001),
		"player_name":              "Diego Rocha",
		"team_id":                  float64(212),
		"team_name":                "Atlas United",
		"season_name":              "2023/2024",
		"primary_position":         "Center Forward",
		"player_season_minutes":    float64(2100),
		"player_season_goals_90":   0.55,
		"player_season_np_xg_90":   0.48,
		"player_season_save_ratio": 0.71,
		"player_season_team_flag":  "starter",
		"player_height":            float64(183),
	}

	rec := svc.playerRecord(ref, row)

	assert.Equal(t, 9001, rec.PlayerID)
	assert.Equal(t, "Diego Rocha", rec.PlayerName)
	assert.Equal(t, "Atlas United", rec.TeamName)
	assert.Equal(t, 73, rec.CompetitionID)
	assert.Equal(t, 317, rec.SeasonID)
	assert.Equal(t, features.PositionForward, rec.PositionCategory)
	assert.Equal(t, 2100.0, rec.Minutes)
	assert.Equal(t, 0.55, rec.Goals90)
	assert.Equal(t, 0.48, rec.NPxG90)

	// Missing typed metrics default to zero.
	assert.Equal(t, 0.0, rec.Assists90)
	assert.Equal(t, 0.0, rec.Tackles90)

	// Sparse numeric metrics survive in Extra; strings and keys outside the
	// player_season_ namespace do not.
	require.NotNil(t, rec.Extra)
	assert.Equal(t, 0.71, rec.Extra["player_season_save_ratio"])
	assert.NotContains(t, rec.Extra, "player_season_team_flag")
	assert.NotContains(t, rec.Extra, "player_height")
	assert.NotContains(t, rec.Extra, "player_season_goals_90")
}

func TestPlayerRecordUnknownPositionLandsInMidfield(t *testing.T) {
	svc := testSyncService(t)

	rec := svc.playerRecord(models.SeasonRef{CompetitionID: 73, SeasonID: 317}, provider.StatRow{
		"player_id":        float64(1),
		"player_name":      "Mystery Man",
		"primary_position": "Libero",
	})

	assert.Equal(t, features.PositionMidfielder, rec.PositionCategory)
}

func TestTeamRecordMapping(t *testing.T) {
	svc := testSyncService(t)
	ref := models.SeasonRef{CompetitionID: 73, SeasonID: 281}

	rec := svc.teamRecord(ref, provider.StatRow{
		"team_id":                float64(212),
		"team_name":              "Atlas United",
		"season_name":            "2022/2023",
		"team_season_goals_pg":   1.8,
		"team_season_possession": 0.57,
		"team_season_obv_pg":     1.12,
		"team_season_sponsor":    "Acme",
	})

	assert.Equal(t, 212, rec.TeamID)
	assert.Equal(t, "Atlas United", rec.TeamName)
	assert.Equal(t, 281, rec.SeasonID)
	assert.Equal(t, 1.8, rec.GoalsPG)
	assert.Equal(t, 0.57, rec.Possession)
	assert.Equal(t, 0.0, rec.TacklesPG)

	require.NotNil(t, rec.Extra)
	assert.Equal(t, 1.12, rec.Extra["team_season_obv_pg"])
	assert.NotContains(t, rec.Extra, "team_season_sponsor")
}

func TestMatchRecordDateParsing(t *testing.T) {
	svc := testSyncService(t)
	ref := models.SeasonRef{CompetitionID: 73, SeasonID: 317}

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"plain date", "2024-02-10", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2024-02-10T20:30:00Z", time.Date(2024, 2, 10, 20, 30, 0, 0, time.UTC)},
		{"garbage", "soon", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := svc.matchRecord(ref, provider.MatchPayload{
				MatchID:   7,
				MatchDate: tt.raw,
				HomeTeam:  "Atlas United",
				AwayTeam:  "Rival FC",
				HomeScore: 1,
				AwayScore: 1,
			})
			assert.True(t, rec.MatchDate.Equal(tt.want))
			assert.Equal(t, 7, rec.MatchID)
			assert.Equal(t, 73, rec.CompetitionID)
		})
	}
}
