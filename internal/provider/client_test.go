package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futscout/scout-engine/internal/models"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	// High request budget keeps rate limiter waits negligible in tests.
	return NewClient(baseURL, "scout", "secret", 6000, logger)
}

func TestPlayerSeasonStatsDecodesRows(t *testing.T) {
	var gotPath, gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"player_id": 9001, "player_name": "Diego Rocha", "player_season_minutes": 2100.0, "player_season_goals_90": 0.55},
			{"player_id": 9002, "player_name": "Luis Peralta", "player_season_minutes": 900.0}
		]`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	rows, err := client.PlayerSeasonStats(context.Background(), models.SeasonRef{CompetitionID: 73, SeasonID: 317})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "/competitions/73/seasons/317/player-stats", gotPath)
	assert.Equal(t, "scout", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, "Diego Rocha", rows[0]["player_name"])
	assert.Equal(t, 0.55, rows[0]["player_season_goals_90"])
}

func TestTeamSeasonStatsURL(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[{"team_id": 212, "team_name": "Atlas United", "team_season_goals_pg": 1.8}]`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	rows, err := client.TeamSeasonStats(context.Background(), models.SeasonRef{CompetitionID: 73, SeasonID: 281})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "/competitions/73/seasons/281/team-stats", gotPath)
	assert.Equal(t, "Atlas United", rows[0]["team_name"])
}

func TestMatchesDecodesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"match_id": 41, "match_date": "2024-02-10", "home_team": "Atlas United", "away_team": "Rival FC", "home_score": 2, "away_score": 1}
		]`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	matches, err := client.Matches(context.Background(), models.SeasonRef{CompetitionID: 73, SeasonID: 317})

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 41, matches[0].MatchID)
	assert.Equal(t, "Atlas United", matches[0].HomeTeam)
	assert.Equal(t, 2, matches[0].HomeScore)
}

func TestCompetitionsEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/competitions", r.URL.Path)
		w.Write([]byte(`[{"competition_id": 73, "season_id": 317, "competition_name": "Liga MX", "season_name": "2023/2024"}]`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	comps, err := client.Competitions(context.Background())

	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, 73, comps[0].CompetitionID)
	assert.Equal(t, "2023/2024", comps[0].SeasonName)
}

func TestUnauthorizedDoesNotRetry(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.PlayerSeasonStats(context.Background(), models.SeasonRef{CompetitionID: 73, SeasonID: 317})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid API credentials")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestServerErrorIsRetried(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	rows, err := client.PlayerSeasonStats(context.Background(), models.SeasonRef{CompetitionID: 73, SeasonID: 317})

	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestExhaustedRetriesReportLastError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	client.retryAttempts = 1

	_, err := client.PlayerSeasonStats(context.Background(), models.SeasonRef{CompetitionID: 73, SeasonID: 317})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestRequestCountTracksUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.Matches(context.Background(), models.SeasonRef{CompetitionID: 73, SeasonID: 317})
	require.NoError(t, err)
	_, err = client.Matches(context.Background(), models.SeasonRef{CompetitionID: 73, SeasonID: 281})
	require.NoError(t, err)

	assert.Equal(t, 2, client.RequestCount())
}
