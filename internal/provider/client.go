package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/futscout/scout-engine/internal/models"
)

// Client fetches aggregated season statistics from the upstream stats API.
// Requests are paced by a rate limiter and retried with exponential backoff
// on transient failures.
type Client struct {
	httpClient    *http.Client
	logger        *logrus.Logger
	baseURL       string
	username      string
	password      string
	rateLimiter   *rate.Limiter
	retryAttempts int
	tracker       *requestTracker
}

// requestTracker tracks daily API usage
type requestTracker struct {
	mu           sync.Mutex
	requestCount int
	lastReset    time.Time
}

// CompetitionSeason is one competition/season pair available upstream.
type CompetitionSeason struct {
	CompetitionID   int    `json:"competition_id"`
	SeasonID        int    `json:"season_id"`
	CompetitionName string `json:"competition_name"`
	SeasonName      string `json:"season_name"`
	CountryName     string `json:"country_name"`
}

// MatchPayload is one played match as delivered by the stats API.
type MatchPayload struct {
	MatchID   int    `json:"match_id"`
	MatchDate string `json:"match_date"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

// StatRow is one raw stats row. Aggregated season endpoints carry a wide and
// occasionally sparse metric surface, so rows stay dynamic until the sync
// layer maps them onto records.
type StatRow map[string]interface{}

// NewClient creates a stats API client. requestsPerMinute bounds the outgoing
// request rate; credentials are sent as HTTP basic auth.
func NewClient(baseURL, username, password string, requestsPerMinute int, logger *logrus.Logger) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 10
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:        logger,
		baseURL:       baseURL,
		username:      username,
		password:      password,
		rateLimiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		retryAttempts: 3,
		tracker: &requestTracker{
			lastReset: time.Now(),
		},
	}
}

// Competitions lists every competition/season pair the account can access.
func (c *Client) Competitions(ctx context.Context) ([]CompetitionSeason, error) {
	url := fmt.Sprintf("%s/competitions", c.baseURL)

	var competitions []CompetitionSeason
	if err := c.makeRequest(ctx, url, &competitions); err != nil {
		return nil, fmt.Errorf("failed to fetch competitions: %w", err)
	}
	return competitions, nil
}

// PlayerSeasonStats fetches aggregated player statistics for one season.
func (c *Client) PlayerSeasonStats(ctx context.Context, ref models.SeasonRef) ([]StatRow, error) {
	url := fmt.Sprintf("%s/competitions/%d/seasons/%d/player-stats", c.baseURL, ref.CompetitionID, ref.SeasonID)

	var rows []StatRow
	if err := c.makeRequest(ctx, url, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch player stats for %d/%d: %w", ref.CompetitionID, ref.SeasonID, err)
	}

	c.logger.WithFields(logrus.Fields{
		"competition_id": ref.CompetitionID,
		"season_id":      ref.SeasonID,
		"rows":           len(rows),
	}).Debug("Fetched player season stats")

	return rows, nil
}

// TeamSeasonStats fetches aggregated team statistics for one season.
func (c *Client) TeamSeasonStats(ctx context.Context, ref models.SeasonRef) ([]StatRow, error) {
	url := fmt.Sprintf("%s/competitions/%d/seasons/%d/team-stats", c.baseURL, ref.CompetitionID, ref.SeasonID)

	var rows []StatRow
	if err := c.makeRequest(ctx, url, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch team stats for %d/%d: %w", ref.CompetitionID, ref.SeasonID, err)
	}

	c.logger.WithFields(logrus.Fields{
		"competition_id": ref.CompetitionID,
		"season_id":      ref.SeasonID,
		"rows":           len(rows),
	}).Debug("Fetched team season stats")

	return rows, nil
}

// Matches fetches the played matches of one season.
func (c *Client) Matches(ctx context.Context, ref models.SeasonRef) ([]MatchPayload, error) {
	url := fmt.Sprintf("%s/competitions/%d/seasons/%d/matches", c.baseURL, ref.CompetitionID, ref.SeasonID)

	var matches []MatchPayload
	if err := c.makeRequest(ctx, url, &matches); err != nil {
		return nil, fmt.Errorf("failed to fetch matches for %d/%d: %w", ref.CompetitionID, ref.SeasonID, err)
	}
	return matches, nil
}

// makeRequest handles HTTP requests with rate limiting and retries
func (c *Client) makeRequest(ctx context.Context, url string, target interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	// Track request
	c.trackRequest()

	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		req.SetBasicAuth(c.username, c.password)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "scout-engine/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			if readErr != nil {
				return fmt.Errorf("failed to read response body: %w", readErr)
			}
			if err := json.Unmarshal(body, target); err != nil {
				c.logger.WithFields(logrus.Fields{
					"url":             url,
					"response_length": len(body),
					"error":           err.Error(),
				}).Error("Failed to decode stats API response")
				return fmt.Errorf("failed to decode response: %w", err)
			}
			return nil
		}

		// Handle specific error codes
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("invalid API credentials")
		case http.StatusForbidden:
			return fmt.Errorf("access forbidden - check subscription")
		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limit exceeded")
		default:
			lastErr = fmt.Errorf("API request failed with status %d", resp.StatusCode)
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", c.retryAttempts, lastErr)
}

// trackRequest tracks API usage
func (c *Client) trackRequest() {
	c.tracker.mu.Lock()
	defer c.tracker.mu.Unlock()

	now := time.Now()
	if now.Day() != c.tracker.lastReset.Day() {
		c.tracker.requestCount = 0
		c.tracker.lastReset = now
		c.logger.Info("Reset daily stats API request counter")
	}

	c.tracker.requestCount++
}

// RequestCount reports the requests made since the last daily reset.
func (c *Client) RequestCount() int {
	c.tracker.mu.Lock()
	defer c.tracker.mu.Unlock()
	return c.tracker.requestCount
}
