// Package cache wraps redis for the engine's expensive artifacts: team
// profiles and recruitment reports survive between snapshot rebuilds.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CacheService provides caching for scouting artifacts
type CacheService struct {
	client *redis.Client
	logger *logrus.Logger
	ctx    context.Context
}

// Cache TTL constants
const (
	TeamProfileTTL       = 24 * time.Hour // profiles change with the nightly rebuild
	RecruitmentReportTTL = 12 * time.Hour // reports aggregate several heavy queries
)

// NewCacheService creates a new cache service instance
func NewCacheService(redisClient *redis.Client, logger *logrus.Logger) *CacheService {
	return &CacheService{
		client: redisClient,
		logger: logger,
		ctx:    context.Background(),
	}
}

// buildCacheKey constructs consistent cache keys for scouting artifacts
func (c *CacheService) buildCacheKey(elements ...string) string {
	return fmt.Sprintf("scout-engine:%s", strings.Join(elements, ":"))
}

// Set stores a value in cache with TTL
func (c *CacheService) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	err = c.client.Set(c.ctx, key, data, ttl).Err()
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Error("Failed to set cache value")
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"key": key,
		"ttl": ttl.String(),
	}).Debug("Cached value successfully")

	return nil
}

// Get retrieves a value from cache
func (c *CacheService) Get(key string, dest interface{}) error {
	data, err := c.client.Get(c.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("cache miss")
		}
		c.logger.WithError(err).WithField("key", key).Error("Failed to get cache value")
		return err
	}

	err = json.Unmarshal([]byte(data), dest)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Error("Failed to unmarshal cache value")
		return err
	}

	c.logger.WithField("key", key).Debug("Cache hit")
	return nil
}

// Delete removes a value from cache
func (c *CacheService) Delete(key string) error {
	err := c.client.Del(c.ctx, key).Err()
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Error("Failed to delete cache value")
		return err
	}

	c.logger.WithField("key", key).Debug("Deleted cache value")
	return nil
}

// Team profile caching methods
func (c *CacheService) SetTeamProfile(teamName string, profile interface{}) error {
	key := c.buildCacheKey("profile", teamName)
	return c.Set(key, profile, TeamProfileTTL)
}

func (c *CacheService) GetTeamProfile(teamName string, dest interface{}) error {
	key := c.buildCacheKey("profile", teamName)
	return c.Get(key, dest)
}

// Recruitment report caching methods; the key carries the report parameters
// so differently-shaped reports never collide.
func (c *CacheService) SetRecruitmentReport(teamName string, topN int, minFit float64, report interface{}) error {
	key := c.buildCacheKey("report", teamName, fmt.Sprintf("%d", topN), fmt.Sprintf("%.1f", minFit))
	return c.Set(key, report, RecruitmentReportTTL)
}

func (c *CacheService) GetRecruitmentReport(teamName string, topN int, minFit float64, dest interface{}) error {
	key := c.buildCacheKey("report", teamName, fmt.Sprintf("%d", topN), fmt.Sprintf("%.1f", minFit))
	return c.Get(key, dest)
}

// InvalidateTeam drops every cached artifact for a team, used when the
// snapshot is rebuilt.
func (c *CacheService) InvalidateTeam(teamName string) error {
	if err := c.Delete(c.buildCacheKey("profile", teamName)); err != nil {
		return err
	}
	return c.deleteByPattern(c.buildCacheKey("report", teamName, "*"))
}

// Helper method to delete keys by pattern
func (c *CacheService) deleteByPattern(pattern string) error {
	keys, err := c.client.Keys(c.ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		err = c.client.Del(c.ctx, keys...).Err()
		if err != nil {
			c.logger.WithError(err).WithField("pattern", pattern).Error("Failed to delete keys by pattern")
			return err
		}

		c.logger.WithFields(logrus.Fields{
			"pattern": pattern,
			"count":   len(keys),
		}).Debug("Deleted keys by pattern")
	}

	return nil
}

// Health check method
func (c *CacheService) IsHealthy() bool {
	err := c.client.Ping(c.ctx).Err()
	return err == nil
}

// GetStats reports cache-level statistics for diagnostics
func (c *CacheService) GetStats() (map[string]interface{}, error) {
	info, err := c.client.Info(c.ctx, "memory", "stats").Result()
	if err != nil {
		return nil, err
	}

	stats := make(map[string]interface{})

	pattern := c.buildCacheKey("*")
	keys, err := c.client.Keys(c.ctx, pattern).Result()
	if err == nil {
		stats["scout_engine_keys"] = len(keys)
	}

	stats["redis_info"] = info

	return stats, nil
}
