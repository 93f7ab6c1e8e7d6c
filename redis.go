package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Key spaces never prefix one another, so no user id maps into another user's keys.
const (
	forecastKeyPrefix         = "forecast:total:"
	categoryForecastKeyPrefix = "forecast:category:"
	generationKeyPrefix       = "forecast:generation:"
)

var errStaleForecast = errors.New("forecast computed before the last invalidation")

// newRedisClient connects to redisURL, accepting either a redis:// URL or a bare host:port.
func newRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if !strings.Contains(redisURL, "://") {
		redisURL = "redis://" + redisURL
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// forecastCache stores forecast responses as JSON. A nil *forecastCache is a valid,
// always-missing cache.
type forecastCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func newForecastCache(client *redis.Client, ttl time.Duration, log *logrus.Logger) *forecastCache {
	if client == nil {
		return nil
	}
	return &forecastCache{client: client, ttl: ttl, log: log}
}

// get decodes the cached value at key into dst and reports whether it was found.
func (c *forecastCache) get(ctx context.Context, key string, dst any) bool {
	if c == nil {
		return false
	}

	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).WithField(FieldCacheKey, key).Warn("cache read failed")
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), dst); err != nil {
		c.log.WithError(err).WithField(FieldCacheKey, key).Warn("discarding undecodable cache entry")
		return false
	}
	return true
}

// generation returns the invalidation counter of userID. Read it before loading the
// data a forecast is computed from and hand it back to set.
func (c *forecastCache) generation(ctx context.Context, userID string) int64 {
	if c == nil {
		return 0
	}

	gen, err := c.client.Get(ctx, generationKey(userID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.WithError(err).WithField(FieldUserID, userID).Warn("cache generation read failed")
	}
	return gen
}

// set stores v at key unless userID was invalidated after gen was read.
func (c *forecastCache) set(ctx context.Context, userID string, gen int64, key string, v any) {
	if c == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		c.log.WithError(err).WithField(FieldCacheKey, key).Warn("cache encode failed")
		return
	}

	genKey := generationKey(userID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleForecast
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetEx(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleForecast), errors.Is(err, redis.TxFailedErr):
		c.log.WithField(FieldCacheKey, key).Debug("skipping stale forecast")
	default:
		c.log.WithError(err).WithField(FieldCacheKey, key).Warn("cache write failed")
	}
}

// invalidate drops every cached forecast of userID and bumps its generation so
// forecasts computed from older data are not stored afterwards.
func (c *forecastCache) invalidate(ctx context.Context, userID string) {
	if c == nil {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(userID))
		pipe.Del(ctx, forecastKey(userID), categoryForecastKey(userID))
		return nil
	})
	if err != nil {
		c.log.WithError(err).WithField(FieldUserID, userID).Warn("cache invalidation failed")
	}
}

func forecastKey(userID string) string {
	return forecastKeyPrefix + userID
}

func categoryForecastKey(userID string) string {
	return categoryForecastKeyPrefix + userID
}

func generationKey(userID string) string {
	return generationKeyPrefix + userID
}
