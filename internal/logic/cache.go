package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/vartificial/match-predictor/internal/models"
)

// RedisCache is a PredictionCache backed by Redis. Calls go through a
// circuit breaker so an unavailable Redis costs nothing once tripped.
type RedisCache struct {
	client  RedisClient
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker
	logger  *zap.SugaredLogger
}

func NewRedisCache(client RedisClient, ttl time.Duration, logger *zap.Logger) *RedisCache {
	log := logger.Sugar()
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "prediction-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnw("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &RedisCache{client: client, ttl: ttl, breaker: cb, logger: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]models.Prediction, bool) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		val, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// A miss is not a backend failure.
			return nil, nil
		}
		return val, err
	})
	if err != nil {
		c.logger.Debugw("Prediction cache read failed", "key", key, "error", err)
		cacheLookups.WithLabelValues("error").Inc()
		return nil, false
	}
	raw, _ := res.([]byte)
	if raw == nil {
		cacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	var preds []models.Prediction
	if err := json.Unmarshal(raw, &preds); err != nil {
		c.logger.Warnw("Discarding corrupt cache entry", "key", key, "error", err)
		cacheLookups.WithLabelValues("error").Inc()
		return nil, false
	}
	cacheLookups.WithLabelValues("hit").Inc()
	return preds, true
}

func (c *RedisCache) Set(ctx context.Context, key string, preds []models.Prediction) {
	data, err := json.Marshal(preds)
	if err != nil {
		return
	}
	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, key, data, c.ttl).Err()
	})
	if err != nil {
		c.logger.Debugw("Prediction cache write failed", "key", key, "error", err)
	}
}

// cacheKey identifies a prediction by training run and raw stats.
func cacheKey(runID string, s models.RawMatchStats) string {
	return fmt.Sprintf("predict:%s:%d:%d:%d:%d:%d:%d:%d:%d", runID,
		s.HomeGoals, s.AwayGoals, s.HomeShots, s.AwayShots,
		s.HomeShotsOnTarget, s.AwayShotsOnTarget, s.HomeRedCards, s.AwayRedCards)
}
