package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "reputation:"

// CachedFetcher puts a short-TTL Redis cache in front of another
// ProfileFetcher. Only successful lookups are cached, so a failing
// users service is retried on the next request rather than having its
// default pinned for the TTL.
type CachedFetcher struct {
	Inner       ProfileFetcher
	RedisClient *redis.Client
	Logger      *zap.SugaredLogger
	TTL         time.Duration
}

func NewCachedFetcher(
	inner ProfileFetcher,
	redisClient *redis.Client,
	logger *zap.SugaredLogger,
	ttl time.Duration,
) *CachedFetcher {
	return &CachedFetcher{
		Inner:       inner,
		RedisClient: redisClient,
		Logger:      logger,
		TTL:         ttl,
	}
}

func (cf *CachedFetcher) Fetch(ctx context.Context, clientID string) Result {
	key := cacheKeyPrefix + clientID

	raw, err := cf.RedisClient.Get(ctx, key).Result()
	if err == nil {
		var profile Profile
		if err := json.Unmarshal([]byte(raw), &profile); err == nil {
			return Result{Profile: profile, Found: true}
		}
		cf.Logger.Warnf("Corrupt cached profile for client %s, refetching", clientID)
	} else if !errors.Is(err, redis.Nil) {
		cf.Logger.Warnf("Redis get for client %s failed: %v", clientID, err)
	}

	res := cf.Inner.Fetch(ctx, clientID)
	if !res.Found {
		return res
	}

	encoded, err := json.Marshal(res.Profile)
	if err != nil {
		cf.Logger.Errorf("Failed to marshal profile of client %s: %v", clientID, err)
		return res
	}

	if err := cf.RedisClient.Set(ctx, key, encoded, cf.TTL).Err(); err != nil {
		cf.Logger.Warnf("Redis set for client %s failed: %v", clientID, err)
	}

	return res
}
