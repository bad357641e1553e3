package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/logging"
)

const (
	// rankingKeyPrefix namespaces the per-chat total-score sorted sets.
	rankingKeyPrefix = "tgstats:ranking:"

	// leaderboardKeyPrefix namespaces cached leaderboard payloads.
	leaderboardKeyPrefix = "tgstats:leaderboard:"

	// default connection timeout
	defaultConnectTimeout = 10 * time.Second
)

var (
	ErrRedisNotConnected = errors.New("redis not connected")
	ErrCacheMiss         = errors.New("cache miss")
)

// RedisClient wraps the go-redis client with engagement-specific operations:
// per-chat score rankings (sorted sets) and TTL-bounded leaderboard payloads.
type RedisClient struct {
	client *redis.Client
	logger *logging.Logger
}

// NewRedisClient creates a new Redis client from a connection url.
// returns nil if the url is empty (caching disabled).
func NewRedisClient(url string, logger *logging.Logger) (*RedisClient, error) {
	if url == "" {
		logger.Info("redis disabled: no REDIS_URL configured")
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	opts.DialTimeout = defaultConnectTimeout
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 50
	opts.MinIdleConns = 5

	return &RedisClient{
		client: redis.NewClient(opts),
		logger: logger.WithComponent("redis"),
	}, nil
}

// Connect tests the connection to Redis.
func (r *RedisClient) Connect(ctx context.Context) error {
	if r.client == nil {
		return ErrRedisNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	r.logger.Info("redis connected")
	return nil
}

// Close closes the Redis connection.
func (r *RedisClient) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// RankingKey returns the sorted-set key holding a chat's score ranking.
func RankingKey(chatID string) string {
	return rankingKeyPrefix + chatID
}

// ReplaceChatRanking atomically rebuilds a chat's score ranking from a
// fresh computation. members map user id -> total score.
func (r *RedisClient) ReplaceChatRanking(ctx context.Context, chatID string, members map[string]float64, ttl time.Duration) error {
	if r.client == nil {
		return ErrRedisNotConnected
	}

	key := RankingKey(chatID)

	zs := make([]redis.Z, 0, len(members))
	for member, score := range members {
		zs = append(zs, redis.Z{Score: score, Member: member})
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(zs) > 0 {
		pipe.ZAdd(ctx, key, zs...)
	}
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("failed to replace chat ranking",
			"chat_id", chatID,
			"members", len(zs),
			"error", err.Error(),
		)
		return fmt.Errorf("ranking pipeline failed: %w", err)
	}

	r.logger.Debug("chat ranking replaced",
		"chat_id", chatID,
		"members", len(zs),
	)

	return nil
}

// GetUserRank returns the 0-based rank of a user in a chat's ranking
// (highest score = 0). returns -1 if the user is not ranked.
func (r *RedisClient) GetUserRank(ctx context.Context, chatID, userID string) (int64, error) {
	if r.client == nil {
		return -1, ErrRedisNotConnected
	}

	rank, err := r.client.ZRevRank(ctx, RankingKey(chatID), userID).Result()
	if errors.Is(err, redis.Nil) {
		return -1, nil
	}
	if err != nil {
		return -1, fmt.Errorf("zrevrank failed: %w", err)
	}

	return rank, nil
}

// RankingSize returns the number of ranked users in a chat.
func (r *RedisClient) RankingSize(ctx context.Context, chatID string) (int64, error) {
	if r.client == nil {
		return 0, ErrRedisNotConnected
	}

	count, err := r.client.ZCard(ctx, RankingKey(chatID)).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard failed: %w", err)
	}

	return count, nil
}

// SetLeaderboard stores a serialized leaderboard under its query key.
func (r *RedisClient) SetLeaderboard(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if r.client == nil {
		return ErrRedisNotConnected
	}

	if err := r.client.Set(ctx, leaderboardKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("set leaderboard failed: %w", err)
	}
	return nil
}

// GetLeaderboard fetches a serialized leaderboard by its query key.
// returns ErrCacheMiss when the key is absent or expired.
func (r *RedisClient) GetLeaderboard(ctx context.Context, key string) ([]byte, error) {
	if r.client == nil {
		return nil, ErrRedisNotConnected
	}

	payload, err := r.client.Get(ctx, leaderboardKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get leaderboard failed: %w", err)
	}
	return payload, nil
}

// HealthCheck verifies Redis is responding.
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if r.client == nil {
		return ErrRedisNotConnected
	}

	return r.client.Ping(ctx).Err()
}
