package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/application"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/domain"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/logging"
)

// LeaderboardProvider abstracts the aggregation path being cached.
// satisfied by application.LeaderboardService.
type LeaderboardProvider interface {
	GetLeaderboard(ctx context.Context, q application.LeaderboardQuery) ([]domain.LeaderboardEntry, error)
}

// CachedLeaderboardService decorates the leaderboard aggregator with a
// redis TTL cache keyed by the full query tuple. the engine itself stays a
// pure function; staleness is bounded by the TTL and by the refresh worker.
// falls back to a direct computation on any cache error.
type CachedLeaderboardService struct {
	provider LeaderboardProvider
	redis    *RedisClient
	ttl      time.Duration
	logger   *logging.Logger
}

// NewCachedLeaderboardService creates a cached leaderboard service.
// if redis is nil, all calls go directly to the provider.
func NewCachedLeaderboardService(
	provider LeaderboardProvider,
	redis *RedisClient,
	ttl time.Duration,
	logger *logging.Logger,
) *CachedLeaderboardService {
	return &CachedLeaderboardService{
		provider: provider,
		redis:    redis,
		ttl:      ttl,
		logger:   logger.WithComponent("leaderboard_cache"),
	}
}

// queryKey builds the cache key from everything that changes the stored
// board. limit and include_metrics are display concerns applied on read,
// so one warmed entry serves every truncation of the same ranking.
func queryKey(q application.LeaderboardQuery) string {
	thread := "all"
	if q.ThreadID != nil {
		thread = fmt.Sprintf("%d", *q.ThreadID)
	}
	return fmt.Sprintf("%d:%d:%s:%d", q.ChatID, q.Days, thread, q.MinMessages)
}

// fullBoardQuery widens a query to the untruncated board with metrics,
// the shape the cache stores.
func fullBoardQuery(q application.LeaderboardQuery) application.LeaderboardQuery {
	q.Limit = 0
	q.IncludeMetrics = true
	return q
}

// shapeEntries applies the caller's limit and metrics preference to a
// cached full board.
func shapeEntries(entries []domain.LeaderboardEntry, q application.LeaderboardQuery) []domain.LeaderboardEntry {
	if q.Limit > 0 && q.Limit < len(entries) {
		entries = entries[:q.Limit]
	}
	if q.IncludeMetrics {
		return entries
	}

	shaped := make([]domain.LeaderboardEntry, len(entries))
	for i, entry := range entries {
		entry.Metrics = nil
		shaped[i] = entry
	}
	return shaped
}

// GetLeaderboard returns the cached leaderboard when fresh, otherwise
// computes and stores it.
func (s *CachedLeaderboardService) GetLeaderboard(ctx context.Context, q application.LeaderboardQuery) ([]domain.LeaderboardEntry, error) {
	if s.redis == nil {
		return s.provider.GetLeaderboard(ctx, q)
	}

	key := queryKey(q)

	payload, err := s.redis.GetLeaderboard(ctx, key)
	if err == nil {
		var entries []domain.LeaderboardEntry
		if err := json.Unmarshal(payload, &entries); err == nil {
			s.logger.Debug("leaderboard cache hit", "key", key)
			return shapeEntries(entries, q), nil
		}
		// corrupted payload, recompute below
		s.logger.Warn("corrupted leaderboard cache entry", "key", key)
	}

	entries, err := s.Refresh(ctx, q)
	if err != nil {
		return nil, err
	}
	return shapeEntries(entries, q), nil
}

// Refresh computes the untruncated board with metrics, bypassing the
// cache, and stores the fresh result. returns the full board; read paths
// shape it per caller. cache write failures are logged, not returned:
// postgres is the source of truth.
func (s *CachedLeaderboardService) Refresh(ctx context.Context, q application.LeaderboardQuery) ([]domain.LeaderboardEntry, error) {
	entries, err := s.provider.GetLeaderboard(ctx, fullBoardQuery(q))
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		payload, err := json.Marshal(entries)
		if err != nil {
			s.logger.Warn("leaderboard serialization failed", "error", err.Error())
			return entries, nil
		}
		if err := s.redis.SetLeaderboard(ctx, queryKey(q), payload, s.ttl); err != nil {
			s.logger.Warn("leaderboard cache write failed",
				"key", queryKey(q),
				"error", err.Error(),
			)
		}
	}

	return entries, nil
}
