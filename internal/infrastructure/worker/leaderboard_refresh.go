package worker

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/application"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/domain"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/cache"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/logging"
)

// Refresher recomputes a chat leaderboard and repopulates its cache entry.
type Refresher interface {
	Refresh(ctx context.Context, q application.LeaderboardQuery) ([]domain.LeaderboardEntry, error)
}

// CycleRecorder abstracts prometheus metrics for the refresh worker.
// keeps worker decoupled from metrics package.
type CycleRecorder interface {
	RecordRefreshCycle(outcome string)
}

// LeaderboardRefreshConfig holds configuration for the refresh worker.
type LeaderboardRefreshConfig struct {
	// Interval is the time between refresh cycles.
	Interval time.Duration

	// WindowDays is the scoring window refreshed for each chat.
	WindowDays int

	// MinMessages is the qualification floor used for refreshed boards.
	MinMessages int

	// RankingTTL bounds how long a stale sorted set survives after the
	// worker stops refreshing a chat.
	RankingTTL time.Duration
}

// DefaultLeaderboardRefreshConfig returns sensible defaults for the worker.
func DefaultLeaderboardRefreshConfig() LeaderboardRefreshConfig {
	return LeaderboardRefreshConfig{
		Interval:    15 * time.Minute,
		WindowDays:  30,
		MinMessages: 5,
		RankingTTL:  time.Hour,
	}
}

// LeaderboardRefreshWorker periodically recomputes leaderboards for every
// chat with recent activity so interactive reads hit a warm cache.
type LeaderboardRefreshWorker struct {
	store     domain.StatsStore
	refresher Refresher
	redis     *cache.RedisClient
	config    LeaderboardRefreshConfig
	logger    *logging.Logger
	recorder  CycleRecorder

	wg       sync.WaitGroup
	cancel   context.CancelFunc
	stopOnce sync.Once
	stopped  chan struct{}
}

// NewLeaderboardRefreshWorker creates a new refresh worker.
func NewLeaderboardRefreshWorker(
	store domain.StatsStore,
	refresher Refresher,
	redis *cache.RedisClient,
	config LeaderboardRefreshConfig,
	logger *logging.Logger,
) *LeaderboardRefreshWorker {
	return &LeaderboardRefreshWorker{
		store:     store,
		refresher: refresher,
		redis:     redis,
		config:    config,
		logger:    logger.WithComponent("leaderboard_refresh_worker"),
		stopped:   make(chan struct{}),
	}
}

// WithRecorder sets the metrics recorder for observability.
func (w *LeaderboardRefreshWorker) WithRecorder(r CycleRecorder) *LeaderboardRefreshWorker {
	w.recorder = r
	return w
}

// Start begins the periodic refresh loop.
func (w *LeaderboardRefreshWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.logger.Info("leaderboard refresh worker starting",
		"interval", w.config.Interval.String(),
		"window_days", w.config.WindowDays,
		"min_messages", w.config.MinMessages,
	)

	w.wg.Add(1)
	go w.run(ctx)
}

// Stop gracefully shuts down the worker, waiting for an in-flight cycle.
func (w *LeaderboardRefreshWorker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("leaderboard refresh worker stopping...")

		if w.cancel != nil {
			w.cancel()
		}
		w.wg.Wait()

		close(w.stopped)
		w.logger.Info("leaderboard refresh worker stopped")
	})
}

// Stopped returns a channel that closes when the worker has fully stopped.
func (w *LeaderboardRefreshWorker) Stopped() <-chan struct{} {
	return w.stopped
}

// run is the main worker loop.
func (w *LeaderboardRefreshWorker) run(ctx context.Context) {
	defer w.wg.Done()

	// warm the cache immediately instead of waiting a full interval
	w.runCycle(ctx)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runCycle(ctx)
		case <-ctx.Done():
			w.logger.Debug("worker exiting on context cancel")
			return
		}
	}
}

// runCycle refreshes the leaderboard for every active chat.
func (w *LeaderboardRefreshWorker) runCycle(ctx context.Context) {
	runID := uuid.New().String()
	start := time.Now()
	since := start.AddDate(0, 0, -w.config.WindowDays)

	chats, err := w.store.ListActiveChats(ctx, since)
	if err != nil {
		w.logger.Error("active chat listing failed",
			"run_id", runID,
			"error", err.Error(),
		)
		w.recordCycle("error")
		return
	}

	refreshed := 0
	failed := 0
	for _, chat := range chats {
		if ctx.Err() != nil {
			return
		}

		if err := w.refreshChat(ctx, chat); err != nil {
			failed++
			w.logger.Error("chat refresh failed",
				"run_id", runID,
				"chat_id", chat.Int64(),
				"error", err.Error(),
			)
			continue
		}
		refreshed++
	}

	outcome := "success"
	if failed > 0 {
		outcome = "partial"
	}
	w.recordCycle(outcome)

	w.logger.Info("refresh cycle complete",
		"run_id", runID,
		"chats_refreshed", refreshed,
		"chats_failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// refreshChat recomputes one chat board and mirrors it into the ranking ZSET.
func (w *LeaderboardRefreshWorker) refreshChat(ctx context.Context, chat domain.ChatID) error {
	q := application.LeaderboardQuery{
		ChatID:      chat.Int64(),
		Days:        w.config.WindowDays,
		MinMessages: w.config.MinMessages,
	}

	entries, err := w.refresher.Refresh(ctx, q)
	if err != nil {
		return err
	}

	if w.redis == nil || len(entries) == 0 {
		return nil
	}

	members := make(map[string]float64, len(entries))
	for _, entry := range entries {
		members[strconv.FormatInt(entry.Score.UserID.Int64(), 10)] = entry.Score.TotalScore
	}

	// ranking mirror is best effort, the cached payload is already fresh
	if err := w.redis.ReplaceChatRanking(ctx, chat.String(), members, w.config.RankingTTL); err != nil {
		w.logger.Warn("ranking mirror update failed",
			"chat_id", chat.Int64(),
			"error", err.Error(),
		)
	}

	return nil
}

func (w *LeaderboardRefreshWorker) recordCycle(outcome string) {
	if w.recorder != nil {
		w.recorder.RecordRefreshCycle(outcome)
	}
}
