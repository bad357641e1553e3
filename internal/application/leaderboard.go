package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/domain"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/logging"
)

// LeaderboardQuery selects and bounds a chat-wide ranking.
type LeaderboardQuery struct {
	ChatID      int64
	Days        int
	MinMessages int
	ThreadID    *int64 // nil = whole chat

	// Limit truncates the ranked list. 0 = no truncation. percentiles are
	// always computed against the full qualifying population.
	Limit int

	// IncludeMetrics attaches each entry's raw metrics. the metrics were
	// already read while scoring, so this costs no extra queries.
	IncludeMetrics bool
}

// DurationRecorder abstracts the metrics backend for leaderboard timing.
// keeps the use case decoupled from prometheus.
type DurationRecorder interface {
	RecordLeaderboardComputation(chatID string, candidates int, durationSeconds float64)
}

// LeaderboardService ranks all qualifying users of a chat by total score.
// stateless request/response aggregation, safe for concurrent use.
type LeaderboardService struct {
	engagement *EngagementService
	store      domain.StatsStore
	config     EngagementConfig
	recorder   DurationRecorder
	logger     *logging.Logger
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(engagement *EngagementService, store domain.StatsStore, config EngagementConfig, logger *logging.Logger) *LeaderboardService {
	return &LeaderboardService{
		engagement: engagement,
		store:      store,
		config:     config,
		logger:     logger.WithComponent("leaderboard"),
	}
}

// WithRecorder sets the duration recorder (prometheus).
func (s *LeaderboardService) WithRecorder(r DurationRecorder) *LeaderboardService {
	s.recorder = r
	return s
}

// CalculateChatScores computes ranked scores for every qualifying user.
// an empty candidate set yields an empty slice, not an error.
func (s *LeaderboardService) CalculateChatScores(ctx context.Context, q LeaderboardQuery) ([]domain.EngagementScore, error) {
	scores, _, err := s.calculate(ctx, q)
	return scores, err
}

// GetLeaderboard ranks qualifying users and joins user identity (and
// optionally metrics) for display use.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, q LeaderboardQuery) ([]domain.LeaderboardEntry, error) {
	scores, metricsByUser, err := s.calculate(ctx, q)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(scores))
	for _, score := range scores {
		identity, err := s.store.FindUserIdentity(ctx, score.UserID)
		if errors.Is(err, domain.ErrNotFound) {
			// user posted but was never profiled; show the bare id
			identity = domain.UserIdentity{UserID: score.UserID}
		} else if err != nil {
			return nil, fmt.Errorf("user identity: %w", err)
		}

		entry := domain.LeaderboardEntry{Score: score, User: identity}
		if q.IncludeMetrics {
			if m, ok := metricsByUser[score.UserID]; ok {
				entry.Metrics = &m
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// calculate runs the candidate query, scores each candidate sequentially,
// ranks the full population, then truncates.
func (s *LeaderboardService) calculate(ctx context.Context, q LeaderboardQuery) ([]domain.EngagementScore, map[domain.UserID]domain.EngagementMetrics, error) {
	start := time.Now()

	chat := domain.NewChatID(q.ChatID)
	if chat.IsZero() {
		return nil, nil, fmt.Errorf("%w: chat id is required", domain.ErrInvalidInput)
	}

	days := q.Days
	if days <= 0 {
		days = s.config.DefaultWindowDays
	}
	window, err := domain.NewWindowDays(days)
	if err != nil {
		return nil, nil, err
	}

	minMessages := q.MinMessages
	if minMessages <= 0 {
		minMessages = s.config.DefaultMinMessages
	}

	var thread *domain.ThreadID
	if q.ThreadID != nil {
		t := domain.NewThreadID(*q.ThreadID)
		thread = &t
	}

	now := s.engagement.timeProvider()
	since := now.AddDate(0, 0, -window.Days())

	candidates, err := s.store.ListQualifyingUsers(ctx, chat, thread, since, minMessages)
	if err != nil {
		return nil, nil, fmt.Errorf("listing candidates: %w", err)
	}
	if len(candidates) == 0 {
		return []domain.EngagementScore{}, nil, nil
	}

	scores := make([]domain.EngagementScore, 0, len(candidates))
	metricsByUser := make(map[domain.UserID]domain.EngagementMetrics, len(candidates))

	// every candidate is scored against the same window edge so one
	// computation ranks one snapshot
	for _, user := range candidates {
		metrics, err := s.engagement.readMetrics(ctx, chat, user, window, thread, now)
		if err != nil {
			return nil, nil, fmt.Errorf("scoring user %s: %w", user.String(), err)
		}
		metricsByUser[user] = metrics
		scores = append(scores, domain.CalculateScore(user, metrics))
	}

	ranked := domain.RankScores(scores)
	ranked = domain.TruncateRanked(ranked, q.Limit)

	duration := time.Since(start)
	if s.recorder != nil {
		s.recorder.RecordLeaderboardComputation(chat.String(), len(candidates), duration.Seconds())
	}

	s.logger.Info("leaderboard computed",
		"chat_id", chat.String(),
		"window_days", window.Days(),
		"min_messages", minMessages,
		"candidates", len(candidates),
		"returned", len(ranked),
		"thread_scoped", thread != nil,
		"duration_ms", duration.Milliseconds(),
	)

	return ranked, metricsByUser, nil
}
