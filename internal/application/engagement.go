package application

import (
	"context"
	"fmt"
	"time"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/domain"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/logging"
)

// TimeProvider abstracts time acquisition for testability.
// inject a custom implementation to control the window edge in tests.
type TimeProvider func() time.Time

// RealTime returns the current UTC time.
// use this in production.
func RealTime() time.Time {
	return time.Now().UTC()
}

// EngagementConfig contains defaults for engagement queries.
type EngagementConfig struct {
	// DefaultWindowDays is used when a caller passes days <= 0.
	DefaultWindowDays int

	// DefaultMinMessages is the leaderboard qualification threshold used
	// when a caller passes minMessages <= 0.
	DefaultMinMessages int
}

// DefaultEngagementConfig returns sensible defaults.
func DefaultEngagementConfig() EngagementConfig {
	return EngagementConfig{
		DefaultWindowDays:  30,
		DefaultMinMessages: 5,
	}
}

// EngagementService computes metrics and scores for single users.
// each invocation is a sequence of reads followed by pure arithmetic; the
// service holds no mutable state and is safe for concurrent use.
type EngagementService struct {
	store        domain.StatsStore
	config       EngagementConfig
	timeProvider TimeProvider
	logger       *logging.Logger
}

// NewEngagementService creates a new EngagementService.
func NewEngagementService(store domain.StatsStore, config EngagementConfig, logger *logging.Logger) *EngagementService {
	return &EngagementService{
		store:        store,
		config:       config,
		timeProvider: RealTime,
		logger:       logger.WithComponent("engagement"),
	}
}

// WithTimeProvider sets a custom time provider for testing.
func (s *EngagementService) WithTimeProvider(tp TimeProvider) *EngagementService {
	s.timeProvider = tp
	return s
}

// EngagementQuery identifies one user's activity slice.
type EngagementQuery struct {
	ChatID   int64
	UserID   int64
	Days     int
	ThreadID *int64 // nil = whole chat
}

func (s *EngagementService) resolveQuery(q EngagementQuery) (domain.ChatID, domain.UserID, domain.WindowDays, *domain.ThreadID, error) {
	chat := domain.NewChatID(q.ChatID)
	if chat.IsZero() {
		return domain.ChatID{}, domain.UserID{}, domain.WindowDays{}, nil, fmt.Errorf("%w: chat id is required", domain.ErrInvalidInput)
	}

	user := domain.NewUserID(q.UserID)
	if user.IsZero() {
		return domain.ChatID{}, domain.UserID{}, domain.WindowDays{}, nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	days := q.Days
	if days <= 0 {
		days = s.config.DefaultWindowDays
	}
	window, err := domain.NewWindowDays(days)
	if err != nil {
		return domain.ChatID{}, domain.UserID{}, domain.WindowDays{}, nil, err
	}

	var thread *domain.ThreadID
	if q.ThreadID != nil {
		t := domain.NewThreadID(*q.ThreadID)
		thread = &t
	}

	return chat, user, window, thread, nil
}

// ResolveWindow returns the window days the service will apply for the
// given input, so transports can echo the effective window back to
// clients instead of the raw (possibly zero) request value.
func (s *EngagementService) ResolveWindow(days int) int {
	if days <= 0 {
		return s.config.DefaultWindowDays
	}
	return days
}

// ResolveMinMessages mirrors the leaderboard qualification default.
func (s *EngagementService) ResolveMinMessages(minMessages int) int {
	if minMessages <= 0 {
		return s.config.DefaultMinMessages
	}
	return minMessages
}

// GetMetrics produces the raw engagement metrics for one user.
// never fails for "no data": inactive users yield zero-filled metrics.
func (s *EngagementService) GetMetrics(ctx context.Context, q EngagementQuery) (domain.EngagementMetrics, error) {
	chat, user, window, thread, err := s.resolveQuery(q)
	if err != nil {
		return domain.EngagementMetrics{}, err
	}
	return s.readMetrics(ctx, chat, user, window, thread, s.timeProvider())
}

// readMetrics runs the windowed aggregate queries for one (chat, user,
// thread) triple against the window ending at now. storage errors
// propagate unchanged; retries belong to the storage layer, not here.
func (s *EngagementService) readMetrics(ctx context.Context, chat domain.ChatID, user domain.UserID, window domain.WindowDays, thread *domain.ThreadID, now time.Time) (domain.EngagementMetrics, error) {
	since := now.AddDate(0, 0, -window.Days())

	stats, err := s.store.MessageStats(ctx, chat, user, thread, since, now)
	if err != nil {
		return domain.EngagementMetrics{}, fmt.Errorf("message stats: %w", err)
	}

	reactionsGiven, err := s.store.CountReactionsGiven(ctx, chat, user, thread, since)
	if err != nil {
		return domain.EngagementMetrics{}, fmt.Errorf("reactions given: %w", err)
	}

	reactionsReceived, err := s.store.CountReactionsReceived(ctx, chat, user, thread, since)
	if err != nil {
		return domain.EngagementMetrics{}, fmt.Errorf("reactions received: %w", err)
	}

	repliesSent, err := s.store.CountRepliesSent(ctx, chat, user, thread, since)
	if err != nil {
		return domain.EngagementMetrics{}, fmt.Errorf("replies sent: %w", err)
	}

	repliesReceived, err := s.store.CountRepliesReceived(ctx, chat, user, thread, since)
	if err != nil {
		return domain.EngagementMetrics{}, fmt.Errorf("replies received: %w", err)
	}

	// a trailing window straddles up to window+1 partial UTC dates, so the
	// distinct-day count can come back one over the window size
	daysActive := stats.DaysActive
	if daysActive > window.Days() {
		daysActive = window.Days()
	}

	return domain.EngagementMetrics{
		MessageCount:      stats.MessageCount,
		AvgMessageLength:  stats.AvgMessageLength,
		DaysActive:        daysActive,
		TotalDays:         window.Days(),
		URLCount:          stats.URLCount,
		MediaCount:        stats.MediaCount,
		ReactionsGiven:    reactionsGiven,
		ReactionsReceived: reactionsReceived,
		ReplyCount:        repliesSent,
		RepliesReceived:   repliesReceived,
	}, nil
}

// CalculateScore computes the weighted engagement score for one user.
// pure over the store snapshot: identical inputs against unchanged data
// yield identical results.
func (s *EngagementService) CalculateScore(ctx context.Context, q EngagementQuery) (domain.EngagementScore, error) {
	chat, user, window, thread, err := s.resolveQuery(q)
	if err != nil {
		return domain.EngagementScore{}, err
	}

	metrics, err := s.readMetrics(ctx, chat, user, window, thread, s.timeProvider())
	if err != nil {
		return domain.EngagementScore{}, err
	}

	score := domain.CalculateScore(user, metrics)

	s.logger.Debug("engagement score computed",
		"chat_id", chat.String(),
		"user_id", user.String(),
		"window_days", window.Days(),
		"total_score", score.TotalScore,
	)

	return score, nil
}
