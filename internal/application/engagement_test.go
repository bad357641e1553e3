package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/domain"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/logging"
)

// fakeStatsStore serves canned aggregates keyed by user id.
// records the arguments of the last call so tests can assert on the
// resolved window and thread scope.
type fakeStatsStore struct {
	stats             map[int64]domain.MessageStats
	reactionsGiven    map[int64]int64
	reactionsReceived map[int64]int64
	repliesSent       map[int64]int64
	repliesReceived   map[int64]int64
	identities        map[int64]domain.UserIdentity
	qualifying        []domain.UserID
	activeChats       []domain.ChatID

	statsErr error

	lastSince       time.Time
	lastUntil       time.Time
	lastThread      *domain.ThreadID
	lastMinMessages int

	// every MessageStats since value, in call order
	allSince []time.Time
}

func newFakeStatsStore() *fakeStatsStore {
	return &fakeStatsStore{
		stats:             make(map[int64]domain.MessageStats),
		reactionsGiven:    make(map[int64]int64),
		reactionsReceived: make(map[int64]int64),
		repliesSent:       make(map[int64]int64),
		repliesReceived:   make(map[int64]int64),
		identities:        make(map[int64]domain.UserIdentity),
	}
}

func (f *fakeStatsStore) MessageStats(_ context.Context, _ domain.ChatID, user domain.UserID, thread *domain.ThreadID, since, until time.Time) (domain.MessageStats, error) {
	if f.statsErr != nil {
		return domain.MessageStats{}, f.statsErr
	}
	f.lastSince = since
	f.lastUntil = until
	f.lastThread = thread
	f.allSince = append(f.allSince, since)
	return f.stats[user.Int64()], nil
}

func (f *fakeStatsStore) CountReactionsGiven(_ context.Context, _ domain.ChatID, user domain.UserID, _ *domain.ThreadID, _ time.Time) (int64, error) {
	return f.reactionsGiven[user.Int64()], nil
}

func (f *fakeStatsStore) CountReactionsReceived(_ context.Context, _ domain.ChatID, user domain.UserID, _ *domain.ThreadID, _ time.Time) (int64, error) {
	return f.reactionsReceived[user.Int64()], nil
}

func (f *fakeStatsStore) CountRepliesSent(_ context.Context, _ domain.ChatID, user domain.UserID, _ *domain.ThreadID, _ time.Time) (int64, error) {
	return f.repliesSent[user.Int64()], nil
}

func (f *fakeStatsStore) CountRepliesReceived(_ context.Context, _ domain.ChatID, user domain.UserID, _ *domain.ThreadID, _ time.Time) (int64, error) {
	return f.repliesReceived[user.Int64()], nil
}

func (f *fakeStatsStore) ListQualifyingUsers(_ context.Context, _ domain.ChatID, thread *domain.ThreadID, since time.Time, minMessages int) ([]domain.UserID, error) {
	f.lastSince = since
	f.lastThread = thread
	f.lastMinMessages = minMessages
	return f.qualifying, nil
}

func (f *fakeStatsStore) FindUserIdentity(_ context.Context, user domain.UserID) (domain.UserIdentity, error) {
	identity, ok := f.identities[user.Int64()]
	if !ok {
		return domain.UserIdentity{}, domain.ErrNotFound
	}
	return identity, nil
}

func (f *fakeStatsStore) ListActiveChats(_ context.Context, _ time.Time) ([]domain.ChatID, error) {
	return f.activeChats, nil
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngagementService(store domain.StatsStore) *EngagementService {
	return NewEngagementService(store, DefaultEngagementConfig(), logging.New()).
		WithTimeProvider(func() time.Time { return fixedNow })
}

func TestEngagementService_GetMetrics_AssemblesAllSources(t *testing.T) {
	store := newFakeStatsStore()
	store.stats[7] = domain.MessageStats{
		MessageCount:     42,
		AvgMessageLength: 93.5,
		DaysActive:       12,
		URLCount:         3,
		MediaCount:       8,
	}
	store.reactionsGiven[7] = 15
	store.reactionsReceived[7] = 27
	store.repliesSent[7] = 9
	store.repliesReceived[7] = 4

	service := newTestEngagementService(store)

	metrics, err := service.GetMetrics(context.Background(), EngagementQuery{ChatID: -100, UserID: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := domain.EngagementMetrics{
		MessageCount:      42,
		AvgMessageLength:  93.5,
		DaysActive:        12,
		TotalDays:         30, // default window
		URLCount:          3,
		MediaCount:        8,
		ReactionsGiven:    15,
		ReactionsReceived: 27,
		ReplyCount:        9,
		RepliesReceived:   4,
	}
	if metrics != expected {
		t.Errorf("expected %+v, got %+v", expected, metrics)
	}
}

func TestEngagementService_GetMetrics_DefaultWindowApplied(t *testing.T) {
	store := newFakeStatsStore()
	service := newTestEngagementService(store)

	if _, err := service.GetMetrics(context.Background(), EngagementQuery{ChatID: -100, UserID: 7}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSince := fixedNow.AddDate(0, 0, -30)
	if !store.lastSince.Equal(wantSince) {
		t.Errorf("expected since %v, got %v", wantSince, store.lastSince)
	}
	if !store.lastUntil.Equal(fixedNow) {
		t.Errorf("expected until %v, got %v", fixedNow, store.lastUntil)
	}
}

func TestEngagementService_GetMetrics_CustomWindow(t *testing.T) {
	store := newFakeStatsStore()
	service := newTestEngagementService(store)

	metrics, err := service.GetMetrics(context.Background(), EngagementQuery{ChatID: -100, UserID: 7, Days: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if metrics.TotalDays != 7 {
		t.Errorf("expected total days 7, got %d", metrics.TotalDays)
	}
	wantSince := fixedNow.AddDate(0, 0, -7)
	if !store.lastSince.Equal(wantSince) {
		t.Errorf("expected since %v, got %v", wantSince, store.lastSince)
	}
}

func TestEngagementService_GetMetrics_WindowTooLarge(t *testing.T) {
	service := newTestEngagementService(newFakeStatsStore())

	_, err := service.GetMetrics(context.Background(), EngagementQuery{ChatID: -100, UserID: 7, Days: 400})
	if !errors.Is(err, domain.ErrWindowTooLarge) {
		t.Errorf("expected ErrWindowTooLarge, got %v", err)
	}
}

func TestEngagementService_GetMetrics_MissingIDs(t *testing.T) {
	service := newTestEngagementService(newFakeStatsStore())

	if _, err := service.GetMetrics(context.Background(), EngagementQuery{UserID: 7}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing chat, got %v", err)
	}
	if _, err := service.GetMetrics(context.Background(), EngagementQuery{ChatID: -100}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing user, got %v", err)
	}
}

func TestEngagementService_GetMetrics_InactiveUserZeroFilled(t *testing.T) {
	service := newTestEngagementService(newFakeStatsStore())

	metrics, err := service.GetMetrics(context.Background(), EngagementQuery{ChatID: -100, UserID: 999})
	if err != nil {
		t.Fatalf("inactive user should not error: %v", err)
	}

	if !metrics.IsEmpty() {
		t.Errorf("expected empty metrics, got %+v", metrics)
	}
	if metrics.TotalDays != 30 {
		t.Errorf("window should still be set, got %d", metrics.TotalDays)
	}
}

func TestEngagementService_GetMetrics_StoreErrorPropagates(t *testing.T) {
	store := newFakeStatsStore()
	store.statsErr = errors.New("connection refused")
	service := newTestEngagementService(store)

	_, err := service.GetMetrics(context.Background(), EngagementQuery{ChatID: -100, UserID: 7})
	if err == nil || !errors.Is(err, store.statsErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestEngagementService_GetMetrics_ThreadScopeForwarded(t *testing.T) {
	store := newFakeStatsStore()
	service := newTestEngagementService(store)

	threadID := int64(55)
	if _, err := service.GetMetrics(context.Background(), EngagementQuery{ChatID: -100, UserID: 7, ThreadID: &threadID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.lastThread == nil || store.lastThread.Int64() != 55 {
		t.Errorf("expected thread 55 forwarded, got %v", store.lastThread)
	}
}

func TestEngagementService_GetMetrics_DaysActiveClampedToWindow(t *testing.T) {
	// a trailing window straddles partial first and last UTC days, so the
	// store can report one distinct date more than the window size
	store := newFakeStatsStore()
	store.stats[7] = domain.MessageStats{
		MessageCount: 31,
		DaysActive:   31,
	}

	service := newTestEngagementService(store)

	metrics, err := service.GetMetrics(context.Background(), EngagementQuery{ChatID: -100, UserID: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if metrics.DaysActive != 30 {
		t.Errorf("expected days active clamped to 30, got %d", metrics.DaysActive)
	}
	if metrics.DaysActive > metrics.TotalDays {
		t.Errorf("days active %d exceeds total days %d", metrics.DaysActive, metrics.TotalDays)
	}
}

func TestEngagementService_CalculateScore_MatchesDomainCalculation(t *testing.T) {
	store := newFakeStatsStore()
	store.stats[7] = domain.MessageStats{
		MessageCount:     150,
		AvgMessageLength: 120,
		DaysActive:       25,
	}
	store.reactionsGiven[7] = 60
	store.reactionsReceived[7] = 90
	store.repliesSent[7] = 30
	store.repliesReceived[7] = 20

	service := newTestEngagementService(store)
	query := EngagementQuery{ChatID: -100, UserID: 7}

	metrics, err := service.GetMetrics(context.Background(), query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	score, err := service.CalculateScore(context.Background(), query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := domain.CalculateScore(domain.NewUserID(7), metrics)
	if score != expected {
		t.Errorf("expected %+v, got %+v", expected, score)
	}
}
