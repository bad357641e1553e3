package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/domain"
)

// Message is one stored chat message. a nil UserID marks a system message
// with no human author.
type Message struct {
	ChatID           int64
	MessageID        int64
	UserID           *int64
	ThreadID         *int64
	ReplyToMessageID *int64
	TextLength       int
	URLCount         int
	HasMedia         bool
	SentAt           time.Time
}

// Reaction is one reaction event. a non-nil RemovedAt marks it retracted;
// retracted reactions never count anywhere.
type Reaction struct {
	ChatID    int64
	MessageID int64
	UserID    int64
	Emoji     string
	ReactedAt time.Time
	RemovedAt *time.Time
}

// StatsIndex is an in-memory domain.StatsStore over plain message and
// reaction rows. it mirrors the relational semantics of the postgres
// store row for row, so the whole scoring pipeline can run without a
// database: in tests, and as a backing store for ephemeral deployments.
type StatsIndex struct {
	mu        sync.RWMutex
	messages  []Message
	reactions []Reaction
	users     map[int64]domain.UserIdentity
}

// NewStatsIndex creates an empty index.
func NewStatsIndex() *StatsIndex {
	return &StatsIndex{users: make(map[int64]domain.UserIdentity)}
}

// AddMessage records a message row.
func (s *StatsIndex) AddMessage(m Message) {
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
}

// AddReaction records a reaction row.
func (s *StatsIndex) AddReaction(r Reaction) {
	s.mu.Lock()
	s.reactions = append(s.reactions, r)
	s.mu.Unlock()
}

// AddUser registers display fields for a user.
func (s *StatsIndex) AddUser(identity domain.UserIdentity) {
	s.mu.Lock()
	s.users[identity.UserID.Int64()] = identity
	s.mu.Unlock()
}

func inThread(threadID *int64, thread *domain.ThreadID) bool {
	if thread == nil {
		return true
	}
	return threadID != nil && *threadID == thread.Int64()
}

func authoredBy(m Message, user int64) bool {
	return m.UserID != nil && *m.UserID == user
}

// findMessage resolves a (chat, message) reference, the same join the
// relational store does through the messages primary key.
func (s *StatsIndex) findMessage(chatID, messageID int64) (Message, bool) {
	for _, m := range s.messages {
		if m.ChatID == chatID && m.MessageID == messageID {
			return m, true
		}
	}
	return Message{}, false
}

// MessageStats aggregates the user's messages in [since, until].
// active days are counted on distinct UTC calendar dates.
func (s *StatsIndex) MessageStats(_ context.Context, chat domain.ChatID, user domain.UserID, thread *domain.ThreadID, since, until time.Time) (domain.MessageStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats domain.MessageStats
	var lengthSum int64
	days := make(map[string]struct{})

	for _, m := range s.messages {
		if m.ChatID != chat.Int64() || !authoredBy(m, user.Int64()) {
			continue
		}
		if m.SentAt.Before(since) || m.SentAt.After(until) {
			continue
		}
		if !inThread(m.ThreadID, thread) {
			continue
		}

		stats.MessageCount++
		lengthSum += int64(m.TextLength)
		stats.URLCount += int64(m.URLCount)
		if m.HasMedia {
			stats.MediaCount++
		}
		days[m.SentAt.UTC().Format("2006-01-02")] = struct{}{}
	}

	stats.DaysActive = len(days)
	if stats.MessageCount > 0 {
		stats.AvgMessageLength = float64(lengthSum) / float64(stats.MessageCount)
	}
	return stats, nil
}

// CountReactionsGiven counts active reactions the user placed on any
// message in the chat, self-reactions included: the user is the actor.
func (s *StatsIndex) CountReactionsGiven(_ context.Context, chat domain.ChatID, user domain.UserID, thread *domain.ThreadID, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, r := range s.reactions {
		if r.ChatID != chat.Int64() || r.UserID != user.Int64() {
			continue
		}
		if r.RemovedAt != nil || r.ReactedAt.Before(since) {
			continue
		}
		target, ok := s.findMessage(r.ChatID, r.MessageID)
		if !ok || !inThread(target.ThreadID, thread) {
			continue
		}
		count++
	}
	return count, nil
}

// CountReactionsReceived counts active reactions others placed on the
// user's messages. the reactor must differ from the message author.
func (s *StatsIndex) CountReactionsReceived(_ context.Context, chat domain.ChatID, user domain.UserID, thread *domain.ThreadID, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, r := range s.reactions {
		if r.ChatID != chat.Int64() || r.UserID == user.Int64() {
			continue
		}
		if r.RemovedAt != nil || r.ReactedAt.Before(since) {
			continue
		}
		target, ok := s.findMessage(r.ChatID, r.MessageID)
		if !ok || !authoredBy(target, user.Int64()) {
			continue
		}
		if !inThread(target.ThreadID, thread) {
			continue
		}
		count++
	}
	return count, nil
}

// CountRepliesSent counts the user's messages carrying a reply target.
// when thread scoped, the target must live in the same thread too.
func (s *StatsIndex) CountRepliesSent(_ context.Context, chat domain.ChatID, user domain.UserID, thread *domain.ThreadID, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, m := range s.messages {
		if m.ChatID != chat.Int64() || !authoredBy(m, user.Int64()) {
			continue
		}
		if m.ReplyToMessageID == nil || m.SentAt.Before(since) {
			continue
		}
		if thread != nil {
			if !inThread(m.ThreadID, thread) {
				continue
			}
			target, ok := s.findMessage(m.ChatID, *m.ReplyToMessageID)
			if !ok || !inThread(target.ThreadID, thread) {
				continue
			}
		}
		count++
	}
	return count, nil
}

// CountRepliesReceived counts replies by others to the user's messages,
// windowed on the replying message's timestamp. system replies with no
// author count; the author's self-replies never do. when thread scoped,
// both the reply and its target must belong to the thread.
func (s *StatsIndex) CountRepliesReceived(_ context.Context, chat domain.ChatID, user domain.UserID, thread *domain.ThreadID, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, reply := range s.messages {
		if reply.ChatID != chat.Int64() || reply.ReplyToMessageID == nil {
			continue
		}
		if reply.UserID != nil && *reply.UserID == user.Int64() {
			continue
		}
		if reply.SentAt.Before(since) {
			continue
		}
		target, ok := s.findMessage(reply.ChatID, *reply.ReplyToMessageID)
		if !ok || !authoredBy(target, user.Int64()) {
			continue
		}
		if thread != nil && (!inThread(reply.ThreadID, thread) || !inThread(target.ThreadID, thread)) {
			continue
		}
		count++
	}
	return count, nil
}

// ListQualifyingUsers returns users with at least minMessages messages in
// the window, ordered by user id. authorless system messages never
// produce a candidate.
func (s *StatsIndex) ListQualifyingUsers(_ context.Context, chat domain.ChatID, thread *domain.ThreadID, since time.Time, minMessages int) ([]domain.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int)
	for _, m := range s.messages {
		if m.ChatID != chat.Int64() || m.UserID == nil {
			continue
		}
		if m.SentAt.Before(since) || !inThread(m.ThreadID, thread) {
			continue
		}
		counts[*m.UserID]++
	}

	var users []domain.UserID
	for id, n := range counts {
		if n >= minMessages {
			users = append(users, domain.NewUserID(id))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Int64() < users[j].Int64() })
	return users, nil
}

// FindUserIdentity returns display fields for a registered user.
func (s *StatsIndex) FindUserIdentity(_ context.Context, user domain.UserID) (domain.UserIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.users[user.Int64()]
	if !ok {
		return domain.UserIdentity{}, domain.ErrNotFound
	}
	return identity, nil
}

// ListActiveChats returns chats with any message since the given time.
func (s *StatsIndex) ListActiveChats(_ context.Context, since time.Time) ([]domain.ChatID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]struct{})
	for _, m := range s.messages {
		if !m.SentAt.Before(since) {
			seen[m.ChatID] = struct{}{}
		}
	}

	var chats []domain.ChatID
	for id := range seen {
		chats = append(chats, domain.NewChatID(id))
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].Int64() < chats[j].Int64() })
	return chats, nil
}
