package domain

import (
	"context"
	"time"
)

// MessageStats is the grouped aggregate over a user's messages in a window.
// returned as one row by the store so the reader issues a single query for
// the message-derived metrics.
type MessageStats struct {
	MessageCount     int64
	AvgMessageLength float64
	DaysActive       int
	URLCount         int64
	MediaCount       int64
}

// StatsStore is the read-only view of the message/reaction store the
// engagement engine queries. any backing store (postgres, an in-memory
// index for tests) can satisfy it; the scoring layer never sees SQL.
//
// all counts are scoped to the thread when a non-nil thread id is given.
// storage errors propagate unchanged, the engine does not retry.
type StatsStore interface {
	// MessageStats aggregates the user's messages in [since, until].
	MessageStats(ctx context.Context, chat ChatID, user UserID, thread *ThreadID, since, until time.Time) (MessageStats, error)

	// CountReactionsGiven counts active reactions placed by the user on any
	// message in the window, filtered by the reaction timestamp.
	CountReactionsGiven(ctx context.Context, chat ChatID, user UserID, thread *ThreadID, since time.Time) (int64, error)

	// CountReactionsReceived counts active reactions placed by other users
	// on the user's messages, filtered by the reaction timestamp.
	CountReactionsReceived(ctx context.Context, chat ChatID, user UserID, thread *ThreadID, since time.Time) (int64, error)

	// CountRepliesSent counts the user's messages that reply to another
	// message.
	CountRepliesSent(ctx context.Context, chat ChatID, user UserID, thread *ThreadID, since time.Time) (int64, error)

	// CountRepliesReceived counts replies by other users to the user's
	// messages, filtered by the replying message's timestamp. when thread
	// scoped, both the reply and its target must belong to the thread.
	CountRepliesReceived(ctx context.Context, chat ChatID, user UserID, thread *ThreadID, since time.Time) (int64, error)

	// ListQualifyingUsers returns the users with at least minMessages
	// messages in the window, ordered by user id. system messages with no
	// author never qualify.
	ListQualifyingUsers(ctx context.Context, chat ChatID, thread *ThreadID, since time.Time, minMessages int) ([]UserID, error)

	// FindUserIdentity returns display fields for a user.
	// returns ErrNotFound for users the store has never seen.
	FindUserIdentity(ctx context.Context, user UserID) (UserIdentity, error)

	// ListActiveChats returns the chats with any message since the given
	// time. used by the background refresh worker.
	ListActiveChats(ctx context.Context, since time.Time) ([]ChatID, error)
}
