package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/domain"
)

// StatsRepository implements domain.StatsStore using Postgres.
// every method is a single aggregate query; thread scoping is handled with
// a nullable parameter so each operation keeps one SQL text.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// threadArg converts an optional thread id into a nullable query argument.
func threadArg(thread *domain.ThreadID) any {
	if thread == nil {
		return nil
	}
	return thread.Int64()
}

// MessageStats aggregates the user's messages in [since, until].
// active days are counted on UTC calendar dates.
func (r *StatsRepository) MessageStats(ctx context.Context, chat domain.ChatID, user domain.UserID, thread *domain.ThreadID, since, until time.Time) (domain.MessageStats, error) {
	const query = `
		SELECT COUNT(*),
		       COALESCE(AVG(text_length), 0)::float8,
		       COUNT(DISTINCT (sent_at AT TIME ZONE 'UTC')::date),
		       COALESCE(SUM(url_count), 0),
		       COUNT(*) FILTER (WHERE media_type IS NOT NULL)
		FROM tgstats.messages
		WHERE chat_id = $1
		  AND user_id = $2
		  AND sent_at >= $3 AND sent_at <= $4
		  AND ($5::bigint IS NULL OR thread_id = $5)
	`

	var stats domain.MessageStats
	err := r.pool.QueryRow(ctx, query, chat.Int64(), user.Int64(), since, until, threadArg(thread)).Scan(
		&stats.MessageCount,
		&stats.AvgMessageLength,
		&stats.DaysActive,
		&stats.URLCount,
		&stats.MediaCount,
	)
	if err != nil {
		return domain.MessageStats{}, fmt.Errorf("aggregating messages: %w", err)
	}
	return stats, nil
}

// CountReactionsGiven counts active reactions the user placed on any
// message in the chat. joined through the message so thread scoping can
// use the target's thread. self-reactions count: the user is the actor.
func (r *StatsRepository) CountReactionsGiven(ctx context.Context, chat domain.ChatID, user domain.UserID, thread *domain.ThreadID, since time.Time) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM tgstats.reactions r
		JOIN tgstats.messages m
		  ON m.chat_id = r.chat_id AND m.message_id = r.message_id
		WHERE r.chat_id = $1
		  AND r.user_id = $2
		  AND r.removed_at IS NULL
		  AND r.reacted_at >= $3
		  AND ($4::bigint IS NULL OR m.thread_id = $4)
	`

	return r.countRow(ctx, query, chat.Int64(), user.Int64(), since, threadArg(thread))
}

// CountReactionsReceived counts active reactions others placed on the
// user's messages. the reactor must differ from the message author, so a
// user can never farm received reactions from their own messages.
func (r *StatsRepository) CountReactionsReceived(ctx context.Context, chat domain.ChatID, user domain.UserID, thread *domain.ThreadID, since time.Time) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM tgstats.reactions r
		JOIN tgstats.messages m
		  ON m.chat_id = r.chat_id AND m.message_id = r.message_id
		WHERE r.chat_id = $1
		  AND m.user_id = $2
		  AND r.user_id <> $2
		  AND r.removed_at IS NULL
		  AND r.reacted_at >= $3
		  AND ($4::bigint IS NULL OR m.thread_id = $4)
	`

	return r.countRow(ctx, query, chat.Int64(), user.Int64(), since, threadArg(thread))
}

// CountRepliesSent counts the user's messages carrying a reply target.
// when thread scoped, the reply is only valid if its target also lives in
// the same thread.
func (r *StatsRepository) CountRepliesSent(ctx context.Context, chat domain.ChatID, user domain.UserID, thread *domain.ThreadID, since time.Time) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM tgstats.messages m
		WHERE m.chat_id = $1
		  AND m.user_id = $2
		  AND m.reply_to_message_id IS NOT NULL
		  AND m.sent_at >= $3
		  AND ($4::bigint IS NULL OR (
		        m.thread_id = $4
		        AND EXISTS (
		          SELECT 1 FROM tgstats.messages t
		          WHERE t.chat_id = m.chat_id
		            AND t.message_id = m.reply_to_message_id
		            AND t.thread_id = $4
		        )))
	`

	return r.countRow(ctx, query, chat.Int64(), user.Int64(), since, threadArg(thread))
}

// CountRepliesReceived counts replies by others to the user's messages.
// windowed on the replying message's timestamp; thread scoping requires
// both the reply and its target to belong to the requested thread.
// system replies (no author) count, the author's self-replies never do.
func (r *StatsRepository) CountRepliesReceived(ctx context.Context, chat domain.ChatID, user domain.UserID, thread *domain.ThreadID, since time.Time) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM tgstats.messages reply
		JOIN tgstats.messages target
		  ON target.chat_id = reply.chat_id
		 AND target.message_id = reply.reply_to_message_id
		WHERE reply.chat_id = $1
		  AND target.user_id = $2
		  AND (reply.user_id IS NULL OR reply.user_id <> $2)
		  AND reply.sent_at >= $3
		  AND ($4::bigint IS NULL OR (target.thread_id = $4 AND reply.thread_id = $4))
	`

	return r.countRow(ctx, query, chat.Int64(), user.Int64(), since, threadArg(thread))
}

// ListQualifyingUsers returns users with at least minMessages messages in
// the window, ordered by user id. authorless system messages never produce
// a candidate.
func (r *StatsRepository) ListQualifyingUsers(ctx context.Context, chat domain.ChatID, thread *domain.ThreadID, since time.Time, minMessages int) ([]domain.UserID, error) {
	const query = `
		SELECT user_id
		FROM tgstats.messages
		WHERE chat_id = $1
		  AND user_id IS NOT NULL
		  AND sent_at >= $2
		  AND ($3::bigint IS NULL OR thread_id = $3)
		GROUP BY user_id
		HAVING COUNT(*) >= $4
		ORDER BY user_id
	`

	rows, err := r.pool.Query(ctx, query, chat.Int64(), since, threadArg(thread), minMessages)
	if err != nil {
		return nil, fmt.Errorf("listing qualifying users: %w", err)
	}
	defer rows.Close()

	var users []domain.UserID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user id: %w", err)
		}
		users = append(users, domain.NewUserID(id))
	}

	return users, rows.Err()
}

// FindUserIdentity returns display fields for a user.
func (r *StatsRepository) FindUserIdentity(ctx context.Context, user domain.UserID) (domain.UserIdentity, error) {
	const query = `
		SELECT COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(last_name, '')
		FROM tgstats.users
		WHERE user_id = $1
	`

	identity := domain.UserIdentity{UserID: user}
	err := r.pool.QueryRow(ctx, query, user.Int64()).Scan(
		&identity.Username,
		&identity.FirstName,
		&identity.LastName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserIdentity{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UserIdentity{}, fmt.Errorf("scanning user identity: %w", err)
	}
	return identity, nil
}

// ListActiveChats returns chats with any message since the given time.
func (r *StatsRepository) ListActiveChats(ctx context.Context, since time.Time) ([]domain.ChatID, error) {
	const query = `
		SELECT DISTINCT chat_id
		FROM tgstats.messages
		WHERE sent_at >= $1
		ORDER BY chat_id
	`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("listing active chats: %w", err)
	}
	defer rows.Close()

	var chats []domain.ChatID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning chat id: %w", err)
		}
		chats = append(chats, domain.NewChatID(id))
	}

	return chats, rows.Err()
}

func (r *StatsRepository) countRow(ctx context.Context, query string, args ...any) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting rows: %w", err)
	}
	return count, nil
}
