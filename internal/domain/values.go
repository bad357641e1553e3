package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// ChatID identifies a Telegram group chat.
// wrapping int64 to enforce type safety and prevent mixing with other ids.
type ChatID struct {
	value int64
}

// NewChatID creates a ChatID from a raw Telegram chat identifier.
func NewChatID(v int64) ChatID {
	return ChatID{value: v}
}

// ParseChatID parses a string into a ChatID.
func ParseChatID(s string) (ChatID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return ChatID{}, fmt.Errorf("invalid chat id: %w", err)
	}
	return ChatID{value: v}, nil
}

// Int64 returns the raw Telegram chat identifier.
func (id ChatID) Int64() int64 {
	return id.value
}

// String returns the decimal representation of the ChatID.
func (id ChatID) String() string {
	return strconv.FormatInt(id.value, 10)
}

// IsZero returns true if the ChatID is not set.
func (id ChatID) IsZero() bool {
	return id.value == 0
}

// UserID identifies a Telegram user.
type UserID struct {
	value int64
}

// NewUserID creates a UserID from a raw Telegram user identifier.
func NewUserID(v int64) UserID {
	return UserID{value: v}
}

// ParseUserID parses a string into a UserID.
func ParseUserID(s string) (UserID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return UserID{}, fmt.Errorf("invalid user id: %w", err)
	}
	return UserID{value: v}, nil
}

// Int64 returns the raw Telegram user identifier.
func (id UserID) Int64() int64 {
	return id.value
}

// String returns the decimal representation of the UserID.
func (id UserID) String() string {
	return strconv.FormatInt(id.value, 10)
}

// IsZero returns true if the UserID is not set.
func (id UserID) IsZero() bool {
	return id.value == 0
}

// MarshalJSON encodes the UserID as a bare number.
// needed for cached leaderboard payloads.
func (id UserID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(id.value, 10)), nil
}

// UnmarshalJSON decodes a bare number into the UserID.
func (id *UserID) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	id.value = v
	return nil
}

// ThreadID identifies a topic inside a forum-style chat.
// always passed as *ThreadID in queries: nil means the whole chat.
type ThreadID struct {
	value int64
}

// NewThreadID creates a ThreadID from a raw Telegram topic identifier.
func NewThreadID(v int64) ThreadID {
	return ThreadID{value: v}
}

// ParseThreadID parses a string into a ThreadID.
func ParseThreadID(s string) (ThreadID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return ThreadID{}, fmt.Errorf("invalid thread id: %w", err)
	}
	return ThreadID{value: v}, nil
}

// Int64 returns the raw Telegram topic identifier.
func (id ThreadID) Int64() int64 {
	return id.value
}

// String returns the decimal representation of the ThreadID.
func (id ThreadID) String() string {
	return strconv.FormatInt(id.value, 10)
}

// WindowDays is the trailing lookback period for all metric queries.
// must be positive, capped to keep aggregate queries bounded.
type WindowDays struct {
	value int
}

// MaxWindowDays caps the lookback period.
const MaxWindowDays = 365

var (
	ErrWindowNotPositive = errors.New("window must be at least 1 day")
	ErrWindowTooLarge    = errors.New("window must be at most 365 days")
)

// NewWindowDays creates a WindowDays, validating the range.
func NewWindowDays(v int) (WindowDays, error) {
	if v < 1 {
		return WindowDays{}, ErrWindowNotPositive
	}
	if v > MaxWindowDays {
		return WindowDays{}, ErrWindowTooLarge
	}
	return WindowDays{value: v}, nil
}

// Days returns the window length in days.
func (w WindowDays) Days() int {
	return w.value
}

// UserIdentity carries display fields for leaderboard joins.
// read-only projection, never persisted by this engine.
type UserIdentity struct {
	UserID    UserID
	Username  string
	FirstName string
	LastName  string
}

// DisplayName returns the best available human-readable name.
func (u UserIdentity) DisplayName() string {
	switch {
	case u.Username != "":
		return "@" + u.Username
	case u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.UserID.String()
	}
}
