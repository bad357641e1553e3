package domain

// EngagementMetrics is the raw activity profile of one user in one chat
// (optionally one thread) over a trailing window of days.
// recomputed fresh per request, never persisted.
type EngagementMetrics struct {
	// MessageCount is the number of messages the user sent in the window.
	MessageCount int64

	// AvgMessageLength is the mean character length of text/caption content.
	AvgMessageLength float64

	// DaysActive is the count of distinct UTC calendar days with at least
	// one message, never exceeding TotalDays.
	DaysActive int

	// TotalDays is the window size, the denominator for rate metrics.
	TotalDays int

	// URLCount is the sum of URL occurrences across the user's messages.
	URLCount int64

	// MediaCount is the number of messages carrying a media attachment.
	MediaCount int64

	// ReactionsGiven counts active (not removed) reactions the user placed
	// on any message in the window, own messages included.
	ReactionsGiven int64

	// ReactionsReceived counts active reactions placed by other users on
	// the user's messages. self-reactions never count here.
	ReactionsReceived int64

	// ReplyCount is the number of messages the user sent that reply to
	// another message.
	ReplyCount int64

	// RepliesReceived counts replies by other users to the user's messages.
	// self-replies never count here.
	RepliesReceived int64
}

// IsEmpty returns true if the user produced no activity in the window.
// zero-filled metrics are valid and expected for inactive users.
func (m EngagementMetrics) IsEmpty() bool {
	return m.MessageCount == 0 &&
		m.ReactionsGiven == 0 &&
		m.ReactionsReceived == 0 &&
		m.RepliesReceived == 0
}

// MessagesPerDay returns the message rate over the window.
func (m EngagementMetrics) MessagesPerDay() float64 {
	if m.TotalDays == 0 {
		return 0
	}
	return float64(m.MessageCount) / float64(m.TotalDays)
}
