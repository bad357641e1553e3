package domain

import "math"

// weights for combining the four sub-scores into the total. sum to 1.0.
const (
	WeightActivity    = 0.30
	WeightConsistency = 0.25
	WeightQuality     = 0.25
	WeightInteraction = 0.20
)

// reference rates for the activity formula.
const (
	// activityBaseRate is the messages/day rate that earns the full base
	// of 80 points.
	activityBaseRate = 10.0

	// activityBonusRate is the messages/day rate beyond which the bonus
	// starts accruing, maxing out at activityBaseRate.
	activityBonusRate = 5.0
)

// EngagementScore is the scored view of one user's engagement.
// every field is in [0, 100], rounded to 2 decimals.
type EngagementScore struct {
	UserID           UserID
	TotalScore       float64
	ActivityScore    float64
	ConsistencyScore float64
	QualityScore     float64
	InteractionScore float64

	// Percentile is set only when the score was computed as part of a
	// chat-wide ranking. 100 = top performer, one decimal.
	Percentile *float64
}

// CalculateScore converts raw metrics into a weighted engagement score.
// this is a pure function with no side effects - all inputs are explicit.
//
// the four sub-scores each live in [0, 100]:
//   - activity: message volume per day
//   - consistency: fraction of window days with any activity
//   - quality: content value (length, links, media, reactions drawn)
//   - interaction: participation in conversations (replies, reactions given)
//
// every ratio is guarded against a zero denominator by yielding 0 for that
// term, so degenerate inputs (no messages, zero-day window) score 0 rather
// than erroring.
func CalculateScore(user UserID, m EngagementMetrics) EngagementScore {
	activity := activityScore(m)
	consistency := consistencyScore(m)
	quality := qualityScore(m)
	interaction := interactionScore(m)

	total := activity*WeightActivity +
		consistency*WeightConsistency +
		quality*WeightQuality +
		interaction*WeightInteraction

	return EngagementScore{
		UserID:           user,
		TotalScore:       round2(total),
		ActivityScore:    round2(activity),
		ConsistencyScore: round2(consistency),
		QualityScore:     round2(quality),
		InteractionScore: round2(interaction),
	}
}

// activityScore rewards message volume: a linear ramp worth up to 80 points
// at 10 messages/day, plus up to 20 bonus points for rates past 5/day.
func activityScore(m EngagementMetrics) float64 {
	rate := m.MessagesPerDay()

	base := math.Min(rate/activityBaseRate*80, 80)

	var bonus float64
	if rate > activityBonusRate {
		bonus = math.Min((rate-activityBonusRate)/activityBonusRate*20, 20)
	}

	return math.Min(base+bonus, 100)
}

// consistencyScore rewards regularity: the fraction of window days with at
// least one message, scaled to 100.
func consistencyScore(m EngagementMetrics) float64 {
	if m.TotalDays == 0 {
		return 0
	}
	return math.Min(float64(m.DaysActive)/float64(m.TotalDays)*100, 100)
}

// qualityScore sums four capped components (25 points each):
// message length, link density, media density, and reactions drawn per
// message. clamped to 100.
func qualityScore(m EngagementMetrics) float64 {
	var score float64

	// length component: ramp to 15 points at 50 chars, then to 25 at 200.
	switch {
	case m.AvgMessageLength < 50:
		score += m.AvgMessageLength / 50 * 15
	case m.AvgMessageLength <= 200:
		score += 15 + (m.AvgMessageLength-50)/150*10
	default:
		score += 25
	}

	if m.MessageCount > 0 {
		msgs := float64(m.MessageCount)

		// url component: saturates at 0.3 links per message.
		score += math.Min(float64(m.URLCount)/msgs, 0.3) / 0.3 * 25

		// media component: saturates at 0.4 media per message.
		score += math.Min(float64(m.MediaCount)/msgs, 0.4) / 0.4 * 25

		// reactions-received component: saturates at 2 reactions per message.
		score += math.Min(float64(m.ReactionsReceived)/msgs/2*25, 25)
	}

	return math.Min(score, 100)
}

// interactionScore sums two capped components (50 points each):
// reply involvement and reactions given per message. clamped to 100.
func interactionScore(m EngagementMetrics) float64 {
	if m.MessageCount == 0 {
		return 0
	}
	msgs := float64(m.MessageCount)

	// reply component: saturates at 0.5 replies (sent or drawn) per message.
	replyRatio := float64(m.ReplyCount+m.RepliesReceived) / msgs
	score := math.Min(replyRatio, 0.5) / 0.5 * 50

	// reactions-given component: saturates at 1 reaction given per message.
	score += math.Min(float64(m.ReactionsGiven)/msgs, 1.0) * 50

	return math.Min(score, 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
