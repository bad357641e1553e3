package domain

import "sort"

// LeaderboardEntry is one ranked row of a chat leaderboard, ready for
// display joins.
type LeaderboardEntry struct {
	Score EngagementScore
	User  UserIdentity

	// Metrics is attached only when the caller asked for it.
	Metrics *EngagementMetrics
}

// RankScores sorts scores descending by total and assigns percentiles over
// the full population. ties are broken by user id ascending so rankings are
// reproducible across runs.
//
// percentile = (N - rank_index) / N * 100, one decimal: the top scorer of N
// candidates gets 100.0 and values are non-increasing down the list.
// the input slice is sorted in place and returned.
func RankScores(scores []EngagementScore) []EngagementScore {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].TotalScore != scores[j].TotalScore {
			return scores[i].TotalScore > scores[j].TotalScore
		}
		return scores[i].UserID.Int64() < scores[j].UserID.Int64()
	})

	n := len(scores)
	for i := range scores {
		p := round1(float64(n-i) / float64(n) * 100)
		scores[i].Percentile = &p
	}

	return scores
}

// TruncateRanked returns the top limit entries of an already ranked list.
// percentiles stay computed against the full population, not the slice.
// limit <= 0 means no truncation.
func TruncateRanked(scores []EngagementScore, limit int) []EngagementScore {
	if limit <= 0 || limit >= len(scores) {
		return scores
	}
	return scores[:limit]
}
