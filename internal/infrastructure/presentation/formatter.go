package presentation

import (
	"fmt"
	"strings"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/domain"
)

// rank markers for the top three leaderboard positions.
var medals = [...]string{"🥇", "🥈", "🥉"}

// FormatLeaderboard renders a ranked leaderboard as bot-reply text.
// entries are assumed already sorted; days is the window the ranking
// covers.
func FormatLeaderboard(entries []domain.LeaderboardEntry, days int) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No active users in the last %d days.", days)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Engagement leaderboard — last %d days\n\n", days)

	for i, entry := range entries {
		marker := fmt.Sprintf("%2d.", i+1)
		if i < len(medals) {
			marker = medals[i]
		}

		fmt.Fprintf(&b, "%s %s — %.2f", marker, entry.User.DisplayName(), entry.Score.TotalScore)
		if entry.Score.Percentile != nil {
			fmt.Fprintf(&b, " (top %.1f%%)", *entry.Score.Percentile)
		}
		b.WriteByte('\n')

		if entry.Metrics != nil {
			fmt.Fprintf(&b, "    %d msgs · %d active days · %d reactions received\n",
				entry.Metrics.MessageCount,
				entry.Metrics.DaysActive,
				entry.Metrics.ReactionsReceived,
			)
		}
	}

	return b.String()
}

// FormatScoreCard renders one user's score breakdown as bot-reply text.
// metrics may be nil when the caller did not request them.
func FormatScoreCard(identity domain.UserIdentity, score domain.EngagementScore, metrics *domain.EngagementMetrics, days int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 Engagement for %s — last %d days\n\n", identity.DisplayName(), days)
	fmt.Fprintf(&b, "Total: %.2f / 100\n", score.TotalScore)
	fmt.Fprintf(&b, "  Activity:    %6.2f\n", score.ActivityScore)
	fmt.Fprintf(&b, "  Consistency: %6.2f\n", score.ConsistencyScore)
	fmt.Fprintf(&b, "  Quality:     %6.2f\n", score.QualityScore)
	fmt.Fprintf(&b, "  Interaction: %6.2f\n", score.InteractionScore)

	if score.Percentile != nil {
		fmt.Fprintf(&b, "\nTop %.1f%% of the chat\n", *score.Percentile)
	}

	if metrics != nil {
		fmt.Fprintf(&b, "\n%d messages over %d active days", metrics.MessageCount, metrics.DaysActive)
		fmt.Fprintf(&b, ", %d reactions received, %d given\n", metrics.ReactionsReceived, metrics.ReactionsGiven)
	}

	return b.String()
}
