package presentation

import (
	"strings"
	"testing"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/domain"
)

func entry(id int64, username string, total float64, percentile float64) domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		Score: domain.EngagementScore{
			UserID:     domain.NewUserID(id),
			TotalScore: total,
			Percentile: &percentile,
		},
		User: domain.UserIdentity{UserID: domain.NewUserID(id), Username: username},
	}
}

func TestFormatLeaderboard_Empty(t *testing.T) {
	out := FormatLeaderboard(nil, 30)

	if !strings.Contains(out, "No active users") {
		t.Errorf("expected empty-board message, got %q", out)
	}
	if !strings.Contains(out, "30 days") {
		t.Errorf("expected window in message, got %q", out)
	}
}

func TestFormatLeaderboard_MedalsForTopThree(t *testing.T) {
	entries := []domain.LeaderboardEntry{
		entry(1, "alice", 91.2, 100.0),
		entry(2, "bob", 77.5, 75.0),
		entry(3, "carol", 60.0, 50.0),
		entry(4, "dave", 41.3, 25.0),
	}

	out := FormatLeaderboard(entries, 7)

	for _, want := range []string{"🥇 @alice", "🥈 @bob", "🥉 @carol", " 4. @dave"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "91.20") {
		t.Errorf("expected score with two decimals, got:\n%s", out)
	}
	if !strings.Contains(out, "(top 100.0%)") {
		t.Errorf("expected percentile annotation, got:\n%s", out)
	}
}

func TestFormatLeaderboard_MetricsLineWhenAttached(t *testing.T) {
	e := entry(1, "alice", 91.2, 100.0)
	e.Metrics = &domain.EngagementMetrics{
		MessageCount:      120,
		DaysActive:        18,
		ReactionsReceived: 45,
	}

	out := FormatLeaderboard([]domain.LeaderboardEntry{e}, 30)

	if !strings.Contains(out, "120 msgs") {
		t.Errorf("expected metrics line, got:\n%s", out)
	}
	if !strings.Contains(out, "18 active days") {
		t.Errorf("expected active days, got:\n%s", out)
	}
}

func TestFormatScoreCard_Breakdown(t *testing.T) {
	p := 92.5
	score := domain.EngagementScore{
		UserID:           domain.NewUserID(7),
		TotalScore:       68.43,
		ActivityScore:    80,
		ConsistencyScore: 60,
		QualityScore:     55.5,
		InteractionScore: 75,
		Percentile:       &p,
	}
	identity := domain.UserIdentity{UserID: domain.NewUserID(7), FirstName: "Alice"}

	out := FormatScoreCard(identity, score, nil, 30)

	for _, want := range []string{
		"Engagement for Alice",
		"Total: 68.43 / 100",
		"Activity:",
		"Consistency:",
		"Quality:",
		"Interaction:",
		"Top 92.5%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormatScoreCard_NoMetricsNoPercentile(t *testing.T) {
	score := domain.EngagementScore{UserID: domain.NewUserID(7)}
	identity := domain.UserIdentity{UserID: domain.NewUserID(7)}

	out := FormatScoreCard(identity, score, nil, 30)

	if strings.Contains(out, "Top ") {
		t.Errorf("expected no percentile line, got:\n%s", out)
	}
	if strings.Contains(out, "messages over") {
		t.Errorf("expected no metrics line, got:\n%s", out)
	}
}

func TestFormatScoreCard_MetricsSummary(t *testing.T) {
	score := domain.EngagementScore{UserID: domain.NewUserID(7), TotalScore: 50}
	identity := domain.UserIdentity{UserID: domain.NewUserID(7), Username: "alice"}
	metrics := &domain.EngagementMetrics{
		MessageCount:      88,
		DaysActive:        21,
		ReactionsReceived: 30,
		ReactionsGiven:    12,
	}

	out := FormatScoreCard(identity, score, metrics, 14)

	if !strings.Contains(out, "88 messages over 21 active days") {
		t.Errorf("expected metrics summary, got:\n%s", out)
	}
	if !strings.Contains(out, "30 reactions received, 12 given") {
		t.Errorf("expected reaction counts, got:\n%s", out)
	}
}
