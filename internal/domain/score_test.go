package domain

import "testing"

func TestCalculateScore_ZeroMetrics(t *testing.T) {
	score := CalculateScore(NewUserID(1), EngagementMetrics{TotalDays: 30})

	if score.TotalScore != 0 {
		t.Errorf("expected total 0, got %f", score.TotalScore)
	}
	if score.ActivityScore != 0 || score.ConsistencyScore != 0 ||
		score.QualityScore != 0 || score.InteractionScore != 0 {
		t.Errorf("expected all sub-scores 0, got %+v", score)
	}
	if score.Percentile != nil {
		t.Error("expected no percentile outside a ranking")
	}
}

func TestCalculateScore_ZeroDayWindow(t *testing.T) {
	// degenerate window must score 0, not divide by zero
	score := CalculateScore(NewUserID(1), EngagementMetrics{
		MessageCount: 100,
		DaysActive:   0,
		TotalDays:    0,
	})

	if score.ActivityScore != 0 {
		t.Errorf("expected activity 0, got %f", score.ActivityScore)
	}
	if score.ConsistencyScore != 0 {
		t.Errorf("expected consistency 0, got %f", score.ConsistencyScore)
	}
}

func TestCalculateScore_AllComponentsMaxed(t *testing.T) {
	m := EngagementMetrics{
		MessageCount:      300, // 10/day: full base + full bonus
		AvgMessageLength:  250,
		DaysActive:        30,
		TotalDays:         30,
		URLCount:          90,  // 0.3/message
		MediaCount:        120, // 0.4/message
		ReactionsGiven:    300, // 1/message
		ReactionsReceived: 600, // 2/message
		ReplyCount:        100,
		RepliesReceived:   50, // combined 0.5/message
	}

	score := CalculateScore(NewUserID(1), m)

	if score.ActivityScore != 100 {
		t.Errorf("expected activity 100, got %f", score.ActivityScore)
	}
	if score.ConsistencyScore != 100 {
		t.Errorf("expected consistency 100, got %f", score.ConsistencyScore)
	}
	if score.QualityScore != 100 {
		t.Errorf("expected quality 100, got %f", score.QualityScore)
	}
	if score.InteractionScore != 100 {
		t.Errorf("expected interaction 100, got %f", score.InteractionScore)
	}
	if score.TotalScore != 100 {
		t.Errorf("expected total 100, got %f", score.TotalScore)
	}
}

func TestCalculateScore_WeightedTotal(t *testing.T) {
	m := EngagementMetrics{
		MessageCount:      50, // 5/day: base 40, no bonus
		AvgMessageLength:  50, // length component 15
		DaysActive:        5,  // consistency 50
		TotalDays:         10,
		ReactionsGiven:    20, // 0.4/message: 20 points
		ReactionsReceived: 50, // 1/message: 12.5 points
		MediaCount:        10, // 0.2/message: 12.5 points
		ReplyCount:        10, // 0.2/message: 20 points
	}

	score := CalculateScore(NewUserID(1), m)

	if score.ActivityScore != 40 {
		t.Errorf("expected activity 40, got %f", score.ActivityScore)
	}
	if score.ConsistencyScore != 50 {
		t.Errorf("expected consistency 50, got %f", score.ConsistencyScore)
	}
	if score.QualityScore != 40 {
		t.Errorf("expected quality 40, got %f", score.QualityScore)
	}
	if score.InteractionScore != 40 {
		t.Errorf("expected interaction 40, got %f", score.InteractionScore)
	}

	// 40*0.30 + 50*0.25 + 40*0.25 + 40*0.20
	if score.TotalScore != 42.5 {
		t.Errorf("expected total 42.5, got %f", score.TotalScore)
	}
}

func TestCalculateScore_ActivityBonusAccrues(t *testing.T) {
	// 7.5 messages/day: base 60, bonus (7.5-5)/5*20 = 10
	score := CalculateScore(NewUserID(1), EngagementMetrics{
		MessageCount: 75,
		DaysActive:   10,
		TotalDays:    10,
	})

	if score.ActivityScore != 70 {
		t.Errorf("expected activity 70, got %f", score.ActivityScore)
	}
}

func TestCalculateScore_ActivityNoBonusAtThreshold(t *testing.T) {
	// exactly 5/day earns the linear base only
	score := CalculateScore(NewUserID(1), EngagementMetrics{
		MessageCount: 50,
		DaysActive:   10,
		TotalDays:    10,
	})

	if score.ActivityScore != 40 {
		t.Errorf("expected activity 40, got %f", score.ActivityScore)
	}
}

func TestCalculateScore_ActivityClampedAtHundred(t *testing.T) {
	score := CalculateScore(NewUserID(1), EngagementMetrics{
		MessageCount: 5000,
		DaysActive:   10,
		TotalDays:    10,
	})

	if score.ActivityScore != 100 {
		t.Errorf("expected activity clamped to 100, got %f", score.ActivityScore)
	}
}

func TestCalculateScore_ConsistencyFullWindow(t *testing.T) {
	score := CalculateScore(NewUserID(1), EngagementMetrics{
		MessageCount: 7,
		DaysActive:   7,
		TotalDays:    7,
	})

	if score.ConsistencyScore != 100 {
		t.Errorf("expected consistency 100, got %f", score.ConsistencyScore)
	}
}

func TestCalculateScore_QualityLengthRamp(t *testing.T) {
	tests := []struct {
		name      string
		avgLength float64
		expected  float64
	}{
		{"empty messages", 0, 0},
		{"short messages", 25, 7.5},
		{"first knee", 50, 15},
		{"mid ramp", 125, 20},
		{"second knee", 200, 25},
		{"beyond cap", 500, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := CalculateScore(NewUserID(1), EngagementMetrics{
				MessageCount:     10,
				AvgMessageLength: tt.avgLength,
				TotalDays:        30,
			})

			if score.QualityScore != tt.expected {
				t.Errorf("expected quality %f for avg length %f, got %f",
					tt.expected, tt.avgLength, score.QualityScore)
			}
		})
	}
}

func TestCalculateScore_InteractionCountsRepliesBothWays(t *testing.T) {
	sent := CalculateScore(NewUserID(1), EngagementMetrics{
		MessageCount: 10,
		ReplyCount:   5,
		TotalDays:    30,
	})
	received := CalculateScore(NewUserID(1), EngagementMetrics{
		MessageCount:    10,
		RepliesReceived: 5,
		TotalDays:       30,
	})

	if sent.InteractionScore != received.InteractionScore {
		t.Errorf("replies sent and received should weigh equally, got %f vs %f",
			sent.InteractionScore, received.InteractionScore)
	}
	if sent.InteractionScore != 50 {
		t.Errorf("expected interaction 50 at saturation, got %f", sent.InteractionScore)
	}
}

func TestCalculateScore_AllScoresBounded(t *testing.T) {
	extremes := []EngagementMetrics{
		{},
		{MessageCount: 1, TotalDays: 365},
		{MessageCount: 1 << 30, AvgMessageLength: 1e6, DaysActive: 30, TotalDays: 30,
			URLCount: 1 << 30, MediaCount: 1 << 30, ReactionsGiven: 1 << 30,
			ReactionsReceived: 1 << 30, ReplyCount: 1 << 30, RepliesReceived: 1 << 30},
	}

	for i, m := range extremes {
		score := CalculateScore(NewUserID(1), m)
		for name, v := range map[string]float64{
			"total":       score.TotalScore,
			"activity":    score.ActivityScore,
			"consistency": score.ConsistencyScore,
			"quality":     score.QualityScore,
			"interaction": score.InteractionScore,
		} {
			if v < 0 || v > 100 {
				t.Errorf("case %d: %s score %f out of [0, 100]", i, name, v)
			}
		}
	}
}

func TestCalculateScore_Deterministic(t *testing.T) {
	m := EngagementMetrics{
		MessageCount:      37,
		AvgMessageLength:  97.3,
		DaysActive:        12,
		TotalDays:         30,
		URLCount:          4,
		MediaCount:        9,
		ReactionsGiven:    21,
		ReactionsReceived: 14,
		ReplyCount:        11,
		RepliesReceived:   6,
	}

	first := CalculateScore(NewUserID(42), m)
	second := CalculateScore(NewUserID(42), m)

	if first != second {
		t.Errorf("same metrics must yield the same score, got %+v vs %+v", first, second)
	}
}
