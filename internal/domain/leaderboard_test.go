package domain

import "testing"

func scoresForRanking(totals map[int64]float64) []EngagementScore {
	scores := make([]EngagementScore, 0, len(totals))
	for id, total := range totals {
		scores = append(scores, EngagementScore{
			UserID:     NewUserID(id),
			TotalScore: total,
		})
	}
	return scores
}

func TestRankScores_SortsDescending(t *testing.T) {
	ranked := RankScores(scoresForRanking(map[int64]float64{
		1: 40.0,
		2: 90.0,
		3: 65.5,
	}))

	if ranked[0].UserID.Int64() != 2 || ranked[1].UserID.Int64() != 3 || ranked[2].UserID.Int64() != 1 {
		t.Errorf("unexpected order: %d, %d, %d",
			ranked[0].UserID.Int64(), ranked[1].UserID.Int64(), ranked[2].UserID.Int64())
	}
}

func TestRankScores_TopScorerGetsHundred(t *testing.T) {
	ranked := RankScores(scoresForRanking(map[int64]float64{
		1: 40.0,
		2: 90.0,
		3: 65.5,
		4: 10.0,
	}))

	if ranked[0].Percentile == nil || *ranked[0].Percentile != 100.0 {
		t.Errorf("expected top percentile 100.0, got %v", ranked[0].Percentile)
	}

	// n=4: 100, 75, 50, 25
	expected := []float64{100.0, 75.0, 50.0, 25.0}
	for i, want := range expected {
		if *ranked[i].Percentile != want {
			t.Errorf("rank %d: expected percentile %f, got %f", i+1, want, *ranked[i].Percentile)
		}
	}
}

func TestRankScores_PercentilesNonIncreasing(t *testing.T) {
	ranked := RankScores(scoresForRanking(map[int64]float64{
		1: 12.0, 2: 88.0, 3: 88.0, 4: 43.7, 5: 61.2, 6: 0.0, 7: 99.9,
	}))

	for i := 1; i < len(ranked); i++ {
		if *ranked[i].Percentile > *ranked[i-1].Percentile {
			t.Errorf("percentile increased at rank %d: %f > %f",
				i+1, *ranked[i].Percentile, *ranked[i-1].Percentile)
		}
	}
}

func TestRankScores_TiesBrokenByUserID(t *testing.T) {
	ranked := RankScores(scoresForRanking(map[int64]float64{
		300: 75.0,
		100: 75.0,
		200: 75.0,
	}))

	if ranked[0].UserID.Int64() != 100 || ranked[1].UserID.Int64() != 200 || ranked[2].UserID.Int64() != 300 {
		t.Errorf("ties should order by user id ascending, got %d, %d, %d",
			ranked[0].UserID.Int64(), ranked[1].UserID.Int64(), ranked[2].UserID.Int64())
	}

	// tied totals still get distinct rank-based percentiles
	if *ranked[0].Percentile == *ranked[1].Percentile {
		t.Error("tied scores should not share a percentile")
	}
}

func TestRankScores_SingleCandidate(t *testing.T) {
	ranked := RankScores(scoresForRanking(map[int64]float64{7: 1.5}))

	if len(ranked) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(ranked))
	}
	if *ranked[0].Percentile != 100.0 {
		t.Errorf("sole candidate should be the 100th percentile, got %f", *ranked[0].Percentile)
	}
}

func TestRankScores_Empty(t *testing.T) {
	ranked := RankScores(nil)
	if len(ranked) != 0 {
		t.Errorf("expected empty result, got %d entries", len(ranked))
	}
}

func TestTruncateRanked_PercentilesKeepFullPopulation(t *testing.T) {
	totals := make(map[int64]float64, 10)
	for i := int64(1); i <= 10; i++ {
		totals[i] = float64(i * 10)
	}

	ranked := RankScores(scoresForRanking(totals))
	top := TruncateRanked(ranked, 3)

	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}

	// truncation happens after percentile assignment over all 10
	if *top[0].Percentile != 100.0 {
		t.Errorf("expected percentile 100.0, got %f", *top[0].Percentile)
	}
	if *top[2].Percentile != 80.0 {
		t.Errorf("expected percentile 80.0 against full population, got %f", *top[2].Percentile)
	}
}

func TestTruncateRanked_LimitZeroKeepsAll(t *testing.T) {
	ranked := RankScores(scoresForRanking(map[int64]float64{1: 10, 2: 20, 3: 30}))

	if got := TruncateRanked(ranked, 0); len(got) != 3 {
		t.Errorf("limit 0 should keep all entries, got %d", len(got))
	}
	if got := TruncateRanked(ranked, 50); len(got) != 3 {
		t.Errorf("limit beyond population should keep all entries, got %d", len(got))
	}
}
