package trend

import "testing"

func TestClassifyBelowMinimumIsNew(t *testing.T) {
	for _, vals := range [][]float64{nil, {3}, {3, 9}} {
		if got := Classify(vals, ScoreOptions).Trend; got != New {
			t.Fatalf("Classify(%v)=%s want new", vals, got)
		}
	}
}

func TestClassifyExactlyMinimumIsClassified(t *testing.T) {
	got := Classify([]float64{2, 2, 8}, ScoreOptions)
	if got.Trend != Improving {
		t.Fatalf("expected improving for [2,2,8], got %s (change %.2f)", got.Trend, got.Change)
	}
}

func TestClassifyWindowSplitExample(t *testing.T) {
	got := Classify([]float64{3, 3, 4, 3, 7, 8, 7}, ScoreOptions)
	if got.Trend != Improving {
		t.Fatalf("expected improving, got %s", got.Trend)
	}
	if Round2(got.Baseline) != 3.25 || Round2(got.Recent) != 7.33 {
		t.Fatalf("unexpected split: baseline=%.2f recent=%.2f", got.Baseline, got.Recent)
	}
}

func TestClassifySlippingAndStable(t *testing.T) {
	if got := Classify([]float64{8, 8, 8, 5, 5, 5}, ScoreOptions).Trend; got != Slipping {
		t.Fatalf("expected slipping, got %s", got)
	}
	if got := Classify([]float64{5, 6, 5, 6, 5, 6}, ScoreOptions).Trend; got != Stable {
		t.Fatalf("expected stable, got %s", got)
	}
	// A change of exactly delta does not cross a strict threshold.
	if got := Classify([]float64{4, 4, 4, 5, 5, 5}, ScoreOptions).Trend; got != Stable {
		t.Fatalf("expected stable at exactly delta, got %s", got)
	}
}

func TestClassifyFailureRates(t *testing.T) {
	// Baseline: 10 of 10 failed. Recent (last 10): 8 of 10 failed.
	// Failure rate fell by 0.2, so the series is improving.
	failed := make([]bool, 0, 20)
	for i := 0; i < 10; i++ {
		failed = append(failed, true)
	}
	failed = append(failed, false, false, true, true, true, true, true, true, true, true)
	res := Classify(FromFailures(failed), RateOptions)
	if res.Trend != Improving {
		t.Fatalf("expected improving, got %s (change %.3f)", res.Trend, res.Change)
	}

	// Exactly 0.15 counts for rates: baseline rate 0.5, recent 0.35 over 20 + 20.
	failed = failed[:0]
	for i := 0; i < 20; i++ {
		failed = append(failed, i%2 == 0)
	}
	for i := 0; i < 20; i++ {
		failed = append(failed, i < 7)
	}
	opts := RateOptions
	opts.RecentWindow = 20
	if got := Classify(FromFailures(failed), opts).Trend; got != Improving {
		t.Fatalf("expected improving at exactly 0.15, got %s", got)
	}
}

func TestClassifyTieIsStable(t *testing.T) {
	if got := Classify([]float64{5, 5, 5, 5}, ScoreOptions).Trend; got != Stable {
		t.Fatalf("expected stable on tie, got %s", got)
	}
}
