// Package trend classifies the direction of a user's history on one axis.
//
// Series are expressed in one polarity: higher is better. Score series
// (1-10) are used as-is; failure observations are converted with
// FromFailures, so a falling failure rate reads as an improving series.
//
// The window split is fixed: the recent window is the last
// min(RecentWindow, n/2) values (at least one), the baseline is everything
// before it. A series of [3,3,4,3,7,8,7] with the score preset splits into
// baseline [3,3,4,3] (mean 3.25) and recent [7,8,7] (mean 7.33); the change
// of 4.08 exceeds 1.0, so the series is improving.
package trend

import "math"

type Trend string

const (
	New       Trend = "new"
	Improving Trend = "improving"
	Slipping  Trend = "slipping"
	Stable    Trend = "stable"
)

type Options struct {
	// MinSamples below which a series is New. A series of exactly
	// MinSamples values is classified.
	MinSamples   int
	RecentWindow int
	// Delta is the change in means that must be crossed.
	Delta float64
	// Inclusive makes a change of exactly Delta count.
	Inclusive bool
}

// ScoreOptions classifies 1-10 dimension scores.
var ScoreOptions = Options{MinSamples: 3, RecentWindow: 3, Delta: 1.0}

// RateOptions classifies pass/fail series converted with FromFailures. A
// failure rate that drops by 0.15 or more is improving.
var RateOptions = Options{MinSamples: 6, RecentWindow: 10, Delta: 0.15, Inclusive: true}

type Result struct {
	Trend Trend
	// Change is mean(recent) - mean(baseline); zero for New.
	Change   float64
	Recent   float64
	Baseline float64
}

const epsilon = 1e-9

// Classify buckets values, ordered oldest to newest.
func Classify(values []float64, opts Options) Result {
	n := len(values)
	if n == 0 || n < opts.MinSamples || n < 2 {
		return Result{Trend: New}
	}
	recentLen := opts.RecentWindow
	if half := n / 2; recentLen > half {
		recentLen = half
	}
	if recentLen < 1 {
		recentLen = 1
	}
	baseline := mean(values[:n-recentLen])
	recent := mean(values[n-recentLen:])
	change := recent - baseline

	res := Result{Trend: Stable, Change: change, Recent: recent, Baseline: baseline}
	switch {
	case crosses(change, opts):
		res.Trend = Improving
	case crosses(-change, opts):
		res.Trend = Slipping
	}
	return res
}

func crosses(change float64, opts Options) bool {
	if opts.Inclusive {
		return change >= opts.Delta-epsilon
	}
	return change > opts.Delta+epsilon
}

// FromFailures converts failure flags (true = failed) into a higher-is-better
// success series.
func FromFailures(failed []bool) []float64 {
	out := make([]float64, len(failed))
	for i, f := range failed {
		if !f {
			out[i] = 1
		}
	}
	return out
}

// FromScores widens integer scores.
func FromScores(scores []int) []float64 {
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = float64(s)
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Round2 rounds for presentation; classification never uses rounded values.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
