// Package recovery derives a daily recovery score and training recommendation
// from the trailing wellness window.
package recovery

import (
	"github.com/briangreenhill/trainingagent/intervals"
)

const (
	baseScore  = 7.0
	minScore   = 1.0
	maxScore   = 10.0
	recentDays = 7
)

// Assessment is recomputed from the live snapshot on every read; never persist it
type Assessment struct {
	Score       float64            `json:"score"`
	HRVDeltaPct float64            `json:"hrvDeltaPct"`
	RHRDeltaPct float64            `json:"rhrDeltaPct"`
	Latest      intervals.Wellness `json:"latest"`
}

// Score returns nil when the window carries no usable readings.
//
// The averages divide by the number of days with any reading, not by the
// number of days carrying that particular metric, so a day with only a
// resting HR pulls the HRV average towards zero. This is kept as-is.
func Score(window []intervals.Wellness, profile *intervals.Athlete) *Assessment {
	if len(window) == 0 {
		return nil
	}
	latest := window[len(window)-1]

	tail := window
	if len(tail) > recentDays {
		tail = tail[len(tail)-recentDays:]
	}
	recent := make([]intervals.Wellness, 0, len(tail))
	for _, w := range tail {
		if w.HasReading() {
			recent = append(recent, w)
		}
	}
	if len(recent) == 0 {
		return nil
	}

	var sumHRV, sumRHR float64
	for _, w := range recent {
		sumHRV += intervals.Float(w.HRVSDNN)
		sumRHR += intervals.Float(w.RestingHR)
	}
	n := float64(len(recent))
	avgHRV := sumHRV / n
	avgRHR := sumRHR / n

	hrvDelta := deltaPct(intervals.Float(latest.HRVSDNN), avgHRV)
	rhrDelta := deltaPct(intervals.Float(latest.RestingHR), avgRHR)

	score := baseScore + hrvAdjustment(hrvDelta) + rhrAdjustment(rhrDelta)
	if profile != nil {
		score += tsbAdjustment(profile.YesterdayTSB)
	}

	return &Assessment{
		Score:       clamp(score, minScore, maxScore),
		HRVDeltaPct: hrvDelta,
		RHRDeltaPct: rhrDelta,
		Latest:      latest,
	}
}

func deltaPct(latest, avg float64) float64 {
	if avg <= 0 {
		return 0
	}
	return (latest - avg) / avg * 100
}

// hrvAdjustment rewards HRV above the weekly mean
func hrvAdjustment(delta float64) float64 {
	switch {
	case delta > 5:
		return 2
	case delta > 0:
		return 1
	case delta > -5:
		return -0.5
	case delta > -10:
		return -1.5
	default:
		return -2.5
	}
}

// rhrAdjustment penalises an elevated resting HR
func rhrAdjustment(delta float64) float64 {
	switch {
	case delta < -5:
		return 0.5
	case delta > 10:
		return -1.5
	case delta > 5:
		return -0.5
	default:
		return 0
	}
}

func tsbAdjustment(tsb *float64) float64 {
	if tsb == nil {
		return 0
	}
	switch {
	case *tsb < -40:
		return -1.5
	case *tsb < -30:
		return -0.5
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
