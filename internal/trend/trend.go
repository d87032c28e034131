// Package trend projects body measurements forward from a user's history.
//
// Every function expects the series sorted ascending by date (see SortByDate)
// and uses only its first and last entries: the trend is a two-point slope,
// not a least-squares fit.
package trend

import (
	"math"
	"sort"
	"time"

	"github.com/yusufkecer/body-measurements-backend/internal/domain"
)

const (
	day         = 24 * time.Hour
	daysPerWeek = 7
)

// SortByDate returns an ascending copy of series. Entries sharing a date keep
// their relative order.
func SortByDate(series []domain.Measurement) []domain.Measurement {
	sorted := make([]domain.Measurement, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})
	return sorted
}

// WeeklyTrend is the change of metric per 7 days between the first and last
// entries. It is 0 for fewer than two entries and NaN when either endpoint
// has no value for metric.
func WeeklyTrend(series []domain.Measurement, metric domain.Metric) float64 {
	if len(series) < 2 {
		return 0
	}
	first, last := series[0], series[len(series)-1]
	totalDays := float64(last.Date.Sub(first.Date.Time)) / float64(day)
	return ((value(last, metric) - value(first, metric)) / totalDays) * daysPerWeek
}

// ProjectValue extrapolates the last value of metric by weeksAhead weeks of
// the weekly trend, rounded to one decimal. Results are not clamped.
func ProjectValue(series []domain.Measurement, metric domain.Metric, weeksAhead float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	current := value(series[len(series)-1], metric)
	return Round1(current + WeeklyTrend(series, metric)*weeksAhead)
}

// WeeksBetween converts the distance between two instants into whole weeks:
// the day difference is rounded up first, then rounded to the nearest week.
func WeeksBetween(a, b time.Time) int {
	diff := b.Sub(a)
	if diff < 0 {
		diff = -diff
	}
	diffDays := math.Ceil(float64(diff) / float64(day))
	return roundHalfUp(diffDays / daysPerWeek)
}

// WeeksToTarget estimates how many weeks the weight trend needs to cover the
// distance between the current weight and target. It returns nil for a flat
// or undefined trend. The direction of the trend is not checked.
func WeeksToTarget(series []domain.Measurement, target float64) *int {
	if len(series) == 0 {
		return nil
	}
	current := series[len(series)-1].Weight
	trend := WeeklyTrend(series, domain.MetricWeight)
	if current == nil || trend == 0 || !isFinite(trend) {
		return nil
	}
	weeks := roundHalfUp(math.Abs(target-*current) / math.Abs(trend))
	return &weeks
}

// Difference is last minus first for metric, rounded to one decimal, or nil
// when there are fewer than two entries or an endpoint is missing.
func Difference(series []domain.Measurement, metric domain.Metric) *float64 {
	if len(series) < 2 {
		return nil
	}
	first := series[0].Value(metric)
	last := series[len(series)-1].Value(metric)
	if first == nil || last == nil {
		return nil
	}
	diff := Round1(*last - *first)
	return &diff
}

// Round1 rounds v to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

type Direction string

const (
	Up      Direction = "up"
	Down    Direction = "down"
	Flat    Direction = "flat"
	Unknown Direction = "unknown"
)

func DirectionOf(v float64) Direction {
	switch {
	case !isFinite(v):
		return Unknown
	case v > 0:
		return Up
	case v < 0:
		return Down
	default:
		return Flat
	}
}

func value(m domain.Measurement, metric domain.Metric) float64 {
	if v := m.Value(metric); v != nil {
		return *v
	}
	return math.NaN()
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
