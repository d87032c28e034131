package service

import (
	"context"
	"math"

	"github.com/yusufkecer/body-measurements-backend/internal/domain"
	"github.com/yusufkecer/body-measurements-backend/internal/trend"
)

const DefaultForecastWeeks = 4

// ForecastRequest selects the projection horizon. Until takes precedence
// over Weeks; with neither set the horizon is DefaultForecastWeeks.
type ForecastRequest struct {
	Weeks        *int
	Until        *domain.Date
	TargetWeight *float64
}

type MetricForecast struct {
	Metric      domain.Metric   `json:"metric"`
	Unit        string          `json:"unit"`
	Current     *float64        `json:"current"`
	WeeklyTrend *float64        `json:"weekly_trend"`
	Predicted   *float64        `json:"predicted"`
	TotalChange *float64        `json:"total_change"`
	Direction   trend.Direction `json:"direction"`
}

type Forecast struct {
	Weeks         int              `json:"weeks"`
	Until         *domain.Date     `json:"until,omitempty"`
	From          domain.Date      `json:"from"`
	To            domain.Date      `json:"to"`
	Count         int              `json:"count"`
	Metrics       []MetricForecast `json:"metrics"`
	TargetWeight  *float64         `json:"target_weight,omitempty"`
	WeeksToTarget *int             `json:"weeks_to_target"`
}

func (s *MeasurementService) Forecast(ctx context.Context, session domain.Session, req ForecastRequest) (*Forecast, error) {
	series, err := s.series(ctx, session)
	if err != nil {
		return nil, err
	}
	if len(series) < 2 {
		return nil, ErrInsufficientData
	}

	last := series[len(series)-1]
	weeks := DefaultForecastWeeks
	switch {
	case req.Until != nil:
		weeks = trend.WeeksBetween(last.Date.Time, req.Until.Time)
	case req.Weeks != nil:
		weeks = max(1, *req.Weeks)
	}

	f := &Forecast{
		Weeks:        weeks,
		Until:        req.Until,
		From:         series[0].Date,
		To:           last.Date,
		Count:        len(series),
		Metrics:      make([]MetricForecast, 0, len(domain.AllMetrics)),
		TargetWeight: req.TargetWeight,
	}

	for _, metric := range domain.AllMetrics {
		weekly := trend.WeeklyTrend(series, metric)
		predicted := trend.ProjectValue(series, metric, float64(weeks))
		mf := MetricForecast{
			Metric:      metric,
			Unit:        metric.Unit(),
			Current:     last.Value(metric),
			WeeklyTrend: finite(weekly),
			Predicted:   finite(predicted),
			Direction:   trend.DirectionOf(weekly),
		}
		if mf.Current != nil {
			mf.TotalChange = finite(trend.Round1(predicted - *mf.Current))
		}
		f.Metrics = append(f.Metrics, mf)
	}

	if req.TargetWeight != nil {
		f.WeeksToTarget = trend.WeeksToTarget(series, *req.TargetWeight)
	}

	return f, nil
}

type MetricChange struct {
	Metric     domain.Metric   `json:"metric"`
	Unit       string          `json:"unit"`
	Latest     *float64        `json:"latest"`
	Difference *float64        `json:"difference"`
	Direction  trend.Direction `json:"direction"`
}

// ChangeSummary describes a whole history: the ascending series and the
// first-to-last change of every metric.
type ChangeSummary struct {
	Count        int                  `json:"count"`
	Latest       *domain.Measurement  `json:"latest"`
	Metrics      []MetricChange       `json:"metrics"`
	Measurements []domain.Measurement `json:"measurements"`
}

func (s *MeasurementService) Changes(ctx context.Context, session domain.Session) (*ChangeSummary, error) {
	series, err := s.series(ctx, session)
	if err != nil {
		return nil, err
	}

	summary := &ChangeSummary{
		Count:        len(series),
		Metrics:      make([]MetricChange, 0, len(domain.AllMetrics)),
		Measurements: series,
	}
	if summary.Measurements == nil {
		summary.Measurements = []domain.Measurement{}
	}
	if len(series) > 0 {
		latest := series[len(series)-1]
		summary.Latest = &latest
	}

	for _, metric := range domain.AllMetrics {
		mc := MetricChange{
			Metric:     metric,
			Unit:       metric.Unit(),
			Difference: trend.Difference(series, metric),
			Direction:  trend.Unknown,
		}
		if summary.Latest != nil {
			mc.Latest = summary.Latest.Value(metric)
		}
		if mc.Difference != nil {
			mc.Direction = trend.DirectionOf(*mc.Difference)
		}
		summary.Metrics = append(summary.Metrics, mc)
	}

	return summary, nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
