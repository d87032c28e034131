package domain

import "time"

type Metric string

const (
	MetricWeight Metric = "weight"
	MetricChest  Metric = "chest"
	MetricWaist  Metric = "waist"
	MetricHips   Metric = "hips"
	MetricBicep  Metric = "bicep"
	MetricThigh  Metric = "thigh"
	MetricCalves Metric = "calves"
)

// AllMetrics lists every tracked metric in display order.
var AllMetrics = []Metric{
	MetricWeight,
	MetricChest,
	MetricWaist,
	MetricHips,
	MetricBicep,
	MetricThigh,
	MetricCalves,
}

func (k Metric) Valid() bool {
	for _, m := range AllMetrics {
		if m == k {
			return true
		}
	}
	return false
}

// Unit is "kg" for weight and "cm" for every circumference.
func (k Metric) Unit() string {
	if k == MetricWeight {
		return "kg"
	}
	return "cm"
}

// Measurement is one user's recorded body state on one date. A nil value
// means the metric was not measured that day.
type Measurement struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Date      Date      `json:"date"`
	Weight    *float64  `json:"weight"`
	Chest     *float64  `json:"chest"`
	Waist     *float64  `json:"waist"`
	Hips      *float64  `json:"hips"`
	Bicep     *float64  `json:"bicep"`
	Thigh     *float64  `json:"thigh"`
	Calves    *float64  `json:"calves"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m Measurement) Value(k Metric) *float64 {
	switch k {
	case MetricWeight:
		return m.Weight
	case MetricChest:
		return m.Chest
	case MetricWaist:
		return m.Waist
	case MetricHips:
		return m.Hips
	case MetricBicep:
		return m.Bicep
	case MetricThigh:
		return m.Thigh
	case MetricCalves:
		return m.Calves
	}
	return nil
}

// MeasurementInput is the body of create and replace requests. Absent and
// null fields stay nil all the way to storage.
type MeasurementInput struct {
	Date   string   `json:"date"`
	Weight *float64 `json:"weight"`
	Chest  *float64 `json:"chest"`
	Waist  *float64 `json:"waist"`
	Hips   *float64 `json:"hips"`
	Bicep  *float64 `json:"bicep"`
	Thigh  *float64 `json:"thigh"`
	Calves *float64 `json:"calves"`
}

func (in MeasurementInput) Value(k Metric) *float64 {
	return Measurement{
		Weight: in.Weight,
		Chest:  in.Chest,
		Waist:  in.Waist,
		Hips:   in.Hips,
		Bicep:  in.Bicep,
		Thigh:  in.Thigh,
		Calves: in.Calves,
	}.Value(k)
}
