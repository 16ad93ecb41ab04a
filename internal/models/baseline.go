// ABOUTME: BaselineSet model: rolling per-metric statistics over a bounded window.
// ABOUTME: Mirrors the persisted baselines.json layout field for field.
package models

// MetricBaseline holds one metric's rolling statistics. Values is the ordered
// sequence of the most recent observations, oldest first.
type MetricBaseline struct {
	Mean   float64   `json:"mean"`
	Std    float64   `json:"std"`
	Values []float64 `json:"values"`
}

// BaselineSet is the process-wide rolling-statistics state. Dates lists the
// calendar days that contributed to the window; each metric's Values holds
// that metric's last non-null observations. A metric absent on a given day
// contributes nothing, so a metric's Values may be shorter than Dates.
type BaselineSet struct {
	LastUpdated *string                    `json:"last_updated"`
	Dates       []string                   `json:"dates"`
	DataPoints  int                        `json:"data_points"`
	WindowDays  int                        `json:"window_days"`
	Metrics     map[string]*MetricBaseline `json:"metrics"`
}

// Clone returns a deep copy, so callers can treat updates as value
// transformations without aliasing the stored slices.
func (b *BaselineSet) Clone() *BaselineSet {
	out := &BaselineSet{
		DataPoints: b.DataPoints,
		WindowDays: b.WindowDays,
		Dates:      append([]string{}, b.Dates...),
		Metrics:    make(map[string]*MetricBaseline, len(b.Metrics)),
	}
	if b.LastUpdated != nil {
		ts := *b.LastUpdated
		out.LastUpdated = &ts
	}
	for name, m := range b.Metrics {
		out.Metrics[name] = &MetricBaseline{
			Mean:   m.Mean,
			Std:    m.Std,
			Values: append([]float64{}, m.Values...),
		}
	}
	return out
}
