package payment

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Statistics summarizes a set of payment amounts for the admin dashboard.
type Statistics struct {
	Count  int     `json:"count"`
	Total  int64   `json:"total"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    int64   `json:"max"`
}

// Summarize computes aggregate statistics over payment amounts in minor
// units. An empty input yields a zero summary.
func Summarize(amounts []int64) Statistics {
	if len(amounts) == 0 {
		return Statistics{}
	}

	values := make([]float64, len(amounts))
	var total, max int64
	for i, amount := range amounts {
		values[i] = float64(amount)
		total += amount
		if amount > max {
			max = amount
		}
	}
	sort.Float64s(values)

	summary := Statistics{
		Count:  len(amounts),
		Total:  total,
		Mean:   stat.Mean(values, nil),
		Median: stat.Quantile(0.5, stat.Empirical, values, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, values, nil),
		Max:    max,
	}
	if len(values) > 1 {
		summary.StdDev = stat.StdDev(values, nil)
	}
	return summary
}
