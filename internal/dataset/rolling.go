package dataset

import (
	"fmt"
	"sort"
)

// Aggregator selects the rolling-window statistic.
type Aggregator string

const (
	AggregatorMean   Aggregator = "mean"
	AggregatorMedian Aggregator = "median"
)

// Rolling computes a fixed-window aggregate over values. The result is
// index-aligned with the input: position i carries a value only when the
// whole window fits inside the series, and is nil otherwise (absent, not
// zero). A window larger than the series therefore yields all nil, which is
// not an error.
//
// Centered windows follow the usual dataframe convention: the window at
// index i spans [i-w/2, i+(w-1)/2] in integer arithmetic, so odd windows are
// symmetric and even windows extend one further to the left. Non-centered
// windows are trailing: [i-w+1, i].
func Rolling(values []float64, window int, centered bool, agg Aggregator) ([]*float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("window must be at least 1, got %d", window)
	}
	var aggregate func([]float64) float64
	switch agg {
	case AggregatorMean:
		aggregate = mean
	case AggregatorMedian:
		aggregate = median
	default:
		return nil, fmt.Errorf("unknown aggregator %q", agg)
	}

	out := make([]*float64, len(values))
	for i := range values {
		lo, hi := i-window+1, i
		if centered {
			lo = i - window/2
			hi = i + (window-1)/2
		}
		if lo < 0 || hi >= len(values) {
			continue
		}
		v := aggregate(values[lo : hi+1])
		out[i] = &v
	}
	return out, nil
}

func mean(window []float64) float64 {
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}

func median(window []float64) float64 {
	sorted := make([]float64, len(window))
	copy(sorted, window)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
