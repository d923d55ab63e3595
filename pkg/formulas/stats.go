// Package formulas holds the numeric building blocks shared by the estimators.
package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// PopStdDev calculates the population standard deviation (divides by N, not N-1).
func PopStdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	_, std := stat.PopMeanStdDev(data, nil)
	return std
}

// Sum adds up all values.
func Sum(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Sum(data)
}

// Median returns the middle value, averaging the two middle values for even lengths.
// stat.Quantile with the empirical CDF returns the lower middle element instead,
// so the sort is done here.
func Median(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// MedianAbsoluteDeviation returns median(|x - median(x)|).
func MedianAbsoluteDeviation(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	median := Median(data)
	deviations := make([]float64, len(data))
	for i, x := range data {
		deviations[i] = math.Abs(x - median)
	}
	return Median(deviations)
}

// Percentile returns the p-quantile (0..1) of data, interpolating linearly
// between the closest ranks at position p*(n-1).
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	pos := Clamp(p, 0, 1) * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// GrowthRates converts a series into period-over-period growth rates.
// Periods preceded by a non-positive value are skipped rather than reported as 0.
func GrowthRates(series []float64) []float64 {
	if len(series) < 2 {
		return []float64{}
	}

	rates := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		if series[i-1] > 0 {
			rates = append(rates, (series[i]-series[i-1])/series[i-1])
		}
	}
	return rates
}

// LinearWeightedAverage weights the oldest value 1 and the newest N.
func LinearWeightedAverage(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	weights := make([]float64, len(series))
	for i := range weights {
		weights[i] = float64(i + 1)
	}
	return stat.Mean(series, weights)
}
