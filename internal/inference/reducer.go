package inference

import (
	"math"
	"sort"
)

// RegressionEstimate is the ensemble mean and population standard deviation
type RegressionEstimate struct {
	Mean   float64
	StdDev float64
}

// ClassVote is the winning label and the percentage of trials that chose it
type ClassVote struct {
	Label      string
	Confidence int
}

// ReduceRegression collapses repeated predictions into mean and population
// standard deviation
func ReduceRegression(values []float64) RegressionEstimate {
	if len(values) == 0 {
		return RegressionEstimate{}
	}

	mean := 0.0
	identical := true
	for _, v := range values {
		mean += v
		identical = identical && v == values[0]
	}
	// avoid summation rounding when every trial agreed
	if identical {
		return RegressionEstimate{Mean: values[0]}
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	return RegressionEstimate{Mean: mean, StdDev: math.Sqrt(variance)}
}

// ReduceClassification returns the most frequent label. Ties go to the
// lexically smallest label. Confidence is floor(100 * wins / len(labels)).
func ReduceClassification(labels []string) ClassVote {
	if len(labels) == 0 {
		return ClassVote{}
	}

	counts := make(map[string]int)
	for _, l := range labels {
		counts[l]++
	}

	distinct := make([]string, 0, len(counts))
	for l := range counts {
		distinct = append(distinct, l)
	}
	sort.Strings(distinct)

	winner := distinct[0]
	for _, l := range distinct[1:] {
		if counts[l] > counts[winner] {
			winner = l
		}
	}

	return ClassVote{
		Label:      winner,
		Confidence: 100 * counts[winner] / len(labels),
	}
}
