package preprocess

import (
	"github.com/montanaflynn/stats"
)

// Mean returns the arithmetic mean, 0 for an empty slice
func Mean(xs []float64) float64 {
	m, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return m
}

// Max returns the largest value, 0 for an empty slice
func Max(xs []float64) float64 {
	m, err := stats.Max(xs)
	if err != nil {
		return 0
	}
	return m
}

// PopulationStdDev is sqrt(mean((x-mean)^2)), dividing by N rather than N-1.
// Models were trained against the population form; the sample form silently diverges.
func PopulationStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationPopulation(xs)
	if err != nil {
		return 0
	}
	return sd
}
