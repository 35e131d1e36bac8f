package analytics

import "math"

// The analyzers only need a handful of closed-form statistics, computed the
// same way the upstream dashboards expect them: sample variance and the
// ordinary least-squares slope of a series against its index.

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance is the sample variance (n-1 denominator). Zero for fewer than
// two points.
func variance(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return sq / float64(n-1)
}

func stddev(values []float64) float64 {
	return math.Sqrt(variance(values))
}

// trendSlope is the least-squares slope of values against the index
// sequence 0..n-1. Zero when fewer than two points exist.
func trendSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := float64(n)*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (float64(n)*sumXY - sumX*sumY) / denom
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
