package weather

import "math"

// Summarize computes comparison statistics for an aligned pair. The
// difference is always radar minus measurement.
func Summarize(pair AlignedPair) Report {
	n := pair.Len()
	if n == 0 {
		return Report{Status: ReportOK}
	}

	var (
		sumRadar, sumMsr    float64
		sumDiff, sumAbsDiff float64
		sumSq, maxAbs       float64
	)
	for i, d := range pair.Difference() {
		sumRadar += pair.Radar[i]
		sumMsr += pair.Measurement[i]
		sumDiff += d
		abs := math.Abs(d)
		sumAbsDiff += abs
		sumSq += d * d
		if abs > maxAbs {
			maxAbs = abs
		}
	}

	fn := float64(n)
	return Report{
		Status:            ReportOK,
		Points:            n,
		Start:             pair.Times[0],
		End:               pair.Times[n-1],
		MeanRadar:         sumRadar / fn,
		MeanMeasurement:   sumMsr / fn,
		MeanDifference:    sumDiff / fn,
		MeanAbsDifference: sumAbsDiff / fn,
		RMSE:              math.Sqrt(sumSq / fn),
		MaxAbsDifference:  maxAbs,
	}
}
