package forecast

import (
	"math"

	"github.com/highbelief/solar-monitor-go/internal/database/models"
	"gonum.org/v1/gonum/stat"
)

// Pair is one forecast with its realized value
type Pair struct {
	Predicted float64
	Actual    float64
}

// AccuracyReport summarizes forecast error over the pairs that have an actual
type AccuracyReport struct {
	Model            Model       `json:"model"`
	Start            models.Date `json:"start"`
	End              models.Date `json:"end"`
	Count            int         `json:"count"`
	RMSE             float64     `json:"rmse"`
	MAE              float64     `json:"mae"`
	MAPE             float64     `json:"mape"`
	MAPECount        int         `json:"mapeCount"`
	MeanPredictedMwh float64     `json:"meanPredictedMwh"`
	MeanActualMwh    float64     `json:"meanActualMwh"`
}

// Score computes RMSE, MAE and MAPE. MAPE is a percentage over the pairs with a
// positive actual. With no pairs every figure is zero.
func Score(pairs []Pair) *AccuracyReport {
	report := &AccuracyReport{Count: len(pairs)}
	if len(pairs) == 0 {
		return report
	}

	predicted := make([]float64, len(pairs))
	actual := make([]float64, len(pairs))
	squared := make([]float64, len(pairs))
	absolute := make([]float64, len(pairs))
	var percentage []float64

	for i, p := range pairs {
		diff := p.Predicted - p.Actual
		predicted[i] = p.Predicted
		actual[i] = p.Actual
		squared[i] = diff * diff
		absolute[i] = math.Abs(diff)
		if p.Actual > 0 {
			percentage = append(percentage, math.Abs(diff)/p.Actual)
		}
	}

	report.RMSE = math.Sqrt(stat.Mean(squared, nil))
	report.MAE = stat.Mean(absolute, nil)
	report.MeanPredictedMwh = stat.Mean(predicted, nil)
	report.MeanActualMwh = stat.Mean(actual, nil)
	if len(percentage) > 0 {
		report.MAPE = stat.Mean(percentage, nil) * 100
		report.MAPECount = len(percentage)
	}

	return report
}
