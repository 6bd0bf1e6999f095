package summary

import (
	"sort"
	"time"

	"github.com/highbelief/solar-monitor-go/internal/database/models"
)

// PeriodSummary is the aggregate of one period label
type PeriodSummary = models.PeriodSummary

type accumulator struct {
	energy           float64
	irradianceSum    float64
	irradianceCount  int
	temperatureSum   float64
	temperatureCount int
}

func (a *accumulator) add(m *models.Measurement) {
	if m.CumulativeMwh != nil {
		a.energy += *m.CumulativeMwh
	}
	if m.IrradianceWm2 != nil {
		a.irradianceSum += *m.IrradianceWm2
		a.irradianceCount++
	}
	if m.TemperatureC != nil {
		a.temperatureSum += *m.TemperatureC
		a.temperatureCount++
	}
}

func mean(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Aggregate groups measurements by their period label in loc. Null fields are
// left out of sums and means; a group whose field is null in every row reports
// 0 for it. The result is sorted by label and is never nil.
func Aggregate(measurements []*models.Measurement, g Granularity, loc *time.Location) []PeriodSummary {
	if loc == nil {
		loc = time.UTC
	}

	groups := make(map[string]*accumulator)
	for _, m := range measurements {
		if m == nil {
			continue
		}
		label := g.Label(m.MeasuredAt.In(loc))
		acc, ok := groups[label]
		if !ok {
			acc = &accumulator{}
			groups[label] = acc
		}
		acc.add(m)
	}

	summaries := make([]PeriodSummary, 0, len(groups))
	for label, acc := range groups {
		summaries = append(summaries, PeriodSummary{
			Period:         label,
			TotalEnergyMwh: acc.energy,
			AvgIrradiance:  mean(acc.irradianceSum, acc.irradianceCount),
			AvgTemperature: mean(acc.temperatureSum, acc.temperatureCount),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Period < summaries[j].Period
	})
	return summaries
}
