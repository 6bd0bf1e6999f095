package summary

import (
	"time"

	apperrors "github.com/highbelief/solar-monitor-go/pkg/errors"
)

// Granularity is the time resolution measurements are grouped at
type Granularity string

const (
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// AnchorLayout is the accepted format of the anchor date
const AnchorLayout = "2006-01-02"

type granularitySpec struct {
	labelLayout string
	sqlFormat   string
	advance     func(time.Time) time.Time
	truncate    func(y int, m time.Month, d int) (int, time.Month, int)
}

// Labels are fixed-width and zero-padded, most significant unit first, so
// sorting labels as strings sorts the periods chronologically.
var granularities = map[Granularity]granularitySpec{
	Daily: {
		labelLayout: "2006-01-02",
		sqlFormat:   "%Y-%m-%d",
		advance:     func(t time.Time) time.Time { return t.AddDate(0, 0, 1) },
		truncate:    func(y int, m time.Month, d int) (int, time.Month, int) { return y, m, d },
	},
	Monthly: {
		labelLayout: "2006-01",
		sqlFormat:   "%Y-%m",
		advance:     func(t time.Time) time.Time { return t.AddDate(0, 1, 0) },
		truncate:    func(y int, m time.Month, _ int) (int, time.Month, int) { return y, m, 1 },
	},
	Yearly: {
		labelLayout: "2006",
		sqlFormat:   "%Y",
		advance:     func(t time.Time) time.Time { return t.AddDate(1, 0, 0) },
		truncate:    func(y int, _ time.Month, _ int) (int, time.Month, int) { return y, time.January, 1 },
	},
}

// ParseGranularity accepts exactly "daily", "monthly" or "yearly"
func ParseGranularity(value string) (Granularity, error) {
	g := Granularity(value)
	if _, ok := granularities[g]; !ok {
		return "", apperrors.InvalidArgument("unsupported summary type %q: expected daily, monthly or yearly", value)
	}
	return g, nil
}

// Valid reports whether g is a supported granularity
func (g Granularity) Valid() bool {
	_, ok := granularities[g]
	return ok
}

// LabelLayout is the Go time layout of the period label
func (g Granularity) LabelLayout() string {
	return granularities[g].labelLayout
}

// SQLFormat is the strftime pattern producing the same label as LabelLayout
func (g Granularity) SQLFormat() string {
	return granularities[g].sqlFormat
}

// Label formats t as the period it belongs to
func (g Granularity) Label(t time.Time) string {
	return t.Format(g.LabelLayout())
}

func (g Granularity) String() string {
	return string(g)
}

// ParseAnchorDate parses a YYYY-MM-DD date
func ParseAnchorDate(value string) (time.Time, error) {
	t, err := time.Parse(AnchorLayout, value)
	if err != nil {
		return time.Time{}, apperrors.InvalidArgument("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}
