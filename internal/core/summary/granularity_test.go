package summary

import (
	"sort"
	"testing"
	"time"

	apperrors "github.com/highbelief/solar-monitor-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGranularity(t *testing.T) {
	for _, value := range []string{"daily", "monthly", "yearly"} {
		g, err := ParseGranularity(value)
		require.NoError(t, err)
		assert.Equal(t, value, g.String())
		assert.True(t, g.Valid())
	}

	for _, value := range []string{"weekly", "", "Daily", "hourly"} {
		_, err := ParseGranularity(value)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument, value)
	}
}

func TestGranularity_Formats(t *testing.T) {
	ts := time.Date(2025, 3, 7, 13, 4, 5, 0, time.UTC)

	tests := []struct {
		g      Granularity
		sql    string
		label  string
		layout string
	}{
		{Daily, "%Y-%m-%d", "2025-03-07", "2006-01-02"},
		{Monthly, "%Y-%m", "2025-03", "2006-01"},
		{Yearly, "%Y", "2025", "2006"},
	}

	for _, tt := range tests {
		t.Run(tt.g.String(), func(t *testing.T) {
			assert.Equal(t, tt.sql, tt.g.SQLFormat())
			assert.Equal(t, tt.layout, tt.g.LabelLayout())
			assert.Equal(t, tt.label, tt.g.Label(ts))
		})
	}
}

func TestGranularity_LabelOrderIsChronological(t *testing.T) {
	start := time.Date(998, 12, 30, 0, 0, 0, 0, time.UTC)
	var instants []time.Time
	for i := 0; i < 400; i++ {
		instants = append(instants, start.AddDate(i*3, i%12, i*17))
	}

	for _, g := range []Granularity{Daily, Monthly, Yearly} {
		labels := make([]string, len(instants))
		for i, ts := range instants {
			labels[i] = g.Label(ts)
		}
		assert.True(t, sort.StringsAreSorted(labels), g.String())
	}
}

func TestParseAnchorDate(t *testing.T) {
	d, err := ParseAnchorDate("2025-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), d)

	for _, value := range []string{"2025-5-1", "2025-02-30", "20250501", "", "2025-05-01T00:00:00"} {
		_, err := ParseAnchorDate(value)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument, value)
	}
}
