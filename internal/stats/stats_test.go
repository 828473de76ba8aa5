package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensebook/internal/core"
)

func rec(id int64, amount string, cat core.Category, date string) core.Record {
	m, err := core.ParseMoney(amount)
	if err != nil {
		panic(err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Record{ID: id, Amount: m, Category: cat, Date: d, Timestamp: d.UnixMilli()}
}

func dates(records []core.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Date.String()
	}
	return out
}

func TestComputeTotals(t *testing.T) {
	got := ComputeTotals(nil)
	assert.Equal(t, 0, got.Count)
	assert.True(t, got.Total.IsZero())
	assert.True(t, got.Average.IsZero())

	got = ComputeTotals([]core.Record{
		rec(1, "10", core.Food, "2024-03-01"),
		rec(2, "5.5", core.Transport, "2024-03-02"),
		rec(3, "4.5", core.Food, "2024-03-03"),
	})
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, "20", got.Total.String())
	assert.Equal(t, "6.67", got.Average.StringFixed(2))
}

func TestCategoryBreakdown(t *testing.T) {
	records := []core.Record{
		rec(1, "5", core.Transport, "2024-03-01"),
		rec(2, "10", core.Food, "2024-03-01"),
		rec(3, "7", core.Health, "2024-03-02"),
		rec(4, "3", core.Food, "2024-03-02"),
		rec(5, "7", core.Category("pets"), "2024-03-03"),
	}
	got := CategoryBreakdown(records)
	require.Len(t, got, 4)

	assert.Equal(t, core.Food, got[0].Category)
	assert.Equal(t, "13", got[0].Total.String())
	assert.Equal(t, 2, got[0].Count)

	// 7 and 7 tie: health was seen before pets
	assert.Equal(t, core.Health, got[1].Category)
	assert.Equal(t, core.Category("pets"), got[2].Category)
	assert.False(t, got[2].Info.Known)
	assert.Equal(t, core.Other.Info().Icon, got[2].Info.Icon)
	assert.Equal(t, core.Transport, got[3].Category)

	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Total.GreaterThan(got[i-1].Total))
	}

	sum := core.Zero
	for _, c := range got {
		sum = sum.Add(c.Total)
	}
	assert.True(t, sum.Equal(ComputeTotals(records).Total))
	assert.Empty(t, CategoryBreakdown(nil))
}

func TestFilterByPeriod(t *testing.T) {
	cal := core.NewCalendar(time.UTC)
	// Friday
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	records := []core.Record{
		rec(1, "1", core.Food, "2024-03-15"),
		rec(2, "1", core.Food, "2024-03-14"),
		rec(3, "1", core.Food, "2024-03-11"), // Monday
		rec(4, "1", core.Food, "2024-03-10"), // Sunday before
		rec(5, "1", core.Food, "2024-03-01"),
		rec(6, "1", core.Food, "2024-02-29"),
		rec(7, "1", core.Food, "2024-01-01"),
		rec(8, "1", core.Food, "2023-12-31"),
		rec(9, "1", core.Food, "2024-03-16"), // future
	}

	tests := []struct {
		period core.Period
		want   []string
	}{
		{core.PeriodDay, []string{"2024-03-15"}},
		{core.PeriodWeek, []string{"2024-03-15", "2024-03-14", "2024-03-11"}},
		{core.PeriodMonth, []string{"2024-03-15", "2024-03-14", "2024-03-11", "2024-03-10", "2024-03-01"}},
		{core.PeriodYear, []string{"2024-03-15", "2024-03-14", "2024-03-11", "2024-03-10", "2024-03-01", "2024-02-29", "2024-01-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.period.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, dates(FilterByPeriod(records, tt.period, now, cal)))
		})
	}

	all := FilterByPeriod(records, core.ParsePeriod("fortnight"), now, cal)
	assert.Equal(t, records, all)
}

func TestFilterByPeriod_WeekFromWednesday(t *testing.T) {
	cal := core.NewCalendar(time.UTC)
	now := time.Date(2024, 3, 13, 8, 0, 0, 0, time.UTC) // Wednesday
	records := []core.Record{
		rec(1, "1", core.Food, "2024-03-10"), // Sunday
		rec(2, "1", core.Food, "2024-03-11"), // Monday
		rec(3, "1", core.Food, "2024-03-13"),
	}
	got := FilterByPeriod(records, core.PeriodWeek, now, cal)
	assert.Equal(t, []string{"2024-03-11", "2024-03-13"}, dates(got))
}

func TestFilterByPeriod_UsesCalendarZone(t *testing.T) {
	shanghai := time.FixedZone("UTC+8", 8*60*60)
	cal := core.NewCalendar(shanghai)
	// 2024-03-15 in UTC, already 2024-03-16 in UTC+8
	now := time.Date(2024, 3, 15, 17, 0, 0, 0, time.UTC)
	records := []core.Record{
		rec(1, "1", core.Food, "2024-03-15"),
		rec(2, "1", core.Food, "2024-03-16"),
	}
	got := FilterByPeriod(records, core.PeriodDay, now, cal)
	assert.Equal(t, []string{"2024-03-16"}, dates(got))
}

func TestComputeOverview(t *testing.T) {
	ov, err := ComputeOverview(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ov.Count)
	assert.True(t, ov.FirstDate.IsZero())
	assert.True(t, ov.DataSizeKB.IsZero())

	ov, err = ComputeOverview([]core.Record{
		rec(1, "1", core.Food, "2024-03-15"),
		rec(2, "1", core.Food, "2023-07-01"),
		rec(3, "1", core.Food, "2024-01-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, ov.Count)
	assert.Equal(t, "2023-07-01", ov.FirstDate.String())
	assert.True(t, ov.DataSizeKB.IsPositive())
}

func TestComputeOverview_SizeInUTF16Units(t *testing.T) {
	ascii := rec(1, "1", core.Food, "2024-03-15")
	ascii.Note = strings.Repeat("a", 600)
	wide := ascii
	wide.Note = strings.Repeat("饭", 600)

	a, err := ComputeOverview([]core.Record{ascii})
	require.NoError(t, err)
	w, err := ComputeOverview([]core.Record{wide})
	require.NoError(t, err)

	// one code unit per character either way, not three bytes per CJK rune
	assert.True(t, a.DataSizeKB.Equal(w.DataSizeKB), "%s != %s", a.DataSizeKB, w.DataSizeKB)
	assert.Equal(t, 4, utf16Len("ab饭"))
	assert.Equal(t, 2, utf16Len("😀"))
}
