package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensebook/internal/core"
)

func rec(id int64, date string) core.Record {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Record{ID: id, Amount: core.MoneyFromFloat(1), Category: core.Food, Date: d}
}

func ids(records []core.Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestFilterByMonth(t *testing.T) {
	records := []core.Record{
		rec(1, "2024-03-01"),
		rec(2, "2024-02-29"),
		rec(3, "2024-03-31"),
		rec(4, "2023-03-15"),
	}

	got, err := FilterByMonth(records, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(got))

	got, err = FilterByMonth(records, "")
	require.NoError(t, err)
	assert.Equal(t, records, got)

	got, err = FilterByMonth(records, "2025-01")
	require.NoError(t, err)
	assert.Empty(t, got)

	for _, bad := range []string{"2024-3", "2024/03", "March", "2024-13"} {
		_, err := FilterByMonth(records, bad)
		assert.ErrorIs(t, err, core.ErrInvalidMonth, bad)
	}
}

func TestSortDescending(t *testing.T) {
	records := []core.Record{
		rec(1, "2024-03-01"),
		rec(2, "2024-03-05"),
		rec(3, "2024-03-01"),
		rec(4, "2023-12-31"),
	}
	got := SortDescending(records)
	assert.Equal(t, []int64{2, 1, 3, 4}, ids(got))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(records), "input must not be reordered")
	assert.Empty(t, SortDescending(nil))
}

func TestMonths(t *testing.T) {
	records := []core.Record{
		rec(1, "2024-03-01"),
		rec(2, "2023-12-31"),
		rec(3, "2024-03-09"),
		rec(4, "2024-01-02"),
	}
	assert.Equal(t, []string{"2024-03", "2024-01", "2023-12"}, Months(records))
}
