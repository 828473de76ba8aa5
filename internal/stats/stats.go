// Package stats aggregates record sets into totals and category breakdowns.
package stats

import (
	"encoding/json"
	"sort"
	"time"
	"unicode/utf16"

	"github.com/shopspring/decimal"

	"expensebook/internal/core"
)

// Totals summarises a record set.
type Totals struct {
	Total   core.Money
	Count   int
	Average core.Money
}

// CategoryTotal is the sum of one category's records.
type CategoryTotal struct {
	Category core.Category
	Info     core.CategoryInfo
	Total    core.Money
	Count    int
}

// Overview holds the data-management figures of a record set.
type Overview struct {
	Count     int
	FirstDate core.Date // zero when there are no records
	// DataSizeKB is the size of the JSON-encoded set in KB, two decimals.
	DataSizeKB decimal.Decimal
}

// ComputeTotals sums records. The average is zero for an empty set.
func ComputeTotals(records []core.Record) Totals {
	total := core.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return Totals{
		Total:   total,
		Count:   len(records),
		Average: total.DivInt(len(records)),
	}
}

// CategoryBreakdown groups records by raw category, descending by total.
// Ties keep the order in which categories were first seen. Unknown
// categories stay separate entries with fallback display info.
func CategoryBreakdown(records []core.Record) []CategoryTotal {
	index := make(map[core.Category]int)
	var out []CategoryTotal
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, CategoryTotal{Category: r.Category, Info: r.Category.Info(), Total: core.Zero})
		}
		out[i].Total = out[i].Total.Add(r.Amount)
		out[i].Count++
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Total.GreaterThan(out[b].Total)
	})
	return out
}

// FilterByPeriod keeps the records whose date falls between the start of
// period (inclusive, per cal) and now (inclusive). Future-dated records are
// dropped. PeriodAll returns records unchanged.
func FilterByPeriod(records []core.Record, period core.Period, now time.Time, cal core.Calendar) []core.Record {
	start, ok := cal.StartOf(period, now)
	if !ok {
		return records
	}
	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		at := cal.Midnight(r.Date)
		if at.Before(start) || at.After(now) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ComputeOverview returns the record count, the earliest record date and
// the size of the JSON-encoded set. Size is counted in UTF-16 code units,
// the unit the book's data size has always been reported in; an empty set
// is 0 KB.
func ComputeOverview(records []core.Record) (Overview, error) {
	ov := Overview{Count: len(records), DataSizeKB: decimal.Zero}
	if len(records) == 0 {
		return ov, nil
	}
	for _, r := range records {
		if ov.FirstDate.IsZero() || r.Date.Before(ov.FirstDate) {
			ov.FirstDate = r.Date
		}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return Overview{}, err
	}
	ov.DataSizeKB = decimal.NewFromInt(int64(utf16Len(string(b)))).Div(decimal.NewFromInt(1024)).Round(2)
	return ov, nil
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
