// Package history selects and orders records for the history view.
package history

import (
	"slices"
	"strings"

	"expensebook/internal/core"
)

// FilterByMonth keeps records whose date is in yearMonth ("YYYY-MM"). An
// empty yearMonth keeps everything.
func FilterByMonth(records []core.Record, yearMonth string) ([]core.Record, error) {
	yearMonth = strings.TrimSpace(yearMonth)
	if yearMonth == "" {
		return records, nil
	}
	if err := core.ValidateYearMonth(yearMonth); err != nil {
		return nil, err
	}
	prefix := yearMonth + "-"
	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		if strings.HasPrefix(r.Date.String(), prefix) {
			out = append(out, r)
		}
	}
	return out, nil
}

// SortDescending returns a copy of records, newest date first. Records on
// the same date keep their relative order.
func SortDescending(records []core.Record) []core.Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b core.Record) int {
		switch {
		case a.Date.After(b.Date):
			return -1
		case a.Date.Before(b.Date):
			return 1
		default:
			return 0
		}
	})
	return out
}

// Months returns the distinct months present in records, newest first.
func Months(records []core.Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		ym := r.Date.YearMonth()
		if !seen[ym] {
			seen[ym] = true
			out = append(out, ym)
		}
	}
	slices.Sort(out)
	slices.Reverse(out)
	return out
}
