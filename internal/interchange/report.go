package interchange

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"expensebook/internal/core"
	"expensebook/internal/history"
	"expensebook/internal/stats"
)

const (
	reportRule = "═══════════════════════"
	reportLine = "─────────────────────"
)

// ReportOptions controls how amounts and times are rendered.
type ReportOptions struct {
	// Currency is the ISO code used to format amounts.
	Currency string
	// Location is used for the export time. Nil means UTC.
	Location *time.Location
}

type monthTotal struct {
	month string
	total core.Money
	count int
}

// ToReport renders the active profile's records as a plain-text report.
// The output depends only on st, now and opts.
func ToReport(st core.State, now time.Time, opts ReportOptions) (string, error) {
	active, err := st.ActiveProfile()
	if err != nil {
		return "", err
	}
	if len(st.Records) == 0 {
		return "", core.ErrEmptyData
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	amount := func(m core.Money) string { return m.Format(opts.Currency) }

	sorted := history.SortDescending(st.Records)
	totals := stats.ComputeTotals(st.Records)

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Expense report: %s\n", active.Name)
	b.WriteString(reportRule + "\n")
	fmt.Fprintf(&b, "Profile:     %s\n", active.Name)
	fmt.Fprintf(&b, "Exported at: %s\n", now.In(loc).Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Records:     %d\n", totals.Count)
	fmt.Fprintf(&b, "Total:       %s\n", amount(totals.Total))
	fmt.Fprintf(&b, "Average:     %s\n\n", amount(totals.Average))

	b.WriteString("📅 Monthly summary\n")
	b.WriteString(reportLine + "\n")
	for _, m := range monthlyTotals(sorted) {
		fmt.Fprintf(&b, "%s: %s (%d %s)\n", m.month, amount(m.total), m.count, plural(m.count, "record"))
	}

	b.WriteString("\n📝 Records\n")
	b.WriteString(reportLine + "\n")
	for i, r := range sorted {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Date)
		fmt.Fprintf(&b, "   %s  %s\n", r.Category.Label(), amount(r.Amount))
		if r.Note != "" {
			fmt.Fprintf(&b, "   Note: %s\n", r.Note)
		}
		b.WriteString("\n")
	}

	b.WriteString(reportRule + "\n")
	b.WriteString("💰 expensebook\n")
	return b.String(), nil
}

func monthlyTotals(records []core.Record) []monthTotal {
	index := make(map[string]int)
	var out []monthTotal
	for _, r := range records {
		ym := r.Date.YearMonth()
		i, ok := index[ym]
		if !ok {
			i = len(out)
			index[ym] = i
			out = append(out, monthTotal{month: ym, total: core.Zero})
		}
		out[i].total = out[i].total.Add(r.Amount)
		out[i].count++
	}
	sort.Slice(out, func(a, b int) bool { return out[a].month > out[b].month })
	return out
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
