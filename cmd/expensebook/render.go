package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"expensebook/internal/cli"
	"expensebook/internal/core"
	"expensebook/internal/services"
	"expensebook/internal/stats"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderSummary(w io.Writer, title string, totals stats.Totals, breakdown []stats.CategoryTotal, currency string) {
	fmt.Fprintln(w, cli.Title(title))
	box := fmt.Sprintf("Total    %s\nRecords  %d\nAverage  %s",
		cli.AmountStyle.Render(totals.Total.Format(currency)),
		totals.Count,
		totals.Average.Format(currency))
	fmt.Fprintln(w, cli.BoxStyle.Render(box))

	if len(breakdown) == 0 {
		fmt.Fprintln(w, cli.Subtle("No records in this period."))
		return
	}

	fmt.Fprintln(w)
	tw := newTable(w)
	fmt.Fprintln(tw, "CATEGORY\tRECORDS\tTOTAL\tSHARE")
	for _, c := range breakdown {
		share := "0%"
		if !totals.Total.IsZero() {
			share = c.Total.Decimal().Div(totals.Total.Decimal()).Shift(2).StringFixed(1) + "%"
		}
		fmt.Fprintf(tw, "%s %s\t%d\t%s\t%s\n", c.Info.Icon, c.Info.Name, c.Count, c.Total.Format(currency), share)
	}
	tw.Flush()
}

func renderRecords(w io.Writer, records []core.Record, currency string, loc *time.Location) {
	if len(records) == 0 {
		fmt.Fprintln(w, cli.Subtle("No records."))
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tCATEGORY\tAMOUNT\tNOTE")
	for _, r := range records {
		at := "-"
		if !r.CreatedAt.IsZero() {
			at = r.CreatedAt.In(loc).Format("15:04")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Date, at, r.Category.Label(), r.Amount.Format(currency), r.Note)
	}
	tw.Flush()
}

func renderProfiles(w io.Writer, summaries []services.ProfileSummary, currency string) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, cli.Subtle("No profiles yet. Create one with 'expensebook profile create <name>'."))
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, " \tNAME\tRECORDS\tTOTAL\tID")
	for _, s := range summaries {
		marker := " "
		if s.Active {
			marker = cli.IconActive
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", marker, s.Profile.Name, s.Count, s.Total.Format(currency), s.Profile.ID)
	}
	tw.Flush()
}

func renderOverview(w io.Writer, p core.Profile, ov stats.Overview) {
	first := "none"
	if !ov.FirstDate.IsZero() {
		first = ov.FirstDate.String()
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "Profile\t%s\n", p.Name)
	fmt.Fprintf(tw, "Records\t%d\n", ov.Count)
	fmt.Fprintf(tw, "First record\t%s\n", first)
	fmt.Fprintf(tw, "Data size\t%s KB\n", ov.DataSizeKB.StringFixed(2))
	tw.Flush()
}

func renderCategories(w io.Writer) {
	tw := newTable(w)
	fmt.Fprintln(tw, "KEY\tCATEGORY")
	for _, c := range core.Categories() {
		fmt.Fprintf(tw, "%s\t%s %s\n", c.Key, c.Icon, c.Name)
	}
	tw.Flush()
}

// renderImpact prints what a destructive command would do and whether it
// ran. confirmed is false when the command stopped for confirmation.
func renderImpact(w io.Writer, action string, impact services.Impact, currency string, confirmed bool) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: profile %q, %d %s, %s", action, impact.ProfileName,
		impact.Records, pluralize(impact.Records, "record"), impact.Total.Format(currency))
	if impact.Record != nil {
		r := impact.Record
		fmt.Fprintf(&b, "\n  %d  %s  %s  %s", r.ID, r.Date, r.Category.Label(), r.Note)
	}
	fmt.Fprintln(w, cli.Warning(b.String()))
	if !confirmed {
		fmt.Fprintln(w, cli.Subtle("Nothing changed. Re-run with --yes to confirm."))
	}
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
