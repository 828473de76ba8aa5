package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"expensebook/internal/cli"
	"expensebook/internal/core"
	"expensebook/internal/history"
	"expensebook/internal/stats"
)

func (a *app) statsCmd() *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show totals and the category breakdown for a period",
		Long: `Show totals and the category breakdown of the active profile.

Periods are day, week (Monday first), month and year, each ending now.
Any other value shows all records.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, p, err := a.activeState(cmd.Context())
			if err != nil {
				return err
			}
			pd := core.ParsePeriod(period)
			records := stats.FilterByPeriod(st.Records, pd, a.now(), a.cal)
			title := fmt.Sprintf("%s · %s", p.Name, periodTitle(pd))
			renderSummary(a.out, title, stats.ComputeTotals(records), stats.CategoryBreakdown(records), a.currency())
			return nil
		},
	}
	cmd.Flags().StringVarP(&period, "period", "p", "day", "day, week, month, year or all")
	return cmd
}

func periodTitle(p core.Period) string {
	switch p {
	case core.PeriodDay:
		return "today"
	case core.PeriodWeek:
		return "this week"
	case core.PeriodMonth:
		return "this month"
	case core.PeriodYear:
		return "this year"
	default:
		return "all time"
	}
}

func (a *app) historyCmd() *cobra.Command {
	var (
		month string
		all   bool
	)
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"list"},
		Short:   "List records of a month, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, _, err := a.activeState(cmd.Context())
			if err != nil {
				return err
			}
			if all {
				month = ""
			} else if month == "" {
				month = a.cal.Today(a.now()).YearMonth()
			}
			records, err := history.FilterByMonth(st.Records, month)
			if err != nil {
				return err
			}
			records = history.SortDescending(records)

			heading := "All records"
			if month != "" {
				heading = month
			}
			a.println(cli.Title(heading))
			renderRecords(a.out, records, a.currency(), a.cal.Location())
			if len(records) > 0 {
				a.println(cli.Subtle(fmt.Sprintf("%d %s, %s", len(records), pluralize(len(records), "record"),
					stats.ComputeTotals(records).Total.Format(a.currency()))))
			}
			if months := history.Months(st.Records); len(months) > 0 && month != "" && len(records) == 0 {
				a.println(cli.Subtle("Months with records: " + strings.Join(months, ", ")))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM (default current month)")
	cmd.Flags().BoolVar(&all, "all", false, "show every record")
	cmd.MarkFlagsMutuallyExclusive("month", "all")
	return cmd
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show record count, first record date and data size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, p, err := a.activeState(cmd.Context())
			if err != nil {
				return err
			}
			ov, err := stats.ComputeOverview(st.Records)
			if err != nil {
				return err
			}
			renderOverview(a.out, p, ov)
			return nil
		},
	}
}

func (a *app) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List expense categories",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			renderCategories(a.out)
			return nil
		},
	}
}
