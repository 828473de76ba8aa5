package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"expensebook/internal/cli"
	"expensebook/internal/core"
)

func (a *app) addCmd() *cobra.Command {
	var category, note, date string
	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record an expense",
		Long: `Record an expense for the active profile.

The date defaults to today and the category to food.`,
		Example: `  expensebook add 12.50 --category transport --note "taxi home"
  expensebook add 30 -c shopping -d 2024-03-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := a.activeState(ctx)
			if err != nil {
				return err
			}
			if date == "" {
				date = a.cal.Today(a.now()).String()
			}
			_, rec, err := a.records.Add(ctx, st, core.RecordInput{
				Amount:   args[0],
				Category: category,
				Note:     note,
				Date:     date,
			})
			if err != nil {
				return err
			}
			a.println(cli.Success(fmt.Sprintf("Recorded %s %s on %s (id %d)",
				rec.Category.Label(), rec.Amount.Format(a.currency()), rec.Date, rec.ID)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", string(core.Food), "expense category (see 'expensebook categories')")
	cmd.Flags().StringVarP(&note, "note", "n", "", "optional note")
	cmd.Flags().StringVarP(&date, "date", "d", "", "date as YYYY-MM-DD (default today)")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid record id %q", args[0])
			}
			ctx := cmd.Context()
			st, _, err := a.activeState(ctx)
			if err != nil {
				return err
			}
			impact, err := a.records.PrepareDelete(ctx, st, id)
			if err != nil {
				return err
			}
			renderImpact(a.out, "Delete record", impact, a.currency(), yes)
			if !yes {
				return nil
			}
			if _, err := a.records.Delete(ctx, st, id); err != nil {
				return err
			}
			a.println(cli.Success("Record deleted"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")
	return cmd
}

func (a *app) clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every record of the active profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, _, err := a.activeState(ctx)
			if err != nil {
				return err
			}
			impact, err := a.records.PrepareClear(ctx, st)
			if err != nil {
				return err
			}
			if impact.Empty() {
				a.println(cli.Subtle("Nothing to clear."))
				return nil
			}
			renderImpact(a.out, "Clear records", impact, a.currency(), yes)
			if !yes {
				return nil
			}
			if _, err := a.records.Clear(ctx, st); err != nil {
				return err
			}
			a.println(cli.Success(fmt.Sprintf("Cleared %d %s", impact.Records, pluralize(impact.Records, "record"))))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm clearing all records")
	return cmd
}
