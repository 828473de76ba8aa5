package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"expensebook/internal/cli"
	"expensebook/internal/interchange"
	"expensebook/internal/log"
)

func (a *app) exportCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the active profile as a backup or a text report",
		Long: `Export the active profile's records.

json and yaml produce a backup that 'expensebook import' reads back; text
produces a readable report. Use --out - to write to standard output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := interchange.ParseFormat(format)
			if err != nil {
				return err
			}
			st, p, err := a.activeState(cmd.Context())
			if err != nil {
				return err
			}
			now := a.now()

			var buf bytes.Buffer
			if f == interchange.FormatText {
				report, err := interchange.ToReport(st, now, interchange.ReportOptions{
					Currency: a.currency(),
					Location: a.cal.Location(),
				})
				if err != nil {
					return err
				}
				buf.WriteString(report)
			} else {
				doc, err := interchange.ToInterchange(st, now)
				if err != nil {
					return err
				}
				if err := doc.Encode(&buf, f); err != nil {
					return err
				}
			}

			if out == "-" {
				_, err := io.Copy(a.out, &buf)
				return err
			}
			if out == "" {
				out = interchange.FileName(p, f, now)
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			a.logger.WithComponent(log.ComponentInterchange).Info("Records exported",
				log.FieldOperation, log.OpExport, log.FieldFormat, string(f),
				log.FieldPath, out, log.FieldCount, len(st.Records))
			a.println(cli.Success(fmt.Sprintf("Exported %d %s to %s", len(st.Records), pluralize(len(st.Records), "record"), out)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, yaml or text")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <name>-backup-<date>.json)")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var (
		mode string
		yes  bool
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a backup into the active profile",
		Long: `Import a .json or .yaml backup into the active profile.

--mode replace discards the current records; --mode append keeps them and
renumbers the imported ones.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := interchange.ParseMode(mode)
			if err != nil {
				return err
			}
			path := args[0]
			f, err := interchange.FormatFromPath(path)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st, _, err := a.activeState(ctx)
			if err != nil {
				return err
			}
			payload, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			doc, err := interchange.Validate(payload, f)
			if err != nil {
				return err
			}
			plan, err := interchange.PrepareImport(st, doc)
			if err != nil {
				return err
			}

			a.printf("Importing %d %s from %s\n", plan.Incoming, pluralize(plan.Incoming, "record"), filepath.Base(path))
			if plan.Source != "" {
				a.printf("Source profile: %s\n", plan.Source)
			}
			a.printf("Target profile: %s (%d existing, mode %s)\n", plan.Target.Name, plan.Existing, m)
			if !yes {
				a.println(cli.Subtle("Nothing changed. Re-run with --yes to confirm."))
				return nil
			}

			merged, err := interchange.Merge(st.Records, doc.Expenses, m)
			if err != nil {
				return err
			}
			if _, err := a.records.Replace(ctx, st, merged); err != nil {
				return err
			}
			a.logger.WithComponent(log.ComponentInterchange).Info("Records imported",
				log.FieldOperation, log.OpImport, log.FieldMode, string(m),
				log.FieldPath, path, log.FieldCount, plan.Incoming)
			a.println(cli.Success(fmt.Sprintf("Imported %d %s", plan.Incoming, pluralize(plan.Incoming, "record"))))
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "replace or append (required)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the import")
	_ = cmd.MarkFlagRequired("mode")
	return cmd
}
