package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/kroner/internal/cli"
	"github.com/Veraticus/kroner/internal/entry"
	"github.com/Veraticus/kroner/internal/format"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	var (
		item     string
		price    string
		category string
		tag      string
		date     string
		noDate   bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Long: `Record an expense for the signed-in user. The date defaults to today;
pass --no-date to store it without one.`,
		Example: `  kroner add --item "Rema 1000" --price 349.90 --category Mat
  kroner add --item Lønn --price 32000 --category Inntekter --date 2024-03-25`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withSession(ctx, func(a *app, s *model.Session) error {
				d := entry.Draft{Item: item, Price: price, Tag: tag, Date: date, NoDate: noDate}
				if strings.TrimSpace(category) != "" {
					c, err := resolveCategory(ctx, a.gateway, category)
					if err != nil {
						return err
					}
					d.CategoryID = c.ID
				}

				expense, err := entry.NewWorkflow(a.gateway, time.Now).Submit(ctx, s.UserID, d)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved %s (%s) as #%d",
					expense.Item, format.Kroner(expense.Price), expense.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&item, "item", "", "what the money went to")
	cmd.Flags().StringVar(&price, "price", "", "amount in kroner, rounded to whole kroner")
	cmd.Flags().StringVar(&category, "category", "", "category name or id")
	cmd.Flags().StringVar(&tag, "tag", "", "optional free-form tag")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&noDate, "no-date", false, "store the expense without a date")

	return cmd
}

func listCmd() *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses for a period",
		Long:  `List the signed-in user's expenses, newest first. Without --year every year is listed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, err := periodFlags(year, month)
			if err != nil {
				return err
			}

			return withSession(ctx, func(a *app, s *model.Session) error {
				expenses, err := a.gateway.ListExpenses(ctx, s.UserID, p)
				if err != nil {
					return fmt.Errorf("failed to list expenses: %w", err)
				}

				if len(expenses) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No expenses in "+format.PeriodLabel(p)+"."))
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				defer w.Flush()

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					cli.TableHeaderStyle.Render("ID"),
					cli.TableHeaderStyle.Render("Dato"),
					cli.TableHeaderStyle.Render("Beskrivelse"),
					cli.TableHeaderStyle.Render("Kategori"),
					cli.TableHeaderStyle.Render("Tag"),
					cli.TableHeaderStyle.Render("Pris"))
				for _, e := range expenses {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
						e.ID, format.Date(e.Date), e.Item, e.CategoryName("Uncategorized"), e.Tag, format.Kroner(e.Price))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year to list (default all years)")
	cmd.Flags().IntVar(&month, "month", 0, "month to list, 1-12 (requires --year)")

	return cmd
}

func deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid expense id %q", args[0])
			}

			return withSession(ctx, func(a *app, s *model.Session) error {
				if !yes {
					reader := cli.NewNonBlockingReader(cmd.InOrStdin())
					ok, err := reader.Confirm(ctx, cmd.OutOrStdout(), fmt.Sprintf("Delete expense #%d? This cannot be undone.", id))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("Nothing deleted."))
						return nil
					}
				}

				if err := a.gateway.DeleteExpense(ctx, id, s.UserID); err != nil {
					return fmt.Errorf("failed to delete expense %d: %w", id, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Expense deleted."))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func summaryCmd() *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals and budget use for a period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, err := periodFlags(year, month)
			if err != nil {
				return err
			}

			return withSession(ctx, func(a *app, s *model.Session) error {
				report, err := loadReport(ctx, a.gateway, s.UserID, p)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				sum := report.Summary
				fmt.Fprintln(out, cli.RenderBox(format.PeriodLabel(p), fmt.Sprintf(
					"Inntekter      %s\nUtgifter       %s\nNetto          %s\nTransaksjoner  %d\n%s",
					format.Kroner(sum.Income), format.Kroner(sum.Expenses), cli.FormatNet(sum.Net), sum.Count,
					report.Budget.Label())))

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				defer w.Flush()
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					cli.TableHeaderStyle.Render("Kategori"),
					cli.TableHeaderStyle.Render("Sum"),
					cli.TableHeaderStyle.Render("Budsjett"),
					cli.TableHeaderStyle.Render("Brukt"))
				for _, line := range report.Lines {
					budget, used := "-", "-"
					if p.HasYear() && line.Budget > 0 {
						budget = format.Kroner(line.Budget)
						used = cli.FormatUsage(line.Utilization.Percent, line.Utilization.Over)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", line.Name, format.Kroner(line.Total), budget, used)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "year, 0 for all years")
	cmd.Flags().IntVar(&month, "month", int(time.Now().Month()), "month 1-12, 0 for the whole year")

	return cmd
}

