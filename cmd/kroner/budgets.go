package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/kroner/internal/budget"
	"github.com/Veraticus/kroner/internal/cli"
	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/format"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/spf13/cobra"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Show and set monthly category budgets",
	}

	cmd.AddCommand(showBudgetsCmd())
	cmd.AddCommand(setBudgetCmd())

	return cmd
}

func showBudgetsCmd() *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List the budgets of a year or month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, err := periodFlags(year, month)
			if err != nil {
				return err
			}
			if !p.HasYear() {
				return fmt.Errorf("--year is required")
			}

			return withSession(ctx, func(a *app, s *model.Session) error {
				entries, err := a.gateway.ListBudgets(ctx, s.UserID, p.Year)
				if err != nil {
					return fmt.Errorf("failed to list budgets: %w", err)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				defer w.Flush()
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					cli.TableHeaderStyle.Render("Periode"),
					cli.TableHeaderStyle.Render("Kategori"),
					cli.TableHeaderStyle.Render("Budsjett"))

				shown := 0
				for _, b := range entries {
					if p.Month != 0 && b.Month != p.Month {
						continue
					}
					shown++
					fmt.Fprintf(w, "%s\t%s\t%s\n",
						format.PeriodLabel(b.Period()), model.CategoryName(b.Category, "Uncategorized"), format.Kroner(b.Amount))
				}
				if shown == 0 {
					fmt.Fprintf(w, "%s\t\t\n", cli.SubtleStyle.Render("Ingen budsjett funnet"))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "budget year")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default the whole year)")

	return cmd
}

func setBudgetCmd() *cobra.Command {
	var (
		category     string
		year         int
		month        int
		amount       string
		copyPrevious bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set a category's budget for one month",
		Example: `  kroner budgets set --category Mat --year 2024 --month 3 --amount 4000
  kroner budgets set --category Mat --year 2024 --month 4 --copy-previous`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p := model.Period{Year: year, Month: month}

			return withSession(ctx, func(a *app, s *model.Session) error {
				c, err := resolveCategory(ctx, a.gateway, category)
				if err != nil {
					return err
				}

				var loaded []model.BudgetEntry
				if p.HasYear() {
					if loaded, err = a.gateway.ListBudgets(ctx, s.UserID, p.Year); err != nil {
						return fmt.Errorf("failed to list budgets: %w", err)
					}
				}

				editor := budget.NewEditor(a.gateway, s.UserID)
				d, err := editor.Open(ctx, p, c, loaded)
				if err != nil {
					return err
				}

				if d, err = budgetValue(ctx, editor, d, amount, copyPrevious); err != nil {
					return err
				}

				saved, err := editor.Save(ctx, d)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s %s: %s",
					c.Name, format.PeriodLabel(saved.Period()), format.Kroner(saved.Amount))))
				return nil
			})
		},
	}

	now := time.Now()
	cmd.Flags().StringVar(&category, "category", "", "category name or id")
	cmd.Flags().IntVar(&year, "year", now.Year(), "budget year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "budget month, 1-12")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in kroner")
	cmd.Flags().BoolVar(&copyPrevious, "copy-previous", false, "copy the previous month's budget")

	return cmd
}

// budgetValue fills the draft value for budgets set. --copy-previous takes
// the previous month's amount even when the target already has one.
func budgetValue(ctx context.Context, editor *budget.Editor, d budget.Draft, amount string, copyPrevious bool) (budget.Draft, error) {
	if !copyPrevious {
		if strings.TrimSpace(amount) == "" {
			return d, common.NewUserError("Pass --amount or --copy-previous.", common.ErrInvalidInput)
		}
		d.Value = amount
		return d, nil
	}

	if d.Suggestion == nil && d.HasValue {
		// Existing values skip the suggestion; look it up directly.
		d.Previous = d.Period.Previous()
		d.PreviousLabel = format.PeriodLabel(d.Previous)
		s, err := editor.Lookup(ctx, d)
		if err != nil {
			return d, err
		}
		d.Suggestion = s
	}
	if d.Suggestion == nil {
		return d, common.NewUserError(fmt.Sprintf("No %s budget in %s to copy.",
			d.Category.Name, format.PeriodLabel(d.Period.Previous())), common.ErrNotFound)
	}
	return budget.ApplySuggestion(d), nil
}
