package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/kroner/internal/cli"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
		Long: `List and add the categories expenses and budgets are grouped by.
Expenses in the category named "Inntekter" count as income.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withSession(ctx, func(a *app, _ *model.Session) error {
				categories, err := a.gateway.ListCategories(ctx)
				if err != nil {
					return fmt.Errorf("failed to get categories: %w", err)
				}

				if len(categories) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No categories found. Use 'kroner categories add' to create one."))
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				defer w.Flush()

				fmt.Fprintf(w, "%s\t%s\n",
					cli.TableHeaderStyle.Render("ID"),
					cli.TableHeaderStyle.Render("Name"))
				fmt.Fprintf(w, "%s\t%s\n", strings.Repeat("-", 4), strings.Repeat("-", 20))

				for _, c := range categories {
					name := c.Name
					if model.IsIncome(c.Name) {
						name += cli.SubtleStyle.Render(" (income)")
					}
					fmt.Fprintf(w, "%d\t%s\n", c.ID, name)
				}
				return nil
			})
		},
	}
}

func addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("category name cannot be empty")
			}

			return withSession(ctx, func(a *app, _ *model.Session) error {
				existing, err := a.gateway.ListCategories(ctx)
				if err != nil {
					return fmt.Errorf("failed to check existing categories: %w", err)
				}
				for _, c := range existing {
					if strings.EqualFold(c.Name, name) {
						return fmt.Errorf("category %q already exists", c.Name)
					}
				}

				created, err := a.gateway.CreateCategory(ctx, name)
				if err != nil {
					return fmt.Errorf("failed to create category: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %q (#%d)", created.Name, created.ID)))
				return nil
			})
		},
	}
}
